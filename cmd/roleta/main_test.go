package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func listHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var prefix string
		switch r.URL.Path {
		case "/tester/list/ruins/":
			prefix = "bad"
		case "/tester/list/bons/":
			prefix = "good"
		default:
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body><ul class="poster-list">`)
		for i := 0; i < 6; i++ {
			fmt.Fprintf(w, `<li data-film-slug="%[1]s-%[2]d" data-film-name="%[1]s film %[2]d" data-film-id="%[2]d%[2]d"></li>`, prefix, i+1)
		}
		fmt.Fprint(w, `</ul></body></html>`)
	})
}

func setEnv(t *testing.T, baseURL string) {
	t.Helper()
	t.Setenv("LETTERBOXD_USER", "tester")
	t.Setenv("LISTA_RUINS", "ruins")
	t.Setenv("LISTA_BONS", "bons")
	t.Setenv("LIST_BASE_URL", baseURL)
	t.Setenv("FETCH_RATE", "100")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	// Run from an empty directory so a local .env never leaks in.
	t.Chdir(t.TempDir())
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSpinCommand(t *testing.T) {
	srv := httptest.NewServer(listHandler(t))
	defer srv.Close()
	setEnv(t, srv.URL)

	out, err := run(t, "spin", "--balas", "2")
	if err != nil {
		t.Fatalf("spin: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Configuration: 2 bad | 4 good") {
		t.Errorf("expected the configuration summary, got:\n%s", out)
	}
	if !strings.Contains(out, "You lost!") && !strings.Contains(out, "You survived!") {
		t.Errorf("expected an outcome label, got:\n%s", out)
	}
}

func TestSpinCommandUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	setEnv(t, srv.URL)

	out, err := run(t, "spin")
	if err != nil {
		t.Fatalf("an unavailable source must not fail the command: %v", err)
	}
	if !strings.Contains(out, "The service is unstable right now") {
		t.Errorf("expected the unavailability message, got:\n%s", out)
	}
}

func TestSpinCommandRejectsBalas(t *testing.T) {
	setEnv(t, "http://127.0.0.1:1")
	if _, err := run(t, "spin", "--balas", "6"); err == nil {
		t.Error("expected --balas 6 to be rejected")
	}
}

func TestFestimCommand(t *testing.T) {
	setEnv(t, "https://letterboxd.com")
	out, err := run(t, "festim")
	if err != nil {
		t.Fatalf("festim: %v", err)
	}
	if strings.TrimSpace(out) != "https://letterboxd.com/tester/list/bala-de-festim/" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "roleta dev" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestExplicitConfigMustExist(t *testing.T) {
	setEnv(t, "https://letterboxd.com")
	if _, err := run(t, "festim", "--config", "missing.env"); err == nil {
		t.Error("expected a missing --config file to fail")
	}
}
