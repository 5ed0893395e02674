package extractor

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/user/roleta-service/internal/entity"
	"github.com/user/roleta-service/internal/repository"
)

const snippetLimit = 1000

// ExtractionError is returned when no strategy recovered a film.
// Snippet holds the head of the document for diagnostics.
type ExtractionError struct {
	Snippet string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s (document starts with %q)", repository.ErrExtractionFailed, e.Snippet)
}

func (e *ExtractionError) Unwrap() error {
	return repository.ErrExtractionFailed
}

// rawFilm is what a strategy reads off a single node before normalization.
type rawFilm struct {
	title, id, slug string
}

// strategy pairs a selector with the mapping applied to every match.
// read returns ok=false to discard a node.
type strategy struct {
	name     string
	selector string
	read     func(s *goquery.Selection) (rawFilm, bool)
}

// strategies are tried in order; the first one yielding a film wins.
var strategies = []strategy{
	{
		name:     "poster-list",
		selector: "ul.poster-list li[data-film-slug]",
		read: func(s *goquery.Selection) (rawFilm, bool) {
			return readStrict(s)
		},
	},
	{
		name:     "poster-container",
		selector: "li.poster-container",
		read: func(s *goquery.Selection) (rawFilm, bool) {
			return readStrict(s.Find("div.poster").First())
		},
	},
	{
		name:     "film-poster",
		selector: ".film-poster",
		read: func(s *goquery.Selection) (rawFilm, bool) {
			slug, _ := s.Attr("data-film-slug")
			title, _ := s.Find("img").First().Attr("alt")
			if strings.TrimSpace(slug) == "" || strings.TrimSpace(title) == "" {
				return rawFilm{}, false
			}
			id, _ := s.Attr("data-film-id")
			if strings.TrimSpace(id) == "" {
				id = entity.UnknownFilmID
			}
			return rawFilm{title: title, id: id, slug: slug}, true
		},
	},
}

func readStrict(s *goquery.Selection) (rawFilm, bool) {
	slug, _ := s.Attr("data-film-slug")
	title, _ := s.Attr("data-film-name")
	id, _ := s.Attr("data-film-id")
	if strings.TrimSpace(slug) == "" || strings.TrimSpace(title) == "" || strings.TrimSpace(id) == "" {
		return rawFilm{}, false
	}
	return rawFilm{title: title, id: id, slug: slug}, true
}

// Extractor turns list pages into films.
type Extractor struct {
	baseURL string
	logger  *zap.Logger
}

// New creates an Extractor. baseURL prefixes canonical film links.
func New(baseURL string, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Extract parses the page and returns its films along with the name of the strategy that matched.
func (e *Extractor) Extract(r io.Reader) ([]entity.Film, string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("reading list page: %w", err)
	}
	return e.ExtractHTML(string(raw))
}

// ExtractHTML is Extract for an in-memory document.
func (e *Extractor) ExtractHTML(htmlContent string) ([]entity.Film, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, "", fmt.Errorf("parsing list page: %w", err)
	}

	for _, st := range strategies {
		films := e.apply(doc, st)
		if len(films) > 0 {
			e.logger.Debug("films extracted", zap.String("strategy", st.name), zap.Int("count", len(films)))
			return films, st.name, nil
		}
	}

	snippet := truncate(htmlContent, snippetLimit)
	e.logger.Error("no films found on list page", zap.String("html", snippet))
	return nil, "", &ExtractionError{Snippet: snippet}
}

func (e *Extractor) apply(doc *goquery.Document, st strategy) []entity.Film {
	var films []entity.Film
	seen := make(map[string]struct{})

	doc.Find(st.selector).Each(func(i int, s *goquery.Selection) {
		film, ok := e.readNode(st, i, s)
		if !ok {
			return
		}
		if _, dup := seen[film.Key()]; dup {
			return
		}
		seen[film.Key()] = struct{}{}
		films = append(films, film)
	})
	return films
}

// readNode isolates a single node so that a broken entry never aborts the page.
func (e *Extractor) readNode(st strategy, i int, s *goquery.Selection) (film entity.Film, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("skipping malformed node",
				zap.String("strategy", st.name),
				zap.Int("index", i),
				zap.Any("panic", r),
			)
			ok = false
		}
	}()

	raw, ok := st.read(s)
	if !ok {
		return entity.Film{}, false
	}
	slug := strings.TrimSpace(raw.slug)
	return entity.Film{
		Title: norm.NFC.String(strings.TrimSpace(raw.title)),
		URL:   e.baseURL + "/film/" + slug,
		ID:    strings.TrimSpace(raw.id),
		Slug:  slug,
	}, true
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
