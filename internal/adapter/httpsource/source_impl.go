package httpsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/user/roleta-service/internal/repository"
)

const maxBodyBytes = 8 << 20

// HTTPClient allows injecting a client in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// UserAgentSource hands out the User-Agent for each request.
type UserAgentSource interface {
	UserAgent() string
}

type staticAgent string

func (s staticAgent) UserAgent() string { return string(s) }

// Option configures the Source.
type Option func(*Source)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPClient) Option {
	return func(s *Source) { s.client = c }
}

// WithUserAgents sets the user agent rotation.
func WithUserAgents(ua UserAgentSource) Option {
	return func(s *Source) { s.agents = ua }
}

// WithLimiter paces outbound requests.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Source) { s.limiter = l }
}

// WithAcceptLanguage overrides the Accept-Language header.
func WithAcceptLanguage(lang string) Option {
	return func(s *Source) { s.acceptLanguage = lang }
}

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) { s.timeout = d }
}

// WithMaxBody caps the accepted page size; larger pages fail the fetch.
func WithMaxBody(n int64) Option {
	return func(s *Source) { s.maxBody = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// Source fetches list pages over plain HTTP.
type Source struct {
	client         HTTPClient
	baseURL        string
	user           string
	agents         UserAgentSource
	acceptLanguage string
	timeout        time.Duration
	limiter        *rate.Limiter
	maxBody        int64
	logger         *zap.Logger
}

var _ repository.ListSource = (*Source)(nil)

// New creates a Source for the lists of user under baseURL.
func New(baseURL, user string, opts ...Option) *Source {
	s := &Source{
		client:         &http.Client{},
		baseURL:        strings.TrimRight(baseURL, "/"),
		user:           user,
		agents:         staticAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"),
		acceptLanguage: "pt-BR,pt;q=0.9,en;q=0.8",
		timeout:        50 * time.Second,
		limiter:        rate.NewLimiter(rate.Inf, 1),
		maxBody:        maxBodyBytes,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListURL builds the page URL of a list.
func (s *Source) ListURL(listName string) string {
	return fmt.Sprintf("%s/%s/list/%s/", s.baseURL, url.PathEscape(s.user), url.PathEscape(listName))
}

// FetchList implements repository.ListSource.
func (s *Source) FetchList(ctx context.Context, listName string) (string, error) {
	listURL := s.ListURL(listName)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: waiting for rate limiter: %v", repository.ErrFetchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", repository.ErrFetchFailed, err)
	}
	if ua := s.agents.UserAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	req.Header.Set("Accept-Language", s.acceptLanguage)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	s.logger.Debug("fetching list", zap.String("url", listURL))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", repository.ErrFetchFailed, listURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned HTTP %d", repository.ErrFetchFailed, listURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", repository.ErrFetchFailed, listURL, err)
	}
	// A truncated page would extract as a shorter list and be cached as good.
	if int64(len(body)) > s.maxBody {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", repository.ErrFetchFailed, listURL, s.maxBody)
	}
	return string(body), nil
}
