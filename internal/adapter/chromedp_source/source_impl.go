package chromedp_source

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/roleta-service/internal/repository"
)

// ChromedpSource renders list pages in headless Chrome. It is the fallback for
// deployments where the plain HTTP source gets challenged by the site.
type ChromedpSource struct {
	allocatorPool  *sync.Pool
	baseURL        string
	user           string
	acceptLanguage string
	timeout        time.Duration
	logger         *zap.Logger
}

var _ repository.ListSource = (*ChromedpSource)(nil)

// NewChromedpSource creates a list source backed by a pool of browser allocators.
func NewChromedpSource(baseURL, user, userAgent, acceptLanguage string, timeout time.Duration, logger *zap.Logger) *ChromedpSource {
	pool := &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.UserAgent(userAgent),
			)
			allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
			return allocCtx
		},
	}

	return &ChromedpSource{
		allocatorPool:  pool,
		baseURL:        strings.TrimRight(baseURL, "/"),
		user:           user,
		acceptLanguage: acceptLanguage,
		timeout:        timeout,
		logger:         logger,
	}
}

// FetchList navigates to the list page and returns the rendered document.
func (c *ChromedpSource) FetchList(ctx context.Context, listName string) (string, error) {
	listURL := fmt.Sprintf("%s/%s/list/%s/", c.baseURL, c.user, listName)

	allocCtx := c.allocatorPool.Get().(context.Context)
	defer c.allocatorPool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(c.logger.Sugar().Debugf))
	defer cancel()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, c.timeout)
	defer cancelTimeout()

	// Tie the browser task to the caller as well.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var htmlContent string
	startTime := time.Now()
	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": c.acceptLanguage}),
		chromedp.Navigate(listURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		c.logger.Warn("browser fetch failed", zap.String("url", listURL), zap.Error(err))
		return "", fmt.Errorf("%w: %s: %v", repository.ErrFetchFailed, listURL, err)
	}

	c.logger.Info("list rendered",
		zap.String("url", listURL),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()),
	)
	return htmlContent, nil
}
