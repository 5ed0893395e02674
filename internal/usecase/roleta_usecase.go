package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/roleta-service/internal/entity"
	"github.com/user/roleta-service/internal/sampler"
	"github.com/user/roleta-service/pkg/metrics"
)

// UnavailableMessage is the only failure text end users ever see.
const UnavailableMessage = "❌ The service is unstable right now. Please try again later."

var (
	ErrInvalidBalas = fmt.Errorf("balas must be between %d and %d", sampler.MinBalas, sampler.MaxBalas)
	ErrUnavailable  = errors.New("roleta unavailable")
)

// Sink renders the outcome of a spin to the end user.
type Sink interface {
	Present(ctx context.Context, selection *entity.Selection) error
	Unavailable(ctx context.Context, message string) error
}

// PosterEnricher attaches a poster URL to a film.
type PosterEnricher interface {
	Attach(f entity.Film) entity.Film
}

// Roleta runs spins end to end.
type Roleta interface {
	// Draw performs one spin and returns the raw selection or the internal error.
	Draw(ctx context.Context, balas int) (*entity.Selection, error)
	// Spin performs one spin and hands the outcome to sink. Only ErrInvalidBalas
	// and sink failures are returned; every other failure reaches the sink as
	// UnavailableMessage.
	Spin(ctx context.Context, balas int, sink Sink) error
	// Festim returns the link to the list of blank rounds.
	Festim() string
}

type roletaUseCase struct {
	lists     ListProvider
	sampler   *sampler.Sampler
	posters   PosterEnricher
	festimURL string
	logger    *zap.Logger
}

// NewRoleta creates a new instance of the roleta use case.
func NewRoleta(lists ListProvider, s *sampler.Sampler, posters PosterEnricher, festimURL string, logger *zap.Logger) Roleta {
	return &roletaUseCase{
		lists:     lists,
		sampler:   s,
		posters:   posters,
		festimURL: festimURL,
		logger:    logger,
	}
}

func (uc *roletaUseCase) Draw(ctx context.Context, balas int) (*entity.Selection, error) {
	if balas < sampler.MinBalas || balas > sampler.MaxBalas {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBalas, balas)
	}

	// Both pools load concurrently; a failure in one never cancels the other.
	var (
		bad, good entity.ListResult
		g         errgroup.Group
	)
	g.Go(func() error { return uc.loadPool(ctx, entity.CategoryBad, &bad) })
	g.Go(func() error { return uc.loadPool(ctx, entity.CategoryGood, &good) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range []entity.ListResult{bad, good} {
		if res.Err != nil {
			uc.logger.Warn("list degraded",
				zap.String("category", string(res.Category)),
				zap.String("origin", string(res.Origin)),
				zap.Int("films", len(res.Films)),
				zap.Error(res.Err),
			)
		}
	}

	if len(bad.Films) == 0 || len(good.Films) == 0 {
		return nil, fmt.Errorf("%w: bad=%d good=%d", sampler.ErrInsufficientPool, len(bad.Films), len(good.Films))
	}

	selection, err := uc.sampler.Select(bad.Films, good.Films, balas)
	if err != nil {
		return nil, fmt.Errorf("selecting film: %w", err)
	}

	// Only the chosen film gets a poster.
	selection.Film = uc.posters.Attach(selection.Film)
	selection.ID = uuid.NewString()

	uc.logger.Info("spin drawn",
		zap.String("id", selection.ID),
		zap.Int("balas", balas),
		zap.String("film", selection.Film.Title),
		zap.Bool("lost", selection.Lost),
		zap.Int("drawn_bad", selection.DrawnBad),
		zap.Int("drawn_good", selection.DrawnGood),
	)
	return &selection, nil
}

func (uc *roletaUseCase) Spin(ctx context.Context, balas int, sink Sink) error {
	selection, err := uc.safeDraw(ctx, balas)
	if errors.Is(err, ErrInvalidBalas) {
		return err
	}
	if err == nil {
		err = uc.safePresent(ctx, sink, selection)
		if err == nil {
			outcome := "survived"
			if selection.Lost {
				outcome = "lost"
			}
			metrics.SpinsTotal.WithLabelValues(outcome).Inc()
			return nil
		}
	}

	uc.logger.Error("spin failed", zap.Int("balas", balas), zap.Error(err))
	metrics.SpinsTotal.WithLabelValues("unavailable").Inc()
	if sinkErr := sink.Unavailable(ctx, UnavailableMessage); sinkErr != nil {
		return fmt.Errorf("reporting unavailability: %w", sinkErr)
	}
	return nil
}

func (uc *roletaUseCase) Festim() string {
	return uc.festimURL
}

// loadPool runs in its own goroutine, so panics must be caught here rather than in safeDraw.
func (uc *roletaUseCase) loadPool(ctx context.Context, category entity.Category, dst *entity.ListResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic while loading %s list: %v", ErrUnavailable, category, r)
		}
	}()
	*dst = uc.lists.GetList(ctx, category)
	return nil
}

func (uc *roletaUseCase) safeDraw(ctx context.Context, balas int) (selection *entity.Selection, err error) {
	defer func() {
		if r := recover(); r != nil {
			selection, err = nil, fmt.Errorf("%w: panic while drawing: %v", ErrUnavailable, r)
		}
	}()
	return uc.Draw(ctx, balas)
}

func (uc *roletaUseCase) safePresent(ctx context.Context, sink Sink, selection *entity.Selection) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic while presenting: %v", ErrUnavailable, r)
		}
	}()
	if err := sink.Present(ctx, selection); err != nil {
		return fmt.Errorf("presenting selection %s: %w", selection.ID, err)
	}
	return nil
}
