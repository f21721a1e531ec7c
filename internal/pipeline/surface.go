package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/threadscan/internal/browser"
	"github.com/nao1215/threadscan/internal/config"
	"github.com/nao1215/threadscan/internal/snapshot"
	"github.com/nao1215/threadscan/internal/surface"
)

// SurfaceOpener opens the surface a job is traversed on.
type SurfaceOpener func(ctx context.Context, cfg *config.Config) (surface.Surface, error)

// NewSurfaceOpener returns the default opener: a saved page when
// cfg.Snapshot is set, a browser otherwise.
func NewSurfaceOpener(logger *slog.Logger) SurfaceOpener {
	return func(ctx context.Context, cfg *config.Config) (surface.Surface, error) {
		if cfg.Snapshot != "" {
			s, err := snapshot.Open(cfg.Snapshot,
				snapshot.WithBaseURL(cfg.Source),
				snapshot.WithLogger(logger),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to open snapshot: %w", err)
			}
			return s, nil
		}

		s, err := browser.Launch(ctx,
			browser.WithHeadless(cfg.Headless),
			browser.WithSkipInstall(cfg.SkipInstall),
			browser.WithViewport(cfg.ViewportWidth, cfg.ViewportHeight),
			browser.WithClickInterval(cfg.ClickInterval),
			browser.WithNavigationTimeout(cfg.NavigationTimeout),
			browser.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
