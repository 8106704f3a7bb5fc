package launch

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Opener is the platform collaborator that can hand a URI to another app.
// Implementations decide what "can open" means; the launcher only sequences.
type Opener interface {
	CanOpen(ctx context.Context, uri string) bool
	Open(ctx context.Context, uri string) error
}

// ErrNoHandler means every candidate in the plan declined or failed.
var ErrNoHandler = errors.New("no handler accepted the payment link")

// Result records which candidate took the handoff.
type Result struct {
	App string
	URI string
}

// Launcher probes candidates strictly in plan order. Each attempt is awaited
// before the next starts, and the first successful open ends the sequence;
// nothing fires after a handoff.
type Launcher struct {
	registry Registry
	opener   Opener
	logger   *zap.Logger
}

func NewLauncher(registry Registry, opener Opener, logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{registry: registry, opener: opener, logger: logger}
}

// Launch walks the plan for link until a handler accepts it.
func (l *Launcher) Launch(ctx context.Context, link string) (Result, error) {
	for _, c := range l.registry.Plan(link) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if !l.opener.CanOpen(ctx, c.URI) {
			l.logger.Debug("handler unavailable", zap.String("app", c.App))
			continue
		}
		if err := l.opener.Open(ctx, c.URI); err != nil {
			l.logger.Warn("handler open failed", zap.String("app", c.App), zap.Error(err))
			continue
		}
		l.logger.Info("payment link handed off", zap.String("app", c.App))
		return Result{App: c.App, URI: c.URI}, nil
	}
	return Result{}, ErrNoHandler
}
