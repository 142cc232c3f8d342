package alert

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Presenter displays or clears the proximity warning.
// Implementations must treat repeated Show or Hide calls as no-ops.
type Presenter interface {
	Show(ctx context.Context) error
	Hide(ctx context.Context) error
}

// Dispatch forwards sig to p. SignalNone does nothing.
func Dispatch(ctx context.Context, p Presenter, sig Signal) error {
	if p == nil {
		return nil
	}
	switch sig {
	case SignalShow:
		return p.Show(ctx)
	case SignalHide:
		return p.Hide(ctx)
	default:
		return nil
	}
}

// Fanout delivers every signal to all presenters and joins their errors.
type Fanout []Presenter

// Show implements Presenter.
func (f Fanout) Show(ctx context.Context) error {
	var errs []error
	for _, p := range f {
		if err := p.Show(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Hide implements Presenter.
func (f Fanout) Hide(ctx context.Context) error {
	var errs []error
	for _, p := range f {
		if err := p.Hide(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Latch wraps a presenter and only forwards state changes.
// The wrapped presenter starts out hidden.
type Latch struct {
	next Presenter

	mu      sync.Mutex
	visible bool
}

// NewLatch wraps next.
func NewLatch(next Presenter) *Latch {
	return &Latch{next: next}
}

// Show implements Presenter.
func (l *Latch) Show(ctx context.Context) error {
	return l.set(ctx, true)
}

// Hide implements Presenter.
func (l *Latch) Hide(ctx context.Context) error {
	return l.set(ctx, false)
}

// Visible reports the last state forwarded successfully.
func (l *Latch) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

func (l *Latch) set(ctx context.Context, visible bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.visible == visible {
		return nil
	}

	var err error
	if visible {
		err = l.next.Show(ctx)
	} else {
		err = l.next.Hide(ctx)
	}
	if err != nil {
		return err
	}
	l.visible = visible
	return nil
}

// LogPresenter writes warning transitions to a logger.
type LogPresenter struct {
	logger *slog.Logger
}

// NewLogPresenter creates a presenter that logs. A nil logger uses slog.Default.
func NewLogPresenter(logger *slog.Logger) *LogPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPresenter{logger: logger.With("component", "alert.log")}
}

// Show implements Presenter.
func (p *LogPresenter) Show(ctx context.Context) error {
	p.logger.WarnContext(ctx, "object approaching")
	return nil
}

// Hide implements Presenter.
func (p *LogPresenter) Hide(ctx context.Context) error {
	p.logger.DebugContext(ctx, "warning cleared")
	return nil
}
