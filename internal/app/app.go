package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rook-computer/pipanel/internal/buttons"
	"github.com/rook-computer/pipanel/internal/clock"
	"github.com/rook-computer/pipanel/internal/control"
	"github.com/rook-computer/pipanel/internal/logging"
	"github.com/rook-computer/pipanel/internal/state"
)

// Halter releases the display on shutdown.
type Halter interface {
	Halt() error
}

// App is the event loop. All actions and every access to the generation
// token happen on the goroutine that calls Run; button drivers only feed
// the Events channel.
type App struct {
	Store      *state.Store
	Controller *control.Controller
	Buttons    buttons.Source
	Bindings   map[buttons.Button]control.Action
	Display    Halter
	Logger     logging.Logger
	Clock      clock.Clock

	pending []press
}

type press struct {
	event buttons.Event
	epoch uint64
}

func New(store *state.Store, ctrl *control.Controller, src buttons.Source, bindings map[buttons.Button]control.Action, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	app := &App{
		Store:      store,
		Controller: ctrl,
		Buttons:    src,
		Bindings:   bindings,
		Logger:     logger,
		Clock:      clock.RealClock{},
	}
	ctrl.Pause = app.pause
	return app
}

// Run initializes the panel and dispatches presses until ctx is cancelled.
// It returns nil on cancellation and an error for hardware failures, which
// are not recoverable.
func (app *App) Run(ctx context.Context) error {
	if err := app.Buttons.Start(ctx); err != nil {
		return fmt.Errorf("start buttons: %w", err)
	}
	defer app.cleanup()

	app.Logger.Infof("app", "Starting pipanel")
	if err := app.Controller.Reset(); err != nil {
		return err
	}
	if err := app.Controller.SelfTest(ctx); err != nil {
		return app.finish(ctx, err)
	}
	app.Store.SetPhase(state.IDLE, app.Clock.Now())
	app.Logger.Infof("app", "Ready, %d buttons bound", len(app.Bindings))

	for {
		for len(app.pending) > 0 {
			next := app.pending[0]
			app.pending = app.pending[1:]
			if err := app.dispatch(ctx, next); err != nil {
				return app.finish(ctx, err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-app.Buttons.Events():
			if !ok {
				return errors.New("button source closed")
			}
			app.accept(ev)
		}
	}
}

// accept bumps the token for a press and queues it. Everything already
// running or queued with an older epoch is superseded from here on.
func (app *App) accept(ev buttons.Event) {
	epoch := app.Controller.Generation.Next()
	app.Store.Pressed(epoch)
	app.Logger.Debugf("app", "button %s pressed, ID %d", ev.Button, epoch)
	app.pending = append(app.pending, press{event: ev, epoch: epoch})
}

func (app *App) dispatch(ctx context.Context, p press) error {
	action, ok := app.Bindings[p.event.Button]
	if !ok {
		app.Logger.Warnf("app", "button %s is not bound", p.event.Button)
		return nil
	}
	// A queued press that a later one already replaced never starts.
	if !app.Controller.Generation.IsCurrent(p.epoch) {
		app.Logger.Debugf("app", "skipping %s for button %s, ID %d superseded", action, p.event.Button, p.epoch)
		return nil
	}

	app.Store.Dispatch(p.event.Button.String(), action.String(), p.epoch, app.Clock.Now())
	app.Logger.Infof("app", "Button %s: %s (ID %d)", p.event.Button, action, p.epoch)
	err := app.Controller.Run(ctx, action, p.epoch)
	app.Store.SetPhase(state.IDLE, app.Clock.Now())
	return err
}

// pause is the yield point handed to the controller. It waits d on the
// clock while still taking presses, so a newer press bumps the token before
// the running action's next check.
func (app *App) pause(ctx context.Context, d time.Duration) error {
	timer := app.Clock.After(d)
	events := app.Buttons.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			app.accept(ev)
		case <-timer:
			app.drainReady(events)
			return ctx.Err()
		}
	}
}

func (app *App) drainReady(events <-chan buttons.Event) {
	if events == nil {
		return
	}
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			app.accept(ev)
		default:
			return
		}
	}
}

func (app *App) finish(ctx context.Context, err error) error {
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil
	}
	return err
}

// cleanup is best effort: the hardware may be what failed.
func (app *App) cleanup() {
	if err := app.Controller.Reset(); err != nil {
		app.Logger.Errorf("app", "reset on exit: %v", err)
	}
	if err := app.Buttons.Stop(); err != nil {
		app.Logger.Errorf("app", "stop buttons: %v", err)
	}
	if app.Display != nil {
		if err := app.Display.Halt(); err != nil {
			app.Logger.Errorf("app", "halt display: %v", err)
		}
	}
	app.Store.SetPhase(state.STOPPED, app.Clock.Now())
	app.Logger.Infof("app", "Stopped")
}
