package term

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/normanking/neonlight/internal/neon"
)

// App runs the light in a terminal. The goroutine calling Run drives the
// light loop, so the controller must not be stepped elsewhere.
type App struct {
	screen   tcell.Screen
	ctrl     *neon.Controller
	selector neon.StateSelector
	painter  *Painter
	logger   zerolog.Logger

	dirty bool
}

// NewApp creates a terminal app on an initialized screen
func NewApp(screen tcell.Screen, ctrl *neon.Controller, selector neon.StateSelector, logger zerolog.Logger) *App {
	return &App{
		screen:   screen,
		ctrl:     ctrl,
		selector: selector,
		painter:  NewPainter(screen),
		logger:   logger.With().Str("component", "term").Logger(),
		dirty:    true,
	}
}

// Run polls input and steps the light until ctx ends or the user quits
func (a *App) Run(ctx context.Context) error {
	a.ctrl.SetInvalidateFunc(func() { a.dirty = true })
	a.resize()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	loop := a.ctrl.Loop()
	ticker := time.NewTicker(loop.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !a.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
		}

		loop.Step()
		if a.dirty {
			a.render()
		}
	}
}

func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.resize()
	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return true
}

// handleKey maps keys to requests. Digits pick a state by its number,
// p toggles privacy and q or Escape quit.
func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	r := ev.Rune()
	switch {
	case r == 'q':
		return false
	case r == 'p':
		a.selector.OnPrivacyToggled(!a.ctrl.IsPrivacy())
	case r >= '0' && r <= '9':
		states := neon.States()
		if i := int(r - '0'); i < len(states) {
			a.logger.Debug().Str("state", states[i].String()).Msg("Key selected state")
			a.selector.OnStateRequested(states[i])
		}
	}
	return true
}

func (a *App) resize() {
	w, h := ViewSize(a.screen.Size())
	a.ctrl.Resize(w, h)
	a.dirty = true
}

func (a *App) render() {
	a.dirty = false
	a.painter.Clear()
	a.ctrl.Draw(a.painter)
	a.screen.Show()
}
