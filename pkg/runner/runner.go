package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/citywalk/internal/logging"
	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
)

// Runner handles the interactive loop over a controller using the provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	Controller ports.Controller

	// Handler is the strategy for IO. If nil, a TextHandler on Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Headless suppresses the banner.
	Headless bool

	// InterruptSource cancels the in-flight request when it fires (tests, embedding hosts).
	InterruptSource <-chan struct{}
}

// NewRunner creates a new Runner for the controller.
func NewRunner(ctrl ports.Controller, opts ...Option) *Runner {
	r := &Runner{
		Controller: ctrl,
		Logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the loop until the user exits, the input ends or ctx is done.
// Ctrl+C while a location or route request is in flight cancels that request;
// at the prompt it ends the session.
func (r *Runner) Run(ctx context.Context) error {
	handler := r.resolveHandler()

	signals := NewSignalManager(ctx, r.InterruptSource)
	defer signals.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		view := BuildView(r.Controller.Snapshot())
		if err := handler.Output(ctx, view); err != nil {
			return fmt.Errorf("output error: %w", err)
		}

		input, err := handler.Input(signals.Context())
		if err != nil {
			signals.CheckRace()
			if signals.Context().Err() != nil {
				r.Logger.Debug("Runner input: interrupted at prompt")
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		cmd, err := ParseCommand(view, input)
		if err != nil {
			_ = handler.SystemOutput(ctx, err.Error())
			continue
		}
		if cmd.Name == CmdExit {
			return nil
		}

		if err := r.execute(ctx, signals, handler, cmd); err != nil {
			return err
		}
	}
}

// execute feeds one command to the controller. Rejections are reported to the user;
// only IO failures stop the loop.
func (r *Runner) execute(ctx context.Context, signals *SignalManager, handler IOHandler, cmd Command) error {
	if label := LoadingLabel(cmd.Name); label != "" {
		if err := handler.SystemOutput(ctx, label); err != nil {
			return err
		}
	}

	callCtx := signals.Context()
	var err error
	switch cmd.Name {
	case CmdStart:
		_, err = r.Controller.Start(callCtx)
	case CmdTheme, CmdDuration:
		err = r.choose(cmd)
	case CmdSubmit:
		_, err = r.Controller.Submit(callCtx, r.Controller.Snapshot().Preferences)
	case CmdNavigate:
		_, err = r.Controller.StartNavigation(callCtx)
	case CmdBack:
		_, err = r.Controller.Back(callCtx)
	case CmdNext:
		_, err = r.Controller.Advance(callCtx)
	case CmdMap:
		var url string
		url, err = r.Controller.OpenMap(callCtx)
		if url != "" {
			if err != nil {
				r.Logger.Warn("map launcher failed", "err", err)
				err = nil
			}
			return handler.SystemOutput(ctx, "地图链接: "+url)
		}
	case CmdEnd:
		_, err = r.Controller.End(callCtx)
	case CmdDismiss:
		r.Controller.DismissError()
	}

	if callCtx.Err() != nil && ctx.Err() == nil {
		// Interrupted request: the controller already settled, drop its alert and re-arm.
		r.Logger.Debug("Runner: request interrupted", "command", cmd.Name)
		signals.Reset()
		r.Controller.DismissError()
		return handler.SystemOutput(ctx, "已取消")
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrLocationUnavailable), errors.Is(err, domain.ErrGenerationFailed):
		// Surfaced by the alert of the next view.
		r.Logger.Debug("Runner: request failed", "command", cmd.Name, "err", err)
		return nil
	default:
		return handler.SystemOutput(ctx, err.Error())
	}
}

// choose applies a theme or duration choice given by index or label.
func (r *Runner) choose(cmd Command) error {
	prefs := r.Controller.Snapshot().Preferences
	catalog, dst := domain.Themes, &prefs.Theme
	if cmd.Name == CmdDuration {
		catalog, dst = domain.Durations, &prefs.Duration
	}

	clean, err := SanitizeLabel(cmd.Arg)
	if err != nil {
		return err
	}
	if label, ok := domain.ResolveChoice(catalog, clean); ok {
		*dst = label
	} else {
		// Free text is accepted only when the controller allows custom labels.
		*dst = clean
	}
	_, err = r.Controller.SetPreferences(prefs)
	return err
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(os.Stdin, os.Stdout)
	if !r.Headless {
		fmt.Fprintln(th.Writer, "--- CityWalk (Runner) ---")
	}
	// Memoize to prevent creating new pumps on subsequent Run() calls
	r.Handler = th
	return th
}
