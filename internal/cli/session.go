package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"syscall"

	"github.com/aretw0/citywalk"
	"github.com/aretw0/citywalk/internal/config"
	"github.com/aretw0/citywalk/internal/presentation/tui"
	"github.com/aretw0/citywalk/pkg/runner"
)

// RunOptions configures an interactive session.
type RunOptions struct {
	JSON       bool
	Headless   bool
	ConfirmMap bool

	// Stdin and Stdout default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer

	// App adjusts the planner wiring (tests inject a completer here).
	App AppOptions
}

// RunSession builds the planner and drives it from the terminal until the user
// exits or a signal arrives.
func RunSession(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts RunOptions) error {
	stdin, stdout := opts.Stdin, opts.Stdout
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	quiet := opts.JSON || opts.Headless

	handler := newHandler(stdin, stdout, opts, logger)

	appOpts := opts.App
	if opts.ConfirmMap {
		appOpts.Launcher = runner.GuardedLauncher{
			Launcher:    newLauncher(cfg, appOpts),
			Interceptor: runner.ConfirmationMiddleware(handler),
		}
	}

	app, err := NewApp(ctx, cfg, logger, appOpts)
	if err != nil {
		return err
	}

	if !quiet {
		tui.PrintBanner(stdout, citywalk.Version)
	}

	// SIGINT belongs to the runner: it cancels the request in flight, or ends the
	// session at the prompt.
	sigCtx := NewSignalContext(ctx, syscall.SIGTERM)
	defer sigCtx.Cancel()

	r := runner.NewRunner(app.Planner,
		runner.WithLogger(logger),
		runner.WithHeadless(quiet),
		runner.WithInputHandler(handler),
	)
	logger.Debug("session started", "session_id", app.Planner.Snapshot().SessionID)

	runErr := r.Run(sigCtx)
	logCompletion(stdout, app.Planner.Snapshot(), sigCtx.Signal(), quiet)
	return runErr
}

func newHandler(stdin io.Reader, stdout io.Writer, opts RunOptions, logger *slog.Logger) runner.IOHandler {
	if opts.JSON {
		return runner.NewJSONHandler(stdin, stdout)
	}

	var handlerOpts []runner.TextHandlerOption
	// Markdown styling only on a real terminal.
	if f, ok := stdout.(*os.File); ok && !opts.Headless && tui.IsTerminal(f) {
		render, err := tui.NewRenderer(tui.Width(f))
		if err != nil {
			logger.Warn("markdown renderer unavailable", "err", err)
		} else {
			handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(render))
		}
	}
	return runner.NewTextHandler(stdin, stdout, handlerOpts...)
}
