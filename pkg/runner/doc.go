/*
Package runner implements the interactive terminal loop of the walk planner.

It acts as the bridge between the controller (the view state machine) and a terminal
or a scripted client. Each turn the runner renders the current snapshot as a View,
reads one command through a pluggable IOHandler and feeds it to the controller.

# Key Components

  - Runner: the loop; Ctrl+C cancels an in-flight location or route request.
  - IOHandler: decouples how views are shown and commands are read.
  - TextHandler: interactive terminal usage with optional markdown rendering.
  - JSONHandler: NDJSON views for scripted clients.

# Usage

	r := runner.NewRunner(ctrl,
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
