package runner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCommand reports input that matches none of the view's actions.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a parsed user command.
type Command struct {
	Name string
	Arg  string
}

// ParseCommand matches input against the actions of the view. Both the key and the
// command name are accepted; "t 2" and "theme 咖啡闲逛" carry an argument.
func ParseCommand(view View, input string) (Command, error) {
	input = strings.TrimSpace(input)
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty input", ErrUnknownCommand)
	}
	word := strings.ToLower(fields[0])
	if word == "quit" {
		word = CmdExit
	}
	arg := strings.TrimSpace(input[len(fields[0]):])

	for _, a := range view.Actions {
		if word != a.Key && word != a.Command {
			continue
		}
		if a.Arg != "" && arg == "" {
			return Command{}, fmt.Errorf("%s 需要参数: %s <%s>", a.Label, a.Key, a.Arg)
		}
		return Command{Name: a.Command, Arg: arg}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
}
