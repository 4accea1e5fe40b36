package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// LineReader reads edited input lines from the terminal.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

func newLinerReader() LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

// aborted reports whether the user interrupted a prompt with ctrl+c or ctrl+d.
func aborted(err error) bool {
	return errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF)
}

// confirm asks a yes/no question. An empty answer picks def; an interrupted prompt is "no".
func (rt *runtimeState) confirm(question string, def bool) (bool, error) {
	lr := rt.opts.NewLineReader()
	defer lr.Close()

	hint := " [y/N] "
	if def {
		hint = " [Y/n] "
	}
	for {
		answer, err := lr.Prompt(question + hint)
		if err != nil {
			if aborted(err) {
				return false, nil
			}
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
