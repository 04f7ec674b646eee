package wizard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/mattn/go-isatty"
)

// ErrCancelled is returned when the user interrupts a prompt (Ctrl+C / EOF).
// It is distinguishable from a plain negative answer and aborts the wizard.
var ErrCancelled = errors.New("cancelled")

// Asker is the prompt surface the wizard runs on. The survey implementation
// renders styled prompts on a terminal; the plain implementation reads lines
// so the wizard still works on dumb pipes.
type Asker interface {
	Input(msg, def string) (string, error)
	Select(msg string, options []string, def string) (string, error)
	Confirm(msg string, def bool) (bool, error)
}

// NewAsker picks the survey-backed prompter on a terminal and the plain
// line-oriented fallback otherwise.
func NewAsker() Asker {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return surveyAsker{}
	}
	return &plainAsker{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

type surveyAsker struct{}

func (surveyAsker) Input(msg, def string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Input{Message: msg, Default: def}, &out)
	return out, mapCancel(err)
}

func (surveyAsker) Select(msg string, options []string, def string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Select{Message: msg, Options: options, Default: def}, &out)
	return out, mapCancel(err)
}

func (surveyAsker) Confirm(msg string, def bool) (bool, error) {
	var out bool
	err := survey.AskOne(&survey.Confirm{Message: msg, Default: def}, &out)
	return out, mapCancel(err)
}

func mapCancel(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrCancelled
	}
	return err
}

type plainAsker struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *plainAsker) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", ErrCancelled
	}
	return strings.TrimSpace(line), nil
}

func (p *plainAsker) Input(msg, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", msg, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", msg)
	}
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (p *plainAsker) Select(msg string, options []string, def string) (string, error) {
	fmt.Fprintln(p.out, msg)
	for i, opt := range options {
		marker := " "
		if opt == def {
			marker = "*"
		}
		fmt.Fprintf(p.out, " %s %d) %s\n", marker, i+1, opt)
	}
	fmt.Fprintf(p.out, "Choice [1-%d]: ", len(options))

	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	for _, opt := range options {
		if strings.EqualFold(opt, line) {
			return opt, nil
		}
	}
	return "", fmt.Errorf("invalid choice %q", line)
}

func (p *plainAsker) Confirm(msg string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", msg, hint)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, fmt.Errorf("answer yes or no, got %q", line)
}
