package location

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// PromptPermission asks the user on the terminal before the position is read.
// It reports ErrUnsupported when there is no terminal to ask on.
type PromptPermission struct {
	In  io.Reader
	Out io.Writer
	// IsTerminal overrides the tty check on In, for tests
	IsTerminal func() bool
}

// NewPromptPermission prompts on stdin/stderr
func NewPromptPermission() *PromptPermission {
	return &PromptPermission{
		In:  os.Stdin,
		Out: os.Stderr,
		IsTerminal: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

func (p *PromptPermission) Request(ctx context.Context, kind Kind) (Decision, error) {
	if p.IsTerminal != nil && !p.IsTerminal() {
		return Denied, fmt.Errorf("prompt for %s: %w", kind, ErrUnsupported)
	}

	fmt.Fprintf(p.Out, "Permitir que o aplicativo acesse sua localização precisa? [s/N] ")

	answers := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(p.In).ReadString('\n')
		answers <- line
	}()

	select {
	case <-ctx.Done():
		return Denied, ctx.Err()
	case line := <-answers:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "s", "sim", "y", "yes":
			return Granted, nil
		}
		return Denied, nil
	}
}
