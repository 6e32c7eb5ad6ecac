//go:build linux

package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pranshuparmar/socktest/internal/engine"
	"github.com/pranshuparmar/socktest/internal/tui"
)

// runPlain prompts on out and runs each non-blank line from in until quit,
// end of input or ctx ends.
func runPlain(ctx context.Context, in io.Reader, out io.Writer, exec tui.Executor, intr *engine.Interrupter) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(out, exec.Prompt())
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			cmdCtx, done := intr.Begin(ctx)
			quit := exec.Execute(cmdCtx, line)
			done()
			if quit {
				return nil
			}
		}
	}
}
