package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// Confirm prints a yes/no prompt and reads the answer, respecting context
// cancellation. Anything other than "y"/"yes" counts as no.
func Confirm(ctx context.Context, r io.Reader, w io.Writer, prompt string) (bool, error) {
	fmt.Fprint(w, FormatPrompt(prompt+" [y/N]"))

	type result struct {
		line string
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		line, err := bufio.NewReader(r).ReadString('\n')
		resultCh <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil && res.err != io.EOF {
			return false, res.err
		}
		answer := strings.ToLower(strings.TrimSpace(res.line))
		return answer == "y" || answer == "yes", nil
	}
}
