package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user where to save. It returns ErrCancelled when the
// user declines.
type Prompter interface {
	SaveAs(ctx context.Context, suggested string) (string, error)
}

// LinePrompter is a terminal "save as" dialog: Enter keeps the suggestion,
// any other text is used as the path and "cancel" or end of input aborts.
// One reader is kept across prompts so buffered answers are not lost.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer

	r *bufio.Reader
}

func (p *LinePrompter) SaveAs(ctx context.Context, suggested string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintf(p.Out, "Save as [%s]: ", suggested); err != nil {
		return "", err
	}
	if p.r == nil {
		p.r = bufio.NewReader(p.In)
	}
	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", ErrCancelled
		}
		return "", err
	}
	answer := strings.TrimSpace(line)
	switch strings.ToLower(answer) {
	case "":
		return suggested, nil
	case "cancel", "q":
		return "", ErrCancelled
	}
	return answer, nil
}
