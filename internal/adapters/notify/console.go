package notify

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

// Console prints notifications as single colored lines. The duration is
// ignored; terminal lines do not expire.
type Console struct {
	out     io.Writer
	success *color.Color
	failure *color.Color
	info    *color.Color
}

func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = color.Output
	}
	return &Console{
		out:     out,
		success: color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		info:    color.New(color.FgCyan),
	}
}

func (c *Console) Notify(message string, severity services.Severity, _ time.Duration) {
	var glyph string
	var printer *color.Color
	switch severity {
	case services.SeveritySuccess:
		glyph, printer = "✓", c.success
	case services.SeverityError:
		glyph, printer = "✗", c.failure
	default:
		glyph, printer = "•", c.info
	}
	_, _ = fmt.Fprintln(c.out, printer.Sprintf("%s %s", glyph, message))
}
