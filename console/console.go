// Package console is a line-oriented terminal implementation of
// elicitation.Callback.
//
// Each field is prompted on its own line. An empty line takes the field's
// default (or skips an optional field), "/decline" declines and "/cancel"
// cancels at any prompt. Malformed input is re-prompted until the per-field
// attempt budget runs out, at which point the request resolves as the
// configured exhausted outcome (Declined unless overridden). End of input
// cancels.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/ggoodman/elicit/elicitation"
)

const (
	// CommandDecline declines the request from any prompt.
	CommandDecline = "/decline"
	// CommandCancel cancels the request from any prompt.
	CommandCancel = "/cancel"

	defaultMaxAttempts = 3
)

// Console prompts on a writer and reads answers from a reader. Concurrent
// requests are presented one at a time.
type Console struct {
	in          *lineReader
	out         io.Writer
	log         *slog.Logger
	maxAttempts int
	exhausted   elicitation.Result
	colorize    *bool

	turn chan struct{}

	heading *color.Color
	prompt  *color.Color
	hint    *color.Color
	problem *color.Color
}

var _ elicitation.Callback = (*Console)(nil)

// Option configures a Console.
type Option func(*Console)

// WithIO sets the input and output streams. Defaults to stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Console) {
		if in != nil {
			c.in = newLineReader(in)
		}
		if out != nil {
			c.out = out
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMaxAttempts sets how many malformed answers a single field tolerates
// before the request resolves as the exhausted outcome.
func WithMaxAttempts(n int) Option {
	return func(c *Console) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithExhaustedOutcome selects the result used when the attempt budget runs
// out. Only Declined and Cancelled are meaningful.
func WithExhaustedOutcome(r elicitation.Result) Option {
	return func(c *Console) {
		switch r.(type) {
		case elicitation.Declined, *elicitation.Declined:
			c.exhausted = elicitation.Declined{}
		case elicitation.Cancelled, *elicitation.Cancelled:
			c.exhausted = elicitation.Cancelled{}
		}
	}
}

// WithColor forces colored output on or off. By default color is used when
// the output is a terminal.
func WithColor(enabled bool) Option {
	return func(c *Console) { c.colorize = &enabled }
}

// New returns a Console.
func New(opts ...Option) *Console {
	c := &Console{
		out:         os.Stdout,
		log:         slog.Default(),
		maxAttempts: defaultMaxAttempts,
		exhausted:   elicitation.Declined{},
		turn:        make(chan struct{}, 1),
		heading:     color.New(color.Bold),
		prompt:      color.New(color.FgCyan),
		hint:        color.New(color.Faint),
		problem:     color.New(color.FgRed),
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	if c.in == nil {
		c.in = newLineReader(os.Stdin)
	}
	enabled := isTerminal(c.out)
	if c.colorize != nil {
		enabled = *c.colorize
	}
	for _, p := range []*color.Color{c.heading, c.prompt, c.hint, c.problem} {
		if enabled {
			p.EnableColor()
		} else {
			p.DisableColor()
		}
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// errStop ends the interaction with a terminal result.
type errStop struct{ res elicitation.Result }

func (e errStop) Error() string { return "console: interaction ended" }

// Elicit presents req and collects one answer per field.
func (c *Console) Elicit(ctx context.Context, req *elicitation.Request) (elicitation.Result, error) {
	select {
	case c.turn <- struct{}{}:
	case <-ctx.Done():
		return elicitation.Cancelled{}, nil
	}
	defer func() { <-c.turn }()

	c.present(req)

	data := make(map[string]any, req.Schema.Len())
	for _, f := range req.Schema.Fields() {
		v, ok, err := c.askField(ctx, f)
		if err != nil {
			var stop errStop
			if errors.As(err, &stop) {
				c.log.DebugContext(ctx, "console.elicit.stop", slog.String("action", string(stop.res.Action())))
				return stop.res, nil
			}
			return nil, err
		}
		if ok {
			data[f.Name] = v
		}
	}
	return elicitation.Accepted{Data: data}, nil
}

func (c *Console) present(req *elicitation.Request) {
	fmt.Fprintln(c.out)
	if req.Source != "" {
		c.hint.Fprintf(c.out, "[%s] ", req.Source)
	}
	c.heading.Fprintln(c.out, req.Message)
	c.hint.Fprintf(c.out, "(type %s to decline or %s to cancel)\n", CommandDecline, CommandCancel)
}

// askField returns the parsed value and whether the field should be set.
func (c *Console) askField(ctx context.Context, f elicitation.Field) (any, bool, error) {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		c.printPrompt(f)
		raw, err := c.in.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil, false, errStop{res: elicitation.Cancelled{}}
			}
			return nil, false, fmt.Errorf("console: read input: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(raw)) {
		case CommandDecline:
			return nil, false, errStop{res: elicitation.Declined{}}
		case CommandCancel:
			return nil, false, errStop{res: elicitation.Cancelled{}}
		case "":
			if f.HasDefault() {
				return f.Default, true, nil
			}
			if !f.Required {
				return nil, false, nil
			}
			c.problem.Fprintln(c.out, "  a value is required")
			continue
		}

		v, err := ParseValue(f, raw)
		if err != nil {
			c.log.DebugContext(ctx, "console.field.invalid", slog.String("field", f.Name), slog.Int("attempt", attempt))
			c.problem.Fprintf(c.out, "  %v\n", err)
			continue
		}
		return v, true, nil
	}
	c.problem.Fprintf(c.out, "  too many invalid answers for %s\n", f.Name)
	c.log.WarnContext(ctx, "console.field.exhausted", slog.String("field", f.Name), slog.Int("attempts", c.maxAttempts))
	return nil, false, errStop{res: c.exhausted}
}

func (c *Console) printPrompt(f elicitation.Field) {
	label := f.Title
	if label == "" {
		label = f.Name
	}
	if f.Description != "" {
		c.hint.Fprintf(c.out, "  %s\n", f.Description)
	}

	var details []string
	details = append(details, kindHint(f))
	if f.Required {
		details = append(details, "required")
	}
	if f.HasDefault() {
		details = append(details, fmt.Sprintf("default %v", formatDefault(f.Default)))
	}
	c.prompt.Fprintf(c.out, "%s ", label)
	c.hint.Fprintf(c.out, "(%s)", strings.Join(details, ", "))
	fmt.Fprint(c.out, ": ")
}

func kindHint(f elicitation.Field) string {
	switch {
	case len(f.Enum) > 0:
		return "one of " + strings.Join(f.Enum, "|")
	case f.Kind == elicitation.KindBoolean:
		return "y/n"
	}
	return f.Kind.Label()
}

func formatDefault(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}
