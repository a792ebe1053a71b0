package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyp0633/librrule/recurrence"
	"github.com/cyp0633/librrule/rrule"
)

// RangeOptions holds the window and output flags of the expanding commands.
type RangeOptions struct {
	From    string
	To      string
	Limit   int
	Summary string
}

func (r *RangeOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.From, "from", "", "window start (RFC 3339, YYYY-MM-DD or a phrase like \"next monday\")")
	cmd.Flags().StringVar(&r.To, "to", "", "window end, inclusive")
	cmd.Flags().IntVarP(&r.Limit, "limit", "n", 0, "maximum occurrences (overrides the configured limit)")
	cmd.Flags().StringVar(&r.Summary, "summary", "", "SUMMARY for ics and xcal output")
}

// window resolves the flags against fallbacks used when a flag is empty.
func (r *RangeOptions) window(now, from, to time.Time) (time.Time, time.Time, error) {
	parser := newDateParser()
	var err error
	if r.From != "" {
		if from, err = parseDate(parser, r.From, now); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if r.To != "" {
		if to, err = parseDate(parser, r.To, now); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s is before %s", recurrence.ErrInvalidRange, to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	return from, to, nil
}

func (r *RangeOptions) expansion(config recurrence.EngineConfig) recurrence.ExpansionOptions {
	opts := config.Expansion
	if r.Limit > 0 {
		opts.MaxOccurrences = r.Limit
	}
	return opts
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RangeOptions{}
	cmd := &cobra.Command{
		Use:   "expand <rule>",
		Short: "List the occurrences of a rule",
		Long: `List the occurrences of a rule inside a window.

The window defaults to the rule's DTSTART up to its DTEND, or one year
past DTSTART when the rule is open ended.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.fail(runExpand(rootOpts, opts, cmd, args[0]))
		},
	}
	opts.bind(cmd)
	return cmd
}

func runExpand(rootOpts *RootOptions, opts *RangeOptions, cmd *cobra.Command, text string) error {
	rule, err := rrule.Parse(text)
	if err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	to := rule.End().OrElse(rule.Start().AddDate(1, 0, 0))
	from, to, err := opts.window(time.Now(), rule.Start(), to)
	if err != nil {
		return err
	}

	engine := recurrence.NewEngine(
		recurrence.WithConfig(rootOpts.config),
		recurrence.WithLogger(rootOpts.logger),
	)
	defer engine.Close()

	occurrences, err := engine.Expand(cmd.Context(), recurrence.Event{Rule: rule}, from, to, opts.expansion(rootOpts.config))
	if err != nil {
		return err
	}
	rootOpts.logger.Debug("expanded rule", "from", from, "to", to, "count", len(occurrences))
	return writeOccurrences(cmd.OutOrStdout(), rootOpts.Format, rule, occurrences, opts.Summary)
}
