package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyp0633/librrule/recurrence"
)

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RangeOptions{}
	cmd := &cobra.Command{
		Use:   "events <file.ics|->",
		Short: "Expand every VEVENT of an iCalendar file",
		Long: `Expand every VEVENT of an iCalendar file inside a window
and print the merged occurrences in start order.

The window defaults to the next 30 days.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.fail(runEvents(rootOpts, opts, cmd, args[0]))
		},
	}
	opts.bind(cmd)
	return cmd
}

func runEvents(rootOpts *RootOptions, opts *RangeOptions, cmd *cobra.Command, path string) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	events, err := recurrence.EventsFromICS(r)
	if err != nil {
		return err
	}

	now := time.Now()
	from, to, err := opts.window(now, now, now.AddDate(0, 0, 30))
	if err != nil {
		return err
	}

	engine := recurrence.NewEngine(
		recurrence.WithConfig(rootOpts.config),
		recurrence.WithLogger(rootOpts.logger),
	)
	defer engine.Close()

	expansion := opts.expansion(rootOpts.config)
	var all []recurrence.TimeOccurrence
	for i, ev := range events {
		occurrences, err := engine.Expand(cmd.Context(), ev, from, to, expansion)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		all = append(all, occurrences...)
	}
	slices.SortStableFunc(all, func(a, b recurrence.TimeOccurrence) int {
		return a.Start.Compare(b.Start)
	})
	if expansion.MaxOccurrences > 0 && len(all) > expansion.MaxOccurrences {
		all = all[:expansion.MaxOccurrences]
	}
	rootOpts.logger.Debug("expanded calendar", "events", len(events), "count", len(all))
	return writeOccurrences(cmd.OutOrStdout(), rootOpts.Format, nil, all, opts.Summary)
}
