package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cyp0633/librrule/rrule"
)

type validateResult struct {
	Valid     bool   `json:"valid"`
	Rule      string `json:"rule,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <rule>",
		Short: "Check a rule and print its normalized form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.fail(runValidate(rootOpts, cmd, args[0]))
		},
	}
}

func runValidate(opts *RootOptions, cmd *cobra.Command, text string) error {
	rule, err := rrule.Parse(text)

	result := validateResult{Valid: err == nil}
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Rule = rule.String()
		result.Frequency = rule.Frequency().Kind().String()
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return encErr
		}
	} else if err == nil {
		if _, err := fmt.Fprintln(out, result.Rule); err != nil {
			return err
		}
	}
	if err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}
	opts.logger.Debug("rule is valid", "frequency", result.Frequency)
	return nil
}
