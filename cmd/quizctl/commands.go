package main

import (
	"fmt"
	"strings"

	"history-quiz/internal/domain"
	"history-quiz/internal/evaluator"

	"github.com/spf13/cobra"
)

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics [name]",
		Short: "List periods, or show one period's study text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for i, name := range catalog.Names() {
					fmt.Fprintf(out, "%d. %s\n", i+1, name)
				}
				return nil
			}

			period, err := catalog.Period(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n\n%s\n", period.Name, period.Summary)
			for _, a := range domain.Aspects() {
				if text := period.AspectText(a); text != "" {
					fmt.Fprintf(out, "\n[%s]\n%s\n", a, text)
				}
			}
			return nil
		},
	}
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <text>",
		Short: "Print the normalized form used for fill-in comparison",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%q\n", evaluator.Normalize(strings.Join(args, " ")))
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	var (
		multipleChoice bool
		rejectEmpty    bool
	)

	cmd := &cobra.Command{
		Use:   "check <answer> <expected>",
		Short: "Score one answer against the expected answer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev := evaluator.New(evaluator.WithRejectEmptyNormalized(rejectEmpty))
			answer, expected := args[0], args[1]

			var ok bool
			if multipleChoice {
				ok = ev.CheckMultipleChoice(answer, expected)
			} else {
				ok = ev.CheckFillIn(answer, expected)
				fmt.Fprintf(cmd.OutOrStdout(), "answer:   %q\nexpected: %q\n",
					evaluator.Normalize(answer), evaluator.Normalize(expected))
			}

			if ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Correct")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Incorrect")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&multipleChoice, "mc", false, "compare as a multiple-choice letter")
	cmd.Flags().BoolVar(&rejectEmpty, "reject-empty", false, "score answers that normalize to nothing as incorrect")
	return cmd
}
