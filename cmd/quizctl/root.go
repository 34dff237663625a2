package main

import (
	"io"

	"history-quiz/internal/content"

	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree writing to out.
func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "quizctl",
		Short:         "Offline tools for the history revision service",
		Long:          "quizctl inspects the study content and exercises the answer evaluator without a server or completion service.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().String("content", "", "Path to a periods YAML file (defaults to the embedded dataset)")

	root.AddCommand(newTopicsCmd())
	root.AddCommand(newNormalizeCmd())
	root.AddCommand(newCheckCmd())
	return root
}

func loadCatalog(cmd *cobra.Command) (*content.Catalog, error) {
	if p, _ := cmd.Flags().GetString("content"); p != "" {
		return content.LoadFile(p)
	}
	return content.Default()
}
