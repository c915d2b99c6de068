package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "recap",
		Short:         "Assemble chaptered recap videos from contestant snippets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.PersistentFlags().StringVarP(&g.config, "config", "c", "", "Configuration file (default recap.toml or recap.yaml)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override logging.level")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Override logging.format (console, json)")

	root.AddCommand(newRunCommand(g))
	root.AddCommand(newHistoryCommand(g))
	root.AddCommand(newDoctorCommand(g))
	root.AddCommand(newConfigCommand(g))
	return root
}
