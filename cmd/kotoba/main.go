package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/kotoba/internal/cli"
	"codeberg.org/snonux/kotoba/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create commands
	rootCmd := cli.CreateRootCommand(flags)
	serveCmd := cli.CreateServeCommand(flags)
	historyCmd := cli.CreateHistoryCommand(flags)
	rootCmd.AddCommand(serveCmd, historyCmd)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), args, flags)
	}
	serveCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return processor.NewProcessor(flags).Serve(cmd.Context())
	}
	historyCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return processor.NewProcessor(flags).ShowHistory(cmd.Context())
	}

	// Execute command
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, args []string, flags *cli.Flags) error {
	proc := processor.NewProcessor(flags)

	// Handle --list-models flag
	if flags.ListModels {
		return proc.ListModels(ctx)
	}

	if len(args) > 0 {
		return proc.ProcessText(ctx, args[0])
	}

	// No input provided - launch GUI mode by default
	return proc.RunGUIMode()
}
