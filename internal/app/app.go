// Package app assembles the vidtube command tree and the HTTP service.
package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// AppName is the binary and root command name.
const AppName = "vidtube"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

// NewRootCmd builds the vidtube command tree.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "vidtube - video sharing backend",
		Long:          "vidtube serves the video sharing API and manages its database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.AddCommand(
		NewServeCmd(),
		NewMigrateCmd(),
		NewSeedCmd(),
	)
	return cmd
}

// Run executes the command named by args.
func Run(ctx context.Context, args []string) error {
	root := NewRootCmd(Version)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
