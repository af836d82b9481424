package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/lode/internal/app"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the dependencies declared in package.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			production, _ := cmd.Flags().GetBool("production")
			dir, _ := cmd.Flags().GetString("dir")
			return c.app.Install(cmd.Context(), app.InstallOptions{
				Dir:        dir,
				Production: production,
			})
		},
	}
	cmd.Flags().BoolP("production", "p", false, "Skip development dependencies")
	cmd.Flags().StringP("dir", "C", "", "Project directory (defaults to the current directory)")
	return cmd
}
