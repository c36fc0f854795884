package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/pkg/config"
)

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as TOML (the API key is omitted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Write(cmd.OutOrStdout(), c.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "List the configuration files that are read",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := []string{config.ProjectPath()}
			if c.ConfigPath != "" {
				paths = []string{c.ConfigPath}
			} else if global, err := config.GlobalPath(); err == nil {
				paths = append([]string{global}, paths...)
			}
			for _, p := range paths {
				state := "missing"
				if _, err := os.Stat(p); err == nil {
					state = "found"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p, state)
			}
			return nil
		},
	})

	return cmd
}
