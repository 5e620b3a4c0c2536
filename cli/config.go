package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ezoic/coffeestats/config"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or create coffeestats configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := yaml.Marshal(o.cfg)
			if err != nil {
				return csErrors.Wrap(err, "marshal config")
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write the default configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return csErrors.Newf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}
