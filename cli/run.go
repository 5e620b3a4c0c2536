package cli

import (
	"github.com/spf13/cobra"

	"github.com/ezoic/coffeestats/pipeline"
)

func newRunCmd(o *options) *cobra.Command {
	var noCharts bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every configured analysis and write the report, charts and results table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noCharts {
				o.cfg.Output.Charts = false
			}
			return pipeline.New(o.cfg, cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "skip chart rendering")
	return cmd
}

func newSelectKCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "select-k",
		Short: "Print inertia and silhouette for each candidate number of clusters",
		Long: `select-k fits k-means on the standardized yearly features for every k in
cluster.k_min..cluster.k_max. It only informs the choice of cluster.k.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := pipeline.New(o.cfg, cmd.OutOrStdout()).SelectK(cmd.Context())
			return err
		},
	}
}

func newDescribeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print descriptive statistics of the configured datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pipeline.New(o.cfg, cmd.OutOrStdout()).Describe(cmd.Context())
		},
	}
}
