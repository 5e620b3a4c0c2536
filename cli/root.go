// Package cli is the coffeestats command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ezoic/coffeestats/config"
	"github.com/ezoic/coffeestats/pkg/log"
)

// options are the persistent flags and the configuration they produce.
type options struct {
	cfgFile   string
	logLevel  string
	outputDir string
	seed      int64

	cfg *config.Config
}

// NewRootCmd builds the command tree. Reports are written to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "coffeestats",
		Short: "Statistics and charts on coffee production and technification",
		Long: `coffeestats loads the yearly technification and regional production datasets,
computes descriptive statistics, k-means technification levels, OLS regression,
ANOVA and correlations, and writes a console report, charts and a results table.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.load(cmd)
		},
	}
	root.SetOut(out)

	f := root.PersistentFlags()
	f.StringVar(&o.cfgFile, "config", "", "config file (default is ./coffeestats.yaml if present)")
	f.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	f.StringVar(&o.outputDir, "output-dir", "", "directory for charts and tables (overrides config)")
	f.Int64Var(&o.seed, "seed", 0, "k-means random seed (overrides config)")

	root.AddCommand(newRunCmd(o), newSelectKCmd(o), newDescribeCmd(o), newConfigCmd(o))
	return root
}

// load reads the configuration and applies the flags that were set.
func (o *options) load(cmd *cobra.Command) error {
	c, err := config.Load(o.cfgFile)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("log-level") {
		c.LogLevel = o.logLevel
	}
	if f.Changed("output-dir") {
		c.Output.Dir = o.outputDir
	}
	if f.Changed("seed") {
		c.Cluster.Seed = o.seed
	}
	log.SetupLogger(c.LogLevel)
	o.cfg = c
	return nil
}

// Execute runs the root command and exits non-zero on failure. It is the entry
// point called by main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		log.LogError(err, "coffeestats failed")
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
