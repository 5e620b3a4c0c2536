// Package config holds every tunable of a coffeestats run.
//
// Values come, in increasing precedence, from Default, a YAML file, and
// COFFEESTATS_* environment variables (nested keys joined by underscores,
// e.g. COFFEESTATS_CLUSTER_SEED). Command-line flags are applied on top by the
// CLI. Nothing in the analysis reads global state: the loaded Config is passed
// to each component.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "COFFEESTATS"

// Config is the full run configuration.
type Config struct {
	LogLevel string  `mapstructure:"log_level" yaml:"log_level"`
	Alpha    float64 `mapstructure:"alpha" yaml:"alpha"`

	Yearly   YearlyConfig   `mapstructure:"yearly" yaml:"yearly"`
	Regional RegionalConfig `mapstructure:"regional" yaml:"regional"`
	Cluster  ClusterConfig  `mapstructure:"cluster" yaml:"cluster"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Chart    ChartConfig    `mapstructure:"chart" yaml:"chart"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// YearlyConfig describes the one-row-per-year technification dataset.
type YearlyConfig struct {
	Path              string   `mapstructure:"path" yaml:"path"`
	YearColumn        string   `mapstructure:"year_column" yaml:"year_column"`
	Features          []string `mapstructure:"features" yaml:"features"`
	ReferenceColumn   string   `mapstructure:"reference_column" yaml:"reference_column"`
	ProductivityCol   string   `mapstructure:"productivity_column" yaml:"productivity_column"`
	SpecialtyColumn   string   `mapstructure:"specialty_column" yaml:"specialty_column"`
	TotalColumn       string   `mapstructure:"total_column" yaml:"total_column"`
	AreaColumn        string   `mapstructure:"area_column" yaml:"area_column"`
	InvestmentColumn  string   `mapstructure:"investment_column" yaml:"investment_column"`
	PrecipitationCol  string   `mapstructure:"precipitation_column" yaml:"precipitation_column"`
	TemperatureColumn string   `mapstructure:"temperature_column" yaml:"temperature_column"`
	CorrelationCols   []string `mapstructure:"correlation_columns" yaml:"correlation_columns"`
	ResultsTable      string   `mapstructure:"results_table" yaml:"results_table"`
}

// RegionalConfig describes the year by region production dataset.
type RegionalConfig struct {
	Path            string   `mapstructure:"path" yaml:"path"`
	YearColumn      string   `mapstructure:"year_column" yaml:"year_column"`
	RegionColumn    string   `mapstructure:"region_column" yaml:"region_column"`
	Target          string   `mapstructure:"target" yaml:"target"`
	Predictors      []string `mapstructure:"predictors" yaml:"predictors"`
	DescribeColumns []string `mapstructure:"describe_columns" yaml:"describe_columns"`
}

// ClusterConfig holds the k-means parameters. K is always explicit; KMin..KMax
// is only the advisory sweep range.
type ClusterConfig struct {
	K            int      `mapstructure:"k" yaml:"k"`
	KMin         int      `mapstructure:"k_min" yaml:"k_min"`
	KMax         int      `mapstructure:"k_max" yaml:"k_max"`
	NInit        int      `mapstructure:"n_init" yaml:"n_init"`
	MaxIter      int      `mapstructure:"max_iter" yaml:"max_iter"`
	Tol          float64  `mapstructure:"tol" yaml:"tol"`
	Seed         int64    `mapstructure:"seed" yaml:"seed"`
	Init         string   `mapstructure:"init" yaml:"init"`
	Workers      int      `mapstructure:"workers" yaml:"workers"`
	Labels       []string `mapstructure:"labels" yaml:"labels"`
	IDColumn     string   `mapstructure:"id_column" yaml:"id_column"`
	LabelColumn  string   `mapstructure:"label_column" yaml:"label_column"`
	SelectKSweep bool     `mapstructure:"select_k_sweep" yaml:"select_k_sweep"`
}

// OutputConfig locates the artifacts.
type OutputConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Charts bool   `mapstructure:"charts" yaml:"charts"`
	Color  bool   `mapstructure:"color" yaml:"color"`
}

// ChartConfig sizes charts. Width and Height are in inches.
type ChartConfig struct {
	Width               float64 `mapstructure:"width" yaml:"width"`
	Height              float64 `mapstructure:"height" yaml:"height"`
	DPI                 int     `mapstructure:"dpi" yaml:"dpi"`
	FontSize            float64 `mapstructure:"font_size" yaml:"font_size"`
	Format              string  `mapstructure:"format" yaml:"format"`
	EvolutionAllRegions bool    `mapstructure:"evolution_all_regions" yaml:"evolution_all_regions"`
}

// MetricsConfig controls the Prometheus textfile written at the end of a run.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// Default returns the configuration of the published analysis.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Alpha:    0.05,
		Yearly: YearlyConfig{
			Path:              "data/yearly_technification.csv",
			YearColumn:        "year",
			Features:          []string{"technology_index", "investment", "productivity", "specialty_production"},
			ReferenceColumn:   "technology_index",
			ProductivityCol:   "productivity",
			SpecialtyColumn:   "specialty_production",
			TotalColumn:       "total_production",
			AreaColumn:        "harvested_area",
			InvestmentColumn:  "investment",
			PrecipitationCol:  "precipitation",
			TemperatureColumn: "mean_temperature",
			CorrelationCols: []string{
				"technology_index", "investment", "productivity", "specialty_production",
				"total_production", "harvested_area", "precipitation", "mean_temperature",
			},
			ResultsTable: "cluster_results.csv",
		},
		Regional: RegionalConfig{
			Path:         "data/regional_production.csv",
			YearColumn:   "year",
			RegionColumn: "region",
			Target:       "productivity_bags_ha",
			Predictors:   []string{"mechanization_pct", "irrigation_pct", "precision_tech_pct"},
			DescribeColumns: []string{
				"production_bags", "area_ha", "productivity_bags_ha", "mechanization_pct",
				"irrigation_pct", "precision_tech_pct", "production_value", "tech_investment",
			},
		},
		Cluster: ClusterConfig{
			K:            3,
			KMin:         2,
			KMax:         7,
			NInit:        10,
			MaxIter:      300,
			Tol:          1e-4,
			Seed:         42,
			Init:         "k-means++",
			Labels:       []string{"Low Technification", "Medium Technification", "High Technification"},
			IDColumn:     "cluster",
			LabelColumn:  "technification_level",
			SelectKSweep: true,
		},
		Output: OutputConfig{
			Dir:    "output",
			Charts: true,
			Color:  true,
		},
		Chart: ChartConfig{
			Width:    12,
			Height:   7,
			DPI:      300,
			FontSize: 11,
			Format:   "png",
		},
	}
}

// KRange returns KMin..KMax inclusive.
func (c ClusterConfig) KRange() []int {
	var ks []int
	for k := c.KMin; k <= c.KMax; k++ {
		ks = append(ks, k)
	}
	return ks
}

// OutputPath joins name onto the output directory.
func (c *Config) OutputPath(name string) string {
	return filepath.Join(c.Output.Dir, name)
}

// Load reads configuration from path (optional), the environment and defaults.
// With an empty path, coffeestats.yaml in the working directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := setDefaults(v, Default()); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, csErrors.Wrapf(err, "read config %s", path)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("coffeestats")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !csErrors.As(err, &notFound) {
				return nil, csErrors.Wrap(err, "read config")
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, csErrors.Wrap(err, "unmarshal config")
	}
	return &c, nil
}

// setDefaults registers every leaf of d as a viper default so that
// AutomaticEnv can see nested keys.
func setDefaults(v *viper.Viper, d *Config) error {
	b, err := yaml.Marshal(d)
	if err != nil {
		return csErrors.Wrap(err, "marshal defaults")
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(b, &tree); err != nil {
		return csErrors.Wrap(err, "unmarshal defaults")
	}
	var walk func(prefix string, m map[string]interface{})
	walk = func(prefix string, m map[string]interface{}) {
		for k, val := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if sub, ok := val.(map[string]interface{}); ok {
				walk(key, sub)
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)
	return nil
}

// Save writes c as YAML to path, creating the parent directory.
func Save(c *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return csErrors.Wrap(err, "mkdir config dir")
		}
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return csErrors.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return csErrors.Wrap(err, "write config")
	}
	return nil
}

// Validate checks the values the analysis cannot run without.
func (c *Config) Validate() error {
	cl := c.Cluster
	switch {
	case c.Yearly.Path == "" && c.Regional.Path == "":
		return csErrors.NewValidationError("yearly.path", "at least one dataset path is required", "")
	case cl.K < 1:
		return csErrors.NewValidationError("cluster.k", "must be at least 1", cl.K)
	case len(cl.Labels) != cl.K:
		return csErrors.NewValidationError("cluster.labels", "need exactly one label per cluster", cl.Labels)
	case cl.KMin < 1 || cl.KMax < cl.KMin:
		return csErrors.NewValidationError("cluster.k_min", "k range must satisfy 1 <= k_min <= k_max", []int{cl.KMin, cl.KMax})
	case cl.NInit < 1:
		return csErrors.NewValidationError("cluster.n_init", "must be at least 1", cl.NInit)
	case cl.MaxIter < 1:
		return csErrors.NewValidationError("cluster.max_iter", "must be at least 1", cl.MaxIter)
	case cl.Init != "k-means++" && cl.Init != "random":
		return csErrors.NewValidationError("cluster.init", "must be k-means++ or random", cl.Init)
	case c.Yearly.Path != "" && len(c.Yearly.Features) == 0:
		return csErrors.NewValidationError("yearly.features", "at least one clustering feature is required", c.Yearly.Features)
	case c.Regional.Path != "" && len(c.Regional.Predictors) == 0:
		return csErrors.NewValidationError("regional.predictors", "at least one predictor is required", c.Regional.Predictors)
	case c.Alpha <= 0 || c.Alpha >= 1:
		return csErrors.NewValidationError("alpha", "must be in (0, 1)", c.Alpha)
	case c.Chart.DPI <= 0:
		return csErrors.NewValidationError("chart.dpi", "must be positive", c.Chart.DPI)
	case c.Chart.Width <= 0 || c.Chart.Height <= 0:
		return csErrors.NewValidationError("chart.width", "chart size must be positive", []float64{c.Chart.Width, c.Chart.Height})
	case c.Chart.Format != "png" && c.Chart.Format != "jpg" && c.Chart.Format != "jpeg":
		return csErrors.NewValidationError("chart.format", "must be png or jpg", c.Chart.Format)
	case c.Output.Dir == "":
		return csErrors.NewValidationError("output.dir", "must not be empty", "")
	}
	return nil
}
