package pipeline

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Cat-Zav/Music-Models/pkg/dataprep"
	"github.com/Cat-Zav/Music-Models/pkg/model"
	"github.com/Cat-Zav/Music-Models/pkg/transform"
)

// Missingness policies.
const (
	PolicyDrop   = "drop"
	PolicyImpute = "impute"
)

// BucketSpec remaps a categorical column's raw values onto coarser buckets,
// with a fallback bucket for anything unmapped.
type BucketSpec struct {
	Mapping  map[string]string `yaml:"mapping" mapstructure:"mapping"`
	Fallback string            `yaml:"fallback" mapstructure:"fallback"`
}

// Config is the full configuration surface of a pipeline run. Everything the
// run depends on is enumerated here; the stages read nothing else.
type Config struct {
	Target   string   `yaml:"target" mapstructure:"target"`
	Features []string `yaml:"features" mapstructure:"features"`

	TrainFraction float64 `yaml:"train_fraction" mapstructure:"train_fraction"`
	Seed          int64   `yaml:"seed" mapstructure:"seed"`

	// drop or impute; rows missing every feature are dropped either way.
	MissingnessPolicy string `yaml:"missingness_policy" mapstructure:"missingness_policy"`

	// Encoding for categorical feature columns: label or freq.
	Encoding string `yaml:"encoding" mapstructure:"encoding"`

	Sentinels map[string]dataprep.SentinelRule `yaml:"sentinels" mapstructure:"sentinels"`
	Outliers  map[string]dataprep.Bounds       `yaml:"outliers" mapstructure:"outliers"`

	// Transform candidates per numeric column; a column absent here keeps
	// the identity, which is also the override hatch for columns where
	// automatic selection is unsafe.
	Transforms map[string][]transform.Kind `yaml:"transforms" mapstructure:"transforms"`

	Buckets map[string]BucketSpec `yaml:"buckets" mapstructure:"buckets"`

	Model model.Config `yaml:"model" mapstructure:"model"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		TrainFraction:     0.7,
		Seed:              42,
		MissingnessPolicy: PolicyDrop,
		Encoding:          "label",
		Model: model.Config{
			Kind:         model.KindLogistic,
			LearningRate: 0.1,
			Epochs:       500,
			Threshold:    0.5,
		},
	}
}

// Load reads configuration from a YAML file with environment overrides
// (MUSICMODELS_*). Precedence: env > file > defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MUSICMODELS")
	v.AutomaticEnv()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := Default()
	v.SetDefault("train_fraction", def.TrainFraction)
	v.SetDefault("seed", def.Seed)
	v.SetDefault("missingness_policy", def.MissingnessPolicy)
	v.SetDefault("encoding", def.Encoding)
	v.SetDefault("model.kind", string(def.Model.Kind))
	v.SetDefault("model.learning_rate", def.Model.LearningRate)
	v.SetDefault("model.epochs", def.Model.Epochs)
	v.SetDefault("model.threshold", def.Model.Threshold)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c Config) Save(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}

// Validate rejects configurations no run could satisfy.
func (c *Config) Validate() error {
	if c.Target == "" {
		return errors.New("config: target column required")
	}
	if len(c.Features) == 0 {
		return errors.New("config: at least one feature column required")
	}
	for _, f := range c.Features {
		if f == c.Target {
			return errors.Errorf("config: target %q listed as a feature", c.Target)
		}
	}
	if c.TrainFraction <= 0 || c.TrainFraction >= 1 {
		return errors.Errorf("config: train fraction %g outside (0, 1)", c.TrainFraction)
	}
	switch c.MissingnessPolicy {
	case PolicyDrop, PolicyImpute:
	default:
		return errors.Errorf("config: unknown missingness policy %q", c.MissingnessPolicy)
	}
	switch c.Encoding {
	case "label", "freq":
	default:
		return errors.Errorf("config: unknown encoding %q", c.Encoding)
	}
	return nil
}
