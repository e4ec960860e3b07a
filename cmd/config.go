package cmd

import (
	"github.com/bgokden/labelsplit/split"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Viper keys of the split parameters.
const (
	keyDatasetScale    = "datasetScale"
	keyKeepClassDist   = "keepClassDistForTraining"
	keyTrainSplit      = "trainSplit"
	keyValidationSplit = "validationSplit"
	keyTestSplit       = "testSplit"
	keySeed            = "seed"
)

// SplitSettings is the split section of the configuration.
type SplitSettings struct {
	split.Config `mapstructure:",squash"`
	Seed         int64 `mapstructure:"seed"`
}

// SetSplitDefaults registers the default split parameters on v.
func SetSplitDefaults(v *viper.Viper) {
	def := split.DefaultConfig()
	v.SetDefault(keyDatasetScale, def.DatasetScale)
	v.SetDefault(keyKeepClassDist, def.KeepClassDistForTraining)
	v.SetDefault(keyTrainSplit, def.TrainSplit)
	v.SetDefault(keyValidationSplit, def.ValidationSplit)
	v.SetDefault(keyTestSplit, def.TestSplit)
	v.SetDefault(keySeed, int64(0))
}

// LoadSplitSettings reads and validates the split parameters held by v.
func LoadSplitSettings(v *viper.Viper) (SplitSettings, error) {
	var settings SplitSettings
	if err := v.Unmarshal(&settings); err != nil {
		return SplitSettings{}, errors.Wrap(err, "reading split configuration")
	}
	if err := split.ValidateConfig(settings.Config); err != nil {
		return SplitSettings{}, err
	}
	return settings, nil
}

// Options returns the partitioner options the settings ask for.
func (s SplitSettings) Options() []split.Option {
	if s.Seed == 0 {
		return nil
	}
	return []split.Option{split.WithSeed(s.Seed)}
}

// bindSplitFlags adds the split flags to fs and binds them to v.
func bindSplitFlags(fs *pflag.FlagSet, v *viper.Viper) {
	def := split.DefaultConfig()
	fs.Float64(keyDatasetScale, def.DatasetScale, "fraction of the collection to use, in (0,1]")
	fs.Bool(keyKeepClassDist, def.KeepClassDistForTraining, "draw the training set following the class distribution")
	fs.Float64(keyTrainSplit, def.TrainSplit, "training proportion")
	fs.Float64(keyValidationSplit, def.ValidationSplit, "validation proportion")
	fs.Float64(keyTestSplit, def.TestSplit, "test proportion")
	fs.Int64(keySeed, 0, "random seed, 0 picks a time based one")
	for _, key := range []string{keyDatasetScale, keyKeepClassDist, keyTrainSplit, keyValidationSplit, keyTestSplit, keySeed} {
		v.BindPFlag(key, fs.Lookup(key))
	}
}
