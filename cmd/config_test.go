package cmd_test

import (
	"strings"
	"testing"

	"github.com/bgokden/labelsplit/cmd"
	"github.com/bgokden/labelsplit/split"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	v := viper.New()
	cmd.SetSplitDefaults(v)
	if yaml != "" {
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	}
	return v
}

func TestLoadSplitSettingsDefaults(t *testing.T) {
	settings, err := cmd.LoadSplitSettings(newViper(t, ""))
	require.NoError(t, err)
	assert.Equal(t, split.DefaultConfig(), settings.Config)
	assert.Equal(t, int64(0), settings.Seed)
	assert.Empty(t, settings.Options())
}

func TestLoadSplitSettingsFromFile(t *testing.T) {
	settings, err := cmd.LoadSplitSettings(newViper(t, `
datasetScale: 0.5
keepClassDistForTraining: false
trainSplit: 0.8
validationSplit: 0.1
testSplit: 0.1
seed: 17
`))
	require.NoError(t, err)
	assert.Equal(t, 0.5, settings.DatasetScale)
	assert.False(t, settings.KeepClassDistForTraining)
	assert.Equal(t, 0.8, settings.TrainSplit)
	assert.Equal(t, 0.1, settings.ValidationSplit)
	assert.Equal(t, 0.1, settings.TestSplit)
	assert.Equal(t, int64(17), settings.Seed)
	assert.Len(t, settings.Options(), 1)
}

func TestLoadSplitSettingsRejectsBadSplit(t *testing.T) {
	_, err := cmd.LoadSplitSettings(newViper(t, "trainSplit: 0.9\n"))
	assert.ErrorIs(t, err, split.ErrInvalidSplit)

	_, err = cmd.LoadSplitSettings(newViper(t, "datasetScale: 0\n"))
	assert.ErrorIs(t, err, split.ErrInvalidScale)
}
