package models

import (
	"time"

	"github.com/segmentio/ksuid"
)

// SplitConfig holds the parameters of a train/validation/test split.
type SplitConfig struct {
	DatasetScale             float64 `json:"datasetScale" mapstructure:"datasetScale" yaml:"datasetScale"`
	KeepClassDistForTraining bool    `json:"keepClassDistForTraining" mapstructure:"keepClassDistForTraining" yaml:"keepClassDistForTraining"`
	TrainSplit               float64 `json:"trainSplit" mapstructure:"trainSplit" yaml:"trainSplit"`
	ValidationSplit          float64 `json:"validationSplit" mapstructure:"validationSplit" yaml:"validationSplit"`
	TestSplit                float64 `json:"testSplit" mapstructure:"testSplit" yaml:"testSplit"`
}

// Manifest is the persisted summary of one partitioning run.
type Manifest struct {
	ID           string      `json:"id"`
	Dataset      string      `json:"dataset"`
	CreatedAt    int64       `json:"createdAt"`
	Seed         int64       `json:"seed"`
	Config       SplitConfig `json:"config"`
	Train        []string    `json:"train"`
	Validation   []string    `json:"validation"`
	Test         []string    `json:"test"`
	Remainder    []string    `json:"remainder,omitempty"`
	Distribution []float64   `json:"distribution,omitempty"`
	Targets      []int       `json:"targets,omitempty"`
	Warnings     []string    `json:"warnings,omitempty"`
}

// NewManifest creates an empty manifest with a fresh sortable id.
func NewManifest(dataset string) *Manifest {
	return &Manifest{
		ID:        ksuid.New().String(),
		Dataset:   dataset,
		CreatedAt: time.Now().Unix(),
	}
}

// Size returns the number of images assigned to a subset.
func (m *Manifest) Size() int {
	return len(m.Train) + len(m.Validation) + len(m.Test)
}
