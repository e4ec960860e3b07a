package split

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/bgokden/labelsplit/data"
	"github.com/bgokden/labelsplit/models"
	"github.com/magneticio/go-common/logging"
)

// Config selects scale, proportions and the training sampler of a partition.
type Config = models.SplitConfig

const splitTolerance = 1e-9

// DefaultConfig uses the whole collection with a 60/20/20 class-balanced split.
func DefaultConfig() Config {
	return Config{
		DatasetScale:             1.0,
		KeepClassDistForTraining: true,
		TrainSplit:               0.6,
		ValidationSplit:          0.2,
		TestSplit:                0.2,
	}
}

// ValidateConfig checks the scale and the split proportions.
func ValidateConfig(cfg Config) error {
	if math.IsNaN(cfg.DatasetScale) || cfg.DatasetScale <= 0 || cfg.DatasetScale > 1 {
		return fmt.Errorf("%w: %v is outside (0, 1]", ErrInvalidScale, cfg.DatasetScale)
	}
	for _, p := range []float64{cfg.TrainSplit, cfg.ValidationSplit, cfg.TestSplit} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: proportion %v is outside [0, 1]", ErrInvalidSplit, p)
		}
	}
	sum := cfg.TrainSplit + cfg.ValidationSplit + cfg.TestSplit
	if math.Abs(sum-1) > splitTolerance {
		return fmt.Errorf("%w: train %v + validation %v + test %v = %v, want 1",
			ErrInvalidSplit, cfg.TrainSplit, cfg.ValidationSplit, cfg.TestSplit, sum)
	}
	return nil
}

// Sizes returns the scaled collection size and the train, validation and test
// target sizes for a collection of total images.
func Sizes(total int, cfg Config) (scaled, train, validation, test int) {
	scaled = int(math.RoundToEven(float64(total) * cfg.DatasetScale))
	train = int(math.RoundToEven(float64(scaled) * cfg.TrainSplit))
	validation = int(math.RoundToEven(float64(scaled) * cfg.ValidationSplit))
	test = int(math.RoundToEven(float64(scaled) * cfg.TestSplit))
	return
}

// Partition is the train/validation/test assignment of one collection.
// The three subsets are pairwise disjoint; Remainder holds the images left out
// by a DatasetScale below 1.
type Partition struct {
	Train      []*data.LabeledImage
	Validation []*data.LabeledImage
	Test       []*data.LabeledImage
	Remainder  []*data.LabeledImage

	Frequencies  FrequencyTable
	Distribution Distribution
	// Targets is set when the training subset was drawn class-balanced.
	Targets  []int
	Seed     int64
	Config   Config
	Warnings []Warning
}

// Size returns the number of images assigned to a subset.
func (p *Partition) Size() int {
	return len(p.Train) + len(p.Validation) + len(p.Test)
}

// Manifest summarises the partition by image name.
func (p *Partition) Manifest(dataset string) *models.Manifest {
	m := models.NewManifest(dataset)
	m.Seed = p.Seed
	m.Config = p.Config
	m.Train = data.Names(p.Train)
	m.Validation = data.Names(p.Validation)
	m.Test = data.Names(p.Test)
	if len(p.Remainder) > 0 {
		m.Remainder = data.Names(p.Remainder)
	}
	if p.Distribution != nil {
		m.Distribution = append([]float64(nil), p.Distribution...)
	}
	if p.Targets != nil {
		m.Targets = append([]int(nil), p.Targets...)
	}
	m.Warnings = WarningStrings(p.Warnings)
	return m
}

// Partitioner splits collections over a fixed class space.
type Partitioner struct {
	classes Classes
	seed    int64
	seeded  bool

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Partitioner.
type Option func(*Partitioner)

// WithSeed makes every Partition call start from the same random stream.
func WithSeed(seed int64) Option {
	return func(p *Partitioner) {
		p.seed = seed
		p.seeded = true
	}
}

// WithRand injects a random source shared by all calls; calls are serialized.
// It panics if rng is nil.
func WithRand(rng *rand.Rand) Option {
	if rng == nil {
		panic("split: WithRand(nil)")
	}
	return func(p *Partitioner) {
		p.rng = rng
	}
}

// NewPartitioner returns a partitioner over classes. Without options every call
// draws a fresh time based seed, reported in Partition.Seed.
func NewPartitioner(classes Classes, opts ...Option) *Partitioner {
	p := &Partitioner{classes: classes}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Partition splits images according to cfg. The caller's slice is never modified.
//
// With KeepClassDistForTraining the training subset follows the pixel class
// distribution of the whole collection and covers every class; test is a
// coverage-seeking uniform sample. Otherwise train is a coverage-seeking uniform
// sample and test a plain one. Validation takes the rest of the pool when the
// whole collection is used, and is drawn like test otherwise.
func (pt *Partitioner) Partition(images []*data.LabeledImage, cfg Config) (*Partition, error) {
	if len(images) == 0 {
		return nil, ErrEmptyCollection
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	rng, seed := pt.source()
	if rng == nil {
		rng = rand.New(rand.NewSource(seed))
	} else {
		pt.mu.Lock()
		defer pt.mu.Unlock()
	}

	freq, err := CountClassPixels(images, pt.classes)
	if err != nil {
		return nil, err
	}
	result := &Partition{
		Frequencies: freq,
		Seed:        seed,
		Config:      cfg,
	}
	if cfg.KeepClassDistForTraining {
		result.Distribution, err = EstimateDistribution(freq, pt.classes)
		if err != nil {
			return nil, err
		}
	}

	scaled, nTrain, nVal, nTest := Sizes(len(images), cfg)
	if logging.Verbose {
		logging.Info("Partitioning %d of %d images: train %d, validation %d, test %d\n",
			scaled, len(images), nTrain, nVal, nTest)
	}

	sampler := NewSampler(pt.classes, rng)
	pool := NewPool(images)

	if cfg.KeepClassDistForTraining {
		sample, err := sampler.SampleBalanced(pool, nTrain, result.Distribution, true)
		if err != nil {
			return nil, err
		}
		result.Train = sample.Images
		result.Targets = sample.Targets
	} else {
		result.Train, err = sampler.SampleUniform(pool, nTrain, true)
		if err != nil {
			return nil, err
		}
	}

	nTest = clampToPool(pool, nTest, "test")
	result.Test, err = sampler.SampleUniform(pool, nTest, cfg.KeepClassDistForTraining)
	if err != nil {
		return nil, err
	}

	if cfg.DatasetScale == 1 {
		result.Validation = pool.Drain()
	} else {
		nVal = clampToPool(pool, nVal, "validation")
		result.Validation, err = sampler.SampleUniform(pool, nVal, cfg.KeepClassDistForTraining)
		if err != nil {
			return nil, err
		}
		result.Remainder = pool.Drain()
	}

	if _, missing := Coverage(result.Train, pt.classes); len(missing) > 0 {
		sampler.warn(WarnCoverageShortfall, "training subset misses classes %v", missing)
	}
	result.Warnings = sampler.Warnings()

	logging.Info("Assigned %d images to TRAIN set, %d samples to TEST set and %d samples to VALIDATION set\n",
		len(result.Train), len(result.Test), len(result.Validation))
	return result, nil
}

// source returns the injected generator, or nil and the seed to build one from.
func (pt *Partitioner) source() (*rand.Rand, int64) {
	if pt.rng != nil {
		return pt.rng, pt.seed
	}
	if pt.seeded {
		return nil, pt.seed
	}
	return nil, time.Now().UnixNano()
}

// clampToPool shrinks n to what is left when an earlier subset took more than
// its rounded share.
func clampToPool(pool *Pool, n int, subset string) int {
	if left := pool.Len(); n > left {
		if logging.Verbose {
			logging.Info("Only %d images left for the %s subset of %d\n", left, subset, n)
		}
		return left
	}
	return n
}
