package split_test

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/bgokden/labelsplit/data"
	"github.com/bgokden/labelsplit/split"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PartitionSuite struct {
	suite.Suite
	images []*data.LabeledImage
}

func (s *PartitionSuite) SetupTest() {
	s.images = tenImages()
}

func (s *PartitionSuite) assertDisjointCover(p *split.Partition, images []*data.LabeledImage) {
	seen := map[string]int{}
	for _, subset := range [][]*data.LabeledImage{p.Train, p.Validation, p.Test, p.Remainder} {
		for _, img := range subset {
			seen[img.Name]++
		}
	}
	s.Len(seen, len(images))
	for name, n := range seen {
		s.Equal(1, n, "image %s assigned more than once", name)
	}
}

func (s *PartitionSuite) TestSixTwoTwoBalanced() {
	cfg := split.DefaultConfig()
	for seed := int64(0); seed < 20; seed++ {
		p, err := split.NewPartitioner(threeClasses, split.WithSeed(seed)).Partition(s.images, cfg)
		s.Require().NoError(err)
		s.Len(p.Train, 6)
		s.Len(p.Test, 2)
		s.Len(p.Validation, 2)
		s.Empty(p.Remainder)
		s.Equal([]int{2, 3, 1}, p.Targets)
		s.InDelta(1.0, p.Distribution.Sum(), 1e-6)
		s.Equal(10, p.Size())
		s.Equal(seed, p.Seed)
		s.assertDisjointCover(p, s.images)
		s.NotContains(kinds(p.Warnings), split.WarnCoverageShortfall)
	}
}

func (s *PartitionSuite) TestSixTwoTwoRandom() {
	cfg := split.DefaultConfig()
	cfg.KeepClassDistForTraining = false
	p, err := split.NewPartitioner(threeClasses, split.WithSeed(3)).Partition(s.images, cfg)
	s.Require().NoError(err)
	s.Len(p.Train, 6)
	s.Len(p.Test, 2)
	s.Len(p.Validation, 2)
	s.Nil(p.Distribution)
	s.Nil(p.Targets)
	present, _ := split.Coverage(p.Train, threeClasses)
	s.Equal([]int{0, 1, 2}, present)
	s.assertDisjointCover(p, s.images)
}

func (s *PartitionSuite) TestScaledCollection() {
	cfg := split.DefaultConfig()
	cfg.DatasetScale = 0.5
	p, err := split.NewPartitioner(threeClasses, split.WithSeed(12)).Partition(s.images, cfg)
	s.Require().NoError(err)
	s.Len(p.Train, 3)
	s.Len(p.Test, 1)
	s.Len(p.Validation, 1)
	s.Len(p.Remainder, 5)
	s.Equal([]int{1, 1, 1}, p.Targets)
	s.assertDisjointCover(p, s.images)
}

func (s *PartitionSuite) TestDeterministicUnderSeed() {
	cfg := split.DefaultConfig()
	a, err := split.NewPartitioner(threeClasses, split.WithSeed(99)).Partition(s.images, cfg)
	s.Require().NoError(err)
	b, err := split.NewPartitioner(threeClasses, split.WithSeed(99)).Partition(tenImages(), cfg)
	s.Require().NoError(err)
	s.Equal(data.Names(a.Train), data.Names(b.Train))
	s.Equal(data.Names(a.Test), data.Names(b.Test))
	s.Equal(data.Names(a.Validation), data.Names(b.Validation))
}

func (s *PartitionSuite) TestCallerSliceUntouched() {
	before := data.Names(s.images)
	_, err := split.NewPartitioner(threeClasses, split.WithSeed(5)).Partition(s.images, split.DefaultConfig())
	s.Require().NoError(err)
	s.Equal(before, data.Names(s.images))
}

func (s *PartitionSuite) TestCoverageShortfall() {
	images := withoutClass(s.images, 2)
	cfg := split.DefaultConfig()
	cfg.KeepClassDistForTraining = false
	p, err := split.NewPartitioner(threeClasses, split.WithSeed(1)).Partition(images, cfg)
	s.Require().NoError(err)
	s.Contains(kinds(p.Warnings), split.WarnCoverageShortfall)
	s.assertDisjointCover(p, images)
}

func (s *PartitionSuite) TestBalancedMissingClassFails() {
	_, err := split.NewPartitioner(threeClasses, split.WithSeed(1)).Partition(withoutClass(s.images, 2), split.DefaultConfig())
	s.ErrorIs(err, split.ErrPoolExhausted)
}

func (s *PartitionSuite) TestVoidOnlyCollection() {
	images := []*data.LabeledImage{
		data.NewLabeledImage("v1", [][]int{{3, 3}}),
		data.NewLabeledImage("v2", [][]int{{3, 3}}),
	}
	_, err := split.NewPartitioner(threeClasses).Partition(images, split.DefaultConfig())
	s.ErrorIs(err, split.ErrDegenerateDistribution)
}

func (s *PartitionSuite) TestManifest() {
	p, err := split.NewPartitioner(threeClasses, split.WithSeed(21)).Partition(s.images, split.DefaultConfig())
	s.Require().NoError(err)
	m := p.Manifest("toy")
	s.NotEmpty(m.ID)
	s.Equal("toy", m.Dataset)
	s.Equal(int64(21), m.Seed)
	s.Equal(split.DefaultConfig(), m.Config)
	s.Equal(data.Names(p.Train), m.Train)
	s.Equal(10, m.Size())
	s.Nil(m.Remainder)
	s.Equal([]int{2, 3, 1}, m.Targets)
}

func TestPartitionSuite(t *testing.T) {
	suite.Run(t, new(PartitionSuite))
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name string
		edit func(*split.Config)
		want error
	}{
		{"default", func(*split.Config) {}, nil},
		{"sum below one", func(c *split.Config) { c.TestSplit = 0.1 }, split.ErrInvalidSplit},
		{"negative", func(c *split.Config) { c.TrainSplit, c.TestSplit = -0.2, 1.0 }, split.ErrInvalidSplit},
		{"zero scale", func(c *split.Config) { c.DatasetScale = 0 }, split.ErrInvalidScale},
		{"scale above one", func(c *split.Config) { c.DatasetScale = 1.5 }, split.ErrInvalidScale},
		{"float noise", func(c *split.Config) { c.TrainSplit, c.ValidationSplit, c.TestSplit = 0.7, 0.1, 0.2 }, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := split.DefaultConfig()
			tc.edit(&cfg)
			err := split.ValidateConfig(cfg)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, split.ErrInvalidConfiguration)
		})
	}
}

func TestPartitionRejectsBadInput(t *testing.T) {
	pt := split.NewPartitioner(threeClasses)
	_, err := pt.Partition(nil, split.DefaultConfig())
	assert.ErrorIs(t, err, split.ErrEmptyCollection)

	cfg := split.DefaultConfig()
	cfg.ValidationSplit = 0.5
	_, err = pt.Partition(tenImages(), cfg)
	assert.ErrorIs(t, err, split.ErrInvalidSplit)
}

func TestSizes(t *testing.T) {
	scaled, train, val, test := split.Sizes(10, split.DefaultConfig())
	assert.Equal(t, []int{10, 6, 2, 2}, []int{scaled, train, val, test})

	cfg := split.DefaultConfig()
	cfg.DatasetScale = 0.25
	scaled, train, val, test = split.Sizes(10, cfg)
	assert.Equal(t, []int{2, 1, 0, 0}, []int{scaled, train, val, test})
}

func TestWithRandSharedAcrossGoroutines(t *testing.T) {
	pt := split.NewPartitioner(threeClasses, split.WithRand(rand.New(rand.NewSource(1))))
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := pt.Partition(tenImages(), split.DefaultConfig())
			if assert.NoError(t, err) {
				assert.Equal(t, 10, p.Size())
			}
		}()
	}
	wg.Wait()

	require.Panics(t, func() { split.WithRand(nil) })
}
