package catalogue_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/bgokden/labelsplit/catalogue"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMSRC(t *testing.T) {
	c := catalogue.MSRC()
	assert.Equal(t, 21, c.NumClasses())
	assert.Equal(t, 22, c.NumLabels())
	assert.Equal(t, 21, c.VoidID())
	assert.Equal(t, "building", c.Name(0))
	assert.Equal(t, "boat", c.Name(20))
	assert.Equal(t, "void", c.Name(c.VoidID()))
	assert.Equal(t, "", c.Name(99))

	id, ok := c.ID("sky")
	assert.True(t, ok)
	assert.Equal(t, 5, id)
	_, ok = c.ID("horse")
	assert.False(t, ok)
}

func TestNewRejectsBadInput(t *testing.T) {
	red := colorful.Color{R: 1}
	black := colorful.Color{}

	_, err := catalogue.New([]catalogue.Class{{Name: "void", Colour: black}}, 0)
	assert.Error(t, err)

	_, err = catalogue.New([]catalogue.Class{{Name: "a", Colour: red}, {Name: "void", Colour: black}}, 2)
	assert.Error(t, err)

	_, err = catalogue.New([]catalogue.Class{{Name: "void", Colour: black}, {Name: "a", Colour: red}}, 0)
	assert.Error(t, err)

	_, err = catalogue.New([]catalogue.Class{{Name: "a", Colour: red}, {Name: "a", Colour: black}}, 1)
	assert.Error(t, err)

	_, err = catalogue.New([]catalogue.Class{{Name: "a", Colour: red}, {Name: "void", Colour: red}}, 1)
	assert.Error(t, err)
}

func TestRGBRoundTrip(t *testing.T) {
	c := catalogue.MSRC()
	grid := [][]int{
		{0, 1, 2},
		{5, 21, 20},
	}
	img := c.LabelsToRGB(grid)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(128), r>>8)
	assert.Equal(t, uint32(0), g>>8)
	assert.Equal(t, uint32(0), b>>8)

	back, invalid := c.RGBToLabels(img)
	assert.Equal(t, 0, invalid)
	assert.Equal(t, grid, back)
}

func TestRGBToLabelsUnknownColour(t *testing.T) {
	c := catalogue.MSRC()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0, G: 128, B: 0, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 128, G: 0, B: 128, A: 255}) // horse

	grid, invalid := c.RGBToLabels(img)
	require.Len(t, grid, 1)
	assert.Equal(t, []int{1, c.VoidID()}, grid[0])
	assert.Equal(t, 1, invalid)
}

func TestLabelsToRGBOutOfRange(t *testing.T) {
	c := catalogue.MSRC()
	img := c.LabelsToRGB([][]int{{-1, 42}})
	for x := 0; x < 2; x++ {
		r, g, b, a := img.At(x, 0).RGBA()
		assert.Equal(t, []uint32{0, 0, 0, 0xffff}, []uint32{r, g, b, a})
	}
}
