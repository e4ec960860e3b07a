// Package catalogue holds the fixed class list of a labelled image collection
// and the colour coding used by its ground-truth images.
package catalogue

import (
	"fmt"
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Class is one entry of a catalogue.
type Class struct {
	Name   string
	Colour colorful.Color
}

// Catalogue is an ordered class list. The entry at VoidID marks unannotated pixels.
type Catalogue struct {
	classes []Class
	voidID  int
	byName  map[string]int
	byRGB   map[uint32]int
}

func rgb255(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
}

func packRGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// New builds a catalogue. Void must be the last entry so that real classes
// occupy ids [0, NumClasses).
func New(classes []Class, voidID int) (*Catalogue, error) {
	if len(classes) < 2 {
		return nil, fmt.Errorf("catalogue: need at least one class and void, got %d entries", len(classes))
	}
	if voidID != len(classes)-1 {
		return nil, fmt.Errorf("catalogue: void id %d must be the last entry %d", voidID, len(classes)-1)
	}
	c := &Catalogue{
		classes: classes,
		voidID:  voidID,
		byName:  make(map[string]int, len(classes)),
		byRGB:   make(map[uint32]int, len(classes)),
	}
	for id, class := range classes {
		if _, ok := c.byName[class.Name]; ok {
			return nil, fmt.Errorf("catalogue: duplicate class name %q", class.Name)
		}
		c.byName[class.Name] = id
		key := packRGB(class.Colour.RGB255())
		if other, ok := c.byRGB[key]; ok {
			return nil, fmt.Errorf("catalogue: classes %q and %q share colour %s", classes[other].Name, class.Name, class.Colour.Hex())
		}
		c.byRGB[key] = id
	}
	return c, nil
}

// NumClasses returns the number of real classes, void excluded.
func (c *Catalogue) NumClasses() int {
	return len(c.classes) - 1
}

// NumLabels returns the number of labels including void.
func (c *Catalogue) NumLabels() int {
	return len(c.classes)
}

// VoidID returns the reserved "no class" label.
func (c *Catalogue) VoidID() int {
	return c.voidID
}

// Name returns the class name for id, or "" when id is unknown.
func (c *Catalogue) Name(id int) string {
	if id < 0 || id >= len(c.classes) {
		return ""
	}
	return c.classes[id].Name
}

// Names returns every label name in id order, void included.
func (c *Catalogue) Names() []string {
	names := make([]string, len(c.classes))
	for i, class := range c.classes {
		names[i] = class.Name
	}
	return names
}

// ID looks a class up by name.
func (c *Catalogue) ID(name string) (int, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// Colour returns the colour of label id.
func (c *Catalogue) Colour(id int) (colorful.Color, bool) {
	if id < 0 || id >= len(c.classes) {
		return colorful.Color{}, false
	}
	return c.classes[id].Colour, true
}

// LabelOf maps a pixel colour to its label. Unknown colours map to void.
func (c *Catalogue) LabelOf(col color.Color) (int, bool) {
	r, g, b, _ := col.RGBA()
	id, ok := c.byRGB[packRGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))]
	if !ok {
		return c.voidID, false
	}
	return id, true
}

// RGBToLabels converts a colour-coded ground-truth image into a label grid
// indexed [row][col]. Pixels with colours outside the catalogue become void;
// their number is returned as invalid.
func (c *Catalogue) RGBToLabels(img image.Image) (grid [][]int, invalid int) {
	bounds := img.Bounds()
	grid = make([][]int, bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := make([]int, bounds.Dx())
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			id, ok := c.LabelOf(img.At(x, y))
			if !ok {
				invalid++
			}
			row[x-bounds.Min.X] = id
		}
		grid[y-bounds.Min.Y] = row
	}
	return grid, invalid
}

// LabelsToRGB renders a label grid with the catalogue colours. Labels outside
// the catalogue are drawn with the void colour.
func (c *Catalogue) LabelsToRGB(grid [][]int) *image.NRGBA {
	width := 0
	if len(grid) > 0 {
		width = len(grid[0])
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, len(grid)))
	for y, row := range grid {
		for x, id := range row {
			if id < 0 || id >= len(c.classes) {
				id = c.voidID
			}
			r, g, b := c.classes[id].Colour.RGB255()
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}
