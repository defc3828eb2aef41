package search

import (
	"fmt"
	"math"
)

// Coord is a discrete map coordinate.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Geometry is an axis-aligned rectangle of integer coordinates. Height spans
// the x axis and Width the y axis, starting at UpperLeft.
type Geometry struct {
	UpperLeft Coord `json:"upper_left"`
	Height    int   `json:"height"`
	Width     int   `json:"width"`
}

// Area returns the number of coordinates in the rectangle.
func (g Geometry) Area() int {
	return g.Height * g.Width
}

// Contains reports whether c lies inside the rectangle.
func (g Geometry) Contains(c Coord) bool {
	return c.X >= g.UpperLeft.X && c.X < g.UpperLeft.X+g.Height &&
		c.Y >= g.UpperLeft.Y && c.Y < g.UpperLeft.Y+g.Width
}

// offset maps a coordinate inside the rectangle to its row-major position.
func (g Geometry) offset(c Coord) int {
	return (c.X-g.UpperLeft.X)*g.Width + (c.Y - g.UpperLeft.Y)
}

// coord is the inverse of offset.
func (g Geometry) coord(off int) Coord {
	return Coord{
		X: g.UpperLeft.X + off/g.Width,
		Y: g.UpperLeft.Y + off%g.Width,
	}
}

// MaxRegionArea caps the number of coordinates in one region. Each cell costs
// a flag and an offset.
const MaxRegionArea = 1 << 22

// RegionSpec describes a region before a scenario is built from it.
type RegionSpec struct {
	Geometry
	Prior float64 `json:"prior"`
}

func (s RegionSpec) validate() error {
	if s.Height <= 0 || s.Width <= 0 {
		return fmt.Errorf("height and width must be positive, got %dx%d", s.Height, s.Width)
	}
	if s.Height > MaxRegionArea/s.Width {
		return fmt.Errorf("%dx%d exceeds %d cells", s.Height, s.Width, MaxRegionArea)
	}
	if math.IsNaN(s.Prior) || s.Prior < 0 || s.Prior > 1 {
		return fmt.Errorf("prior must be in [0, 1], got %v", s.Prior)
	}
	return nil
}

// CapePython is the three-region sailor search off Cape Python:
// three 50x50 areas with priors 0.2, 0.5 and 0.3.
func CapePython() []RegionSpec {
	return []RegionSpec{
		{Geometry: Geometry{UpperLeft: Coord{X: 130, Y: 265}, Height: 50, Width: 50}, Prior: 0.2},
		{Geometry: Geometry{UpperLeft: Coord{X: 80, Y: 255}, Height: 50, Width: 50}, Prior: 0.5},
		{Geometry: Geometry{UpperLeft: Coord{X: 105, Y: 205}, Height: 50, Width: 50}, Prior: 0.3},
	}
}
