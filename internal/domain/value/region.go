package value

import (
	"fmt"
	"image"
)

// Point is an absolute screen coordinate.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Region is a screen rectangle read by the perception layer.
type Region struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
	W int `yaml:"w" json:"w"`
	H int `yaml:"h" json:"h"`
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

func (r Region) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

func (r Region) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", r.W, r.H, r.X, r.Y)
}
