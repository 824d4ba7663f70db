package tile

import (
	"fmt"

	"github.com/paulmach/orb"
)

// DefaultSize is the default tile side length in pixels.
const DefaultSize = 4096

// Tile is a grid coordinate.
type Tile struct {
	X int
	Y int
}

// String returns "x_y", the form used in file names.
func (t Tile) String() string {
	return fmt.Sprintf("%d_%d", t.X, t.Y)
}

// Origin returns the global pixel coordinate of the tile's top-left corner.
func (t Tile) Origin(size int) orb.Point {
	return orb.Point{float64(t.X) * float64(size), float64(t.Y) * float64(size)}
}

// Bound returns the tile's extent. The upper edges are exclusive, which
// orb.Bound cannot express; use Contains for membership.
func (t Tile) Bound(size int) orb.Bound {
	min := t.Origin(size)
	return orb.Bound{
		Min: min,
		Max: orb.Point{min.X() + float64(size), min.Y() + float64(size)},
	}
}

// Contains reports whether p lies inside the tile's half-open bounds.
func (t Tile) Contains(p orb.Point, size int) bool {
	return Contains(p.X(), p.Y(), t.X, t.Y, size)
}

// Contains reports whether (x, y) lies in tile (tx, ty):
// tx*size <= x < (tx+1)*size and ty*size <= y < (ty+1)*size.
func Contains(x, y float64, tx, ty, size int) bool {
	s := float64(size)
	x0 := float64(tx) * s
	y0 := float64(ty) * s
	return x0 <= x && x < x0+s && y0 <= y && y < y0+s
}

// Less orders tiles by X, then Y.
func Less(a, b Tile) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// Compare is the three-way form of Less, for slices.SortFunc.
func Compare(a, b Tile) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	}
	return 0
}
