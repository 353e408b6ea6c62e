package coord

import "strconv"

// Point is a machine coordinate in machine units.
type Point struct{ X, Y, Z float64 }

func (p Point) Equal(b Point) bool {
	return p.X == b.X && p.Y == b.Y && p.Z == b.Z
}

// Add will add the target values to p.
func (p Point) Add(target Point) Point {
	p.X += target.X
	p.Y += target.Y
	p.Z += target.Z
	return p
}

// Sub will subtract the target values from p.
func (p Point) Sub(target Point) Point {
	p.X -= target.X
	p.Y -= target.Y
	p.Z -= target.Z
	return p
}

// FormatFloat returns the shortest decimal form of f, without an exponent.
func FormatFloat(f float64) string {
	if f == 0 {
		// avoid "-0"
		f = 0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (p Point) String() string {
	return FormatFloat(p.X) + "," + FormatFloat(p.Y) + "," + FormatFloat(p.Z)
}
