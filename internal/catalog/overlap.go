package catalog

import "fmt"

// Overlap names two components whose grid rectangles intersect.
// A and B index into the layout's component list.
type Overlap struct {
	A int `json:"a"`
	B int `json:"b"`
}

func (o Overlap) String() string {
	return fmt.Sprintf("components %d and %d overlap", o.A, o.B)
}

// Overlaps returns every intersecting pair of components. Components
// with an unset coordinate are skipped; the schema check reports those.
func Overlaps(components []PlacedComponent) []Overlap {
	var out []Overlap
	for i := 0; i < len(components); i++ {
		a := components[i]
		if a.X == nil || a.Y == nil {
			continue
		}
		for j := i + 1; j < len(components); j++ {
			b := components[j]
			if b.X == nil || b.Y == nil {
				continue
			}
			if intersects(a, b) {
				out = append(out, Overlap{A: i, B: j})
			}
		}
	}
	return out
}

func intersects(a, b PlacedComponent) bool {
	ax, ay := *a.X, *a.Y
	bx, by := *b.X, *b.Y
	return ax < bx+b.Width() && bx < ax+a.Width() &&
		ay < by+b.Height() && by < ay+a.Height()
}
