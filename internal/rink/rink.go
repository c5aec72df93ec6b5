// Package rink carries the small slice of rink geometry the rules
// engine needs to evaluate "is this player past the line" and to place
// faceoffs. The full rink model — boards, nets, collision meshes — is
// the external physics collaborator's concern; this package only
// reproduces the handful of constants and the one geometric predicate
// the rule machines need.
package rink

// Vec3 is a minimal 3-component vector, independent of whatever vector
// type the physics collaborator uses internally.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Line is the straight boundary the Offside and Two-Line Pass rule
// machines test skaters against: a point on the rink, an outward
// normal and a width (the "thickness" of the drawn line on the ice).
type Line struct {
	Point  Vec3
	Normal Vec3
	Width  float64
}

// IsPastLine reports whether feetPos lies past the leading edge of
// line: the feet position projected onto the line normal lies past the
// leading edge (line.point − line.width/2 along normal).
func IsPastLine(feetPos Vec3, line Line) bool {
	dot := feetPos.Sub(line.Point).Dot(line.Normal)
	leadingEdge := -(line.Width / 2.0)
	return dot < leadingEdge
}

// Dimensions describes the handful of rink measurements the faceoff
// resolver and the rule machines need. Values follow IIHF regulation
// dimensions.
type Dimensions struct {
	Width            float64
	Length           float64
	BlueLineDistance float64
}

// DefaultDimensions is the regulation rink used absent an explicit
// configuration override.
var DefaultDimensions = Dimensions{
	Width:            30,
	Length:           61,
	BlueLineDistance: 22.5,
}
