package faceoff

import (
	"math"

	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/rink"
)

// PlayerPlacement is where a single named position sits for a resolved
// faceoff spot, and which way that player faces.
type PlayerPlacement struct {
	Pos     rink.Vec3
	FacingY float64 // 0 for Red's facing, math.Pi for Blue's
}

// Placement is the full geometric resolution of one faceoff spot: the
// puck's center position and every named position's placement for
// both teams (goalies always placed at their fixed crease position,
// independent of the spot).
type Placement struct {
	Center rink.Vec3
	Red    map[string]PlayerPlacement
	Blue   map[string]PlayerPlacement
}

const (
	goalLineDistance = 4.0 // IIHF rule 17iv
	redFacing        = 0.0
)

var blueFacing = math.Pi // 180 degrees, around the rink's y axis

// resolveSpot computes the rink-space placement of spot given dims.
func resolveSpot(dims rink.Dimensions, spot model.FaceoffSpot) Placement {
	length, width := dims.Length, dims.Width

	distanceNeutral := dims.BlueLineDistance + 1.5 // IIHF rule 18iv and 18vii
	distanceZone := goalLineDistance + 6.0         // IIHF rule 18vi and 18vii

	centerX := width / 2.0
	leftX := centerX - 7.0 // IIHF rule 18vi and 18iv
	rightX := centerX + 7.0

	redZoneZ := length - distanceZone
	redNeutralZ := length - distanceNeutral
	centerZ := length / 2.0
	blueNeutralZ := distanceNeutral
	blueZoneZ := distanceZone

	var center rink.Vec3
	switch spot.Kind {
	case model.SpotCenter:
		center = rink.Vec3{X: centerX, Y: 0, Z: centerZ}
	case model.SpotDefensiveZone:
		z := redZoneZ
		if spot.Team == model.Blue {
			z = blueZoneZ
		}
		x := leftX
		if spot.Side == model.Right {
			x = rightX
		}
		center = rink.Vec3{X: x, Y: 0, Z: z}
	case model.SpotOffside:
		z := redNeutralZ
		if spot.Team == model.Blue {
			z = blueNeutralZ
		}
		x := leftX
		if spot.Side == model.Right {
			x = rightX
		}
		center = rink.Vec3{X: x, Y: 0, Z: z}
	}

	redGoalie := rink.Vec3{X: width / 2.0, Y: 1.5, Z: length - 5.0}
	blueGoalie := rink.Vec3{X: width / 2.0, Y: 1.5, Z: 5.0}

	redDefensiveZone := center.Z > length-11.0
	blueDefensiveZone := center.Z < 11.0
	redLeft, redRight := false, false
	switch {
	case center.X < 9.0:
		redLeft = true
	case center.X > width-9.0:
		redRight = true
	}
	blueLeft, blueRight := redRight, redLeft

	return Placement{
		Center: center,
		Red:    positionsAround(center, redFacing, redGoalie, redDefensiveZone, redLeft, redRight),
		Blue:   positionsAround(center, blueFacing, blueGoalie, blueDefensiveZone, blueLeft, blueRight),
	}
}

// positionsAround builds every named position's placement for one
// team at the given faceoff center, rotating each local offset by
// facing (0 or pi around the rink's y axis).
func positionsAround(center rink.Vec3, facing float64, goaliePos rink.Vec3, isDefensiveZone, closeLeft, closeRight bool) map[string]PlayerPlacement {
	const wingerZ = 4.0
	const mZ = 7.25
	dZ := 10.0
	if isDefensiveZone {
		dZ = 8.25
	}

	farLeftX, farLeftZ := -10.0, wingerZ
	if closeLeft {
		farLeftX, farLeftZ = -6.5, 3.0
	}
	farRightX, farRightZ := 10.0, wingerZ
	if closeRight {
		farRightX, farRightZ = 6.5, 3.0
	}

	llmX := -5.0
	if closeLeft && isDefensiveZone {
		llmX = -3.0
	}
	rrmX := 5.0
	if closeRight && isDefensiveZone {
		rrmX = 3.0
	}

	offsets := map[string]rink.Vec3{
		"C":   {X: 0, Y: 1.5, Z: 2.75},
		"LM":  {X: -2, Y: 1.5, Z: mZ},
		"RM":  {X: 2, Y: 1.5, Z: mZ},
		"LW":  {X: -5, Y: 1.5, Z: wingerZ},
		"RW":  {X: 5, Y: 1.5, Z: wingerZ},
		"LD":  {X: -2, Y: 1.5, Z: dZ},
		"RD":  {X: 2, Y: 1.5, Z: dZ},
		"LLM": {X: llmX, Y: 1.5, Z: mZ},
		"RRM": {X: rrmX, Y: 1.5, Z: mZ},
		"LLD": {X: llmX, Y: 1.5, Z: dZ},
		"RRD": {X: rrmX, Y: 1.5, Z: dZ},
		"CM":  {X: 0, Y: 1.5, Z: mZ},
		"CD":  {X: 0, Y: 1.5, Z: dZ},
		"LW2": {X: -6, Y: 1.5, Z: wingerZ},
		"RW2": {X: 6, Y: 1.5, Z: wingerZ},
		"LLW": {X: farLeftX, Y: 1.5, Z: farLeftZ},
		"RRW": {X: farRightX, Y: 1.5, Z: farRightZ},
	}

	placements := make(map[string]PlayerPlacement, len(offsets)+1)
	for name, off := range offsets {
		placements[name] = PlayerPlacement{Pos: rotateAndAdd(center, off, facing), FacingY: facing}
	}
	placements["G"] = PlayerPlacement{Pos: goaliePos, FacingY: facing}
	return placements
}

// rotateAndAdd rotates a local offset around the y axis by facing (0
// or pi, the only two values this domain ever uses) and adds it to
// center.
func rotateAndAdd(center, offset rink.Vec3, facing float64) rink.Vec3 {
	// facing is always 0 or pi in this rink, so a direct sign flip
	// stands in for the general cos/sin rotation.
	if facing == redFacing {
		return rink.Vec3{X: center.X + offset.X, Y: center.Y + offset.Y, Z: center.Z + offset.Z}
	}
	return rink.Vec3{X: center.X - offset.X, Y: center.Y + offset.Y, Z: center.Z - offset.Z}
}
