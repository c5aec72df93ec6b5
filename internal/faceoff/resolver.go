package faceoff

import (
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/rink"
)

// Result is everything the match controller needs to apply a faceoff:
// where each rostered player lines up, where the puck respawns, and
// which players are goaltenders for the life of this faceoff period.
type Result struct {
	RedPlacements   map[model.PlayerID]PlayerPlacement
	BluePlacements  map[model.PlayerID]PlayerPlacement
	RedPositions    map[model.PlayerID]string
	BluePositions   map[model.PlayerID]string
	PuckSpawn       rink.Vec3
	StartedAsGoalie []model.PlayerID
}

// Resolve assigns positions to both rosters and places them at spot,
// following the two-round preference assignment and the geometric
// placement rules.
func Resolve(dims rink.Dimensions, spot model.FaceoffSpot, red, blue []RosterEntry) Result {
	redPositions := assignRoster(red)
	bluePositions := assignRoster(blue)

	placement := resolveSpot(dims, spot)

	result := Result{
		RedPositions:   redPositions,
		BluePositions:  bluePositions,
		RedPlacements:  make(map[model.PlayerID]PlayerPlacement, len(red)),
		BluePlacements: make(map[model.PlayerID]PlayerPlacement, len(blue)),
		PuckSpawn:      rink.Vec3{X: placement.Center.X, Y: placement.Center.Y + 1.5, Z: placement.Center.Z},
	}

	for _, r := range red {
		pos := redPositions[r.Player]
		result.RedPlacements[r.Player] = placement.Red[pos]
		if pos == "G" {
			result.StartedAsGoalie = append(result.StartedAsGoalie, r.Player)
		}
	}
	for _, r := range blue {
		pos := bluePositions[r.Player]
		result.BluePlacements[r.Player] = placement.Blue[pos]
		if pos == "G" {
			result.StartedAsGoalie = append(result.StartedAsGoalie, r.Player)
		}
	}

	return result
}
