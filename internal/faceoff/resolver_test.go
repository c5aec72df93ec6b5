package faceoff

import (
	"testing"

	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/rink"
)

func TestResolvePlacesEveryPlayerAndTracksGoalies(t *testing.T) {
	red := []RosterEntry{{Player: 1, Preferred: "G"}, {Player: 2, Preferred: "C"}}
	blue := []RosterEntry{{Player: 3, Preferred: "G"}, {Player: 4, Preferred: "C"}}

	result := Resolve(rink.DefaultDimensions, model.CenterSpot(), red, blue)

	if len(result.RedPlacements) != 2 || len(result.BluePlacements) != 2 {
		t.Fatalf("expected every rostered player placed, got red=%d blue=%d",
			len(result.RedPlacements), len(result.BluePlacements))
	}
	if len(result.StartedAsGoalie) != 2 {
		t.Fatalf("expected both goalies tracked, got %v", result.StartedAsGoalie)
	}
}

func TestResolvePuckSpawnsAboveFaceoffCenter(t *testing.T) {
	result := Resolve(rink.DefaultDimensions, model.CenterSpot(), nil, nil)
	dims := rink.DefaultDimensions

	if result.PuckSpawn.X != dims.Width/2.0 || result.PuckSpawn.Z != dims.Length/2.0 {
		t.Fatalf("expected puck spawn over the faceoff center, got %+v", result.PuckSpawn)
	}
	if result.PuckSpawn.Y != 1.5 {
		t.Fatalf("expected puck spawn 1.5m above the ice, got %v", result.PuckSpawn.Y)
	}
}
