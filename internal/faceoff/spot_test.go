package faceoff

import (
	"testing"

	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/rink"
)

func TestResolveSpotCenterIsRinkMidpoint(t *testing.T) {
	dims := rink.DefaultDimensions
	p := resolveSpot(dims, model.CenterSpot())

	if p.Center.X != dims.Width/2.0 || p.Center.Z != dims.Length/2.0 {
		t.Fatalf("expected center spot at rink midpoint, got %+v", p.Center)
	}
}

func TestResolveSpotDefensiveZoneIsNearGoalLine(t *testing.T) {
	dims := rink.DefaultDimensions
	p := resolveSpot(dims, model.DefensiveZoneSpot(model.Red, model.Left))

	wantZ := dims.Length - (goalLineDistance + 6.0)
	if p.Center.Z != wantZ {
		t.Fatalf("expected z=%v, got %v", wantZ, p.Center.Z)
	}
	if p.Center.X != dims.Width/2.0-7.0 {
		t.Fatalf("expected left-side x, got %v", p.Center.X)
	}
}

func TestResolveSpotGoaliesAreFixedRegardlessOfSpot(t *testing.T) {
	dims := rink.DefaultDimensions
	center := resolveSpot(dims, model.CenterSpot())
	defensive := resolveSpot(dims, model.DefensiveZoneSpot(model.Red, model.Left))

	if center.Red["G"].Pos != defensive.Red["G"].Pos {
		t.Fatalf("expected the Red goalie position to be independent of the faceoff spot")
	}
}

func TestResolveSpotBlueMirrorsRedAcrossCenterIce(t *testing.T) {
	dims := rink.DefaultDimensions
	p := resolveSpot(dims, model.CenterSpot())

	redC := p.Red["C"]
	blueC := p.Blue["C"]
	if redC.Pos.X != blueC.Pos.X {
		t.Fatalf("expected Red and Blue C to share the same x, got %+v / %+v", redC, blueC)
	}
	if redC.Pos.Z+blueC.Pos.Z != 2*p.Center.Z {
		t.Fatalf("expected Red and Blue C mirrored in z around the center, got %+v / %+v", redC, blueC)
	}
	if redC.FacingY == blueC.FacingY {
		t.Fatalf("expected Red and Blue to face opposite directions")
	}
}
