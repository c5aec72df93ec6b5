// Package rules implements the three coupled hockey-rule state
// machines — Icing, Offside and Two-Line Pass. The machines share the
// live Pass (package passtrack) and the per-puck touch ledger (package
// ledger) but never reach into each other's state; Coupler sequences
// them against the simulator's event stream for a single tick.
package rules

import (
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/rink"
)

// World is the read-only view into skater positions and rosters that
// the Offside and Two-Line Pass machines need to evaluate "is any
// player past the line". It is implemented by whatever owns the
// physics collaborator's state (server.World in this server).
type World interface {
	// TeamRoster lists every player currently skating for team
	// (Spec/bench players are excluded).
	TeamRoster(team model.Team) []model.PlayerID
	// SkaterFeet returns the feet-level world position of the skater
	// controlled by player, and false if player has no on-ice skater.
	SkaterFeet(player model.PlayerID) (rink.Vec3, bool)
	// OffensiveLine is the blue line demarcating team's offensive
	// zone, independent of the configured offside-line trigger.
	OffensiveLine(team model.Team) rink.Line
	// MidLine is the center red line.
	MidLine(team model.Team) rink.Line
	// PuckSide reports which half of the rink the puck is currently
	// on, used to capture a pass's side at the moment of touch.
	PuckSide(puck model.ObjectIndex) model.Side
}

// Emitter receives the chat strings the rule machines raise (icing
// and offside warnings/calls, two-line pass notices). It is the
// Session Registry's broadcast channel in the running server.
type Emitter interface {
	Chat(message string)
}

// FaceoffCaller is invoked whenever a rule machine calls a stoppage:
// it records the next restart spot and starts the break-length pause.
// Implemented by the Match Controller.
type FaceoffCaller interface {
	CallFaceoff(spot model.FaceoffSpot)
}

func isPastLine(w World, team model.Team, line rink.Line, ignore model.PlayerID, ignoreSet bool) bool {
	for _, player := range w.TeamRoster(team) {
		if ignoreSet && player == ignore {
			continue
		}
		feet, ok := w.SkaterFeet(player)
		if !ok {
			continue
		}
		if rink.IsPastLine(feet, line) {
			return true
		}
	}
	return false
}

func playersPastLine(w World, team model.Team, line rink.Line, ignore model.PlayerID) []model.PlayerID {
	var offenders []model.PlayerID
	for _, player := range w.TeamRoster(team) {
		if player == ignore {
			continue
		}
		feet, ok := w.SkaterFeet(player)
		if !ok {
			continue
		}
		if rink.IsPastLine(feet, line) {
			offenders = append(offenders, player)
		}
	}
	return offenders
}

// faceoffSpotForOffense computes the restart spot for an offside or
// two-line-pass call that was not the passer's own self-touch:
// defensive zone if the pass origin is at most ReachedOwnBlue (the puck
// had not passed the attacking team's own blue line), the neutral
// "offside" spot if it is at most ReachedCenter, else center ice.
func faceoffSpotForOffense(team model.Team, side model.Side, from *model.PassPosition) model.FaceoffSpot {
	switch {
	case from != nil && *from <= model.ReachedOwnBlue:
		return model.DefensiveZoneSpot(team, side)
	case from != nil && *from <= model.ReachedCenter:
		return model.OffsideSpot(team, side)
	default:
		return model.CenterSpot()
	}
}
