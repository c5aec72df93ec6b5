// Package simevent defines the event vocabulary emitted by the
// external physics/collision simulator. The simulator itself — rigid
// body integration, collision response, rink geometry — is an external
// collaborator; this package only carries the small, closed set of
// discrete events the rule machines react to.
package simevent

import "github.com/ehl-hqm/migo-hqm-server/internal/model"

// Kind enumerates the simulation events a single tick can yield, in
// the order the Match Controller dispatches them.
type Kind uint8

const (
	PuckEnteredNet Kind = iota
	PuckTouch
	PuckReachedDefensiveLine
	PuckPassedDefensiveLine
	PuckReachedCenterLine
	PuckPassedCenterLine
	PuckReachedOffensiveZone
	PuckEnteredOffensiveZone
	PuckPassedGoalLine
)

// Event is a tagged union over the simulator's event vocabulary. Only
// the fields relevant to Kind are populated; the zero value of the
// others is ignored.
type Event struct {
	Kind Kind
	Team model.Team

	// Puck identifies which puck object the event concerns.
	Puck model.ObjectIndex

	// Player/Skater/PlayerTeam/PuckPos/PuckSpeed/Time are set for
	// PuckTouch: the touching player, the simulation object index of
	// their skater, the team they play for, the puck's position and
	// instantaneous linear-velocity norm at the moment of contact, and
	// the current game clock reading in centiseconds.
	Player     model.PlayerID
	Skater     model.ObjectIndex
	PlayerTeam model.Team
	PuckPos    [3]float64
	PuckSpeed  float64
	Time       uint32
}
