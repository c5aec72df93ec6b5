// Core data model shared by the rule machines, the faceoff resolver and
// the match controller.
//
// Copyright (c) 2024 The hqm-server Authors
//
// This file is part of hqm-server.
//
// hqm-server is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// hqm-server is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with hqm-server. If not, see
// <http://www.gnu.org/licenses/>

// Package model defines the enums and value types that flow between the
// tick clock, the rule machines, the puck-touch ledger and the pass
// tracker. None of these types own any behaviour beyond small,
// side-effect-free helpers; the state machines in package rules mutate
// them explicitly.
package model

import "fmt"

// Team identifies which side of the rink a player or a puck touch
// belongs to. Spec is not on the ice.
type Team uint8

const (
	Red Team = iota
	Blue
	Spec
)

func (t Team) String() string {
	switch t {
	case Red:
		return "Red"
	case Blue:
		return "Blue"
	case Spec:
		return "Spec"
	default:
		return "Unknown"
	}
}

// Other returns the opposing team. Panics if called on Spec, since
// spectators never have an opponent.
func (t Team) Other() Team {
	switch t {
	case Red:
		return Blue
	case Blue:
		return Red
	default:
		panic(fmt.Sprintf("model: %s has no opposing team", t))
	}
}

// Side is the rink half along the width axis, relative to Red's
// defensive zone.
type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "Right"
	}
	return "Left"
}

// FaceoffSpotKind distinguishes the three families of faceoff
// locations on the rink.
type FaceoffSpotKind uint8

const (
	SpotCenter FaceoffSpotKind = iota
	SpotDefensiveZone
	SpotOffside
)

// FaceoffSpot names a concrete restart location. Team and Side are
// only meaningful when Kind != SpotCenter.
type FaceoffSpot struct {
	Kind FaceoffSpotKind
	Team Team
	Side Side
}

func CenterSpot() FaceoffSpot { return FaceoffSpot{Kind: SpotCenter} }

func DefensiveZoneSpot(team Team, side Side) FaceoffSpot {
	return FaceoffSpot{Kind: SpotDefensiveZone, Team: team, Side: side}
}

func OffsideSpot(team Team, side Side) FaceoffSpot {
	return FaceoffSpot{Kind: SpotOffside, Team: team, Side: side}
}

func (f FaceoffSpot) String() string {
	switch f.Kind {
	case SpotCenter:
		return "Center"
	case SpotDefensiveZone:
		return fmt.Sprintf("DefensiveZone(%s,%s)", f.Team, f.Side)
	case SpotOffside:
		return fmt.Sprintf("Offside(%s,%s)", f.Team, f.Side)
	default:
		return "Unknown"
	}
}

// PassPosition is the totally ordered set of line crossings a pass can
// be observed to have reached. The zero value, None, sorts before
// every other value.
type PassPosition uint8

const (
	None PassPosition = iota
	ReachedOwnBlue
	PassedOwnBlue
	ReachedCenter
	PassedCenter
	ReachedOffensive
	PassedOffensive
)

func (p PassPosition) String() string {
	switch p {
	case None:
		return "None"
	case ReachedOwnBlue:
		return "ReachedOwnBlue"
	case PassedOwnBlue:
		return "PassedOwnBlue"
	case ReachedCenter:
		return "ReachedCenter"
	case PassedCenter:
		return "PassedCenter"
	case ReachedOffensive:
		return "ReachedOffensive"
	case PassedOffensive:
		return "PassedOffensive"
	default:
		return "Unknown"
	}
}

// PlayerID identifies a rostered player (a session slot), distinct
// from the simulation object index of the skater they control.
type PlayerID uint32

// ObjectIndex identifies a simulation object (skater or puck) owned by
// the external physics collaborator.
type ObjectIndex uint32

// Pass is the record spanning a single puck possession. At most one is
// live at a time; it is replaced wholesale on the next touch.
type Pass struct {
	Team Team
	Side Side
	// From is nil until a line-crossing event sets it. Once set it is
	// never reset within the same Pass; see AdvanceFrom.
	From   *PassPosition
	Player PlayerID
}

// NewPass installs a fresh, unstarted pass for a puck touch.
func NewPass(team Team, side Side, player PlayerID) *Pass {
	return &Pass{Team: team, Side: side, Player: player}
}

// AdvanceFrom sets p.From to pos the first time it is called after the
// pass was created; subsequent calls are no-ops, preserving the
// monotone-within-a-pass invariant even if line-crossing events arrive
// out of the expected order.
func (p *Pass) AdvanceFrom(pos PassPosition) {
	if p == nil || p.From != nil {
		return
	}
	p.From = &pos
}

// FromAtMost reports whether the pass has a recorded origin at or
// before pos. A pass with no recorded origin yet (From == nil) does
// not satisfy any bound.
func (p *Pass) FromAtMost(pos PassPosition) bool {
	return p != nil && p.From != nil && *p.From <= pos
}

// PuckTouch is one (possibly coalesced) entry in a puck's touch
// ledger.
type PuckTouch struct {
	PlayerID  PlayerID
	SkaterID  ObjectIndex
	Team      Team
	PuckPos   [3]float64
	PuckSpeed float64
	FirstTime uint32
	LastTime  uint32
}

// RulesStateKind is the derived, client-facing summary of the three
// rule machines.
type RulesStateKind uint8

const (
	RulesRegular RulesStateKind = iota
	RulesOffside
	RulesIcing
)

// RulesState is recomputed once per tick for the wire snapshot.
type RulesState struct {
	Kind           RulesStateKind
	OffsideWarning bool
	IcingWarning   bool
}

// GameState is the derived, client-facing snapshot of score, clock and
// rules state, assembled by the Match Controller once per tick for the
// wire codec to serialize.
type GameState struct {
	RedScore         uint32
	BlueScore        uint32
	Period           uint32
	Time             uint32
	GoalMessageTimer uint32
	GameOver         bool
	Paused           bool
	GameStep         uint64
	Rules            RulesState
}
