package rules

import "github.com/ehl-hqm/migo-hqm-server/internal/model"

// Offside is the Offside rule machine.
type Offside struct {
	Mode   model.OffsideMode
	Line   model.OffsideLine
	Status model.OffsideStatus
}

func NewOffside(mode model.OffsideMode, line model.OffsideLine) *Offside {
	return &Offside{Mode: mode, Line: line}
}

func (m *Offside) Reset() {
	m.Status = model.OffsideStatus{}
}

// IsCalled reports whether offside has been whistled and play is
// awaiting a faceoff; the Match Controller uses this to suppress a
// simultaneous goal.
func (m *Offside) IsCalled() bool {
	return m.Status.Kind == model.OffsideCalled
}

// OnCenterLineCrossed handles PuckPassedCenterLine(team) — the trigger
// event in OffsideLineCenter mode, and the "crossing back to own half"
// wave-off signal regardless of mode.
func (m *Offside) OnCenterLineCrossed(team model.Team, pass *model.Pass, world World, caller FaceoffCaller, emit Emitter) {
	if m.Status.Kind == model.OffsideWarningStatus && m.Status.Team != team {
		m.Status = model.OffsideStatus{}
	}
	if m.Line == model.OffsideLineCenter {
		m.checkEntry(team, pass, world, caller, emit)
	}
}

// OnOffensiveZoneEntered handles PuckEnteredOffensiveZone(team) — the
// trigger event in OffsideLineOffensiveBlue mode.
func (m *Offside) OnOffensiveZoneEntered(team model.Team, pass *model.Pass, world World, caller FaceoffCaller, emit Emitter) {
	if m.Line == model.OffsideLineOffensiveBlue {
		m.checkEntry(team, pass, world, caller, emit)
	}
}

// OnPuckPassedDefensiveLine handles the OffensiveBlue-mode wave-off:
// the puck retreating back across a team's own blue line clears any
// pending warning.
func (m *Offside) OnPuckPassedDefensiveLine(team model.Team) {
	if m.Line == model.OffsideLineOffensiveBlue && m.Status.Kind == model.OffsideWarningStatus {
		m.Status = model.OffsideStatus{}
	}
}

func (m *Offside) checkEntry(team model.Team, pass *model.Pass, world World, caller FaceoffCaller, emit Emitter) {
	if m.Status.Kind == model.OffsideInOffensiveZone && m.Status.Team == team {
		return
	}
	if m.Status.Kind == model.OffsideCalled {
		return
	}

	if pass != nil && pass.Team == team && isPastLine(world, team, world.OffensiveLine(team), pass.Player, true) {
		switch m.Mode {
		case model.OffsideDelayed:
			m.Status = model.OffsideStatus{
				Kind:       model.OffsideWarningStatus,
				Team:       team,
				Side:       pass.Side,
				WarnFrom:   pass.From,
				WarnPlayer: pass.Player,
			}
			emit.Chat("Offside warning")
		case model.OffsideImmediate:
			m.call(team, pass.Side, pass.From, false, caller, emit)
		case model.OffsideOff:
			m.Status = model.OffsideStatus{Kind: model.OffsideInOffensiveZone, Team: team}
		}
		return
	}
	m.Status = model.OffsideStatus{Kind: model.OffsideInOffensiveZone, Team: team}
}

func (m *Offside) call(team model.Team, side model.Side, from *model.PassPosition, selfTouch bool, caller FaceoffCaller, emit Emitter) {
	var spot model.FaceoffSpot
	if selfTouch {
		if m.Line == model.OffsideLineOffensiveBlue {
			spot = model.OffsideSpot(team.Other(), side)
		} else {
			spot = model.CenterSpot()
		}
	} else {
		spot = faceoffSpotForOffense(team, side, from)
	}
	m.Status = model.OffsideStatus{Kind: model.OffsideCalled, Team: team}
	caller.CallFaceoff(spot)
	emit.Chat("Offside")
}

// OnPuckTouch handles a touch by the warned team while status is
// Warning: a touch by the warn player is a "self-touch" (the passer
// caught up to their own pass), anyone else on the team confirms
// offside at a spot derived from the recorded pass origin.
//
// Returns true if the touch was consumed by this machine.
func (m *Offside) OnPuckTouch(toucher model.PlayerID, touchingTeam model.Team, caller FaceoffCaller, emit Emitter) bool {
	if m.Status.Kind != model.OffsideWarningStatus || m.Status.Team != touchingTeam {
		return false
	}
	selfTouch := toucher == m.Status.WarnPlayer
	m.call(m.Status.Team, m.Status.Side, m.Status.WarnFrom, selfTouch, caller, emit)
	return true
}

// OnNetEntry handles a PuckEnteredNet(team) event arriving while a
// warning or call is outstanding for team: a live warning confirms
// offside (net entry counts as the "touch" that seals it); an active
// call simply suppresses the goal. Returns true if the net entry was
// consumed (no goal should be awarded).
func (m *Offside) OnNetEntry(team model.Team, caller FaceoffCaller, emit Emitter) bool {
	if m.Status.Kind == model.OffsideWarningStatus && m.Status.Team == team {
		m.call(team, m.Status.Side, m.Status.WarnFrom, false, caller, emit)
		return true
	}
	if m.Status.Kind == model.OffsideCalled {
		return true
	}
	return false
}

// TickClear runs once per tick after event dispatch: if the warned
// team no longer has anyone in the offensive zone, the warning is
// waved off into InOffensiveZone and "Offside waved off" is returned
// for the caller to announce.
func (m *Offside) TickClear(world World) (emitted string) {
	if m.Status.Kind != model.OffsideWarningStatus {
		return ""
	}
	if isPastLine(world, m.Status.Team, world.OffensiveLine(m.Status.Team), 0, false) {
		return ""
	}
	team := m.Status.Team
	m.Status = model.OffsideStatus{Kind: model.OffsideInOffensiveZone, Team: team}
	return "Offside waved off"
}
