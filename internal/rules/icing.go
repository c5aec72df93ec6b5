package rules

import "github.com/ehl-hqm/migo-hqm-server/internal/model"

// Icing is the Icing rule machine.
type Icing struct {
	Mode   model.IcingMode
	Status model.IcingStatus
}

// NewIcing returns an Icing machine in its resting (No) state.
func NewIcing(mode model.IcingMode) *Icing {
	return &Icing{Mode: mode}
}

// Reset clears the machine back to No, as happens on every faceoff.
func (m *Icing) Reset() {
	m.Status = model.IcingStatus{}
}

// OnPuckPassedGoalLine handles a PuckPassedGoalLine(team) event: if
// the live pass belongs to team and originated at or before center,
// Touch mode raises a delayed warning, NoTouch calls icing
// immediately, and Off does nothing.
func (m *Icing) OnPuckPassedGoalLine(team model.Team, pass *model.Pass, caller FaceoffCaller, emit Emitter) {
	if pass == nil || pass.Team != team || pass.From == nil || *pass.From > model.ReachedCenter {
		return
	}
	switch m.Mode {
	case model.IcingTouch:
		m.Status = model.IcingStatus{Kind: model.IcingWarningStatus, Team: team, Side: pass.Side}
		emit.Chat("Icing warning")
	case model.IcingNoTouch:
		m.call(team, pass.Side, caller, emit)
	case model.IcingOff:
	}
}

func (m *Icing) call(team model.Team, side model.Side, caller FaceoffCaller, emit Emitter) {
	m.Status = model.IcingStatus{Kind: model.IcingCalled, Team: team}
	caller.CallFaceoff(model.DefensiveZoneSpot(team, side))
	emit.Chat("Icing")
}

// OnPuckTouch handles any player's touch while a Warning is pending:
// a touch by the warned team, or by the goalie who started the last
// faceoff, waives the icing off; any other touch calls it against the
// opposing team. startedAsGoalie is the set populated by the faceoff
// resolver for the life of the current faceoff period.
//
// Returns true if this touch was consumed by the icing machine; the
// caller should not process it against the other machines.
func (m *Icing) OnPuckTouch(toucher model.PlayerID, touchingTeam model.Team, startedAsGoalie map[model.PlayerID]bool, caller FaceoffCaller, emit Emitter) bool {
	if m.Status.Kind != model.IcingWarningStatus {
		return false
	}
	warnTeam, side := m.Status.Team, m.Status.Side
	if touchingTeam != warnTeam && !startedAsGoalie[toucher] {
		// Icing is confirmed against the team other than the one that
		// was in Warning status, with a faceoff in that team's own
		// zone: e.g. Warning(Red) + a Blue non-goalie touch calls
		// Icing(Blue) with the restart at DefensiveZone(Blue, side).
		m.call(warnTeam.Other(), side, caller, emit)
	} else {
		m.Status = model.IcingStatus{}
		emit.Chat("Icing waved off")
	}
	return true
}
