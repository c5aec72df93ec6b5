package rules

import (
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/rink"
)

// TwoLinePass is the Two-Line Pass rule machine.
type TwoLinePass struct {
	Mode   model.TwoLineMode
	Status model.TwoLineStatus
}

func NewTwoLinePass(mode model.TwoLineMode) *TwoLinePass {
	return &TwoLinePass{Mode: mode}
}

func (m *TwoLinePass) Reset() {
	m.Status = model.TwoLineStatus{}
}

func (m *TwoLinePass) IsCalled() bool {
	return m.Status.Kind == model.TwoLineCalled
}

// OnOffensiveHalfEntered handles PuckPassedCenterLine(team), the puck
// entering team's offensive half — the
// trigger for On/Double modes, active when the pass originated at or
// before the team's own blue line.
func (m *TwoLinePass) OnOffensiveHalfEntered(team model.Team, pass *model.Pass, world World, emit Emitter) {
	active := m.Mode == model.TwoLineOn || m.Mode == model.TwoLineDouble
	if !active || pass == nil || pass.Team != team || pass.From == nil {
		return
	}
	if *pass.From <= model.ReachedOwnBlue {
		m.check(team, pass, world.MidLine(team), world, emit)
	}
}

// OnOffensiveZoneEntered handles PuckEnteredOffensiveZone(team) — the
// trigger for Forward/Double (pass from at most center) and ThreeLine
// (pass from at most the team's own blue line).
func (m *TwoLinePass) OnOffensiveZoneEntered(team model.Team, pass *model.Pass, world World, emit Emitter) {
	if pass == nil || pass.Team != team || pass.From == nil {
		return
	}
	forwardActive := m.Mode == model.TwoLineForward || m.Mode == model.TwoLineDouble
	threeLineActive := m.Mode == model.TwoLineThreeLine

	switch {
	case forwardActive && *pass.From <= model.ReachedCenter:
		m.check(team, pass, world.OffensiveLine(team), world, emit)
	case threeLineActive && *pass.From <= model.ReachedOwnBlue:
		m.check(team, pass, world.OffensiveLine(team), world, emit)
	}
}

// check enumerates team's roster except the passer, collects anyone
// past line, and raises a warning if that set is non-empty.
func (m *TwoLinePass) check(team model.Team, pass *model.Pass, line rink.Line, world World, emit Emitter) {
	offenders := playersPastLine(world, team, line, pass.Player)
	if len(offenders) == 0 {
		return
	}
	m.Status = model.TwoLineStatus{
		Kind:      model.TwoLineWarningStatus,
		Team:      team,
		Side:      pass.Side,
		From:      *pass.From,
		Offenders: offenders,
	}
	emit.Chat("Two-line pass warning")
}

// OnOpposingLineCrossing handles the wave-off: any line crossing by a
// team other than the warned team clears the warning.
func (m *TwoLinePass) OnOpposingLineCrossing(crossingTeam model.Team, emit Emitter) {
	if m.Status.Kind == model.TwoLineWarningStatus && crossingTeam != m.Status.Team {
		m.Status = model.TwoLineStatus{}
		emit.Chat("Two-line pass waved off")
	}
}

// OnPuckTouch handles a touch while a warning is pending: a touch by
// a listed offender calls two-line pass; a touch by a teammate not on
// the list silently clears the warning; a touch by the opposing team
// is handled by OnOpposingLineCrossing instead (touches do not cross
// lines). Returns true if the touch was consumed by this machine.
func (m *TwoLinePass) OnPuckTouch(toucher model.PlayerID, touchingTeam model.Team, caller FaceoffCaller, emit Emitter) bool {
	if m.Status.Kind != model.TwoLineWarningStatus {
		return false
	}
	if touchingTeam != m.Status.Team {
		return false
	}
	if m.Status.ContainsOffender(toucher) {
		m.call(caller, emit)
	} else {
		m.Status = model.TwoLineStatus{}
	}
	return true
}

func (m *TwoLinePass) call(caller FaceoffCaller, emit Emitter) {
	team, side, from := m.Status.Team, m.Status.Side, m.Status.From
	spot := faceoffSpotForOffense(team, side, &from)
	m.Status = model.TwoLineStatus{Kind: model.TwoLineCalled, Team: team}
	caller.CallFaceoff(spot)
	emit.Chat("Two-line pass")
}
