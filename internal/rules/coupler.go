package rules

import (
	"github.com/ehl-hqm/migo-hqm-server/internal/ledger"
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/passtrack"
	"github.com/ehl-hqm/migo-hqm-server/internal/simevent"
)

// Coupler sequences the three rule machines against a tick's
// simulation events, sharing the single live Pass (package passtrack)
// between them. It owns no puck-touch ledgers itself — those are
// keyed per puck by the Match Controller, which also owns the
// goal-scoring flow; Coupler only decides whether a net entry is
// suppressed by an outstanding offside call/warning.
type Coupler struct {
	Icing   *Icing
	Offside *Offside
	TwoLine *TwoLinePass
	Pass    *passtrack.Tracker

	// StartedAsGoalie is the set of players who started the current
	// faceoff period as a goaltender, populated by the faceoff
	// resolver and consumed by the Icing machine's wave-off rule.
	StartedAsGoalie map[model.PlayerID]bool
}

// NewCoupler builds the three rule machines from a MatchConfig.
func NewCoupler(cfg model.MatchConfig) *Coupler {
	return &Coupler{
		Icing:           NewIcing(cfg.Icing),
		Offside:         NewOffside(cfg.Offside, cfg.OffsideLine),
		TwoLine:         NewTwoLinePass(cfg.TwoLine),
		Pass:            passtrack.New(),
		StartedAsGoalie: map[model.PlayerID]bool{},
	}
}

// ResetForFaceoff clears every machine's state, the live pass and the
// started-as-goalie set, as happens on every faceoff.
func (c *Coupler) ResetForFaceoff(goalies []model.PlayerID) {
	c.Icing.Reset()
	c.Offside.Reset()
	c.TwoLine.Reset()
	c.Pass.Clear()
	c.StartedAsGoalie = make(map[model.PlayerID]bool, len(goalies))
	for _, g := range goalies {
		c.StartedAsGoalie[g] = true
	}
}

// RulesState derives the client-facing rules summary sent in every
// snapshot.
func (c *Coupler) RulesState() model.RulesState {
	if c.Offside.IsCalled() || c.TwoLine.IsCalled() {
		return model.RulesState{Kind: model.RulesOffside}
	}
	if c.Icing.Status.Kind == model.IcingCalled {
		return model.RulesState{Kind: model.RulesIcing}
	}
	return model.RulesState{
		Kind:           model.RulesRegular,
		IcingWarning:   c.Icing.Status.Kind == model.IcingWarningStatus,
		OffsideWarning: c.Offside.Status.Kind == model.OffsideWarningStatus || c.TwoLine.Status.Kind == model.TwoLineWarningStatus,
	}
}

// TickClear runs the once-per-tick offside clear, after the tick's
// events have been dispatched.
func (c *Coupler) TickClear(world World, emit Emitter) {
	if msg := c.Offside.TickClear(world); msg != "" {
		emit.Chat(msg)
	}
}

// HandleEvent dispatches a single simulation event to the appropriate
// rule machine(s). ledgerFor resolves (creating lazily) the
// puck-touch ledger for a given puck index. It returns
// suppressNetEntry=true when ev is a PuckEnteredNet that an
// outstanding offside call/warning has swallowed — the Match
// Controller must not award a goal in that case.
func (c *Coupler) HandleEvent(
	ev simevent.Event,
	ledgerFor func(puck model.ObjectIndex) *ledger.Ledger,
	world World,
	caller FaceoffCaller,
	emit Emitter,
) (suppressNetEntry bool) {
	switch ev.Kind {
	case simevent.PuckEnteredNet:
		return c.Offside.OnNetEntry(ev.Team, caller, emit)

	case simevent.PuckTouch:
		l := ledgerFor(ev.Puck)
		l.Add(model.PuckTouch{
			PlayerID:  ev.Player,
			SkaterID:  ev.Skater,
			Team:      ev.PlayerTeam,
			PuckPos:   ev.PuckPos,
			PuckSpeed: ev.PuckSpeed,
			FirstTime: ev.Time,
			LastTime:  ev.Time,
		})
		c.Pass.Touch(ev.PlayerTeam, world.PuckSide(ev.Puck), ev.Player)

		if c.Offside.OnPuckTouch(ev.Player, ev.PlayerTeam, caller, emit) {
			return false
		}
		// A same-team non-offender touch only clears the two-line
		// warning; it doesn't consume the touch, so icing still gets
		// to see it.
		c.TwoLine.OnPuckTouch(ev.Player, ev.PlayerTeam, caller, emit)
		c.Icing.OnPuckTouch(ev.Player, ev.PlayerTeam, c.StartedAsGoalie, caller, emit)
		return false

	case simevent.PuckReachedDefensiveLine:
		c.TwoLine.OnOpposingLineCrossing(ev.Team, emit)
		c.Pass.Advance(ev.Team, model.ReachedOwnBlue)

	case simevent.PuckPassedDefensiveLine:
		c.Pass.Advance(ev.Team, model.PassedOwnBlue)
		c.Offside.OnPuckPassedDefensiveLine(ev.Team)

	case simevent.PuckReachedCenterLine:
		c.TwoLine.OnOpposingLineCrossing(ev.Team, emit)
		c.Pass.Advance(ev.Team, model.ReachedCenter)

	case simevent.PuckPassedCenterLine:
		c.Pass.Advance(ev.Team, model.PassedCenter)
		c.Offside.OnCenterLineCrossed(ev.Team, c.Pass.Current(), world, caller, emit)
		c.TwoLine.OnOffensiveHalfEntered(ev.Team, c.Pass.Current(), world, emit)

	case simevent.PuckReachedOffensiveZone:
		c.Pass.Advance(ev.Team, model.ReachedOffensive)

	case simevent.PuckEnteredOffensiveZone:
		c.Pass.Advance(ev.Team, model.PassedOffensive)
		c.Offside.OnOffensiveZoneEntered(ev.Team, c.Pass.Current(), world, caller, emit)
		c.TwoLine.OnOffensiveZoneEntered(ev.Team, c.Pass.Current(), world, emit)

	case simevent.PuckPassedGoalLine:
		c.Icing.OnPuckPassedGoalLine(ev.Team, c.Pass.Current(), caller, emit)
	}
	return false
}
