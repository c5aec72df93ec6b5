// Package match implements the top-level per-tick orchestrator: it
// owns the scoreboard, the tick clock and the rule-machine coupler,
// dispatches a tick's simulation events through the rule machines,
// awards goals with puck-touch attribution, and triggers faceoffs and
// goal replays.
package match

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ehl-hqm/migo-hqm-server/internal/clock"
	"github.com/ehl-hqm/migo-hqm-server/internal/faceoff"
	"github.com/ehl-hqm/migo-hqm-server/internal/ledger"
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/rink"
	"github.com/ehl-hqm/migo-hqm-server/internal/rules"
	"github.com/ehl-hqm/migo-hqm-server/internal/simevent"
)

// World is the physics collaborator's read/write surface the Match
// Controller needs beyond what the rule machines read (rules.World):
// rink dimensions for faceoff geometry, a puck's instantaneous speed
// for goal attribution, and the ability to apply a resolved faceoff.
type World interface {
	rules.World
	Dimensions() rink.Dimensions
	PuckLinearSpeed(puck model.ObjectIndex) float64
	ApplyFaceoff(placement faceoff.Result)
}

// Rosters supplies each team's on-ice roster, with preferred faceoff
// positions, as tracked by the session registry.
type Rosters interface {
	FaceoffRoster(team model.Team) []faceoff.RosterEntry
}

// EventKind enumerates the match-level occurrences AfterTick reports
// to its caller.
type EventKind uint8

const (
	EventGoal EventKind = iota
)

// Event is a single notable occurrence for the caller to act on beyond
// what chat messages already convey (e.g. updating a box score).
type Event struct {
	Kind   EventKind
	Team   model.Team
	Scorer *model.PlayerID
	Assist *model.PlayerID
}

// Replay is a queued request to the external replay subsystem: the
// window of game steps to show, and the player to favor for the
// camera.
type Replay struct {
	Start     uint64
	End       uint64
	ForceView *model.PlayerID
}

// Controller is the top-level per-tick orchestrator.
type Controller struct {
	Config model.MatchConfig

	// GameID identifies the current game instance on the wire; a
	// client whose last-known GameID no longer matches gets a game-id
	// mismatch notice instead of a snapshot. It is reissued whenever a
	// new game starts.
	GameID uuid.UUID

	RedScore  uint32
	BlueScore uint32

	Clock   *clock.Clock
	Coupler *rules.Coupler
	Rules   model.RulesState

	Ledgers map[model.ObjectIndex]*ledger.Ledger

	pendingReplay *Replay
	faceoffStep   uint64
}

// NewController builds a fresh controller in the warmup state, ready
// for its first faceoff.
func NewController(cfg model.MatchConfig) *Controller {
	return &Controller{
		Config:  cfg,
		GameID:  uuid.New(),
		Clock:   clock.New(cfg),
		Coupler: rules.NewCoupler(cfg),
		Ledgers: map[model.ObjectIndex]*ledger.Ledger{},
	}
}

// Reset restarts the match from a clean warmup state, as if the
// server had just started a fresh game: scores to zero, a fresh
// clock, a fresh rule-machine coupler, and a new GameID so connected
// clients resync against the new instance via the game-id-mismatch
// check rather than silently reinterpreting stale state.
func (mc *Controller) Reset() {
	mc.RedScore, mc.BlueScore = 0, 0
	mc.GameID = uuid.New()
	mc.Clock = clock.New(mc.Config)
	mc.Coupler = rules.NewCoupler(mc.Config)
	mc.Rules = model.RulesState{}
	mc.Ledgers = map[model.ObjectIndex]*ledger.Ledger{}
	mc.pendingReplay = nil
	mc.faceoffStep = 0
}

// CallFaceoff implements rules.FaceoffCaller: a rule machine calling a
// stoppage records the restart spot and starts the break-length pause.
func (mc *Controller) CallFaceoff(spot model.FaceoffSpot) {
	mc.Clock.NextFaceoffSpot = spot
	mc.Clock.PauseTimer = mc.Config.BreakLength
}

func (mc *Controller) ledgerFor(puck model.ObjectIndex) *ledger.Ledger {
	l, ok := mc.Ledgers[puck]
	if !ok {
		l = ledger.New()
		mc.Ledgers[puck] = l
	}
	return l
}

// AfterTick runs the top-level per-tick flow: end-of-period "too late"
// handling, rule-machine dispatch (unless play is paused for any
// reason), the tick clock advance, faceoff application and replay
// scheduling. adminPaused reflects an operator pause independent of
// the clock's own pause timer.
func (mc *Controller) AfterTick(events []simevent.Event, world World, rosters Rosters, emit rules.Emitter, adminPaused bool) []Event {
	var out []Event

	switch {
	case mc.Clock.Time == 0 && mc.Clock.Period > 1:
		mc.handleEndOfPeriodTooLate(events, emit)
	case mc.Clock.PauseTimer > 0 || mc.Clock.Time == 0 || mc.Clock.GameOver || mc.Clock.Period == 0 || adminPaused:
		// Skip dispatch entirely: a faceoff or intermission is already
		// pending, or the game is over, or the operator paused play.
	default:
		out = mc.dispatch(events, world, emit)
		mc.Coupler.TickClear(world, emit)
		mc.Rules = mc.Coupler.RulesState()
	}

	mc.Clock.AdminPaused = adminPaused
	clockOut := mc.Clock.Advance(mc.Config)

	if clockOut.PeriodEnded {
		mc.Clock.UpdateGameOver(mc.Config, mc.RedScore, mc.BlueScore)
	}

	if clockOut.NewGameStarted {
		mc.RedScore, mc.BlueScore = 0, 0
		mc.GameID = uuid.New()
		mc.Coupler.ResetForFaceoff(nil)
	}
	if clockOut.NewGameStarted || clockOut.FaceoffTriggered {
		spot := clockOut.FaceoffSpot
		if clockOut.NewGameStarted {
			spot = model.CenterSpot()
		}
		mc.doFaceoff(world, rosters, spot)
	}

	if mc.pendingReplay != nil && mc.Clock.CurrentStep >= mc.pendingReplay.End {
		emit.Chat("Goal replay")
		mc.pendingReplay = nil
	}

	return out
}

// dispatch hands each event to the rule-machine coupler in order,
// awarding a goal on an unsuppressed net entry, and stops processing
// the remainder of the tick's events as soon as one of them sets the
// pause timer or ends the game.
func (mc *Controller) dispatch(events []simevent.Event, world World, emit rules.Emitter) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Kind == simevent.PuckEnteredNet {
			suppressed := mc.Coupler.HandleEvent(ev, mc.ledgerFor, world, mc, emit)
			if !suppressed {
				out = append(out, mc.awardGoal(ev.Team, ev.Puck, world, emit))
			}
		} else {
			mc.Coupler.HandleEvent(ev, mc.ledgerFor, world, mc, emit)
		}
		if mc.Clock.PauseTimer > 0 || mc.Clock.GameOver {
			break
		}
	}
	return out
}

func (mc *Controller) awardGoal(team model.Team, puck model.ObjectIndex, world World, emit rules.Emitter) Event {
	switch team {
	case model.Red:
		mc.RedScore++
	case model.Blue:
		mc.BlueScore++
	}

	attr := mc.ledgerFor(puck).Attribute(team, world.PuckLinearSpeed(puck))

	value, unit := mc.Config.Units.Convert(attr.SpeedAcrossLine)
	msg := fmt.Sprintf("Goal scored, %.1f %s across line", value, unit)
	if attr.SpeedFromStick != nil {
		stickValue, stickUnit := mc.Config.Units.Convert(*attr.SpeedFromStick)
		msg += fmt.Sprintf(", %.1f %s from stick", stickValue, stickUnit)
	}
	emit.Chat(msg)

	if mc.Clock.Time < 1000 {
		emit.Chat(fmt.Sprintf("%d.%02d seconds left", mc.Clock.Time/100, mc.Clock.Time%100))
	}

	mc.Clock.PauseTimer = mc.Config.BreakLength
	mc.Clock.IsPauseGoal = true
	mc.Clock.NextFaceoffSpot = model.CenterSpot()
	mc.Clock.UpdateGameOver(mc.Config, mc.RedScore, mc.BlueScore)

	if mc.Config.GoalReplayEnabled {
		start := satSub64(mc.Clock.CurrentStep, 600)
		if mc.faceoffStep > start {
			start = mc.faceoffStep
		}
		view := attr.Scorer
		if view == nil {
			view = attr.LastToucher
		}
		mc.pendingReplay = &Replay{Start: start, End: mc.Clock.CurrentStep + 200, ForceView: view}

		mc.Clock.PauseTimer = satSub32(mc.Clock.PauseTimer, 800)
		if mc.Clock.PauseTimer < 400 {
			mc.Clock.PauseTimer = 400
		}
	}

	return Event{Kind: EventGoal, Team: team, Scorer: attr.Scorer, Assist: attr.Assist}
}

func (mc *Controller) handleEndOfPeriodTooLate(events []simevent.Event, emit rules.Emitter) {
	if mc.Clock.TooLatePrintedThisPeriod {
		return
	}
	for _, ev := range events {
		if ev.Kind != simevent.PuckEnteredNet {
			continue
		}
		if sec, cs, ok := mc.Clock.TooLateWindow(mc.Clock.CurrentStep); ok {
			emit.Chat(fmt.Sprintf("%d.%02d seconds too late!", sec, cs))
			mc.Clock.TooLatePrintedThisPeriod = true
		}
		return
	}
}

func (mc *Controller) doFaceoff(world World, rosters Rosters, spot model.FaceoffSpot) {
	red := rosters.FaceoffRoster(model.Red)
	blue := rosters.FaceoffRoster(model.Blue)

	result := faceoff.Resolve(world.Dimensions(), spot, red, blue)
	world.ApplyFaceoff(result)

	mc.Coupler.ResetForFaceoff(result.StartedAsGoalie)
	for _, l := range mc.Ledgers {
		l.Clear()
	}
	mc.faceoffStep = mc.Clock.CurrentStep
}

// Snapshot assembles the client-facing game state for the wire codec.
func (mc *Controller) Snapshot(adminPaused bool) model.GameState {
	return model.GameState{
		RedScore:         mc.RedScore,
		BlueScore:        mc.BlueScore,
		Period:           mc.Clock.Period,
		Time:             mc.Clock.Time,
		GoalMessageTimer: mc.Clock.GoalMessageTimer,
		GameOver:         mc.Clock.GameOver,
		Paused:           adminPaused,
		GameStep:         mc.Clock.CurrentStep,
		Rules:            mc.Rules,
	}
}

func satSub64(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}

func satSub32(a, b uint32) uint32 {
	if a < b {
		return 0
	}
	return a - b
}
