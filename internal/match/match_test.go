package match

import (
	"strings"
	"testing"

	"github.com/ehl-hqm/migo-hqm-server/internal/faceoff"
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/rink"
	"github.com/ehl-hqm/migo-hqm-server/internal/simevent"
)

type fakeWorld struct {
	roster    map[model.Team][]model.PlayerID
	feet      map[model.PlayerID]rink.Vec3
	puckSpeed map[model.ObjectIndex]float64
	dims      rink.Dimensions
	applied   *faceoff.Result
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		roster:    map[model.Team][]model.PlayerID{},
		feet:      map[model.PlayerID]rink.Vec3{},
		puckSpeed: map[model.ObjectIndex]float64{},
		dims:      rink.DefaultDimensions,
	}
}

func (w *fakeWorld) TeamRoster(team model.Team) []model.PlayerID { return w.roster[team] }
func (w *fakeWorld) SkaterFeet(p model.PlayerID) (rink.Vec3, bool) {
	v, ok := w.feet[p]
	return v, ok
}
func (w *fakeWorld) OffensiveLine(model.Team) rink.Line             { return rink.Line{} }
func (w *fakeWorld) MidLine(model.Team) rink.Line                   { return rink.Line{} }
func (w *fakeWorld) PuckSide(model.ObjectIndex) model.Side          { return model.Left }
func (w *fakeWorld) Dimensions() rink.Dimensions                    { return w.dims }
func (w *fakeWorld) PuckLinearSpeed(puck model.ObjectIndex) float64 { return w.puckSpeed[puck] }
func (w *fakeWorld) ApplyFaceoff(result faceoff.Result)             { w.applied = &result }

type fakeRosters struct{ red, blue []faceoff.RosterEntry }

func (r fakeRosters) FaceoffRoster(team model.Team) []faceoff.RosterEntry {
	if team == model.Red {
		return r.red
	}
	return r.blue
}

type fakeEmitter struct{ messages []string }

func (e *fakeEmitter) Chat(m string) { e.messages = append(e.messages, m) }
func (e *fakeEmitter) last() string {
	if len(e.messages) == 0 {
		return ""
	}
	return e.messages[len(e.messages)-1]
}

func testCfg() model.MatchConfig {
	return model.MatchConfig{
		Periods:            3,
		PeriodLength:       12000,
		WarmupLength:       3000,
		BreakLength:        500,
		IntermissionLength: 2000,
		Units:              model.UnitKMH,
	}
}

func readyController(cfg model.MatchConfig) *Controller {
	mc := NewController(cfg)
	mc.Clock.Period = 1
	mc.Clock.Time = 5000
	return mc
}

func TestAfterTickAwardsGoalAndEmitsSpeedMessage(t *testing.T) {
	cfg := testCfg()
	mc := readyController(cfg)
	world := newFakeWorld()
	world.puckSpeed[7] = 0.1

	mc.ledgerFor(7).Add(model.PuckTouch{PlayerID: 1, Team: model.Red, PuckSpeed: 0.08, FirstTime: 100, LastTime: 100})

	emit := &fakeEmitter{}
	out := mc.AfterTick([]simevent.Event{{Kind: simevent.PuckEnteredNet, Team: model.Red, Puck: 7}}, world, fakeRosters{}, emit, false)

	if mc.RedScore != 1 {
		t.Fatalf("expected red score incremented, got %d", mc.RedScore)
	}
	if len(out) != 1 || out[0].Kind != EventGoal || out[0].Team != model.Red {
		t.Fatalf("expected a single goal event, got %+v", out)
	}
	if out[0].Scorer == nil || *out[0].Scorer != 1 {
		t.Fatalf("expected scorer=1, got %+v", out[0].Scorer)
	}
	if !strings.Contains(emit.messages[0], "km/h across line") {
		t.Fatalf("expected a speed-across-line message, got %q", emit.messages[0])
	}
	if !strings.Contains(emit.messages[0], "from stick") {
		t.Fatalf("expected a from-stick clause since the scorer's own touch was recorded, got %q", emit.messages[0])
	}
	// The same AfterTick advances the clock once after the goal sets the
	// break, so one tick of it has already elapsed.
	if mc.Clock.PauseTimer != cfg.BreakLength-1 {
		t.Fatalf("expected pause timer set to break length, got %d", mc.Clock.PauseTimer)
	}
	if !mc.Clock.IsPauseGoal {
		t.Fatalf("expected is_pause_goal set")
	}
}

func TestAfterTickGoalLateInPeriodEmitsSecondsLeft(t *testing.T) {
	cfg := testCfg()
	mc := readyController(cfg)
	mc.Clock.Time = 250
	world := newFakeWorld()

	emit := &fakeEmitter{}
	mc.AfterTick([]simevent.Event{{Kind: simevent.PuckEnteredNet, Team: model.Blue, Puck: 1}}, world, fakeRosters{}, emit, false)

	found := false
	for _, m := range emit.messages {
		if strings.Contains(m, "seconds left") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a seconds-left message when time<1000, got %v", emit.messages)
	}
}

func TestAfterTickOffsideWarningSuppressesGoal(t *testing.T) {
	cfg := testCfg()
	mc := readyController(cfg)
	mc.Coupler.Offside.Status = model.OffsideStatus{Kind: model.OffsideWarningStatus, Team: model.Red, Side: model.Left}
	world := newFakeWorld()

	emit := &fakeEmitter{}
	out := mc.AfterTick([]simevent.Event{{Kind: simevent.PuckEnteredNet, Team: model.Red, Puck: 1}}, world, fakeRosters{}, emit, false)

	if mc.RedScore != 0 {
		t.Fatalf("expected no goal awarded while offside is warning against the scoring team, got score=%d", mc.RedScore)
	}
	if len(out) != 0 {
		t.Fatalf("expected no goal event, got %+v", out)
	}
}

func TestAfterTickTooLateAfterPeriodEndsSuppressesGoal(t *testing.T) {
	cfg := testCfg()
	mc := readyController(cfg)
	mc.Clock.Period = 2
	mc.Clock.Time = 0
	mc.Clock.CurrentStep = 1100
	mc.Clock.StepWherePeriodEnded = 1000
	world := newFakeWorld()

	emit := &fakeEmitter{}
	out := mc.AfterTick([]simevent.Event{{Kind: simevent.PuckEnteredNet, Team: model.Red, Puck: 1}}, world, fakeRosters{}, emit, false)

	if mc.RedScore != 0 || len(out) != 0 {
		t.Fatalf("expected no goal awarded after the period already ended, got score=%d out=%v", mc.RedScore, out)
	}
	if !strings.Contains(emit.last(), "too late") {
		t.Fatalf("expected a too-late message, got %v", emit.messages)
	}
	if !mc.Clock.TooLatePrintedThisPeriod {
		t.Fatalf("expected the too-late flag set so it only prints once")
	}
}

func TestAfterTickFaceoffTriggeredAppliesResult(t *testing.T) {
	cfg := testCfg()
	mc := readyController(cfg)
	mc.Clock.PauseTimer = 1
	mc.Clock.NextFaceoffSpot = model.CenterSpot()
	world := newFakeWorld()
	rosters := fakeRosters{
		red:  []faceoff.RosterEntry{{Player: 1, Preferred: "C"}},
		blue: []faceoff.RosterEntry{{Player: 2, Preferred: "C"}},
	}

	mc.ledgerFor(1).Add(model.PuckTouch{PlayerID: 1, Team: model.Red})

	emit := &fakeEmitter{}
	mc.AfterTick(nil, world, rosters, emit, false)

	if world.applied == nil {
		t.Fatalf("expected the faceoff result applied to the world")
	}
	if mc.ledgerFor(1).Len() != 0 {
		t.Fatalf("expected the puck ledger cleared on faceoff")
	}
}

func TestAfterTickGameOverStartsNewGameAndResetsScore(t *testing.T) {
	cfg := testCfg()
	mc := readyController(cfg)
	mc.RedScore, mc.BlueScore = 6, 1
	mc.Clock.GameOver = true
	mc.Clock.PauseTimer = 1
	world := newFakeWorld()

	emit := &fakeEmitter{}
	mc.AfterTick(nil, world, fakeRosters{}, emit, false)

	if mc.RedScore != 0 || mc.BlueScore != 0 {
		t.Fatalf("expected scores reset on new game, got red=%d blue=%d", mc.RedScore, mc.BlueScore)
	}
	if mc.Clock.GameOver {
		t.Fatalf("expected game_over cleared by the fresh clock")
	}
	if mc.Clock.Time != cfg.WarmupLength {
		t.Fatalf("expected warmup time, got %d", mc.Clock.Time)
	}
}

func TestAfterTickNewGameReissuesGameID(t *testing.T) {
	cfg := testCfg()
	mc := readyController(cfg)
	original := mc.GameID
	mc.Clock.GameOver = true
	mc.Clock.PauseTimer = 1
	world := newFakeWorld()

	mc.AfterTick(nil, world, fakeRosters{}, &fakeEmitter{}, false)

	if mc.GameID == original {
		t.Fatalf("expected a fresh game id once a new game starts")
	}
}

func TestAfterTickPeriodEndReevaluatesGameOver(t *testing.T) {
	cfg := testCfg()
	cfg.Periods = 1
	mc := readyController(cfg)
	mc.RedScore, mc.BlueScore = 3, 1
	mc.Clock.Time = 1
	world := newFakeWorld()

	mc.AfterTick(nil, world, fakeRosters{}, &fakeEmitter{}, false)

	if !mc.Clock.GameOver {
		t.Fatalf("expected game_over set once the final period ends with an unequal score")
	}
}

func TestAfterTickAdminPausedSkipsDispatch(t *testing.T) {
	cfg := testCfg()
	mc := readyController(cfg)
	world := newFakeWorld()

	emit := &fakeEmitter{}
	out := mc.AfterTick([]simevent.Event{{Kind: simevent.PuckEnteredNet, Team: model.Red, Puck: 1}}, world, fakeRosters{}, emit, true)

	if mc.RedScore != 0 || len(out) != 0 {
		t.Fatalf("expected no dispatch while admin-paused, got score=%d out=%v", mc.RedScore, out)
	}
}

func TestSnapshotReflectsScoreAndClock(t *testing.T) {
	cfg := testCfg()
	mc := readyController(cfg)
	mc.RedScore = 3

	snap := mc.Snapshot(false)
	if snap.RedScore != 3 || snap.Period != 1 || snap.Time != 5000 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestResetZeroesScoreAndIssuesFreshGameID(t *testing.T) {
	cfg := testCfg()
	mc := readyController(cfg)
	mc.RedScore, mc.BlueScore = 5, 2
	mc.Clock.Period = 3
	oldID := mc.GameID

	mc.Reset()

	if mc.RedScore != 0 || mc.BlueScore != 0 {
		t.Fatalf("expected both scores zeroed, got %d-%d", mc.RedScore, mc.BlueScore)
	}
	if mc.Clock.Period != 0 {
		t.Fatalf("expected a fresh warmup clock, got period %d", mc.Clock.Period)
	}
	if mc.GameID == oldID {
		t.Fatalf("expected a new game id")
	}
}
