// Package clock implements the tick clock: the 100Hz cadence that
// advances game time, period number, the pause/intermission timer and
// the goal-replay pause, and decides when a faceoff or a new game is
// due.
package clock

import "github.com/ehl-hqm/migo-hqm-server/internal/model"

// Clock is the authoritative per-game timekeeper. It is advanced once
// per tick by the Match Controller, after rule-machine dispatch.
type Clock struct {
	Time                     uint32
	Period                   uint32
	PauseTimer               uint32
	GoalMessageTimer         uint32
	IsPauseGoal              bool
	NextFaceoffSpot          model.FaceoffSpot
	StepWherePeriodEnded     uint64
	TooLatePrintedThisPeriod bool
	CurrentStep              uint64
	GameOver                 bool
	AdminPaused              bool
}

// New returns a clock ready for the warmup period.
func New(cfg model.MatchConfig) *Clock {
	return &Clock{
		Time:            cfg.WarmupLength,
		NextFaceoffSpot: model.CenterSpot(),
	}
}

// Outcome reports what, if anything, this tick's Advance caused the
// caller to do: trigger a faceoff, start a fresh game, or close out a
// period.
type Outcome struct {
	FaceoffTriggered bool
	FaceoffSpot      model.FaceoffSpot
	NewGameStarted   bool
	PeriodEnded      bool
}

// Advance runs one tick of the clock. While AdminPaused it leaves the
// pause timer, game time and period untouched, matching the "external
// admin-pause freezes all of the above but not message delivery" rule;
// CurrentStep still increments and GoalMessageTimer is still refreshed
// every tick regardless of pause state.
func (c *Clock) Advance(cfg model.MatchConfig) Outcome {
	c.CurrentStep++
	var out Outcome

	if !c.AdminPaused {
		switch {
		case c.PauseTimer > 0:
			c.PauseTimer--
			if c.PauseTimer == 0 {
				c.IsPauseGoal = false
				if c.GameOver {
					c.startNewGame(cfg)
					out.NewGameStarted = true
				} else {
					if c.Time == 0 {
						c.Time = cfg.PeriodLength
					}
					out.FaceoffTriggered = true
					out.FaceoffSpot = c.NextFaceoffSpot
				}
			}
		case c.Time > 0:
			c.Time--
			if c.Time == 0 {
				c.Period++
				c.PauseTimer = cfg.IntermissionLength
				c.IsPauseGoal = false
				c.StepWherePeriodEnded = c.CurrentStep
				c.TooLatePrintedThisPeriod = false
				c.NextFaceoffSpot = model.CenterSpot()
				out.PeriodEnded = true
			}
		}
	}

	if c.IsPauseGoal {
		c.GoalMessageTimer = c.PauseTimer
	} else {
		c.GoalMessageTimer = 0
	}
	return out
}

func (c *Clock) startNewGame(cfg model.MatchConfig) {
	*c = Clock{
		Time:            cfg.WarmupLength,
		NextFaceoffSpot: model.CenterSpot(),
		CurrentStep:     c.CurrentStep,
	}
}

// TooLateWindow returns whether a net entry arriving at currentStep is
// within 300 ticks after the period ended and so counts as "too late"
// (no goal awarded), along with the elapsed time split into seconds and
// centiseconds for the Match Controller's "too late" announcement.
func (c *Clock) TooLateWindow(currentStep uint64) (seconds, centiseconds uint32, tooLate bool) {
	elapsed := satSub64(currentStep, c.StepWherePeriodEnded)
	if elapsed > 300 {
		return 0, 0, false
	}
	return uint32(elapsed) / 100, uint32(elapsed) % 100, true
}

func satSub64(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}

// UpdateGameOver recomputes GameOver from the current scores and
// configured thresholds, adjusting PauseTimer on a state transition in
// either direction.
func (c *Clock) UpdateGameOver(cfg model.MatchConfig, redScore, blueScore uint32) {
	old := c.GameOver

	diff := absDiff(redScore, blueScore)
	c.GameOver = (c.Period > cfg.Periods && redScore != blueScore) ||
		(cfg.MercyThreshold > 0 && diff >= cfg.MercyThreshold) ||
		(cfg.FirstToThreshold > 0 && (redScore >= cfg.FirstToThreshold || blueScore >= cfg.FirstToThreshold))

	if c.GameOver && !old {
		c.PauseTimer = max32(c.PauseTimer, cfg.IntermissionLength)
	} else if !c.GameOver && old {
		c.PauseTimer = max32(c.PauseTimer, cfg.BreakLength)
	}
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
