package ledger

import (
	"testing"

	"github.com/ehl-hqm/migo-hqm-server/internal/model"
)

func touch(player model.PlayerID, team model.Team, first, last uint32, speed float64) model.PuckTouch {
	return model.PuckTouch{
		PlayerID:  player,
		Team:      team,
		FirstTime: first,
		LastTime:  last,
		PuckSpeed: speed,
	}
}

func TestAddCoalescesSamePlayerTeam(t *testing.T) {
	l := New()
	l.Add(touch(1, model.Red, 0, 0, 1.0))
	l.Add(touch(1, model.Red, 10, 10, 2.0))

	if l.Len() != 1 {
		t.Fatalf("expected coalesced single entry, got %d", l.Len())
	}
}

func TestAddCapsAtSixteen(t *testing.T) {
	l := New()
	for i := 0; i < 32; i++ {
		l.Add(touch(model.PlayerID(i), model.Red, uint32(i), uint32(i), 0))
	}
	if l.Len() != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, l.Len())
	}
}

func TestAttributeBasicGoal(t *testing.T) {
	l := New()
	l.Add(touch(7, model.Red, 0, 0, 12.5))

	attr := l.Attribute(model.Red, 9.0)
	if attr.Scorer == nil || *attr.Scorer != 7 {
		t.Fatalf("expected scorer 7, got %v", attr.Scorer)
	}
	if attr.Assist != nil {
		t.Fatalf("expected no assist, got %v", attr.Assist)
	}
	if attr.SpeedFromStick == nil || *attr.SpeedFromStick != 12.5 {
		t.Fatalf("expected speed from stick 12.5, got %v", attr.SpeedFromStick)
	}
}

func TestAttributeAssistWithinWindow(t *testing.T) {
	l := New()
	// Oldest touch first (A at t=0), newest last (B scores at t=900);
	// front-of-ledger order is newest-first, so push in reverse.
	l.Add(touch(1, model.Red, 0, 0, 5))   // A
	l.Add(touch(2, model.Red, 800, 900, 8)) // B scores

	attr := l.Attribute(model.Red, 10)
	if attr.Scorer == nil || *attr.Scorer != 2 {
		t.Fatalf("expected scorer 2, got %v", attr.Scorer)
	}
	if attr.Assist == nil || *attr.Assist != 1 {
		t.Fatalf("expected assist 1, got %v", attr.Assist)
	}
}

func TestAttributeAssistWindowExpired(t *testing.T) {
	l := New()
	l.Add(touch(1, model.Red, 0, 0, 5))
	l.Add(touch(2, model.Red, 1100, 1100, 8))

	attr := l.Attribute(model.Red, 10)
	if attr.Scorer == nil || *attr.Scorer != 2 {
		t.Fatalf("expected scorer 2, got %v", attr.Scorer)
	}
	if attr.Assist != nil {
		t.Fatalf("expected no assist past the window, got %v", attr.Assist)
	}
}

func TestAttributeOtherTeamTouchesIgnored(t *testing.T) {
	l := New()
	l.Add(touch(9, model.Blue, 0, 0, 3))
	l.Add(touch(7, model.Red, 5, 5, 12.5))

	attr := l.Attribute(model.Red, 9.0)
	if attr.Scorer == nil || *attr.Scorer != 7 {
		t.Fatalf("expected scorer 7, got %v", attr.Scorer)
	}
	if attr.LastToucher == nil || *attr.LastToucher != 7 {
		t.Fatalf("expected last toucher 7 (ledger front), got %v", attr.LastToucher)
	}
}
