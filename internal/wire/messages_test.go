package wire

import (
	"testing"

	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/session"
)

func TestWriteReadMessageChatRoundTrips(t *testing.T) {
	w := NewBitWriter()
	writeMessage(w, session.Message{Kind: session.MessageChat, PlayerSlot: 3, Text: "glhf"})

	r := NewBitReader(w.Bytes())
	got, err := readMessage(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != wireKindChat || got.PlayerSlot != 3 || got.Text != "glhf" {
		t.Fatalf("unexpected decode: %+v", got)
	}
}

func TestWriteReadMessageServerChatUsesSentinel(t *testing.T) {
	w := NewBitWriter()
	writeMessage(w, session.Message{Kind: session.MessageChat, PlayerSlot: session.ServerSlot, Text: "Icing"})

	r := NewBitReader(w.Bytes())
	got, _ := readMessage(r)
	if got.PlayerSlot != NoPlayerIndex {
		t.Fatalf("expected the server-slot sentinel, got %d", got.PlayerSlot)
	}
}

func TestWriteReadMessageGoalWithAssist(t *testing.T) {
	scorer := model.PlayerID(2)
	assist := model.PlayerID(5)
	w := NewBitWriter()
	writeMessage(w, session.Message{Kind: session.MessageGoal, GoalTeam: model.Blue, Scorer: &scorer, Assist: &assist})

	r := NewBitReader(w.Bytes())
	got, err := readMessage(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Team != model.Blue || got.Scorer != 2 || got.Assist != 5 {
		t.Fatalf("unexpected decode: %+v", got)
	}
}

func TestWriteReadMessageGoalUnassistedUsesSentinel(t *testing.T) {
	scorer := model.PlayerID(1)
	w := NewBitWriter()
	writeMessage(w, session.Message{Kind: session.MessageGoal, GoalTeam: model.Red, Scorer: &scorer})

	r := NewBitReader(w.Bytes())
	got, _ := readMessage(r)
	if got.Assist != NoPlayerIndex {
		t.Fatalf("expected an unassisted goal to carry the sentinel, got %d", got.Assist)
	}
}

func TestWriteReadMessagePlayerUpdate(t *testing.T) {
	w := NewBitWriter()
	writeMessage(w, session.Message{
		Kind:         session.MessagePlayerUpdate,
		UpdateSlot:   4,
		UpdateJoined: true,
		UpdateTeam:   model.Red,
		UpdateObject: 7,
		UpdateName:   "Gretzky",
	})

	r := NewBitReader(w.Bytes())
	got, err := readMessage(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UpdateSlot != 4 || !got.UpdateJoined || got.UpdateTeam != model.Red || got.UpdateObject != 7 {
		t.Fatalf("unexpected decode: %+v", got)
	}
	if got.UpdateName != "Gretzky" {
		t.Fatalf("expected name preserved, got %q", got.UpdateName)
	}
}

func TestWriteReadMessagePlayerUpdateSpecHasNoObject(t *testing.T) {
	w := NewBitWriter()
	writeMessage(w, session.Message{Kind: session.MessagePlayerUpdate, UpdateSlot: 1, UpdateTeam: model.Spec, UpdateObject: 9})

	r := NewBitReader(w.Bytes())
	got, _ := readMessage(r)
	if got.UpdateObject != NoPlayerIndex {
		t.Fatalf("expected a spectator's update to carry no object index, got %d", got.UpdateObject)
	}
}
