package session

import (
	"testing"

	"github.com/ehl-hqm/migo-hqm-server/internal/model"
)

func TestJoinAssignsFirstFreeSlotAndDefaultsToSpec(t *testing.T) {
	r := NewRegistry(2)

	slot, sess, err := r.Join("alice", "10.0.0.1:9000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot != 0 {
		t.Fatalf("expected the first free slot, got %d", slot)
	}
	if sess.Team != model.Spec {
		t.Fatalf("expected a new session to start in Spec, got %v", sess.Team)
	}
}

func TestJoinFailsWhenFull(t *testing.T) {
	r := NewRegistry(1)
	if _, _, err := r.Join("alice", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := r.Join("bob", "b"); err != ErrFull {
		t.Fatalf("expected ErrFull, got %v", err)
	}
}

func TestJoinFailsWhenDisabled(t *testing.T) {
	r := NewRegistry(2)
	r.SetJoinEnabled(false)
	if _, _, err := r.Join("alice", "a"); err != ErrJoinDisabled {
		t.Fatalf("expected ErrJoinDisabled, got %v", err)
	}
}

func TestJoinFailsWhenBanned(t *testing.T) {
	r := NewRegistry(2)
	r.Ban("alice", "10.0.0.1:9000")
	if _, _, err := r.Join("alice", "10.0.0.1:9000"); err != ErrBanned {
		t.Fatalf("expected ErrBanned, got %v", err)
	}
}

func TestClearBansAllowsRejoin(t *testing.T) {
	r := NewRegistry(2)
	r.Ban("alice", "a")
	r.ClearBans()
	if _, _, err := r.Join("alice", "a"); err != nil {
		t.Fatalf("expected join to succeed after clearing bans, got %v", err)
	}
}

func TestSetTeamSpawnsAndDespawns(t *testing.T) {
	r := NewRegistry(2)
	slot, _, _ := r.Join("alice", "a")

	if err := r.SetTeam(slot, model.Red, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sess, _ := r.Session(slot)
	if !sess.HasSkater || sess.SkaterObject != 5 {
		t.Fatalf("expected a spawned skater, got %+v", sess)
	}

	if err := r.SetTeam(slot, model.Spec, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.HasSkater {
		t.Fatalf("expected the skater despawned on moving to Spec")
	}
	if sess.TeamSwitchCooldown != TeamSwitchCooldown {
		t.Fatalf("expected the cooldown started, got %d", sess.TeamSwitchCooldown)
	}
}

func TestSetTeamBlockedDuringCooldown(t *testing.T) {
	r := NewRegistry(2)
	slot, sess, _ := r.Join("alice", "a")
	sess.TeamSwitchCooldown = 10

	if err := r.SetTeam(slot, model.Red, 1); err == nil {
		t.Fatalf("expected an error joining a team during cooldown")
	}
}

func TestTickTimesOutInactiveSessions(t *testing.T) {
	r := NewRegistry(2)
	slot, _, _ := r.Join("alice", "a")

	var timedOut []int
	for i := 0; i < InactivityTimeout; i++ {
		timedOut = r.Tick()
	}
	if len(timedOut) != 1 || timedOut[0] != slot {
		t.Fatalf("expected slot %d to time out, got %v", slot, timedOut)
	}
}

func TestTouchResetsInactivity(t *testing.T) {
	r := NewRegistry(2)
	slot, _, _ := r.Join("alice", "a")

	for i := 0; i < InactivityTimeout-1; i++ {
		r.Tick()
	}
	r.Touch(slot)
	if timedOut := r.Tick(); len(timedOut) != 0 {
		t.Fatalf("expected no timeout right after a touch, got %v", timedOut)
	}
}

func TestHandleChatMutedIsDropped(t *testing.T) {
	r := NewRegistry(2)
	slot, sess, _ := r.Join("alice", "a")
	sess.Muted = true

	if r.HandleChat(slot, "hello") {
		t.Fatalf("expected a muted player's chat to be dropped")
	}
}

func TestHandleChatBroadcastsAndTails(t *testing.T) {
	r := NewRegistry(2)
	slot, _, _ := r.Join("alice", "a")

	if !r.HandleChat(slot, "hello") {
		t.Fatalf("expected chat to be accepted")
	}
	msgs, cursor := r.Tail(0)
	if len(msgs) != 1 || msgs[0].Text != "hello" || msgs[0].PlayerSlot != slot {
		t.Fatalf("unexpected tail: %+v", msgs)
	}
	if cursor != 1 {
		t.Fatalf("expected cursor advanced to 1, got %d", cursor)
	}
}

func TestChatEmitsServerSlotMessage(t *testing.T) {
	r := NewRegistry(2)
	r.Chat("Icing")

	msgs, _ := r.Tail(0)
	if len(msgs) != 1 || msgs[0].PlayerSlot != ServerSlot || msgs[0].Text != "Icing" {
		t.Fatalf("unexpected server chat message: %+v", msgs)
	}
}

func TestFaceoffRosterListsOnlySkatingPlayersOnTeam(t *testing.T) {
	r := NewRegistry(4)
	slotA, _, _ := r.Join("alice", "a")
	slotB, _, _ := r.Join("bob", "b")
	_, _, _ = r.Join("carol", "c")

	r.SetTeam(slotA, model.Red, 1)
	r.SetTeam(slotB, model.Red, 2)

	roster := r.FaceoffRoster(model.Red)
	if len(roster) != 2 {
		t.Fatalf("expected 2 red skaters, got %d", len(roster))
	}
}

func TestTeamRosterListsOnlySkatingPlayersOnTeamBySlot(t *testing.T) {
	r := NewRegistry(4)
	slotA, _, _ := r.Join("alice", "a")
	slotB, _, _ := r.Join("bob", "b")
	slotC, _, _ := r.Join("carol", "c")

	r.SetTeam(slotA, model.Red, 1)
	r.SetTeam(slotB, model.Blue, 2)
	_ = slotC // left in Spec

	roster := r.TeamRoster(model.Red)
	if len(roster) != 1 || roster[0] != model.PlayerID(slotA) {
		t.Fatalf("expected only slot %d on red's roster, got %+v", slotA, roster)
	}
	if len(r.TeamRoster(model.Blue)) != 1 {
		t.Fatalf("expected exactly 1 blue skater")
	}
}

func TestFindLocatesByIdentity(t *testing.T) {
	r := NewRegistry(2)
	slot, _, _ := r.Join("alice", "a")

	sess, ok := r.Find("alice")
	if !ok || sess.Slot != slot {
		t.Fatalf("expected to find alice at slot %d, got %+v, %v", slot, sess, ok)
	}
	if _, ok := r.Find("nobody"); ok {
		t.Fatalf("expected no match for an unknown identity")
	}
}

func TestSetAdminGrantsAndRevokes(t *testing.T) {
	r := NewRegistry(2)
	slot, sess, _ := r.Join("alice", "a")

	if err := r.SetAdmin(slot, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sess.Admin {
		t.Fatalf("expected admin granted")
	}
	r.SetAdmin(slot, false)
	if sess.Admin {
		t.Fatalf("expected admin revoked")
	}
}

func TestSetChatMutedDropsEveryoneRegardlessOfIndividualMute(t *testing.T) {
	r := NewRegistry(2)
	slot, _, _ := r.Join("alice", "a")
	r.SetChatMuted(true)

	if r.HandleChat(slot, "hello") {
		t.Fatalf("expected chat dropped while globally muted")
	}
	r.SetChatMuted(false)
	if !r.HandleChat(slot, "hello") {
		t.Fatalf("expected chat accepted once the global mute lifts")
	}
}

func TestSetHandAndPreferredPosition(t *testing.T) {
	r := NewRegistry(2)
	slot, sess, _ := r.Join("alice", "a")

	if err := r.SetHand(slot, HandLeft); err != nil || sess.Hand != HandLeft {
		t.Fatalf("expected hand left, got %v, %v", sess.Hand, err)
	}
	if err := r.SetPreferredPosition(slot, "LW"); err != nil || sess.PreferredPosition != "LW" {
		t.Fatalf("expected preferred position LW, got %q, %v", sess.PreferredPosition, err)
	}
}

func TestKickFreesTheSlot(t *testing.T) {
	r := NewRegistry(2)
	slot, _, _ := r.Join("alice", "a")

	if !r.Kick(slot) {
		t.Fatalf("expected Kick to report a session was removed")
	}
	if _, ok := r.Session(slot); ok {
		t.Fatalf("expected the slot to be empty after a kick")
	}
	if r.Kick(slot) {
		t.Fatalf("expected Kick on an already-empty slot to report false")
	}
}

func TestTailClampsToOldestRetainedCursor(t *testing.T) {
	var log Log
	log.base = 5
	log.Append(Message{Kind: MessageChat, Text: "x"})

	msgs, cursor := log.Tail(0)
	if len(msgs) != 1 {
		t.Fatalf("expected the clamp to still return the one retained message, got %d", len(msgs))
	}
	if cursor != 6 {
		t.Fatalf("expected cursor 6, got %d", cursor)
	}
}
