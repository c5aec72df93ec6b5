// Package faceoff resolves a faceoff spot and a team's roster into
// concrete on-ice placements: which named position each player lines
// up in, and where that position sits on the rink for the given spot.
package faceoff

import "github.com/ehl-hqm/migo-hqm-server/internal/model"

// AllowedPositions is the pool of named starting positions a player
// can be assigned at a faceoff, in preference order for the fallback
// passes of assignRoster.
var AllowedPositions = []string{
	"C", "LW", "RW", "LD", "RD", "G", "LM", "RM", "LLM", "RRM", "LLD", "RRD",
	"CM", "CD", "LW2", "RW2", "LLW", "RRW",
}

// RosterEntry is one team's player as seen by the position assignment
// algorithm: an identity and an optional preferred position carried
// over from the session's last `/sp` or `/setposition` command.
type RosterEntry struct {
	Player    model.PlayerID
	Preferred string // "" if the player has no preference on record
}

// assignRoster runs the two-round preference assignment for a single
// team's roster, returning the chosen position name keyed by player.
func assignRoster(roster []RosterEntry) map[model.PlayerID]string {
	assigned := make(map[model.PlayerID]string, len(roster))
	available := append([]string(nil), AllowedPositions...)

	remove := func(pos string) (string, bool) {
		for i, p := range available {
			if p == pos {
				available = append(available[:i], available[i+1:]...)
				return p, true
			}
		}
		return "", false
	}

	// Round 1: honor each player's preference while it is still free.
	for _, r := range roster {
		if r.Preferred == "" {
			continue
		}
		if pos, ok := remove(r.Preferred); ok {
			assigned[r.Player] = pos
		}
	}

	// Round 2: everyone still unassigned gets C if free, else any
	// remaining slot, else (the pool is exhausted) their own preferred
	// position again or C as a last resort.
	for _, r := range roster {
		if _, ok := assigned[r.Player]; ok {
			continue
		}
		if pos, ok := remove("C"); ok {
			assigned[r.Player] = pos
			continue
		}
		if len(available) > 0 {
			pos := available[0]
			available = available[1:]
			assigned[r.Player] = pos
			continue
		}
		if r.Preferred != "" {
			assigned[r.Player] = r.Preferred
		} else {
			assigned[r.Player] = "C"
		}
	}

	// Post-pass: if C never got claimed (round 1 gave every player a
	// non-C preference, so round 2 had nobody left to place), hand it to
	// the first non-goalie player in roster order, or to the first
	// player when everyone is in G.
	if _, cRemoved := remove("C"); cRemoved {
		var changeTo model.PlayerID
		found := false
		for _, r := range roster {
			if !found {
				changeTo = r.Player
				found = true
			}
			if assigned[r.Player] != "G" {
				changeTo = r.Player
				break
			}
		}
		if found {
			assigned[changeTo] = "C"
		}
	}

	return assigned
}
