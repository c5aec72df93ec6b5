// Package command parses and dispatches the "/"-prefixed chat command
// surface: operator administration (muting, kicking, banning, score
// and clock overrides, pausing, forcing a faceoff) and the handful of
// self-service commands any connected player may issue regardless of
// admin status.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ehl-hqm/migo-hqm-server/internal/faceoff"
	"github.com/ehl-hqm/migo-hqm-server/internal/match"
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/session"
)

// Registry is the session-registry surface a command handler needs.
// session.Registry satisfies it.
type Registry interface {
	Session(slot int) (*session.Session, bool)
	Find(name string) (*session.Session, bool)
	SetAdmin(slot int, admin bool) error
	SetJoinEnabled(enabled bool)
	SetChatMuted(muted bool)
	SetMuted(slot int, muted bool) error
	SetHand(slot int, hand session.Hand) error
	SetPreferredPosition(slot int, position string) error
	SetTeam(slot int, team model.Team, skater model.ObjectIndex) error
	Ban(identity, address string)
	ClearBans()
	Kick(slot int) bool
}

// Context bundles what a command handler needs to act: the session
// registry, the match it controls, the operator password that grants
// admin on a correct /admin, and the pause flag the server's tick loop
// reads every tick (owned by the caller, not the match controller,
// since the controller is handed a fresh adminPaused value on every
// AfterTick call rather than remembering one itself).
type Context struct {
	Registry      Registry
	Match         *match.Controller
	AdminPassword string
	Paused        *bool

	// ForceSpectator moves a slot to Spec through the caller's
	// despawn-aware path, instead of touching Registry.SetTeam
	// directly and leaving an on-ice object behind.
	ForceSpectator func(slot int)
}

// Command is one parsed "/"-prefixed chat line.
type Command struct {
	Verb string
	Args []string
}

// Parse splits text into a Command if it begins with "/". Verbs are
// case-folded; arguments are not.
func Parse(text string) (Command, bool) {
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{Verb: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

type handlerFunc func(ctx *Context, slot int, args []string) (string, error)

type handler struct {
	fn    handlerFunc
	admin bool
}

var handlers = map[string]handler{
	"enablejoin":   {cmdEnableJoin, true},
	"disablejoin":  {cmdDisableJoin, true},
	"muteplayer":   {cmdMutePlayer, true},
	"unmuteplayer": {cmdUnmutePlayer, true},
	"mutechat":     {cmdMuteChat, true},
	"unmute":       {cmdUnmuteChat, true},
	"fs":           {cmdForceSpectator, true},
	"kick":         {cmdKick, true},
	"ban":          {cmdBan, true},
	"clearbans":    {cmdClearBans, true},
	"set":          {cmdSet, true},
	"sp":           {cmdSetPosition, false},
	"setposition":  {cmdSetPosition, false},
	"admin":        {cmdAdmin, false},
	"faceoff":      {cmdFaceoff, true},
	"resetgame":    {cmdResetGame, true},
	"pause":        {cmdPause, true},
	"unpause":      {cmdUnpause, true},
	"lefty":        {cmdLefty, false},
	"righty":       {cmdRighty, false},
}

// Dispatch parses text as slot's chat line. handled is false if text
// was not a command at all, in which case the caller should fall back
// to treating it as ordinary chat. A recognized but unauthorized or
// malformed command still reports handled=true, with reply holding
// the rejection reason, so the caller never broadcasts it as chat.
func Dispatch(ctx *Context, slot int, text string) (reply string, handled bool) {
	cmd, ok := Parse(text)
	if !ok {
		return "", false
	}

	h, ok := handlers[cmd.Verb]
	if !ok {
		return fmt.Sprintf("Unknown command /%s", cmd.Verb), true
	}

	if h.admin {
		sess, ok := ctx.Registry.Session(slot)
		if !ok || !sess.Admin {
			return "Not authorized", true
		}
	}

	out, err := h.fn(ctx, slot, cmd.Args)
	if err != nil {
		return err.Error(), true
	}
	return out, true
}

func cmdEnableJoin(ctx *Context, slot int, args []string) (string, error) {
	ctx.Registry.SetJoinEnabled(true)
	return "Joining enabled", nil
}

func cmdDisableJoin(ctx *Context, slot int, args []string) (string, error) {
	ctx.Registry.SetJoinEnabled(false)
	return "Joining disabled", nil
}

func cmdMutePlayer(ctx *Context, slot int, args []string) (string, error) {
	target, err := requireTarget(ctx, args)
	if err != nil {
		return "", err
	}
	if err := ctx.Registry.SetMuted(target.Slot, true); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s muted", target.Identity), nil
}

func cmdUnmutePlayer(ctx *Context, slot int, args []string) (string, error) {
	target, err := requireTarget(ctx, args)
	if err != nil {
		return "", err
	}
	if err := ctx.Registry.SetMuted(target.Slot, false); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s unmuted", target.Identity), nil
}

func cmdMuteChat(ctx *Context, slot int, args []string) (string, error) {
	ctx.Registry.SetChatMuted(true)
	return "Chat muted", nil
}

func cmdUnmuteChat(ctx *Context, slot int, args []string) (string, error) {
	ctx.Registry.SetChatMuted(false)
	return "Chat unmuted", nil
}

func cmdForceSpectator(ctx *Context, slot int, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("usage: /fs <slot>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid slot %q", args[0])
	}
	ctx.ForceSpectator(n)
	return "Moved to spectators", nil
}

func cmdKick(ctx *Context, slot int, args []string) (string, error) {
	target, err := requireTarget(ctx, args)
	if err != nil {
		return "", err
	}
	ctx.Registry.Kick(target.Slot)
	return fmt.Sprintf("%s kicked", target.Identity), nil
}

func cmdBan(ctx *Context, slot int, args []string) (string, error) {
	target, err := requireTarget(ctx, args)
	if err != nil {
		return "", err
	}
	ctx.Registry.Ban(target.Identity, target.Address)
	ctx.Registry.Kick(target.Slot)
	return fmt.Sprintf("%s banned", target.Identity), nil
}

func cmdClearBans(ctx *Context, slot int, args []string) (string, error) {
	ctx.Registry.ClearBans()
	return "Ban list cleared", nil
}

func cmdSet(ctx *Context, slot int, args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("usage: /set redscore|bluescore|period|clock|hand <value>")
	}
	switch args[0] {
	case "redscore":
		n, err := parseUint32(args[1])
		if err != nil {
			return "", err
		}
		ctx.Match.RedScore = n
		return "Red score set", nil
	case "bluescore":
		n, err := parseUint32(args[1])
		if err != nil {
			return "", err
		}
		ctx.Match.BlueScore = n
		return "Blue score set", nil
	case "period":
		n, err := parseUint32(args[1])
		if err != nil {
			return "", err
		}
		ctx.Match.Clock.Period = n
		return "Period set", nil
	case "clock":
		centiseconds, err := parseClock(args[1])
		if err != nil {
			return "", err
		}
		ctx.Match.Clock.Time = centiseconds
		return "Clock set", nil
	case "hand":
		hand, err := parseHand(args[1])
		if err != nil {
			return "", err
		}
		if err := ctx.Registry.SetHand(slot, hand); err != nil {
			return "", err
		}
		return "Hand set", nil
	default:
		return "", fmt.Errorf("unknown /set target %q", args[0])
	}
}

func cmdSetPosition(ctx *Context, slot int, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("usage: /sp <position>")
	}
	pos := strings.ToUpper(args[0])
	if !validPosition(pos) {
		return "", fmt.Errorf("unknown position %q", args[0])
	}
	if err := ctx.Registry.SetPreferredPosition(slot, pos); err != nil {
		return "", err
	}
	return fmt.Sprintf("Preferred position set to %s", pos), nil
}

func cmdAdmin(ctx *Context, slot int, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("usage: /admin <password>")
	}
	if ctx.AdminPassword == "" || args[0] != ctx.AdminPassword {
		return "", fmt.Errorf("wrong password")
	}
	if err := ctx.Registry.SetAdmin(slot, true); err != nil {
		return "", err
	}
	return "Admin granted", nil
}

func cmdFaceoff(ctx *Context, slot int, args []string) (string, error) {
	ctx.Match.Clock.NextFaceoffSpot = model.CenterSpot()
	ctx.Match.Clock.PauseTimer = 1
	return "Faceoff forced", nil
}

func cmdResetGame(ctx *Context, slot int, args []string) (string, error) {
	ctx.Match.Reset()
	return "Game reset", nil
}

func cmdPause(ctx *Context, slot int, args []string) (string, error) {
	if ctx.Paused == nil {
		return "", fmt.Errorf("pausing is not available")
	}
	*ctx.Paused = true
	return "Game paused", nil
}

func cmdUnpause(ctx *Context, slot int, args []string) (string, error) {
	if ctx.Paused == nil {
		return "", fmt.Errorf("pausing is not available")
	}
	*ctx.Paused = false
	return "Game unpaused", nil
}

func cmdLefty(ctx *Context, slot int, args []string) (string, error) {
	if err := ctx.Registry.SetHand(slot, session.HandLeft); err != nil {
		return "", err
	}
	return "Now shooting left", nil
}

func cmdRighty(ctx *Context, slot int, args []string) (string, error) {
	if err := ctx.Registry.SetHand(slot, session.HandRight); err != nil {
		return "", err
	}
	return "Now shooting right", nil
}

func requireTarget(ctx *Context, args []string) (*session.Session, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: <command> <name>")
	}
	target, ok := ctx.Registry.Find(args[0])
	if !ok {
		return nil, fmt.Errorf("no such player %q", args[0])
	}
	return target, nil
}

func validPosition(pos string) bool {
	for _, p := range faceoff.AllowedPositions {
		if p == pos {
			return true
		}
	}
	return false
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return uint32(n), nil
}

func parseHand(s string) (session.Hand, error) {
	switch s {
	case "left":
		return session.HandLeft, nil
	case "right":
		return session.HandRight, nil
	default:
		return 0, fmt.Errorf("unknown hand %q", s)
	}
}

// parseClock parses an MM:SS clock override into centiseconds, the
// tick clock's native unit.
func parseClock(s string) (uint32, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("usage: /set clock MM:SS")
	}
	minutes, err1 := strconv.ParseUint(parts[0], 10, 32)
	seconds, err2 := strconv.ParseUint(parts[1], 10, 32)
	if err1 != nil || err2 != nil || seconds >= 60 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return uint32(minutes*60+seconds) * 100, nil
}
