package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ehl-hqm/migo-hqm-server/internal/command"
	"github.com/ehl-hqm/migo-hqm-server/internal/config"
	"github.com/ehl-hqm/migo-hqm-server/internal/match"
	"github.com/ehl-hqm/migo-hqm-server/internal/master"
	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/rink"
	"github.com/ehl-hqm/migo-hqm-server/internal/session"
	"github.com/ehl-hqm/migo-hqm-server/internal/spectate"
	"github.com/ehl-hqm/migo-hqm-server/internal/wire"
)

// tickInterval is the clock's 100Hz cadence.
const tickInterval = 10 * time.Millisecond

// Debug is this package's own diagnostic logger, discarded by default.
var Debug = log.New(io.Discard, "[server] ", log.Ltime)

const inboundQueue = 256

type datagram struct {
	addr *net.UDPAddr
	data []byte
}

// Server owns the UDP socket and runs the single-threaded per-tick
// actor loop binding the session registry, the match controller and
// this package's World together. The socket reader feeds a channel,
// and one goroutine drains both that channel and a tick timer, the
// same select-on-moves-or-timer shape as a single two-player game
// loop, generalized to an always-on arena serving every connected
// slot.
type Server struct {
	conf *config.Conf

	conn *net.UDPConn

	registry *session.Registry
	mc       *match.Controller
	world    *World

	cmdCtx      *command.Context
	adminPaused bool

	addrs     map[int]*net.UDPAddr
	slotByKey map[string]int
	versions  map[int]wire.ClientVersion
	inputs    map[int]wire.PlayerInput

	spectateSrv *spectate.Server
	masterSrv   *master.Notifier
}

// New builds a Server from a resolved configuration. It does not open
// the UDP socket; call Run for that.
func New(conf *config.Conf) (*Server, error) {
	matchCfg, err := conf.Match.Resolve()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	registry := session.NewRegistry(int(conf.Network.MaxPlayers))
	mc := match.NewController(matchCfg)

	s := &Server{
		conf:      conf,
		registry:  registry,
		mc:        mc,
		world:     NewWorld(rink.DefaultDimensions, registry.TeamRoster),
		addrs:     map[int]*net.UDPAddr{},
		slotByKey: map[string]int{},
		versions:  map[int]wire.ClientVersion{},
		inputs:    map[int]wire.PlayerInput{},
	}
	s.cmdCtx = &command.Context{
		Registry:      registry,
		Match:         mc,
		AdminPassword: conf.Network.Password,
		Paused:        &s.adminPaused,
		ForceSpectator: func(slot int) {
			s.setTeam(slot, model.Spec)
		},
	}

	if conf.Spectate.Enabled {
		s.spectateSrv = spectate.NewServer()
	}
	notifier, err := master.New(conf.Master)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.masterSrv = notifier

	return s, nil
}

// Run opens the UDP listener and blocks until ctx is cancelled or a
// subsystem fails. The master-server advertiser and the spectator
// websocket mirror run as detached goroutines outside the errgroup,
// each independently started and torn down: neither is allowed to
// bring gameplay down if it fails.
func (s *Server) Run(ctx context.Context) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(s.conf.Network.Port)})
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.conn = conn

	g, ctx := errgroup.WithContext(ctx)
	inbound := make(chan datagram, inboundQueue)

	g.Go(func() error {
		<-ctx.Done()
		return conn.Close()
	})
	g.Go(func() error { return s.readLoop(conn, inbound) })
	g.Go(func() error { return s.actorLoop(ctx, inbound) })

	if s.masterSrv != nil {
		go s.masterSrv.Run(ctx)
	}
	if s.spectateSrv != nil {
		go func() {
			if err := s.spectateSrv.ListenAndServe(s.conf.Spectate.Port); err != nil {
				Debug.Printf("spectate listener stopped: %s", err)
			}
		}()
	}

	return g.Wait()
}

// readLoop forwards every datagram off the socket onto inbound until
// the connection closes (which Run's context-watcher goroutine does on
// cancellation).
func (s *Server) readLoop(conn *net.UDPConn, inbound chan<- datagram) error {
	buf := make([]byte, 4096)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if isClosed(err) {
				return nil
			}
			return err
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case inbound <- datagram{addr: addr, data: data}:
		default:
			Debug.Printf("dropping datagram from %s: inbound queue full", addr)
		}
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

// actorLoop is the single-threaded owner of every piece of mutable
// server state: it alternates between draining arrived datagrams and
// advancing the tick clock, so nothing here needs its own locking.
func (s *Server) actorLoop(ctx context.Context, inbound <-chan datagram) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case dg := <-inbound:
			s.handleDatagram(dg)
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Server) handleDatagram(dg datagram) {
	cmd, body, err := wire.ReadFrame(dg.data)
	if err != nil {
		return
	}

	switch cmd {
	case wire.CmdRequestInfo:
		s.handleInfoRequest(dg.addr, body)
	case wire.CmdJoin:
		s.handleJoin(dg.addr, body)
	case wire.CmdExit:
		s.handleExit(dg.addr)
	default:
		if version, ok := wire.ClientVersionForCommand(cmd); ok {
			s.handlePlayerUpdate(dg.addr, version, body)
		}
	}
}

func (s *Server) handleInfoRequest(addr *net.UDPAddr, body *wire.BitReader) {
	req, err := wire.DecodeInfoRequest(body)
	if err != nil {
		return
	}
	reply := wire.EncodeInfoReply(wire.InfoReply{
		Ping:        req.Ping,
		PlayerCount: uint8(s.connectedCount()),
		TeamMax:     uint8(s.conf.Network.MaxPlayers),
		ServerName:  s.conf.Network.ServerName,
	})
	s.conn.WriteToUDP(reply, addr)
}

func (s *Server) connectedCount() int {
	n := 0
	for i := 0; i < s.registry.Capacity(); i++ {
		if _, ok := s.registry.Session(i); ok {
			n++
		}
	}
	return n
}

func (s *Server) handleJoin(addr *net.UDPAddr, body *wire.BitReader) {
	req, err := wire.DecodeJoinRequest(body)
	if err != nil || req.Version != wire.ProtocolVersion {
		return
	}

	slot, _, err := s.registry.Join(req.Name, addr.String())
	if err != nil {
		Debug.Printf("join refused for %s: %s", req.Name, err)
		return
	}
	s.addrs[slot] = addr
	s.slotByKey[addr.String()] = slot
}

func (s *Server) handleExit(addr *net.UDPAddr) {
	slot, ok := s.slotByKey[addr.String()]
	if !ok {
		return
	}
	s.dropSlot(slot)
}

func (s *Server) handlePlayerUpdate(addr *net.UDPAddr, version wire.ClientVersion, body *wire.BitReader) {
	slot, ok := s.slotByKey[addr.String()]
	if !ok {
		return
	}
	sess, ok := s.registry.Session(slot)
	if !ok {
		return
	}

	upd, err := wire.DecodePlayerUpdate(version, body)
	if err != nil {
		return
	}
	if !wire.PacketAccepted(sess.PacketIndex, upd.PacketIndex) {
		return
	}

	sess.PacketIndex = upd.PacketIndex
	sess.MessageCursor = uint32(upd.MessageCursor)
	sess.LastGameID = upd.GameID
	s.versions[slot] = version
	s.inputs[slot] = upd.Input
	s.registry.Touch(slot)

	if upd.HasChat {
		s.dispatchChat(slot, upd.Chat)
	}
}

func (s *Server) dispatchChat(slot int, text string) {
	if reply, handled := command.Dispatch(s.cmdCtx, slot, text); handled {
		if reply != "" {
			s.registry.Chat(reply)
		}
		return
	}
	s.registry.HandleChat(slot, text)
}

// setTeam spawns or despawns a world object alongside the registry's
// own bookkeeping, keeping the two in lockstep.
func (s *Server) setTeam(slot int, team model.Team) error {
	if team == model.Spec {
		if sess, ok := s.registry.Session(slot); ok && sess.HasSkater {
			s.world.Despawn(model.PlayerID(slot))
		}
		return s.registry.SetTeam(slot, model.Spec, 0)
	}
	obj, ok := s.world.Spawn(model.PlayerID(slot))
	if !ok {
		return fmt.Errorf("server: no object slot available for slot %d", slot)
	}
	return s.registry.SetTeam(slot, team, obj)
}

// moveTeamsFromInput lets a spectator's join-red/join-blue keys and a
// skater's spectate key drive their own team membership once per
// tick, the same per-tick pass the original game ran to decide who
// gets a skater before the simulation step: a team already at its cap
// simply ignores the request rather than erroring it back to anyone.
func (s *Server) moveTeamsFromInput() {
	var redCount, blueCount int
	for slot := 0; slot < s.registry.Capacity(); slot++ {
		if sess, ok := s.registry.Session(slot); ok {
			switch sess.Team {
			case model.Red:
				redCount++
			case model.Blue:
				blueCount++
			}
		}
	}
	teamCap := int(s.conf.Network.MaxPlayers) / 2

	for slot := 0; slot < s.registry.Capacity(); slot++ {
		sess, ok := s.registry.Session(slot)
		if !ok {
			continue
		}
		in, ok := s.inputs[slot]
		if !ok {
			continue
		}

		switch {
		case sess.Team == model.Spec && sess.TeamSwitchCooldown == 0 &&
			(in.Keys&wire.KeyJoinRed != 0 || in.Keys&wire.KeyJoinBlue != 0):
			team := model.Blue
			count := blueCount
			if in.Keys&wire.KeyJoinRed != 0 {
				team, count = model.Red, redCount
			}
			if count >= teamCap {
				continue
			}
			if s.setTeam(slot, team) == nil {
				if team == model.Red {
					redCount++
				} else {
					blueCount++
				}
			}
		case sess.Team != model.Spec && in.Keys&wire.KeySpectate != 0:
			wasRed := sess.Team == model.Red
			if s.setTeam(slot, model.Spec) == nil {
				if wasRed {
					redCount--
				} else {
					blueCount--
				}
			}
		}
	}
}

func (s *Server) dropSlot(slot int) {
	if sess, ok := s.registry.Session(slot); ok && sess.HasSkater {
		s.world.Despawn(model.PlayerID(slot))
	}
	s.registry.Leave(slot)
	if addr, ok := s.addrs[slot]; ok {
		delete(s.slotByKey, addr.String())
	}
	delete(s.addrs, slot)
	delete(s.versions, slot)
	delete(s.inputs, slot)
}

// tick runs one 10ms step: inactivity bookkeeping, the world's
// placeholder kinematics, the match controller's rule dispatch, and
// the outbound snapshot fan-out.
func (s *Server) tick() {
	for _, slot := range s.registry.Tick() {
		s.dropSlot(slot)
	}

	s.moveTeamsFromInput()

	byPlayer := make(map[model.PlayerID]wire.PlayerInput, len(s.inputs))
	for slot, in := range s.inputs {
		byPlayer[model.PlayerID(slot)] = in
	}

	events := s.world.Tick(tickInterval.Seconds(), byPlayer, uint32(s.mc.Clock.CurrentStep))
	s.mc.AfterTick(events, s.world, s.registry, s.registry, s.adminPaused)

	s.broadcastSnapshots()

	if s.spectateSrv != nil {
		s.spectateSrv.Broadcast(s.mc.Snapshot(s.adminPaused), spectate.Roster(s.registry))
	}
}

func (s *Server) broadcastSnapshots() {
	state := s.mc.Snapshot(s.adminPaused)
	objects := s.world.Objects()
	gameID := gameIDWire(s.mc.GameID)

	for slot := 0; slot < s.registry.Capacity(); slot++ {
		sess, ok := s.registry.Session(slot)
		if !ok {
			continue
		}
		addr, ok := s.addrs[slot]
		if !ok {
			continue
		}
		version := s.versions[slot]

		if sess.LastGameID != gameID {
			s.conn.WriteToUDP(wire.GameIDMismatchFrame(gameID), addr)
			continue
		}

		tail, cursor := s.registry.Tail(sess.MessageCursor)
		snap := wire.Snapshot{
			GameID:          gameID,
			GameStep:        uint32(state.GameStep),
			GameOver:        state.GameOver,
			RedScore:        uint8(state.RedScore),
			BlueScore:       uint8(state.BlueScore),
			Time:            uint16(state.Time),
			GoalTimer:       uint16(state.GoalMessageTimer),
			Period:          uint8(state.Period),
			OwnSlot:         uint8(slot),
			DeltaTime:       1,
			Rules:           wire.RulesBits(state.Rules),
			WorldPacket:     uint32(state.GameStep),
			LastAckedPacket: sess.PacketIndex,
			Objects:         objects,
			MessageCursor:   cursor,
			Messages:        tail,
		}
		s.conn.WriteToUDP(wire.EncodeSnapshot(version, snap), addr)
	}
}

// gameIDWire truncates a GameID down to the 32-bit field the wire
// protocol has room for. Clients only ever compare this value for
// equality against what they were last sent, so a truncation collision
// only costs an unnecessary resync, never a correctness bug.
func gameIDWire(id [16]byte) uint32 {
	return uint32(id[0]) | uint32(id[1])<<8 | uint32(id[2])<<16 | uint32(id[3])<<24
}
