// Package config loads the server's TOML configuration file and
// translates its human-friendly units (seconds, named enums) into the
// centiseconds and typed constants the rest of the server works in.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ehl-hqm/migo-hqm-server/internal/model"
)

// NetworkConf controls the UDP listener and session limits.
type NetworkConf struct {
	Port         uint   `toml:"port"`
	MaxPlayers   uint   `toml:"max_players"`
	ServerName   string `toml:"server_name"`
	Password     string `toml:"password"`
	PublicAccess bool   `toml:"public"`
}

// MatchConf is the human-editable ruleset; Resolve converts it into a
// model.MatchConfig with seconds turned into centiseconds and string
// enums parsed into their typed constants.
type MatchConf struct {
	Periods             uint32             `toml:"periods"`
	PeriodLengthSeconds uint32             `toml:"period_length_seconds"`
	WarmupSeconds       uint32             `toml:"warmup_seconds"`
	BreakSeconds        uint32             `toml:"break_seconds"`
	IntermissionSeconds uint32             `toml:"intermission_seconds"`
	MercyThreshold      uint32             `toml:"mercy_threshold"`
	FirstToThreshold    uint32             `toml:"first_to_threshold"`
	Icing               string             `toml:"icing"`
	Offside             string             `toml:"offside"`
	OffsideLine         string             `toml:"offside_line"`
	TwoLinePass         string             `toml:"two_line_pass"`
	WarmupPucks         uint32             `toml:"warmup_pucks"`
	BlueLineLocation    float64            `toml:"blue_line_location"`
	Units               string             `toml:"units"`
	GoalReplay          bool               `toml:"goal_replay"`
	Physics             map[string]float64 `toml:"physics"`
}

// MasterConf controls advertising this server to a master-server list.
type MasterConf struct {
	Enabled         bool   `toml:"enabled"`
	Address         string `toml:"address"`
	IntervalSeconds uint32 `toml:"interval_seconds"`
}

// SpectateConf controls the optional read-only websocket mirror.
type SpectateConf struct {
	Enabled bool `toml:"enabled"`
	Port    uint `toml:"port"`
}

// Conf is the top-level, file-backed configuration.
type Conf struct {
	Debug    bool         `toml:"debug"`
	Network  NetworkConf  `toml:"network"`
	Match    MatchConf    `toml:"match"`
	Master   MasterConf   `toml:"master"`
	Spectate SpectateConf `toml:"spectate"`

	file string
}

// Default is the configuration used absent a file, and the basis for
// -dump-config.
var Default = Conf{
	Debug: false,
	Network: NetworkConf{
		Port:         27585,
		MaxPlayers:   64,
		ServerName:   "Untitled server",
		PublicAccess: true,
	},
	Match: MatchConf{
		Periods:             3,
		PeriodLengthSeconds: 120,
		WarmupSeconds:       30,
		BreakSeconds:        5,
		IntermissionSeconds: 20,
		MercyThreshold:      0,
		FirstToThreshold:    0,
		Icing:               "touch",
		Offside:             "delayed",
		OffsideLine:         "blue",
		TwoLinePass:         "off",
		WarmupPucks:         1,
		BlueLineLocation:    22.5,
		Units:               "kmh",
		GoalReplay:          true,
	},
	Master: MasterConf{
		Enabled:         false,
		Address:         "",
		IntervalSeconds: 2,
	},
	Spectate: SpectateConf{
		Enabled: false,
		Port:    27586,
	},
}

// Read decodes name's TOML contents into conf, overwriting only the
// keys present in the file.
func Read(name string, conf *Conf) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = toml.NewDecoder(file).Decode(conf)
	conf.file = name
	return err
}

// Open reads name into a fresh copy of Default.
func Open(name string) (*Conf, error) {
	conf := Default
	if err := Read(name, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Resolve translates the human-editable MatchConf into the
// centisecond-and-enum model.MatchConfig the rule machines, clock and
// faceoff resolver consume.
func (m MatchConf) Resolve() (model.MatchConfig, error) {
	icing, err := parseIcing(m.Icing)
	if err != nil {
		return model.MatchConfig{}, err
	}
	offside, err := parseOffside(m.Offside)
	if err != nil {
		return model.MatchConfig{}, err
	}
	line, err := parseOffsideLine(m.OffsideLine)
	if err != nil {
		return model.MatchConfig{}, err
	}
	twoLine, err := parseTwoLine(m.TwoLinePass)
	if err != nil {
		return model.MatchConfig{}, err
	}
	units, err := parseUnits(m.Units)
	if err != nil {
		return model.MatchConfig{}, err
	}

	return model.MatchConfig{
		Periods:            m.Periods,
		PeriodLength:       m.PeriodLengthSeconds * 100,
		WarmupLength:       m.WarmupSeconds * 100,
		BreakLength:        m.BreakSeconds * 100,
		IntermissionLength: m.IntermissionSeconds * 100,
		MercyThreshold:     m.MercyThreshold,
		FirstToThreshold:   m.FirstToThreshold,
		Icing:              icing,
		Offside:            offside,
		OffsideLine:        line,
		TwoLine:            twoLine,
		WarmupPuckCount:    m.WarmupPucks,
		BlueLineLocation:   m.BlueLineLocation,
		Units:              units,
		GoalReplayEnabled:  m.GoalReplay,
		Physics:            model.PhysicsConfig{Raw: m.Physics},
	}, nil
}

func parseIcing(s string) (model.IcingMode, error) {
	switch s {
	case "off":
		return model.IcingOff, nil
	case "touch":
		return model.IcingTouch, nil
	case "notouch":
		return model.IcingNoTouch, nil
	default:
		return 0, fmt.Errorf("config: unknown icing mode %q", s)
	}
}

func parseOffside(s string) (model.OffsideMode, error) {
	switch s {
	case "off":
		return model.OffsideOff, nil
	case "delayed":
		return model.OffsideDelayed, nil
	case "immediate":
		return model.OffsideImmediate, nil
	default:
		return 0, fmt.Errorf("config: unknown offside mode %q", s)
	}
}

func parseOffsideLine(s string) (model.OffsideLine, error) {
	switch s {
	case "blue":
		return model.OffsideLineOffensiveBlue, nil
	case "center":
		return model.OffsideLineCenter, nil
	default:
		return 0, fmt.Errorf("config: unknown offside line %q", s)
	}
}

func parseTwoLine(s string) (model.TwoLineMode, error) {
	switch s {
	case "off":
		return model.TwoLineOff, nil
	case "on":
		return model.TwoLineOn, nil
	case "forward":
		return model.TwoLineForward, nil
	case "double":
		return model.TwoLineDouble, nil
	case "threeline":
		return model.TwoLineThreeLine, nil
	default:
		return 0, fmt.Errorf("config: unknown two-line-pass mode %q", s)
	}
}

func parseUnits(s string) (model.SpeedUnit, error) {
	switch s {
	case "kmh":
		return model.UnitKMH, nil
	case "mph":
		return model.UnitMPH, nil
	default:
		return 0, fmt.Errorf("config: unknown speed unit %q", s)
	}
}
