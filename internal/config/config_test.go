package config

import (
	"testing"

	"github.com/ehl-hqm/migo-hqm-server/internal/model"
)

func TestDefaultResolvesCleanly(t *testing.T) {
	cfg, err := Default.Match.Resolve()
	if err != nil {
		t.Fatalf("unexpected error resolving default config: %v", err)
	}
	if cfg.PeriodLength != Default.Match.PeriodLengthSeconds*100 {
		t.Fatalf("expected period length in centiseconds, got %d", cfg.PeriodLength)
	}
	if cfg.Icing != model.IcingTouch {
		t.Fatalf("expected default icing mode Touch, got %v", cfg.Icing)
	}
	if cfg.OffsideLine != model.OffsideLineOffensiveBlue {
		t.Fatalf("expected default offside line OffensiveBlue, got %v", cfg.OffsideLine)
	}
	if cfg.Units != model.UnitKMH {
		t.Fatalf("expected default units km/h, got %v", cfg.Units)
	}
}

func TestResolveRejectsUnknownEnum(t *testing.T) {
	m := Default.Match
	m.Icing = "sideways"
	if _, err := m.Resolve(); err == nil {
		t.Fatalf("expected an error for an unrecognized icing mode")
	}
}

func TestResolveParsesEveryTwoLineMode(t *testing.T) {
	cases := map[string]model.TwoLineMode{
		"off":       model.TwoLineOff,
		"on":        model.TwoLineOn,
		"forward":   model.TwoLineForward,
		"double":    model.TwoLineDouble,
		"threeline": model.TwoLineThreeLine,
	}
	for raw, want := range cases {
		m := Default.Match
		m.TwoLinePass = raw
		cfg, err := m.Resolve()
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", raw, err)
		}
		if cfg.TwoLine != want {
			t.Fatalf("%q: expected %v, got %v", raw, want, cfg.TwoLine)
		}
	}
}

func TestResolveCarriesPhysicsRawThrough(t *testing.T) {
	m := Default.Match
	m.Physics = map[string]float64{"gravity": 9.81}
	cfg, err := m.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Physics.Raw["gravity"] != 9.81 {
		t.Fatalf("expected physics raw map carried through, got %v", cfg.Physics.Raw)
	}
}

func TestOpenMissingFileErrors(t *testing.T) {
	if _, err := Open("/nonexistent/path/to/server.toml"); err == nil {
		t.Fatalf("expected an error opening a missing config file")
	}
}

func TestDefaultMasterIntervalIsTwoSeconds(t *testing.T) {
	if Default.Master.IntervalSeconds != 2 {
		t.Fatalf("expected a 2s default advertisement interval, got %d", Default.Master.IntervalSeconds)
	}
}
