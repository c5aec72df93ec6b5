// Package master implements the optional master-server advertisement:
// a periodic UDP heartbeat telling a master-server list this server is
// alive, entirely decoupled from the match itself.
package master

import (
	"context"
	"io"
	"log"
	"net"
	"time"

	"github.com/ehl-hqm/migo-hqm-server/internal/config"
)

// Magic is the datagram a server advertises itself with.
var Magic = []byte("Hock ")

// Debug is this package's own diagnostic logger, discarded by
// default.
var Debug = log.New(io.Discard, "[master] ", log.Ltime)

// defaultInterval is used if the configured interval is zero, so a
// stale config file written before interval_seconds existed still
// advertises at a sane cadence.
const defaultInterval = 2 * time.Second

// Notifier periodically advertises this server to a master-server
// list over UDP. A nil *Notifier is a valid, inert value: Run on a nil
// receiver returns immediately, so the caller can always start it as a
// detached goroutine regardless of whether advertising is configured.
type Notifier struct {
	conf config.MasterConf
	conn net.Conn
}

// New dials conf.Address if advertising is enabled, returning a nil
// Notifier (and a nil error) when it is not. The dial happens here,
// not in Run, so a misconfigured address surfaces at startup rather
// than being silently retried forever by a background goroutine
// nobody is watching.
func New(conf config.MasterConf) (*Notifier, error) {
	if !conf.Enabled || conf.Address == "" {
		return nil, nil
	}
	conn, err := net.Dial("udp", conf.Address)
	if err != nil {
		return nil, err
	}
	return &Notifier{conf: conf, conn: conn}, nil
}

// Run sends Magic every conf.IntervalSeconds until ctx is canceled.
// It is meant to be started as a detached background task: unlike the
// rest of the server's goroutine group, its failure must never tear
// down the match, so a write error is logged and Run keeps ticking
// rather than returning it.
func (n *Notifier) Run(ctx context.Context) error {
	if n == nil {
		return nil
	}
	defer n.conn.Close()

	interval := time.Duration(n.conf.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := n.conn.Write(Magic); err != nil {
				Debug.Printf("advertise: %s", err)
			}
		}
	}
}
