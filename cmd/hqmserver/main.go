// Command hqmserver runs the UDP game server: it loads a TOML
// configuration file, starts the tick loop, and shuts down cleanly on
// SIGINT/SIGUSR1 the way the original entry point's signal-driven
// restart loop did, generalized here to a single listen/serve cycle
// per process instead of a rebind-on-SIGUSR1 loop.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/toml"

	"github.com/ehl-hqm/migo-hqm-server/internal/config"
	"github.com/ehl-hqm/migo-hqm-server/internal/server"
)

const defaultConfigName = "server.toml"

func main() {
	confFile := flag.String("conf", defaultConfigName, "path to the TOML configuration file")
	dumpConf := flag.Bool("dump-config", false, "print the default configuration and exit")
	flag.Parse()

	if *dumpConf {
		if err := toml.NewEncoder(os.Stdout).Encode(config.Default); err != nil {
			log.Fatal(err)
		}
		return
	}

	conf, err := config.Open(*confFile)
	if err != nil {
		if !os.IsNotExist(err) || *confFile != defaultConfigName {
			log.Fatal(err)
		}
		fallback := config.Default
		conf = &fallback
	}

	if conf.Debug {
		server.Debug.SetOutput(os.Stderr)
	}

	srv, err := server.New(conf)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGUSR1)
	defer stop()

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}
