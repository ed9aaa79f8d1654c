package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"towerdefense-vs/internal/persistence"
	"towerdefense-vs/internal/server"
)

func main() {
	addr := flag.String("addr", server.DefaultListenAddress, "listen address")
	mapPath := flag.String("map", persistence.DefaultMapPath, "map asset (JSON)")
	configPath := flag.String("config", "", "game config overrides (JSON), defaults when empty")
	flag.Parse()

	m, err := persistence.LoadMap(*mapPath)
	if err != nil {
		log.Fatalf("Failed to load map: %v", err)
	}
	cfg, err := persistence.LoadGameConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load game config: %v", err)
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Address = *addr
	srv := server.New(srvCfg, cfg, m)
	if err := srv.Listen(); err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	log.Printf("Server listening on %s (map %s, digest %.12s)", srv.Addr(), *mapPath, persistence.MapDigest(m))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("Shutting down...")
		srv.Stop()
	}()

	if err := srv.Run(); err != nil {
		if errors.Is(err, server.ErrStopped) {
			log.Println("Server stopped before the match started")
			return
		}
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Match finished, server exiting")
}
