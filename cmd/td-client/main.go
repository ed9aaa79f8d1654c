package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"towerdefense-vs/internal/client"
	"towerdefense-vs/internal/game"
	"towerdefense-vs/internal/persistence"
)

func main() {
	connect := flag.String("connect", "", "server address for a match, e.g. "+client.DefaultServerAddress+" (single player when empty)")
	mapPath := flag.String("map", persistence.DefaultMapPath, "map asset (JSON)")
	configPath := flag.String("config", "", "game config overrides (JSON), defaults when empty")
	logPath := flag.String("log", "td-client.log", "log file; termbox owns the terminal")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	m, err := persistence.LoadMap(*mapPath)
	if err != nil {
		fatal("Failed to load map: %v", err)
	}
	cfg, err := persistence.LoadGameConfig(*configPath)
	if err != nil {
		fatal("Failed to load game config: %v", err)
	}

	if *connect == "" {
		log.Println("Starting single player")
		lane := game.NewLaneGame(cfg, m)
		ui := client.NewTermboxUI(cfg, m, client.LocalActions{Lane: lane}, false)
		if err := ui.RunSinglePlayer(lane); err != nil {
			fatal("UI error: %v", err)
		}
		return
	}

	c, err := client.DialWithMap(*connect, 5*time.Second, persistence.MapDigest(m))
	if err != nil {
		fatal("Failed to connect: %v", err)
	}
	ui := client.NewTermboxUI(cfg, m, client.RemoteActions{Client: c}, true)
	if err := ui.RunMultiplayer(c); err != nil {
		fatal("UI error: %v", err)
	}
}

// fatal reports to both the log file and the terminal, which termbox has released by now.
func fatal(format string, args ...any) {
	log.Printf(format, args...)
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
