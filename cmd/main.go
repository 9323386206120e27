// FilePath: cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"

	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"

	"github.com/vitaltrack/pulsehub/internal/config"
	"github.com/vitaltrack/pulsehub/internal/server"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting PulseHub Server v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"    ____        __           __  __      __  ",
		"   / __ \\__  __/ /_______   / / / /_  __/ /_ ",
		"  / /_/ / / / / / ___/ _ \\ / /_/ / / / / __ \\",
		" / ____/ /_/ / (__  )  __// __  / /_/ / /_/ /",
		"/_/    \\__,_/_/____/\\___//_/ /_/\\__,_/_.___/ ",
		"..........................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
