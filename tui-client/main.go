package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Ualine055/task-mgt-app/internal/apiclient"
	"github.com/Ualine055/task-mgt-app/internal/config"
	"github.com/Ualine055/task-mgt-app/internal/logging"
	"github.com/Ualine055/task-mgt-app/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg := config.LoadClient()
	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		os.Exit(1)
	}

	// the screen belongs to the UI, so diagnostics go to a file or nowhere
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	logger := logging.New(out, logging.Options{
		Level:           cfg.LogLevel,
		Prefix:          "taskapp-tui",
		ReportTimestamp: true,
	})

	client := apiclient.New(cfg.ServerURL,
		apiclient.WithTokenFile(apiclient.NewTokenFile(cfg.TokenPath())))

	app := ui.NewApp(client, logger)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("program exited", "err", err)
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
