// Command quill is the terminal client. With no arguments it opens the
// board; "quill export [file]" writes the collection as YAML.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"quill/internal/config"
	"quill/internal/db"
	"quill/internal/logger"
	"quill/internal/services"
	"quill/internal/tui"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "quill: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Log lines would tear the alt screen, so they go to a file.
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = "quill-tui.log"
	}
	if err := logger.Init(cfg.LogLevel, logFile); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	kv, closeKV, err := db.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeKV()

	board, err := services.NewBoard(
		services.NewPostStore(kv),
		services.NewVoteLedger(kv),
		services.NewDataURIEncoder(),
		cfg.SiteURL,
	)
	if err != nil {
		return err
	}
	board.Open(ctx)

	if len(args) > 0 {
		switch args[0] {
		case "export":
			return export(board, args[1:])
		default:
			return fmt.Errorf("unknown command %q (usage: quill [export [file]])", args[0])
		}
	}

	sess := services.NewSession(board, services.ClipboardFunc(clipboard.WriteAll))
	p := tea.NewProgram(tui.NewApp(ctx, sess), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func export(board *services.Board, args []string) error {
	var out io.Writer = os.Stdout
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return board.ExportYAML(out)
}
