package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"estatedash/internal/config"
	"estatedash/internal/content"
	"estatedash/internal/geometry"
	"estatedash/internal/kv"
	"estatedash/internal/panelstate"
	"estatedash/internal/telemetry"
	"estatedash/internal/ui"
	"estatedash/internal/workspace"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default ~/.config/estatedash/config.toml)")
	listState := flag.Bool("list-state", false, "print persisted panel ids and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: estatedash [flags]\n\n")
		fmt.Fprintf(os.Stderr, "estatedash is a multi-panel real estate workspace for the terminal.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		config.Exitf("estatedash: %v", err)
	}
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		config.Exitf("estatedash: create data dir: %v", err)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		config.Exitf("estatedash: %v", err)
	}
	defer closeStore()

	if *listState {
		printState(os.Stdout, panelstate.NewStore(store, cfg.Workspace.Name))
		return
	}

	if err := run(cfg, store); err != nil {
		closeStore()
		config.Exitf("estatedash: %v", err)
	}
}

func run(cfg config.Config, store kv.Store) error {
	logFile, err := tea.LogToFile(cfg.LogPath(), "estatedash")
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()

	ctx := context.Background()
	tracer, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracer.Shutdown(shutdownCtx)
	}()

	ws, err := workspace.New(workspace.Options{
		Name:          cfg.Workspace.Name,
		Store:         store,
		DefaultLayout: cfg.LayoutType(),
		Persist:       cfg.Workspace.Persist,
		Tracer:        tracer,
	})
	if err != nil {
		return err
	}
	defer ws.Close()

	rows, err := content.SampleData()
	if err != nil {
		return err
	}
	ws.InitContent(content.Resolvers(content.Deps{
		Events:  ws,
		Bus:     ws.Bus,
		Filters: ws.Filters,
		Data:    rows,
	}))

	app := ui.NewAppModel(ws, ui.Options{
		Name:      cfg.Workspace.Name,
		ExportDir: filepath.Join(cfg.Storage.DataDir, "layouts"),
		MinPanelSize: geometry.Size{
			Width:  float64(cfg.Workspace.MinPanelWidth),
			Height: float64(cfg.Workspace.MinPanelHeight),
		},
	})
	defer app.Close()

	p := tea.NewProgram(app.AsTeaModel(), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// openStore opens the configured storage backend. The returned func releases it.
func openStore(cfg config.Config) (kv.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		s, err := kv.OpenSQLite(cfg.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.BackendMemory:
		return kv.NewMemory(), func() {}, nil
	default:
		s, err := kv.NewFileStore(filepath.Join(cfg.Storage.DataDir, "state"))
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}

func printState(w io.Writer, states *panelstate.Store) {
	for _, scope := range []struct {
		name   string
		global bool
	}{{"workspace", false}, {"global", true}} {
		ids := states.PanelIDs(scope.global)
		fmt.Fprintf(w, "%s (%d)\n", scope.name, len(ids))
		for _, id := range ids {
			rec, ok := states.Load(id, scope.global)
			if !ok {
				continue
			}
			fmt.Fprintf(w, "  %-20s %-10s v%d  %s\n", id, rec.ContentType, rec.Version, rec.LastUpdated.Format(time.RFC3339))
		}
	}
}
