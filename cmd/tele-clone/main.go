// Command tele-clone is a terminal client for the tele-clone gateway. It
// links a Telegram account through the gateway's websocket API, browses
// dialogs and messages, and tracks media downloads.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tombx666-max/tele-clone-frontend/pkg/client"
	"github.com/tombx666-max/tele-clone-frontend/pkg/ui"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "~/.teleclone/config.toml", "path to config file")
	serverURL := flag.String("server", "", "gateway websocket URL (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tele-clone %s\n", version)
		return
	}

	if err := run(*configPath, *serverURL); err != nil {
		fmt.Fprintf(os.Stderr, "tele-clone: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, serverOverride string) error {
	config, err := client.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if serverOverride != "" {
		config.Gateway.URL = serverOverride
	}

	logger, err := openLogger(config.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	statePath, err := client.ExpandPath(config.Storage.StatePath)
	if err != nil {
		return err
	}
	state, err := client.OpenState(statePath)
	if err != nil {
		return err
	}
	defer state.Close()

	conn, err := client.NewConnection(config.Gateway.URL, state)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetLogger(zap.NewStdLog(logger.Named("conn")))

	session := client.NewSession()
	auth := client.NewAuthMachine(session, state)
	dialogs := client.NewDialogStore()
	messages := client.NewMessageStore()
	downloads := client.NewDownloadTracker()
	dispatcher := client.NewDispatcher(conn, session, auth, dialogs, messages, downloads, logger)

	if config.Downloads.Notify {
		dispatcher.SetNotifyFunc(func(entry client.DownloadEntry) {
			if err := beeep.Notify("Download complete", entry.Filename, ""); err != nil {
				logger.Debug("desktop notification failed", zap.Error(err))
			}
		})
	}

	if config.Debug.MetricsPort > 0 {
		srv := client.ServeDebugMetrics(config.Debug.MetricsPort, conn)
		defer srv.Close()
		logger.Info("debug metrics enabled", zap.Int("port", config.Debug.MetricsPort))
	}

	logger.Info("starting",
		zap.String("version", version),
		zap.String("gateway", config.Gateway.URL))

	if err := dispatcher.Connect(); err != nil {
		// The UI still starts; it shows the connection error.
		logger.Warn("initial connect failed", zap.Error(err))
	} else {
		state.SetLastServer(config.Gateway.URL)
	}

	model := ui.NewModel(conn, dispatcher, session, dialogs, messages, downloads, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

// openLogger builds a file-backed zap logger. Logging to stdout would corrupt
// the TUI, so everything goes to the configured file.
func openLogger(cfg client.LoggingSection) (*zap.Logger, error) {
	path, err := client.ExpandPath(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return logger, nil
}
