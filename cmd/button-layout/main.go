package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mcao2/button-layout/internal/config"
	"github.com/mcao2/button-layout/internal/gate"
	"github.com/mcao2/button-layout/internal/host"
	"github.com/mcao2/button-layout/internal/layout"
	"github.com/mcao2/button-layout/internal/ready"
	"github.com/mcao2/button-layout/internal/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries everything the commands share. Pieces are opened lazily so
// commands like init and pin work without a store or a host.
type app struct {
	configPath string
	catalog    string
	baseURL    string
	activity   string
	logLevel   string

	cfg      *config.Config
	log      *logrus.Logger
	logFile  *os.File
	listener *host.Listener

	store    layout.Store
	closer   io.Closer
	provider host.Provider
	client   *host.Client
}

func main() {
	a := &app{}
	rootCmd := newRootCmd(a)
	err := rootCmd.Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "button-layout",
		Short:         "Reorder, hide and group the action buttons of a media center page",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEditor(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.config/button-layout/config.yaml)")
	flags.StringVar(&a.catalog, "catalog", "", "offline catalog file, used instead of the host bridge")
	flags.StringVar(&a.baseURL, "host", "", "host bridge base URL")
	flags.StringVar(&a.activity, "activity", "", "page whose buttons are laid out")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(editCmd(a))
	rootCmd.AddCommand(showCmd(a))
	rootCmd.AddCommand(hideCmd(a, true))
	rootCmd.AddCommand(hideCmd(a, false))
	rootCmd.AddCommand(moveCmd(a))
	rootCmd.AddCommand(folderCmd(a))
	rootCmd.AddCommand(resetCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(importCmd(a))
	rootCmd.AddCommand(sourcesCmd(a))
	rootCmd.AddCommand(searchCmd(a))
	rootCmd.AddCommand(parentalCmd(a))
	rootCmd.AddCommand(pinCmd(a))
	rootCmd.AddCommand(initCmd(a))

	return rootCmd
}

// setup loads the config, applies flag overrides and builds the logger.
func (a *app) setup() error {
	if a.configPath != "" {
		if err := os.Setenv("BUTTON_LAYOUT_CONFIG", a.configPath); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.catalog != "" {
		cfg.Catalog = a.catalog
	}
	if a.baseURL != "" {
		cfg.Host.BaseURL = a.baseURL
	}
	if a.activity != "" {
		cfg.Activity = a.activity
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		logger.SetOutput(f)
	}
	a.log = logger

	a.listener = host.NewListener()
	return nil
}

// openStore opens the configured store, announcing writes on the listener.
func (a *app) openStore() (layout.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := a.cfg.OpenStore()
	if err != nil {
		return nil, err
	}
	a.closer = store
	a.store = host.NewNotifyingStore(store, a.listener)
	a.log.WithField("backend", a.cfg.Storage.Backend).Debug("store opened")
	return a.store, nil
}

// openProvider connects to the host bridge, or loads the offline catalog
// when no bridge is configured.
func (a *app) openProvider() (host.Provider, error) {
	if a.provider != nil {
		return a.provider, nil
	}

	switch {
	case a.cfg.Host.BaseURL != "":
		client, err := host.NewClient(a.cfg.Host.BaseURL, host.WithToken(a.cfg.Host.Token))
		if err != nil {
			return nil, err
		}
		a.provider = client
		a.client = client
	case a.cfg.Catalog != "":
		catalog, err := host.LoadCatalog(a.cfg.Catalog)
		if err != nil {
			return nil, err
		}
		a.provider = catalog
	default:
		return nil, fmt.Errorf("no host configured: set host.base_url or catalog in %s", configHint())
	}
	return a.provider, nil
}

func configHint() string {
	dir, err := config.GetConfigDir()
	if err != nil {
		return "the config file"
	}
	return dir + "/config.yaml"
}

func (a *app) policy() ready.Policy {
	return ready.Policy{
		Attempts: a.cfg.Host.ReadyAttempts,
		Interval: a.cfg.Host.ReadyInterval,
		Timeout:  a.cfg.Host.ReadyTimeout,
	}
}

// readiness starts waiting for the host in the background. Catalogs are
// ready at once.
func (a *app) readiness(ctx context.Context) (*ready.Future, error) {
	if _, err := a.openProvider(); err != nil {
		return nil, err
	}
	if a.client == nil {
		return ready.Resolved(), nil
	}
	return ready.Start(ctx, a.client.Ping, a.policy()), nil
}

// waitReady blocks until the host answers.
func (a *app) waitReady(ctx context.Context) error {
	if _, err := a.openProvider(); err != nil {
		return err
	}
	if a.client == nil {
		return nil
	}
	return a.client.WaitReady(ctx, a.policy())
}

// openSession waits for the host and announces the configured page as
// rendered; the follower installed by followPages scans it.
func (a *app) openSession(ctx context.Context) (*layout.Session, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	if err := a.waitReady(ctx); err != nil {
		return nil, err
	}

	session := layout.NewSession(store, layout.WithLogger(a.log))
	var scanErr error
	a.followPages(ctx, session, func(err error) { scanErr = err })
	a.listener.Send(host.ChannelFull, host.Event{Type: host.TypeComplete, Activity: a.cfg.Activity})
	if scanErr != nil {
		return nil, scanErr
	}
	return session, nil
}

// followPages rescans session every time the host reports a page of the
// configured activity as complete. Scan failures go to onErr.
func (a *app) followPages(ctx context.Context, session *layout.Session, onErr func(error)) (unfollow func()) {
	return a.listener.Follow(host.ChannelFull, func(e host.Event) {
		if e.Type != host.TypeComplete || e.Activity != a.cfg.Activity {
			return
		}
		log := a.log.WithField("activity", e.Activity)
		buttons, err := a.provider.Buttons(ctx, e.Activity)
		if err == nil {
			_, err = session.Activate(buttons)
		}
		if err != nil {
			log.WithError(err).Warn("page scan failed")
			onErr(err)
			return
		}
		log.WithField("items", len(session.Items())).Debug("page scanned")
	})
}

// openGate builds the PIN gate, locked again whenever the app exits or the
// parental control switch is written.
func (a *app) openGate() (*gate.Gate, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	g, err := gate.New(a.cfg.Parental.PINSHA256, a.cfg.Parental.Enabled,
		gate.WithStore(store), gate.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	g.Follow(a.listener)
	return g, nil
}

func (a *app) runEditor(ctx context.Context) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	provider, err := a.openProvider()
	if err != nil {
		return err
	}
	future, err := a.readiness(ctx)
	if err != nil {
		return err
	}

	// The editor owns the terminal; logs only go to a log file.
	if a.logFile == nil {
		a.log.SetOutput(io.Discard)
	}

	session := layout.NewSession(store, layout.WithLogger(a.log))
	m := ui.NewModel(session, store,
		ui.WithConfig(a.cfg),
		ui.WithProvider(provider),
		ui.WithReady(future),
		ui.WithModelLogger(a.log),
	)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}
	return nil
}

// close announces the exit and releases the store and log file.
func (a *app) close() {
	if a.listener != nil {
		a.listener.Send(host.ChannelApp, host.Event{Type: host.TypeExit})
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil && a.log != nil {
			a.log.WithError(err).Warn("failed to close store")
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}
