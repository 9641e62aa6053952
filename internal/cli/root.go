package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/log"
	"github.com/mmcdole/reel/internal/mediaserver"
	"github.com/mmcdole/reel/internal/mediaserver/jellyfin"
	"github.com/mmcdole/reel/internal/player"
	"github.com/mmcdole/reel/internal/service"
	"github.com/mmcdole/reel/internal/store"
	"github.com/spf13/cobra"
)

// app carries state shared by every command for one invocation
type app struct {
	version  string
	cfgFile  string
	output   string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
	store  *store.PrefStore
	client *jellyfin.Client

	// newLauncher is swapped in tests so nothing is executed
	newLauncher func(cfg config.PlayerConfig, logger *slog.Logger) launcher
	// readPassword prompts without echo
	readPassword func(prompt string) (string, error)
}

type launcher interface {
	Launch(src domain.PlaybackSource) error
}

// NewRootCmd builds the reel command tree
func NewRootCmd(version string) *cobra.Command {
	a := &app{
		version: version,
		newLauncher: func(cfg config.PlayerConfig, logger *slog.Logger) launcher {
			return player.NewLauncher(cfg.Command, cfg.Args, logger)
		},
		readPassword: promptPassword,
	}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reel",
		Short: "Browse and play a Jellyfin or Emby library from the terminal",
		Long: `Reel is a command line client for Jellyfin and Emby media servers.

It lists, searches and describes the catalog, prints episode lists and
hands streams to an external player. Sessions and filter metadata are
cached on disk per server.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is "+config.DefaultConfigFile()+")")
	flags.StringVarP(&a.output, "output", "o", "text", "output format: text, json or yaml")
	flags.StringVar(&a.logLevel, "log-level", "", "override logging.level")

	cmd.AddCommand(
		a.popularCmd(),
		a.latestCmd(),
		a.searchCmd(),
		a.detailsCmd(),
		a.episodesCmd(),
		a.playCmd(),
		a.categoriesCmd(),
		a.genresCmd(),
		a.filtersCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.configCmd(),
	)
	return cmd
}

// setup loads .env, configuration and logging. Server connections are made
// lazily by the commands that need them.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	a.output = strings.ToLower(a.output)
	switch a.output {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)
	a.logger = logger

	logger.Debug("starting reel", "version", a.version, "command", cmd.CommandPath())
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	return a.closeStore()
}

// closeStore releases the store lock; safe to call more than once
func (a *app) closeStore() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	a.client = nil
	return err
}

// connect opens the per-server store and creates the client
func (a *app) connect() (*jellyfin.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if a.cfg.Server.URL == "" {
		return nil, fmt.Errorf("no server configured; run: reel config set-url <url>")
	}

	st, err := store.Open(a.cfg.Storage.Path, a.cfg.Server.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.store = st

	client, err := mediaserver.NewClient(a.cfg, st, a.version, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create media client: %w", err)
	}
	a.client = client
	return client, nil
}

func (a *app) filterService() (*service.FilterService, error) {
	client, err := a.connect()
	if err != nil {
		return nil, err
	}
	return service.NewFilterService(client, a.store, a.logger), nil
}

func (a *app) printer(cmd *cobra.Command) *printer {
	return newPrinter(cmd.OutOrStdout(), a.output)
}
