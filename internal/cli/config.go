package cli

import (
	"fmt"

	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/mediaserver"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the configuration",
	}
	cmd.AddCommand(a.configShowCmd(), a.configSetURLCmd(), a.configProbeCmd())
	return cmd
}

func (a *app) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shown := *a.cfg
			if shown.Server.Password != "" {
				shown.Server.Password = "********"
			}
			out := configOutput(shown)
			p := a.printer(cmd)
			return p.emit(out, func() {
				b, err := yaml.Marshal(out)
				if err != nil {
					fmt.Fprintln(p.w, err)
					return
				}
				fmt.Fprint(p.w, string(b))
			})
		},
	}
}

func (a *app) configSetURLCmd() *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "set-url <url>",
		Short: "Set the server URL and save the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.SetServerURL(args[0]); err != nil {
				return err
			}
			if probe {
				info, err := mediaserver.Detect(cmd.Context(), a.cfg.Server.URL)
				if err != nil {
					return fmt.Errorf("server check failed: %w", err)
				}
				a.logger.Info("detected server", "product", info.ProductName, "version", info.Version)
			}
			if err := config.Save(a.cfg, a.cfgFile); err != nil {
				return err
			}
			return a.printer(cmd).success(map[string]string{"url": a.cfg.Server.URL},
				"server set to "+a.cfg.Server.URL)
		},
	}
	cmd.Flags().BoolVar(&probe, "probe", false, "check the server answers as Jellyfin or Emby before saving")
	return cmd
}

func (a *app) configProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe [url]",
		Short: "Check whether a URL is a Jellyfin or Emby server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := a.cfg.Server.URL
			if len(args) == 1 {
				target = args[0]
			}
			info, err := mediaserver.Detect(cmd.Context(), target)
			if err != nil {
				return err
			}
			return a.printer(cmd).success(info,
				fmt.Sprintf("%s %s (%s) at %s", info.ProductName, info.Version, info.ServerName, info.URL))
		},
	}
}

// configView mirrors config.Config with output tags
type configView struct {
	Server struct {
		URL      string `json:"url" yaml:"url"`
		Username string `json:"username" yaml:"username"`
		Password string `json:"password,omitempty" yaml:"password,omitempty"`
		Timeout  int    `json:"timeout" yaml:"timeout"`
	} `json:"server" yaml:"server"`
	Client struct {
		Name       string `json:"name" yaml:"name"`
		DeviceName string `json:"deviceName,omitempty" yaml:"device_name,omitempty"`
	} `json:"client" yaml:"client"`
	Catalog struct {
		EpisodeTemplate string   `json:"episodeTemplate" yaml:"episode_template"`
		EpisodePrefix   string   `json:"episodePrefix" yaml:"episode_prefix"`
		EpisodeDetails  []string `json:"episodeDetails" yaml:"episode_details"`
	} `json:"catalog" yaml:"catalog"`
	Player struct {
		Command string   `json:"command,omitempty" yaml:"command,omitempty"`
		Args    []string `json:"args,omitempty" yaml:"args,omitempty"`
	} `json:"player" yaml:"player"`
	StoragePath string `json:"storagePath" yaml:"storage_path"`
	LogFile     string `json:"logFile" yaml:"log_file"`
	LogLevel    string `json:"logLevel" yaml:"log_level"`
}

func configOutput(c config.Config) configView {
	var v configView
	v.Server.URL = c.Server.URL
	v.Server.Username = c.Server.Username
	v.Server.Password = c.Server.Password
	v.Server.Timeout = c.Server.Timeout
	v.Client.Name = c.Client.Name
	v.Client.DeviceName = c.Client.DeviceName
	v.Catalog.EpisodeTemplate = c.Catalog.EpisodeTemplate
	v.Catalog.EpisodePrefix = c.Catalog.EpisodePrefix
	v.Catalog.EpisodeDetails = c.Catalog.EpisodeDetails
	v.Player.Command = c.Player.Command
	v.Player.Args = c.Player.Args
	v.StoragePath = c.Storage.Path
	v.LogFile = c.Logging.File
	v.LogLevel = c.Logging.Level
	return v
}
