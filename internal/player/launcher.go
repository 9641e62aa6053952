package player

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/mmcdole/reel/internal/domain"
)

// ErrNoSource is returned when asked to play an item without a stream
var ErrNoSource = errors.New("no playable source")

// launchPath defines a single way to launch a player
type launchPath struct {
	path      string   // command name, or "open-a:AppName" on macOS
	openFlags []string // flags for the macOS open command
}

// playerConfig describes how to hand a stream to a known player
type playerConfig struct {
	headerFlag string // repeated once per header, e.g. "--http-header-fields-append="
	platforms  map[string][]launchPath
}

var players = map[string]playerConfig{
	"mpv": {
		headerFlag: "--http-header-fields-append=",
		platforms: map[string][]launchPath{
			"darwin":  {{path: "mpv"}},
			"linux":   {{path: "mpv"}},
			"windows": {{path: "mpv"}},
		},
	},
	"iina": {
		headerFlag: "--mpv-http-header-fields-append=",
		platforms: map[string][]launchPath{
			"darwin": {{path: "open-a:IINA", openFlags: []string{"-n"}}},
		},
	},
	"celluloid": {
		headerFlag: "--mpv-http-header-fields-append=",
		platforms: map[string][]launchPath{
			"linux": {{path: "celluloid"}},
		},
	},
	"haruna": {
		headerFlag: "--mpv-http-header-fields-append=",
		platforms: map[string][]launchPath{
			"linux": {{path: "haruna"}},
		},
	},
	"vlc": {
		platforms: map[string][]launchPath{
			"darwin":  {{path: "vlc"}, {path: "open-a:VLC"}},
			"linux":   {{path: "vlc"}},
			"windows": {{path: "vlc"}},
		},
	},
}

// candidatePlayers is the preferred order per platform; players that can send
// the authorization header come first.
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "mpv", "vlc"},
	"linux":   {"mpv", "celluloid", "haruna", "vlc"},
	"windows": {"mpv", "vlc"},
}

// Launcher starts an external player for a playback source
type Launcher struct {
	command string
	args    []string
	logger  *slog.Logger

	goos     string
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
}

// NewLauncher creates a launcher. An empty command auto-detects a player.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		logger:   logger,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Launch plays src in the configured player, the first installed candidate,
// or the system default handler, in that order.
func (l *Launcher) Launch(src domain.PlaybackSource) error {
	if src.IsZero() {
		return ErrNoSource
	}

	name, args, err := l.Command(src)
	if err != nil {
		return err
	}
	l.logger.Info("launching player", "command", name, "url", src.URL)
	return l.start(name, args...)
}

// Command resolves the program and arguments Launch would run
func (l *Launcher) Command(src domain.PlaybackSource) (string, []string, error) {
	if src.IsZero() {
		return "", nil, ErrNoSource
	}

	if l.command != "" {
		name, args := l.configuredCommand(src)
		return name, args, nil
	}

	if name, args, ok := l.detect(src); ok {
		return name, args, nil
	}

	l.logger.Warn("no known player found, using system default; the stream may require authorization")
	name, args := l.defaultCommand(src.URL)
	return name, args, nil
}

func (l *Launcher) configuredCommand(src domain.PlaybackSource) (string, []string) {
	base := playerName(l.command)
	cfg, known := players[base]
	if !known && len(src.Headers) > 0 {
		l.logger.Warn("unknown player, authorization headers not passed", "command", l.command)
	}

	args := append(headerArgs(cfg.headerFlag, src.Headers), l.args...)

	if l.goos == "darwin" {
		if _, err := l.lookPath(l.command); err != nil {
			var openFlags []string
			for _, lp := range cfg.platforms["darwin"] {
				if strings.HasPrefix(lp.path, "open-a:") {
					openFlags = lp.openFlags
					break
				}
			}
			return "open", openArgs(l.command, openFlags, args, src.URL)
		}
	}
	return l.command, append(args, src.URL)
}

// detect tries candidate players in order, returning the first installed one
func (l *Launcher) detect(src domain.PlaybackSource) (string, []string, bool) {
	candidates, ok := candidatePlayers[l.goos]
	if !ok {
		candidates = candidatePlayers["linux"]
	}

	for _, name := range candidates {
		cfg := players[name]
		args := headerArgs(cfg.headerFlag, src.Headers)

		for _, lp := range cfg.platforms[l.goos] {
			if app, ok := strings.CutPrefix(lp.path, "open-a:"); ok {
				// open -a reports a missing app only when run, so trust the
				// platform entry
				l.logger.Debug("detected player", "player", name, "app", app)
				return "open", openArgs(app, lp.openFlags, args, src.URL), true
			}
			if _, err := l.lookPath(lp.path); err != nil {
				l.logger.Debug("launch path not available", "player", name, "path", lp.path, "error", err)
				continue
			}
			if cfg.headerFlag == "" && len(src.Headers) > 0 {
				l.logger.Warn("player cannot send authorization headers", "player", name)
			}
			l.logger.Debug("detected player", "player", name, "path", lp.path)
			return lp.path, append(args, src.URL), true
		}
	}
	return "", nil, false
}

func (l *Launcher) defaultCommand(url string) (string, []string) {
	switch l.goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		return "xdg-open", []string{url}
	}
}

// headerArgs renders one flag per header in a stable order
func headerArgs(flag string, headers map[string]string) []string {
	if flag == "" || len(headers) == 0 {
		return []string{}
	}
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]string, 0, len(names))
	for _, name := range names {
		args = append(args, fmt.Sprintf("%s%s: %s", flag, name, headers[name]))
	}
	return args
}

func openArgs(app string, openFlags, playerArgs []string, url string) []string {
	args := append([]string{}, openFlags...)
	args = append(args, "-a", app)
	if len(playerArgs) > 0 {
		args = append(args, "--args")
		args = append(args, playerArgs...)
	}
	return append(args, url)
}

func playerName(command string) string {
	base := filepath.Base(command)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(base)
}
