// Package config loads the application settings shared by the control app
// and the overlay processes. These are separate from the overlay record the
// user edits through the control panel.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/journal"
	"codeberg.org/mutker/iroverlay/internal/store"
	"codeberg.org/mutker/iroverlay/internal/telemetry"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = LogLevelInfo
	DefaultEnvPrefix = "IROVERLAY"

	// ControlProcess names the control app in logs and the pid file.
	ControlProcess = "iroverlay"

	configName = "iroverlay"
	configType = "toml"
	appDir     = "iroverlay"

	// Record location, shared with the overlays.
	RecordOrg = "iroverlay"
	RecordApp = "iracing-overlays"

	defaultControlInterval = 50 * time.Millisecond
	defaultKillGrace       = 2 * time.Second
	windowsInstallDir      = `C:\Program Files (x86)\iRacing Overlays`
)

type Config struct {
	LogLevel   LogLevel   `mapstructure:"log_level"`
	LogFile    string     `mapstructure:"log_file"`
	Telemetry  Telemetry  `mapstructure:"telemetry"`
	Overlays   Overlays   `mapstructure:"overlays"`
	Supervisor Supervisor `mapstructure:"supervisor"`
	Control    Control    `mapstructure:"control"`
	Store      Store      `mapstructure:"store"`

	// File is the settings file that was read, if any.
	File string `mapstructure:"-"`
}

type Telemetry struct {
	Source           TelemetrySource `mapstructure:"source"`
	ReplayFile       string          `mapstructure:"replay_file"`
	PollInterval     time.Duration   `mapstructure:"poll_interval"`
	SampleTimeout    time.Duration   `mapstructure:"sample_timeout"`
	ReconnectBackoff bool            `mapstructure:"reconnect_backoff"`
}

type Overlays struct {
	SpeedPath       string `mapstructure:"speed_path"`
	LastLapTimePath string `mapstructure:"lastlaptime_path"`
	LiveReload      bool   `mapstructure:"live_reload"`
}

type Supervisor struct {
	Journal     bool          `mapstructure:"journal"`
	JournalPath string        `mapstructure:"journal_path"`
	ReapOrphans bool          `mapstructure:"reap_orphans"`
	KillGrace   time.Duration `mapstructure:"kill_grace"`
}

type Control struct {
	// Interval is the control loop period.
	Interval time.Duration `mapstructure:"interval"`
}

type Store struct {
	Path string `mapstructure:"path"`
}

func defaults() map[string]any {
	tel := telemetry.DefaultConfig()
	return map[string]any{
		"log_level":                   string(DefaultLogLevel),
		"log_file":                    "",
		"telemetry.source":            string(SourceIRSDK),
		"telemetry.replay_file":       "",
		"telemetry.poll_interval":     tel.PollInterval,
		"telemetry.sample_timeout":    tel.SampleTimeout,
		"telemetry.reconnect_backoff": false,
		"overlays.speed_path":         "",
		"overlays.lastlaptime_path":   "",
		"overlays.live_reload":        false,
		"supervisor.journal":          true,
		"supervisor.journal_path":     "",
		"supervisor.reap_orphans":     false,
		"supervisor.kill_grace":       defaultKillGrace,
		"control.interval":            defaultControlInterval,
		"store.path":                  "",
	}
}

// Load reads settings from defaults, the config file, the environment and
// command line flags, in increasing order of precedence.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{
		configPath: os.Getenv(DefaultEnvPrefix + "_CONFIG"),
		envPrefix:  DefaultEnvPrefix,
		args:       os.Args[1:],
		parseFlags: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.parseFlags {
		flags := newFlagSet()
		if err := flags.Parse(o.args); err != nil {
			return nil, errFactory.Wrap(ErrBindFlags, err)
		}
		if path, _ := flags.GetString("config"); path != "" {
			o.configPath = path
		}
		for key, name := range flagKeys {
			if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
				return nil, errFactory.Wrap(ErrBindFlags, err)
			}
		}
	}

	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
		v.SetConfigType(configType)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appDir))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errFactory.Wrap(ErrReadConfig, err)
		}
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if used := v.ConfigFileUsed(); used != "" {
		cfg.File = absPath(used)
	}

	return cfg, nil
}

// Flags bound to settings, by setting key.
var flagKeys = map[string]string{
	"log_level":             "log-level",
	"log_file":              "log-file",
	"telemetry.source":      "telemetry-source",
	"telemetry.replay_file": "replay-file",
	"control.interval":      "interval",
	"store.path":            "store-path",
	"supervisor.journal":    "journal",
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	flags.String("config", "", "Path to the settings file")
	flags.String("log-level", string(DefaultLogLevel), "Log level (debug, info, warning, error)")
	flags.String("log-file", "", "Rotating log file path")
	flags.String("telemetry-source", string(SourceIRSDK), "Telemetry source passed to overlays (irsdk, replay)")
	flags.String("replay-file", "", "YAML telemetry replay used when the source is replay")
	flags.Duration("interval", defaultControlInterval, "Control loop interval")
	flags.String("store-path", "", "Overlay record file")
	flags.Bool("journal", true, "Record overlay lifecycles in the journal database")

	return flags
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if !c.LogLevel.IsValid() {
		return errFactory.WithData(ErrInvalidLogLevel, c.LogLevel)
	}

	if !c.Telemetry.Source.IsValid() {
		return errFactory.WithData(ErrInvalidTelemetrySource, c.Telemetry.Source)
	}
	if c.Telemetry.Source == SourceReplay && c.Telemetry.ReplayFile == "" {
		return errFactory.WithMessage(ErrInvalidTelemetrySource, "replay source requires telemetry.replay_file")
	}

	for name, d := range map[string]time.Duration{
		"telemetry.poll_interval":  c.Telemetry.PollInterval,
		"telemetry.sample_timeout": c.Telemetry.SampleTimeout,
		"control.interval":         c.Control.Interval,
	} {
		if d <= 0 {
			return errFactory.WithData(ErrInvalidInterval, struct {
				Field string
				Value time.Duration
			}{name, d})
		}
	}
	if c.Supervisor.KillGrace < 0 {
		return errFactory.WithData(ErrInvalidInterval, struct {
			Field string
			Value time.Duration
		}{"supervisor.kill_grace", c.Supervisor.KillGrace})
	}

	return nil
}

// TelemetryConfig returns the sampler settings.
func (c *Config) TelemetryConfig() telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.PollInterval = c.Telemetry.PollInterval
	cfg.SampleTimeout = c.Telemetry.SampleTimeout
	cfg.ReconnectBackoff = c.Telemetry.ReconnectBackoff

	return cfg
}

func (c *Config) JournalConfig() journal.Config {
	cfg := journal.DefaultConfig()
	cfg.Enabled = c.Supervisor.Journal
	if c.Supervisor.JournalPath != "" {
		cfg.DBPath = c.Supervisor.JournalPath
	}

	return cfg
}

// RecordPath returns the overlay record file shared by all processes.
func (c *Config) RecordPath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}

	return store.DefaultPath(RecordOrg, RecordApp)
}

// OverlayPaths returns the executable for each overlay kind.
func (c *Config) OverlayPaths() map[store.Kind]string {
	paths := defaultOverlayPaths()
	if c.Overlays.SpeedPath != "" {
		paths[store.KindSpeed] = c.Overlays.SpeedPath
	}
	if c.Overlays.LastLapTimePath != "" {
		paths[store.KindLastLapTime] = c.Overlays.LastLapTimePath
	}

	return paths
}

func defaultOverlayPaths() map[store.Kind]string {
	if runtime.GOOS == "windows" {
		return map[store.Kind]string{
			store.KindSpeed:       filepath.Join(windowsInstallDir, "speed.exe"),
			store.KindLastLapTime: filepath.Join(windowsInstallDir, "lastlaptime.exe"),
		}
	}

	dir := "."
	if exe, err := os.Executable(); err == nil {
		dir = filepath.Dir(exe)
	}

	return map[store.Kind]string{
		store.KindSpeed:       filepath.Join(dir, "speed-overlay"),
		store.KindLastLapTime: filepath.Join(dir, "lastlap-overlay"),
	}
}

// ChildEnv returns the environment entries that carry the settings the
// overlays must share with the control app. Overlays take no arguments,
// so they read these through the environment layer of Load. Paths are
// made absolute because overlays run from their own directory.
func (c *Config) ChildEnv() ([]string, error) {
	record, err := c.RecordPath()
	if err != nil {
		return nil, err
	}

	env := []string{
		envVar("store.path", absPath(record)),
		envVar("log_level", c.LogLevel.String()),
		envVar("telemetry.source", string(c.Telemetry.Source)),
	}
	if c.File != "" {
		env = append(env, DefaultEnvPrefix+"_CONFIG="+c.File)
	}
	if c.Telemetry.ReplayFile != "" {
		env = append(env, envVar("telemetry.replay_file", absPath(c.Telemetry.ReplayFile)))
	}

	return env, nil
}

func envVar(key, value string) string {
	name := DefaultEnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	return name + "=" + value
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}

	return path
}

// LogPath returns the rotating log file for process. log_file only
// applies to the control app so overlays never share a file with it.
func (c *Config) LogPath(process string) string {
	if c.LogFile != "" && process == ControlProcess {
		return c.LogFile
	}

	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, appDir, "logs", process+".log")
}
