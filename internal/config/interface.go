package config

// Option defines a configuration option that can be passed to Load
type Option func(*options)

type options struct {
	configPath string
	envPrefix  string
	args       []string
	parseFlags bool
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithEnvPrefix specifies a custom environment variable prefix.
// Default is "IROVERLAY".
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithArgs parses args instead of os.Args[1:].
func WithArgs(args []string) Option {
	return func(o *options) {
		o.args = args
	}
}

// WithoutFlags skips command line parsing. Overlay processes take no
// arguments.
func WithoutFlags() Option {
	return func(o *options) {
		o.parseFlags = false
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

func (l LogLevel) String() string {
	return string(l)
}

// TelemetrySource names the feed overlays read from.
type TelemetrySource string

const (
	SourceIRSDK  TelemetrySource = "irsdk"
	SourceReplay TelemetrySource = "replay"
)

func (s TelemetrySource) IsValid() bool {
	return s == SourceIRSDK || s == SourceReplay
}
