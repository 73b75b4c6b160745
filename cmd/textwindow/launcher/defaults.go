package launcher

import (
	"github.com/rony4d/go-textwindow/integration"
)

// Defaults bundles the baseline configuration values the launcher will use
// before config files and flags override them.

type Defaults struct {
	Input   InputDefaults
	Decode  integration.PresetConfig
	Output  OutputDefaults
	Logging LoggingDefaults
	Metrics MetricsDefaults
}

// InputDefaults describes where the bytes come from.
type InputDefaults struct {
	Path   string //	File to decode; "-" reads standard input.
	Follow bool   //	Keep reading data appended to Path after reaching its end, like tail -f. Requires a regular file.
}

// OutputDefaults selects the rendering of decoded code points.
type OutputDefaults struct {
	Format string //	text, codepoints, hex, lines, or an output encoding name such as utf16le.
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    //	Log level numeric (0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace).
	Format    string //	Log output format (text vs json).
	Color     bool   //	Whether to use ANSI color codes in logs (helpful on terminals, best disabled when piping to files).
	SentryDSN string //	When set, error and fatal entries are also reported to this Sentry project.
}

type MetricsDefaults struct {
	Enable   bool   //	Toggle for the metrics server; when true the decoder counters are exposed on HTTPAddr:HTTPPort/metrics.
	HTTPAddr string //	IP/interface the metrics server binds to (e.g., 0.0.0.0 for all interfaces or 127.0.0.1 for local-only).
	HTTPPort int    //	TCP port scraped by Prometheus; default 6060.
}

// DefaultConfig returns a fully populated Defaults instance.

func DefaultConfig() Defaults {
	return Defaults{
		Input: InputDefaults{
			Path:   "-",
			Follow: false,
		},
		Decode: integration.DefaultPreset(),
		Output: OutputDefaults{
			Format: "text",
		},
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     false,
		},
		Metrics: MetricsDefaults{
			Enable:   false,
			HTTPAddr: "127.0.0.1",
			HTTPPort: 6060,
		},
	}
}
