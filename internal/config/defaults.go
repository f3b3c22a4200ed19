package config

// Default observer position is Nairobi, Kenya.
const (
	defaultLatitude  = -1.2921
	defaultLongitude = 36.8219
	defaultAltitude  = 0.0

	defaultNightTemperature = 3000

	// ModeSocket drives hyprsunset over its unix socket, ModeProcess by
	// restarting the binary with a mode flag.
	ModeSocket  = "socket"
	ModeProcess = "process"

	defaultMode                     = ModeSocket
	defaultBinary                   = "hyprsunset"
	defaultSocketWaitAttempts       = 10
	defaultSocketWaitIntervalSecs   = 1
	defaultCommandTimeoutMillis     = 500
	defaultProcessRestartDelayMilli = 500

	defaultDriftDelaySeconds = 60

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
	defaultLogDir    = "~/.local/share/solshift/logs"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Location: Location{
			Latitude:  defaultLatitude,
			Longitude: defaultLongitude,
			Altitude:  defaultAltitude,
		},
		Filter: Filter{
			NightTemperature: defaultNightTemperature,
		},
		Hyprsunset: Hyprsunset{
			Mode:                     defaultMode,
			Binary:                   defaultBinary,
			SocketWaitAttempts:       defaultSocketWaitAttempts,
			SocketWaitIntervalSecs:   defaultSocketWaitIntervalSecs,
			CommandTimeoutMillis:     defaultCommandTimeoutMillis,
			ProcessRestartDelayMilli: defaultProcessRestartDelayMilli,
		},
		Scheduler: Scheduler{
			DriftDelaySeconds: defaultDriftDelaySeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Paths: Paths{
			LogDir: defaultLogDir,
		},
	}
}
