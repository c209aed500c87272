package config

const (
	defaultLogDir            = "~/.local/share/daedalus/logs"
	defaultStateDir          = "~/.local/share/daedalus/state"
	defaultWorkDir           = "/"
	defaultUmask             = 0o027
	defaultLogFormat         = "auto"
	defaultLogLevel          = "info"
	defaultHeartbeatInterval = 15
	defaultRunHistoryLimit   = 50
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Daemon: Daemon{
			WorkDir:           defaultWorkDir,
			Umask:             defaultUmask,
			SuppressCoreDumps: true,
			Detach:            true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Service: Service{
			HeartbeatInterval: defaultHeartbeatInterval,
			RunHistoryLimit:   defaultRunHistoryLimit,
		},
	}
}
