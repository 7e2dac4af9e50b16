package config

const (
	defaultConfigPath                = "~/.config/dit/config.toml"
	defaultStateDir                  = "~/.local/share/dit"
	defaultLogDir                    = "~/.local/share/dit/logs"
	defaultAPIBind                   = "127.0.0.1:7417"
	defaultKeyerSpeed                = 17
	defaultKeyerMinSpeed             = 5
	defaultKeyerMaxSpeed             = 30
	defaultMaxTextLength             = 512
	defaultTransmitTimeout           = 120
	defaultQueuePollInterval         = 1
	defaultErrorRetryInterval        = 5
	defaultWorkflowHeartbeatInterval = 5
	defaultWorkflowHeartbeatTimeout  = 60
	defaultAPIRequestsPerSecond      = 5
	defaultAPIBurst                  = 10
	defaultNotifyRequestTimeout      = 10
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
	defaultLogRetentionDays          = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Keyer: Keyer{
			DefaultSpeed:    defaultKeyerSpeed,
			MinSpeed:        defaultKeyerMinSpeed,
			MaxSpeed:        defaultKeyerMaxSpeed,
			MaxTextLength:   defaultMaxTextLength,
			TransmitTimeout: defaultTransmitTimeout,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultWorkflowHeartbeatInterval,
			HeartbeatTimeout:   defaultWorkflowHeartbeatTimeout,
		},
		API: API{
			RequestsPerSecond: defaultAPIRequestsPerSecond,
			Burst:             defaultAPIBurst,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Transmissions:  true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
