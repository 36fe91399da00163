package config

const (
	defaultDataDir               = "~/.local/share/murajaah"
	defaultLogDir                = "~/.local/share/murajaah/logs"
	defaultAPIBind               = "127.0.0.1:7821"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultScorerTimeoutSeconds  = 30
	defaultNtfyBaseURL           = "https://ntfy.sh"
	defaultNtfyTopicPrefix       = "murajaah"
	defaultDeliveryTimeout       = 10
	defaultPolicyLevel           = 2
	defaultVerificationMode      = "manual"
	defaultAcceptThreshold       = 85
	defaultRejectThreshold       = 50
	defaultRequiredLearning      = 5
	defaultRequiredHalfPage      = 3
	defaultRequiredFullPage      = 1
	defaultHoursLearning         = 24
	defaultHoursHalfPage         = 24
	defaultHoursFullPage         = 48
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Scorer: Scorer{
			Enabled:        false,
			TimeoutSeconds: defaultScorerTimeoutSeconds,
		},
		Delivery: Delivery{
			NtfyBaseURL:    defaultNtfyBaseURL,
			TopicPrefix:    defaultNtfyTopicPrefix,
			TimeoutSeconds: defaultDeliveryTimeout,
		},
		Policy: Policy{
			Level:            defaultPolicyLevel,
			VerificationMode: defaultVerificationMode,
			AcceptThreshold:  defaultAcceptThreshold,
			RejectThreshold:  defaultRejectThreshold,
			AIEnabled:        false,
			RequiredLearning: defaultRequiredLearning,
			RequiredHalfPage: defaultRequiredHalfPage,
			RequiredFullPage: defaultRequiredFullPage,
			HoursLearning:    defaultHoursLearning,
			HoursHalfPage:    defaultHoursHalfPage,
			HoursFullPage:    defaultHoursFullPage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
