package config

const (
	defaultLogDir               = "~/.local/share/reelsync/logs"
	defaultAPIBind              = "127.0.0.1:7496"
	defaultTMDBBaseURL          = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL     = "https://image.tmdb.org/t/p"
	defaultTMDBLanguage         = "en-US"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultPollInterval         = 5
	defaultFullRefreshInterval  = 86400
	defaultErrorRetryInterval   = 10
	defaultDuplicateArchiveWait = 30
	defaultResolveCachePath     = "~/.cache/reelsync/resolve.db"
	defaultResolveCacheTTLHours = 24
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		TMDB: TMDB{
			BaseURL:      defaultTMDBBaseURL,
			ImageBaseURL: defaultTMDBImageBaseURL,
			Language:     defaultTMDBLanguage,
		},
		Workflow: Workflow{
			PollInterval:         defaultPollInterval,
			FullRefreshInterval:  defaultFullRefreshInterval,
			ErrorRetryInterval:   defaultErrorRetryInterval,
			DuplicateArchiveWait: defaultDuplicateArchiveWait,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Synced:         true,
			Duplicates:     true,
			Errors:         true,
		},
		ResolveCache: ResolveCache{
			Enabled:  false,
			Path:     defaultResolveCachePath,
			TTLHours: defaultResolveCacheTTLHours,
		},
	}
}
