package config

const (
	defaultConfigPath                = "~/.config/marquee/config.toml"
	defaultDataDir                   = "~/.local/share/marquee"
	defaultLogDir                    = "~/.local/share/marquee/logs"
	defaultAssetDir                  = "~/.local/share/marquee/assets"
	defaultTMDBLanguage              = "en-US"
	defaultTMDBBaseURL               = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL          = "https://image.tmdb.org/t/p/original"
	defaultTMDBRequestTimeoutSeconds = 10
	defaultTMDBMaxRetries            = 2
	defaultTMDBRequestsPerSecond     = 20
	defaultCastLimit                 = 10
	defaultResolveConcurrency        = 4
	defaultTrailerSite               = "YouTube"
	defaultAssetTimeoutSeconds       = 30
	defaultAssetMaxBytes             = 20 << 20
	defaultLLMBaseURL                = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel                  = "google/gemini-3-flash-preview"
	defaultLLMReferer                = "https://github.com/marquee-catalog/marquee"
	defaultLLMTitle                  = "Marquee Person Enrichment"
	defaultLLMTimeoutSeconds         = 60
	defaultLLMRetryAttempts          = 1
	defaultNotifyRequestTimeout      = 10
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
)

func defaultCrewJobs() []string {
	return []string{"Director", "Writer"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			AssetDir: defaultAssetDir,
		},
		TMDB: TMDB{
			BaseURL:               defaultTMDBBaseURL,
			ImageBaseURL:          defaultTMDBImageBaseURL,
			Language:              defaultTMDBLanguage,
			RequestTimeoutSeconds: defaultTMDBRequestTimeoutSeconds,
			MaxRetries:            defaultTMDBMaxRetries,
			RequestsPerSecond:     defaultTMDBRequestsPerSecond,
		},
		Import: Import{
			CastLimit:          defaultCastLimit,
			CrewJobs:           defaultCrewJobs(),
			ResolveConcurrency: defaultResolveConcurrency,
			TrailerSite:        defaultTrailerSite,
		},
		Assets: Assets{
			DownloadTimeoutSeconds: defaultAssetTimeoutSeconds,
			MaxBytes:               defaultAssetMaxBytes,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Imports:        true,
			MissingPeople:  true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
