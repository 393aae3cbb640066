package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'marquee config init')", defaultPath)
	}
	if _, err := url.ParseRequestURI(c.TMDB.BaseURL); err != nil {
		return fmt.Errorf("tmdb.base_url is invalid: %w", err)
	}
	if _, err := url.ParseRequestURI(c.TMDB.ImageBaseURL); err != nil {
		return fmt.Errorf("tmdb.image_base_url is invalid: %w", err)
	}
	if c.TMDB.Language != "" {
		if _, err := language.Parse(c.TMDB.Language); err != nil {
			return fmt.Errorf("tmdb.language %q is not a valid language tag: %w", c.TMDB.Language, err)
		}
	}
	if c.TMDB.MaxRetries < 0 {
		return errors.New("tmdb.max_retries must not be negative")
	}
	return nil
}

func (c *Config) validateImport() error {
	if len(c.Import.CrewJobs) == 0 {
		return errors.New("import.crew_jobs must include at least one job")
	}
	if c.Import.CastLimit <= 0 {
		return errors.New("import.cast_limit must be positive")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"tmdb.request_timeout_seconds":    c.TMDB.RequestTimeoutSeconds,
		"assets.download_timeout_seconds": c.Assets.DownloadTimeoutSeconds,
		"llm.timeout_seconds":             c.LLM.TimeoutSeconds,
		"import.resolve_concurrency":      c.Import.ResolveConcurrency,
	})
}

func (c *Config) validateNotifications() error {
	topic := strings.TrimSpace(c.Notifications.NtfyTopic)
	if topic == "" {
		return nil
	}
	if _, err := url.ParseRequestURI(topic); err != nil {
		return fmt.Errorf("notifications.ntfy_topic must be a full URL: %w", err)
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
