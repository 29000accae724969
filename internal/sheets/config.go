// Package sheets mirrors saved reports into a Google spreadsheet, one sheet
// per user per week.
package sheets

import (
	"fmt"
	"os"
	"time"
)

// Config holds the configuration for the Google Sheets mirror.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	TimeZone           string
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableFormatting: true,
		TimeZone:         "Europe/Moscow",
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// LoadFromEnv fills the fields still empty from GOOGLE_SHEETS_* environment
// variables. Values already set take precedence.
func (c *Config) LoadFromEnv() error {
	overlay := map[string]*string{
		"GOOGLE_SHEETS_CLIENT_ID":            &c.ClientID,
		"GOOGLE_SHEETS_CLIENT_SECRET":        &c.ClientSecret,
		"GOOGLE_SHEETS_REFRESH_TOKEN":        &c.RefreshToken,
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH": &c.ServiceAccountPath,
		"GOOGLE_SHEETS_SPREADSHEET_ID":       &c.SpreadsheetID,
	}
	for key, field := range overlay {
		if *field == "" {
			*field = os.Getenv(key)
		}
	}

	if c.ServiceAccountPath == "" && (c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "") {
		return fmt.Errorf("missing Google Sheets authentication: provide either service account path or OAuth2 credentials")
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("no authentication method configured")
	}

	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account")
	}

	if c.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet id is required")
	}

	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			return fmt.Errorf("invalid time zone %q: %w", c.TimeZone, err)
		}
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}

	return nil
}

// location returns the configured zone, or UTC when unset.
func (c *Config) location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
