package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/sheets"
)

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or MEETLOG_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(v.GetString("sheets.service_account_path"))
	config.ClientID = v.GetString("sheets.client_id")
	config.ClientSecret = v.GetString("sheets.client_secret")
	config.RefreshToken = v.GetString("sheets.refresh_token")
	config.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if tz := v.GetString("report.timezone"); tz != "" {
		config.TimeZone = tz
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMissingConfig, err)
	}
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	return &config, nil
}
