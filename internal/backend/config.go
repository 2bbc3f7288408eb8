package backend

import (
	"fmt"

	"conti/internal/config"
)

// FromAppConfig picks the Sheets ledger when a spreadsheet is configured
// and the memory ledger otherwise.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	t := MemoryLedger
	if appConfig.SheetsEnabled() {
		t = SheetsLedger
	}
	return Config{
		Type:                     t,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate validates the ledger configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid ledger type: %s", c.Type)
	}

	if c.Type == SheetsLedger {
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets ledger")
		}
		if c.GoogleSheetName == "" {
			return fmt.Errorf("Google Sheet name is required for sheets ledger")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("either GoogleServiceAccountJSON or GoogleServiceAccountFile must be provided for sheets ledger")
		}
	}
	return nil
}
