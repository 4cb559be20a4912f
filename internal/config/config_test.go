package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"salondesk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CRM_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "crm_data.db", cfg.Database.URL)
	assert.Equal(t, "8503", cfg.Server.Port)
	assert.Equal(t, "excel", cfg.Workbook.Source)
	assert.Equal(t, time.Second, cfg.Workbook.TabReadInterval)
	assert.Equal(t, 3, cfg.Workbook.TabReadAttempts)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "admin123", cfg.Auth.ManagerPassword)
	assert.Len(t, cfg.CRM.Sheets, 4)
	assert.Equal(t, "2-3-4 DAILY REPORT 01/26", cfg.CRM.Sheets[3])
	assert.Len(t, cfg.CRM.Agents, 13)
	assert.Equal(t, []string{"Training", "16 Digits", "Contact"}, cfg.CRM.ReferenceTabs)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CRM_CONFIG_FILE", "")
	t.Setenv("DATABASE_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_URL", "postgres://crm@localhost/crm?sslmode=disable")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("TAB_READ_ATTEMPTS", "5")
	t.Setenv("PORTAL_BASE_URL", "https://portal.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 5, cfg.Workbook.TabReadAttempts)
	assert.Equal(t, "https://portal.example.com", cfg.Portal.BaseURL)
}

func TestValidateRejectsGSheetsWithoutCredentials(t *testing.T) {
	t.Setenv("CRM_CONFIG_FILE", "")
	t.Setenv("WORKBOOK_SOURCE", "gsheets")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("CRM_CONFIG_FILE", "")
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}

func TestLoadCRMFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.yaml")
	content := `
sheets:
  - "TOTAL REPORT 2027"
agents:
  - "Agent One"
  - "Agent Two"
spreadsheet_ids:
  "TOTAL REPORT 2027": "1AbCdEf"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	crm, err := LoadCRMFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"TOTAL REPORT 2027"}, crm.Sheets)
	assert.Equal(t, []string{"Agent One", "Agent Two"}, crm.Agents)
	assert.Equal(t, "1AbCdEf", crm.SpreadsheetIDs["TOTAL REPORT 2027"])
	assert.Equal(t, "SALON CID", crm.SalonMasterTab)
}

func TestLoadCRMFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sheets: [unterminated"), 0o644))

	_, err := LoadCRMFile(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
