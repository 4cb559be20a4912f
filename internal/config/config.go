package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"salondesk/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Workbook  WorkbookConfig
	Cache     CacheConfig
	Reconcile ReconcileConfig
	Portal    PortalConfig
	Launcher  LauncherConfig
	Auth      AuthConfig
	Metrics   MetricsConfig
	CRM       CRMConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	APIPort string
	GinMode string
}

// WorkbookConfig selects where report spreadsheets are read from
type WorkbookConfig struct {
	Source          string // "excel" or "gsheets"
	Dir             string
	CredentialsFile string
	TabReadInterval time.Duration
	TabReadAttempts int
	Concurrency     int
}

// CacheConfig holds settings for the loaded-sheet cache
type CacheConfig struct {
	TTL       time.Duration
	RedisAddr string
	RedisPass string
	RedisDB   int
}

// ReconcileConfig holds settings for the background reconcile routine
type ReconcileConfig struct {
	Interval time.Duration
	Watch    bool
}

// PortalConfig holds settings for the portal lookup bot
type PortalConfig struct {
	BaseURL  string
	Username string
	Password string
	Headless bool
	Timeout  time.Duration
}

// LauncherConfig holds the URLs the desktop launcher chooses between
type LauncherConfig struct {
	LocalURL string
	CloudURL string
	Timeout  time.Duration
}

// AuthConfig holds the shared manager password
type AuthConfig struct {
	ManagerPassword string
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// CRMConfig holds list-shaped settings read from the optional YAML file
type CRMConfig struct {
	Sheets          []string          `yaml:"sheets"`
	Agents          []string          `yaml:"agents"`
	ReferenceSheet  string            `yaml:"reference_sheet"`
	ReferenceTabs   []string          `yaml:"reference_tabs"`
	SalonMasterTab  string            `yaml:"salon_master_tab"`
	SpreadsheetIDs  map[string]string `yaml:"spreadsheet_ids"`
	MaintenanceNote string            `yaml:"maintenance_note"`
}

// DefaultCRMConfig returns the sheet list and roster the call center runs with
func DefaultCRMConfig() CRMConfig {
	return CRMConfig{
		Sheets: []string{
			"TOTAL REPORT 2025",
			"TOTAL REPORT 2026",
			"2-3-4 DAILY REPORT 12/25",
			"2-3-4 DAILY REPORT 01/26",
		},
		Agents: []string{
			"Nguyễn Trần Phương Loan",
			"Nguyễn Hương Giang",
			"Nguyễn Thị Phương Anh",
			"Võ Ngọc Tuấn",
			"Nguyễn Thị Thùy Dung",
			"Hồ Ngọc Mỹ Phượng",
			"Phạm Ngọc Chiến",
			"Trương Anh Đạt",
			"Dương Nhật Tiến",
			"Lưu Schang Sanh",
			"Lê Thị Tuyết Anh",
			"Đinh Thị Liên Chi",
			"Nguyễn Thị Anh Thư",
		},
		ReferenceSheet:  "2-3-4 DAILY REPORT 12/25",
		ReferenceTabs:   []string{"Training", "16 Digits", "Contact"},
		SalonMasterTab:  "SALON CID",
		SpreadsheetIDs:  map[string]string{},
		MaintenanceNote: "Dashboard is under maintenance while search is being improved.",
	}
}

// Load reads configuration from environment variables and the optional YAML file
func Load() (*Config, error) {
	config := &Config{
		Database:  *loadDatabaseConfig(),
		Server:    *loadServerConfig(),
		Workbook:  *loadWorkbookConfig(),
		Cache:     *loadCacheConfig(),
		Reconcile: *loadReconcileConfig(),
		Portal:    *loadPortalConfig(),
		Launcher:  *loadLauncherConfig(),
		Auth:      AuthConfig{ManagerPassword: getEnvOrDefault("MANAGER_PASSWORD", "admin123")},
		Metrics:   MetricsConfig{Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true)},
	}

	crmConfig, err := LoadCRMFile(getEnvOrDefault("CRM_CONFIG_FILE", "crm.yaml"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load CRM configuration file")
	}
	config.CRM = *crmConfig

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadCRMFile reads the YAML file on top of the defaults. A missing file is not an error.
func LoadCRMFile(path string) (*CRMConfig, error) {
	crmConfig := DefaultCRMConfig()
	if path == "" {
		return &crmConfig, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &crmConfig, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	var fileConfig CRMConfig
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to parse %s", path))
	}

	if len(fileConfig.Sheets) > 0 {
		crmConfig.Sheets = fileConfig.Sheets
	}
	if len(fileConfig.Agents) > 0 {
		crmConfig.Agents = fileConfig.Agents
	}
	if fileConfig.ReferenceSheet != "" {
		crmConfig.ReferenceSheet = fileConfig.ReferenceSheet
	}
	if len(fileConfig.ReferenceTabs) > 0 {
		crmConfig.ReferenceTabs = fileConfig.ReferenceTabs
	}
	if fileConfig.SalonMasterTab != "" {
		crmConfig.SalonMasterTab = fileConfig.SalonMasterTab
	}
	for name, id := range fileConfig.SpreadsheetIDs {
		crmConfig.SpreadsheetIDs[name] = id
	}
	if fileConfig.MaintenanceNote != "" {
		crmConfig.MaintenanceNote = fileConfig.MaintenanceNote
	}

	return &crmConfig, nil
}

// Validate checks settings that would otherwise fail late
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return errors.ConfigInvalid("DATABASE_DRIVER must be sqlite3 or postgres, got " + c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}

	switch c.Workbook.Source {
	case "excel":
	case "gsheets":
		if c.Workbook.CredentialsFile == "" {
			return errors.ConfigInvalid("GOOGLE_CREDENTIALS_FILE is required for the gsheets workbook source")
		}
	default:
		return errors.ConfigInvalid("WORKBOOK_SOURCE must be excel or gsheets, got " + c.Workbook.Source)
	}

	if c.Workbook.TabReadAttempts < 1 {
		return errors.ConfigInvalid("TAB_READ_ATTEMPTS must be at least 1")
	}
	if c.Workbook.Concurrency < 1 {
		return errors.ConfigInvalid("SHEET_CONCURRENCY must be at least 1")
	}
	if len(c.CRM.Sheets) == 0 {
		return errors.ConfigInvalid("at least one report sheet must be configured")
	}
	return nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Driver:          strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "sqlite3")),
		URL:             getEnvOrDefault("DATABASE_URL", "crm_data.db"),
		MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8503"),
		APIPort: getEnvOrDefault("API_PORT", "8504"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadWorkbookConfig() *WorkbookConfig {
	return &WorkbookConfig{
		Source:          strings.ToLower(getEnvOrDefault("WORKBOOK_SOURCE", "excel")),
		Dir:             getEnvOrDefault("WORKBOOK_DIR", "."),
		CredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", ""),
		TabReadInterval: getEnvDurationOrDefault("TAB_READ_INTERVAL", time.Second),
		TabReadAttempts: getEnvIntOrDefault("TAB_READ_ATTEMPTS", 3),
		Concurrency:     getEnvIntOrDefault("SHEET_CONCURRENCY", 2),
	}
}

func loadCacheConfig() *CacheConfig {
	return &CacheConfig{
		TTL:       getEnvDurationOrDefault("CACHE_TTL", 60*time.Second),
		RedisAddr: getEnvOrDefault("REDIS_ADDR", ""),
		RedisPass: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:   getEnvIntOrDefault("REDIS_DB", 0),
	}
}

func loadReconcileConfig() *ReconcileConfig {
	return &ReconcileConfig{
		Interval: getEnvDurationOrDefault("RECONCILE_INTERVAL", 10*time.Minute),
		Watch:    getEnvBoolOrDefault("WATCH_WORKBOOKS", true),
	}
}

func loadPortalConfig() *PortalConfig {
	return &PortalConfig{
		BaseURL:  strings.TrimRight(getEnvOrDefault("PORTAL_BASE_URL", "https://lldtek.org"), "/"),
		Username: getEnvOrDefault("PORTAL_USERNAME", ""),
		Password: getEnvOrDefault("PORTAL_PASSWORD", ""),
		Headless: getEnvBoolOrDefault("PORTAL_HEADLESS", true),
		Timeout:  getEnvDurationOrDefault("PORTAL_TIMEOUT", 30*time.Second),
	}
}

func loadLauncherConfig() *LauncherConfig {
	return &LauncherConfig{
		LocalURL: getEnvOrDefault("LAUNCHER_LOCAL_URL", "http://172.16.0.86:8503"),
		CloudURL: getEnvOrDefault("LAUNCHER_CLOUD_URL", "https://lldtek-crm.streamlit.app"),
		Timeout:  getEnvDurationOrDefault("LAUNCHER_TIMEOUT", time.Second),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
