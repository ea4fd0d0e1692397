package domain

// Config mirrors ~/.kidchat/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version" toml:"config_format_version"`
	DeviceID            string            `yaml:"device_id" toml:"device_id"`
	Preferences         Preferences       `yaml:"preferences" toml:"preferences"`
	Models              []ModelDefinition `yaml:"models" toml:"models"`
	Storage             StorageSettings   `yaml:"storage" toml:"storage"`
	Filter              FilterSettings    `yaml:"filter" toml:"filter"`
	Budget              BudgetSettings    `yaml:"budget" toml:"budget"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel   string `yaml:"default_model" toml:"default_model"`
	TimeoutSeconds int    `yaml:"timeout" toml:"timeout"`
}

// StorageSettings selects where device records and the activity log live.
type StorageSettings struct {
	Backend string `yaml:"backend" toml:"backend"`
	DataDir string `yaml:"data_dir" toml:"data_dir"`
}

// FilterSettings configures the keyword filter.
type FilterSettings struct {
	Placeholder string `yaml:"placeholder" toml:"placeholder"`
	SeedFile    string `yaml:"seed_file" toml:"seed_file"`
}

// BudgetSettings configures the defaults of a new device record.
type BudgetSettings struct {
	DefaultMinutes int `yaml:"default_minutes" toml:"default_minutes"`
}

// Storage backends
const (
	StorageBackendJSON   = "json"
	StorageBackendSQLite = "sqlite"
)
