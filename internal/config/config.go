package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Forecast ForecastConfig `yaml:"forecast" envconfig:"FORECAST"`
	Input    InputConfig    `yaml:"input" envconfig:"INPUT"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// PipelineConfig contains window sizes and the overall run timeout
type PipelineConfig struct {
	TTMWeeks         int           `yaml:"ttm_weeks" envconfig:"TTM_WEEKS" validate:"min=1"`
	LYWeeks          int           `yaml:"ly_weeks" envconfig:"LY_WEEKS" validate:"min=1"`
	OperationTimeout time.Duration `yaml:"operation_timeout" envconfig:"OPERATION_TIMEOUT" validate:"min=1s"`
}

// ForecastConfig contains the per-franchise forecasting stage settings
type ForecastConfig struct {
	Enabled        bool          `yaml:"enabled" envconfig:"ENABLED"`
	HorizonDays    int           `yaml:"horizon_days" envconfig:"HORIZON_DAYS" validate:"min=0"`
	MaxConcurrency int           `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" validate:"min=1"`
	FitTimeout     time.Duration `yaml:"fit_timeout" envconfig:"FIT_TIMEOUT" validate:"min=1s"`
}

// InputConfig describes the snapshot to ingest and how its columns map
// onto the canonical schema
type InputConfig struct {
	WorkbookPath string       `yaml:"workbook_path" envconfig:"WORKBOOK_PATH" validate:"required"`
	SheetName    string       `yaml:"sheet_name" envconfig:"SHEET_NAME" validate:"required"`
	Schema       SchemaConfig `yaml:"schema" envconfig:"SCHEMA"`
	RemapRules   []RemapRule  `yaml:"remap_rules" ignored:"true"`
}

// SchemaConfig maps each canonical field to the list of accepted input
// header spellings. Matching is case-insensitive after trimming and
// space-to-underscore normalization. A required field with no match, or
// two distinct input columns matching the same field, is a schema error.
type SchemaConfig struct {
	WeekColumns      []string `yaml:"week_columns" envconfig:"WEEK_COLUMNS" validate:"min=1"`
	FranchiseColumns []string `yaml:"franchise_columns" envconfig:"FRANCHISE_COLUMNS" validate:"min=1"`
	UnitsColumns     []string `yaml:"units_columns" envconfig:"UNITS_COLUMNS" validate:"min=1"`
	SalesColumns     []string `yaml:"sales_columns" envconfig:"SALES_COLUMNS" validate:"min=1"`
	YearColumns      []string `yaml:"year_columns" envconfig:"YEAR_COLUMNS"`
}

// RemapRule rewrites a franchise label when the raw value contains the
// given substring. Rules are evaluated in order, first match wins.
type RemapRule struct {
	Contains    string `yaml:"contains" validate:"required"`
	Replacement string `yaml:"replacement" validate:"required"`
}

// OutputConfig controls where and how the output tables are written
type OutputConfig struct {
	Dir           string `yaml:"dir" envconfig:"DIR" validate:"required"`
	WorkbookName  string `yaml:"workbook_name" envconfig:"WORKBOOK_NAME"`
	WriteCSV      bool   `yaml:"write_csv" envconfig:"WRITE_CSV"`
	WriteWorkbook bool   `yaml:"write_workbook" envconfig:"WRITE_WORKBOOK"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Default returns the configuration used when nothing is overridden.
// Window sizes and the forecast horizon match the reporting defaults
// (52/52 weeks, 365-day horizon); schema spellings cover the known
// variants of the snapshot headers.
func Default() Config {
	return Config{
		Pipeline: PipelineConfig{
			TTMWeeks:         52,
			LYWeeks:          52,
			OperationTimeout: 30 * time.Minute,
		},
		Forecast: ForecastConfig{
			Enabled:        true,
			HorizonDays:    365,
			MaxConcurrency: 4,
			FitTimeout:     30 * time.Second,
		},
		Input: InputConfig{
			WorkbookPath: "Biolage Sales Data.xlsx",
			SheetName:    "Raw Data_Cleaned",
			Schema: SchemaConfig{
				WeekColumns:      []string{"Week End", "Week_End", "Week", "Date"},
				FranchiseColumns: []string{"Franchise"},
				UnitsColumns:     []string{"ST_Units", "Units"},
				SalesColumns:     []string{"ST_Retail_$", "ST_Retail", "Sales", "Sales_Amount"},
				YearColumns:      []string{"Year"},
			},
			RemapRules: []RemapRule{
				{Contains: "Blowdry Cream", Replacement: "Styling"},
				{Contains: "Prime Day", Replacement: "Biolage - Brand"},
			},
		},
		Output: OutputConfig{
			Dir:           "reports",
			WorkbookName:  "Sales Processed.xlsx",
			WriteCSV:      true,
			WriteWorkbook: true,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/salespipeline.log",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and SALES_* environment variables, in increasing precedence.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("SALES", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays configuration from a YAML file
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// Validate checks structural constraints on the configuration
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Output.WriteWorkbook && c.Output.WorkbookName == "" {
		return fmt.Errorf("output workbook name required when workbook output is enabled")
	}

	return nil
}
