package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Apportionment policies for a shipping charge shared by several sale legs.
const (
	ShippingPolicyFirstLeg   = "first-leg-absorbs-all"
	ShippingPolicyEqualSplit = "equal-split"
)

const (
	DefaultTrailingWindowDays = 30
	DefaultLeadTimeDays       = 20
	DefaultMaxDaysOfSupply    = 365
	DefaultSalesChannel       = "Mercado Libre"
	DefaultBalanceTolerance   = 1e-6
	DefaultRunSchedule        = "0 6 * * *"
)

type Paths struct {
	InputDir   string `yaml:"input_dir"`
	ArchiveDir string `yaml:"archive_dir"`
	StateDir   string `yaml:"state_dir"`
	ReportDir  string `yaml:"report_dir"`
}

// Sources lists the filename prefixes each extract is discovered by.
type Sources struct {
	ActivityPrefix    string `yaml:"activity_prefix"`
	SettlementPrefix  string `yaml:"settlement_prefix"`
	SalesPrefix       string `yaml:"sales_prefix"`
	StockRemotePrefix string `yaml:"stock_remote_prefix"`
	StockLocalPrefix  string `yaml:"stock_local_prefix"`
}

type Business struct {
	ShippingPolicy     string   `yaml:"shipping_policy"`
	TrailingWindowDays int      `yaml:"trailing_window_days"`
	LeadTimeDays       int      `yaml:"lead_time_days"`
	MaxDaysOfSupply    float64  `yaml:"max_days_of_supply"`
	DefaultChannel     string   `yaml:"default_channel"`
	ExcludedStatuses   []string `yaml:"excluded_statuses"`
	BalanceTolerance   float64  `yaml:"balance_tolerance"`
}

type Scheduler struct {
	RunOnce  bool   `yaml:"run_once"`
	Schedule string `yaml:"schedule"` // cron expression, used when run_once is false
	TimeZone string `yaml:"time_zone"`
}

type Logger struct {
	FolderPath    string `yaml:"folder_path"`
	MaxFileMB     int    `yaml:"max_file_mb"`
	RetentionDays int    `yaml:"retention_days"`
}

type Config struct {
	Paths     Paths     `yaml:"paths"`
	Sources   Sources   `yaml:"sources"`
	Business  Business  `yaml:"business"`
	Scheduler Scheduler `yaml:"scheduler"`
	Logger    Logger    `yaml:"logger"`
}

// Default returns the configuration used when config.yaml omits a field.
// Filename prefixes match the extracts the marketplace actually exports.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:   "./BI",
			ArchiveDir: "./BI/archive",
			StateDir:   "./state",
			ReportDir:  "./reports",
		},
		Sources: Sources{
			ActivityPrefix:    "activities-collection",
			SettlementPrefix:  "settlement-report",
			SalesPrefix:       "Ventas_CO",
			StockRemotePrefix: "Stock_general_Full",
			StockLocalPrefix:  "Stock_local",
		},
		Business: Business{
			ShippingPolicy:     ShippingPolicyFirstLeg,
			TrailingWindowDays: DefaultTrailingWindowDays,
			LeadTimeDays:       DefaultLeadTimeDays,
			MaxDaysOfSupply:    DefaultMaxDaysOfSupply,
			DefaultChannel:     DefaultSalesChannel,
			ExcludedStatuses:   []string{"cancelled", "rejected", "pending"},
			BalanceTolerance:   DefaultBalanceTolerance,
		},
		Scheduler: Scheduler{
			RunOnce:  true,
			Schedule: DefaultRunSchedule,
			TimeZone: "America/Bogota",
		},
		Logger: Logger{
			FolderPath:    "./logs",
			MaxFileMB:     20,
			RetentionDays: 30,
		},
	}
}

// Load reads the YAML config at path, layered over Default. A missing file is
// not an error: defaults plus env overrides apply.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, cfg.validate()
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyEnv(&cfg)
	return cfg, cfg.validate()
}

// applyEnv overrides deploy-specific settings from the environment
// (SELLERLEDGER_* variables, usually loaded from .env).
func applyEnv(cfg *Config) {
	if v := os.Getenv("SELLERLEDGER_INPUT_DIR"); v != "" {
		cfg.Paths.InputDir = v
	}
	if v := os.Getenv("SELLERLEDGER_ARCHIVE_DIR"); v != "" {
		cfg.Paths.ArchiveDir = v
	}
	if v := os.Getenv("SELLERLEDGER_STATE_DIR"); v != "" {
		cfg.Paths.StateDir = v
	}
	if v := os.Getenv("SELLERLEDGER_REPORT_DIR"); v != "" {
		cfg.Paths.ReportDir = v
	}
	if v := os.Getenv("SELLERLEDGER_RUN_ONCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scheduler.RunOnce = b
		}
	}
	if v := os.Getenv("SELLERLEDGER_SCHEDULE"); v != "" {
		cfg.Scheduler.Schedule = v
	}
}

func (c Config) validate() error {
	switch c.Business.ShippingPolicy {
	case ShippingPolicyFirstLeg, ShippingPolicyEqualSplit:
	default:
		return fmt.Errorf("invalid shipping_policy %q (want %q or %q)",
			c.Business.ShippingPolicy, ShippingPolicyFirstLeg, ShippingPolicyEqualSplit)
	}
	if c.Business.TrailingWindowDays <= 0 {
		return fmt.Errorf("trailing_window_days must be positive, got %d", c.Business.TrailingWindowDays)
	}
	if c.Business.LeadTimeDays <= 0 {
		return fmt.Errorf("lead_time_days must be positive, got %d", c.Business.LeadTimeDays)
	}
	if c.Business.BalanceTolerance < 0 {
		return fmt.Errorf("balance_tolerance must not be negative, got %g", c.Business.BalanceTolerance)
	}
	return nil
}

// IsExcludedStatus reports whether a leg status belongs in the rejected-sales
// archive instead of the main ledger.
func (c Config) IsExcludedStatus(status string) bool {
	for _, s := range c.Business.ExcludedStatuses {
		if s == status {
			return true
		}
	}
	return false
}
