package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Business.ShippingPolicy != ShippingPolicyFirstLeg {
		t.Errorf("shipping policy = %q", cfg.Business.ShippingPolicy)
	}
	if cfg.Business.TrailingWindowDays != DefaultTrailingWindowDays {
		t.Errorf("trailing window = %d", cfg.Business.TrailingWindowDays)
	}
	if cfg.Sources.ActivityPrefix != "activities-collection" {
		t.Errorf("activity prefix = %q", cfg.Sources.ActivityPrefix)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
business:
  shipping_policy: equal-split
  trailing_window_days: 45
  lead_time_days: 10
scheduler:
  run_once: false
  schedule: "0 7 * * *"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Business.ShippingPolicy != ShippingPolicyEqualSplit {
		t.Errorf("shipping policy = %q", cfg.Business.ShippingPolicy)
	}
	if cfg.Business.TrailingWindowDays != 45 {
		t.Errorf("trailing window = %d", cfg.Business.TrailingWindowDays)
	}
	if cfg.Scheduler.RunOnce {
		t.Errorf("run_once not overridden")
	}
	// untouched fields keep defaults
	if cfg.Business.DefaultChannel != DefaultSalesChannel {
		t.Errorf("default channel = %q", cfg.Business.DefaultChannel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SELLERLEDGER_INPUT_DIR", "/srv/extracts")
	t.Setenv("SELLERLEDGER_RUN_ONCE", "false")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.InputDir != "/srv/extracts" {
		t.Errorf("input dir = %q", cfg.Paths.InputDir)
	}
	if cfg.Scheduler.RunOnce {
		t.Errorf("run_once env override not applied")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"bad shipping policy", func(c *Config) { c.Business.ShippingPolicy = "cheapest" }, true},
		{"zero trailing window", func(c *Config) { c.Business.TrailingWindowDays = 0 }, true},
		{"negative lead time", func(c *Config) { c.Business.LeadTimeDays = -1 }, true},
		{"negative tolerance", func(c *Config) { c.Business.BalanceTolerance = -0.1 }, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.mutate(&cfg)
			err := cfg.validate()
			if (err != nil) != c.wantErr {
				t.Errorf("validate() = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestIsExcludedStatus(t *testing.T) {
	cfg := Default()
	for _, s := range []string{"cancelled", "rejected", "pending"} {
		if !cfg.IsExcludedStatus(s) {
			t.Errorf("%q should be excluded", s)
		}
	}
	for _, s := range []string{"approved", "refunded", ""} {
		if cfg.IsExcludedStatus(s) {
			t.Errorf("%q should not be excluded", s)
		}
	}
}
