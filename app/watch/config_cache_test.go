package watch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
query: "gaming laptop"

settings:
  enabled: true
  min_products: 10
  max_pages: 5
  scrape_interval: 43200

alerts:
  price_drop_percent: 15
  value_ratio_min: 9.5
`

	err := os.WriteFile(filepath.Join(tempDir, "laptops.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 config, got %d", configCache.GetConfigCount())
	}

	config, err := configCache.GetConfig("laptops")
	if err != nil {
		t.Fatal(err)
	}

	if config.Name != "laptops" {
		t.Errorf("Expected name 'laptops', got '%s'", config.Name)
	}
	if config.Query != "gaming laptop" {
		t.Errorf("Expected query 'gaming laptop', got '%s'", config.Query)
	}
	if config.Settings.MinProducts != 10 {
		t.Errorf("Expected min products 10, got %d", config.Settings.MinProducts)
	}
	if config.Settings.MaxPages != 5 {
		t.Errorf("Expected max pages 5, got %d", config.Settings.MaxPages)
	}
	if config.Alerts.PriceDropPercent != 15 {
		t.Errorf("Expected price drop percent 15, got %v", config.Alerts.PriceDropPercent)
	}
	if config.Alerts.ValueRatioMin != 9.5 {
		t.Errorf("Expected value ratio min 9.5, got %v", config.Alerts.ValueRatioMin)
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	content := `
query: "smartphone"
settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "phones.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("phones")
	if err != nil {
		t.Fatal(err)
	}

	if config.Settings.MinProducts != 5 {
		t.Errorf("Expected default min products 5, got %d", config.Settings.MinProducts)
	}
	if config.Settings.MaxPages != 3 {
		t.Errorf("Expected default max pages 3, got %d", config.Settings.MaxPages)
	}
	if config.Settings.ScrapeInterval != 21600 {
		t.Errorf("Expected default scrape interval 21600, got %d", config.Settings.ScrapeInterval)
	}
	if config.Alerts.PriceDropPercent != 0 {
		t.Errorf("Expected zero price drop override, got %v", config.Alerts.PriceDropPercent)
	}
}

func TestConfigCacheRejectsMissingQuery(t *testing.T) {
	tempDir := t.TempDir()

	content := `
settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "broken.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err == nil {
		t.Error("Expected error for config without query")
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache("/nonexistent/watches")

	if err := configCache.Run(); err != nil {
		t.Errorf("Expected missing directory to be tolerated, got %v", err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheGetEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()

	enabled := `
query: "laptop"
settings:
  enabled: true
`
	disabled := `
query: "tablet"
settings:
  enabled: false
`

	if err := os.WriteFile(filepath.Join(tempDir, "on.yml"), []byte(enabled), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "off.yml"), []byte(disabled), 0644); err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	enabledConfigs := configCache.GetEnabledConfigs()
	if len(enabledConfigs) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabledConfigs))
	}
	if _, ok := enabledConfigs["on"]; !ok {
		t.Error("Expected 'on' watch to be enabled")
	}
}
