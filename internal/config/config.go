package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the resolved application configuration. The window constants
// are deliberately all tunable: the chunk margin and page look-ahead differ
// because chunk loads are cheap, and neither value is a behavioral contract.
type Config struct {
	// Theme name: "dark" (default) or "light".
	Theme string `mapstructure:"theme"`

	// FitMode is the default page fit: "contain", "cover", or "native".
	FitMode string `mapstructure:"fit_mode"`
	// DeviceWidthPx is the virtual device width pages are laid out against.
	DeviceWidthPx int `mapstructure:"device_width_px"`
	// PxPerRow maps virtual pixels to one terminal row.
	PxPerRow int `mapstructure:"px_per_row"`
	// DefaultAspect is the width/height ratio assumed for unmeasured pages.
	DefaultAspect float64 `mapstructure:"default_aspect"`

	// TallThreshold is the height/width ratio above which a page is chunked.
	TallThreshold float64 `mapstructure:"tall_threshold"`
	// ChunkHeightPx is the slice height for tall pages, in source pixels.
	ChunkHeightPx int `mapstructure:"chunk_height_px"`
	// ChunkMarginVH widens chunk visibility by this many viewport heights.
	ChunkMarginVH float64 `mapstructure:"chunk_margin_vh"`

	// LookAhead is how many pages past the visible window stay loadable.
	LookAhead int `mapstructure:"look_ahead"`
	// BehindMargin is how many pages before the window stay loadable.
	BehindMargin int `mapstructure:"behind_margin"`
	// PrefetchAhead is how many upcoming pages get byte prefetch.
	PrefetchAhead int `mapstructure:"prefetch_ahead"`
	// InitialBatch is the always-loaded leading batch of a fresh session.
	InitialBatch int `mapstructure:"initial_batch"`
	// VisibleFraction is the intersection fraction that counts as visible.
	VisibleFraction float64 `mapstructure:"visible_fraction"`
	// DwellMs debounces visibility events.
	DwellMs int `mapstructure:"dwell_ms"`
	// ScrollDeltaPx is the minimum scroll movement acted upon.
	ScrollDeltaPx int `mapstructure:"scroll_delta_px"`
	// SettleMs is how long after the last scroll event progress persists.
	SettleMs int `mapstructure:"settle_ms"`

	// DecodeWorkers bounds concurrent speculative decodes.
	DecodeWorkers int `mapstructure:"decode_workers"`
	// CacheBudgetMB bounds the in-memory page byte cache.
	CacheBudgetMB int `mapstructure:"cache_budget_mb"`

	// VolumeScrollEnabled turns the volume-as-button input bridge on.
	VolumeScrollEnabled bool `mapstructure:"volume_scroll_enabled"`
	// VolumeScrollSensitivity (10-100) maps to the scroll step size.
	VolumeScrollSensitivity int `mapstructure:"volume_scroll_sensitivity"`
	// VolumeLevelPath is the mixer shim file the input bridge polls.
	VolumeLevelPath string `mapstructure:"volume_level_path"`
}

// Load reads configuration from ~/.config/yomu/config.yaml (or TOML/JSON).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	configDir := configDirectory()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("YOMU")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is fine, use defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("theme", "dark")

	v.SetDefault("fit_mode", "contain")
	v.SetDefault("device_width_px", 800)
	v.SetDefault("px_per_row", 40)
	v.SetDefault("default_aspect", 0.7)

	v.SetDefault("tall_threshold", 4.0)
	v.SetDefault("chunk_height_px", 190)
	v.SetDefault("chunk_margin_vh", 1.0)

	v.SetDefault("look_ahead", 3)
	v.SetDefault("behind_margin", 2)
	v.SetDefault("prefetch_ahead", 5)
	v.SetDefault("initial_batch", 5)
	v.SetDefault("visible_fraction", 0.2)
	v.SetDefault("dwell_ms", 100)
	v.SetDefault("scroll_delta_px", 100)
	v.SetDefault("settle_ms", 400)

	v.SetDefault("decode_workers", 2)
	v.SetDefault("cache_budget_mb", 64)

	v.SetDefault("volume_scroll_enabled", false)
	v.SetDefault("volume_scroll_sensitivity", 50)
	v.SetDefault("volume_level_path", "")
}

// SaveFitMode writes the runtime fit-mode toggle back to the config file so
// the next session starts in the same mode. Best effort; callers log failures.
func SaveFitMode(mode string) error {
	dir := configDirectory()
	path := filepath.Join(dir, "config.yaml")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	v.Set("fit_mode", mode)
	return v.WriteConfigAs(path)
}

func configDirectory() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "yomu")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "yomu")
}
