package tracking

import "testing"

func TestDefaultConfig_Thresholds(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.GrowthThreshold != 0.10 {
		t.Errorf("Expected GrowthThreshold=0.10, got %v", cfg.GrowthThreshold)
	}
	if cfg.AreaPercentThreshold != 0.20 {
		t.Errorf("Expected AreaPercentThreshold=0.20, got %v", cfg.AreaPercentThreshold)
	}
	if cfg.ModelWidth != 640 || cfg.ModelHeight != 640 {
		t.Errorf("Expected 640x640 model space, got %dx%d", cfg.ModelWidth, cfg.ModelHeight)
	}
	if cfg.frameArea() != 409600 {
		t.Errorf("Expected frame area 409600, got %v", cfg.frameArea())
	}
}

func TestPresets_Ordering(t *testing.T) {
	presets := Presets()

	sensitive, relaxed, def := presets["sensitive"], presets["relaxed"], presets["default"]

	// Sensitive must trigger earlier than default, relaxed later
	if !(sensitive.GrowthThreshold < def.GrowthThreshold && def.GrowthThreshold < relaxed.GrowthThreshold) {
		t.Errorf("GrowthThreshold ordering broken: %v %v %v",
			sensitive.GrowthThreshold, def.GrowthThreshold, relaxed.GrowthThreshold)
	}
	if !(sensitive.AreaPercentThreshold < def.AreaPercentThreshold && def.AreaPercentThreshold < relaxed.AreaPercentThreshold) {
		t.Errorf("AreaPercentThreshold ordering broken: %v %v %v",
			sensitive.AreaPercentThreshold, def.AreaPercentThreshold, relaxed.AreaPercentThreshold)
	}
}

func TestPresets_BoundedMemory(t *testing.T) {
	for name, cfg := range Presets() {
		if cfg.MaxEntries <= 0 {
			t.Errorf("%s: MaxEntries=%d, want a bound", name, cfg.MaxEntries)
		}
		if cfg.StaleFrames <= 0 {
			t.Errorf("%s: StaleFrames=%d, want eviction", name, cfg.StaleFrames)
		}
	}
}
