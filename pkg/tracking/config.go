package tracking

// Config holds the tunable parameters for approach classification.
type Config struct {
	// Classification
	GrowthThreshold      float64 // Frame-to-frame area growth that counts as approaching (0.10 = 10%)
	AreaPercentThreshold float64 // Share of the frame a box must exceed to count as approaching

	// Model input space the areas are measured in
	ModelWidth  int
	ModelHeight int

	// Eviction
	MaxEntries  int // Upper bound on remembered ids (0 = unbounded)
	StaleFrames int // Forget an id after this many frames without a sighting (0 = never)
}

// DefaultConfig returns the recommended configuration for a 640x640 model.
func DefaultConfig() Config {
	return Config{
		GrowthThreshold:      0.10,
		AreaPercentThreshold: 0.20,

		ModelWidth:  640,
		ModelHeight: 640,

		MaxEntries:  1024,
		StaleFrames: 150, // ~5 seconds at 30 FPS
	}
}

// SensitiveConfig warns earlier, for slow vehicles or narrow lenses.
func SensitiveConfig() Config {
	cfg := DefaultConfig()
	cfg.GrowthThreshold = 0.06
	cfg.AreaPercentThreshold = 0.12
	return cfg
}

// RelaxedConfig warns later, for busy streets with lots of parked traffic.
func RelaxedConfig() Config {
	cfg := DefaultConfig()
	cfg.GrowthThreshold = 0.18
	cfg.AreaPercentThreshold = 0.30
	return cfg
}

// Presets returns the named configurations.
func Presets() map[string]Config {
	return map[string]Config{
		"default":   DefaultConfig(),
		"sensitive": SensitiveConfig(),
		"relaxed":   RelaxedConfig(),
	}
}

// frameArea returns the model input area in square pixels.
func (c Config) frameArea() float64 {
	return float64(c.ModelWidth) * float64(c.ModelHeight)
}
