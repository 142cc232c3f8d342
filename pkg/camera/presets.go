package camera

// Preset names for common configurations
const (
	PresetDefault  = "default"
	PresetVGA      = "vga"
	Preset720p     = "720p"
	Preset1080p    = "1080p"
	PresetFront    = "front"
	PresetPortrait = "portrait"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault:  DefaultConfig(),
		PresetVGA:      VGAConfig(),
		Preset720p:     HD720Config(),
		Preset1080p:    HD1080Config(),
		PresetFront:    FrontConfig(),
		PresetPortrait: PortraitConfig(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{
		PresetDefault,
		PresetVGA,
		Preset720p,
		Preset1080p,
		PresetFront,
		PresetPortrait,
	}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// VGAConfig returns 640x480, the cheapest to preprocess.
func VGAConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}

// HD720Config returns 720p HD configuration.
func HD720Config() Config {
	return DefaultConfig()
}

// HD1080Config returns 1080p at a reduced frame rate.
func HD1080Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1920
	cfg.Height = 1080
	cfg.FPS = 15
	return cfg
}

// FrontConfig returns the front (selfie) camera, mirrored.
func FrontConfig() Config {
	cfg := DefaultConfig()
	cfg.Device = "1"
	cfg.Facing = FacingFront
	return cfg
}

// PortraitConfig returns a sensor mounted sideways, rotated upright.
func PortraitConfig() Config {
	cfg := DefaultConfig()
	cfg.Rotation = 90
	return cfg
}
