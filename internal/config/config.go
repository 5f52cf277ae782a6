package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rook-computer/pipanel/internal/buttons"
	"github.com/rook-computer/pipanel/internal/control"
)

const envPrefix = "PIPANEL_"

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Input selects the button driver.
	Input string `koanf:"input" validate:"required,oneof=buttonshim gpio keyboard none"`

	// Display selects the display device.
	Display string `koanf:"display" validate:"required,oneof=ssd1306 fbdev none"`

	// I2CBus names the bus for the Button SHIM and the OLED; empty picks the first one.
	I2CBus string `koanf:"i2c_bus"`

	DisplayWidth      int    `koanf:"display_width" validate:"gte=8,lte=4096"`
	DisplayHeight     int    `koanf:"display_height" validate:"gte=8,lte=4096"`
	DisplaySequential bool   `koanf:"display_sequential"`
	FBDevice          string `koanf:"fb_device" validate:"required"`

	// FontPath is an optional TrueType font; the embedded Go Mono is used otherwise.
	FontPath string  `koanf:"font_path"`
	FontSize float64 `koanf:"font_size" validate:"gt=0,lte=72"`

	StatsURL        string        `koanf:"stats_url" validate:"required,url"`
	StatsToken      string        `koanf:"stats_token"`
	StatsTimeout    time.Duration `koanf:"stats_timeout" validate:"gt=0"`
	StatsRetryPause time.Duration `koanf:"stats_retry_pause" validate:"gte=0"`
	StatsHold       time.Duration `koanf:"stats_hold" validate:"gt=0"`

	PiholeCommand string `koanf:"pihole_command" validate:"required"`
	UseSudo       bool   `koanf:"use_sudo"`

	// Brightness is the APA102 global brightness, 0..31.
	Brightness uint8 `koanf:"brightness" validate:"lte=31"`

	// GPIOPins are the pin names for buttons A..E when Input is "gpio".
	GPIOPins []string `koanf:"gpio_pins" validate:"max=5,dive,required"`

	// Button bindings; empty leaves a button unbound.
	ButtonA string `koanf:"button_a" validate:"omitempty,action"`
	ButtonB string `koanf:"button_b" validate:"omitempty,action"`
	ButtonC string `koanf:"button_c" validate:"omitempty,action"`
	ButtonD string `koanf:"button_d" validate:"omitempty,action"`
	ButtonE string `koanf:"button_e" validate:"omitempty,action"`
}

// Defaults match a Pi with a Button SHIM and a 128x32 OLED on I2C.
func Defaults() AppConfig {
	return AppConfig{
		Env:             "prod",
		LogLevel:        "info",
		Input:           "buttonshim",
		Display:         "ssd1306",
		DisplayWidth:    128,
		DisplayHeight:   32,
		FBDevice:        "/dev/fb0",
		FontSize:        8,
		StatsURL:        "http://localhost/admin/api.php",
		StatsTimeout:    400 * time.Millisecond,
		StatsRetryPause: time.Second,
		StatsHold:       10 * time.Second,
		PiholeCommand:   "pihole",
		Brightness:      15,
		GPIOPins:        []string{"GPIO5", "GPIO6", "GPIO13", "GPIO19", "GPIO26"},
		ButtonA:         "disable:3s",
		ButtonB:         "disable:1800s",
		ButtonC:         "stats",
		ButtonD:         "suspend",
		ButtonE:         "enable",
	}
}

// envLoader loads environment variables with the prefix "PIPANEL_",
// lowercased with the prefix removed. Tests swap it out.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil)
}

var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(Defaults(), "koanf"), nil)
}

// registerValidation adds the custom tags used by AppConfig.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("action", func(fl validator.FieldLevel) bool {
		_, err := control.ParseAction(fl.Field().String())
		return err == nil
	})
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}
	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}

// Bindings maps each bound button to its action.
func (c *AppConfig) Bindings() (map[buttons.Button]control.Action, error) {
	out := make(map[buttons.Button]control.Action, len(buttons.All))
	for i, s := range []string{c.ButtonA, c.ButtonB, c.ButtonC, c.ButtonD, c.ButtonE} {
		if strings.TrimSpace(s) == "" {
			continue
		}
		a, err := control.ParseAction(s)
		if err != nil {
			return nil, fmt.Errorf("button %s: %w", buttons.All[i], err)
		}
		out[buttons.All[i]] = a
	}
	return out, nil
}
