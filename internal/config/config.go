// Package config loads the emulator's optional YAML configuration file.
// Command-line flags given explicitly override values read here.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type CANConfig struct {
	Driver    string `yaml:"driver"`
	Interface string `yaml:"interface"`
}

type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

type ButtonsConfig struct {
	Enabled bool           `yaml:"enabled"`
	Chip    string         `yaml:"chip"`
	Lines   map[string]int `yaml:"lines"`
}

type Config struct {
	Model       string        `yaml:"model"`
	LogLevel    int           `yaml:"log"`
	CAN         CANConfig     `yaml:"can"`
	Redis       RedisConfig   `yaml:"redis"`
	Serial      SerialConfig  `yaml:"serial"`
	Buttons     ButtonsConfig `yaml:"buttons"`
	Tick        time.Duration `yaml:"tick"`
	Verbose     bool          `yaml:"verbose"`
	LogInterval time.Duration `yaml:"log-interval"`
	Stdin       bool          `yaml:"stdin"`
}

func Default() Config {
	return Config{
		Model:    "mustang",
		LogLevel: 3,
		CAN: CANConfig{
			Driver:    "brutella",
			Interface: "can0",
		},
		Redis: RedisConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    6379,
		},
		Serial: SerialConfig{
			Baud: 115200,
		},
		Buttons: ButtonsConfig{
			Chip: "gpiochip0",
		},
		Tick:        time.Millisecond,
		LogInterval: 100 * time.Millisecond,
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("model must not be empty")
	}
	if c.LogLevel < 0 || c.LogLevel > 4 {
		return fmt.Errorf("log level %d out of range 0-4", c.LogLevel)
	}
	switch strings.ToLower(c.CAN.Driver) {
	case "brutella", "einride", "none":
	default:
		return fmt.Errorf("unknown can.driver %q", c.CAN.Driver)
	}
	if c.Redis.Enabled && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		return fmt.Errorf("redis.port %d out of range", c.Redis.Port)
	}
	if c.Serial.Baud < 0 {
		return fmt.Errorf("serial.baud %d must not be negative", c.Serial.Baud)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick %s must be positive", c.Tick)
	}
	if c.LogInterval < 0 {
		return fmt.Errorf("log-interval %s must not be negative", c.LogInterval)
	}
	return nil
}
