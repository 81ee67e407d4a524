package session

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/photonlink/fimmgo/pkg/validation"
)

// Config holds everything a session needs to reach and prepare an
// engine instance.
type Config struct {
	Host        string  `yaml:"host" validate:"required"`
	Port        int     `yaml:"port" validate:"required,gt=0,lte=65535"`
	ProjectName string  `yaml:"project_name"`
	MaterialDB  string  `yaml:"material_db"`
	WorkingDir  string  `yaml:"working_dir"`
	Wavelength  float64 `yaml:"wavelength"`

	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DefaultConfig returns a config pointed at a local engine.
func DefaultConfig() Config {
	return Config{
		Host:         "127.0.0.1",
		Port:         5101,
		ProjectName:  "fimmgo",
		Wavelength:   1.55,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 10 * time.Second,
	}
}

// LoadConfig reads a YAML config file, filling omitted fields from the
// defaults, and validates the result.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var structValidator = validator.New()

// Validate checks the config's struct tags and cross-field rules.
func (c Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		return fmt.Errorf("session config: %w", err)
	}
	return validation.NewConfigValidator("session").
		Required("host", c.Host).
		RangeInt("port", c.Port, 1, 65535).
		PositiveFloat("wavelength", c.Wavelength).
		MinDuration("dial_timeout", c.DialTimeout, time.Second).
		MinDuration("read_timeout", c.ReadTimeout, time.Second).
		MinDuration("write_timeout", c.WriteTimeout, time.Second).
		Validate()
}

// Addr returns the engine's dial address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
