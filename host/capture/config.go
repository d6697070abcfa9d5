package capture

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

const (
	ConfigDir          = ".adccap"
	ConfigFile         = "config.yaml"
	DefaultPort        = "/dev/ttyACM0"
	DefaultBaud        = 921600
	DefaultReadTimeout = 100
	DefaultDBFile      = "captures.db"
	DefaultLogLevel    = "info"
)

type ErrConfigFileExists struct {
	Path string
}

func (e ErrConfigFileExists) Error() string {
	return fmt.Sprintf("config file %s already exists", e.Path)
}

type Config struct {
	Port        string `json:"port"`
	Baud        int    `json:"baud"`
	ReadTimeout int    `json:"read_timeout_ms"`
	DBPath      string `json:"db_path"`
	LogLevel    string `json:"log_level"`

	filepath string
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func NewDefaultConfig() *Config {
	path := DefaultConfigPath()
	return &Config{
		Port:        DefaultPort,
		Baud:        DefaultBaud,
		ReadTimeout: DefaultReadTimeout,
		DBPath:      filepath.Join(filepath.Dir(path), DefaultDBFile),
		LogLevel:    DefaultLogLevel,
		filepath:    path,
	}
}

// Path is where Load reads and Persist writes.
func (c *Config) Path() string { return c.filepath }

func (c *Config) SetPath(p string) { c.filepath = p }

// Load overlays the file onto c. A missing file is not an error.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.filepath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.filepath), 0755); err != nil {
		return err
	}
	return os.WriteFile(c.filepath, data, 0644)
}

// PortConfig returns the serial settings of c.
func (c *Config) PortConfig() *PortConfig {
	return &PortConfig{Device: c.Port, Baud: c.Baud, ReadTimeout: c.ReadTimeout}
}
