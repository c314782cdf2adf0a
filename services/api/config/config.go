package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultDatasetPath  = "educacion_basica.csv"
	defaultDatasetTable = "educacion_basica"
	defaultFetchTimeout = 30 * time.Second
)

// SourceKind names where the dataset is read from.
type SourceKind string

const (
	SourceFile     SourceKind = "file"
	SourceURL      SourceKind = "url"
	SourceDatabase SourceKind = "database"
)

// MapView is the initial map position.
type MapView struct {
	Lat  float64 `yaml:"lat" json:"lat"`
	Lon  float64 `yaml:"lon" json:"lon"`
	Zoom int     `yaml:"zoom" json:"zoom"`
}

// Presentation holds display settings that can be overridden from CONFIG_FILE.
type Presentation struct {
	Legend             map[string]string `yaml:"legend"`
	Map                MapView           `yaml:"map"`
	DefaultDepartments int               `yaml:"default_departments"`
}

// Config holds environment-driven settings for the REST API.
type Config struct {
	Port         int
	BearerToken  string
	LogLevel     string
	DatasetPath  string
	DatasetURL   string
	DatabaseURL  string
	DatasetTable string
	Watch        bool
	FetchTimeout time.Duration
	ConfigFile   string
	Presentation Presentation
}

// Load reads configuration from environment variables (optionally .env), then applies
// the YAML file named by CONFIG_FILE, if any.
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:         8080,
		LogLevel:     "info",
		DatasetPath:  defaultDatasetPath,
		DatasetTable: defaultDatasetTable,
		FetchTimeout: defaultFetchTimeout,
		Presentation: Presentation{
			Legend:             map[string]string{"Alta": "green", "Media": "orange", "Baja": "red"},
			Map:                MapView{Lat: 4.6097, Lon: -74.0818, Zoom: 6},
			DefaultDepartments: 3,
		},
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if path := strings.TrimSpace(os.Getenv("DATASET_PATH")); path != "" {
		cfg.DatasetPath = path
	}
	cfg.DatasetURL = strings.TrimSpace(os.Getenv("DATASET_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if table := strings.TrimSpace(os.Getenv("DATASET_TABLE")); table != "" {
		cfg.DatasetTable = table
	}

	if v := strings.TrimSpace(os.Getenv("DATASET_WATCH")); v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid DATASET_WATCH: %w", err)
		}
		cfg.Watch = watch
	}

	if v := strings.TrimSpace(os.Getenv("DATASET_FETCH_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid DATASET_FETCH_TIMEOUT: %s", v)
		}
		cfg.FetchTimeout = d
	}

	if n := os.Getenv("API_DEFAULT_DEPARTMENTS"); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v >= 0 {
			cfg.Presentation.DefaultDepartments = v
		} else {
			return cfg, fmt.Errorf("invalid API_DEFAULT_DEPARTMENTS: %s", n)
		}
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	cfg.ConfigFile = strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if cfg.ConfigFile != "" {
		if err := applyFile(&cfg, cfg.ConfigFile); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", cfg.ConfigFile, err)
		}
	}

	return cfg, nil
}

// Source reports which dataset source is configured: DATABASE_URL wins over DATASET_URL,
// which wins over DATASET_PATH.
func (c Config) Source() SourceKind {
	switch {
	case c.DatabaseURL != "":
		return SourceDatabase
	case c.DatasetURL != "":
		return SourceURL
	default:
		return SourceFile
	}
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type fileConfig struct {
	Legend             map[string]string `yaml:"legend"`
	Map                *MapView          `yaml:"map"`
	DefaultDepartments *int              `yaml:"default_departments"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("empty config file")
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if len(fc.Legend) > 0 {
		cfg.Presentation.Legend = fc.Legend
	}
	if fc.Map != nil {
		if fc.Map.Zoom <= 0 {
			return fmt.Errorf("map zoom must be positive (got %d)", fc.Map.Zoom)
		}
		cfg.Presentation.Map = *fc.Map
	}
	if fc.DefaultDepartments != nil {
		if *fc.DefaultDepartments < 0 {
			return errors.New("default_departments must not be negative")
		}
		cfg.Presentation.DefaultDepartments = *fc.DefaultDepartments
	}
	return nil
}
