package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults carried over from the conversion scripts the dataset layout was designed for.
const (
	DefaultOutputRoot   = "data"
	DefaultConverterDir = "../webgl-loader/obj2utf8/Release"
	DefaultConverter    = "obj2utf8"
	DefaultImageBaseURL = "http://dovahkiin.stanford.edu/SceneModeling/Database/SceneImagesB"
	DefaultLogFile      = "log.txt"
	DefaultEncoding     = "utf-8"

	// DefaultMaxOBJSize is the byte size at which a source mesh counts as oversized.
	DefaultMaxOBJSize int64 = 50 * 1000 * 1000
)

// Config holds every path, host and threshold used by the conversion pipeline.
type Config struct {
	SourceRoot string `yaml:"source_root"`
	OutputRoot string `yaml:"output_root"`

	// ConverterDir is the staging directory the external converter runs in.
	ConverterDir     string   `yaml:"converter_dir"`
	ConverterCommand string   `yaml:"converter_command"`
	ConverterArgs    []string `yaml:"converter_args"`

	ImageBaseURL           string  `yaml:"image_base_url"`
	ImageRequestsPerSecond float64 `yaml:"image_requests_per_second"`

	MaxOBJSize    int64  `yaml:"max_obj_size"`
	LogFile       string `yaml:"log_file"`
	TableEncoding string `yaml:"table_encoding"`
	MetricsFile   string `yaml:"metrics_file"`
}

// Default returns the configuration used when no overlay file is given.
func Default() Config {
	return Config{
		OutputRoot:       DefaultOutputRoot,
		ConverterDir:     DefaultConverterDir,
		ConverterCommand: DefaultConverter,
		ImageBaseURL:     DefaultImageBaseURL,
		MaxOBJSize:       DefaultMaxOBJSize,
		LogFile:          DefaultLogFile,
		TableEncoding:    DefaultEncoding,
	}
}

// Load reads a YAML file and overlays it onto Default. Keys absent from the
// file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SourceRoot) == "" {
		errs = append(errs, errors.New("source root is required"))
	}
	if c.OutputRoot == "" {
		errs = append(errs, errors.New("output root is required"))
	}
	if c.ConverterDir == "" || c.ConverterCommand == "" {
		errs = append(errs, errors.New("converter dir and command are required"))
	}
	if c.MaxOBJSize <= 0 {
		errs = append(errs, fmt.Errorf("max obj size must be positive, got %d", c.MaxOBJSize))
	}
	if c.ImageRequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("image requests per second must not be negative, got %v", c.ImageRequestsPerSecond))
	}
	return errors.Join(errs...)
}
