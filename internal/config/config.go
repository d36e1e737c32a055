// Package config loads and validates the scanner's runtime configuration.
// Per spec §9's guidance ("dynamic configuration objects → enumerated
// config with validated fields"), this is a closed struct, not a free-form
// map — unknown GPCAT_* environment keys are rejected at startup.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Config holds every recognized scanner setting, per spec §6.
type Config struct {
	WorkerThreads  int
	WorkerProcesses int
	BatchSize      int
	QueueMaxSize   int
	UseExiftool    bool
	UseFFProbe     bool
	LogLevel       string
	LogFormat      string
}

// recognizedKeys is the closed set of GPCAT_* environment variables. Any
// other GPCAT_*-prefixed variable present in the environment is a fatal
// configuration error.
var recognizedKeys = map[string]bool{
	"GPCAT_WORKER_THREADS":   true,
	"GPCAT_WORKER_PROCESSES": true,
	"GPCAT_BATCH_SIZE":       true,
	"GPCAT_QUEUE_MAXSIZE":    true,
	"GPCAT_USE_EXIFTOOL":     true,
	"GPCAT_USE_FFPROBE":      true,
	"GPCAT_LOG_LEVEL":        true,
	"GPCAT_LOG_FORMAT":       true,
}

// Default returns the baseline configuration before any environment
// overrides are applied.
func Default() Config {
	cores := runtime.NumCPU()
	workerProcesses := int(float64(cores) * 0.75)
	if workerProcesses < 1 {
		workerProcesses = 1
	}
	return Config{
		WorkerThreads:   cores * 2,
		WorkerProcesses: workerProcesses,
		BatchSize:       100,
		QueueMaxSize:    1000,
		UseExiftool:     true,
		UseFFProbe:      false,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// FromEnviron builds a Config starting from Default() and overriding with
// any recognized GPCAT_* variables found in environ (the os.Environ()
// format, "KEY=VALUE"). It returns an error naming the first unrecognized
// GPCAT_* key or the first invalid value.
func FromEnviron(environ []string) (Config, error) {
	cfg := Default()

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "GPCAT_") {
			continue
		}
		if !recognizedKeys[key] {
			return Config{}, fmt.Errorf("config: unrecognized environment key %s", key)
		}
		if err := cfg.applyEnv(key, value); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads configuration from the current process environment.
func Load() (Config, error) {
	return FromEnviron(os.Environ())
}

func (c *Config) applyEnv(key, value string) error {
	switch key {
	case "GPCAT_WORKER_THREADS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.WorkerThreads = n
	case "GPCAT_WORKER_PROCESSES":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.WorkerProcesses = n
	case "GPCAT_BATCH_SIZE":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.BatchSize = n
	case "GPCAT_QUEUE_MAXSIZE":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.QueueMaxSize = n
	case "GPCAT_USE_EXIFTOOL":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.UseExiftool = b
	case "GPCAT_USE_FFPROBE":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.UseFFProbe = b
	case "GPCAT_LOG_LEVEL":
		c.LogLevel = value
	case "GPCAT_LOG_FORMAT":
		c.LogFormat = value
	}
	return nil
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validLogFormats = map[string]bool{"text": true, "json": true}

// Validate enforces the field constraints implied by §5/§6: positive
// worker counts and batch/queue sizes, and recognized log settings.
func (c Config) Validate() error {
	if c.WorkerThreads < 1 {
		return fmt.Errorf("config: worker_threads must be >= 1, got %d", c.WorkerThreads)
	}
	if c.WorkerProcesses < 1 {
		return fmt.Errorf("config: worker_processes must be >= 1, got %d", c.WorkerProcesses)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("config: batch_size must be >= 1, got %d", c.BatchSize)
	}
	if c.QueueMaxSize < 1 {
		return fmt.Errorf("config: queue_maxsize must be >= 1, got %d", c.QueueMaxSize)
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("config: unrecognized log level %q", c.LogLevel)
	}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("config: unrecognized log format %q", c.LogFormat)
	}
	return nil
}
