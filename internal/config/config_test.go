package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestFromEnvironOverrides(t *testing.T) {
	cfg, err := FromEnviron([]string{
		"GPCAT_WORKER_THREADS=4",
		"GPCAT_BATCH_SIZE=50",
		"GPCAT_USE_FFPROBE=true",
		"GPCAT_LOG_LEVEL=debug",
		"PATH=/usr/bin", // unrelated, must be ignored
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkerThreads != 4 {
		t.Errorf("WorkerThreads = %d, want 4", cfg.WorkerThreads)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("BatchSize = %d, want 50", cfg.BatchSize)
	}
	if !cfg.UseFFProbe {
		t.Error("expected UseFFProbe true")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestFromEnvironRejectsUnknownKey(t *testing.T) {
	_, err := FromEnviron([]string{"GPCAT_BOGUS_SETTING=1"})
	if err == nil {
		t.Fatal("expected error for unrecognized key")
	}
}

func TestFromEnvironRejectsInvalidValue(t *testing.T) {
	_, err := FromEnviron([]string{"GPCAT_BATCH_SIZE=not-a-number"})
	if err == nil {
		t.Fatal("expected error for non-numeric batch size")
	}
}

func TestValidateRejectsZeroWorkers(t *testing.T) {
	cfg := Default()
	cfg.WorkerThreads = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero worker threads")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unrecognized log level")
	}
}
