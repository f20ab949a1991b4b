package cfg

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "DATA_FOLDER", "SECOND_DATA_FOLDER", "MODEL_TYPE",
		"SCALER_TYPE", "TIME_STEPS", "TEST_SIZE", "SEED", "LSTM_UNITS",
		"EPOCHS", "BATCH_SIZE", "HISTORY_PATH", "METRICS_PORT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name: "valid config with required fields",
			envVars: map[string]string{
				"DATA_FOLDER":        "/data/main",
				"SECOND_DATA_FOLDER": "/data/extra",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.DataFolder != "/data/main" {
					t.Errorf("expected DataFolder '/data/main', got %s", settings.DataFolder)
				}
				if settings.SecondDataFolder != "/data/extra" {
					t.Errorf("expected SecondDataFolder '/data/extra', got %s", settings.SecondDataFolder)
				}
				// Test defaults
				if settings.ModelType != "lstm" {
					t.Errorf("expected default ModelType lstm, got %s", settings.ModelType)
				}
				if settings.ScalerType != "standard" {
					t.Errorf("expected default ScalerType standard, got %s", settings.ScalerType)
				}
				if settings.TimeSteps != 10 {
					t.Errorf("expected default TimeSteps 10, got %d", settings.TimeSteps)
				}
				if settings.TestSize != 0.2 {
					t.Errorf("expected default TestSize 0.2, got %f", settings.TestSize)
				}
				if settings.Seed != 42 {
					t.Errorf("expected default Seed 42, got %d", settings.Seed)
				}
				if settings.LSTMUnits != 50 {
					t.Errorf("expected default LSTMUnits 50, got %d", settings.LSTMUnits)
				}
				if settings.Epochs != 10 {
					t.Errorf("expected default Epochs 10, got %d", settings.Epochs)
				}
				if settings.BatchSize != 32 {
					t.Errorf("expected default BatchSize 32, got %d", settings.BatchSize)
				}
				if settings.MetricsPort != 0 {
					t.Errorf("expected default MetricsPort 0, got %d", settings.MetricsPort)
				}
			},
		},
		{
			name: "custom training settings",
			envVars: map[string]string{
				"DATA_FOLDER":        "/data/main",
				"SECOND_DATA_FOLDER": "/data/extra",
				"MODEL_TYPE":         "random_forest",
				"SCALER_TYPE":        "minmax",
				"TIME_STEPS":         "20",
				"TEST_SIZE":          "0.3",
				"LSTM_UNITS":         "64",
				"EPOCHS":             "5",
				"BATCH_SIZE":         "16",
				"METRICS_PORT":       "9090",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.ModelType != "random_forest" {
					t.Errorf("expected ModelType random_forest, got %s", settings.ModelType)
				}
				if settings.ScalerType != "minmax" {
					t.Errorf("expected ScalerType minmax, got %s", settings.ScalerType)
				}
				if settings.TimeSteps != 20 {
					t.Errorf("expected TimeSteps 20, got %d", settings.TimeSteps)
				}
				if settings.TestSize != 0.3 {
					t.Errorf("expected TestSize 0.3, got %f", settings.TestSize)
				}
				if settings.LSTMUnits != 64 {
					t.Errorf("expected LSTMUnits 64, got %d", settings.LSTMUnits)
				}
				if settings.Epochs != 5 {
					t.Errorf("expected Epochs 5, got %d", settings.Epochs)
				}
				if settings.BatchSize != 16 {
					t.Errorf("expected BatchSize 16, got %d", settings.BatchSize)
				}
				if settings.MetricsPort != 9090 {
					t.Errorf("expected MetricsPort 9090, got %d", settings.MetricsPort)
				}
			},
		},
		{
			name: "missing data folder",
			envVars: map[string]string{
				"SECOND_DATA_FOLDER": "/data/extra",
			},
			wantErr: true,
		},
		{
			name: "missing second data folder",
			envVars: map[string]string{
				"DATA_FOLDER": "/data/main",
			},
			wantErr: true,
		},
		{
			name: "invalid test size",
			envVars: map[string]string{
				"DATA_FOLDER":        "/data/main",
				"SECOND_DATA_FOLDER": "/data/extra",
				"TEST_SIZE":          "1.5",
			},
			wantErr: true,
		},
		{
			name: "invalid metrics port",
			envVars: map[string]string{
				"DATA_FOLDER":        "/data/main",
				"SECOND_DATA_FOLDER": "/data/extra",
				"METRICS_PORT":       "80",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			settings, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `paths:
  dataFolder: /srv/data
  secondDataFolder: /srv/data2
training:
  modelType: linear_regression
  scalerType: robust
  timeSteps: 15
  testSize: 0.25
  lstmUnits: 32
  epochs: 3
  batchSize: 8
system:
  logLevel: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	clearEnv(t)
	t.Setenv("CONFIG_FILE", configPath)

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.DataFolder != "/srv/data" {
		t.Errorf("expected DataFolder /srv/data, got %s", settings.DataFolder)
	}
	if settings.SecondDataFolder != "/srv/data2" {
		t.Errorf("expected SecondDataFolder /srv/data2, got %s", settings.SecondDataFolder)
	}
	if settings.ModelType != "linear_regression" {
		t.Errorf("expected ModelType linear_regression, got %s", settings.ModelType)
	}
	if settings.ScalerType != "robust" {
		t.Errorf("expected ScalerType robust, got %s", settings.ScalerType)
	}
	if settings.TimeSteps != 15 {
		t.Errorf("expected TimeSteps 15, got %d", settings.TimeSteps)
	}
	if settings.TestSize != 0.25 {
		t.Errorf("expected TestSize 0.25, got %f", settings.TestSize)
	}
	if settings.LogLevel != "debug" {
		t.Errorf("expected LogLevel debug, got %s", settings.LogLevel)
	}
	// Seed not set in file, falls back to default
	if settings.Seed != 42 {
		t.Errorf("expected default Seed 42, got %d", settings.Seed)
	}
}

func TestLoadFromYAMLEnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `paths:
  dataFolder: /srv/data
  secondDataFolder: /srv/data2
training:
  timeSteps: 15
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	clearEnv(t)
	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("DATA_FOLDER", "/override/data")
	t.Setenv("TIME_STEPS", "30")

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.DataFolder != "/override/data" {
		t.Errorf("expected env override /override/data, got %s", settings.DataFolder)
	}
	if settings.TimeSteps != 30 {
		t.Errorf("expected env override TimeSteps 30, got %d", settings.TimeSteps)
	}
	if settings.SecondDataFolder != "/srv/data2" {
		t.Errorf("expected file value /srv/data2, got %s", settings.SecondDataFolder)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}
