package cfg

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	DataFolder       string
	SecondDataFolder string
	ModelType        string
	ScalerType       string
	TimeSteps        int
	TestSize         float64
	Seed             int64
	LSTMUnits        int
	Epochs           int
	BatchSize        int
	HistoryPath      string
	MetricsPort      int
	LogLevel         string
}

type ConfigFile struct {
	Paths struct {
		DataFolder       string `yaml:"dataFolder"`
		SecondDataFolder string `yaml:"secondDataFolder"`
	} `yaml:"paths"`

	Training struct {
		ModelType  string  `yaml:"modelType"`
		ScalerType string  `yaml:"scalerType"`
		TimeSteps  int     `yaml:"timeSteps"`
		TestSize   float64 `yaml:"testSize"`
		Seed       int64   `yaml:"seed"`
		LSTMUnits  int     `yaml:"lstmUnits"`
		Epochs     int     `yaml:"epochs"`
		BatchSize  int     `yaml:"batchSize"`
	} `yaml:"training"`

	System struct {
		HistoryPath string `yaml:"historyPath"`
		MetricsPort int    `yaml:"metricsPort"`
		LogLevel    string `yaml:"logLevel"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return LoadFile(configPath)
	}
	return loadFromEnv()
}

func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	settings := Settings{
		DataFolder:       getEnvOrDefault("DATA_FOLDER", config.Paths.DataFolder),
		SecondDataFolder: getEnvOrDefault("SECOND_DATA_FOLDER", config.Paths.SecondDataFolder),
		ModelType:        getEnvOrDefault("MODEL_TYPE", withDefault(config.Training.ModelType, "lstm")),
		ScalerType:       getEnvOrDefault("SCALER_TYPE", withDefault(config.Training.ScalerType, "standard")),
		TimeSteps:        getIntFromEnvOrConfig("TIME_STEPS", config.Training.TimeSteps, 10),
		TestSize:         getFloatFromEnvOrConfig("TEST_SIZE", config.Training.TestSize, 0.2),
		Seed:             getInt64FromEnvOrConfig("SEED", config.Training.Seed, 42),
		LSTMUnits:        getIntFromEnvOrConfig("LSTM_UNITS", config.Training.LSTMUnits, 50),
		Epochs:           getIntFromEnvOrConfig("EPOCHS", config.Training.Epochs, 10),
		BatchSize:        getIntFromEnvOrConfig("BATCH_SIZE", config.Training.BatchSize, 32),
		HistoryPath:      getEnvOrDefault("HISTORY_PATH", config.System.HistoryPath),
		MetricsPort:      getIntFromEnvOrConfig("METRICS_PORT", config.System.MetricsPort, 0),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", withDefault(config.System.LogLevel, "info")),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	dataFolder, err := getEnvRequired("DATA_FOLDER")
	if err != nil {
		return Settings{}, err
	}

	secondDataFolder, err := getEnvRequired("SECOND_DATA_FOLDER")
	if err != nil {
		return Settings{}, err
	}

	settings := Settings{
		DataFolder:       dataFolder,
		SecondDataFolder: secondDataFolder,
		ModelType:        getEnvOrDefault("MODEL_TYPE", "lstm"),
		ScalerType:       getEnvOrDefault("SCALER_TYPE", "standard"),
		TimeSteps:        getIntOrDefault("TIME_STEPS", 10),
		TestSize:         getFloatOrDefault("TEST_SIZE", 0.2),
		Seed:             getInt64OrDefault("SEED", 42),
		LSTMUnits:        getIntOrDefault("LSTM_UNITS", 50),
		Epochs:           getIntOrDefault("EPOCHS", 10),
		BatchSize:        getIntOrDefault("BATCH_SIZE", 32),
		HistoryPath:      os.Getenv("HISTORY_PATH"), // optional
		MetricsPort:      getIntOrDefault("METRICS_PORT", 0),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvRequired(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is missing", key)
	}
	return v, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func withDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getInt64FromEnvOrConfig(key string, configValue, defaultValue int64) int64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseInt(env, 10, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.DataFolder == "" {
		return fmt.Errorf("data folder cannot be empty")
	}
	if settings.SecondDataFolder == "" {
		return fmt.Errorf("second data folder cannot be empty")
	}

	if settings.TestSize <= 0 || settings.TestSize >= 1 {
		return fmt.Errorf("test size must be between 0 and 1 exclusive, got %f", settings.TestSize)
	}
	if settings.TimeSteps < 1 || settings.TimeSteps > 10000 {
		return fmt.Errorf("time steps must be between 1 and 10000, got %d", settings.TimeSteps)
	}
	if settings.LSTMUnits < 1 || settings.LSTMUnits > 4096 {
		return fmt.Errorf("LSTM units must be between 1 and 4096, got %d", settings.LSTMUnits)
	}
	if settings.Epochs < 1 || settings.Epochs > 10000 {
		return fmt.Errorf("epochs must be between 1 and 10000, got %d", settings.Epochs)
	}
	if settings.BatchSize < 1 || settings.BatchSize > 65536 {
		return fmt.Errorf("batch size must be between 1 and 65536, got %d", settings.BatchSize)
	}
	if settings.MetricsPort != 0 && (settings.MetricsPort < 1024 || settings.MetricsPort > 65535) {
		return fmt.Errorf("metrics port must be 0 or between 1024 and 65535, got %d", settings.MetricsPort)
	}

	return nil
}
