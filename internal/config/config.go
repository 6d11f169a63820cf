package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/contactkeval/option-greeks/pricing"
)

// EngineConfig represents pricing engine configuration
type EngineConfig struct {
	Precision        string  `yaml:"precision"` // single, double
	Method           string  `yaml:"method"`    // bisection, newton-raphson
	Accuracy         float64 `yaml:"accuracy"`
	BisectionLeft    float64 `yaml:"bisection_left"`
	BisectionRight   float64 `yaml:"bisection_right"`
	NewtonIterations int     `yaml:"newton_iterations"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// DataConfig selects and configures the quote source
type DataConfig struct {
	Source        string   `yaml:"source"` // csv, synthetic, massive
	CSVPath       string   `yaml:"csv_path"`
	MassiveAPIKey string   `yaml:"massive_api_key"`
	Tickers       []string `yaml:"tickers"` // OCC option tickers for massive
	Rate          float64  `yaml:"rate"`    // risk-free rate applied when a quote has none
}

type AnalyzeConfig struct {
	Workers int `yaml:"workers"`
}

type ReportConfig struct {
	Dir string `yaml:"dir"`
}

type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Analyze AnalyzeConfig `yaml:"analyze"`
	Report  ReportConfig  `yaml:"report"`
}

// Default returns the built-in configuration.
func Default() *Config {
	def := pricing.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			Precision:        string(def.Precision),
			Method:           string(def.Method),
			Accuracy:         def.Accuracy,
			BisectionLeft:    def.BisectionLeft,
			BisectionRight:   def.BisectionRight,
			NewtonIterations: def.NewtonIterations,
		},
		Logging: LoggingConfig{Level: "info", MaxSizeMB: 50, MaxBackups: 3},
		Server:  ServerConfig{Port: "8080"},
		Data:    DataConfig{Source: "synthetic", CSVPath: "quotes.csv", Rate: 0.05},
		Analyze: AnalyzeConfig{Workers: 8},
		Report:  ReportConfig{Dir: "out"},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty or the file does not exist), then environment
// variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// optional file
		default:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if _, err := cfg.EngineConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Engine.Precision = getEnv("ENGINE_PRECISION", c.Engine.Precision)
	c.Engine.Method = getEnv("ENGINE_METHOD", c.Engine.Method)
	c.Engine.Accuracy = getEnvFloat("ENGINE_ACCURACY", c.Engine.Accuracy)
	c.Engine.NewtonIterations = getEnvInt("ENGINE_NEWTON_ITERATIONS", c.Engine.NewtonIterations)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.File = getEnv("LOG_FILE", c.Logging.File)

	c.Server.Port = getEnv("PORT", c.Server.Port)

	c.Data.Source = getEnv("DATA_SOURCE", c.Data.Source)
	c.Data.CSVPath = getEnv("QUOTES_CSV", c.Data.CSVPath)
	c.Data.MassiveAPIKey = getEnv("MASSIVE_API_KEY", c.Data.MassiveAPIKey)
	c.Data.Tickers = getEnvStringSlice("MASSIVE_TICKERS", c.Data.Tickers)
	c.Data.Rate = getEnvFloat("RISK_FREE_RATE", c.Data.Rate)

	c.Analyze.Workers = getEnvInt("ANALYZE_WORKERS", c.Analyze.Workers)
	c.Report.Dir = getEnv("REPORT_DIR", c.Report.Dir)
}

// EngineConfig converts the engine section into a validated pricing.Config.
func (c *Config) EngineConfig() (pricing.Config, error) {
	pc := pricing.Config{
		Precision:        pricing.Precision(strings.ToLower(c.Engine.Precision)),
		Method:           pricing.Method(strings.ToLower(c.Engine.Method)),
		Accuracy:         c.Engine.Accuracy,
		BisectionLeft:    c.Engine.BisectionLeft,
		BisectionRight:   c.Engine.BisectionRight,
		NewtonIterations: c.Engine.NewtonIterations,
	}
	if _, err := pricing.NewEngine(pc); err != nil {
		return pricing.Config{}, err
	}
	return pc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
