package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tinysense/dsp"
)

// Config конфигурация процесса
type Config struct {
	Port         string
	GRPCAddr     string // адрес gRPC (tcp-адрес или имя named pipe), пусто = выключено
	FeaturesPath string // путь к YAML с конфигурацией признаков, пусто = умолчания
	Features     dsp.FeatureConfig
}

// Load разбирает флаги и файл конфигурации признаков
func Load() (*Config, error) {
	port := flag.String("port", "8080", "Server port")
	grpcAddr := flag.String("grpc", "", "gRPC listen address or pipe name (empty = disabled)")
	featuresPath := flag.String("features", "", "Path to feature config YAML (empty = defaults)")
	flag.Parse()

	features, err := LoadFeatures(*featuresPath)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:         *port,
		GRPCAddr:     *grpcAddr,
		FeaturesPath: *featuresPath,
		Features:     features,
	}, nil
}

// LoadFeatures читает конфигурацию признаков из YAML поверх умолчаний.
// Пустой путь возвращает умолчания.
func LoadFeatures(path string) (dsp.FeatureConfig, error) {
	cfg := dsp.DefaultFeatureConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read feature config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse feature config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveFeatures сохраняет конфигурацию признаков в YAML
func SaveFeatures(path string, cfg dsp.FeatureConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal feature config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
