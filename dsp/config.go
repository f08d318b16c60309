// Package dsp реализует звуковой фронтенд: mel-фильтры и извлечение MFCC.
// Тот же алгоритм воспроизводится в сгенерированном C-коде (пакет codegen),
// поэтому формулы здесь и в эмиттере обязаны совпадать один в один.
package dsp

import "fmt"

// WindowFunction оконная функция анализа
type WindowFunction string

const (
	WindowHamming WindowFunction = "hamming"
	WindowHann    WindowFunction = "hann"
)

// PreEmphasisCoeff коэффициент pre-emphasis фильтра (первая разность)
const PreEmphasisCoeff = 0.97

// LogFloor нижняя граница энергии перед логарифмом, защита от log(0)
const LogFloor = 1e-10

// FeatureConfig параметры извлечения признаков.
// Фиксируется на всю сессию сбора данных: смена любого поля делает
// ранее собранные сэмплы несовместимыми с обученной моделью.
type FeatureConfig struct {
	SampleRate    int            `yaml:"sampleRate" json:"sampleRate"`
	FFTSize       int            `yaml:"fftSize" json:"fftSize"`
	HopLength     int            `yaml:"hopLength" json:"hopLength"`
	NumMFCC       int            `yaml:"numMfcc" json:"numMfcc"`
	NumMelFilters int            `yaml:"numMelFilters" json:"numMelFilters"`
	FMin          float64        `yaml:"fMin" json:"fMin"`
	FMax          float64        `yaml:"fMax" json:"fMax"`
	Window        WindowFunction `yaml:"window" json:"window"`
	PreEmphasis   bool           `yaml:"preEmphasis" json:"preEmphasis"`
}

// DefaultFeatureConfig возвращает параметры по умолчанию (16 kHz, окно 32 ms)
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		SampleRate:    16000,
		FFTSize:       512,
		HopLength:     256,
		NumMFCC:       13,
		NumMelFilters: 40,
		FMin:          300,
		FMax:          8000,
		Window:        WindowHamming,
		PreEmphasis:   false,
	}
}

// ConfigError ошибка валидации конфигурации признаков или меток классов
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validate проверяет инварианты конфигурации
func (c FeatureConfig) Validate() error {
	if c.SampleRate <= 0 {
		return &ConfigError{"sampleRate", "must be positive"}
	}
	if c.FFTSize <= 0 || c.FFTSize%2 != 0 {
		return &ConfigError{"fftSize", "must be a positive even number"}
	}
	if c.HopLength <= 0 {
		return &ConfigError{"hopLength", "must be positive"}
	}
	if c.NumMelFilters <= 0 {
		return &ConfigError{"numMelFilters", "must be positive"}
	}
	if c.NumMFCC <= 0 {
		return &ConfigError{"numMfcc", "must be positive"}
	}
	if c.NumMFCC > c.NumMelFilters {
		return &ConfigError{"numMfcc", fmt.Sprintf("must not exceed numMelFilters (%d > %d)", c.NumMFCC, c.NumMelFilters)}
	}
	if c.FMin < 0 {
		return &ConfigError{"fMin", "must not be negative"}
	}
	nyquist := float64(c.SampleRate) / 2
	if c.FMax <= c.FMin {
		return &ConfigError{"fMax", "must be greater than fMin"}
	}
	if c.FMax > nyquist {
		return &ConfigError{"fMax", fmt.Sprintf("%.1f Hz beyond Nyquist %.1f Hz", c.FMax, nyquist)}
	}
	switch c.Window {
	case WindowHamming, WindowHann:
	default:
		return &ConfigError{"window", fmt.Sprintf("unknown window function %q", c.Window)}
	}
	return nil
}

// NumBins количество бинов спектра, сохраняемых после real FFT: [0, N/2]
func (c FeatureConfig) NumBins() int {
	return c.FFTSize/2 + 1
}

// FrameCount число фреймов для буфера длины n: ceil(n/hop), минимум 1.
// Короткие буферы не отбрасываются, недостающие сэмплы дополняются нулями.
func (c FeatureConfig) FrameCount(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + c.HopLength - 1) / c.HopLength
}
