// Package service связывает чистые пакеты ядра (dsp, model, codegen)
// с API-сервером: конфигурация, идентификаторы заданий, логирование.
package service

import (
	"log"
	"sync"

	"tinysense/dsp"
)

// FeatureService извлечение признаков для оболочки.
// Конфигурация меняется целиком и атомарно; смена конфигурации
// делает ранее собранные сэмплы недействительными — решение об этом
// принимает оболочка, сервис только сообщает факт смены.
type FeatureService struct {
	mu  sync.Mutex
	ext *dsp.Extractor
}

// NewFeatureService сервис с начальной конфигурацией
func NewFeatureService(cfg dsp.FeatureConfig) (*FeatureService, error) {
	ext, err := dsp.NewExtractor(cfg)
	if err != nil {
		return nil, err
	}
	return &FeatureService{ext: ext}, nil
}

// Config текущая конфигурация признаков
func (s *FeatureService) Config() dsp.FeatureConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ext.Config()
}

// Configure заменяет конфигурацию; невалидная конфигурация
// оставляет прежнюю нетронутой
func (s *FeatureService) Configure(cfg dsp.FeatureConfig) error {
	ext, err := dsp.NewExtractor(cfg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ext = ext
	s.mu.Unlock()
	log.Printf("[Features] config updated: %d Hz, fft %d, hop %d, %d mfcc", cfg.SampleRate, cfg.FFTSize, cfg.HopLength, cfg.NumMFCC)
	return nil
}

// Extract признаки всего буфера, ceil(len/hop) фреймов.
// Экстрактор переиспользует внутренние буферы, поэтому вызовы
// сериализуются мьютексом целиком.
func (s *FeatureService) Extract(samples []float32) [][]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ext.Extract(samples)
}

// ExtractFixed плоский вектор признаков фиксированной длины
// numFrames*NumMFCC под вход сети
func (s *FeatureService) ExtractFixed(samples []float32, numFrames int) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ext.ExtractFixed(samples, numFrames)
}
