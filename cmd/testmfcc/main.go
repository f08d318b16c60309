// Утилита для ручной проверки фронтенда признаков: читает аудиофайл
// и печатает MFCC-кадры, которые увидит модель.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"tinysense/dsp"
	"tinysense/internal/config"
	"tinysense/sample"
)

func main() {
	inPath := flag.String("in", "", "входной аудиофайл (.wav или .mp3)")
	featuresPath := flag.String("features", "", "YAML с конфигурацией признаков (пусто = значения по умолчанию)")
	frames := flag.Int("frames", 0, "фиксированное число кадров (0 = по длине файла)")
	flag.Parse()

	if *inPath == "" {
		log.Fatal("[TestMFCC] -in is required")
	}

	cfg := dsp.DefaultFeatureConfig()
	if *featuresPath != "" {
		var err error
		cfg, err = config.LoadFeatures(*featuresPath)
		if err != nil {
			log.Fatalf("[TestMFCC] Failed to load feature config: %v", err)
		}
	}

	var samples []float32
	var rate int
	var err error
	switch strings.ToLower(filepath.Ext(*inPath)) {
	case ".mp3":
		samples, rate, err = sample.ReadMP3(*inPath)
	default:
		samples, rate, err = sample.ReadWAV(*inPath)
	}
	if err != nil {
		log.Fatalf("[TestMFCC] Failed to read %s: %v", *inPath, err)
	}
	if rate != cfg.SampleRate {
		log.Printf("[TestMFCC] Warning: file sample rate %d differs from config %d, no resampling is done", rate, cfg.SampleRate)
	}
	log.Printf("[TestMFCC] Read %d samples (%0.2f s at %d Hz)", len(samples), float64(len(samples))/float64(rate), rate)

	ext, err := dsp.NewExtractor(cfg)
	if err != nil {
		log.Fatalf("[TestMFCC] Bad feature config: %v", err)
	}

	if *frames > 0 {
		flat := ext.ExtractFixed(samples, *frames)
		for t := 0; t < *frames; t++ {
			printFrame(t, flat[t*cfg.NumMFCC:(t+1)*cfg.NumMFCC])
		}
		return
	}

	all := ext.Extract(samples)
	log.Printf("[TestMFCC] %d frames of %d coefficients", len(all), cfg.NumMFCC)
	for t, frame := range all {
		printFrame(t, frame)
	}
}

func printFrame(t int, coeffs []float32) {
	parts := make([]string, len(coeffs))
	for i, c := range coeffs {
		parts[i] = fmt.Sprintf("%8.3f", c)
	}
	fmt.Printf("%4d: %s\n", t, strings.Join(parts, " "))
}
