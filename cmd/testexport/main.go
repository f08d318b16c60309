// Утилита для оффлайн-экспорта: снимок модели в JSON превращается в
// набор C-файлов на диске без запуска бэкенда.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tinysense/codegen"
	"tinysense/dsp"
	"tinysense/internal/config"
	"tinysense/model"
)

func main() {
	modelPath := flag.String("model", "", "JSON-снимок обученной модели")
	labels := flag.String("labels", "", "метки классов через запятую, по порядку выходов")
	featuresPath := flag.String("features", "", "YAML с конфигурацией признаков (пусто = значения по умолчанию)")
	outDir := flag.String("out", "export", "каталог для сгенерированных файлов")
	verbose := flag.Bool("v", false, "печатать ход экспорта")
	flag.Parse()

	if *modelPath == "" || *labels == "" {
		log.Fatal("[TestExport] -model and -labels are required")
	}

	cfg := dsp.DefaultFeatureConfig()
	if *featuresPath != "" {
		var err error
		cfg, err = config.LoadFeatures(*featuresPath)
		if err != nil {
			log.Fatalf("[TestExport] Failed to load feature config: %v", err)
		}
	}

	data, err := os.ReadFile(*modelPath)
	if err != nil {
		log.Fatalf("[TestExport] Failed to read model: %v", err)
	}
	snap, err := model.ParseSnapshot(data)
	if err != nil {
		log.Fatalf("[TestExport] Bad model snapshot: %v", err)
	}

	var trace model.Trace
	if *verbose {
		trace = func(format string, args ...any) {
			log.Printf("[TestExport] "+format, args...)
		}
	}

	layers, err := model.Extract(snap, trace)
	if err != nil {
		log.Fatalf("[TestExport] Failed to extract layers: %v", err)
	}

	emitter := codegen.NewEmitter()
	emitter.Trace = trace
	artifacts, err := emitter.Emit(cfg, layers, strings.Split(*labels, ","))
	if err != nil {
		log.Fatalf("[TestExport] Code generation failed: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("[TestExport] Failed to create %s: %v", *outDir, err)
	}
	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, []byte(artifacts[name]), 0o644); err != nil {
			log.Fatalf("[TestExport] Failed to write %s: %v", path, err)
		}
		log.Printf("[TestExport] Wrote %s (%d bytes)", path, len(artifacts[name]))
	}
	log.Printf("[TestExport] Done, %d files in %s", len(names), *outDir)
}
