// TinySense backend: извлечение MFCC-признаков и экспорт обученной
// модели в автономные C-исходники для прошивки. Поднимает WebSocket и
// REST для десктопной оболочки, опционально gRPC-стрим.
package main

import (
	"log"

	"tinysense/internal/api"
	"tinysense/internal/config"
	"tinysense/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] Failed to load config: %v", err)
	}

	features, err := service.NewFeatureService(cfg.Features)
	if err != nil {
		log.Fatalf("[Main] Bad feature config: %v", err)
	}
	export := service.NewExportService(features)

	server := api.NewServer(cfg, features, export)
	server.Start()
}
