package service

import (
	"log"

	"github.com/google/uuid"

	"tinysense/codegen"
	"tinysense/model"
)

// ExportService компиляция обученной модели в исходники для устройства
type ExportService struct {
	Features *FeatureService

	// OnExportDone уведомление оболочки о завершении (для UI)
	OnExportDone func(jobID string, files int)
}

// ExportResult результат одной генерации
type ExportResult struct {
	JobID     string
	Labels    []string
	Artifacts codegen.Artifacts
}

// NewExportService сервис экспорта поверх сервиса признаков
func NewExportService(features *FeatureService) *ExportService {
	return &ExportService{Features: features}
}

// Export разбирает снапшот тренировки, извлекает слои и генерирует
// полный набор исходников. Любая ошибка прерывает задание целиком.
func (s *ExportService) Export(snapshotJSON []byte, labels []string) (*ExportResult, error) {
	jobID := uuid.New().String()
	log.Printf("[Export] job %s: %d labels, snapshot %d bytes", jobID, len(labels), len(snapshotJSON))

	snap, err := model.ParseSnapshot(snapshotJSON)
	if err != nil {
		log.Printf("[Export] job %s failed: %v", jobID, err)
		return nil, err
	}

	trace := model.Trace(func(format string, args ...any) {
		log.Printf(format, args...)
	})

	layers, err := model.Extract(snap, trace)
	if err != nil {
		log.Printf("[Export] job %s failed: %v", jobID, err)
		return nil, err
	}

	emitter := codegen.NewEmitter()
	emitter.Trace = trace
	artifacts, err := emitter.Emit(s.Features.Config(), layers, labels)
	if err != nil {
		log.Printf("[Export] job %s failed: %v", jobID, err)
		return nil, err
	}

	log.Printf("[Export] job %s done: %d files", jobID, len(artifacts))
	if s.OnExportDone != nil {
		s.OnExportDone(jobID, len(artifacts))
	}
	return &ExportResult{JobID: jobID, Labels: labels, Artifacts: artifacts}, nil
}

// Verify прогоняет эталонный forward pass по плоскому вектору признаков:
// оболочка сверяет вероятности со своей тренировочной стороной
// перед прошивкой устройства
func (s *ExportService) Verify(snapshotJSON []byte, features []float32) ([]float32, error) {
	snap, err := model.ParseSnapshot(snapshotJSON)
	if err != nil {
		return nil, err
	}
	layers, err := model.Extract(snap, nil)
	if err != nil {
		return nil, err
	}
	return model.Forward(layers, features)
}
