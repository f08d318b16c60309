package api

import (
	"encoding/json"

	"tinysense/dsp"
)

// Message сообщение канала управления. Один и тот же формат ходит
// по WebSocket и по gRPC-стриму (jsonCodec), чтобы оболочка могла
// выбирать транспорт без смены протокола.
type Message struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`

	// Конфигурация признаков
	Feature *dsp.FeatureConfig `json:"featureConfig,omitempty"`

	// Извлечение признаков: сырые сэмплы от коллектора записи
	Samples  []float32   `json:"samples,omitempty"`
	Frames   int         `json:"frames,omitempty"`
	Features [][]float32 `json:"features,omitempty"`
	Flat     []float32   `json:"flatFeatures,omitempty"`

	// Экспорт: снапшот тренировки и метки классов
	Model  json.RawMessage `json:"model,omitempty"`
	Labels []string        `json:"labels,omitempty"`

	// Результат экспорта
	JobID string            `json:"jobId,omitempty"`
	Files map[string]string `json:"files,omitempty"`

	// Результат верификации: вероятности классов эталонного прохода
	Probs []float32 `json:"probs,omitempty"`
}

func errorMessage(err error) Message {
	return Message{Type: "error", Error: err.Error()}
}
