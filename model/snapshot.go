package model

import (
	"encoding/json"
	"fmt"
)

// TrainedModel источник обученных слоёв. Обычно это снапшот,
// присланный оболочкой после завершения тренировки.
// Weights исходных слоёв могут алиасить память тренера:
// Extract копирует их, а не удерживает ссылки.
type TrainedModel interface {
	SourceLayers() []SourceLayer
}

// SourceLayer сырой слой источника: строковый тег типа, параметры
// и весовые тензоры в документированном порядке
// (batchnorm: gamma, beta, mean, variance; conv1d/dense: kernel, bias)
type SourceLayer struct {
	Name    string
	Type    string
	Params  LayerParams
	Weights []Tensor
}

// LayerParams параметры слоя; значимы только поля соответствующего типа
type LayerParams struct {
	Frames     int    `json:"frames,omitempty"`
	Coeffs     int    `json:"coeffs,omitempty"`
	Filters    int    `json:"filters,omitempty"`
	KernelSize int    `json:"kernelSize,omitempty"`
	PoolSize   int    `json:"poolSize,omitempty"`
	Units      int    `json:"units,omitempty"`
	Activation string `json:"activation,omitempty"`
}

// Snapshot JSON-снапшот обученной модели в формате оболочки
type Snapshot struct {
	Layers []SnapshotLayer `json:"layers"`
}

// SnapshotLayer один слой снапшота
type SnapshotLayer struct {
	Name    string           `json:"name"`
	Type    string           `json:"type"`
	Params  LayerParams      `json:"config"`
	Weights []SnapshotTensor `json:"weights"`
}

// SnapshotTensor тензор снапшота с явной формой
type SnapshotTensor struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// ParseSnapshot разбирает JSON-снапшот
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse model snapshot: %w", err)
	}
	return &s, nil
}

// SourceLayers реализует TrainedModel поверх снапшота
func (s *Snapshot) SourceLayers() []SourceLayer {
	out := make([]SourceLayer, len(s.Layers))
	for i, l := range s.Layers {
		weights := make([]Tensor, len(l.Weights))
		for j, w := range l.Weights {
			weights[j] = Tensor{Shape: w.Shape, Data: w.Data}
		}
		out[i] = SourceLayer{
			Name:    l.Name,
			Type:    l.Type,
			Params:  l.Params,
			Weights: weights,
		}
	}
	return out
}
