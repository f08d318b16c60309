package model

import (
	"errors"
	"testing"
)

// snapshotFixture маленькая валидная модель: input -> dense(2) -> softmax
func snapshotFixture() *Snapshot {
	return &Snapshot{Layers: []SnapshotLayer{
		{
			Name:   "reshape",
			Type:   "input",
			Params: LayerParams{Frames: 2, Coeffs: 3},
		},
		{
			Name:   "dense_1",
			Type:   "dense",
			Params: LayerParams{Units: 2},
			Weights: []SnapshotTensor{
				{Shape: []int{6, 2}, Data: []float32{1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1}},
				{Shape: []int{2}, Data: []float32{0.5, -0.5}},
			},
		},
		{
			Name: "softmax",
			Type: "softmax",
		},
	}}
}

// TestExtractPreservesOrder порядок слоёв источника сохраняется
func TestExtractPreservesOrder(t *testing.T) {
	layers, err := Extract(snapshotFixture(), nil)
	if err != nil {
		t.Fatal(err)
	}

	wantKinds := []LayerKind{KindInput, KindDense, KindSoftmax}
	if len(layers) != len(wantKinds) {
		t.Fatalf("got %d layers, want %d", len(layers), len(wantKinds))
	}
	for i, k := range wantKinds {
		if layers[i].Kind() != k {
			t.Errorf("layer %d kind = %s, want %s", i, layers[i].Kind(), k)
		}
	}
}

// TestExtractDeepCopies мутация тензоров источника после извлечения
// не затрагивает извлечённые веса
func TestExtractDeepCopies(t *testing.T) {
	snap := snapshotFixture()
	layers, err := Extract(snap, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Имитируем шаг оптимизатора после извлечения
	snap.Layers[1].Weights[0].Data[0] = 999

	dense := layers[1].(*Dense)
	if dense.Kernel.Data[0] == 999 {
		t.Error("extracted kernel aliases the source tensor")
	}
}

// TestExtractUnsupportedLayer неизвестный тип слоя — жёсткая ошибка,
// а не молчаливый пропуск
func TestExtractUnsupportedLayer(t *testing.T) {
	snap := snapshotFixture()
	snap.Layers = append(snap.Layers[:1], SnapshotLayer{Name: "lstm_1", Type: "lstm"})

	_, err := Extract(snap, nil)
	var ule *UnsupportedLayerError
	if !errors.As(err, &ule) {
		t.Fatalf("got %v, want UnsupportedLayerError", err)
	}
	if ule.Type != "lstm" {
		t.Errorf("error type tag = %q, want lstm", ule.Type)
	}
}

// TestExtractShapeMismatch веса, несогласованные с конфигом слоя,
// прерывают извлечение
func TestExtractShapeMismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{
			"dense kernel wrong rows",
			func(s *Snapshot) { s.Layers[1].Weights[0].Shape = []int{5, 2} },
		},
		{
			"dense bias wrong width",
			func(s *Snapshot) {
				s.Layers[1].Weights[1] = SnapshotTensor{Shape: []int{3}, Data: []float32{1, 2, 3}}
			},
		},
		{
			"shape disagrees with data length",
			func(s *Snapshot) { s.Layers[1].Weights[0].Data = s.Layers[1].Weights[0].Data[:4] },
		},
		{
			"missing bias tensor",
			func(s *Snapshot) { s.Layers[1].Weights = s.Layers[1].Weights[:1] },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshotFixture()
			tt.mutate(snap)
			_, err := Extract(snap, nil)
			var sme *ShapeMismatchError
			if !errors.As(err, &sme) {
				t.Fatalf("got %v, want ShapeMismatchError", err)
			}
		})
	}
}

// TestParseSnapshot разбор JSON и обратная сторона TrainedModel
func TestParseSnapshot(t *testing.T) {
	data := []byte(`{
		"layers": [
			{"name": "reshape", "type": "input", "config": {"frames": 1, "coeffs": 2}},
			{"name": "out", "type": "dense", "config": {"units": 2},
			 "weights": [
				{"shape": [2, 2], "data": [1, 0, 0, 1]},
				{"shape": [2], "data": [0, 0]}
			 ]},
			{"name": "probs", "type": "softmax"}
		]
	}`)

	snap, err := ParseSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	layers, err := Extract(snap, nil)
	if err != nil {
		t.Fatal(err)
	}
	width, err := OutputWidth(layers)
	if err != nil {
		t.Fatal(err)
	}
	if width != 2 {
		t.Errorf("output width = %d, want 2", width)
	}
}
