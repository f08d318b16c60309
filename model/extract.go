package model

import "fmt"

// Extract копирует упорядоченные слои обученной модели во владеющее
// представление. Порядок слоёв сохраняется (forward pass зависит от
// последовательности), веса копируются глубоко: после возврата источник
// может мутировать или освобождать свои тензоры.
//
// Извлечение выполняется только после полной остановки тренировки;
// защита от параллельного шага оптимизатора — именно глубокая копия.
func Extract(m TrainedModel, trace Trace) ([]Layer, error) {
	src := m.SourceLayers()
	if len(src) == 0 {
		return nil, &ShapeMismatchError{Layer: "model", Detail: "no layers"}
	}

	layers := make([]Layer, 0, len(src))
	for i, sl := range src {
		layer, err := convertLayer(sl)
		if err != nil {
			return nil, err
		}
		trace.emit("[Extract] layer %d: %s (%s)", i, sl.Name, layer.Kind())
		layers = append(layers, layer)
	}

	// Согласованность цепочки проверяется сразу: несовместимые формы
	// должны падать при извлечении, а не при генерации
	shapes, err := InferShapes(layers)
	if err != nil {
		return nil, err
	}
	trace.emit("[Extract] %d layers, output width %d", len(layers), shapes[len(shapes)-1].Flat())

	return layers, nil
}

func convertLayer(sl SourceLayer) (Layer, error) {
	switch LayerKind(sl.Type) {
	case KindInput:
		return &Input{Name: sl.Name, Frames: sl.Params.Frames, Coeffs: sl.Params.Coeffs}, nil

	case KindBatchNorm:
		w, err := takeWeights(sl, 4)
		if err != nil {
			return nil, err
		}
		return &BatchNorm{
			Name:     sl.Name,
			Gamma:    w[0],
			Beta:     w[1],
			Mean:     w[2],
			Variance: w[3],
		}, nil

	case KindConv1D:
		w, err := takeWeights(sl, 2)
		if err != nil {
			return nil, err
		}
		return &Conv1D{
			Name:       sl.Name,
			Filters:    sl.Params.Filters,
			KernelSize: sl.Params.KernelSize,
			Activation: Activation(sl.Params.Activation),
			Kernel:     w[0],
			Bias:       w[1],
		}, nil

	case KindMaxPool1D:
		return &MaxPool1D{Name: sl.Name, PoolSize: sl.Params.PoolSize}, nil

	case KindGlobalAvgPool1D:
		return &GlobalAvgPool1D{Name: sl.Name}, nil

	case KindDense:
		w, err := takeWeights(sl, 2)
		if err != nil {
			return nil, err
		}
		return &Dense{
			Name:       sl.Name,
			Units:      sl.Params.Units,
			Activation: Activation(sl.Params.Activation),
			Kernel:     w[0],
			Bias:       w[1],
		}, nil

	case KindSoftmax:
		return &Softmax{Name: sl.Name}, nil

	default:
		return nil, &UnsupportedLayerError{Layer: sl.Name, Type: sl.Type}
	}
}

// takeWeights проверяет количество тензоров слоя и глубоко копирует их
func takeWeights(sl SourceLayer, want int) ([]Tensor, error) {
	if len(sl.Weights) != want {
		return nil, &ShapeMismatchError{
			Layer:  sl.Name,
			Detail: fmt.Sprintf("%d weight tensors, want %d", len(sl.Weights), want),
		}
	}
	out := make([]Tensor, want)
	for i, w := range sl.Weights {
		if w.Len() != len(w.Data) {
			return nil, &ShapeMismatchError{
				Layer:  sl.Name,
				Detail: fmt.Sprintf("weight %d: shape %v implies %d values, got %d", i, w.Shape, w.Len(), len(w.Data)),
			}
		}
		out[i] = w.Clone()
	}
	return out, nil
}
