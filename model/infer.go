package model

import (
	"fmt"
	"math"
)

// Forward эталонный forward pass модели над плоским вектором признаков.
// Формулы совпадают со сгенерированным C-кодом один в один; арифметика
// single precision, чтобы обе реализации сходились в пределах допуска.
// Используется как верификатор эмиттера и как предпросмотр инференса
// в оболочке.
func Forward(layers []Layer, input []float32) ([]float32, error) {
	shapes, err := InferShapes(layers)
	if err != nil {
		return nil, err
	}

	if len(layers) == 0 || layers[0].Kind() != KindInput {
		return nil, &ShapeMismatchError{Layer: "model", Detail: "first layer must be input"}
	}
	in := layers[0].(*Input)
	if len(input) != in.Frames*in.Coeffs {
		return nil, &ShapeMismatchError{
			Layer:  in.Name,
			Detail: fmt.Sprintf("feature vector of %d values, want %d", len(input), in.Frames*in.Coeffs),
		}
	}

	cur := make([]float32, len(input))
	copy(cur, input)
	shape := shapes[0]

	for i := 1; i < len(layers); i++ {
		next := shapes[i]
		out := make([]float32, next.Flat())
		applyLayer(layers[i], shape, cur, out)
		cur = out
		shape = next
	}
	return cur, nil
}

// applyLayer применяет один слой; данные frame-major: x[t*C + c]
func applyLayer(l Layer, in IOShape, x, out []float32) {
	switch layer := l.(type) {
	case *BatchNorm:
		for t := 0; t < in.Time; t++ {
			for c := 0; c < in.Channels; c++ {
				v := x[t*in.Channels+c]
				norm := (v - layer.Mean.Data[c]) / sqrtf(layer.Variance.Data[c]+BatchNormEpsilon)
				out[t*in.Channels+c] = layer.Gamma.Data[c]*norm + layer.Beta.Data[c]
			}
		}

	case *Conv1D:
		pad := layer.KernelSize / 2
		for t := 0; t < in.Time; t++ {
			for o := 0; o < layer.Filters; o++ {
				acc := layer.Bias.Data[o]
				for k := 0; k < layer.KernelSize; k++ {
					src := t - pad + k
					if src < 0 || src >= in.Time {
						continue // same padding: за границей нули
					}
					for c := 0; c < in.Channels; c++ {
						w := layer.Kernel.Data[(k*in.Channels+c)*layer.Filters+o]
						acc += x[src*in.Channels+c] * w
					}
				}
				if layer.Activation == ActivationReLU && acc < 0 {
					acc = 0
				}
				out[t*layer.Filters+o] = acc
			}
		}

	case *MaxPool1D:
		outT := in.Time / layer.PoolSize
		for t := 0; t < outT; t++ {
			for c := 0; c < in.Channels; c++ {
				best := x[t*layer.PoolSize*in.Channels+c]
				for p := 1; p < layer.PoolSize; p++ {
					v := x[(t*layer.PoolSize+p)*in.Channels+c]
					if v > best {
						best = v
					}
				}
				out[t*in.Channels+c] = best
			}
		}

	case *GlobalAvgPool1D:
		for c := 0; c < in.Channels; c++ {
			var sum float32
			for t := 0; t < in.Time; t++ {
				sum += x[t*in.Channels+c]
			}
			out[c] = sum / float32(in.Time)
		}

	case *Dense:
		inUnits := in.Flat()
		for o := 0; o < layer.Units; o++ {
			acc := layer.Bias.Data[o]
			for i := 0; i < inUnits; i++ {
				acc += x[i] * layer.Kernel.Data[i*layer.Units+o]
			}
			if layer.Activation == ActivationReLU && acc < 0 {
				acc = 0
			}
			out[o] = acc
		}

	case *Softmax:
		// Численно устойчивый вариант: вычитаем максимум до экспоненты
		max := x[0]
		for _, v := range x[1:] {
			if v > max {
				max = v
			}
		}
		var sum float32
		for i, v := range x {
			e := expf(v - max)
			out[i] = e
			sum += e
		}
		for i := range out {
			out[i] /= sum
		}

	case *Input:
		copy(out, x)
	}
}

func sqrtf(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func expf(v float32) float32 {
	return float32(math.Exp(float64(v)))
}
