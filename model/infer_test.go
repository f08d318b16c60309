package model

import (
	"math"
	"math/rand"
	"testing"
)

func tensor1(data ...float32) Tensor {
	return Tensor{Shape: []int{len(data)}, Data: data}
}

// TestForwardBatchNorm формула y = gamma*(x-mean)/sqrt(var+eps) + beta
func TestForwardBatchNorm(t *testing.T) {
	layers := []Layer{
		&Input{Name: "in", Frames: 1, Coeffs: 2},
		&BatchNorm{
			Name:     "bn",
			Gamma:    tensor1(2, 1),
			Beta:     tensor1(0.5, -1),
			Mean:     tensor1(1, 0),
			Variance: tensor1(4, 1),
		},
	}

	out, err := Forward(layers, []float32{3, 2})
	if err != nil {
		t.Fatal(err)
	}

	want0 := 2*(3-1)/float32(math.Sqrt(4+BatchNormEpsilon)) + 0.5
	want1 := 1*(2-0)/float32(math.Sqrt(1+BatchNormEpsilon)) - 1
	assertClose(t, out[0], want0, "channel 0")
	assertClose(t, out[1], want1, "channel 1")
}

// TestForwardConv1DSamePadding свёртка stride 1 с same padding:
// длина выхода равна длине входа, за границей нули
func TestForwardConv1DSamePadding(t *testing.T) {
	// Один канал, ядро [1,1,1]: выход = скользящая сумма трёх соседей
	layers := []Layer{
		&Input{Name: "in", Frames: 4, Coeffs: 1},
		&Conv1D{
			Name: "conv", Filters: 1, KernelSize: 3,
			Kernel: Tensor{Shape: []int{3, 1, 1}, Data: []float32{1, 1, 1}},
			Bias:   tensor1(0),
		},
	}

	out, err := Forward(layers, []float32{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{3, 6, 9, 7} // 0+1+2, 1+2+3, 2+3+4, 3+4+0
	for i := range want {
		assertClose(t, out[i], want[i], "step")
	}
}

// TestForwardConv1DReLU отрицательные суммы зануляются при relu
func TestForwardConv1DReLU(t *testing.T) {
	layers := []Layer{
		&Input{Name: "in", Frames: 2, Coeffs: 1},
		&Conv1D{
			Name: "conv", Filters: 1, KernelSize: 1, Activation: ActivationReLU,
			Kernel: Tensor{Shape: []int{1, 1, 1}, Data: []float32{-1}},
			Bias:   tensor1(0),
		},
	}

	out, err := Forward(layers, []float32{5, -5})
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != 0 || out[1] != 5 {
		t.Errorf("relu output = %v, want [0 5]", out)
	}
}

// TestForwardMaxPool непересекающиеся окна, длина выхода floor(n/p)
func TestForwardMaxPool(t *testing.T) {
	layers := []Layer{
		&Input{Name: "in", Frames: 5, Coeffs: 2},
		&MaxPool1D{Name: "pool", PoolSize: 2},
	}

	// 5 шагов по 2 канала; пятый шаг отбрасывается (floor(5/2)=2)
	in := []float32{
		1, 10,
		2, 9,
		5, 0,
		3, 8,
		100, 100,
	}
	out, err := Forward(layers, in)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{2, 10, 5, 8}
	if len(out) != 4 {
		t.Fatalf("output length = %d, want 4", len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %f, want %f", i, out[i], want[i])
		}
	}
}

// TestForwardGlobalAvgPool среднее по оси времени на канал
func TestForwardGlobalAvgPool(t *testing.T) {
	layers := []Layer{
		&Input{Name: "in", Frames: 3, Coeffs: 2},
		&GlobalAvgPool1D{Name: "gap"},
	}

	out, err := Forward(layers, []float32{1, 10, 2, 20, 3, 30})
	if err != nil {
		t.Fatal(err)
	}
	assertClose(t, out[0], 2, "channel 0")
	assertClose(t, out[1], 20, "channel 1")
}

// TestForwardSoftmax выход суммируется в единицу и устойчив
// к большим логитам
func TestForwardSoftmax(t *testing.T) {
	layers := []Layer{
		&Input{Name: "in", Frames: 1, Coeffs: 3},
		&Softmax{Name: "probs"},
	}

	tests := []struct {
		name   string
		logits []float32
	}{
		{"small", []float32{0.1, 0.2, 0.3}},
		{"large logits would overflow naive exp", []float32{1000, 1001, 999}},
		{"negative", []float32{-5, -6, -7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Forward(layers, tt.logits)
			if err != nil {
				t.Fatal(err)
			}
			var sum float64
			for _, p := range out {
				if math.IsNaN(float64(p)) || p < 0 {
					t.Fatalf("invalid probability %f", p)
				}
				sum += float64(p)
			}
			if math.Abs(sum-1) > 1e-6 {
				t.Errorf("probabilities sum to %f, want 1", sum)
			}
		})
	}
}

// TestForwardFidelity сквозной сценарий: типичная аудио-архитектура
// на входе 63x13, сверенная с независимой float64-реализацией формул
func TestForwardFidelity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randTensor := func(shape ...int) Tensor {
		n := 1
		for _, d := range shape {
			n *= d
		}
		data := make([]float32, n)
		for i := range data {
			data[i] = float32(rng.NormFloat64() * 0.3)
		}
		return Tensor{Shape: shape, Data: data}
	}
	posTensor := func(n int) Tensor {
		data := make([]float32, n)
		for i := range data {
			data[i] = float32(rng.Float64() + 0.5)
		}
		return Tensor{Shape: []int{n}, Data: data}
	}

	const frames, coeffs = 63, 13
	layers := []Layer{
		&Input{Name: "in", Frames: frames, Coeffs: coeffs},
		&BatchNorm{Name: "bn", Gamma: posTensor(coeffs), Beta: randTensor(coeffs), Mean: randTensor(coeffs), Variance: posTensor(coeffs)},
		&Conv1D{Name: "conv1", Filters: 8, KernelSize: 3, Activation: ActivationReLU, Kernel: randTensor(3, coeffs, 8), Bias: randTensor(8)},
		&MaxPool1D{Name: "pool1", PoolSize: 2},
		&Conv1D{Name: "conv2", Filters: 16, KernelSize: 3, Activation: ActivationReLU, Kernel: randTensor(3, 8, 16), Bias: randTensor(16)},
		&GlobalAvgPool1D{Name: "gap"},
		&Dense{Name: "fc1", Units: 32, Activation: ActivationReLU, Kernel: randTensor(16, 32), Bias: randTensor(32)},
		&Dense{Name: "fc2", Units: 3, Kernel: randTensor(32, 3), Bias: randTensor(3)},
		&Softmax{Name: "probs"},
	}

	input := make([]float32, frames*coeffs)
	for i := range input {
		input[i] = float32(rng.NormFloat64())
	}

	got, err := Forward(layers, input)
	if err != nil {
		t.Fatal(err)
	}
	want := forwardFloat64(t, layers, input)

	if len(got) != 3 {
		t.Fatalf("got %d classes, want 3", len(got))
	}
	var sum float64
	for i := range got {
		sum += float64(got[i])
		rel := math.Abs(float64(got[i])-want[i]) / math.Max(math.Abs(want[i]), 1e-12)
		if rel > 1e-3 {
			t.Errorf("class %d: %g vs reference %g (rel %g)", i, got[i], want[i], rel)
		}
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("probabilities sum to %f", sum)
	}
}

// forwardFloat64 независимая реализация тех же формул в double precision
func forwardFloat64(t *testing.T, layers []Layer, input []float32) []float64 {
	t.Helper()

	shapes, err := InferShapes(layers)
	if err != nil {
		t.Fatal(err)
	}

	cur := make([]float64, len(input))
	for i, v := range input {
		cur[i] = float64(v)
	}
	shape := shapes[0]

	for li := 1; li < len(layers); li++ {
		next := shapes[li]
		out := make([]float64, next.Flat())

		switch l := layers[li].(type) {
		case *BatchNorm:
			for ti := 0; ti < shape.Time; ti++ {
				for c := 0; c < shape.Channels; c++ {
					v := cur[ti*shape.Channels+c]
					out[ti*shape.Channels+c] = float64(l.Gamma.Data[c])*(v-float64(l.Mean.Data[c]))/
						math.Sqrt(float64(l.Variance.Data[c])+BatchNormEpsilon) + float64(l.Beta.Data[c])
				}
			}
		case *Conv1D:
			pad := l.KernelSize / 2
			for ti := 0; ti < shape.Time; ti++ {
				for o := 0; o < l.Filters; o++ {
					acc := float64(l.Bias.Data[o])
					for k := 0; k < l.KernelSize; k++ {
						src := ti - pad + k
						if src < 0 || src >= shape.Time {
							continue
						}
						for c := 0; c < shape.Channels; c++ {
							acc += cur[src*shape.Channels+c] * float64(l.Kernel.Data[(k*shape.Channels+c)*l.Filters+o])
						}
					}
					if l.Activation == ActivationReLU && acc < 0 {
						acc = 0
					}
					out[ti*l.Filters+o] = acc
				}
			}
		case *MaxPool1D:
			for ti := 0; ti < next.Time; ti++ {
				for c := 0; c < shape.Channels; c++ {
					best := cur[ti*l.PoolSize*shape.Channels+c]
					for p := 1; p < l.PoolSize; p++ {
						if v := cur[(ti*l.PoolSize+p)*shape.Channels+c]; v > best {
							best = v
						}
					}
					out[ti*shape.Channels+c] = best
				}
			}
		case *GlobalAvgPool1D:
			for c := 0; c < shape.Channels; c++ {
				sum := 0.0
				for ti := 0; ti < shape.Time; ti++ {
					sum += cur[ti*shape.Channels+c]
				}
				out[c] = sum / float64(shape.Time)
			}
		case *Dense:
			for o := 0; o < l.Units; o++ {
				acc := float64(l.Bias.Data[o])
				for i := 0; i < shape.Flat(); i++ {
					acc += cur[i] * float64(l.Kernel.Data[i*l.Units+o])
				}
				if l.Activation == ActivationReLU && acc < 0 {
					acc = 0
				}
				out[o] = acc
			}
		case *Softmax:
			max := cur[0]
			for _, v := range cur[1:] {
				if v > max {
					max = v
				}
			}
			sum := 0.0
			for i, v := range cur {
				out[i] = math.Exp(v - max)
				sum += out[i]
			}
			for i := range out {
				out[i] /= sum
			}
		}

		cur = out
		shape = next
	}
	return cur
}

func assertClose(t *testing.T, got, want float32, what string) {
	t.Helper()
	if math.Abs(float64(got-want)) > 1e-4 {
		t.Errorf("%s = %f, want %f", what, got, want)
	}
}
