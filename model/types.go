// Package model содержит владеющее представление обученной сети:
// закрытый набор типов слоёв с типизированными конфигами и весами,
// извлечение весов из результата тренировки и эталонный forward pass.
package model

import "fmt"

// LayerKind тип слоя из закрытого набора.
// Новый тип слоя требует нового эмиттера в codegen, поэтому набор
// перечислен явно, без динамической интроспекции.
type LayerKind string

const (
	KindInput           LayerKind = "input"
	KindBatchNorm       LayerKind = "batchnorm"
	KindConv1D          LayerKind = "conv1d"
	KindMaxPool1D       LayerKind = "maxpool1d"
	KindGlobalAvgPool1D LayerKind = "globalavgpool1d"
	KindDense           LayerKind = "dense"
	KindSoftmax         LayerKind = "softmax"
)

// Activation функция активации слоя
type Activation string

const (
	ActivationNone Activation = ""
	ActivationReLU Activation = "relu"
)

// BatchNormEpsilon epsilon в знаменателе batch normalization
const BatchNormEpsilon = 1e-3

// Tensor владеющий числовой буфер с явной формой.
// Data всегда собственная копия: тензоры тренера могут быть
// изменены или освобождены после извлечения.
type Tensor struct {
	Shape []int
	Data  []float32
}

// Len ожидаемая длина данных по форме
func (t Tensor) Len() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Clone глубокая копия тензора
func (t Tensor) Clone() Tensor {
	c := Tensor{
		Shape: make([]int, len(t.Shape)),
		Data:  make([]float32, len(t.Data)),
	}
	copy(c.Shape, t.Shape)
	copy(c.Data, t.Data)
	return c
}

// IOShape форма потока данных между слоями: Time отсчётов по Channels каналов.
// Вектор представляется как Time=1.
type IOShape struct {
	Time     int
	Channels int
}

// Flat длина плоского представления
func (s IOShape) Flat() int {
	return s.Time * s.Channels
}

// Layer один слой сети. Конкретные типы образуют закрытое множество:
// switch по типу в эмиттере и в forward pass покрывает все варианты.
type Layer interface {
	Kind() LayerKind
	LayerName() string
	// OutputShape выводит форму выхода из формы входа и проверяет
	// согласованность весов с формой входа
	OutputShape(in IOShape) (IOShape, error)
}

// Input входной слой: плоский вектор признаков длины Frames*Coeffs
// переинтерпретируется как Frames отсчётов по Coeffs каналов
type Input struct {
	Name   string
	Frames int
	Coeffs int
}

func (l *Input) Kind() LayerKind   { return KindInput }
func (l *Input) LayerName() string { return l.Name }

func (l *Input) OutputShape(in IOShape) (IOShape, error) {
	if l.Frames <= 0 || l.Coeffs <= 0 {
		return IOShape{}, &ShapeMismatchError{Layer: l.Name, Detail: fmt.Sprintf("invalid input shape %dx%d", l.Frames, l.Coeffs)}
	}
	return IOShape{Time: l.Frames, Channels: l.Coeffs}, nil
}

// BatchNorm нормализация по каналам: y = gamma*(x-mean)/sqrt(var+eps) + beta.
// Порядок весов источника: gamma, beta, mean, variance.
type BatchNorm struct {
	Name     string
	Gamma    Tensor
	Beta     Tensor
	Mean     Tensor
	Variance Tensor
}

func (l *BatchNorm) Kind() LayerKind   { return KindBatchNorm }
func (l *BatchNorm) LayerName() string { return l.Name }

func (l *BatchNorm) OutputShape(in IOShape) (IOShape, error) {
	c := in.Channels
	for _, t := range []struct {
		name   string
		tensor Tensor
	}{
		{"gamma", l.Gamma}, {"beta", l.Beta}, {"mean", l.Mean}, {"variance", l.Variance},
	} {
		if len(t.tensor.Shape) != 1 || t.tensor.Shape[0] != c || len(t.tensor.Data) != c {
			return IOShape{}, &ShapeMismatchError{
				Layer:  l.Name,
				Detail: fmt.Sprintf("%s shape %v does not match %d channels", t.name, t.tensor.Shape, c),
			}
		}
	}
	return in, nil
}

// Conv1D свёртка stride 1, same padding (pad = kernel/2), опциональный ReLU.
// Раскладка ядра: [KernelSize][inChannels][Filters].
type Conv1D struct {
	Name       string
	Filters    int
	KernelSize int
	Activation Activation
	Kernel     Tensor
	Bias       Tensor
}

func (l *Conv1D) Kind() LayerKind   { return KindConv1D }
func (l *Conv1D) LayerName() string { return l.Name }

func (l *Conv1D) OutputShape(in IOShape) (IOShape, error) {
	want := []int{l.KernelSize, in.Channels, l.Filters}
	if !shapeEqual(l.Kernel.Shape, want) || len(l.Kernel.Data) != l.KernelSize*in.Channels*l.Filters {
		return IOShape{}, &ShapeMismatchError{
			Layer:  l.Name,
			Detail: fmt.Sprintf("kernel shape %v, want %v", l.Kernel.Shape, want),
		}
	}
	if !shapeEqual(l.Bias.Shape, []int{l.Filters}) || len(l.Bias.Data) != l.Filters {
		return IOShape{}, &ShapeMismatchError{
			Layer:  l.Name,
			Detail: fmt.Sprintf("bias shape %v, want [%d]", l.Bias.Shape, l.Filters),
		}
	}
	return IOShape{Time: in.Time, Channels: l.Filters}, nil
}

// MaxPool1D непересекающиеся окна размера PoolSize, максимум по каждому каналу
type MaxPool1D struct {
	Name     string
	PoolSize int
}

func (l *MaxPool1D) Kind() LayerKind   { return KindMaxPool1D }
func (l *MaxPool1D) LayerName() string { return l.Name }

func (l *MaxPool1D) OutputShape(in IOShape) (IOShape, error) {
	if l.PoolSize <= 0 {
		return IOShape{}, &ShapeMismatchError{Layer: l.Name, Detail: fmt.Sprintf("pool size %d", l.PoolSize)}
	}
	outT := in.Time / l.PoolSize
	if outT == 0 {
		return IOShape{}, &ShapeMismatchError{
			Layer:  l.Name,
			Detail: fmt.Sprintf("input of %d steps shorter than pool size %d", in.Time, l.PoolSize),
		}
	}
	return IOShape{Time: outT, Channels: in.Channels}, nil
}

// GlobalAvgPool1D среднее по оси времени для каждого канала
type GlobalAvgPool1D struct {
	Name string
}

func (l *GlobalAvgPool1D) Kind() LayerKind   { return KindGlobalAvgPool1D }
func (l *GlobalAvgPool1D) LayerName() string { return l.Name }

func (l *GlobalAvgPool1D) OutputShape(in IOShape) (IOShape, error) {
	if in.Time <= 0 {
		return IOShape{}, &ShapeMismatchError{Layer: l.Name, Detail: "empty time axis"}
	}
	return IOShape{Time: 1, Channels: in.Channels}, nil
}

// Dense полносвязный слой над плоским входом, опциональный ReLU.
// Раскладка весов: [inUnits][Units].
type Dense struct {
	Name       string
	Units      int
	Activation Activation
	Kernel     Tensor
	Bias       Tensor
}

func (l *Dense) Kind() LayerKind   { return KindDense }
func (l *Dense) LayerName() string { return l.Name }

func (l *Dense) OutputShape(in IOShape) (IOShape, error) {
	inUnits := in.Flat()
	want := []int{inUnits, l.Units}
	if !shapeEqual(l.Kernel.Shape, want) || len(l.Kernel.Data) != inUnits*l.Units {
		return IOShape{}, &ShapeMismatchError{
			Layer:  l.Name,
			Detail: fmt.Sprintf("kernel shape %v, want %v", l.Kernel.Shape, want),
		}
	}
	if !shapeEqual(l.Bias.Shape, []int{l.Units}) || len(l.Bias.Data) != l.Units {
		return IOShape{}, &ShapeMismatchError{
			Layer:  l.Name,
			Detail: fmt.Sprintf("bias shape %v, want [%d]", l.Bias.Shape, l.Units),
		}
	}
	return IOShape{Time: 1, Channels: l.Units}, nil
}

// Softmax численно устойчивый softmax над вектором
type Softmax struct {
	Name string
}

func (l *Softmax) Kind() LayerKind   { return KindSoftmax }
func (l *Softmax) LayerName() string { return l.Name }

func (l *Softmax) OutputShape(in IOShape) (IOShape, error) {
	if in.Time != 1 {
		return IOShape{}, &ShapeMismatchError{
			Layer:  l.Name,
			Detail: fmt.Sprintf("softmax expects a vector, got %d time steps", in.Time),
		}
	}
	return in, nil
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// InferShapes проходит по цепочке слоёв и возвращает форму выхода каждого
// слоя. Первая несогласованность форм прерывает проход.
func InferShapes(layers []Layer) ([]IOShape, error) {
	if len(layers) == 0 {
		return nil, &ShapeMismatchError{Layer: "model", Detail: "no layers"}
	}
	shapes := make([]IOShape, len(layers))
	cur := IOShape{}
	for i, l := range layers {
		next, err := l.OutputShape(cur)
		if err != nil {
			return nil, err
		}
		shapes[i] = next
		cur = next
	}
	return shapes, nil
}

// OutputWidth ширина финального выхода модели (число классов)
func OutputWidth(layers []Layer) (int, error) {
	shapes, err := InferShapes(layers)
	if err != nil {
		return 0, err
	}
	return shapes[len(shapes)-1].Flat(), nil
}
