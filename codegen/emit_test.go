package codegen

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"tinysense/dsp"
	"tinysense/model"
)

// testModel типичная аудио-архитектура на 3 класса, вход 63x13
func testModel(t *testing.T) []model.Layer {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	randTensor := func(shape ...int) model.Tensor {
		n := 1
		for _, d := range shape {
			n *= d
		}
		data := make([]float32, n)
		for i := range data {
			data[i] = float32(rng.NormFloat64() * 0.2)
		}
		return model.Tensor{Shape: shape, Data: data}
	}
	posTensor := func(n int) model.Tensor {
		tn := randTensor(n)
		for i := range tn.Data {
			tn.Data[i] = float32(math.Abs(float64(tn.Data[i]))) + 0.5
		}
		return tn
	}

	return []model.Layer{
		&model.Input{Name: "reshape", Frames: 63, Coeffs: 13},
		&model.BatchNorm{Name: "bn_1", Gamma: posTensor(13), Beta: randTensor(13), Mean: randTensor(13), Variance: posTensor(13)},
		&model.Conv1D{Name: "conv1d_1", Filters: 8, KernelSize: 3, Activation: model.ActivationReLU, Kernel: randTensor(3, 13, 8), Bias: randTensor(8)},
		&model.MaxPool1D{Name: "pool_1", PoolSize: 2},
		&model.GlobalAvgPool1D{Name: "gap"},
		&model.Dense{Name: "dense_1", Units: 16, Activation: model.ActivationReLU, Kernel: randTensor(8, 16), Bias: randTensor(16)},
		&model.Dense{Name: "dense_2", Units: 3, Kernel: randTensor(16, 3), Bias: randTensor(3)},
		&model.Softmax{Name: "probs"},
	}
}

// TestEmitProducesFullSet успешная генерация отдаёт весь набор файлов
func TestEmitProducesFullSet(t *testing.T) {
	artifacts, err := NewEmitter().Emit(dsp.DefaultFeatureConfig(), testModel(t), []string{"on", "off", "silence"})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{FileModelHeader, FileModelSource, FileModelData, FileMFCCHeader, FileMFCCSource, FileReadme} {
		if _, ok := artifacts[name]; !ok {
			t.Errorf("artifact %s missing", name)
		}
	}
	if len(artifacts) != 6 {
		t.Errorf("got %d artifacts, want 6", len(artifacts))
	}
}

// TestEmitIdempotent одинаковый вход даёт побайтово одинаковый выход
func TestEmitIdempotent(t *testing.T) {
	cfg := dsp.DefaultFeatureConfig()
	labels := []string{"on", "off", "silence"}

	a, err := NewEmitter().Emit(cfg, testModel(t), labels)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewEmitter().Emit(cfg, testModel(t), labels)
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != len(b) {
		t.Fatalf("artifact counts differ: %d vs %d", len(a), len(b))
	}
	for name, text := range a {
		if b[name] != text {
			t.Errorf("artifact %s differs between identical runs", name)
		}
	}
}

// TestEmitLabelCountMismatch генерация падает тогда и только тогда,
// когда число меток не равно ширине выхода
func TestEmitLabelCountMismatch(t *testing.T) {
	cfg := dsp.DefaultFeatureConfig()

	tests := []struct {
		name    string
		labels  []string
		wantErr bool
	}{
		{"matching three labels", []string{"on", "off", "silence"}, false},
		{"two labels for three classes", []string{"on", "off"}, true},
		{"four labels for three classes", []string{"a", "b", "c", "d"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEmitter().Emit(cfg, testModel(t), tt.labels)
			if !tt.wantErr {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			var sme *model.ShapeMismatchError
			if !errors.As(err, &sme) {
				t.Fatalf("got %v, want ShapeMismatchError", err)
			}
		})
	}
}

// TestEmitEmptyLabels пустой список меток — ConfigError, а не артефакт
// на ноль классов
func TestEmitEmptyLabels(t *testing.T) {
	_, err := NewEmitter().Emit(dsp.DefaultFeatureConfig(), testModel(t), nil)
	var ce *dsp.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ConfigError", err)
	}
}

// TestEmitInvalidFeatureConfig невалидный конфиг прерывает генерацию
func TestEmitInvalidFeatureConfig(t *testing.T) {
	cfg := dsp.DefaultFeatureConfig()
	cfg.FMax = 10000 // за пределом Найквиста

	_, err := NewEmitter().Emit(cfg, testModel(t), []string{"on", "off", "silence"})
	var ce *dsp.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ConfigError", err)
	}
}

// TestEmitNaNWeight NaN в весах — EncodingError, артефакты не возвращаются
func TestEmitNaNWeight(t *testing.T) {
	layers := testModel(t)
	dense := layers[5].(*model.Dense)
	dense.Kernel.Data[0] = float32(math.NaN())

	artifacts, err := NewEmitter().Emit(dsp.DefaultFeatureConfig(), layers, []string{"on", "off", "silence"})
	var ee *model.EncodingError
	if !errors.As(err, &ee) {
		t.Fatalf("got %v, want EncodingError", err)
	}
	if artifacts != nil {
		t.Error("partial artifacts returned alongside error")
	}
}

// TestEmitReferencedArraysDefined каждый ts_-массив, на который ссылается
// сгенерированный код, где-то в наборе определён
func TestEmitReferencedArraysDefined(t *testing.T) {
	artifacts, err := NewEmitter().Emit(dsp.DefaultFeatureConfig(), testModel(t), []string{"on", "off", "silence"})
	if err != nil {
		t.Fatal(err)
	}

	defined := map[string]bool{}
	defRe := regexp.MustCompile(`static (?:const )?(?:float|int|char \*const|const char \*const) (ts_\w+)\[`)
	for _, text := range artifacts {
		for _, m := range defRe.FindAllStringSubmatch(text, -1) {
			defined[m[1]] = true
		}
	}

	useRe := regexp.MustCompile(`(ts_\w+)\[`)
	for name, text := range artifacts {
		if strings.HasSuffix(name, ".md") {
			continue
		}
		for _, m := range useRe.FindAllStringSubmatch(text, -1) {
			if !defined[m[1]] {
				t.Errorf("%s references undefined array %s", name, m[1])
			}
		}
	}
}

// TestEmitMelConstantsMatchDSP бины фильтров в C совпадают с фильтрами,
// которыми считались обучающие признаки
func TestEmitMelConstantsMatchDSP(t *testing.T) {
	cfg := dsp.DefaultFeatureConfig()
	artifacts, err := NewEmitter().Emit(cfg, testModel(t), []string{"on", "off", "silence"})
	if err != nil {
		t.Fatal(err)
	}

	fb := dsp.BuildMelFilterbank(cfg)
	src := artifacts[FileMFCCSource]
	for _, f := range fb.Filters {
		for _, bin := range []int{f.Left, f.Center, f.Right} {
			if !strings.Contains(src, fmt.Sprintf("%d", bin)) {
				t.Fatalf("bin %d not present in generated source", bin)
			}
		}
	}
	// Первый фильтр: точные значения в начале массивов
	if !strings.Contains(src, "ts_mel_left") || !strings.Contains(src, "ts_mel_center") || !strings.Contains(src, "ts_mel_right") {
		t.Error("filter bin arrays missing")
	}
}

// TestEmitInputCoeffsMismatch вход модели должен соответствовать числу MFCC
func TestEmitInputCoeffsMismatch(t *testing.T) {
	cfg := dsp.DefaultFeatureConfig()
	cfg.NumMFCC = 12 // модель обучена на 13

	_, err := NewEmitter().Emit(cfg, testModel(t), []string{"on", "off", "silence"})
	var sme *model.ShapeMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("got %v, want ShapeMismatchError", err)
	}
}

// TestEmitBuffersSized промежуточные буферы выводятся из форм слоёв
func TestEmitBuffersSized(t *testing.T) {
	artifacts, err := NewEmitter().Emit(dsp.DefaultFeatureConfig(), testModel(t), []string{"on", "off", "silence"})
	if err != nil {
		t.Fatal(err)
	}

	// Максимальная промежуточная форма: 63x13 после batchnorm = 819
	src := artifacts[FileModelSource]
	if !strings.Contains(src, "static float ts_buf_a[819];") {
		t.Errorf("scratch buffer not sized from layer shapes:\n%s", firstLines(src, 20))
	}
}

func firstLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
