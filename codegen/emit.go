package codegen

import (
	"fmt"
	"strings"

	"tinysense/dsp"
	"tinysense/model"
)

// Имена генерируемых файлов. Набор фиксирован: оболочка упаковывает
// их внешним архиватором как есть.
const (
	FileModelHeader = "tinysense_model.h"
	FileModelSource = "tinysense_model.c"
	FileModelData   = "tinysense_model_data.h"
	FileMFCCHeader  = "tinysense_mfcc.h"
	FileMFCCSource  = "tinysense_mfcc.c"
	FileReadme      = "README.md"
)

// Emitter генерирует артефакты по извлечённой модели.
// Без принтера используется C-диалект.
type Emitter struct {
	Printer Printer
	Trace   model.Trace
}

// NewEmitter эмиттер C-диалекта
func NewEmitter() *Emitter {
	return &Emitter{Printer: NewCPrinter()}
}

// Emit собирает полный набор артефактов. Любая ошибка валидации или
// сериализации прерывает генерацию целиком: частичный набор не
// возвращается никогда. Детерминировано: одинаковый вход даёт
// побайтово одинаковый выход.
func (e *Emitter) Emit(cfg dsp.FeatureConfig, layers []model.Layer, labels []string) (Artifacts, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, &dsp.ConfigError{Field: "labels", Reason: "empty label list"}
	}

	shapes, err := model.InferShapes(layers)
	if err != nil {
		return nil, err
	}
	input, ok := layers[0].(*model.Input)
	if !ok {
		return nil, &model.ShapeMismatchError{Layer: layers[0].LayerName(), Detail: "first layer must be input"}
	}
	if input.Coeffs != cfg.NumMFCC {
		return nil, &model.ShapeMismatchError{
			Layer:  input.Name,
			Detail: fmt.Sprintf("input expects %d coefficients per frame, feature config produces %d", input.Coeffs, cfg.NumMFCC),
		}
	}

	numClasses := shapes[len(shapes)-1].Flat()
	if len(labels) != numClasses {
		return nil, &model.ShapeMismatchError{
			Layer:  "labels",
			Detail: fmt.Sprintf("%d labels for %d output classes", len(labels), numClasses),
		}
	}

	e.trace("[Emit] %d layers, %d classes, feature length %d", len(layers), numClasses, input.Frames*input.Coeffs)

	p := e.Printer
	if p == nil {
		p = NewCPrinter()
	}

	units := []*Unit{
		e.modelDataUnit(layers, shapes),
		e.modelHeaderUnit(input, numClasses),
		e.modelSourceUnit(layers, shapes, labels),
		e.mfccHeaderUnit(cfg, input),
		e.mfccSourceUnit(cfg),
	}

	out := Artifacts{}
	for _, u := range units {
		text, err := p.Render(u)
		if err != nil {
			return nil, err
		}
		out[u.Filename] = text
		e.trace("[Emit] %s: %d bytes", u.Filename, len(text))
	}
	out[FileReadme] = e.readme(cfg, layers, shapes, labels)
	return out, nil
}

func (e *Emitter) trace(format string, args ...any) {
	if e.Trace != nil {
		e.Trace(format, args...)
	}
}

// fileHeader общий заголовок генерируемых файлов; без временных меток,
// чтобы повторная генерация давала побайтово тот же результат
func fileHeader(what string) []string {
	return []string{
		"Generated by tinysense. Do not edit.",
		what,
	}
}

// sanitizeIdent приводит имя слоя к идентификатору C
func sanitizeIdent(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "layer"
	}
	return b.String()
}

// weightArrays упорядоченные весовые массивы слоя: имя, тензор
func weightArrays(l model.Layer) []struct {
	Name   string
	Tensor model.Tensor
} {
	type na = struct {
		Name   string
		Tensor model.Tensor
	}
	id := sanitizeIdent(l.LayerName())
	switch layer := l.(type) {
	case *model.BatchNorm:
		return []na{
			{"ts_" + id + "_gamma", layer.Gamma},
			{"ts_" + id + "_beta", layer.Beta},
			{"ts_" + id + "_mean", layer.Mean},
			{"ts_" + id + "_var", layer.Variance},
		}
	case *model.Conv1D:
		return []na{
			{"ts_" + id + "_w", layer.Kernel},
			{"ts_" + id + "_b", layer.Bias},
		}
	case *model.Dense:
		return []na{
			{"ts_" + id + "_w", layer.Kernel},
			{"ts_" + id + "_b", layer.Bias},
		}
	}
	return nil
}

// modelDataUnit заголовок с весовыми константами всех слоёв
func (e *Emitter) modelDataUnit(layers []model.Layer, shapes []model.IOShape) *Unit {
	u := &Unit{
		Filename: FileModelData,
		Header:   fileHeader("Trained weight constants. Layout per layer type is documented next to each array."),
		Items: []Item{
			Raw{Lines: []string{"#ifndef TINYSENSE_MODEL_DATA_H", "#define TINYSENSE_MODEL_DATA_H", ""}},
		},
	}

	for i, l := range layers {
		arrays := weightArrays(l)
		if len(arrays) == 0 {
			continue
		}
		doc := layerDataDoc(l, shapes[i])
		for _, a := range arrays {
			u.Items = append(u.Items, ConstArray{
				Doc:    fmt.Sprintf("%s: shape %v", doc, a.Tensor.Shape),
				Name:   a.Name,
				Floats: a.Tensor.Data,
				Row:    8,
			})
		}
	}

	u.Items = append(u.Items, Raw{Lines: []string{"#endif /* TINYSENSE_MODEL_DATA_H */"}})
	return u
}

func layerDataDoc(l model.Layer, out model.IOShape) string {
	switch l.(type) {
	case *model.Conv1D:
		return fmt.Sprintf("%s (conv1d, layout [kernel][in][out], output %dx%d)", l.LayerName(), out.Time, out.Channels)
	case *model.Dense:
		return fmt.Sprintf("%s (dense, layout [in][out], output %d)", l.LayerName(), out.Flat())
	case *model.BatchNorm:
		return fmt.Sprintf("%s (batchnorm, per-channel)", l.LayerName())
	}
	return l.LayerName()
}

// modelHeaderUnit публичный API модели
func (e *Emitter) modelHeaderUnit(input *model.Input, numClasses int) *Unit {
	return &Unit{
		Filename: FileModelHeader,
		Header:   fileHeader("Public inference API."),
		Items: []Item{
			Raw{Lines: []string{"#ifndef TINYSENSE_MODEL_H", "#define TINYSENSE_MODEL_H", ""}},
			Macro{Name: "TS_INPUT_FRAMES", Value: fmt.Sprintf("%d", input.Frames)},
			Macro{Name: "TS_INPUT_COEFFS", Value: fmt.Sprintf("%d", input.Coeffs)},
			Macro{Name: "TS_FEATURE_LENGTH", Value: fmt.Sprintf("%d", input.Frames*input.Coeffs)},
			Macro{Name: "TS_NUM_CLASSES", Value: fmt.Sprintf("%d", numClasses)},
			Raw{Lines: []string{
				"",
				"/* Runs the forward pass over a flat feature vector of",
				" * TS_FEATURE_LENGTH values (frame-major MFCC) and writes",
				" * TS_NUM_CLASSES class probabilities into probs. */",
				"void tinysense_predict(const float *features, float *probs);",
				"",
				"/* Label string for a class index. */",
				"const char *tinysense_label(int class_index);",
				"",
				"#endif /* TINYSENSE_MODEL_H */",
			}},
		},
	}
}

// modelSourceUnit функции слоёв и драйвер forward pass.
// Размеры промежуточных буферов выводятся из форм слоёв:
// смена архитектуры протягивается сюда автоматически.
func (e *Emitter) modelSourceUnit(layers []model.Layer, shapes []model.IOShape, labels []string) *Unit {
	maxFlat := 0
	for _, s := range shapes[1:] {
		if f := s.Flat(); f > maxFlat {
			maxFlat = f
		}
	}

	u := &Unit{
		Filename: FileModelSource,
		Header:   fileHeader("Forward pass. Each layer is plain loops over the arrays from tinysense_model_data.h."),
		Items: []Item{
			Include{Path: FileModelHeader},
			Include{Path: FileModelData},
			Include{Path: "math.h", System: true},
			Raw{Lines: []string{
				"",
				fmt.Sprintf("static float ts_buf_a[%d];", maxFlat),
				fmt.Sprintf("static float ts_buf_b[%d];", maxFlat),
				"",
			}},
			ConstArray{Doc: "class labels, index matches the probability vector", Name: "ts_labels", Strings: labels},
		},
	}

	var calls []string
	cur := "features"
	next := "ts_buf_a"
	other := "ts_buf_b"
	for i := 1; i < len(layers); i++ {
		fn := fmt.Sprintf("ts_layer_%d_%s", i, sanitizeIdent(layers[i].LayerName()))
		u.Items = append(u.Items, e.layerFunction(fn, layers[i], shapes[i-1], shapes[i]))

		dst := next
		if i == len(layers)-1 {
			dst = "probs"
		}
		calls = append(calls, fmt.Sprintf("%s(%s, %s);", fn, cur, dst))
		cur = next
		next, other = other, next
	}

	u.Items = append(u.Items, Function{
		Doc:       "Forward pass driver: features in, class probabilities out.",
		Signature: "void tinysense_predict(const float *features, float *probs)",
		Body:      calls,
	})

	u.Items = append(u.Items, Function{
		Doc:       "Label string for a class index.",
		Signature: "const char *tinysense_label(int class_index)",
		Body: []string{
			"if (class_index < 0 || class_index >= TS_NUM_CLASSES) return \"?\";",
			"return ts_labels[class_index];",
		},
	})
	return u
}

// layerFunction печатает тело одного слоя по его числовому контракту
func (e *Emitter) layerFunction(name string, l model.Layer, in, out model.IOShape) Function {
	sig := fmt.Sprintf("static void %s(const float *in, float *out)", name)

	switch layer := l.(type) {
	case *model.BatchNorm:
		id := sanitizeIdent(layer.Name)
		return Function{
			Doc:       fmt.Sprintf("%s: y = gamma*(x-mean)/sqrt(var+1e-3) + beta", layer.Name),
			Signature: sig,
			Body: []string{
				fmt.Sprintf("for (int t = 0; t < %d; ++t) {", in.Time),
				fmt.Sprintf("  for (int c = 0; c < %d; ++c) {", in.Channels),
				fmt.Sprintf("    float v = in[t * %d + c];", in.Channels),
				fmt.Sprintf("    out[t * %d + c] = ts_%s_gamma[c] * ((v - ts_%s_mean[c]) / sqrtf(ts_%s_var[c] + 1.0e-3f)) + ts_%s_beta[c];", in.Channels, id, id, id, id),
				"  }",
				"}",
			},
		}

	case *model.Conv1D:
		id := sanitizeIdent(layer.Name)
		pad := layer.KernelSize / 2
		body := []string{
			fmt.Sprintf("for (int t = 0; t < %d; ++t) {", in.Time),
			fmt.Sprintf("  for (int o = 0; o < %d; ++o) {", layer.Filters),
			fmt.Sprintf("    float acc = ts_%s_b[o];", id),
			fmt.Sprintf("    for (int k = 0; k < %d; ++k) {", layer.KernelSize),
			fmt.Sprintf("      int src = t - %d + k;", pad),
			fmt.Sprintf("      if (src < 0 || src >= %d) continue; /* same padding */", in.Time),
			fmt.Sprintf("      for (int c = 0; c < %d; ++c) {", in.Channels),
			fmt.Sprintf("        acc += in[src * %d + c] * ts_%s_w[(k * %d + c) * %d + o];", in.Channels, id, in.Channels, layer.Filters),
			"      }",
			"    }",
		}
		if layer.Activation == model.ActivationReLU {
			body = append(body, "    if (acc < 0.0f) acc = 0.0f;")
		}
		body = append(body,
			fmt.Sprintf("    out[t * %d + o] = acc;", layer.Filters),
			"  }",
			"}",
		)
		return Function{
			Doc:       fmt.Sprintf("%s: conv1d stride 1, same padding %d, kernel %d", layer.Name, pad, layer.KernelSize),
			Signature: sig,
			Body:      body,
		}

	case *model.MaxPool1D:
		return Function{
			Doc:       fmt.Sprintf("%s: non-overlapping max pool of %d", layer.Name, layer.PoolSize),
			Signature: sig,
			Body: []string{
				fmt.Sprintf("for (int t = 0; t < %d; ++t) {", out.Time),
				fmt.Sprintf("  for (int c = 0; c < %d; ++c) {", in.Channels),
				fmt.Sprintf("    float best = in[t * %d * %d + c];", layer.PoolSize, in.Channels),
				fmt.Sprintf("    for (int p = 1; p < %d; ++p) {", layer.PoolSize),
				fmt.Sprintf("      float v = in[(t * %d + p) * %d + c];", layer.PoolSize, in.Channels),
				"      if (v > best) best = v;",
				"    }",
				fmt.Sprintf("    out[t * %d + c] = best;", in.Channels),
				"  }",
				"}",
			},
		}

	case *model.GlobalAvgPool1D:
		return Function{
			Doc:       fmt.Sprintf("%s: mean over the time axis per channel", layer.Name),
			Signature: sig,
			Body: []string{
				fmt.Sprintf("for (int c = 0; c < %d; ++c) {", in.Channels),
				"  float sum = 0.0f;",
				fmt.Sprintf("  for (int t = 0; t < %d; ++t) sum += in[t * %d + c];", in.Time, in.Channels),
				fmt.Sprintf("  out[c] = sum / %d.0f;", in.Time),
				"}",
			},
		}

	case *model.Dense:
		id := sanitizeIdent(layer.Name)
		body := []string{
			fmt.Sprintf("for (int o = 0; o < %d; ++o) {", layer.Units),
			fmt.Sprintf("  float acc = ts_%s_b[o];", id),
			fmt.Sprintf("  for (int i = 0; i < %d; ++i) acc += in[i] * ts_%s_w[i * %d + o];", in.Flat(), id, layer.Units),
		}
		if layer.Activation == model.ActivationReLU {
			body = append(body, "  if (acc < 0.0f) acc = 0.0f;")
		}
		body = append(body, "  out[o] = acc;", "}")
		return Function{
			Doc:       fmt.Sprintf("%s: dense %d -> %d", layer.Name, in.Flat(), layer.Units),
			Signature: sig,
			Body:      body,
		}

	case *model.Softmax:
		n := in.Flat()
		return Function{
			Doc:       fmt.Sprintf("%s: numerically stable softmax", layer.Name),
			Signature: sig,
			Body: []string{
				"float max = in[0];",
				fmt.Sprintf("for (int i = 1; i < %d; ++i) if (in[i] > max) max = in[i];", n),
				"float sum = 0.0f;",
				fmt.Sprintf("for (int i = 0; i < %d; ++i) { out[i] = expf(in[i] - max); sum += out[i]; }", n),
				fmt.Sprintf("for (int i = 0; i < %d; ++i) out[i] /= sum;", n),
			},
		}
	}

	// Input и будущие бесвесовые слои: тождественное копирование
	return Function{
		Doc:       fmt.Sprintf("%s: identity", l.LayerName()),
		Signature: sig,
		Body: []string{
			fmt.Sprintf("for (int i = 0; i < %d; ++i) out[i] = in[i];", out.Flat()),
		},
	}
}

// mfccHeaderUnit заголовок звукового фронтенда
func (e *Emitter) mfccHeaderUnit(cfg dsp.FeatureConfig, input *model.Input) *Unit {
	preEmph := "0"
	if cfg.PreEmphasis {
		preEmph = "1"
	}
	return &Unit{
		Filename: FileMFCCHeader,
		Header:   fileHeader("MFCC front end. Mirrors the extraction used while collecting training samples."),
		Items: []Item{
			Raw{Lines: []string{"#ifndef TINYSENSE_MFCC_H", "#define TINYSENSE_MFCC_H", ""}},
			Macro{Name: "TS_SAMPLE_RATE", Value: fmt.Sprintf("%d", cfg.SampleRate)},
			Macro{Name: "TS_FFT_SIZE", Value: fmt.Sprintf("%d", cfg.FFTSize)},
			Macro{Name: "TS_HOP_LENGTH", Value: fmt.Sprintf("%d", cfg.HopLength)},
			Macro{Name: "TS_NUM_MFCC", Value: fmt.Sprintf("%d", cfg.NumMFCC)},
			Macro{Name: "TS_NUM_MEL_FILTERS", Value: fmt.Sprintf("%d", cfg.NumMelFilters)},
			Macro{Name: "TS_NUM_BINS", Value: "(TS_FFT_SIZE / 2 + 1)"},
			Macro{Name: "TS_NUM_FRAMES", Value: fmt.Sprintf("%d", input.Frames)},
			Macro{Name: "TS_PRE_EMPHASIS", Value: preEmph},
			Raw{Lines: []string{
				"",
				"/* Builds the window and DCT tables. Call once before extraction. */",
				"void tinysense_mfcc_init(void);",
				"",
				"/* One analysis frame: num_samples raw samples (zero-padded to",
				" * TS_FFT_SIZE) -> TS_NUM_MFCC coefficients. */",
				"void tinysense_mfcc_frame(const float *samples, int num_samples, float *out);",
				"",
				"/* Whole recording -> TS_NUM_FRAMES * TS_NUM_MFCC flat feature",
				" * vector, frame-major. Short recordings are zero-padded. */",
				"void tinysense_mfcc_extract(const float *samples, int num_samples, float *out);",
				"",
				"#endif /* TINYSENSE_MFCC_H */",
			}},
		},
	}
}

// mfccSourceUnit реализация фронтенда из элементарной арифметики:
// прямое ДПФ вместо библиотечного FFT, фильтры по предвычисленным бинам
func (e *Emitter) mfccSourceUnit(cfg dsp.FeatureConfig) *Unit {
	fb := dsp.BuildMelFilterbank(cfg)
	left := make([]int, fb.Len())
	center := make([]int, fb.Len())
	right := make([]int, fb.Len())
	for i, f := range fb.Filters {
		left[i], center[i], right[i] = f.Left, f.Center, f.Right
	}

	winA, winB := "0.54f", "0.46f"
	if cfg.Window == dsp.WindowHann {
		winA, winB = "0.5f", "0.5f"
	}

	frameBody := []string{
		"static float frame[TS_FFT_SIZE];",
		"static float power[TS_NUM_BINS];",
		"static float mel[TS_NUM_MEL_FILTERS];",
		"",
		"for (int n = 0; n < TS_FFT_SIZE; ++n) {",
		"  float s = (n < num_samples) ? samples[n] : 0.0f;",
	}
	if cfg.PreEmphasis {
		frameBody = append(frameBody,
			"  if (n > 0 && n < num_samples) s -= 0.97f * samples[n - 1];",
		)
	}
	frameBody = append(frameBody,
		"  frame[n] = s * ts_window[n];",
		"}",
		"",
		"for (int k = 0; k < TS_NUM_BINS; ++k) {",
		"  float re = 0.0f, im = 0.0f;",
		"  for (int n = 0; n < TS_FFT_SIZE; ++n) {",
		"    float ph = -2.0f * TS_PI * (float)k * (float)n / (float)TS_FFT_SIZE;",
		"    re += frame[n] * cosf(ph);",
		"    im += frame[n] * sinf(ph);",
		"  }",
		"  power[k] = re * re + im * im;",
		"}",
		"",
		"for (int m = 0; m < TS_NUM_MEL_FILTERS; ++m) {",
		"  float sum = 0.0f;",
		"  for (int k = ts_mel_left[m]; k < ts_mel_right[m]; ++k) {",
		"    float w;",
		"    if (k < ts_mel_center[m])",
		"      w = (float)(k - ts_mel_left[m]) / (float)(ts_mel_center[m] - ts_mel_left[m]);",
		"    else",
		"      w = (float)(ts_mel_right[m] - k) / (float)(ts_mel_right[m] - ts_mel_center[m]);",
		"    sum += power[k] * w;",
		"  }",
		"  if (sum < 1.0e-10f) sum = 1.0e-10f; /* log floor */",
		"  mel[m] = logf(sum);",
		"}",
		"",
		"for (int i = 0; i < TS_NUM_MFCC; ++i) {",
		"  float sum = 0.0f;",
		"  for (int j = 0; j < TS_NUM_MEL_FILTERS; ++j)",
		"    sum += mel[j] * ts_dct[i * TS_NUM_MEL_FILTERS + j];",
		"  out[i] = sum;",
		"}",
	)

	return &Unit{
		Filename: FileMFCCSource,
		Header:   fileHeader("MFCC front end from first-principles arithmetic (no DSP library on the target)."),
		Items: []Item{
			Include{Path: FileMFCCHeader},
			Include{Path: "math.h", System: true},
			Raw{Lines: []string{"", "#define TS_PI 3.14159265358979323846f", ""}},
			ConstArray{Doc: "triangular mel filters: left FFT bin per filter", Name: "ts_mel_left", Ints: left, Row: 10},
			ConstArray{Doc: "triangular mel filters: center FFT bin per filter", Name: "ts_mel_center", Ints: center, Row: 10},
			ConstArray{Doc: "triangular mel filters: right FFT bin per filter", Name: "ts_mel_right", Ints: right, Row: 10},
			Raw{Lines: []string{
				"static float ts_window[TS_FFT_SIZE];",
				"static float ts_dct[TS_NUM_MFCC * TS_NUM_MEL_FILTERS];",
				"",
			}},
			Function{
				Doc:       "Builds the window and DCT-II tables.",
				Signature: "void tinysense_mfcc_init(void)",
				Body: []string{
					"for (int n = 0; n < TS_FFT_SIZE; ++n)",
					fmt.Sprintf("  ts_window[n] = %s - %s * cosf(2.0f * TS_PI * (float)n / (float)(TS_FFT_SIZE - 1));", winA, winB),
					"for (int i = 0; i < TS_NUM_MFCC; ++i)",
					"  for (int j = 0; j < TS_NUM_MEL_FILTERS; ++j)",
					"    ts_dct[i * TS_NUM_MEL_FILTERS + j] = cosf(TS_PI * (float)i * ((float)j + 0.5f) / (float)TS_NUM_MEL_FILTERS);",
				},
			},
			Function{
				Doc:       "window -> DFT -> power spectrum -> mel energies -> log -> DCT-II",
				Signature: "void tinysense_mfcc_frame(const float *samples, int num_samples, float *out)",
				Body:      frameBody,
			},
			Function{
				Doc:       "Slides tinysense_mfcc_frame with stride TS_HOP_LENGTH over the recording.",
				Signature: "void tinysense_mfcc_extract(const float *samples, int num_samples, float *out)",
				Body: []string{
					"for (int f = 0; f < TS_NUM_FRAMES; ++f) {",
					"  int start = f * TS_HOP_LENGTH;",
					"  int avail = num_samples - start;",
					"  if (avail < 0) avail = 0;",
					"  const float *p = (avail > 0) ? samples + start : samples;",
					"  tinysense_mfcc_frame(p, avail, out + f * TS_NUM_MFCC);",
					"}",
				},
			},
		},
	}
}

// readme человекочитаемое описание комплекта
func (e *Emitter) readme(cfg dsp.FeatureConfig, layers []model.Layer, shapes []model.IOShape, labels []string) string {
	var b strings.Builder
	b.WriteString("# tinysense generated model\n\n")
	b.WriteString("Standalone C sources for a trained sensor classifier. No runtime\n")
	b.WriteString("dependencies beyond libm.\n\n")

	b.WriteString("## Files\n\n")
	fmt.Fprintf(&b, "- `%s` / `%s` — forward pass\n", FileModelHeader, FileModelSource)
	fmt.Fprintf(&b, "- `%s` — trained weights\n", FileModelData)
	fmt.Fprintf(&b, "- `%s` / `%s` — MFCC feature extraction\n\n", FileMFCCHeader, FileMFCCSource)

	b.WriteString("## Feature extraction\n\n")
	fmt.Fprintf(&b, "- sample rate: %d Hz\n", cfg.SampleRate)
	fmt.Fprintf(&b, "- FFT size: %d, hop: %d\n", cfg.FFTSize, cfg.HopLength)
	fmt.Fprintf(&b, "- %d mel filters (%.0f–%.0f Hz), %d MFCC per frame\n", cfg.NumMelFilters, cfg.FMin, cfg.FMax, cfg.NumMFCC)
	fmt.Fprintf(&b, "- window: %s, pre-emphasis: %v\n\n", cfg.Window, cfg.PreEmphasis)

	b.WriteString("## Layers\n\n")
	for i, l := range layers {
		fmt.Fprintf(&b, "%d. %s (%s) -> %dx%d\n", i+1, l.LayerName(), l.Kind(), shapes[i].Time, shapes[i].Channels)
	}

	b.WriteString("\n## Classes\n\n")
	for i, label := range labels {
		fmt.Fprintf(&b, "%d. %s\n", i, label)
	}

	b.WriteString("\n## Usage\n\n")
	b.WriteString("```c\n")
	b.WriteString("tinysense_mfcc_init();\n")
	b.WriteString("static float features[TS_FEATURE_LENGTH];\n")
	b.WriteString("static float probs[TS_NUM_CLASSES];\n")
	b.WriteString("tinysense_mfcc_extract(recording, num_samples, features);\n")
	b.WriteString("tinysense_predict(features, probs);\n")
	b.WriteString("```\n")
	return b.String()
}
