package dsp

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Extractor вычисляет MFCC-коэффициенты по сырым сэмплам.
// Все таблицы (окно, фильтры, DCT) предвычисляются один раз,
// ExtractFrame не аллоцирует в горячем цикле.
type Extractor struct {
	cfg FeatureConfig
	fb  *MelFilterbank
	fft *fourier.FFT

	window []float64   // оконная функция длины FFTSize
	dct    [][]float64 // [NumMFCC][NumMelFilters], DCT-II косинусы

	// Переиспользуемые буферы одного фрейма
	frame  []float64
	power  []float64
	melBuf []float64
}

// NewExtractor создаёт извлекатель; конфигурация валидируется здесь же
func NewExtractor(cfg FeatureConfig) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Extractor{
		cfg:    cfg,
		fb:     BuildMelFilterbank(cfg),
		fft:    fourier.NewFFT(cfg.FFTSize),
		window: buildWindow(cfg.Window, cfg.FFTSize),
		dct:    buildDCTTable(cfg.NumMFCC, cfg.NumMelFilters),
		frame:  make([]float64, cfg.FFTSize),
		power:  make([]float64, cfg.NumBins()),
		melBuf: make([]float64, cfg.NumMelFilters),
	}
	return e, nil
}

// Config возвращает конфигурацию извлекателя
func (e *Extractor) Config() FeatureConfig {
	return e.cfg
}

// buildWindow строит таблицу оконной функции.
// Hamming: w[n] = 0.54 - 0.46*cos(2*pi*n/(N-1)); Hann: 0.5 - 0.5*cos(...).
// Таблица строится вручную: коэффициенты обязаны побуквенно совпадать
// с теми, что эмиттер печатает в C-код.
func buildWindow(fn WindowFunction, n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		phase := 2 * math.Pi * float64(i) / float64(n-1)
		switch fn {
		case WindowHann:
			w[i] = 0.5 - 0.5*math.Cos(phase)
		default:
			w[i] = 0.54 - 0.46*math.Cos(phase)
		}
	}
	return w
}

// buildDCTTable таблица DCT-II: dct[i][j] = cos(pi*i*(j+0.5)/numFilters)
func buildDCTTable(numCoeffs, numFilters int) [][]float64 {
	tbl := make([][]float64, numCoeffs)
	for i := 0; i < numCoeffs; i++ {
		tbl[i] = make([]float64, numFilters)
		for j := 0; j < numFilters; j++ {
			tbl[i][j] = math.Cos(math.Pi * float64(i) * (float64(j) + 0.5) / float64(numFilters))
		}
	}
	return tbl
}

// ExtractFrame вычисляет NumMFCC коэффициентов одного фрейма.
// Если фрейм короче FFTSize, хвост дополняется нулями.
func (e *Extractor) ExtractFrame(samples []float32) []float32 {
	n := e.cfg.FFTSize
	if len(samples) > n {
		samples = samples[:n]
	}

	// Pre-emphasis (первая разность) и окно за один проход.
	// Флаг PreEmphasis единый для обучения и сгенерированного кода.
	for i := 0; i < n; i++ {
		var s float64
		if i < len(samples) {
			s = float64(samples[i])
			if e.cfg.PreEmphasis && i > 0 {
				s -= PreEmphasisCoeff * float64(samples[i-1])
			}
		}
		e.frame[i] = s * e.window[i]
	}

	// Real FFT, оставляем бины [0, N/2]
	coeffs := e.fft.Coefficients(nil, e.frame)
	for i := 0; i < e.cfg.NumBins(); i++ {
		re := real(coeffs[i])
		im := imag(coeffs[i])
		e.power[i] = re*re + im*im
	}

	// Mel-энергии и натуральный логарифм с нижней границей
	e.fb.Apply(e.power, e.melBuf)
	for m := range e.melBuf {
		if e.melBuf[m] < LogFloor {
			e.melBuf[m] = LogFloor
		}
		e.melBuf[m] = math.Log(e.melBuf[m])
	}

	// DCT-II, первые NumMFCC коэффициентов
	out := make([]float32, e.cfg.NumMFCC)
	for i := 0; i < e.cfg.NumMFCC; i++ {
		sum := 0.0
		for j := 0; j < e.cfg.NumMelFilters; j++ {
			sum += e.melBuf[j] * e.dct[i][j]
		}
		out[i] = float32(sum)
	}
	return out
}

// Extract скользит по буферу с шагом HopLength и возвращает
// [numFrames][NumMFCC]; numFrames = ceil(len/hop), минимум 1.
func (e *Extractor) Extract(samples []float32) [][]float32 {
	numFrames := e.cfg.FrameCount(len(samples))
	return e.extractFrames(samples, numFrames)
}

// ExtractFixed извлекает ровно numFrames фреймов (форма входа сети фиксирована)
// и возвращает плоский вектор длины numFrames*NumMFCC, фрейм за фреймом.
// Короткий буфер дополняется нулями, длинный обрезается.
func (e *Extractor) ExtractFixed(samples []float32, numFrames int) []float32 {
	frames := e.extractFrames(samples, numFrames)
	flat := make([]float32, 0, numFrames*e.cfg.NumMFCC)
	for _, f := range frames {
		flat = append(flat, f...)
	}
	return flat
}

func (e *Extractor) extractFrames(samples []float32, numFrames int) [][]float32 {
	out := make([][]float32, numFrames)
	for f := 0; f < numFrames; f++ {
		start := f * e.cfg.HopLength
		var frame []float32
		if start < len(samples) {
			frame = samples[start:]
		}
		out[f] = e.ExtractFrame(frame)
	}
	return out
}
