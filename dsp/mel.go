package dsp

import "math"

// MelFilter треугольный фильтр в терминах бинов спектра.
// Вырожденный фильтр (совпадающие бины) допустим и даёт нулевую энергию.
type MelFilter struct {
	Left   int
	Center int
	Right  int
}

// MelFilterbank упорядоченный набор треугольных фильтров над бинами [0, fftSize/2]
type MelFilterbank struct {
	Filters []MelFilter
	weights [][]float64 // [фильтр][бин], предвычисленные скаты треугольников
}

// hzToMel перевод частоты в mel-шкалу (формула HTK)
func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// melToHz обратный перевод mel в Hz
func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// BuildMelFilterbank строит numMelFilters треугольных фильтров по конфигурации.
// Чистая функция: одинаковый вход всегда даёт одинаковый набор фильтров.
func BuildMelFilterbank(cfg FeatureConfig) *MelFilterbank {
	numBins := cfg.NumBins()

	// numMelFilters+2 равноотстоящих точек в mel-пространстве
	minMel := hzToMel(cfg.FMin)
	maxMel := hzToMel(cfg.FMax)
	step := (maxMel - minMel) / float64(cfg.NumMelFilters+1)

	// Точки переводим обратно в Hz и затем в индексы бинов FFT
	bins := make([]int, cfg.NumMelFilters+2)
	for i := range bins {
		hz := melToHz(minMel + float64(i)*step)
		bin := int(math.Floor(float64(cfg.FFTSize+1) * hz / float64(cfg.SampleRate)))
		if bin < 0 {
			bin = 0
		}
		if bin > numBins-1 {
			bin = numBins - 1
		}
		bins[i] = bin
	}

	fb := &MelFilterbank{
		Filters: make([]MelFilter, cfg.NumMelFilters),
		weights: make([][]float64, cfg.NumMelFilters),
	}

	for m := 0; m < cfg.NumMelFilters; m++ {
		left, center, right := bins[m], bins[m+1], bins[m+2]
		fb.Filters[m] = MelFilter{Left: left, Center: center, Right: right}

		w := make([]float64, numBins)
		// Восходящий скат (left, center)
		for f := left; f < center; f++ {
			w[f] = float64(f-left) / float64(center-left)
		}
		// Нисходящий скат [center, right)
		for f := center; f < right; f++ {
			w[f] = float64(right-f) / float64(right-center)
		}
		fb.weights[m] = w
	}

	return fb
}

// Len количество фильтров
func (fb *MelFilterbank) Len() int {
	return len(fb.Filters)
}

// Apply сворачивает спектр мощности с каждым фильтром, записывая
// энергии в out (len(out) == Len()).
func (fb *MelFilterbank) Apply(power []float64, out []float64) {
	for m, w := range fb.weights {
		sum := 0.0
		f := fb.Filters[m]
		for k := f.Left; k < f.Right && k < len(power); k++ {
			sum += power[k] * w[k]
		}
		out[m] = sum
	}
}

// Weight вес бина bin в фильтре m (для проверок и эмиттера)
func (fb *MelFilterbank) Weight(m, bin int) float64 {
	return fb.weights[m][bin]
}
