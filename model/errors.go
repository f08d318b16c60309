package model

import "fmt"

// UnsupportedLayerError слой вне поддерживаемого набора.
// Неизвестный слой никогда не пропускается молча: сгенерированный код
// обязан воспроизводить модель целиком или не генерироваться вовсе.
type UnsupportedLayerError struct {
	Layer string
	Type  string
}

func (e *UnsupportedLayerError) Error() string {
	return fmt.Sprintf("layer %q: unsupported type %q", e.Layer, e.Type)
}

// ShapeMismatchError несогласованность форм: веса против конфига слоя,
// выход предыдущего слоя против входа следующего, метки против ширины выхода
type ShapeMismatchError struct {
	Layer  string
	Detail string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("layer %q: shape mismatch: %s", e.Layer, e.Detail)
}

// EncodingError весовой массив не удалось сериализовать в текст
// (например NaN или Inf среди весов)
type EncodingError struct {
	Array string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("array %q: %v", e.Array, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Trace опциональный наблюдатель диагностики. Ядро не пишет в лог
// напрямую: вызывающий код сам решает, куда направить трассировку.
type Trace func(format string, args ...any)

func (t Trace) emit(format string, args ...any) {
	if t != nil {
		t(format, args...)
	}
}
