package codegen

import (
	"math"
	"strconv"
	"strings"
	"testing"
)

// TestFormatFloat литералы с девятью значащими цифрами и суффиксом f
func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name string
		v    float32
	}{
		{"small weight", 0.0123456789},
		{"negative", -3.14159265},
		{"tiny", 1e-30},
		{"large", 12345.678},
		{"zero", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := FormatFloat(tt.v)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasSuffix(s, "f") {
				t.Errorf("literal %q lacks f suffix", s)
			}
			back, err := strconv.ParseFloat(strings.TrimSuffix(s, "f"), 32)
			if err != nil {
				t.Fatalf("literal %q does not parse: %v", s, err)
			}
			if float32(back) != tt.v {
				t.Errorf("literal %q round-trips to %g, want %g", s, back, tt.v)
			}
		})
	}
}

// TestFormatFloatRejectsNonFinite NaN и Inf не сериализуемы
func TestFormatFloatRejectsNonFinite(t *testing.T) {
	for _, v := range []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))} {
		if _, err := FormatFloat(v); err == nil {
			t.Errorf("FormatFloat(%f) should fail", v)
		}
	}
}

// TestCPrinterConstArray массив печатается фиксированными рядами
func TestCPrinterConstArray(t *testing.T) {
	u := &Unit{
		Filename: "t.h",
		Items: []Item{
			ConstArray{Name: "ts_w", Floats: []float32{1, 2, 3, 4, 5}, Row: 2},
		},
	}

	out, err := NewCPrinter().Render(u)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "static const float ts_w[5]") {
		t.Errorf("missing array declaration:\n%s", out)
	}
	if strings.Count(out, "\n") < 3 {
		t.Errorf("values not wrapped into rows:\n%s", out)
	}
}

// TestCPrinterFunction функция с телом и doc-комментарием
func TestCPrinterFunction(t *testing.T) {
	u := &Unit{
		Filename: "t.c",
		Items: []Item{
			Function{
				Doc:       "does nothing",
				Signature: "static void noop(void)",
				Body:      []string{"(void)0;"},
			},
		},
	}

	out, err := NewCPrinter().Render(u)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"/* does nothing */", "static void noop(void) {", "  (void)0;", "}"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestCPrinterHeader заголовок файла печатается блочным комментарием
func TestCPrinterHeader(t *testing.T) {
	u := &Unit{
		Filename: "t.h",
		Header:   []string{"Generated by tinysense. Do not edit."},
	}
	out, err := NewCPrinter().Render(u)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, " * Generated by tinysense. Do not edit.") {
		t.Errorf("header not rendered:\n%s", out)
	}
}
