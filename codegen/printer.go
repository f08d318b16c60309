package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tinysense/model"
)

// Printer печатает IR в конкретный диалект встраиваемого кода.
// Ядро строит один и тот же IR для любого диалекта.
type Printer interface {
	Render(u *Unit) (string, error)
}

// CPrinter диалект C99: float-литералы, static const массивы
type CPrinter struct {
	// Indent отступ тела функции; по умолчанию два пробела
	Indent string
}

// NewCPrinter печатник C с настройками по умолчанию
func NewCPrinter() *CPrinter {
	return &CPrinter{Indent: "  "}
}

// Render печатает один файл
func (p *CPrinter) Render(u *Unit) (string, error) {
	var b strings.Builder

	if len(u.Header) > 0 {
		b.WriteString("/*\n")
		for _, line := range u.Header {
			b.WriteString(" * ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString(" */\n\n")
	}

	for _, item := range u.Items {
		switch it := item.(type) {
		case Comment:
			for _, line := range it.Lines {
				b.WriteString("/* ")
				b.WriteString(line)
				b.WriteString(" */\n")
			}
			b.WriteString("\n")

		case Include:
			if it.System {
				fmt.Fprintf(&b, "#include <%s>\n", it.Path)
			} else {
				fmt.Fprintf(&b, "#include %q\n", it.Path)
			}

		case Macro:
			fmt.Fprintf(&b, "#define %s %s\n", it.Name, it.Value)

		case ConstArray:
			if err := p.renderArray(&b, it); err != nil {
				return "", err
			}

		case Function:
			if it.Doc != "" {
				fmt.Fprintf(&b, "/* %s */\n", it.Doc)
			}
			b.WriteString(it.Signature)
			b.WriteString(" {\n")
			for _, line := range it.Body {
				if line == "" {
					b.WriteString("\n")
					continue
				}
				b.WriteString(p.indent())
				b.WriteString(line)
				b.WriteString("\n")
			}
			b.WriteString("}\n\n")

		case Raw:
			for _, line := range it.Lines {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}

	return b.String(), nil
}

func (p *CPrinter) indent() string {
	if p.Indent == "" {
		return "  "
	}
	return p.Indent
}

func (p *CPrinter) renderArray(b *strings.Builder, a ConstArray) error {
	if a.Doc != "" {
		fmt.Fprintf(b, "/* %s */\n", a.Doc)
	}
	row := a.Row
	if row <= 0 {
		row = 8
	}

	switch {
	case a.Strings != nil:
		fmt.Fprintf(b, "static const char *const %s[%d] = {\n", a.Name, len(a.Strings))
		for _, s := range a.Strings {
			fmt.Fprintf(b, "%s%q,\n", p.indent(), s)
		}
		b.WriteString("};\n\n")

	case a.Ints != nil:
		fmt.Fprintf(b, "static const int %s[%d] = {\n", a.Name, len(a.Ints))
		writeRows(b, p.indent(), row, len(a.Ints), func(i int) string {
			return strconv.Itoa(a.Ints[i])
		})
		b.WriteString("};\n\n")

	default:
		fmt.Fprintf(b, "static const float %s[%d] = {\n", a.Name, len(a.Floats))
		var encErr error
		writeRows(b, p.indent(), row, len(a.Floats), func(i int) string {
			s, err := FormatFloat(a.Floats[i])
			if err != nil && encErr == nil {
				encErr = err
			}
			return s
		})
		b.WriteString("};\n\n")
		if encErr != nil {
			return &model.EncodingError{Array: a.Name, Err: encErr}
		}
	}
	return nil
}

// writeRows печатает значения фиксированными рядами по row элементов
func writeRows(b *strings.Builder, indent string, row, n int, value func(int) string) {
	for i := 0; i < n; i += row {
		b.WriteString(indent)
		end := i + row
		if end > n {
			end = n
		}
		for j := i; j < end; j++ {
			b.WriteString(value(j))
			b.WriteString(",")
			if j != end-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
}

// FormatFloat печатает вес как десятичный литерал. Девяти значащих
// цифр достаточно для точного round-trip любого float32.
// NaN и Inf не сериализуемы: такие веса означают сломанную тренировку.
func FormatFloat(v float32) (string, error) {
	f := float64(v)
	if math.IsNaN(f) {
		return "", fmt.Errorf("weight is NaN")
	}
	if math.IsInf(f, 0) {
		return "", fmt.Errorf("weight is infinite")
	}
	return strconv.FormatFloat(f, 'e', 8, 32) + "f", nil
}
