// Package codegen превращает извлечённую модель и конфигурацию признаков
// в автономные исходники для микроконтроллера без NN-рантайма.
//
// Генерация идёт в два шага: слои раскладываются в промежуточное
// представление (упорядоченные инструкции: include, macro, массив констант,
// функция с телом), затем Printer печатает его в конкретный диалект.
// Числовые контракты слоёв живут только в одном месте — в построителе IR,
// поэтому новый диалект не дублирует формулы.
package codegen

// Unit один генерируемый файл: заголовок и упорядоченные инструкции
type Unit struct {
	Filename string
	Header   []string
	Items    []Item
}

// Item инструкция промежуточного представления
type Item interface {
	item()
}

// Comment блок комментария между инструкциями
type Comment struct {
	Lines []string
}

// Include подключение заголовка; System — угловые скобки
type Include struct {
	Path   string
	System bool
}

// Macro именованная константа препроцессора
type Macro struct {
	Name  string
	Value string
}

// ConstArray массив констант. Заполнено ровно одно из полей значений;
// Row — количество элементов в строке при печати.
type ConstArray struct {
	Doc     string
	Name    string
	Floats  []float32
	Ints    []int
	Strings []string
	Row     int
}

// Function функция с готовым телом; Body — строки без внешнего отступа
type Function struct {
	Doc       string
	Signature string
	Body      []string
}

// Raw сырые строки (прототипы, extern-объявления, guard'ы)
type Raw struct {
	Lines []string
}

func (Comment) item()    {}
func (Include) item()    {}
func (Macro) item()      {}
func (ConstArray) item() {}
func (Function) item()   {}
func (Raw) item()        {}

// Artifacts результат генерации: имя файла -> текст исходника.
// Набор одноразовый, после упаковки внешним архиватором не хранится.
type Artifacts map[string]string
