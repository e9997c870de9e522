package domain

// FieldType — тип поля схемы.
type FieldType string

const (
	// FieldTypePrimitive — примитивное поле (строка, число, дата).
	FieldTypePrimitive FieldType = "primitive"

	// FieldTypeObject — составное поле с вложенными полями.
	FieldTypeObject FieldType = "object"

	// FieldTypeList — список однотипных элементов.
	FieldTypeList FieldType = "list"

	// FieldTypeTable — таблица с колонками.
	FieldTypeTable FieldType = "table"
)

// TransformationSource — источник данных для трансформации.
type TransformationSource string

const (
	// SourceColumn — значения берутся из результатов других полей схемы.
	// Только такие трансформации участвуют в волновом выполнении.
	SourceColumn TransformationSource = "column"

	// SourceDocument — значение извлекается напрямую из документа.
	SourceDocument TransformationSource = "document"
)

// Field — поле схемы извлечения.
//
// Поле либо извлекается из документа напрямую, либо вычисляется
// трансформацией (IsTransformation=true) из значений других полей.
// Составные типы (object, list, table) содержат вложенные поля.
type Field struct {
	// ID — уникальный идентификатор поля в рамках схемы.
	// Используется как ключ в результатах и зависимостях.
	ID string `json:"id"`

	// Name — человекочитаемое имя поля.
	// На него ссылаются {Name} токены в промптах трансформаций.
	Name string `json:"name"`

	// Type — тип поля.
	Type FieldType `json:"type"`

	// IsTransformation — true, если значение вычисляется, а не извлекается.
	IsTransformation bool `json:"is_transformation,omitempty"`

	// TransformationSource — откуда трансформация берёт входные данные.
	TransformationSource TransformationSource `json:"transformation_source,omitempty"`

	// TransformationConfig — конфигурация трансформации.
	// Nil для обычных извлекаемых полей.
	TransformationConfig *TransformationConfig `json:"transformation_config,omitempty"`

	// DisplayInSummary — включать ли поле в сводку результатов.
	DisplayInSummary bool `json:"display_in_summary,omitempty"`

	// Children — вложенные поля (только для type="object").
	Children []Field `json:"children,omitempty"`

	// Item — поле-элемент (только для type="list").
	Item *Field `json:"item,omitempty"`

	// Columns — колонки (только для type="table").
	Columns []Field `json:"columns,omitempty"`
}

// TransformationConfig — конфигурация трансформации поля.
//
// Исторически конфигурация была просто строкой промпта, поэтому
// поддерживаются оба представления: Raw (строка) и структурное.
type TransformationConfig struct {
	// Prompt — шаблон промпта. Может содержать {FieldName} токены —
	// ссылки на значения других полей схемы.
	Prompt string `json:"prompt,omitempty"`

	// SelectedTools — инструменты, доступные трансформации.
	SelectedTools []string `json:"selected_tools,omitempty"`

	// Raw — сырой строковый шаблон (старый формат конфигурации).
	// Если задан, используется вместо Prompt.
	Raw string `json:"raw,omitempty"`
}

// Template возвращает действующий шаблон промпта.
func (c *TransformationConfig) Template() string {
	if c == nil {
		return ""
	}
	if c.Raw != "" {
		return c.Raw
	}
	return c.Prompt
}

// IsComposite возвращает true для составных типов полей.
func (f *Field) IsComposite() bool {
	switch f.Type {
	case FieldTypeObject, FieldTypeList, FieldTypeTable:
		return true
	default:
		return false
	}
}

// ChildFields возвращает вложенные поля независимо от типа.
func (f *Field) ChildFields() []*Field {
	switch f.Type {
	case FieldTypeObject:
		out := make([]*Field, 0, len(f.Children))
		for i := range f.Children {
			out = append(out, &f.Children[i])
		}
		return out

	case FieldTypeList:
		if f.Item == nil {
			return nil
		}
		return []*Field{f.Item}

	case FieldTypeTable:
		out := make([]*Field, 0, len(f.Columns))
		for i := range f.Columns {
			out = append(out, &f.Columns[i])
		}
		return out

	default:
		return nil
	}
}

// IsWaveTransformation возвращает true, если поле участвует
// в волновом выполнении (трансформация над значениями других полей).
func (f *Field) IsWaveTransformation() bool {
	return f.IsTransformation && f.TransformationSource == SourceColumn
}
