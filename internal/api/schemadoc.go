package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// maxBodySize — предел размера тела запроса (4 MB).
const maxBodySize = 4 << 20

// schemaDocument — JSON Schema для входящего документа схемы полей.
// Проверяет форму документа до декодирования в domain-типы:
// декодер Go молча отбрасывает поля неправильного типа, а эта
// проверка возвращает внятную ошибку с путём до проблемы.
const schemaDocument = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "fields"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "fields": {
      "type": "array",
      "minItems": 1,
      "items": {"$ref": "#/$defs/field"}
    }
  },
  "$defs": {
    "field": {
      "type": "object",
      "required": ["id", "name", "type"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string", "minLength": 1},
        "type": {"enum": ["primitive", "object", "list", "table"]},
        "is_transformation": {"type": "boolean"},
        "transformation_source": {"enum": ["column", "document"]},
        "transformation_config": {
          "type": "object",
          "properties": {
            "prompt": {"type": "string"},
            "selected_tools": {"type": "array", "items": {"type": "string"}},
            "raw": {"type": "string"}
          }
        },
        "display_in_summary": {"type": "boolean"},
        "children": {"type": "array", "items": {"$ref": "#/$defs/field"}},
        "item": {"$ref": "#/$defs/field"},
        "columns": {"type": "array", "items": {"$ref": "#/$defs/field"}}
      }
    }
  }
}`

// schemaValidator — скомпилированная JSON Schema документа схемы.
var schemaValidator = jsonschema.MustCompileString("schema.json", schemaDocument)

// ValidateSchemaDocument проверяет JSON-документ схемы по JSON Schema.
func ValidateSchemaDocument(body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := schemaValidator.Validate(v); err != nil {
		return fmt.Errorf("schema document does not match expected shape: %w", err)
	}
	return nil
}

// readBody читает тело запроса с ограничением размера.
func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxBodySize))
}
