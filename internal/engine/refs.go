package engine

import (
	"regexp"
	"strings"
)

// refPattern — токен-ссылка на другое поле внутри промпта: {FieldName}.
// Вложенные и пустые скобки не считаются ссылками.
var refPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// ExtractRefs возвращает список ссылок на поля из шаблона промпта.
//
// Ссылка — это содержимое {FieldName} токена, обрезанное по пробелам.
// Дубликаты убираются с сохранением порядка первого вхождения.
// Ссылки здесь ещё не резолвятся: имя может указывать как на Name,
// так и на ID поля (см. BuildGraph).
func ExtractRefs(template string) []string {
	if !strings.Contains(template, "{") {
		return nil
	}

	matches := refPattern.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	refs := make([]string, 0, len(matches))

	for _, m := range matches {
		ref := strings.TrimSpace(m[1])
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}

	return refs
}

// RenderPrompt подставляет значения зависимостей в шаблон промпта.
//
// values может содержать значения и по имени поля, и по ID —
// подставляется первое найденное. Токены без значения остаются
// в тексте как есть (нерезолвленная ссылка не считается ошибкой).
func RenderPrompt(template string, values map[string]string) string {
	if !strings.Contains(template, "{") {
		return template
	}

	return refPattern.ReplaceAllStringFunc(template, func(token string) string {
		ref := strings.TrimSpace(token[1 : len(token)-1])
		if v, ok := values[ref]; ok {
			return v
		}
		return token
	})
}
