package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// Ответы генеративных моделей регулярно приходят обернутыми в markdown,
// обрезанными на середине поля или без закрывающих скобок. Восстановление
// построено как упорядоченная цепочка стратегий: каждая следующая применяется
// только если предыдущая не дала валидный JSON. Уже корректные дни ни одна
// стратегия не теряет.

var ErrUnparsable = errors.New("response is not parsable as a day array")

// Обрезанное значение строки ограничивается этой длиной перед закрытием.
const maxTruncatedValueLen = 160

var trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)

// RepairDays извлекает массив дней из сырого текста модели.
// Возвращает либо валидный список дней, либо ErrUnparsable, но никогда
// частично разобранную структуру.
func RepairDays(raw string) ([]DayPayload, error) {
	text := stripFences(raw)

	start := strings.Index(text, "[")
	if start == -1 {
		return nil, ErrUnparsable
	}
	tail := text[start:]

	// Шаг 1: срез от первой '[' до последней ']'.
	if end := strings.LastIndex(tail, "]"); end > 0 {
		if days, err := decodeDays(tail[:end+1]); err == nil {
			return days, nil
		}
	}

	// Шаг 2: убрать висячие запятые, закрыть оборванную строку,
	// добить недостающие скобки по глубине вложенности.
	mended := closeUnbalanced(trimTrailingCommas(tail))
	if days, err := decodeDays(mended); err == nil {
		return days, nil
	}

	// Шаг 3: вытащить только полные объекты дней, отбросив оборванный хвост.
	if salvaged := salvageCompleteDays(tail); salvaged != "" {
		if days, err := decodeDays(salvaged); err == nil {
			return days, nil
		}
	}

	return nil, ErrUnparsable
}

func decodeDays(text string) ([]DayPayload, error) {
	var days []DayPayload
	if err := json.Unmarshal([]byte(text), &days); err != nil {
		return nil, err
	}

	valid := make([]DayPayload, 0, len(days))
	for _, day := range days {
		if len(day.Activities) == 0 {
			continue
		}
		valid = append(valid, day)
	}

	if len(valid) == 0 {
		return nil, errors.New("no usable days")
	}

	return valid, nil
}

func stripFences(input string) string {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	return strings.TrimSpace(trimmed)
}

func trimTrailingCommas(input string) string {
	return trailingCommaRe.ReplaceAllString(input, "$1")
}

// closeUnbalanced чинит обрыв генерации: закрывает незавершенную строку
// (обрезая значение до maxTruncatedValueLen), отрезает висячую пару
// "ключ": без значения и дописывает закрывающие скобки в порядке,
// обратном стеку открытых.
func closeUnbalanced(input string) string {
	var stack []byte
	inString := false
	escaped := false
	stringStart := -1

	for i := 0; i < len(input); i++ {
		c := input[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			stringStart = i
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	out := input
	if inString {
		value := out[stringStart+1:]
		if len(value) > maxTruncatedValueLen {
			out = out[:stringStart+1+maxTruncatedValueLen]
		}
		out = strings.TrimSuffix(out, "\\")
		out += `"`
	}

	out = strings.TrimRight(out, " \t\r\n")
	out = strings.TrimSuffix(out, ",")
	out = strings.TrimRight(out, " \t\r\n")

	if strings.HasSuffix(out, ":") {
		if cut := strings.LastIndexAny(out, ",{"); cut >= 0 {
			if out[cut] == ',' {
				out = out[:cut]
			} else {
				out = out[:cut+1]
			}
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			out += "}"
		} else {
			out += "]"
		}
	}

	return out
}

// salvageCompleteDays собирает объекты дней с полностью сбалансированными
// скобками и отбрасывает оборванный фрагмент в конце.
func salvageCompleteDays(input string) string {
	start := strings.Index(input, "[")
	if start == -1 {
		return ""
	}
	body := input[start+1:]

	var objects []string
	depth := 0
	objStart := -1
	inString := false
	escaped := false

	for i := 0; i < len(body); i++ {
		c := body[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				objStart = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && objStart >= 0 {
				objects = append(objects, body[objStart:i+1])
				objStart = -1
			}
		case ']':
			if depth == 0 {
				i = len(body) // конец массива дней
			}
		}
	}

	if len(objects) == 0 {
		return ""
	}

	return "[" + strings.Join(objects, ",") + "]"
}
