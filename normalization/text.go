// Package normalization содержит текстовые утилиты и конвейер очистки
// адресных строк: удаление диакритики, схлопывание пробелов, испанский
// title case и упорядоченный список именованных шагов преобразования.
package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper раскладывает строку в NFD, удаляет комбинируемые
// диакритические знаки и собирает обратно в NFC. Инициализируется один раз.
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents удаляет диакритические знаки: "Asunción" -> "Asuncion",
// "Ñemby" -> "Nemby". При ошибке трансформации возвращает исходную строку.
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeKey приводит строку к ключу для словарных и нечётких сравнений:
// без диакритики, в нижнем регистре, без краевых пробелов.
func NormalizeKey(s string) string {
	return strings.ToLower(StripAccents(strings.TrimSpace(s)))
}

// CollapseWhitespace заменяет любые пробельные последовательности одним
// пробелом и убирает краевые пробелы.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// spanishStopwords — служебные слова, которые в испанском title case
// остаются строчными внутри фразы.
var spanishStopwords = map[string]bool{
	"de": true, "del": true, "la": true, "las": true,
	"los": true, "y": true, "el": true, "e": true,
}

// TitleCaseSpanish приводит фразу к title case по испанским правилам:
// служебные слова остаются строчными (кроме первой позиции), а overrides
// задаёт точное написание отдельных слов, включая диакритику
// ("lopez" -> "López"). Ключи overrides — в форме NormalizeKey.
func TitleCaseSpanish(s string, overrides map[string]string) string {
	words := strings.Fields(s)
	for i, w := range words {
		// Отделяем хвостовую пунктуацию (запятые после сегментов адреса)
		core := strings.TrimRightFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		tail := w[len(core):]

		key := NormalizeKey(core)
		switch {
		case key == "":
			// Слово целиком из пунктуации/цифр — как есть
		case overrides[key] != "":
			words[i] = overrides[key] + tail
		case spanishStopwords[key] && i > 0:
			words[i] = strings.ToLower(core) + tail
		default:
			words[i] = capitalizeWord(core) + tail
		}
	}
	return strings.Join(words, " ")
}

func capitalizeWord(w string) string {
	r := []rune(strings.ToLower(w))
	if len(r) == 0 {
		return w
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
