package normalization

import (
	"regexp"
	"sort"
	"strings"
)

// CleanerTables — справочные таблицы и шаблоны, которые конвейеру очистки
// передают снаружи (обычно из газеттира), чтобы пакет не держал собственной
// копии справочных данных.
type CleanerTables struct {
	Abbreviations map[string]string // токен без точки -> раскрытие
	AccentFixes   map[string]string // ключ NormalizeKey -> точное написание
	NoisePatterns []*regexp.Regexp
	EmailPattern  *regexp.Regexp
	PhonePattern  *regexp.Regexp
	RoutePattern  *regexp.Regexp
	KmPattern     *regexp.Regexp
}

// TransformStep — один именованный шаг преобразования адресной строки.
// Порядок шагов — часть контракта очистки, поэтому он выражен явным
// списком, а не раскладкой кода по функциям.
type TransformStep struct {
	Name  string
	Apply func(string) string
}

// AddressCleaner последовательно применяет упорядоченные шаги очистки к
// сырой адресной строке. Порядок существенный: почта и телефоны вычищаются
// до нечёткого разбора хвоста, сокращения раскрываются до title case.
type AddressCleaner struct {
	steps []TransformStep
}

// NewAddressCleaner строит конвейер очистки с фиксированным порядком шагов.
func NewAddressCleaner(tables CleanerTables) *AddressCleaner {
	abbrevPatterns := compileAbbreviations(tables.Abbreviations)
	accentFixes := tables.AccentFixes

	steps := []TransformStep{
		{Name: "strip_emails", Apply: func(s string) string {
			if tables.EmailPattern == nil {
				return s
			}
			return tables.EmailPattern.ReplaceAllString(s, " ")
		}},
		{Name: "strip_phones", Apply: func(s string) string {
			if tables.PhonePattern == nil {
				return s
			}
			return tables.PhonePattern.ReplaceAllString(s, " ")
		}},
		{Name: "strip_noise", Apply: func(s string) string {
			for _, p := range tables.NoisePatterns {
				s = p.ReplaceAllString(s, " ")
			}
			return s
		}},
		{Name: "expand_abbreviations", Apply: func(s string) string {
			for _, ap := range abbrevPatterns {
				s = ap.pattern.ReplaceAllString(s, ap.replacement+" ")
			}
			return s
		}},
		{Name: "normalize_intersections", Apply: normalizeIntersections},
		{Name: "normalize_routes", Apply: func(s string) string {
			if tables.RoutePattern != nil {
				s = tables.RoutePattern.ReplaceAllString(s, "Ruta $1")
			}
			if tables.KmPattern != nil {
				s = tables.KmPattern.ReplaceAllString(s, "Km $1")
			}
			return s
		}},
		{Name: "collapse_separators", Apply: collapseSeparators},
		{Name: "fix_accents", Apply: func(s string) string {
			return applyAccentFixes(s, accentFixes)
		}},
		{Name: "title_case", Apply: func(s string) string {
			return TitleCaseSpanish(s, accentFixes)
		}},
		{Name: "final_cleanup", Apply: collapseSeparators},
	}

	return &AddressCleaner{steps: steps}
}

// Steps возвращает упорядоченный список шагов (для тестов и диагностики).
func (c *AddressCleaner) Steps() []TransformStep {
	return c.steps
}

// Clean прогоняет адрес через все шаги по порядку.
func (c *AddressCleaner) Clean(address string) string {
	cleaned, _ := c.CleanTrace(address)
	return cleaned
}

// CleanTrace как Clean, но дополнительно возвращает имена шагов, которые
// фактически изменили строку — для следа принятия решений.
func (c *AddressCleaner) CleanTrace(address string) (string, []string) {
	var applied []string
	current := address
	for _, step := range c.steps {
		next := step.Apply(current)
		if next != current {
			applied = append(applied, step.Name)
		}
		current = next
	}
	return current, applied
}

type abbrevPattern struct {
	pattern     *regexp.Regexp
	replacement string
}

// compileAbbreviations собирает по шаблону на сокращение: совпадение без
// учёта регистра, с точкой и без, только перед следующим словом. Ключи
// сортируются, чтобы порядок применения был фиксирован между запусками.
func compileAbbreviations(abbrevs map[string]string) []abbrevPattern {
	tokens := make([]string, 0, len(abbrevs))
	for token := range abbrevs {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	patterns := make([]abbrevPattern, 0, len(tokens))
	for _, token := range tokens {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(token) + `\.?\s+`)
		patterns = append(patterns, abbrevPattern{pattern: re, replacement: abbrevs[token]})
	}
	return patterns
}

var (
	intersectionMarkers = regexp.MustCompile(`(?i)\bc/\s*|\besq(?:uina)?\.?\s+|\s*/\s*`)
	doubleY             = regexp.MustCompile(`(?i)\by\s+y\b`)
	commaRuns           = regexp.MustCompile(`\s*,[\s,]*`)
)

// normalizeIntersections заменяет маркеры перекрёстков ("c/", "esq.",
// одиночный "/") словом "y" и схлопывает случайные дубли "y y".
func normalizeIntersections(s string) string {
	s = intersectionMarkers.ReplaceAllString(s, " y ")
	for doubleY.MatchString(s) {
		s = doubleY.ReplaceAllString(s, "y")
	}
	return s
}

// collapseSeparators схлопывает пробельные и запятые последовательности и
// убирает краевые запятые.
func collapseSeparators(s string) string {
	s = commaRuns.ReplaceAllString(s, ", ")
	s = CollapseWhitespace(s)
	s = strings.Trim(s, ", ")
	return s
}

// applyAccentFixes заменяет слова по таблице точных написаний, сравнивая
// по ключу без регистра и диакритики.
func applyAccentFixes(s string, fixes map[string]string) string {
	if len(fixes) == 0 {
		return s
	}
	words := strings.Fields(s)
	for i, w := range words {
		core := strings.TrimRight(w, ",.;")
		tail := w[len(core):]
		if fixed, ok := fixes[NormalizeKey(core)]; ok {
			words[i] = fixed + tail
		}
	}
	return strings.Join(words, " ")
}
