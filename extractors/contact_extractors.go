// Package extractors извлекает контактные данные (телефоны, почту) из
// произвольного текста и нормализует парагвайские телефонные номера к
// формату E.164 (+595...).
package extractors

import (
	"regexp"
	"strings"

	"addresscleaner/gazetteer"
)

// ExtractEmails находит адреса почты в тексте: нижний регистр, дубликаты
// отбрасываются с сохранением порядка первого появления.
func ExtractEmails(text string) []string {
	matches := gazetteer.EmailPattern.FindAllString(text, -1)
	seen := make(map[string]bool)
	var emails []string
	for _, m := range matches {
		email := strings.ToLower(strings.TrimSpace(m))
		if !seen[email] {
			seen[email] = true
			emails = append(emails, email)
		}
	}
	return emails
}

// phoneColumnSeparators — разделители, которыми в экспортах перечисляют
// несколько номеров в одной ячейке.
var phoneColumnSeparators = regexp.MustCompile(`\s*/\s*|\s*;\s*|\s*,\s*|\s{2,}|\n`)

// SplitPhoneColumn разбивает значение телефонной колонки на кандидатов.
func SplitPhoneColumn(value string) []string {
	var candidates []string
	for _, part := range phoneColumnSeparators.Split(value, -1) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			candidates = append(candidates, trimmed)
		}
	}
	return candidates
}

// ExtractPhones находит телефоноподобные последовательности в свободном
// тексте (адресной строке, примечаниях).
func ExtractPhones(text string) []string {
	var phones []string
	for _, m := range gazetteer.PhonePattern.FindAllString(text, -1) {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			phones = append(phones, trimmed)
		}
	}
	return phones
}

// MergePhoneCandidates объединяет списки кандидатов, отбрасывая дубликаты
// по цифровому значению (одинаковые номера в разном оформлении).
func MergePhoneCandidates(lists ...[]string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, list := range lists {
		for _, candidate := range list {
			key := digitsOnly(candidate)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, candidate)
		}
	}
	return merged
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
