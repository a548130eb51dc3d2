package extractors

import (
	"regexp"
	"strings"
)

// extensionSuffix — добавочные номера в хвосте ("ext. 12", "int 3", "x21"),
// которые к самому номеру не относятся.
var extensionSuffix = regexp.MustCompile(`(?i)[\s\-]*(?:ext|int(?:erno)?|x)\.?\s*\d+\s*$`)

// validPhonePY проверяет номер в национальном формате E.164: код страны
// и от семи до девяти значащих цифр.
var validPhonePY = regexp.MustCompile(`^\+595\d{7,9}$`)

// NormalizePhonePY приводит сырой парагвайский номер к формату +595...:
// отбрасывает добавочные, оформление и магистральный ноль, затем
// подставляет код страны. Пустой или бесцифровой вход даёт пустую строку.
func NormalizePhonePY(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = extensionSuffix.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "(0)", "")

	digits := digitsOnly(s)
	if digits == "" {
		return ""
	}

	hasPlus := strings.HasPrefix(s, "+")
	switch {
	case hasPlus && strings.HasPrefix(digits, "595"):
		digits = digits[3:]
	case strings.HasPrefix(digits, "595") && len(digits) >= 10:
		// код страны без плюса; короткие локальные номера на 595
		// не трогаем
		digits = digits[3:]
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return ""
	}
	return "+595" + digits
}

// IsValidPhonePY сообщает, является ли значение корректным номером в
// формате +595 с семью-девятью цифрами.
func IsValidPhonePY(phone string) bool {
	return validPhonePY.MatchString(phone)
}

// IsMobilePY сообщает, похож ли номер на мобильный: после кода страны и
// магистрального ноля цифры начинаются с девятки.
func IsMobilePY(phone string) bool {
	digits := digitsOnly(phone)
	if strings.HasPrefix(digits, "595") && len(digits) >= 10 {
		digits = digits[3:]
	}
	digits = strings.TrimLeft(digits, "0")
	return strings.HasPrefix(digits, "9") && len(digits) >= 8 && len(digits) <= 9
}

// BestPhone — выбранный из кандидатов номер.
type BestPhone struct {
	Raw        string
	Normalized string
	Valid      bool
}

// PickBestPhone выбирает лучший номер из кандидатов: первый корректный
// мобильный, иначе первый корректный, иначе первый кандидат как есть.
// Мобильный предпочтительнее: по нему доставку подтверждают в мессенджере.
func PickBestPhone(candidates []string) BestPhone {
	var firstValid, firstAny *BestPhone
	for _, raw := range candidates {
		normalized := NormalizePhonePY(raw)
		candidate := BestPhone{
			Raw:        raw,
			Normalized: normalized,
			Valid:      IsValidPhonePY(normalized),
		}
		if firstAny == nil {
			c := candidate
			firstAny = &c
		}
		if candidate.Valid {
			if IsMobilePY(normalized) {
				return candidate
			}
			if firstValid == nil {
				c := candidate
				firstValid = &c
			}
		}
	}
	if firstValid != nil {
		return *firstValid
	}
	if firstAny != nil {
		return *firstAny
	}
	return BestPhone{}
}
