package extractors

import (
	"reflect"
	"testing"
)

func TestExtractEmails(t *testing.T) {
	text := "Contacto: Juan.Perez@Mail.COM, otro juan.perez@mail.com y maria@tienda.com.py"
	got := ExtractEmails(text)
	expected := []string{"juan.perez@mail.com", "maria@tienda.com.py"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("ExtractEmails() = %v, ожидалось %v", got, expected)
	}
}

func TestExtractEmailsEmpty(t *testing.T) {
	if got := ExtractEmails("sin correo aqui"); got != nil {
		t.Errorf("ожидался nil, получено %v", got)
	}
}

func TestSplitPhoneColumn(t *testing.T) {
	tests := []struct {
		in       string
		expected []string
	}{
		{"0981 123456 / 021 555000", []string{"0981 123456", "021 555000"}},
		{"0981123456; 0971222333", []string{"0981123456", "0971222333"}},
		{"0981 123456", []string{"0981 123456"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitPhoneColumn(tt.in); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("SplitPhoneColumn(%q) = %v, ожидалось %v", tt.in, got, tt.expected)
		}
	}
}

func TestExtractPhones(t *testing.T) {
	got := ExtractPhones("Avda España 123, llamar al 0981 123-456 o al (021) 555 000")
	if len(got) < 2 {
		t.Fatalf("ожидалось минимум два номера, получено %v", got)
	}
}

func TestMergePhoneCandidates(t *testing.T) {
	got := MergePhoneCandidates(
		[]string{"0981 123456", "(0981) 123-456"},
		[]string{"021 555000"},
	)
	expected := []string{"0981 123456", "021 555000"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("MergePhoneCandidates() = %v, ожидалось %v", got, expected)
	}
}

func TestNormalizePhonePY(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"0981 123 456", "+595981123456"},
		{"+595 981 123456", "+595981123456"},
		{"595981123456", "+595981123456"},
		{"(021) 123-456", "+59521123456"},
		{"+595 (0)981 123456", "+595981123456"},
		{"0981 123456 ext. 12", "+595981123456"},
		{"0981 123456 int 3", "+595981123456"},
		{"5951234", "+5955951234"}, // короткий локальный номер на 595 не трогаем
		{"", ""},
		{"sin numero", ""},
		{"0000", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhonePY(tt.in); got != tt.expected {
			t.Errorf("NormalizePhonePY(%q) = %q, ожидалось %q", tt.in, got, tt.expected)
		}
	}
}

func TestIsValidPhonePY(t *testing.T) {
	tests := []struct {
		in       string
		expected bool
	}{
		{"+595981123456", true},
		{"+59521123456", true},
		{"+5951234567", true},
		{"+595123456", false},      // шесть цифр — мало
		{"+5959811234567", false},  // десять цифр — много
		{"0981123456", false},      // нет кода страны
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidPhonePY(tt.in); got != tt.expected {
			t.Errorf("IsValidPhonePY(%q) = %v, ожидалось %v", tt.in, got, tt.expected)
		}
	}
}

func TestIsMobilePY(t *testing.T) {
	tests := []struct {
		in       string
		expected bool
	}{
		{"+595981123456", true},
		{"0971 222 333", true},
		{"+59521123456", false},
		{"021 555000", false},
	}
	for _, tt := range tests {
		if got := IsMobilePY(tt.in); got != tt.expected {
			t.Errorf("IsMobilePY(%q) = %v, ожидалось %v", tt.in, got, tt.expected)
		}
	}
}

func TestPickBestPhonePrefersMobile(t *testing.T) {
	got := PickBestPhone([]string{"021 220110", "0981 555123"})
	if got.Normalized != "+595981555123" {
		t.Errorf("ожидался мобильный, получено %+v", got)
	}
	if !got.Valid {
		t.Errorf("номер должен быть корректным: %+v", got)
	}
}

func TestPickBestPhoneFallsBackToFirstValid(t *testing.T) {
	got := PickBestPhone([]string{"021 220110", "021 330440"})
	if got.Normalized != "+59521220110" || !got.Valid {
		t.Errorf("ожидался первый корректный, получено %+v", got)
	}
}

func TestPickBestPhoneKeepsInvalidWhenNothingBetter(t *testing.T) {
	got := PickBestPhone([]string{"12345"})
	if got.Valid {
		t.Errorf("номер не должен считаться корректным: %+v", got)
	}
	if got.Raw != "12345" {
		t.Errorf("Raw = %q", got.Raw)
	}
}

func TestPickBestPhoneEmpty(t *testing.T) {
	got := PickBestPhone(nil)
	if got.Raw != "" || got.Normalized != "" || got.Valid {
		t.Errorf("ожидался нулевой результат, получено %+v", got)
	}
}
