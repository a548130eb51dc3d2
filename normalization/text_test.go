package normalization

import "testing"

func TestStripAccents(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Asunción", "Asuncion"},
		{"Ñeembucú", "Neembucu"},
		{"Caaguazú", "Caaguazu"},
		{"sin acentos", "sin acentos"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripAccents(tt.in); got != tt.expected {
			t.Errorf("StripAccents(%q) = %q, ожидалось %q", tt.in, got, tt.expected)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"  Asunción ", "asuncion"},
		{"ALTO PARANÁ", "alto parana"},
		{"Ciudad del Este", "ciudad del este"},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.expected {
			t.Errorf("NormalizeKey(%q) = %q, ожидалось %q", tt.in, got, tt.expected)
		}
	}
}

func TestTitleCaseSpanish(t *testing.T) {
	fixes := map[string]string{
		"lopez":  "López",
		"parana": "Paraná",
	}
	tests := []struct {
		in       string
		expected string
	}{
		{"avenida mariscal lopez", "Avenida Mariscal López"},
		{"ciudad del este", "Ciudad del Este"},
		{"de la mora", "De la Mora"},
		{"alto parana,", "Alto Paraná,"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TitleCaseSpanish(tt.in, fixes); got != tt.expected {
			t.Errorf("TitleCaseSpanish(%q) = %q, ожидалось %q", tt.in, got, tt.expected)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("  a \t b\n c  "); got != "a b c" {
		t.Errorf("CollapseWhitespace: получено %q", got)
	}
}
