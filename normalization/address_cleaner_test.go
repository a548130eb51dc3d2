package normalization

import (
	"regexp"
	"strings"
	"testing"
)

func testCleaner() *AddressCleaner {
	return NewAddressCleaner(CleanerTables{
		Abbreviations: map[string]string{
			"av":   "Avenida",
			"avda": "Avenida",
			"gral": "General",
			"mcal": "Mariscal",
			"tte":  "Teniente",
		},
		AccentFixes: map[string]string{
			"lopez":    "López",
			"asuncion": "Asunción",
			"parana":   "Paraná",
		},
		NoisePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bsin datos\b`),
			regexp.MustCompile(`(?i)\bn/a\b`),
			regexp.MustCompile(`(?i)x{3,}`),
		},
		EmailPattern: regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
		PhonePattern: regexp.MustCompile(`\+?\d[\d\s\-().]{5,}\d`),
		RoutePattern: regexp.MustCompile(`(?i)\brutas?\.?\s*(?:n[°ºro.]*\s*)?(\d+)`),
		KmPattern:    regexp.MustCompile(`(?i)\bkm\.?\s*(\d+(?:[.,]\d+)?)`),
	})
}

func TestCleanExpandsAbbreviationsAndTitleCases(t *testing.T) {
	c := testCleaner()
	got := c.Clean("avda. mcal. lopez 1234")
	expected := "Avenida Mariscal López 1234"
	if got != expected {
		t.Errorf("Clean() = %q, ожидалось %q", got, expected)
	}
}

func TestCleanStripsContactsAndNoise(t *testing.T) {
	c := testCleaner()
	got := c.Clean("Av. España 123, tel 0981 123456, juan@mail.com, sin datos")
	if strings.Contains(got, "@") {
		t.Errorf("почта не удалена: %q", got)
	}
	if strings.Contains(got, "0981") {
		t.Errorf("телефон не удалён: %q", got)
	}
	if strings.Contains(strings.ToLower(got), "sin datos") {
		t.Errorf("шум не удалён: %q", got)
	}
	if strings.HasSuffix(got, ",") {
		t.Errorf("хвостовая запятая не убрана: %q", got)
	}
}

func TestCleanNormalizesIntersections(t *testing.T) {
	c := testCleaner()
	tests := []struct {
		in       string
		expected string
	}{
		{"Palma c/ 14 de Mayo", "Palma y 14 de Mayo"},
		{"Palma esq. Chile", "Palma y Chile"},
		{"Palma / Chile", "Palma y Chile"},
	}
	for _, tt := range tests {
		if got := c.Clean(tt.in); got != tt.expected {
			t.Errorf("Clean(%q) = %q, ожидалось %q", tt.in, got, tt.expected)
		}
	}
}

func TestCleanNormalizesRoutes(t *testing.T) {
	c := testCleaner()
	got := c.Clean("ruta nro. 2 km. 25")
	expected := "Ruta 2 Km 25"
	if got != expected {
		t.Errorf("Clean() = %q, ожидалось %q", got, expected)
	}
}

func TestCompileAbbreviationsOrderIsDeterministic(t *testing.T) {
	abbrevs := map[string]string{
		"av":   "Avenida",
		"avda": "Avenida",
		"gral": "General",
		"mcal": "Mariscal",
		"tte":  "Teniente",
	}
	first := compileAbbreviations(abbrevs)
	second := compileAbbreviations(abbrevs)
	if len(first) != len(second) {
		t.Fatalf("разная длина: %d и %d", len(first), len(second))
	}
	for i := range first {
		if first[i].pattern.String() != second[i].pattern.String() {
			t.Errorf("порядок шаблонов плавает: позиция %d, %q и %q",
				i, first[i].pattern.String(), second[i].pattern.String())
		}
	}
	// Шаблоны идут в лексикографическом порядке токенов
	for i := 1; i < len(first); i++ {
		if first[i-1].pattern.String() > first[i].pattern.String() {
			t.Errorf("шаблоны не отсортированы: %q перед %q",
				first[i-1].pattern.String(), first[i].pattern.String())
		}
	}
}

func TestCleanTraceReportsAppliedSteps(t *testing.T) {
	c := testCleaner()
	_, applied := c.CleanTrace("avda lopez 123, XXXX")
	wantSteps := map[string]bool{}
	for _, s := range applied {
		wantSteps[s] = true
	}
	if !wantSteps["expand_abbreviations"] {
		t.Errorf("след не содержит expand_abbreviations: %v", applied)
	}
	if !wantSteps["strip_noise"] {
		t.Errorf("след не содержит strip_noise: %v", applied)
	}
}

func TestCleanEmptyInput(t *testing.T) {
	c := testCleaner()
	if got := c.Clean(""); got != "" {
		t.Errorf("Clean(\"\") = %q", got)
	}
	if got := c.Clean("   ,  , "); got != "" {
		t.Errorf("Clean для пустых разделителей = %q", got)
	}
}
