// Package gazetteer содержит справочник департаментов и городов Парагвая
// и нечёткое сопоставление сырых значений с каноническими названиями.
// Справочник неизменяем после создания и передаётся компонентам явно,
// без глобального состояния.
package gazetteer

import (
	"regexp"
	"strings"

	"addresscleaner/normalization"
	"addresscleaner/normalization/algorithms"
)

// DefaultThreshold — минимальная оценка схожести 0..100, при которой
// нечёткое совпадение принимается.
const DefaultThreshold = 88

// Gazetteer — неизменяемый справочник: канонические списки, обратный индекс
// город -> департамент и словари синонимов с ключами без диакритики.
type Gazetteer struct {
	Departments        []string
	CitiesByDepartment map[string][]string
	DepartmentByCity   map[string]string
	DepartmentSynonyms map[string]string
	CitySynonyms       map[string]string
	Abbreviations      map[string]string
	AccentFixes        map[string]string
	NoisePatterns      []*regexp.Regexp
}

// New строит справочник из статических таблиц и вычисляет обратный индекс
// город -> департамент. При совпадении названий городов в разных
// департаментах побеждает первый по порядку канонического списка.
func New() *Gazetteer {
	byCity := make(map[string]string)
	for _, dept := range departments {
		for _, city := range citiesByDepartment[dept] {
			key := normalization.NormalizeKey(city)
			if _, exists := byCity[key]; !exists {
				byCity[key] = dept
			}
		}
	}

	return &Gazetteer{
		Departments:        departments,
		CitiesByDepartment: citiesByDepartment,
		DepartmentByCity:   byCity,
		DepartmentSynonyms: departmentSynonyms,
		CitySynonyms:       citySynonyms,
		Abbreviations:      addressAbbreviations,
		AccentFixes:        accentFixes,
		NoisePatterns:      noisePatterns,
	}
}

// FuzzyScore вычисляет оценку схожести 0..100 двух значений после
// нормализации (нижний регистр, без диакритики).
func FuzzyScore(a, b string) int {
	return algorithms.SimilarityScore(normalization.NormalizeKey(a), normalization.NormalizeKey(b))
}

// DepartmentMatch — результат сопоставления департамента. Value пустой, если
// лучший кандидат не добрал до порога; Score при этом всё равно сообщается
// для диагностики.
type DepartmentMatch struct {
	Value string
	Score int
}

// MatchDepartment сопоставляет сырое значение с каноническим департаментом.
// Точное попадание в словарь синонимов даёт оценку 100 и обходит нечёткий
// поиск; синоним с пустым значением означает "заведомо не департамент".
func (g *Gazetteer) MatchDepartment(value string, threshold int) DepartmentMatch {
	key := normalization.NormalizeKey(value)
	if key == "" {
		return DepartmentMatch{}
	}

	if canonical, ok := g.DepartmentSynonyms[key]; ok {
		return DepartmentMatch{Value: canonical, Score: 100}
	}

	best := DepartmentMatch{}
	for _, dept := range g.Departments {
		score := algorithms.SimilarityScore(key, normalization.NormalizeKey(dept))
		if score > best.Score {
			best = DepartmentMatch{Value: dept, Score: score}
		}
	}
	if best.Score < threshold {
		best.Value = ""
	}
	return best
}

// CityMatch — результат сопоставления города. Department заполняется из
// обратного индекса (или подсказки), Score сообщается всегда.
type CityMatch struct {
	City       string
	Department string
	Score      int
}

// MatchCity сопоставляет сырое значение с каноническим городом. Порядок
// поиска принципиален: после словаря синонимов сначала ищем в городах
// подсказанного департамента и только при недоборе порога — по всем
// департаментам, с тем же порогом. Географически согласованное совпадение
// предпочтительнее чуть более похожего из другого департамента.
func (g *Gazetteer) MatchCity(value, hintDepartment string, threshold int) CityMatch {
	key := normalization.NormalizeKey(value)
	if key == "" {
		return CityMatch{}
	}

	if canonical, ok := g.CitySynonyms[key]; ok {
		return CityMatch{
			City:       canonical,
			Department: g.DepartmentByCity[normalization.NormalizeKey(canonical)],
			Score:      100,
		}
	}
	if dept, ok := g.DepartmentByCity[key]; ok {
		return CityMatch{City: g.canonicalCity(key, dept), Department: dept, Score: 100}
	}

	best := CityMatch{}
	if hintDepartment != "" {
		for _, city := range g.CitiesByDepartment[hintDepartment] {
			score := algorithms.SimilarityScore(key, normalization.NormalizeKey(city))
			if score > best.Score {
				best = CityMatch{City: city, Department: hintDepartment, Score: score}
			}
		}
		if best.Score >= threshold {
			return best
		}
	}

	for _, dept := range g.Departments {
		for _, city := range g.CitiesByDepartment[dept] {
			score := algorithms.SimilarityScore(key, normalization.NormalizeKey(city))
			if score > best.Score {
				best = CityMatch{City: city, Department: dept, Score: score}
			}
		}
	}
	if best.Score < threshold {
		best.City = ""
		best.Department = ""
	}
	return best
}

// canonicalCity возвращает каноническое написание города по его ключу.
func (g *Gazetteer) canonicalCity(key, dept string) string {
	for _, city := range g.CitiesByDepartment[dept] {
		if normalization.NormalizeKey(city) == key {
			return city
		}
	}
	return ""
}

// CityState — результат совместной нормализации города и департамента.
type CityState struct {
	City       string
	State      string
	CityScore  int
	StateScore int
}

// NormalizeCityState нормализует пару город/департамент: сначала
// разрешается департамент, затем город с разрешённым департаментом в
// качестве подсказки. Город авторитетнее департамента: если у города
// известен свой департамент, он замещает значение из поля штата —
// в реальных данных поле города ошибается реже. Операция идемпотентна.
func (g *Gazetteer) NormalizeCityState(city, state string) CityState {
	stateMatch := g.MatchDepartment(state, DefaultThreshold)
	cityMatch := g.MatchCity(city, stateMatch.Value, DefaultThreshold)

	result := CityState{
		City:       cityMatch.City,
		State:      stateMatch.Value,
		CityScore:  cityMatch.Score,
		StateScore: stateMatch.Score,
	}
	if cityMatch.Department != "" {
		result.State = cityMatch.Department
	}

	result.City = normalization.TitleCaseSpanish(result.City, g.AccentFixes)
	result.State = normalization.TitleCaseSpanish(result.State, g.AccentFixes)
	return result
}

// TailResult — результат поглощения хвоста адреса.
type TailResult struct {
	Address    string
	City       string
	State      string
	CityScore  int
	StateScore int
}

// ConsumeAddressTail разбирает адрес по запятым и пытается снять с хвоста
// сначала департамент, затем город (с найденным департаментом как
// подсказкой). Порядок фиксирован: названия департаментов менее
// неоднозначны, и найденный департамент уточняет поиск города. Оставшиеся
// сегменты возвращаются как укороченный уличный адрес.
func (g *Gazetteer) ConsumeAddressTail(address string) TailResult {
	segments := splitSegments(address)
	result := TailResult{Address: address}
	if len(segments) == 0 {
		return result
	}

	last := segments[len(segments)-1]
	deptMatch := g.MatchDepartment(last, DefaultThreshold)
	result.StateScore = deptMatch.Score
	if deptMatch.Value != "" {
		result.State = deptMatch.Value
		segments = segments[:len(segments)-1]
	}

	if len(segments) > 0 {
		last = segments[len(segments)-1]
		cityMatch := g.MatchCity(last, result.State, DefaultThreshold)
		result.CityScore = cityMatch.Score
		if cityMatch.City != "" {
			result.City = cityMatch.City
			if result.State == "" {
				result.State = cityMatch.Department
			}
			segments = segments[:len(segments)-1]
		}
	}

	result.Address = strings.Join(segments, ", ")
	return result
}

func splitSegments(address string) []string {
	parts := strings.Split(address, ",")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return segments
}
