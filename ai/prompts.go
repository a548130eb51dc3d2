package ai

import (
	"fmt"
	"sort"
	"strings"

	"addresscleaner/gazetteer"
)

// RowSystemInstruction — системная инструкция полного запроса по строке.
// Ключевой запрет: модель не выдумывает департаменты и города вне
// переданного справочника.
const RowSystemInstruction = `You are a data cleaning assistant for Paraguayan postal address records.
You receive one messy CSV row with its raw columns and the current partially cleaned state.
Your task is to produce the best possible cleaned record.

Rules:
- COUNTRY is always Paraguay; never include it in the Address field.
- State must be one of the departments from the provided reference list, or empty. NEVER invent a department.
- City must be a real Paraguayan city, preferably from the provided reference list, or empty.
- Phone must be in +595 format with 7-9 digits after the country code, or empty if no valid phone exists.
- Email must be a valid lowercase email address, or empty.
- Address contains street names, intersections (joined with "y"), building names and house numbers; no phones, emails or noise words.
- Original_* fields repeat the raw source values; fill them only from the raw columns, never invent them.
- evidence_fields_used lists the raw column names you actually used.
- Return ONLY a single JSON object with exactly the required keys.`

// PhoneRepairInstruction — инструкция точечной починки телефона.
const PhoneRepairInstruction = `You repair Paraguayan phone numbers.
You receive phone candidates extracted from a messy record.
Return the single best phone in +595 format (7-9 digits after the country code).
If no candidate can be a valid Paraguayan phone, return an empty string.
Return ONLY a JSON string.`

// CityStateRepairInstruction — инструкция точечной починки города и
// департамента по тексту адреса.
const CityStateRepairInstruction = `You identify the Paraguayan city and department for an address.
State must be one of the departments from the provided reference list, or empty. NEVER invent a department.
If the address does not identify a place, return empty strings.
Return ONLY a JSON object with keys "City" and "State".`

// RowExamples — канонические few-shot примеры: почта, спрятанная в адресе,
// и телефон, размазанный по колонкам.
func RowExamples() []ExamplePair {
	return []ExamplePair{
		{
			Input: `Raw columns:
direccion: caleradelsur95@gmail.com casa, virgen del rosario y parana -general artigas, itapua
ciudad:
telefono: 0985 740.510`,
			Output: `{"Original_Address": "caleradelsur95@gmail.com casa, virgen del rosario y parana -general artigas, itapua", "Original_City": "", "Original_State": "", "Original_Phone": "0985 740.510", "Address": "Virgen del Rosario y Paraná", "City": "General Artigas", "State": "Itapúa", "Phone": "+595985740510", "Email": "caleradelsur95@gmail.com", "evidence_fields_used": ["direccion", "telefono"]}`,
		},
		{
			Input: `Raw columns:
Address: Avda mcal lopez c/ San Martin, edif Torre 2
City: asuncion capital
Phone: 595 21 555 000 int 2`,
			Output: `{"Original_Address": "Avda mcal lopez c/ San Martin, edif Torre 2", "Original_City": "asuncion capital", "Original_State": "", "Original_Phone": "595 21 555 000 int 2", "Address": "Avenida Mariscal López y San Martín, Edificio Torre 2", "City": "Asunción", "State": "Asunción", "Phone": "+59521555000", "Email": "", "evidence_fields_used": ["Address", "City", "Phone"]}`,
		},
	}
}

// GazetteerReference сериализует справочник для запроса: список
// департаментов и города по департаментам в детерминированном порядке.
func GazetteerReference(g *gazetteer.Gazetteer) string {
	var sb strings.Builder
	sb.WriteString("Departments: ")
	sb.WriteString(strings.Join(g.Departments, ", "))
	sb.WriteString("\nCities by department:\n")

	depts := make([]string, len(g.Departments))
	copy(depts, g.Departments)
	sort.Strings(depts)
	for _, dept := range depts {
		cities := g.CitiesByDepartment[dept]
		if len(cities) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "  %s: %s\n", dept, strings.Join(cities, ", "))
	}
	return sb.String()
}

// BuildRowPayload собирает полезную нагрузку полного запроса: сырые
// колонки в исходном порядке, текущее частично очищенное состояние и
// справочник.
func BuildRowPayload(headers []string, raw map[string]string, cleaned map[string]string, g *gazetteer.Gazetteer) string {
	var sb strings.Builder
	sb.WriteString("Raw columns:\n")
	for _, h := range headers {
		fmt.Fprintf(&sb, "%s: %s\n", h, raw[h])
	}
	sb.WriteString("\nCurrent cleaned state:\n")
	for _, field := range []string{"Address", "City", "State", "Phone", "Email"} {
		fmt.Fprintf(&sb, "%s: %s\n", field, cleaned[field])
	}
	sb.WriteString("\nReference gazetteer:\n")
	sb.WriteString(GazetteerReference(g))
	return sb.String()
}

// BuildPhoneRepairPayload собирает полезную нагрузку починки телефона.
func BuildPhoneRepairPayload(candidates []string, currentPhone string) string {
	var sb strings.Builder
	sb.WriteString("Phone candidates:\n")
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- %s\n", c)
	}
	fmt.Fprintf(&sb, "Current value: %s\n", currentPhone)
	return sb.String()
}

// BuildCityStateRepairPayload собирает полезную нагрузку починки
// города/департамента.
func BuildCityStateRepairPayload(address, city, state string, g *gazetteer.Gazetteer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Address: %s\nCurrent City: %s\nCurrent State: %s\n\nReference gazetteer:\n%s",
		address, city, state, GazetteerReference(g))
	return sb.String()
}
