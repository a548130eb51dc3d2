package gazetteer

import "regexp"

// departments — канонический список департаментов Парагвая плюс столичный
// округ Асунсьон, выровненный с написанием Google Maps.
var departments = []string{
	"Asunción", "Central", "Concepción", "San Pedro", "Cordillera", "Guairá",
	"Caaguazú", "Caazapá", "Itapúa", "Misiones", "Paraguarí", "Alto Paraná",
	"Ñeembucú", "Amambay", "Canindeyú", "Presidente Hayes", "Alto Paraguay",
	"Boquerón",
}

// citiesByDepartment — курируемая таблица департамент -> города. Не полный
// реестр населённых пунктов, а города, реально встречающиеся в экспортах
// заказов.
var citiesByDepartment = map[string][]string{
	"Asunción": {"Asunción", "Ciudad Nueva", "Mburicaó", "Loma Pytã"},
	"Central": {
		"Lambaré", "San Lorenzo", "Capiatá", "Fernando de la Mora", "Luque",
		"Villa Elisa", "Ñemby", "Itauguá", "Limpio", "Areguá",
		"Mariano Roque Alonso", "Ypané", "San Antonio",
	},
	"Concepción":       {"Concepción"},
	"San Pedro":        {"San Estanislao"},
	"Cordillera":       {"Caacupé"},
	"Guairá":           {"Villarrica", "Colonia Independencia"},
	"Caaguazú":         {"Coronel Oviedo", "Caaguazú"},
	"Caazapá":          {"Caazapá"},
	"Itapúa":           {"Encarnación", "Carmen del Paraná", "Bella Vista", "Obligado", "General Artigas"},
	"Misiones":         {"San Juan Bautista"},
	"Paraguarí":        {"Paraguarí"},
	"Alto Paraná":      {"Ciudad del Este", "Hernandarias", "Presidente Franco", "Los Cedrales", "Santa Rosa del Monday"},
	"Ñeembucú":         {"Pilar"},
	"Amambay":          {"Pedro Juan Caballero"},
	"Canindeyú":        {"Salto del Guairá"},
	"Presidente Hayes": {"Villa Hayes"},
	"Alto Paraguay":    {"Fuerte Olimpo"},
	"Boquerón":         {"Filadelfia", "Loma Plata"},
}

// departmentSynonyms — сырые написания департаментов из реальных данных.
// Ключи в форме normalization.NormalizeKey. Пустое значение означает
// "не департамент, отбросить": ячейка штата с "Paraguay" не несёт информации.
var departmentSynonyms = map[string]string{
	"paraguay":     "",
	"capital":      "Asunción",
	"assumption":   "Asunción",
	"gran asuncion": "Central",
	"departamento": "Central",
	"py":           "",
}

// citySynonyms — сырые написания городов, которые словарём надёжнее, чем
// нечётким поиском: районы столицы, устоявшиеся сокращения и частые опечатки.
var citySynonyms = map[string]string{
	"assumption":    "Asunción",
	"asu":           "Asunción",
	"cde":           "Ciudad del Este",
	"pjc":           "Pedro Juan Caballero",
	"guaira":        "Villarrica",
	"independencia": "Colonia Independencia",
	"herniandarias": "Hernandarias",
	"ciudad nueva":  "Ciudad Nueva",
	"mburicao":      "Mburicaó",
	"fdo de la mora": "Fernando de la Mora",
}

// addressAbbreviations — словарь раскрытия сокращений в адресах. Ключ — токен
// без точки и диакритики; подстановка работает и для варианта с точкой.
var addressAbbreviations = map[string]string{
	"av":   "Avenida",
	"avda": "Avenida",
	"gral": "General",
	"pte":  "Presidente",
	"tte":  "Teniente",
	"mcal": "Mariscal",
	"cnel": "Coronel",
	"sgto": "Sargento",
	"dr":   "Doctor",
	"dpto": "Departamento",
	"edif": "Edificio",
}

// accentFixes — точные написания слов, у которых в экспортах систематически
// потеряна или искажена диакритика. Ключ в форме NormalizeKey, значение —
// каноническое написание с нужной капитализацией.
var accentFixes = map[string]string{
	"asuncion":  "Asunción",
	"espana":    "España",
	"lopez":     "López",
	"parana":    "Paraná",
	"itapua":    "Itapúa",
	"caacupe":   "Caacupé",
	"mecanica":  "Mecánica",
	"agricola":  "Agrícola",
	"mburicao":  "Mburicaó",
	"capitan":   "Capitán",
	"encarnacion": "Encarnación",
	"nemby":     "Ñemby",
	"itaugua":   "Itauguá",
	"capiata":   "Capiatá",
	"lambare":   "Lambaré",
	"aregua":    "Areguá",
	"ypane":     "Ypané",
	"caaguazu":  "Caaguazú",
	"neembucu":  "Ñeembucú",
	"canindeyu": "Canindeyú",
	"boqueron":  "Boquerón",
	"caazapa":   "Caazapá",
	"paraguari": "Paraguarí",
	"guarani":   "Guaraní",
}

// noisePatterns — мусорные фразы, которые вычищаются из адресных строк до
// нечёткого разбора хвоста: страна, заглушки, служебные пометки почты.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bparaguay\b`),
	regexp.MustCompile(`(?i)\bsin\s+datos?\b`),
	regexp.MustCompile(`(?i)\bn/?a\b`),
	regexp.MustCompile(`(?i)\bundefined\b`),
	regexp.MustCompile(`(?i)\bxxx+\b`),
	regexp.MustCompile(`\b0{4,}\b`),
	regexp.MustCompile(`(?i)\bcp-\w+\b`),
	regexp.MustCompile(`(?i)\bcorreo paraguayo\b`),
	regexp.MustCompile(`(?i)\bcasilla de correos?\s*\d*\b`),
	regexp.MustCompile(`(?i)\blink de maps\b`),
	regexp.MustCompile(`(?i)\bnumero de telefono\b.*`),
	regexp.MustCompile(`\b\d{12,}\b`),
	regexp.MustCompile(`(?i),?\s*\bcasa particular\b`),
}

// EmailPattern распознаёт адреса электронной почты в произвольном тексте.
var EmailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// PhonePattern распознаёт телефоноподобные последовательности: минимум семь
// знаков из цифр, пробелов, скобок и дефисов, опционально с ведущим плюсом.
var PhonePattern = regexp.MustCompile(`\+?\d[\d\s\-().]{5,}\d`)

// RoutePattern и KmPattern нормализуют упоминания трасс и километража к
// каноническим формам "Ruta <N>" и "Km <N>".
var (
	RoutePattern = regexp.MustCompile(`(?i)\brutas?\.?\s*(?:n(?:ro|o)?[°º.]*\s*)?(\d+)`)
	KmPattern    = regexp.MustCompile(`(?i)\bkm\.?\s*(\d+(?:[.,]\d+)?)`)
)
