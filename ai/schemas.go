package ai

import "encoding/json"

// RowAnswerSchema ограничивает полный ответ оракула по строке: четыре
// исходных поля, пять очищенных и список использованных источников.
// Ровно этот набор полей, ничего лишнего.
var RowAnswerSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "Original_Address": {"type": "string"},
    "Original_City":    {"type": "string"},
    "Original_State":   {"type": "string"},
    "Original_Phone":   {"type": "string"},
    "Address":          {"type": "string"},
    "City":             {"type": "string"},
    "State":            {"type": "string"},
    "Phone":            {"type": "string"},
    "Email":            {"type": "string"},
    "evidence_fields_used": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "required": [
    "Original_Address", "Original_City", "Original_State", "Original_Phone",
    "Address", "City", "State", "Phone", "Email", "evidence_fields_used"
  ]
}`)

// PhoneRepairSchema — точечная починка телефона: ответ — одна строка
// с номером или пустая строка.
var PhoneRepairSchema = json.RawMessage(`{"type": "string"}`)

// CityStateRepairSchema — точечная починка пары город/департамент.
var CityStateRepairSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "City":  {"type": "string"},
    "State": {"type": "string"}
  },
  "required": ["City", "State"]
}`)

// RowAnswer — разобранный полный ответ оракула.
type RowAnswer struct {
	OriginalAddress    string   `json:"Original_Address"`
	OriginalCity       string   `json:"Original_City"`
	OriginalState      string   `json:"Original_State"`
	OriginalPhone      string   `json:"Original_Phone"`
	Address            string   `json:"Address"`
	City               string   `json:"City"`
	State              string   `json:"State"`
	Phone              string   `json:"Phone"`
	Email              string   `json:"Email"`
	EvidenceFieldsUsed []string `json:"evidence_fields_used"`
}

// ParseRowAnswer разбирает полный ответ оракула, снимая возможное
// markdown-ограждение.
func ParseRowAnswer(raw string) (RowAnswer, error) {
	var answer RowAnswer
	err := json.Unmarshal([]byte(StripJSONFence(raw)), &answer)
	return answer, err
}

// CityStateAnswer — разобранный ответ починки города/департамента.
type CityStateAnswer struct {
	City  string `json:"City"`
	State string `json:"State"`
}

// ParseCityStateAnswer разбирает ответ починки города/департамента.
func ParseCityStateAnswer(raw string) (CityStateAnswer, error) {
	var answer CityStateAnswer
	err := json.Unmarshal([]byte(StripJSONFence(raw)), &answer)
	return answer, err
}

// ParsePhoneAnswer разбирает ответ починки телефона: модель может вернуть
// как JSON-строку в кавычках, так и голый текст.
func ParsePhoneAnswer(raw string) string {
	raw = StripJSONFence(raw)
	var quoted string
	if err := json.Unmarshal([]byte(raw), &quoted); err == nil {
		return quoted
	}
	return raw
}
