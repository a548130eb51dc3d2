// Package pipeline связывает стадии нормализации в конвейер: детерминированная
// очистка, запасной оракул, починка полей и фильтрация с дедупликацией.
package pipeline

import "addresscleaner/quality"

// OriginalFields — исходные значения до любой очистки. Заполняются один раз
// на детерминированной стадии; оракул может дозаполнить только пустые.
type OriginalFields struct {
	Address string
	City    string
	State   string
	Phone   string
}

// CleanedFields — рабочие нормализованные значения. Пустая строка означает
// "значения нет", не ошибку.
type CleanedFields struct {
	Address string
	City    string
	State   string
	Phone   string
	Email   string
}

// Candidates — сырые альтернативы извлечения, которые нужны стадии починки:
// ремонт телефона смотрит на все кандидаты, не только на выбранный.
type Candidates struct {
	Phones       []string
	Emails       []string
	AddressParts []string
}

// RowContext — единица работы, проходящая через все стадии. Создается один
// раз на входную запись и мутируется по ссылке; строки никогда не
// сливаются и не дублируются.
type RowContext struct {
	Index           int
	Raw             map[string]string
	Original        OriginalFields
	Cleaned         CleanedFields
	Metrics         quality.Metrics
	MetricsComputed bool
	Candidates      Candidates
	Evidence        []string
	LLMUsed         bool

	evidenceSeen map[string]bool
}

// AddEvidence добавляет записи в след принятия решений: только объединение,
// дубликаты отбрасываются, порядок первого появления сохраняется.
func (r *RowContext) AddEvidence(items ...string) {
	if r.evidenceSeen == nil {
		r.evidenceSeen = make(map[string]bool)
	}
	for _, item := range items {
		if item == "" || r.evidenceSeen[item] {
			continue
		}
		r.evidenceSeen[item] = true
		r.Evidence = append(r.Evidence, item)
	}
}

// RowLogger — внедряемый колбэк построчной диагностики. Чистый побочный
// канал: на ход конвейера не влияет.
type RowLogger func(rowIndex int, stage, message string, payload map[string]string)
