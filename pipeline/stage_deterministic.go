package pipeline

import (
	"strings"

	"addresscleaner/extractors"
	"addresscleaner/quality"
)

// runDeterministic — детерминированная стадия: выбор источников по
// классифицированным заголовкам, извлечение контактов, очистка адреса,
// поглощение хвоста и нормализация по справочнику. Стадия не возвращает
// ошибок: проблемные поля деградируют до пустых значений.
func (p *Pipeline) runDeterministic(row *RowContext, headers []string, classes headerClasses) {
	p.selectAddress(row, headers, classes)
	p.extractContacts(row, headers, classes)

	row.Original.City = firstNonBlank(row.Raw, classes.city)
	row.Original.State = firstNonBlank(row.Raw, classes.state)

	cleanedAddress, applied := p.cleaner.CleanTrace(row.Original.Address)
	for _, step := range applied {
		row.AddEvidence("clean:" + step)
	}

	// Хвост разбирается только по очищенному адресу: на сыром тексте
	// телефоны и шум ломают сегментацию по запятым
	city, state := row.Original.City, row.Original.State
	if strings.TrimSpace(city) == "" || strings.TrimSpace(state) == "" {
		tail := p.gaz.ConsumeAddressTail(cleanedAddress)
		if tail.City != "" && strings.TrimSpace(city) == "" {
			city = tail.City
			row.AddEvidence("address_tail_city")
		}
		if tail.State != "" && strings.TrimSpace(state) == "" {
			state = tail.State
			row.AddEvidence("address_tail_state")
		}
		if tail.City != "" || tail.State != "" {
			cleanedAddress = tail.Address
		}
	}
	row.Cleaned.Address = cleanedAddress

	cs := p.gaz.NormalizeCityState(city, state)
	row.Cleaned.City = cs.City
	row.Cleaned.State = cs.State

	best := extractors.PickBestPhone(row.Candidates.Phones)
	row.Cleaned.Phone = best.Normalized
	if len(row.Candidates.Emails) > 0 {
		row.Cleaned.Email = row.Candidates.Emails[0]
	}

	row.Metrics = quality.Compute(p.gaz, row.Cleaned.Address, row.Cleaned.City,
		row.Cleaned.State, row.Cleaned.Phone, row.Cleaned.Email)
	row.MetricsComputed = true
}

// selectAddress выбирает первичный адрес: первая непустая адресная колонка,
// иначе запасной просмотр всех неклассифицированных полей с выбором
// самого длинного адресоподобного значения. Запасной путь существует
// потому, что в свободных экспортах адрес часто зарыт в примечаниях.
func (p *Pipeline) selectAddress(row *RowContext, headers []string, classes headerClasses) {
	for _, h := range classes.address {
		value := strings.TrimSpace(row.Raw[h])
		if value == "" {
			continue
		}
		row.Candidates.AddressParts = append(row.Candidates.AddressParts, value)
		if row.Original.Address == "" {
			row.Original.Address = value
			row.AddEvidence("address_column:" + h)
		}
	}
	if row.Original.Address != "" {
		return
	}

	var bestHeader, bestValue string
	for _, h := range headers {
		if classes.classified(h) {
			continue
		}
		value := strings.TrimSpace(row.Raw[h])
		if value == "" || !looksLikeAddress(value) {
			continue
		}
		if len(value) > len(bestValue) {
			bestHeader, bestValue = h, value
		}
	}
	if bestValue != "" {
		row.Original.Address = bestValue
		row.Candidates.AddressParts = append(row.Candidates.AddressParts, bestValue)
		row.AddEvidence("address_fallback_scan:" + bestHeader)
	}
}

// extractContacts собирает кандидатов телефонов и почты: телефонные колонки
// плюс независимый проход регулярками по всему тексту строки.
func (p *Pipeline) extractContacts(row *RowContext, headers []string, classes headerClasses) {
	row.Original.Phone = firstNonBlank(row.Raw, classes.phone)

	var columnPhones []string
	for _, h := range classes.phone {
		columnPhones = append(columnPhones, extractors.SplitPhoneColumn(row.Raw[h])...)
	}
	if len(columnPhones) > 0 {
		row.AddEvidence("phone_column")
	}

	var allText strings.Builder
	for _, h := range headers {
		allText.WriteString(row.Raw[h])
		allText.WriteString("\n")
	}
	freeText := allText.String()

	textPhones := extractors.ExtractPhones(freeText)
	if len(textPhones) > 0 {
		row.AddEvidence("phone_regex")
	}
	row.Candidates.Phones = extractors.MergePhoneCandidates(columnPhones, textPhones)

	row.Candidates.Emails = extractors.ExtractEmails(freeText)
	if len(row.Candidates.Emails) > 0 {
		row.AddEvidence("email_regex")
	}
}

// firstNonBlank возвращает первое непустое значение среди колонок группы.
func firstNonBlank(raw map[string]string, group []string) string {
	for _, h := range group {
		if value := strings.TrimSpace(raw[h]); value != "" {
			return value
		}
	}
	return ""
}
