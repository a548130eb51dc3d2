package pipeline

import (
	"context"
	"strings"

	"addresscleaner/ai"
	"addresscleaner/extractors"
	"addresscleaner/quality"
)

// needsLLM — триггер запасной стадии: строка без метрик или с любым
// незакрытым флагом уходит к оракулу.
func needsLLM(row *RowContext) bool {
	return !row.MetricsComputed || !row.Metrics.Complete()
}

// runOracleFallback — запасная стадия: полный запрос к оракулу и слияние
// ответа. Любая ошибка вызова ограничена строкой: состояние до вызова
// сохраняется, конвейер продолжает.
func (p *Pipeline) runOracleFallback(ctx context.Context, row *RowContext, headers []string, log RowLogger) {
	if !needsLLM(row) {
		return
	}

	req := ai.Request{
		SystemInstruction: ai.RowSystemInstruction,
		Schema:            ai.RowAnswerSchema,
		Examples:          ai.RowExamples(),
		UserPayload:       ai.BuildRowPayload(headers, row.Raw, cleanedMap(row), p.gaz),
	}
	raw, err := p.oracle.Generate(ctx, req)
	if err != nil {
		log(row.Index, "fallback", "oracle call failed, keeping deterministic state",
			map[string]string{"error": err.Error()})
		return
	}
	answer, err := ai.ParseRowAnswer(raw)
	if err != nil {
		log(row.Index, "fallback", "malformed oracle answer, keeping deterministic state",
			map[string]string{"error": err.Error()})
		return
	}

	// Строка считается обработанной оракулом только после разобранного ответа:
	// неудачный вызов оставляет её в детерминированном состоянии.
	row.LLMUsed = true
	p.mergeAnswer(row, answer)
	row.Metrics = quality.Compute(p.gaz, row.Cleaned.Address, row.Cleaned.City,
		row.Cleaned.State, row.Cleaned.Phone, row.Cleaned.Email)
	log(row.Index, "fallback", "oracle answer merged",
		map[string]string{"city": row.Cleaned.City, "state": row.Cleaned.State})
}

// mergeAnswer сливает ответ оракула в строку. Политика аддитивна и
// идемпотентна: исходные поля заполняются только если пусты, очищенные
// замещаются только непустым ответом, след объединяется.
func (p *Pipeline) mergeAnswer(row *RowContext, answer ai.RowAnswer) {
	fillBlank(&row.Original.Address, answer.OriginalAddress)
	fillBlank(&row.Original.City, answer.OriginalCity)
	fillBlank(&row.Original.State, answer.OriginalState)
	fillBlank(&row.Original.Phone, answer.OriginalPhone)

	overrideNonBlank(&row.Cleaned.Address, answer.Address)
	overrideNonBlank(&row.Cleaned.City, answer.City)
	overrideNonBlank(&row.Cleaned.State, answer.State)
	overrideNonBlank(&row.Cleaned.Phone, answer.Phone)
	overrideNonBlank(&row.Cleaned.Email, strings.ToLower(answer.Email))

	if answer.Phone != "" {
		row.Candidates.Phones = extractors.MergePhoneCandidates(row.Candidates.Phones, []string{answer.Phone})
	}
	row.AddEvidence(answer.EvidenceFieldsUsed...)
}

// runRepair — стадия валидации и точечной починки после слияния: телефон,
// почта, повторная нормализация города/департамента. Ошибки оракула здесь
// означают "починка недоступна" и деградируют до обнуления поля.
func (p *Pipeline) runRepair(ctx context.Context, row *RowContext, log RowLogger) {
	p.repairPhone(ctx, row, log)

	if row.Cleaned.Email != "" && !quality.IsValidEmail(row.Cleaned.Email) {
		// Почту не чиним: битый адрес переспрашиванием не спасти
		log(row.Index, "repair", "invalid email blanked",
			map[string]string{"email": row.Cleaned.Email})
		row.Cleaned.Email = ""
	}

	cs := p.gaz.NormalizeCityState(row.Cleaned.City, row.Cleaned.State)
	row.Cleaned.City = cs.City
	row.Cleaned.State = cs.State

	if row.Cleaned.City == "" || row.Cleaned.State == "" {
		p.repairCityState(ctx, row, log)
	}

	row.Metrics = quality.Compute(p.gaz, row.Cleaned.Address, row.Cleaned.City,
		row.Cleaned.State, row.Cleaned.Phone, row.Cleaned.Email)
	row.MetricsComputed = true
}

// repairPhone переспрашивает оракула по всем кандидатам, когда текущий
// номер некорректен. Некорректный номер без удачной починки обнуляется.
func (p *Pipeline) repairPhone(ctx context.Context, row *RowContext, log RowLogger) {
	if extractors.IsValidPhonePY(row.Cleaned.Phone) {
		return
	}

	if p.oracle != nil && len(row.Candidates.Phones) > 0 {
		raw, err := p.oracle.Generate(ctx, ai.Request{
			SystemInstruction: ai.PhoneRepairInstruction,
			Schema:            ai.PhoneRepairSchema,
			UserPayload:       ai.BuildPhoneRepairPayload(row.Candidates.Phones, row.Cleaned.Phone),
		})
		if err == nil {
			repaired := extractors.NormalizePhonePY(ai.ParsePhoneAnswer(raw))
			if extractors.IsValidPhonePY(repaired) {
				row.Cleaned.Phone = repaired
				row.AddEvidence("phone_repair")
				return
			}
		} else {
			log(row.Index, "repair", "phone repair unavailable",
				map[string]string{"error": err.Error()})
		}
	}

	if row.Cleaned.Phone != "" {
		log(row.Index, "repair", "invalid phone blanked",
			map[string]string{"phone": row.Cleaned.Phone})
		row.Cleaned.Phone = ""
	}
}

// repairCityState переспрашивает оракула по тексту адреса; принимаются
// только непустые ответы, результат повторно прогоняется через справочник.
func (p *Pipeline) repairCityState(ctx context.Context, row *RowContext, log RowLogger) {
	if p.oracle == nil || strings.TrimSpace(row.Cleaned.Address) == "" {
		return
	}

	raw, err := p.oracle.Generate(ctx, ai.Request{
		SystemInstruction: ai.CityStateRepairInstruction,
		Schema:            ai.CityStateRepairSchema,
		UserPayload: ai.BuildCityStateRepairPayload(
			row.Cleaned.Address, row.Cleaned.City, row.Cleaned.State, p.gaz),
	})
	if err != nil {
		log(row.Index, "repair", "city/state repair unavailable",
			map[string]string{"error": err.Error()})
		return
	}
	answer, err := ai.ParseCityStateAnswer(raw)
	if err != nil {
		log(row.Index, "repair", "malformed city/state repair answer",
			map[string]string{"error": err.Error()})
		return
	}

	city, state := row.Cleaned.City, row.Cleaned.State
	if city == "" && answer.City != "" {
		city = answer.City
	}
	if state == "" && answer.State != "" {
		state = answer.State
	}
	cs := p.gaz.NormalizeCityState(city, state)
	if cs.City != row.Cleaned.City || cs.State != row.Cleaned.State {
		row.AddEvidence("city_state_repair")
	}
	row.Cleaned.City = cs.City
	row.Cleaned.State = cs.State
}

// cleanedMap — очищенное состояние в форме для полезной нагрузки запроса.
func cleanedMap(row *RowContext) map[string]string {
	return map[string]string{
		"Address": row.Cleaned.Address,
		"City":    row.Cleaned.City,
		"State":   row.Cleaned.State,
		"Phone":   row.Cleaned.Phone,
		"Email":   row.Cleaned.Email,
	}
}

func fillBlank(target *string, value string) {
	if strings.TrimSpace(*target) == "" && value != "" {
		*target = value
	}
}

func overrideNonBlank(target *string, value string) {
	if strings.TrimSpace(value) != "" {
		*target = value
	}
}
