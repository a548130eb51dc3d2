package pipeline

import (
	"strings"

	"addresscleaner/normalization"
)

// keepRow — бизнес-правило отбора: (адрес ИЛИ город+департамент) И
// (телефон ИЛИ почта). Оценивается по финальным очищенным значениям.
func keepRow(row *RowContext) bool {
	hasAddress := strings.TrimSpace(row.Cleaned.Address) != ""
	hasCity := strings.TrimSpace(row.Cleaned.City) != ""
	hasState := strings.TrimSpace(row.Cleaned.State) != ""
	hasPhone := strings.TrimSpace(row.Cleaned.Phone) != ""
	hasEmail := strings.TrimSpace(row.Cleaned.Email) != ""
	return (hasAddress || (hasCity && hasState)) && (hasPhone || hasEmail)
}

// dedupKey — составной ключ дубликата: каждое поле без диакритики, в нижнем
// регистре и без неалфавитно-цифровых символов, поля склеены через "|".
// Ключ нарочно груб к пунктуации; теоретические коллизии пар, отличающихся
// только её плотностью, принимаются как цена устойчивости к шуму оформления.
func dedupKey(row *RowContext) string {
	fields := []string{
		row.Cleaned.Address, row.Cleaned.City, row.Cleaned.State,
		row.Cleaned.Phone, row.Cleaned.Email,
	}
	normalized := make([]string, len(fields))
	for i, f := range fields {
		normalized[i] = alphanumeric(normalization.NormalizeKey(f))
	}
	return strings.Join(normalized, "|")
}

func alphanumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// runFilter — однопроходная фильтрация с дедупликацией всего батча.
// Обход строго в порядке исходных индексов: "первое вхождение" ключа
// детерминировано. Порядок выживших строк никогда не пересортировывается.
func (p *Pipeline) runFilter(rows []*RowContext, result *Result, log RowLogger) []*RowContext {
	seen := make(map[string]bool, len(rows))
	survivors := make([]*RowContext, 0, len(rows))
	for _, row := range rows {
		if !keepRow(row) {
			result.DroppedKeepRule++
			log(row.Index, "filter", "dropped by keep rule",
				map[string]string{"address": row.Cleaned.Address, "phone": row.Cleaned.Phone, "email": row.Cleaned.Email})
			continue
		}
		key := dedupKey(row)
		if seen[key] {
			result.DroppedDuplicates++
			log(row.Index, "filter", "dropped as duplicate", map[string]string{"key": key})
			continue
		}
		seen[key] = true
		survivors = append(survivors, row)
	}
	return survivors
}
