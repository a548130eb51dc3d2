// Package csvcodec реализует разбор и сериализацию CSV для грязных
// экспортов интернет-магазинов. Стандартный encoding/csv здесь не подходит:
// входные файлы содержат непарные кавычки, дублирующиеся и пустые заголовки,
// строки разной длины — всё это нужно принимать без ошибок, не теряя данные.
package csvcodec

import (
	"fmt"
	"strings"
)

// Parse разбирает CSV текст в упорядоченный список заголовков и записи.
// Политика разбора намеренно мягкая:
//   - кавычки обрабатываются по текущему состоянию чётности, непарная
//     кавычка не приводит к ошибке;
//   - пустой заголовок получает синтетическое имя col_<n>;
//   - значения дублирующихся заголовков склеиваются через пробел в первое
//     вхождение, чтобы не затирать данные;
//   - короткие строки дополняются пустыми значениями.
func Parse(text string) ([]string, []map[string]string, error) {
	rows := splitRows(text)
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty CSV input")
	}
	return NormalizeTable(rows)
}

// NormalizeTable превращает сырую таблицу (первая строка — заголовки) в
// список заголовков и записи. Используется и CSV парсером, и XLSX ридером,
// чтобы оба источника давали одинаковую форму данных.
func NormalizeTable(rows [][]string) ([]string, []map[string]string, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty table")
	}

	rawHeaders := rows[0]
	if len(rawHeaders) == 0 {
		return nil, nil, fmt.Errorf("missing header row")
	}

	// Строим итоговый список заголовков: синтезируем имена для пустых,
	// дубликаты запоминаем, но в список не добавляем.
	headers := make([]string, 0, len(rawHeaders))
	// canonical[i] — имя колонки, в которую пишется i-е значение строки
	canonical := make([]string, len(rawHeaders))
	seen := make(map[string]bool, len(rawHeaders))
	for i, h := range rawHeaders {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}
		canonical[i] = name
		if seen[name] {
			continue
		}
		seen[name] = true
		headers = append(headers, name)
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// Полностью пустые строки пропускаем
		if isBlankRow(row) {
			continue
		}
		rec := make(map[string]string, len(headers))
		for _, h := range headers {
			rec[h] = ""
		}
		for i, value := range row {
			var name string
			if i < len(canonical) {
				name = canonical[i]
			} else {
				// Лишние ячейки за пределами заголовков тоже не теряем
				name = fmt.Sprintf("col_%d", i+1)
				if !seen[name] {
					seen[name] = true
					headers = append(headers, name)
				}
			}
			if existing := rec[name]; existing != "" && value != "" {
				rec[name] = existing + " " + value
			} else if value != "" {
				rec[name] = value
			}
		}
		records = append(records, rec)
	}

	return headers, records, nil
}

// splitRows разбивает текст на строки и поля с учётом кавычек по RFC 4180.
// Состояние "внутри кавычек" ведётся как бегущая чётность: при непарной
// кавычке остаток входа трактуется по текущему состоянию, без ошибки.
func splitRows(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var rows [][]string
	var row []string
	var field strings.Builder
	inQuotes := false
	fieldStarted := false

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes {
				// Удвоенная кавычка внутри кавычек — литеральная кавычка
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else if !fieldStarted {
				inQuotes = true
			} else {
				// Кавычка посреди незакавыченного поля — берём как есть
				field.WriteRune(r)
			}
			fieldStarted = true
		case r == ',' && !inQuotes:
			row = append(row, field.String())
			field.Reset()
			fieldStarted = false
		case r == '\n' && !inQuotes:
			row = append(row, field.String())
			field.Reset()
			fieldStarted = false
			rows = append(rows, row)
			row = nil
		default:
			field.WriteRune(r)
			fieldStarted = true
		}
	}
	// Хвост без завершающего перевода строки
	if fieldStarted || field.Len() > 0 || len(row) > 0 {
		row = append(row, field.String())
		rows = append(rows, row)
	}

	return rows
}

// Serialize записывает строки обратно в CSV текст. Порядок колонок задаётся
// headers и никогда не меняется. Поля с запятыми, кавычками или переводами
// строк закавычиваются, внутренние кавычки удваиваются. В конце всегда
// завершающий перевод строки.
func Serialize(rows []map[string]string, headers []string) string {
	var sb strings.Builder

	writeRow := func(values []string) {
		for i, v := range values {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(quoteField(v))
		}
		sb.WriteByte('\n')
	}

	writeRow(headers)
	for _, row := range rows {
		values := make([]string, len(headers))
		for i, h := range headers {
			values[i] = row[h]
		}
		writeRow(values)
	}

	return sb.String()
}

func quoteField(v string) string {
	if strings.ContainsAny(v, ",\"\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
