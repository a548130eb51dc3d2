package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addresscleaner/ai"
	"addresscleaner/gazetteer"
	"addresscleaner/normalization"
)

func newTestPipeline(oracle ai.Client, useLLM bool) *Pipeline {
	g := gazetteer.New()
	cleaner := normalization.NewAddressCleaner(normalization.CleanerTables{
		Abbreviations: g.Abbreviations,
		AccentFixes:   g.AccentFixes,
		NoisePatterns: g.NoisePatterns,
		EmailPattern:  gazetteer.EmailPattern,
		PhonePattern:  gazetteer.PhonePattern,
		RoutePattern:  gazetteer.RoutePattern,
		KmPattern:     gazetteer.KmPattern,
	})
	return New(g, cleaner, oracle, Config{Workers: 1, UseLLM: useLLM})
}

type scriptedOracle struct {
	response string
	err      error
	calls    int
}

func (o *scriptedOracle) Generate(_ context.Context, _ ai.Request) (string, error) {
	o.calls++
	return o.response, o.err
}

func TestRunDeterministicOnly(t *testing.T) {
	p := newTestPipeline(nil, false)
	input := "direccion,ciudad,departamento,telefono\n" +
		"\"Avda. Mariscal López 123, Ciudad del Este, Alto Parana\",,,0981 123456\n"

	out, result, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 1, result.KeptRows)

	row := result.Rows[0]
	assert.Equal(t, "Avenida Mariscal López 123", row.Cleaned.Address)
	assert.Equal(t, "Ciudad del Este", row.Cleaned.City)
	assert.Equal(t, "Alto Paraná", row.Cleaned.State)
	assert.Equal(t, "+595981123456", row.Cleaned.Phone)
	assert.Contains(t, row.Evidence, "address_tail_city")
	assert.Contains(t, row.Evidence, "address_tail_state")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Original_Address,Original_City,Original_State,Original_Phone,Address,City,State,Phone,Email", lines[0])
}

func TestRunExtractsEmailFromAddress(t *testing.T) {
	p := newTestPipeline(nil, false)
	input := "direccion,ciudad,departamento\n" +
		"Av. España 456 contacto@tienda.com,Luque,Central\n"

	_, result, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 1, result.KeptRows)

	row := result.Rows[0]
	assert.Equal(t, "Avenida España 456", row.Cleaned.Address)
	assert.Equal(t, "contacto@tienda.com", row.Cleaned.Email)
	assert.Contains(t, row.Evidence, "email_regex")
}

func TestRunMergeNeverDowngrades(t *testing.T) {
	// Оракул возвращает пустой адрес и найденный телефон: адрес из
	// детерминированной стадии должен сохраниться
	oracle := &scriptedOracle{response: `{
		"Original_Address": "", "Original_City": "", "Original_State": "", "Original_Phone": "",
		"Address": "", "City": "", "State": "", "Phone": "+595981123456", "Email": "",
		"evidence_fields_used": ["notas"]}`}
	p := newTestPipeline(oracle, true)
	input := "direccion,ciudad,departamento,correo\n" +
		"Av. España 456,Luque,Central,a@b.com\n"

	_, result, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 1, result.KeptRows)

	row := result.Rows[0]
	assert.True(t, row.LLMUsed)
	assert.Equal(t, "Avenida España 456", row.Cleaned.Address)
	assert.Equal(t, "+595981123456", row.Cleaned.Phone)
	assert.Contains(t, row.Evidence, "notas")
	assert.Equal(t, 1, result.LLMRows)
}

func TestRunFailedOracleLeavesRowDeterministic(t *testing.T) {
	// Неудачный вызов оракула не считается использованием LLM: строка
	// сохраняет детерминированное состояние и не попадает в LLMRows
	oracle := &scriptedOracle{err: errors.New("oracle down")}
	p := newTestPipeline(oracle, true)
	input := "direccion,ciudad,departamento,correo\n" +
		"Palma 950,,,a@b.com\n"

	_, result, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 1, result.KeptRows)
	require.Greater(t, oracle.calls, 0, "запасная стадия должна была обратиться к оракулу")

	row := result.Rows[0]
	assert.False(t, row.LLMUsed)
	assert.Equal(t, 0, result.LLMRows)
	assert.Equal(t, "Palma 950", row.Cleaned.Address)
}

func TestRunMalformedOracleAnswerLeavesRowDeterministic(t *testing.T) {
	oracle := &scriptedOracle{response: "not json at all"}
	p := newTestPipeline(oracle, true)
	input := "direccion,ciudad,departamento,correo\n" +
		"Palma 950,,,a@b.com\n"

	_, result, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 1, result.KeptRows)

	row := result.Rows[0]
	assert.False(t, row.LLMUsed)
	assert.Equal(t, 0, result.LLMRows)
}

func TestRunInvalidPhoneBlankedOnRepairFailure(t *testing.T) {
	oracle := &scriptedOracle{err: errors.New("oracle down")}
	p := newTestPipeline(oracle, true)
	input := "direccion,ciudad,departamento,telefono,correo\n" +
		"Palma 950,Luque,Central,123,a@b.com\n"

	_, result, err := p.Run(context.Background(), input)
	require.NoError(t, err, "ошибки оракула не должны ронять батч")
	require.Equal(t, 1, result.KeptRows)

	row := result.Rows[0]
	assert.Equal(t, "", row.Cleaned.Phone, "некорректный номер без починки обнуляется")
	assert.Equal(t, "a@b.com", row.Cleaned.Email)
}

type panickingOracle struct{}

func (panickingOracle) Generate(context.Context, ai.Request) (string, error) {
	panic("oracle blew up")
}

func TestRunRecoversRowPanic(t *testing.T) {
	// Паника в обработчике одной строки ограничивается этой строкой:
	// батч завершается, остальные строки доходят до фильтра
	p := newTestPipeline(panickingOracle{}, true)
	input := "direccion,ciudad,departamento,telefono,correo\n" +
		"Palma 950,,,0981 123456,a@b.com\n" +
		"Av. España 456,Luque,Central,0982 654321,b@b.com\n"

	_, result, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 0, result.LLMRows)

	for _, row := range result.Rows {
		require.NotNil(t, row)
	}
}

func TestRunKeepRuleBoundary(t *testing.T) {
	p := newTestPipeline(nil, false)

	// Город и департамент есть, контактов нет — строка отбрасывается
	input := "direccion,ciudad,departamento,correo\n,Asunción,Asunción,\n"
	_, result, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 0, result.KeptRows)
	assert.Equal(t, 1, result.DroppedKeepRule)

	// Та же строка с почтой — остается
	input = "direccion,ciudad,departamento,correo\n,Asunción,Asunción,a@b.com\n"
	_, result, err = p.Run(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, result.KeptRows)
}

func TestRunDedupKeepsFirstOccurrence(t *testing.T) {
	p := newTestPipeline(nil, false)
	input := "direccion,ciudad,departamento,telefono\n" +
		"Palma 950,Luque,Central,0981 123456\n" +
		"\"Palma, 950\",Luque,Central,(0981) 123-456\n"

	_, result, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, result.KeptRows)
	assert.Equal(t, 1, result.DroppedDuplicates)
	assert.Equal(t, 0, result.Rows[0].Index, "выживает строка с меньшим индексом")
}

func TestRunHeaderlessInputIsFatal(t *testing.T) {
	p := newTestPipeline(nil, false)
	_, _, err := p.Run(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Input CSV must include a header row")
}

func TestRunCancelledContext(t *testing.T) {
	p := newTestPipeline(nil, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.Run(ctx, "direccion,telefono\nPalma 950,0981 123456\n")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunRowLoggerOrdering(t *testing.T) {
	oracle := &scriptedOracle{err: errors.New("oracle down")}
	var loggedRows []int
	p := newTestPipeline(oracle, true)
	p.rowLog = func(rowIndex int, _, _ string, _ map[string]string) {
		loggedRows = append(loggedRows, rowIndex)
	}
	p.cfg.Workers = 4

	input := "direccion,ciudad,departamento,telefono,correo\n" +
		"Palma 950,Luque,Central,123,a@b.com\n" +
		"Palma 951,Luque,Central,124,b@b.com\n" +
		"Palma 952,Luque,Central,125,c@b.com\n"
	_, _, err := p.Run(context.Background(), input)
	require.NoError(t, err)

	for i := 1; i < len(loggedRows); i++ {
		assert.LessOrEqual(t, loggedRows[i-1], loggedRows[i], "журнал сбрасывается в порядке индексов")
	}
}

func TestKeepRow(t *testing.T) {
	tests := []struct {
		name     string
		cleaned  CleanedFields
		expected bool
	}{
		{"адрес и телефон", CleanedFields{Address: "Palma 950", Phone: "+595981123456"}, true},
		{"город+департамент и почта", CleanedFields{City: "Luque", State: "Central", Email: "a@b.com"}, true},
		{"только город без департамента", CleanedFields{City: "Luque", Email: "a@b.com"}, false},
		{"адрес без контактов", CleanedFields{Address: "Palma 950"}, false},
		{"пустая строка", CleanedFields{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := &RowContext{Cleaned: tt.cleaned}
			assert.Equal(t, tt.expected, keepRow(row))
		})
	}
}

func TestDedupKeyNormalization(t *testing.T) {
	a := &RowContext{Cleaned: CleanedFields{Address: "Avenida España 456", City: "Luque", Phone: "+595981123456"}}
	b := &RowContext{Cleaned: CleanedFields{Address: "avenida. espana, 456", City: "LUQUE", Phone: "(+595) 981-123456"}}
	assert.Equal(t, dedupKey(a), dedupKey(b), "пунктуация и диакритика не различают дубликаты")
}
