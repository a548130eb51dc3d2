package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, ttl time.Duration) *SessionDB {
	t.Helper()
	db, err := NewSessionDB(filepath.Join(t.TempDir(), "sessions.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionLifecycle(t *testing.T) {
	db := newTestDB(t, time.Hour)

	id, err := db.CreateSession("orders.csv")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	session, err := db.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, "orders.csv", session.InputFile)
	assert.Equal(t, "running", session.Status)
	assert.True(t, session.FinishedAt.IsZero())

	err = db.FinishSession(id, SessionCounters{
		TotalRows: 10, KeptRows: 7, DroppedKeepRule: 2, DroppedDuplicates: 1, LLMRows: 3,
	})
	require.NoError(t, err)

	session, err = db.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, "finished", session.Status)
	assert.Equal(t, 10, session.TotalRows)
	assert.Equal(t, 7, session.KeptRows)
	assert.Equal(t, 2, session.DroppedKeepRule)
	assert.Equal(t, 1, session.DroppedDuplicates)
	assert.Equal(t, 3, session.LLMRows)
	assert.False(t, session.FinishedAt.IsZero())
}

func TestSaveAndListRows(t *testing.T) {
	db := newTestDB(t, time.Hour)
	id, err := db.CreateSession("orders.csv")
	require.NoError(t, err)

	require.NoError(t, db.SaveRow(RowRecord{
		SessionID: id, RowIndex: 1,
		Address: "Palma 950", City: "Asunción", State: "Asunción",
		Phone: "+595981123456", LLMUsed: true, Evidence: "phone_column",
	}))
	require.NoError(t, db.SaveRow(RowRecord{
		SessionID: id, RowIndex: 0,
		Address: "Avenida España 456", City: "Luque", State: "Central",
		Email: "a@b.com",
	}))

	records, err := db.SessionRows(id)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 0, records[0].RowIndex, "строки возвращаются в порядке индексов")
	assert.Equal(t, "Luque", records[0].City)
	assert.True(t, records[1].LLMUsed)
}

func TestSaveRowReplacesDuplicateIndex(t *testing.T) {
	db := newTestDB(t, time.Hour)
	id, err := db.CreateSession("orders.csv")
	require.NoError(t, err)

	require.NoError(t, db.SaveRow(RowRecord{SessionID: id, RowIndex: 0, City: "Luque"}))
	require.NoError(t, db.SaveRow(RowRecord{SessionID: id, RowIndex: 0, City: "Lambaré"}))

	records, err := db.SessionRows(id)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Lambaré", records[0].City)
}

func TestResponseCache(t *testing.T) {
	db := newTestDB(t, time.Hour)

	_, ok := db.Get("hash-1")
	assert.False(t, ok)

	db.Put("hash-1", `{"ok": true}`)
	got, ok := db.Get("hash-1")
	require.True(t, ok)
	assert.Equal(t, `{"ok": true}`, got)

	// Перезапись того же ключа
	db.Put("hash-1", `{"ok": false}`)
	got, ok = db.Get("hash-1")
	require.True(t, ok)
	assert.Equal(t, `{"ok": false}`, got)
}

func TestResponseCacheExpiry(t *testing.T) {
	db := newTestDB(t, time.Millisecond)

	db.Put("hash-1", "stale")
	time.Sleep(5 * time.Millisecond)

	_, ok := db.Get("hash-1")
	assert.False(t, ok, "просроченная запись не возвращается")
}
