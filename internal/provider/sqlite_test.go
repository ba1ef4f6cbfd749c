package provider_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ckrest/graph-lib/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func createTestDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "metrics.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE ping_results (
		timestamp INTEGER NOT NULL,
		avg_ms REAL,
		host TEXT
	)`)
	require.NoError(t, err)

	now := time.Now().Unix()
	rows := []struct {
		ts    int64
		avg   any
		host  string
	}{
		{now - 3600, 12.5, "8.8.8.8"},
		{now - 1800, 14.0, "8.8.8.8"},
		{now - 600, 11.25, "1.1.1.1"},
		{now - 300, nil, "8.8.8.8"},            // skipped: null value
		{now - 90000, 99.0, "8.8.8.8"},         // outside the 24h window
		{now - 60, "not a number", "8.8.8.8"},  // skipped: bad value
	}
	for _, r := range rows {
		_, err = db.Exec("INSERT INTO ping_results (timestamp, avg_ms, host) VALUES (?, ?, ?)", r.ts, r.avg, r.host)
		require.NoError(t, err)
	}

	return path
}

func TestQueryFetch(t *testing.T) {
	p, err := provider.NewQuery(provider.QueryConfig{
		DBPath:      createTestDB(t),
		Table:       "ping_results",
		ValueColumn: "avg_ms",
	})
	require.NoError(t, err)

	data := p.Fetch()
	require.Len(t, data, 3, "null, unparsable and out-of-window rows are excluded")

	assert.InDelta(t, 12.5, data[0].Value, 1e-9)
	assert.InDelta(t, 14.0, data[1].Value, 1e-9)
	assert.InDelta(t, 11.25, data[2].Value, 1e-9)
	assert.True(t, data[0].Time.Before(data[1].Time))
	assert.NoError(t, p.LastError())
}

func TestQueryWhereAndLimit(t *testing.T) {
	path := createTestDB(t)

	p, err := provider.NewQuery(provider.QueryConfig{
		DBPath:      path,
		Table:       "ping_results",
		ValueColumn: "avg_ms",
		Where:       "host = '8.8.8.8'",
	})
	require.NoError(t, err)
	assert.Len(t, p.Fetch(), 2)

	p, err = provider.NewQuery(provider.QueryConfig{
		DBPath:      path,
		Table:       "ping_results",
		ValueColumn: "avg_ms",
		Limit:       1,
	})
	require.NoError(t, err)
	assert.Len(t, p.Fetch(), 1)
}

func TestQueryWindow(t *testing.T) {
	p, err := provider.NewQuery(provider.QueryConfig{
		DBPath:      createTestDB(t),
		Table:       "ping_results",
		ValueColumn: "avg_ms",
		Window:      15 * time.Minute,
	})
	require.NoError(t, err)

	data := p.Fetch()
	require.Len(t, data, 1, "only the recent row falls inside the window")
	assert.InDelta(t, 11.25, data[0].Value, 1e-9)
}

func TestQueryTextualTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE readings (timestamp TEXT, value REAL)`)
	require.NoError(t, err)

	now := time.Now()
	_, err = db.Exec("INSERT INTO readings VALUES (?, ?)", now.Add(-time.Hour).Format("2006-01-02 15:04:05"), 5.0)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO readings VALUES ('never', 6.0)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	p, err := provider.NewQuery(provider.QueryConfig{
		DBPath:      path,
		Table:       "readings",
		ValueColumn: "value",
		TimeLayout:  "2006-01-02 15:04:05",
	})
	require.NoError(t, err)

	data := p.Fetch()
	require.Len(t, data, 1, "the unparsable timestamp row is skipped")
	assert.InDelta(t, 5.0, data[0].Value, 1e-9)
}

func TestQueryMissingDatabase(t *testing.T) {
	p, err := provider.NewQuery(provider.QueryConfig{
		DBPath:      filepath.Join(t.TempDir(), "absent.db"),
		Table:       "t",
		ValueColumn: "v",
	})
	require.NoError(t, err)

	assert.Empty(t, p.Fetch())
	assert.NoError(t, p.LastError())
}

func TestQueryIdentifierValidation(t *testing.T) {
	for _, bad := range []string{"t; DROP TABLE x", "a b", "", "1abc"} {
		_, err := provider.NewQuery(provider.QueryConfig{
			DBPath:      "x.db",
			Table:       bad,
			ValueColumn: "v",
		})
		assert.Error(t, err, "identifier %q must be rejected", bad)
	}
}
