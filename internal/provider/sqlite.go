package provider

import (
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/Ckrest/graph-lib/internal/errors"
	"github.com/Ckrest/graph-lib/internal/logger"
	"github.com/Ckrest/graph-lib/internal/series"
	_ "github.com/mattn/go-sqlite3"
)

const defaultQueryWindow = 24 * time.Hour

// Column and table names are interpolated into the query text, so they are
// restricted to plain identifiers at construction. Values (the time cutoff
// and the row limit) are always bound as parameters.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QueryConfig configures a SQLite-backed range query provider.
type QueryConfig struct {
	// DBPath is the database file. A missing file yields empty fetches.
	DBPath string
	// Table to query.
	Table string
	// ValueColumn holds the Y values.
	ValueColumn string
	// TimeColumn holds timestamps. Default "timestamp".
	TimeColumn string
	// Window bounds the fetch to rows newer than now minus Window.
	// Default 24h.
	Window time.Duration
	// Where is an optional extra condition ANDed into the query. It is
	// caller-supplied SQL text and must come from trusted configuration.
	Where string
	// Descending orders newest-first when set.
	Descending bool
	// Limit caps the row count; zero means no limit.
	Limit int
	// TimeLayout, when set, formats the cutoff parameter with the given
	// Go layout for stores that keep textual timestamps. Empty binds
	// unix seconds.
	TimeLayout string
}

// Query fetches a time-windowed range from a SQLite store and converts
// rows to samples. Rows that fail to parse are skipped individually.
// Pull-only: Start and Stop only track the running flag.
type Query struct {
	mu       sync.Mutex
	cfg      QueryConfig
	callback func(batch []series.Sample)
	running  bool
	lastErr  error
}

// NewQuery validates identifiers and builds the provider.
func NewQuery(cfg QueryConfig) (*Query, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.WithMessage(ErrInvalidConfig, "database path is required")
	}
	if cfg.TimeColumn == "" {
		cfg.TimeColumn = "timestamp"
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultQueryWindow
	}

	for _, ident := range []string{cfg.Table, cfg.ValueColumn, cfg.TimeColumn} {
		if !identRe.MatchString(ident) {
			return nil, errFactory.WithData(ErrInvalidIdent, struct {
				Identifier string
			}{Identifier: ident})
		}
	}

	return &Query{cfg: cfg}, nil
}

// Fetch queries the window ending now. Failures are recorded and yield an
// empty result rather than propagating.
func (q *Query) Fetch() []series.Sample {
	if _, err := os.Stat(q.cfg.DBPath); err != nil {
		q.setErr(nil) // absent database is not an error condition
		return nil
	}

	samples, err := q.fetch()
	if err != nil {
		q.setErr(err)
		logger.Warn().Err(err).Str("db", q.cfg.DBPath).Msg("Query fetch failed")
		return nil
	}

	q.setErr(nil)

	return samples
}

func (q *Query) fetch() ([]series.Sample, error) {
	errFactory := errors.New()

	db, err := sql.Open("sqlite3", q.cfg.DBPath+"?mode=ro")
	if err != nil {
		return nil, errFactory.Wrap(ErrQueryFailed, err)
	}
	defer db.Close()

	query, args := q.buildQuery(time.Now().Add(-q.cfg.Window))

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errFactory.Wrap(ErrQueryFailed, err)
	}
	defer rows.Close()

	var samples []series.Sample
	skipped := 0
	for rows.Next() {
		var tsRaw, valRaw any
		if err := rows.Scan(&tsRaw, &valRaw); err != nil {
			skipped++
			continue
		}

		ts, ok := coerceTime(tsRaw)
		if !ok {
			skipped++
			continue
		}

		value, ok := coerceFloat(valRaw)
		if !ok {
			skipped++
			continue
		}

		s := series.NewSample(ts, value)
		if !s.IsFinite() {
			skipped++
			continue
		}

		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrQueryFailed, err)
	}

	if skipped > 0 {
		logger.Debug().Int("rows", skipped).Msg("Skipped unparsable rows")
	}

	return samples, nil
}

func (q *Query) buildQuery(cutoff time.Time) (string, []any) {
	var cutoffArg any
	if q.cfg.TimeLayout != "" {
		cutoffArg = cutoff.Format(q.cfg.TimeLayout)
	} else {
		cutoffArg = cutoff.Unix()
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s > ?",
		q.cfg.TimeColumn, q.cfg.ValueColumn, q.cfg.Table, q.cfg.TimeColumn)
	args := []any{cutoffArg}

	if q.cfg.Where != "" {
		query += " AND (" + q.cfg.Where + ")"
	}

	direction := "ASC"
	if q.cfg.Descending {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", q.cfg.TimeColumn, direction)

	if q.cfg.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.cfg.Limit)
	}

	return query, args
}

func (q *Query) Subscribe(fn func(batch []series.Sample)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.callback = fn
}

func (q *Query) Unsubscribe() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.callback = nil
}

func (q *Query) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.running = true
}

func (q *Query) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.running = false
}

func (q *Query) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.running
}

func (q *Query) LastError() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.lastErr
}

func (q *Query) setErr(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lastErr = err
}

func coerceFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case []byte:
		f, err := strconv.ParseFloat(string(val), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func coerceTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case int64:
		return time.Unix(val, 0), true
	case float64:
		sec := int64(val)
		nsec := int64((val - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec), true
	case time.Time:
		return val, true
	case []byte:
		return parseTimeString(string(val))
	case string:
		return parseTimeString(val)
	default:
		return time.Time{}, false
	}
}

func parseTimeString(s string) (time.Time, bool) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return coerceTime(f)
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
