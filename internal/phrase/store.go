package phrase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS phrases (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    category TEXT NOT NULL,
    text TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_phrases_category ON phrases(category, id);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS phrases (
    id BIGSERIAL PRIMARY KEY,
    category TEXT NOT NULL,
    text TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_phrases_category ON phrases(category, id);
`

// SQLStore keeps phrases in a single table. Insertion order is the id order.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// Open connects to the phrase database and migrates it.
func Open(dialect Dialect, dsn string) (*SQLStore, error) {
	var driver string
	switch dialect {
	case SQLite, "":
		dialect, driver = SQLite, "sqlite3"
	case Postgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unknown phrase db driver: %s", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if dialect == SQLite {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, err
		}
	}

	s, err := NewSQLStore(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// NewSQLStore wraps an open connection and creates the schema if missing.
func NewSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: dialect, now: time.Now}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate phrases: %w", err)
	}

	return s, nil
}

func (s *SQLStore) migrate() error {
	schema := sqliteSchema
	if s.dialect == Postgres {
		schema = postgresSchema
	}

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) insert(ctx context.Context, q queryer, c Category, text string) (Phrase, error) {
	p := Phrase{Category: c, Text: text, CreatedAt: s.now().UTC().Truncate(time.Millisecond)}

	err := q.QueryRowContext(ctx,
		s.rebind(`INSERT INTO phrases (category, text, created_at) VALUES (?, ?, ?) RETURNING id`),
		string(c), text, p.CreatedAt.UnixMilli(),
	).Scan(&p.ID)
	if err != nil {
		return Phrase{}, fmt.Errorf("insert phrase: %w", err)
	}

	return p, nil
}

func validate(c Category, text string) (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}

	return text, nil
}

func (s *SQLStore) Insert(ctx context.Context, c Category, text string) (Phrase, error) {
	text, err := validate(c, text)
	if err != nil {
		return Phrase{}, err
	}

	return s.insert(ctx, s.db, c, text)
}

func (s *SQLStore) MostRecent(ctx context.Context, c Category) (*Phrase, error) {
	var p Phrase
	var category string
	var createdAt int64

	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, category, text, created_at FROM phrases WHERE category = ? ORDER BY id DESC LIMIT 1`),
		string(c),
	).Scan(&p.ID, &category, &p.Text, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("most recent phrase: %w", err)
	}

	p.Category = Category(category)
	p.CreatedAt = time.UnixMilli(createdAt).UTC()

	return &p, nil
}

func (s *SQLStore) DeleteByID(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM phrases WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete phrase %d: %w", id, err)
	}
	return nil
}

func (s *SQLStore) ListAll(ctx context.Context, c Category) ([]Phrase, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, category, text, created_at FROM phrases WHERE category = ? ORDER BY id ASC`),
		string(c),
	)
	if err != nil {
		return nil, fmt.Errorf("list phrases: %w", err)
	}
	defer rows.Close()

	var phrases []Phrase
	for rows.Next() {
		var p Phrase
		var category string
		var createdAt int64
		if err := rows.Scan(&p.ID, &category, &p.Text, &createdAt); err != nil {
			return nil, err
		}
		p.Category = Category(category)
		p.CreatedAt = time.UnixMilli(createdAt).UTC()
		phrases = append(phrases, p)
	}

	return phrases, rows.Err()
}

// Replace swaps the whole category for texts in one transaction. Blank
// entries are skipped.
func (s *SQLStore) Replace(ctx context.Context, c Category, texts []string) (int, error) {
	return s.load(ctx, c, texts, true)
}

// Append adds texts to the end of the category in one transaction.
func (s *SQLStore) Append(ctx context.Context, c Category, texts []string) (int, error) {
	return s.load(ctx, c, texts, false)
}

func (s *SQLStore) load(ctx context.Context, c Category, texts []string, clear bool) (int, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if clear {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM phrases WHERE category = ?`), string(c)); err != nil {
			return 0, fmt.Errorf("clear %s: %w", c, err)
		}
	}

	n := 0
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if _, err := s.insert(ctx, tx, c, text); err != nil {
			return 0, err
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return n, nil
}

// Counts returns the number of phrases per category.
func (s *SQLStore) Counts(ctx context.Context) (map[Category]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM phrases GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("count phrases: %w", err)
	}
	defer rows.Close()

	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}

	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[Category(category)] = n
	}

	return counts, rows.Err()
}

// Export reads every category into a Snapshot.
func (s *SQLStore) Export(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{TakenAt: s.now().UTC()}

	for _, c := range Categories {
		phrases, err := s.ListAll(ctx, c)
		if err != nil {
			return Snapshot{}, err
		}

		texts := make([]string, len(phrases))
		for i, p := range phrases {
			texts[i] = p.Text
		}

		if c == Filler {
			snap.Filler = texts
		} else {
			snap.Quotes = texts
		}
	}

	return snap, nil
}
