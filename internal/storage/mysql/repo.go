package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"booking_bot/internal/domain"
)

const maxQueryLen = 255

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// LogMiss records one unresolved location lookup.
func (r *Repo) LogMiss(ctx context.Context, query, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, missKey(query), reason)
	return err
}

func (r *Repo) TopMisses(ctx context.Context, limit int) ([]domain.Miss, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, topMissesSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Miss, 0, limit)
	for rows.Next() {
		var m domain.Miss
		var first, last time.Time
		if err := rows.Scan(&m.Query, &m.Hits, &first, &last); err != nil {
			return nil, err
		}
		m.FirstSeen = first.UTC().Format(time.RFC3339)
		m.LastSeen = last.UTC().Format(time.RFC3339)
		out = append(out, m)
	}
	return out, rows.Err()
}

func missKey(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		q = "(empty)"
	}
	if utf8.RuneCountInString(q) > maxQueryLen {
		q = string([]rune(q)[:maxQueryLen])
	}
	return q
}
