package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"windhager_gateway/internal/models"
)

type CommandSQLite struct {
	db *sql.DB
}

func NewCommandSQLite(db *sql.DB) *CommandSQLite { return &CommandSQLite{db: db} }

var _ CommandRepo = (*CommandSQLite)(nil)

const sqliteTimeLayout = "2006-01-02 15:04:05"

// Append inserts a command event. Empty EventID/IssuedAt are filled in.
func (r *CommandSQLite) Append(ctx context.Context, e models.CommandEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.IssuedAt.IsZero() {
		e.IssuedAt = time.Now().UTC()
	} else {
		e.IssuedAt = e.IssuedAt.UTC()
	}

	var errPtr *string
	if e.Error != "" {
		errPtr = &e.Error
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO command_log (id, issued_at, oid, value, result, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.EventID,
		e.IssuedAt.Format(sqliteTimeLayout),
		e.OID,
		e.Value,
		strings.ToUpper(strings.TrimSpace(e.Result)),
		errPtr,
	)
	return err
}

// List returns command events filtered by [from, to] (inclusive) and/or
// result, ordered ascending by issue time.
func (r *CommandSQLite) List(ctx context.Context, from, to time.Time, result string) ([]models.CommandEvent, error) {
	var (
		conds []string
		args  []any
	)

	// issued_at is stored as TEXT in the layout Append writes; the bounds
	// must use the same layout so the comparison stays lexical-correct.
	if !from.IsZero() {
		conds = append(conds, "issued_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimeLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "issued_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimeLayout))
	}
	if result = strings.ToUpper(strings.TrimSpace(result)); result != "" {
		conds = append(conds, "result = ?")
		args = append(args, result)
	}

	q := `SELECT id, issued_at, oid, value, result, error FROM command_log`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY issued_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CommandEvent, 0, 32)
	for rows.Next() {
		var ev models.CommandEvent
		var errStr sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.IssuedAt, &ev.OID, &ev.Value, &ev.Result, &errStr); err != nil {
			return nil, err
		}
		ev.IssuedAt = ev.IssuedAt.UTC()
		if errStr.Valid {
			ev.Error = errStr.String
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
