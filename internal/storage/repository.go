package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"giftledger/internal/core"
	"giftledger/internal/ledger"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Repository is the SQL ledger store shared by the SQLite and Postgres backends.
type Repository struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

var _ ledger.Store = (*Repository)(nil)

func sqliteDSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
}

func NewSQLiteRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; a batch transaction must not race another
	// connection's lock upgrade.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newRepository(db, dialectSQLite), nil
}

func NewPostgresRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxIdleConns(20)
	db.SetMaxOpenConns(30)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(15 * time.Minute)

	if err := RunPostgresMigrations(dsn); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newRepository(db, dialectPostgres), nil
}

func newRepository(db *sql.DB, d dialect) *Repository {
	return &Repository{
		db:      db,
		dialect: d,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) q(query string) string {
	return r.dialect.rebind(query)
}

func (r *Repository) CreateOwner(ctx context.Context, name string) (core.Owner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Owner{}, &core.ValidationError{Field: "name", Message: "이름은 필수입니다"}
	}
	o := core.Owner{Name: name, CreatedAt: r.now()}
	err := r.db.QueryRowContext(ctx,
		r.q(`INSERT INTO owners (name, created_at) VALUES (?, ?) RETURNING id`),
		o.Name, formatTime(o.CreatedAt),
	).Scan(&o.ID)
	if err != nil {
		return core.Owner{}, core.NewStorageError("create owner", err)
	}

	slog.InfoContext(ctx, "Owner created", "owner_id", o.ID, "backend", r.dialect.String())
	return o, nil
}

func (r *Repository) OwnerExists(ctx context.Context, ownerID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, r.q(`SELECT 1 FROM owners WHERE id = ?`), ownerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, core.NewStorageError("check owner", err)
	}
	return true, nil
}

const insertEntrySQL = `INSERT INTO entries (
	owner_id, event_date, event_type, transaction_type, counterparty_name,
	relation, amount, contact, memo, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (r *Repository) CreateEntry(ctx context.Context, e *core.Entry) error {
	return r.CreateEntries(ctx, e.OwnerID, []*core.Entry{e})
}

// CreateEntries inserts the batch in one transaction; a failure on any row
// rolls back every row.
func (r *Repository) CreateEntries(ctx context.Context, ownerID int64, es []*core.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.NewStorageError("begin batch", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, r.q(`SELECT 1 FROM owners WHERE id = ?`+r.dialect.ownerLock()), ownerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrOwnerNotFound
	}
	if err != nil {
		return core.NewStorageError("check owner", err)
	}

	stmt, err := tx.PrepareContext(ctx, r.q(insertEntrySQL))
	if err != nil {
		return core.NewStorageError("prepare insert", err)
	}
	defer stmt.Close()

	now := r.now()
	ids := make([]int64, len(es))
	for i, e := range es {
		err := stmt.QueryRowContext(ctx,
			ownerID,
			e.EventDate.String(),
			e.EventType,
			string(e.TransactionType),
			e.CounterpartyName,
			nullable(e.Relation),
			e.Amount,
			nullable(e.Contact),
			nullable(e.Memo),
			formatTime(now),
			formatTime(now),
		).Scan(&ids[i])
		if err != nil {
			return core.NewStorageError(fmt.Sprintf("insert entry %d of %d", i+1, len(es)), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.NewStorageError("commit batch", err)
	}

	// Only publish ids to callers once the batch is durable.
	for i, e := range es {
		e.ID = ids[i]
		e.OwnerID = ownerID
		e.CreatedAt = now
		e.UpdatedAt = now
	}
	return nil
}

func (r *Repository) GetEntry(ctx context.Context, ownerID, id int64) (core.Entry, error) {
	row := r.db.QueryRowContext(ctx,
		r.q(`SELECT `+entryColumns+` FROM entries WHERE id = ? AND owner_id = ?`), id, ownerID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, core.ErrNotFound
	}
	if err != nil {
		return core.Entry{}, core.NewStorageError("get entry", err)
	}
	return e, nil
}

func (r *Repository) UpdateEntry(ctx context.Context, e *core.Entry) error {
	now := r.now()
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, r.q(`UPDATE entries SET
	event_date = ?, event_type = ?, transaction_type = ?, counterparty_name = ?,
	relation = ?, amount = ?, contact = ?, memo = ?, updated_at = ?
WHERE id = ? AND owner_id = ?
RETURNING created_at`),
		e.EventDate.String(),
		e.EventType,
		string(e.TransactionType),
		e.CounterpartyName,
		nullable(e.Relation),
		e.Amount,
		nullable(e.Contact),
		nullable(e.Memo),
		formatTime(now),
		e.ID,
		e.OwnerID,
	).Scan(timeValue{&createdAt})
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	if err != nil {
		return core.NewStorageError("update entry", err)
	}
	e.CreatedAt = createdAt
	e.UpdatedAt = now
	return nil
}

func (r *Repository) DeleteEntry(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM entries WHERE id = ? AND owner_id = ?`), id, ownerID)
	if err != nil {
		return core.NewStorageError("delete entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.NewStorageError("delete entry", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// buildListFilter composes the WHERE clause for a listing. Each optional
// filter adds one predicate.
func buildListFilter(d dialect, ownerID int64, q core.ListQuery) (string, []any) {
	clauses := []string{"owner_id = ?"}
	args := []any{ownerID}
	if q.Type != "" {
		clauses = append(clauses, "transaction_type = ?")
		args = append(args, string(q.Type))
	}
	if q.Search != "" {
		clauses = append(clauses, d.contains("counterparty_name"))
		args = append(args, q.Search)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *Repository) ListEntries(ctx context.Context, ownerID int64, q core.ListQuery) (core.Page, error) {
	where, args := buildListFilter(r.dialect, ownerID, q)

	tx, err := r.db.BeginTx(ctx, r.dialect.snapshotTx())
	if err != nil {
		return core.Page{}, core.NewStorageError("begin list", err)
	}
	defer tx.Rollback()

	var total int64
	if err := tx.QueryRowContext(ctx, r.q(`SELECT COUNT(*) FROM entries`+where), args...).Scan(&total); err != nil {
		return core.Page{}, core.NewStorageError("count entries", err)
	}

	items := make([]core.Entry, 0, q.Size)
	if int64(q.Offset()) < total {
		pageArgs := append(append([]any{}, args...), q.Size, q.Offset())
		rows, err := tx.QueryContext(ctx,
			r.q(`SELECT `+entryColumns+` FROM entries`+where+` ORDER BY event_date DESC, id DESC LIMIT ? OFFSET ?`),
			pageArgs...)
		if err != nil {
			return core.Page{}, core.NewStorageError("list entries", err)
		}
		items, err = collectEntries(rows, items)
		if err != nil {
			return core.Page{}, core.NewStorageError("list entries", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Page{}, core.NewStorageError("commit list", err)
	}
	return core.NewPage(items, q, total), nil
}

func (r *Repository) SnapshotEntries(ctx context.Context, ownerID int64) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		r.q(`SELECT `+entryColumns+` FROM entries WHERE owner_id = ? ORDER BY event_date DESC, id DESC`), ownerID)
	if err != nil {
		return nil, core.NewStorageError("snapshot entries", err)
	}
	out, err := collectEntries(rows, make([]core.Entry, 0))
	if err != nil {
		return nil, core.NewStorageError("snapshot entries", err)
	}
	return out, nil
}

func collectEntries(rows *sql.Rows, out []core.Entry) ([]core.Entry, error) {
	defer rows.Close()
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
