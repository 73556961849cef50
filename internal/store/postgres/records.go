package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/evanly-gh/remember-me/internal/roster"
	"github.com/evanly-gh/remember-me/internal/store"
	"github.com/google/uuid"
)

// RecordRepository persists photo records in PostgreSQL.
type RecordRepository struct {
	pool *Pool
}

// NewRecordRepository creates a record repository backed by the pool.
func NewRecordRepository(pool *Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// nullable maps empty optional fields to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func fromNull(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}

// Insert stores a new record and returns it with generated ID and timestamp.
func (r *RecordRepository) Insert(ctx context.Context, rec store.NewRecord) (*roster.PhotoRecord, error) {
	id := uuid.New().String()

	out := &roster.PhotoRecord{
		ID:       id,
		OwnerID:  rec.OwnerID,
		Name:     rec.Name,
		PhotoURL: rec.PhotoURL,
		Event:    rec.Event,
		Location: rec.Location,
		Date:     rec.Date,
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO photo_records (id, owner_id, name, photo_url, event, location, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		id, rec.OwnerID, rec.Name, rec.PhotoURL,
		nullable(rec.Event), nullable(rec.Location), nullable(rec.Date),
	).Scan(&out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	return out, nil
}

// ListByOwner returns all records belonging to the owner, newest first.
func (r *RecordRepository) ListByOwner(ctx context.Context, ownerID string) ([]roster.PhotoRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, name, photo_url, event, location, date, created_at
		FROM photo_records
		WHERE owner_id = $1
		ORDER BY created_at DESC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []roster.PhotoRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// Get returns a single record scoped to the owner.
func (r *RecordRepository) Get(ctx context.Context, ownerID, id string) (*roster.PhotoRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, photo_url, event, location, date, created_at
		FROM photo_records
		WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Update modifies the editable fields of an owner's record.
func (r *RecordRepository) Update(ctx context.Context, ownerID, id string, fields store.RecordFields) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE photo_records
		SET name = $1, event = $2, location = $3, date = $4
		WHERE owner_id = $5 AND id = $6`,
		fields.Name, nullable(fields.Event), nullable(fields.Location), nullable(fields.Date),
		ownerID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}

// Delete removes an owner's record.
func (r *RecordRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM photo_records
		WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*roster.PhotoRecord, error) {
	var rec roster.PhotoRecord
	var event, location, date sql.NullString

	err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.Name, &rec.PhotoURL,
		&event, &location, &date, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	rec.Event = fromNull(event)
	rec.Location = fromNull(location)
	rec.Date = fromNull(date)
	return &rec, nil
}
