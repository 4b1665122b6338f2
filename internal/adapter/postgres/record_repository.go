package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/domain"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// recordColumns must match the Scan order in scanRecord.
const recordColumns = `id, plain_token, cipher_text, encryption_key, iv, created_at,
	first_name, last_name, national_id, birth_date, photo_url, role, department, volunteer_area`

// RecordRepo implements domain.RecordRepository backed by PostgreSQL.
// Uniqueness of id and cipher_text is enforced by the schema, not pre-checked:
// the negligible-probability collision surfaces as domain.ErrDuplicateRecord.
type RecordRepo struct {
	pool *pgxpool.Pool
}

func NewRecordRepo(pool *pgxpool.Pool) *RecordRepo {
	return &RecordRepo{pool: pool}
}

func (r *RecordRepo) Save(ctx context.Context, record *domain.Record) error {
	var (
		firstName, lastName, nationalID     *string
		photoURL, role, dept, volunteerArea *string
		birthDate                           *time.Time
	)
	if p := record.Profile; p != nil {
		firstName, lastName, nationalID = &p.FirstName, &p.LastName, &p.NationalID
		photoURL, role, dept, volunteerArea = &p.PhotoURL, &p.Role, &p.Department, &p.VolunteerArea
		birthDate = &p.BirthDate
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO qr_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, record.ID, record.PlainToken, record.CipherText, record.EncryptionKey, record.IV, record.CreatedAt,
		firstName, lastName, nationalID, birthDate, photoURL, role, dept, volunteerArea)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("record %s: %w", record.ID, domain.ErrDuplicateRecord)
		}
		return fmt.Errorf("failed to save record: %w", err)
	}

	return nil
}

func (r *RecordRepo) FindByID(ctx context.Context, id string) (*domain.Record, error) {
	return r.scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM qr_records WHERE id = $1`, id))
}

func (r *RecordRepo) FindByCipherText(ctx context.Context, cipherText string) (*domain.Record, error) {
	return r.scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM qr_records WHERE cipher_text = $1`, cipherText))
}

func (r *RecordRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM qr_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func (r *RecordRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM qr_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

func (r *RecordRepo) scanRecord(row pgx.Row) (*domain.Record, error) {
	var (
		record                              domain.Record
		firstName, lastName, nationalID     *string
		photoURL, role, dept, volunteerArea *string
		birthDate                           *time.Time
	)

	err := row.Scan(
		&record.ID, &record.PlainToken, &record.CipherText, &record.EncryptionKey, &record.IV, &record.CreatedAt,
		&firstName, &lastName, &nationalID, &birthDate, &photoURL, &role, &dept, &volunteerArea,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	if firstName != nil {
		record.Profile = &domain.Profile{
			FirstName:     *firstName,
			LastName:      deref(lastName),
			NationalID:    deref(nationalID),
			PhotoURL:      deref(photoURL),
			Role:          deref(role),
			Department:    deref(dept),
			VolunteerArea: deref(volunteerArea),
		}
		if birthDate != nil {
			record.Profile.BirthDate = *birthDate
		}
	}

	return &record, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
