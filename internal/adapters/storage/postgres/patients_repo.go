package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"caregiver-assistant/internal/domain/patients"
)

const pgUniqueViolation = "23505"

type PatientsRepo struct {
	db *sql.DB
}

func NewPatientsRepo(db *sql.DB) *PatientsRepo {
	return &PatientsRepo{db: db}
}

func (r *PatientsRepo) Create(ctx context.Context, p patients.Patient) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO patients (
			id, caregiver_id,
			name, age, condition,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		p.ID,
		p.CaregiverID,
		p.Name,
		p.Age,
		p.Condition,
		p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return patients.ErrConflict
	}
	return err
}

func (r *PatientsRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return patients.Patient{}, patients.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, caregiver_id, name, age, condition, created_at
		FROM patients
		WHERE id = $1
	`, id)

	var p patients.Patient
	if err := row.Scan(&p.ID, &p.CaregiverID, &p.Name, &p.Age, &p.Condition, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return patients.Patient{}, patients.ErrNotFound
		}
		return patients.Patient{}, err
	}
	return p, nil
}

func (r *PatientsRepo) ListByCaregiver(ctx context.Context, caregiverID string) ([]patients.Patient, error) {
	caregiverID = strings.TrimSpace(caregiverID)
	if caregiverID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, caregiver_id, name, age, condition, created_at
		FROM patients
		WHERE caregiver_id = $1
		ORDER BY created_at ASC
	`, caregiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]patients.Patient, 0)
	for rows.Next() {
		var p patients.Patient
		if err := rows.Scan(&p.ID, &p.CaregiverID, &p.Name, &p.Age, &p.Condition, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete: medicines/reminders/doctor_notes caen por ON DELETE CASCADE.
func (r *PatientsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return patients.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
