package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"caregiver-assistant/internal/domain/medicines"
)

type MedicinesRepo struct {
	db *sql.DB
}

func NewMedicinesRepo(db *sql.DB) *MedicinesRepo {
	return &MedicinesRepo{db: db}
}

const medicineColumns = `id, caregiver_id, patient_id, name, dosage, schedule, stock, created_at, updated_at`

func (r *MedicinesRepo) Create(ctx context.Context, m medicines.Medicine) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medicines (`+medicineColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		m.ID,
		m.CaregiverID,
		m.PatientID,
		m.Name,
		m.Dosage,
		m.Schedule,
		m.Stock,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicinesRepo) Update(ctx context.Context, m medicines.Medicine) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medicines
		SET
			name = $2,
			dosage = $3,
			schedule = $4,
			stock = $5,
			updated_at = $6
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		m.Dosage,
		m.Schedule,
		m.Stock,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medicines.ErrNotFound
	}
	return nil
}

func (r *MedicinesRepo) GetByID(ctx context.Context, id string) (medicines.Medicine, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medicines.Medicine{}, medicines.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = $1`, id)
	m, err := scanMedicine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return medicines.Medicine{}, medicines.ErrNotFound
	}
	return m, err
}

func (r *MedicinesRepo) List(ctx context.Context, filter medicines.ListFilter) ([]medicines.Medicine, error) {
	where := []string{"1=1"}
	args := []any{}

	if filter.CaregiverID != "" {
		args = append(args, filter.CaregiverID)
		where = append(where, fmt.Sprintf("caregiver_id = $%d", len(args)))
	}
	if filter.PatientID != "" {
		args = append(args, filter.PatientID)
		where = append(where, fmt.Sprintf("patient_id = $%d", len(args)))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+medicineColumns+`
		FROM medicines
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medicines.Medicine, 0)
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MedicinesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medicines.ErrNotFound
	}
	return nil
}

// DeleteByPatient es redundante con el CASCADE pero mantiene el contrato.
func (r *MedicinesRepo) DeleteByPatient(ctx context.Context, patientID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM medicines WHERE patient_id = $1`, patientID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedicine(s rowScanner) (medicines.Medicine, error) {
	var m medicines.Medicine
	err := s.Scan(
		&m.ID,
		&m.CaregiverID,
		&m.PatientID,
		&m.Name,
		&m.Dosage,
		&m.Schedule,
		&m.Stock,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}
