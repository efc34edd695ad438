package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"caregiver-assistant/internal/domain/doctornotes"
)

type DoctorNotesRepo struct {
	db *sql.DB
}

func NewDoctorNotesRepo(db *sql.DB) *DoctorNotesRepo {
	return &DoctorNotesRepo{db: db}
}

func (r *DoctorNotesRepo) Create(ctx context.Context, n doctornotes.Note) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doctor_notes (id, caregiver_id, patient_id, note, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, n.ID, n.CaregiverID, n.PatientID, n.Text, n.CreatedAt)
	return err
}

func (r *DoctorNotesRepo) List(ctx context.Context, filter doctornotes.ListFilter) ([]doctornotes.Note, error) {
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
		SELECT id, caregiver_id, patient_id, note, created_at
		FROM doctor_notes
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doctornotes.Note, 0)
	for rows.Next() {
		var n doctornotes.Note
		if err := rows.Scan(&n.ID, &n.CaregiverID, &n.PatientID, &n.Text, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *DoctorNotesRepo) DeleteByPatient(ctx context.Context, patientID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM doctor_notes WHERE patient_id = $1`, patientID)
	return err
}
