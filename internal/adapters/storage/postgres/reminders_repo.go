package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"caregiver-assistant/internal/domain/reminders"
)

type RemindersRepo struct {
	db *sql.DB
}

func NewRemindersRepo(db *sql.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

const reminderColumns = `id, caregiver_id, patient_id, task, time, completed, created_at, updated_at`

func (r *RemindersRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		rem.ID,
		rem.CaregiverID,
		rem.PatientID,
		rem.Task,
		rem.Time,
		rem.Completed,
		rem.CreatedAt,
		rem.UpdatedAt,
	)
	return err
}

func (r *RemindersRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reminders
		SET
			task = $2,
			time = $3,
			completed = $4,
			updated_at = $5
		WHERE id = $1
	`,
		rem.ID,
		rem.Task,
		rem.Time,
		rem.Completed,
		rem.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return reminders.ErrNotFound
	}
	return nil
}

func (r *RemindersRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reminders.Reminder{}, reminders.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = $1`, id)
	rem, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return reminders.Reminder{}, reminders.ErrNotFound
	}
	return rem, err
}

func (r *RemindersRepo) List(ctx context.Context, filter reminders.ListFilter) ([]reminders.Reminder, error) {
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
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reminders.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func (r *RemindersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return reminders.ErrNotFound
	}
	return nil
}

func (r *RemindersRepo) DeleteByPatient(ctx context.Context, patientID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE patient_id = $1`, patientID)
	return err
}

func scanReminder(s rowScanner) (reminders.Reminder, error) {
	var rem reminders.Reminder
	err := s.Scan(
		&rem.ID,
		&rem.CaregiverID,
		&rem.PatientID,
		&rem.Task,
		&rem.Time,
		&rem.Completed,
		&rem.CreatedAt,
		&rem.UpdatedAt,
	)
	return rem, err
}
