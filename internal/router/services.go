package router

import (
	"database/sql"

	mem "caregiver-assistant/internal/adapters/storage/memory"
	pg "caregiver-assistant/internal/adapters/storage/postgres"
	"caregiver-assistant/internal/domain/alerts"
	"caregiver-assistant/internal/domain/doctornotes"
	"caregiver-assistant/internal/domain/medicines"
	"caregiver-assistant/internal/domain/patients"
	"caregiver-assistant/internal/domain/reminders"
)

// Services es el store de registros ya armado. cmd/api lo comparte entre el
// router y el monitor de alertas.
type Services struct {
	Owners      *patients.Owners
	Patients    *patients.Service
	Medicines   *medicines.Service
	Reminders   *reminders.Service
	DoctorNotes *doctornotes.Service
	Alerts      *alerts.Service
}

// NewServices usa Postgres si db != nil; si no, todo in-memory.
// Las alertas viven siempre en memoria. recorder puede ser nil.
func NewServices(db *sql.DB, recorder alerts.Recorder) *Services {
	var (
		patientRepo  patients.Repository
		medicineRepo medicines.Repository
		reminderRepo reminders.Repository
		notesRepo    doctornotes.Repository
	)

	if db != nil {
		patientRepo = pg.NewPatientsRepo(db)
		medicineRepo = pg.NewMedicinesRepo(db)
		reminderRepo = pg.NewRemindersRepo(db)
		notesRepo = pg.NewDoctorNotesRepo(db)
	} else {
		patientRepo = mem.NewPatientRepo()
		medicineRepo = mem.NewMedicineRepo()
		reminderRepo = mem.NewReminderRepo()
		notesRepo = mem.NewDoctorNoteRepo()
	}

	owners := patients.NewOwners(patientRepo)
	medsSvc := medicines.NewService(medicineRepo, owners)
	remsSvc := reminders.NewService(reminderRepo, owners)
	notesSvc := doctornotes.NewService(notesRepo, owners)

	return &Services{
		Owners:      owners,
		Patients:    patients.NewService(patientRepo, medsSvc, remsSvc, notesSvc),
		Medicines:   medsSvc,
		Reminders:   remsSvc,
		DoctorNotes: notesSvc,
		Alerts:      alerts.NewService(mem.NewAlertFeed(), medsSvc, remsSvc, recorder),
	}
}
