package alerts

import "time"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityInfo     Severity = "info"
)

type SourceKind string

const (
	SourceMedicine SourceKind = "medicine"
	SourceReminder SourceKind = "reminder"
)

const (
	TitleUpcomingDose = "Upcoming Dose"
	TitleCritical     = "Critical Alert"
	TitleReminder     = "Reminder"
)

// Alert vive solo en memoria del proceso; se lista del más nuevo al más viejo.
// SourceID/SourceKind son opcionales (vacíos = alerta sin acciones).
type Alert struct {
	ID          string
	CaregiverID string

	SourceID   string
	SourceKind SourceKind

	Title    string
	Message  string
	Severity Severity

	CreatedAt time.Time
}
