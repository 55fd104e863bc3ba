package models

// Severity classifies the urgency of a tracked item.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityOverdue Severity = "overdue"
	SeverityUnknown Severity = "unknown"
)

// StatusKind tells whether Remaining counts days or kilometres.
type StatusKind string

const (
	KindDate     StatusKind = "date"
	KindDistance StatusKind = "distance"
)

// ComputedStatus is derived on every read and never persisted.
// Remaining is nil when the inputs are incomplete; negative means overdue.
type ComputedStatus struct {
	Kind          StatusKind `json:"kind"`
	Remaining     *int       `json:"remaining"`
	ProgressRatio float64    `json:"progressRatio"`
	Severity      Severity   `json:"severity"`
}

// Target is anything the status engine can evaluate.
type Target interface {
	StatusKind() StatusKind
}

// DistanceTarget is a service due by odometer reading.
type DistanceTarget struct {
	LastKm     string
	IntervalKm string
}

func (DistanceTarget) StatusKind() StatusKind { return KindDistance }

// DateTarget is a service due on a calendar date.
type DateTarget struct {
	Due string
}

func (DateTarget) StatusKind() StatusKind { return KindDate }
