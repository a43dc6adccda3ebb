package appointment

import "time"

// Appointment is owned by the scheduling subsystem. The payment core reads
// id/status/scheduled_at/reason and writes exactly one thing: status to
// ACCEPTED when the associated payment completes.
type Appointment struct {
	ID          string    `json:"id" gorm:"primaryKey;column:id"`
	PatientID   string    `json:"patient_id" gorm:"column:patient_id;not null"`
	DoctorID    string    `json:"doctor_id" gorm:"column:doctor_id;not null"`
	ScheduledAt time.Time `json:"scheduled_at" gorm:"column:scheduled_at"`
	Reason      string    `json:"reason" gorm:"column:reason"`
	Status      string    `json:"status" gorm:"column:status;default:PENDING"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Appointment) TableName() string {
	return "appointments"
}

const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusDeclined = "DECLINED"
)
