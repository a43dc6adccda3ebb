package user

import "time"

// User is owned by the identity subsystem; the payment core only reads
// usernames for reporting joins. PasswordHash exists so the seeder can
// provision demo accounts the rest of the platform can log into.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;column:id"`
	Username     string    `json:"username" gorm:"column:username;not null;uniqueIndex"`
	Email        string    `json:"email" gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	Role         string    `json:"role" gorm:"column:role;default:PATIENT"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

const (
	RolePatient = "PATIENT"
	RoleDoctor  = "DOCTOR"
)
