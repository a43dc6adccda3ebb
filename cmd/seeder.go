package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	appointmentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/appointment"
	usermodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"payment_logs", "payments", "appointments", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		users := []usermodel.User{
			{
				ID:           uuid.New().String(),
				Username:     "anita_rao",
				Email:        "anita@mail.com",
				PasswordHash: string(hash),
				Role:         usermodel.RolePatient,
			},
			{
				ID:           uuid.New().String(),
				Username:     "dr_mehta",
				Email:        "mehta@mail.com",
				PasswordHash: string(hash),
				Role:         usermodel.RoleDoctor,
			},
		}

		byUsername := make(map[string]string)
		for _, u := range users {
			var existingID string
			row := db.Raw("SELECT id FROM users WHERE username = ?", u.Username).Row()
			if err := row.Scan(&existingID); err == nil {
				fmt.Printf("user %s already exists\n", u.Username)
				byUsername[u.Username] = existingID
				continue
			}

			if err := db.Create(&u).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Username, err)
			}
			byUsername[u.Username] = u.ID
			fmt.Printf("Seeded user: %s (%s)\n", u.Username, u.Role)
		}

		appointments := []appointmentmodel.Appointment{
			{
				ID:          uuid.New().String(),
				PatientID:   byUsername["anita_rao"],
				DoctorID:    byUsername["dr_mehta"],
				ScheduledAt: time.Now().Add(48 * time.Hour),
				Reason:      "General consultation",
				Status:      appointmentmodel.StatusPending,
			},
			{
				ID:          uuid.New().String(),
				PatientID:   byUsername["anita_rao"],
				DoctorID:    byUsername["dr_mehta"],
				ScheduledAt: time.Now().Add(96 * time.Hour),
				Reason:      "Follow-up consultation",
				Status:      appointmentmodel.StatusPending,
			},
		}

		for _, a := range appointments {
			var exists int
			row := db.Raw(
				"SELECT 1 FROM appointments WHERE patient_id = ? AND doctor_id = ? AND reason = ?",
				a.PatientID, a.DoctorID, a.Reason,
			).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("appointment %q already exists\n", a.Reason)
				continue
			}

			if err := db.Create(&a).Error; err != nil {
				log.Fatalf("failed to insert appointment %q: %v", a.Reason, err)
			}
			fmt.Printf("Seeded appointment: %s (%s)\n", a.Reason, a.ID)
		}

		fmt.Println("Seed data loaded successfully")
	},
}
