package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/models"
	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/store"
)

// create_account provisions a client login from the command line so the
// preparer can hand out credentials before the intake meeting.
func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <email> <password>\n", os.Args[0])
		os.Exit(2)
	}
	email, password := os.Args[1], os.Args[2]
	if len(password) < 6 {
		log.Fatal("password too short (min 6)")
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	if err := db.AutoMigrate(&models.Account{}, &models.Credential{}); err != nil {
		log.Printf("migration warning: %v", err)
	}

	creds := store.NewDBCredentials(db)
	if _, found, err := creds.PasswordHash(email); err != nil {
		log.Fatal("credential lookup failed:", err)
	} else if found {
		log.Fatalf("account %s already exists", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("hash failed:", err)
	}
	if err := creds.SetPassword(email, hash); err != nil {
		log.Fatal("credential save failed:", err)
	}

	accounts := store.NewDBStore(db)
	if _, found, err := accounts.Load(email); err == nil && !found {
		if err := accounts.Save(email, models.NewAccountRecord(email)); err != nil {
			log.Printf("WARN initial snapshot save failed: %v", err)
		}
	}
	fmt.Printf("account %s created\n", email)
}
