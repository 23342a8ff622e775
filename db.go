package main

import (
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/models"
	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/store"
)

var db *gorm.DB

// Prefixes written by the retired flat key-value version of the checklist.
// Matching rows are deleted once at startup and never written again.
var legacyPrefixes = []string{"taxform_", "tbs_checklist_", "client_docs_"}

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true).
	shouldMigrate := true
	if v := strings.ToLower(os.Getenv("DB_AUTO_MIGRATE")); v == "false" || v == "0" || v == "no" {
		shouldMigrate = false
	}
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.Account{}); err != nil {
			log.Printf("migration warning (accounts): %v", err)
		}
		if err := db.AutoMigrate(&models.Credential{}); err != nil {
			log.Printf("migration warning (credentials): %v", err)
		}
	}
	cleanupLegacyEntries()

	accounts = store.NewDBStore(db)
	creds = store.NewDBCredentials(db)
}

// cleanupLegacyEntries is one-time migration hygiene: the old app kept flat
// per-field entries in kv_entries. The table is left in place but emptied of
// known prefixes.
func cleanupLegacyEntries() {
	if !db.Migrator().HasTable(&models.KVEntry{}) {
		return
	}
	for _, p := range legacyPrefixes {
		res := db.Where("entry_key LIKE ?", p+"%").Delete(&models.KVEntry{})
		if res.Error != nil {
			log.Printf("WARN legacy cleanup for prefix %q failed: %v", p, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			log.Printf("removed %d legacy entries with prefix %q", res.RowsAffected, p)
		}
	}
}
