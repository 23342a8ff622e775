// Package store persists account snapshots and login credentials behind
// small key-value interfaces so the intake logic can target postgres in
// production and an in-memory map in tests.
package store

import "github.com/jp48185-jpg/TBS-tax-2026-checklist/models"

// Store holds at most one AccountRecord per email. Save is a whole-record
// overwrite and is idempotent; replaying the same record changes nothing.
type Store interface {
	// Load returns the record for email, or found=false when none exists.
	Load(email string) (*models.AccountRecord, bool, error)
	// Save durably overwrites the single record for email.
	Save(email string, rec *models.AccountRecord) error
}

// CredentialStore is the separate simple per-email entry used only by the
// login gate. Values are bcrypt hashes, never raw passwords.
type CredentialStore interface {
	SetPassword(email string, hash []byte) error
	PasswordHash(email string) ([]byte, bool, error)
}
