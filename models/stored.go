package models

import "time"

// Account is the persisted row for one AccountRecord snapshot. The record
// itself is stored as a JSON blob; the email column is the only key.
type Account struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Email     string `gorm:"size:255;not null;uniqueIndex"`
	Record    []byte `gorm:"type:jsonb;not null"`
}

// Credential is the separate simple per-email entry used only for the login
// gate. It deliberately shares nothing with Account.
type Credential struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Email          string `gorm:"size:255;not null;uniqueIndex"`
	HashedPassword []byte `gorm:"not null"`
}

// KVEntry is the legacy flat key-value table from the pre-checklist version.
// Startup deletes entries under known legacy prefixes; nothing writes here.
type KVEntry struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	EntryKey  string `gorm:"column:entry_key;size:255;uniqueIndex"`
	Value     string `gorm:"type:text"`
}
