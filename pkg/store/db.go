package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/models"
)

// DBStore keeps account snapshots in the accounts table, one JSON blob per
// email. Last write wins; there is no versioning.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Load(email string) (*models.AccountRecord, bool, error) {
	var row models.Account
	if err := s.db.Where("email = ?", email).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load account %s: %w", email, err)
	}
	var rec models.AccountRecord
	if err := json.Unmarshal(row.Record, &rec); err != nil {
		return nil, false, fmt.Errorf("decode account %s: %w", email, err)
	}
	return &rec, true, nil
}

func (s *DBStore) Save(email string, rec *models.AccountRecord) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode account %s: %w", email, err)
	}
	var row models.Account
	if err := s.db.Where("email = ?", email).First(&row).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("save account %s: %w", email, err)
		}
		row = models.Account{Email: email, Record: blob}
		if err := s.db.Create(&row).Error; err != nil {
			if isUniqueConstraintError(err) { // race after initial check
				return s.overwrite(email, blob)
			}
			return fmt.Errorf("save account %s: %w", email, err)
		}
		return nil
	}
	row.Record = blob
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("save account %s: %w", email, err)
	}
	return nil
}

func (s *DBStore) overwrite(email string, blob []byte) error {
	return s.db.Model(&models.Account{}).Where("email = ?", email).Update("record", blob).Error
}

// DBCredentials stores bcrypt password hashes keyed by email.
type DBCredentials struct {
	db *gorm.DB
}

func NewDBCredentials(db *gorm.DB) *DBCredentials {
	return &DBCredentials{db: db}
}

func (c *DBCredentials) SetPassword(email string, hash []byte) error {
	var row models.Credential
	if err := c.db.Where("email = ?", email).First(&row).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		row = models.Credential{Email: email, HashedPassword: hash}
		return c.db.Create(&row).Error
	}
	row.HashedPassword = hash
	return c.db.Save(&row).Error
}

func (c *DBCredentials) PasswordHash(email string) ([]byte, bool, error) {
	var row models.Credential
	if err := c.db.Where("email = ?", email).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return row.HashedPassword, true, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
