package main

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/models"
)

// RegisterAccount stores a bcrypt credential and creates the blank account
// snapshot. The snapshot save is best-effort: a store hiccup here just means
// the record is created on first autosave instead.
func RegisterAccount(email, password string) error {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("valid email required")
	}
	if len(password) < 6 { // basic password policy
		return fmt.Errorf("password too short (min 6)")
	}
	if _, found, err := creds.PasswordHash(email); err != nil {
		return err
	} else if found {
		return fmt.Errorf("account already exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := creds.SetPassword(email, hash); err != nil {
		return err
	}
	if _, found, err := accounts.Load(email); err == nil && !found {
		if err := accounts.Save(email, models.NewAccountRecord(email)); err != nil {
			log.Printf("WARN initial snapshot save failed for %s: %v", email, err)
		}
	}
	return nil
}

// Authenticate checks the login gate. It never says which part failed.
func Authenticate(email, password string) error {
	email = normalizeEmail(email)
	hash, found, err := creds.PasswordHash(email)
	if err != nil || !found {
		return fmt.Errorf("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return fmt.Errorf("invalid credentials")
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
