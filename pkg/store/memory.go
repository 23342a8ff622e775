package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/models"
)

// MemoryStore keeps serialized snapshots in a map. Records go through JSON on
// the way in and out so tests exercise the same round-trip as the DB path.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (s *MemoryStore) Load(email string) (*models.AccountRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, ok := s.records[email]
	if !ok {
		return nil, false, nil
	}
	var rec models.AccountRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, false, fmt.Errorf("decode account %s: %w", email, err)
	}
	return &rec, true, nil
}

func (s *MemoryStore) Save(email string, rec *models.AccountRecord) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode account %s: %w", email, err)
	}
	s.mu.Lock()
	s.records[email] = blob
	s.mu.Unlock()
	return nil
}

// MemoryCredentials is the in-memory counterpart of DBCredentials.
type MemoryCredentials struct {
	mu     sync.Mutex
	hashes map[string][]byte
}

func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{hashes: make(map[string][]byte)}
}

func (c *MemoryCredentials) SetPassword(email string, hash []byte) error {
	c.mu.Lock()
	c.hashes[email] = append([]byte(nil), hash...)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCredentials) PasswordHash(email string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.hashes[email]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), h...), true, nil
}
