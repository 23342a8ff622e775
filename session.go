package main

import (
	"log"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/models"
	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/store"
)

// session holds the in-memory authoritative state for one logged-in email.
// The store is only a durability layer; on save failure the session keeps
// going and stays dirty so the next tick retries.
type session struct {
	record *models.AccountRecord
	meta   *models.SubmissionMetadata
	dirty  bool
}

type sessionManager struct {
	mu     sync.Mutex
	active map[string]*session
}

func newSessionManager() *sessionManager {
	return &sessionManager{active: make(map[string]*session)}
}

func (sm *sessionManager) attach(email string, rec *models.AccountRecord) {
	sm.mu.Lock()
	sm.active[email] = &session{record: rec}
	sm.mu.Unlock()
}

// with runs fn under the manager lock. All record reads and writes go through
// here; handlers never hold a record pointer outside fn.
func (sm *sessionManager) with(email string, fn func(s *session)) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.active[email]
	if !ok {
		return false
	}
	fn(s)
	return true
}

// mutate applies a whole-record mutation and marks the session dirty for the
// next autosave tick.
func (sm *sessionManager) mutate(email string, fn func(rec *models.AccountRecord)) bool {
	return sm.with(email, func(s *session) {
		fn(s.record)
		s.dirty = true
	})
}

// detach removes the session and returns its record for a final save.
func (sm *sessionManager) detach(email string) (*models.AccountRecord, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.active[email]
	if !ok {
		return nil, false
	}
	delete(sm.active, email)
	return s.record, true
}

// ensureMeta creates the submission metadata once per session. It is held in
// memory only; a fresh login after submission gets a new reference.
func (sm *sessionManager) ensureMeta(email string) (models.SubmissionMetadata, bool) {
	var meta models.SubmissionMetadata
	ok := sm.with(email, func(s *session) {
		if s.meta == nil {
			s.meta = &models.SubmissionMetadata{
				SubmittedAt: time.Now().UTC(),
				Reference:   ulid.Make().String(),
			}
		}
		meta = *s.meta
	})
	return meta, ok
}

// save persists one session's record immediately (explicit save / logout).
// Failures are logged and reported as saved=false; in-memory state stays
// authoritative either way.
func (sm *sessionManager) save(email string, st store.Store) bool {
	saved := false
	sm.with(email, func(s *session) {
		s.record.LastSaved = time.Now().UTC()
		if err := st.Save(email, s.record); err != nil {
			log.Printf("WARN save failed for %s: %v", email, err)
			return
		}
		s.dirty = false
		saved = true
	})
	return saved
}

// saveDirty flushes every dirty session. Overlap with an explicit save is
// harmless: both write the whole record, last write wins.
func (sm *sessionManager) saveDirty(st store.Store) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	now := time.Now().UTC()
	for email, s := range sm.active {
		if !s.dirty {
			continue
		}
		s.record.LastSaved = now
		if err := st.Save(email, s.record); err != nil {
			log.Printf("WARN autosave failed for %s: %v", email, err)
			continue
		}
		s.dirty = false
	}
}

// runAutosave ticks until stop closes. Started once in main.
func (sm *sessionManager) runAutosave(interval time.Duration, st store.Store, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sm.saveDirty(st)
		case <-stop:
			return
		}
	}
}
