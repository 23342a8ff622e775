package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/models"
	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/store"
)

func TestSessionMutateMarksDirtyAndSaveClears(t *testing.T) {
	sm := newSessionManager()
	st := store.NewMemoryStore()
	sm.attach("a@example.com", models.NewAccountRecord("a@example.com"))

	sm.mutate("a@example.com", func(rec *models.AccountRecord) {
		rec.Taxpayer.Name = "Alice"
	})
	sm.with("a@example.com", func(s *session) {
		assert.True(t, s.dirty)
	})

	require.True(t, sm.save("a@example.com", st))
	sm.with("a@example.com", func(s *session) {
		assert.False(t, s.dirty)
	})

	rec, found, err := st.Load("a@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Alice", rec.Taxpayer.Name)
	assert.False(t, rec.LastSaved.IsZero())
}

func TestSaveDirtySkipsCleanSessions(t *testing.T) {
	sm := newSessionManager()
	st := store.NewMemoryStore()
	sm.attach("clean@example.com", models.NewAccountRecord("clean@example.com"))
	sm.attach("dirty@example.com", models.NewAccountRecord("dirty@example.com"))
	sm.mutate("dirty@example.com", func(rec *models.AccountRecord) {
		rec.FilingJointly = true
	})

	sm.saveDirty(st)

	_, found, err := st.Load("clean@example.com")
	require.NoError(t, err)
	assert.False(t, found, "clean session should not have been written")
	rec, found, err := st.Load("dirty@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rec.FilingJointly)
}

func TestAutosaveLoopFlushes(t *testing.T) {
	sm := newSessionManager()
	st := store.NewMemoryStore()
	sm.attach("auto@example.com", models.NewAccountRecord("auto@example.com"))
	sm.mutate("auto@example.com", func(rec *models.AccountRecord) {
		rec.Signature = "Auto Save"
	})

	stop := make(chan struct{})
	go sm.runAutosave(5*time.Millisecond, st, stop)
	defer close(stop)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rec, found, _ := st.Load("auto@example.com"); found && rec.Signature == "Auto Save" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("autosave never flushed the dirty session")
}

func TestEnsureMetaStablePerSession(t *testing.T) {
	sm := newSessionManager()
	sm.attach("m@example.com", models.NewAccountRecord("m@example.com"))

	first, ok := sm.ensureMeta("m@example.com")
	require.True(t, ok)
	assert.NotEmpty(t, first.Reference)
	assert.False(t, first.SubmittedAt.IsZero())

	second, ok := sm.ensureMeta("m@example.com")
	require.True(t, ok)
	assert.Equal(t, first.Reference, second.Reference)
	assert.Equal(t, first.SubmittedAt, second.SubmittedAt)

	// a fresh session gets a fresh reference
	sm.detach("m@example.com")
	sm.attach("m@example.com", models.NewAccountRecord("m@example.com"))
	third, ok := sm.ensureMeta("m@example.com")
	require.True(t, ok)
	assert.NotEqual(t, first.Reference, third.Reference)
}

func TestDetachReturnsRecord(t *testing.T) {
	sm := newSessionManager()
	sm.attach("d@example.com", models.NewAccountRecord("d@example.com"))
	rec, ok := sm.detach("d@example.com")
	require.True(t, ok)
	assert.Equal(t, "d@example.com", rec.Email)
	_, ok = sm.detach("d@example.com")
	assert.False(t, ok)
}
