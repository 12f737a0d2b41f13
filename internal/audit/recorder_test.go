package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-gatekeeper/internal/repository"
)

type fakeAuditRepo struct {
	mu       sync.Mutex
	entries  []repository.AuditEntry
	failWith error
	block    chan struct{}
}

func (f *fakeAuditRepo) Insert(ctx context.Context, entry *repository.AuditEntry) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) all() []repository.AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]repository.AuditEntry(nil), f.entries...)
}

func TestRecorderPersistsEntries(t *testing.T) {
	repo := &fakeAuditRepo{}
	rec := NewRecorder(repo, zap.NewNop(), 8)
	rec.Start()

	rec.Record("gatekeeper", "maintenance_bypass_granted", "user-1", map[string]any{"path": "/en/admin"})
	rec.Record("billing-webhook", "subscription_upserted", "biz-1", nil)
	rec.Close()

	entries := repo.all()
	require.Len(t, entries, 2)
	assert.Equal(t, "maintenance_bypass_granted", entries[0].Action)
	assert.Equal(t, "user-1", entries[0].Subject)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
	assert.Equal(t, "billing-webhook", entries[1].Actor)
}

func TestRecorderSurfacesWriteErrors(t *testing.T) {
	repo := &fakeAuditRepo{failWith: errors.New("relation does not exist")}
	rec := NewRecorder(repo, zap.NewNop(), 8)
	rec.Start()

	rec.Record("gatekeeper", "maintenance_bypass_granted", "user-1", nil)
	rec.Close()

	select {
	case err := <-rec.Errors():
		assert.ErrorContains(t, err, "relation does not exist")
	case <-time.After(time.Second):
		t.Fatal("expected a write error on the error channel")
	}
}

func TestRecorderDropsWhenQueueFull(t *testing.T) {
	repo := &fakeAuditRepo{block: make(chan struct{})}
	rec := NewRecorder(repo, zap.NewNop(), 1)
	rec.Start()

	// first entry occupies the worker, second fills the queue, the rest drop
	for i := 0; i < 5; i++ {
		rec.Record("gatekeeper", "maintenance_bypass_granted", "user-1", nil)
	}
	assert.GreaterOrEqual(t, rec.Dropped(), int64(3))

	close(repo.block)
	rec.Close()
}

func TestRecorderNilReceiverIsSafe(t *testing.T) {
	var rec *Recorder
	assert.NotPanics(t, func() {
		rec.Record("gatekeeper", "noop", "user-1", nil)
	})
}
