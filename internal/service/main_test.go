package service

import (
	"CloudStash/config"
	"CloudStash/internal/repo"
	"CloudStash/internal/storage"
	"CloudStash/model"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	config.InitConfig()
	if db, err := repo.InitMysqlTest(); err == nil {
		testDB = db
	}
	os.Exit(m.Run())
}

// requireDB skips a test when the test database is not reachable.
func requireDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("test mysql not reachable")
	}
	return testDB
}

// cleanTables clears test data, children first.
func cleanTables(t *testing.T) {
	t.Helper()
	for _, table := range []string{"files", "users"} {
		if err := testDB.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("clean %s table failed: %v", table, err)
		}
	}
}

// fakeStore is an in-memory ObjectStore used to exercise the lifecycle
// without a running MinIO. Failure flags simulate store outages.
type fakeStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failPut    bool
	failRemove bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) key(bucket, key string) string {
	return bucket + "/" + key
}

func (f *fakeStore) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts storage.PutOptions) error {
	if f.failPut {
		return fmt.Errorf("%w: simulated outage", storage.ErrStoreUnavailable)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[f.key(bucket, key)] = data
	return nil
}

func (f *fakeStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[f.key(bucket, key)]
	if !ok {
		return nil, storage.ObjectInfo{}, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeStore) RemoveObject(ctx context.Context, bucket, key string) error {
	if f.failRemove {
		return fmt.Errorf("%w: simulated outage", storage.ErrStoreUnavailable)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, f.key(bucket, key))
	return nil
}

func (f *fakeStore) EnsureBucket(ctx context.Context, bucket string) error {
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// newTestLifecycle builds a lifecycle manager on the test database
// with the given quota limit.
func newTestLifecycle(store storage.ObjectStore, quota int64) *FileLifecycle {
	return NewFileLifecycle(testDB, store, "test-bucket", NewQuotaLedger(quota), nil, time.Second)
}

// createTestUser registers a user and returns it.
func createTestUser(t *testing.T, email string) *model.User {
	t.Helper()
	user, err := NewUserService(testDB).Register(email, "secret123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return user
}
