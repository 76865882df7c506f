package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"CloudStash/model"
)

// TestUploadDownloadRoundTrip uploads bytes and downloads them back.
func TestUploadDownloadRoundTrip(t *testing.T) {
	requireDB(t)
	cleanTables(t)
	store := newFakeStore()
	lifecycle := newTestLifecycle(store, 1<<20)
	user := createTestUser(t, "roundtrip@test.com")

	content := []byte("hello stash")
	rec, used, err := lifecycle.Upload(context.Background(), user.ID, "greeting.txt", content)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if used != int64(len(content)) {
		t.Fatalf("expect used %d, got %d", len(content), used)
	}
	if rec.BlobKey != BuildBlobKey(user.ID, "greeting.txt") {
		t.Fatalf("unexpected blob key: %s", rec.BlobKey)
	}

	object, got, err := lifecycle.Download(context.Background(), user.ID, rec.ID)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	defer object.Close()
	data, err := io.ReadAll(object)
	if err != nil {
		t.Fatalf("read object failed: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Fatalf("downloaded bytes differ: %q vs %q", data, content)
	}
	if got.Filename != "greeting.txt" {
		t.Fatalf("expect original filename, got %s", got.Filename)
	}
}

// TestQuotaScenario walks the documented quota script: 600 ok, 500
// rejected, delete frees everything.
func TestQuotaScenario(t *testing.T) {
	requireDB(t)
	cleanTables(t)
	store := newFakeStore()
	lifecycle := newTestLifecycle(store, 1000)
	user := createTestUser(t, "quota@test.com")

	first, used, err := lifecycle.Upload(context.Background(), user.ID, "a.bin", make([]byte, 600))
	if err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	if used != 600 {
		t.Fatalf("expect used 600, got %d", used)
	}

	_, _, err = lifecycle.Upload(context.Background(), user.ID, "b.bin", make([]byte, 500))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expect ErrQuotaExceeded, got %v", err)
	}

	// rejection leaves counter and file list unchanged
	files, err := lifecycle.ListFiles(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expect 1 file after rejection, got %d", len(files))
	}
	if usedNow, _, _ := lifecycle.Usage(user.ID); usedNow != 600 {
		t.Fatalf("expect used 600 after rejection, got %d", usedNow)
	}

	used, err = lifecycle.Delete(context.Background(), user.ID, first.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if used != 0 {
		t.Fatalf("expect used 0 after delete, got %d", used)
	}
	files, _ = lifecycle.ListFiles(context.Background(), user.ID)
	if len(files) != 0 {
		t.Fatalf("expect empty file list, got %d", len(files))
	}
}

// TestConcurrentUploadsRespectQuota races two 600-byte uploads against
// a 1000-byte quota: exactly one must win.
func TestConcurrentUploadsRespectQuota(t *testing.T) {
	requireDB(t)
	cleanTables(t)
	store := newFakeStore()
	lifecycle := newTestLifecycle(store, 1000)
	user := createTestUser(t, "race@test.com")

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, name := range []string{"left.bin", "right.bin"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, _, err := lifecycle.Upload(context.Background(), user.ID, name, make([]byte, 600))
			results <- err
		}(name)
	}
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrQuotaExceeded):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || rejected != 1 {
		t.Fatalf("expect exactly one success and one rejection, got %d/%d", ok, rejected)
	}
	if used, _, _ := lifecycle.Usage(user.ID); used != 600 {
		t.Fatalf("expect used exactly 600, got %d", used)
	}
}

// TestUsedBytesMatchesFiles checks the accounting invariant across a
// mixed sequence of operations.
func TestUsedBytesMatchesFiles(t *testing.T) {
	requireDB(t)
	cleanTables(t)
	store := newFakeStore()
	lifecycle := newTestLifecycle(store, 1<<20)
	user := createTestUser(t, "invariant@test.com")

	sizes := []int{100, 2000, 1, 350}
	ids := make([]uint64, 0, len(sizes))
	for i, size := range sizes {
		rec, _, err := lifecycle.Upload(context.Background(), user.ID, string(rune('a'+i))+".dat", make([]byte, size))
		if err != nil {
			t.Fatalf("upload %d failed: %v", i, err)
		}
		ids = append(ids, rec.ID)
	}
	if _, err := lifecycle.Delete(context.Background(), user.ID, ids[1]); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var sum int64
	testDB.Model(&model.File{}).Where("user_id = ?", user.ID).
		Select("COALESCE(SUM(size_bytes), 0)").Scan(&sum)
	used, _, err := lifecycle.Usage(user.ID)
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if used != sum {
		t.Fatalf("used_bytes %d != sum of file sizes %d", used, sum)
	}
}

// TestDeleteClampsAtZero seeds counter drift and checks delete never
// drives used_bytes negative.
func TestDeleteClampsAtZero(t *testing.T) {
	requireDB(t)
	cleanTables(t)
	store := newFakeStore()
	lifecycle := newTestLifecycle(store, 1<<20)
	user := createTestUser(t, "clamp@test.com")

	rec, _, err := lifecycle.Upload(context.Background(), user.ID, "drift.bin", make([]byte, 500))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	// simulate drift: counter below the record size
	if err := testDB.Model(&model.User{}).Where("id = ?", user.ID).
		UpdateColumn("used_bytes", 100).Error; err != nil {
		t.Fatalf("seed drift failed: %v", err)
	}

	used, err := lifecycle.Delete(context.Background(), user.ID, rec.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if used != 0 {
		t.Fatalf("expect used clamped to 0, got %d", used)
	}
}

// TestNotOwnedLooksLikeMissing checks that a foreign file and a
// nonexistent file answer identically.
func TestNotOwnedLooksLikeMissing(t *testing.T) {
	requireDB(t)
	cleanTables(t)
	store := newFakeStore()
	lifecycle := newTestLifecycle(store, 1<<20)
	owner := createTestUser(t, "owner@test.com")
	other := createTestUser(t, "other@test.com")

	rec, _, err := lifecycle.Upload(context.Background(), owner.ID, "secret.txt", []byte("mine"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	_, _, errForeign := lifecycle.Download(context.Background(), other.ID, rec.ID)
	_, _, errMissing := lifecycle.Download(context.Background(), other.ID, rec.ID+12345)
	if !errors.Is(errForeign, ErrFileNotFound) || !errors.Is(errMissing, ErrFileNotFound) {
		t.Fatalf("expect ErrFileNotFound for both, got %v / %v", errForeign, errMissing)
	}

	_, errDelForeign := lifecycle.Delete(context.Background(), other.ID, rec.ID)
	if !errors.Is(errDelForeign, ErrFileNotFound) {
		t.Fatalf("expect ErrFileNotFound on foreign delete, got %v", errDelForeign)
	}
	// the owner's file is untouched
	if files, _ := lifecycle.ListFiles(context.Background(), owner.ID); len(files) != 1 {
		t.Fatal("owner's file should survive a foreign delete attempt")
	}
}

// TestDuplicateFilenameReplaces checks last-write-wins semantics: one
// record, one blob, counter tracks the latest size.
func TestDuplicateFilenameReplaces(t *testing.T) {
	requireDB(t)
	cleanTables(t)
	store := newFakeStore()
	lifecycle := newTestLifecycle(store, 1<<20)
	user := createTestUser(t, "dup@test.com")

	if _, _, err := lifecycle.Upload(context.Background(), user.ID, "notes.txt", make([]byte, 400)); err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	_, used, err := lifecycle.Upload(context.Background(), user.ID, "notes.txt", make([]byte, 150))
	if err != nil {
		t.Fatalf("re-upload failed: %v", err)
	}
	if used != 150 {
		t.Fatalf("expect used 150 after replace, got %d", used)
	}
	files, _ := lifecycle.ListFiles(context.Background(), user.ID)
	if len(files) != 1 {
		t.Fatalf("expect a single record after replace, got %d", len(files))
	}
	if files[0].SizeBytes != 150 {
		t.Fatalf("expect record size 150, got %d", files[0].SizeBytes)
	}
	if store.count() != 1 {
		t.Fatalf("expect a single blob after replace, got %d", store.count())
	}
}

// TestUploadStoreFailureLeavesNoMetadata checks that a failed blob
// write commits nothing.
func TestUploadStoreFailureLeavesNoMetadata(t *testing.T) {
	requireDB(t)
	cleanTables(t)
	store := newFakeStore()
	store.failPut = true
	lifecycle := newTestLifecycle(store, 1<<20)
	user := createTestUser(t, "putfail@test.com")

	_, _, err := lifecycle.Upload(context.Background(), user.ID, "gone.bin", make([]byte, 100))
	if err == nil {
		t.Fatal("expect upload to fail")
	}
	if files, _ := lifecycle.ListFiles(context.Background(), user.ID); len(files) != 0 {
		t.Fatalf("expect no records after store failure, got %d", len(files))
	}
	if used, _, _ := lifecycle.Usage(user.ID); used != 0 {
		t.Fatalf("expect used 0 after store failure, got %d", used)
	}
}

// TestDeleteStoreFailureKeepsRecord checks that a failed blob delete
// aborts before any metadata changes.
func TestDeleteStoreFailureKeepsRecord(t *testing.T) {
	requireDB(t)
	cleanTables(t)
	store := newFakeStore()
	lifecycle := newTestLifecycle(store, 1<<20)
	user := createTestUser(t, "delfail@test.com")

	rec, _, err := lifecycle.Upload(context.Background(), user.ID, "sticky.bin", make([]byte, 300))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	store.failRemove = true

	if _, err := lifecycle.Delete(context.Background(), user.ID, rec.ID); err == nil {
		t.Fatal("expect delete to fail")
	}
	if files, _ := lifecycle.ListFiles(context.Background(), user.ID); len(files) != 1 {
		t.Fatal("record should survive a store delete failure")
	}
	if used, _, _ := lifecycle.Usage(user.ID); used != 300 {
		t.Fatalf("expect used 300 after failed delete, got %d", used)
	}
}

// TestListFilesNewestFirst checks dashboard ordering.
func TestListFilesNewestFirst(t *testing.T) {
	requireDB(t)
	cleanTables(t)
	store := newFakeStore()
	lifecycle := newTestLifecycle(store, 1<<20)
	user := createTestUser(t, "order@test.com")

	for _, name := range []string{"first.txt", "second.txt", "third.txt"} {
		if _, _, err := lifecycle.Upload(context.Background(), user.ID, name, []byte(name)); err != nil {
			t.Fatalf("upload %s failed: %v", name, err)
		}
	}
	files, err := lifecycle.ListFiles(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expect 3 files, got %d", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i].UploadedAt.After(files[i-1].UploadedAt) {
			t.Fatal("files should be ordered newest first")
		}
	}
}
