package service

import (
	"CloudStash/internal/storage"
	"CloudStash/model"
	"CloudStash/utils"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"golang.org/x/net/context"
	"gorm.io/gorm"
)

// BuildBlobKey returns the deterministic object key for a user's file.
// One (user, filename) pair always maps to the same key, so re-uploads
// replace the object in place.
func BuildBlobKey(userID uint64, filename string) string {
	return fmt.Sprintf("users/%d/%s", userID, filename)
}

// ContentTypeFor guesses a content type from the file extension.
func ContentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// FileLifecycle orchestrates upload, download and delete, sequencing
// the object store and the metadata store. All handles are injected;
// the service keeps no global state.
type FileLifecycle struct {
	db           *gorm.DB
	store        storage.ObjectStore
	bucket       string
	ledger       *QuotaLedger
	cache        *utils.FileListCache
	storeTimeout time.Duration
}

// NewFileLifecycle builds a lifecycle manager. cache may be nil.
func NewFileLifecycle(
	db *gorm.DB,
	store storage.ObjectStore,
	bucket string,
	ledger *QuotaLedger,
	cache *utils.FileListCache,
	storeTimeout time.Duration,
) *FileLifecycle {
	return &FileLifecycle{
		db:           db,
		store:        store,
		bucket:       bucket,
		ledger:       ledger,
		cache:        cache,
		storeTimeout: storeTimeout,
	}
}

// storeCtx bounds a store call that completes within the request.
func (m *FileLifecycle) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.storeTimeout)
}

// Upload stores data under the caller's filename and commits the file
// record together with the quota counter.
//
// The blob write happens outside any lock; only the metadata commit
// takes the per-user row lock, so unrelated store latency never sits
// inside the critical section. The quota check before the blob write
// is advisory (cheap rejection with zero side effects); the check that
// counts runs again under the lock at commit time. If the metadata
// commit fails after a successful blob write the blob stays behind as
// an orphan; there is no compensating delete.
func (m *FileLifecycle) Upload(ctx context.Context, userID uint64, filename string, data []byte) (*model.File, int64, error) {
	size := int64(len(data))

	var user model.User
	if err := m.db.First(&user, userID).Error; err != nil {
		return nil, 0, err
	}
	if !m.ledger.Admit(user.UsedBytes, size) {
		return nil, user.UsedBytes, ErrQuotaExceeded
	}

	key := BuildBlobKey(userID, filename)
	sctx, cancel := m.storeCtx(ctx)
	defer cancel()
	if err := m.store.PutObject(sctx, m.bucket, key, bytes.NewReader(data), size, storage.PutOptions{
		ContentType: ContentTypeFor(filename),
	}); err != nil {
		return nil, 0, err
	}

	var rec model.File
	var newTotal int64
	err := m.db.Transaction(func(tx *gorm.DB) error {
		var existing model.File
		err := tx.Where("user_id = ? AND filename = ?", userID, filename).First(&existing).Error
		switch {
		case err == nil:
			// Same name: last write wins. The blob is already
			// replaced, so swap the record in place and account only
			// for the size difference.
			total, rerr := m.ledger.Reserve(tx, userID, size-existing.SizeBytes)
			if rerr != nil {
				return rerr
			}
			now := time.Now()
			if uerr := tx.Model(&existing).Updates(map[string]interface{}{
				"size_bytes":  size,
				"uploaded_at": now,
			}).Error; uerr != nil {
				return uerr
			}
			existing.SizeBytes = size
			existing.UploadedAt = now
			rec = existing
			newTotal = total
		case errors.Is(err, gorm.ErrRecordNotFound):
			total, rerr := m.ledger.Reserve(tx, userID, size)
			if rerr != nil {
				return rerr
			}
			rec = model.File{
				UserID:    userID,
				Filename:  filename,
				BlobKey:   key,
				SizeBytes: size,
			}
			if cerr := tx.Create(&rec).Error; cerr != nil {
				return cerr
			}
			newTotal = total
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	m.cache.Invalidate(ctx, userID)
	return &rec, newTotal, nil
}

// Download returns the blob stream and record for a file the caller
// owns. The caller must close the stream.
func (m *FileLifecycle) Download(ctx context.Context, userID, fileID uint64) (io.ReadCloser, *model.File, error) {
	rec, err := m.getOwned(userID, fileID)
	if err != nil {
		return nil, nil, err
	}
	// No deadline here: the stream outlives this call.
	object, _, err := m.store.GetObject(ctx, m.bucket, rec.BlobKey)
	if err != nil {
		return nil, nil, err
	}
	return object, rec, nil
}

// Delete removes the blob first, then the record and the counter in
// one transaction. A store failure aborts before any metadata is
// touched, leaving record and blob consistently present.
func (m *FileLifecycle) Delete(ctx context.Context, userID, fileID uint64) (int64, error) {
	rec, err := m.getOwned(userID, fileID)
	if err != nil {
		return 0, err
	}

	sctx, cancel := m.storeCtx(ctx)
	defer cancel()
	if err := m.store.RemoveObject(sctx, m.bucket, rec.BlobKey); err != nil {
		return 0, err
	}

	var newTotal int64
	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.File{}, rec.ID).Error; err != nil {
			return err
		}
		total, err := m.ledger.Release(tx, userID, rec.SizeBytes)
		if err != nil {
			return err
		}
		newTotal = total
		return nil
	})
	if err != nil {
		return 0, err
	}

	m.cache.Invalidate(ctx, userID)
	return newTotal, nil
}

// ListFiles returns the caller's files, newest upload first.
func (m *FileLifecycle) ListFiles(ctx context.Context, userID uint64) ([]model.File, error) {
	if cached, ok := m.cache.Get(ctx, userID); ok {
		return cached, nil
	}
	var files []model.File
	if err := m.db.
		Where("user_id = ?", userID).
		Order("uploaded_at DESC").
		Find(&files).Error; err != nil {
		return nil, err
	}
	m.cache.Set(ctx, userID, files)
	return files, nil
}

// Usage returns the user's current used bytes and the quota limit.
func (m *FileLifecycle) Usage(userID uint64) (int64, int64, error) {
	var user model.User
	if err := m.db.First(&user, userID).Error; err != nil {
		return 0, 0, err
	}
	return user.UsedBytes, m.ledger.Limit, nil
}

// getOwned loads a file scoped to its owner. A record that exists but
// belongs to someone else answers exactly like a missing one.
func (m *FileLifecycle) getOwned(userID, fileID uint64) (*model.File, error) {
	var rec model.File
	if err := m.db.Where("id = ? AND user_id = ?", fileID, userID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return &rec, nil
}
