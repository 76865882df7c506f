package service

import (
	"CloudStash/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuotaLedger decides whether a storage-changing operation is
// admissible and computes the user's new used-bytes total. The limit
// is a deployment-wide constant.
type QuotaLedger struct {
	Limit int64
}

// NewQuotaLedger builds a ledger with the given byte limit.
func NewQuotaLedger(limit int64) *QuotaLedger {
	return &QuotaLedger{Limit: limit}
}

// Admit reports whether adding delta bytes to used stays within the
// limit. A negative delta always admits.
func (l *QuotaLedger) Admit(used, delta int64) bool {
	return used+delta <= l.Limit
}

// clampRelease computes the counter after returning delta bytes,
// never going below zero. Prior accounting drift is absorbed here
// rather than surfaced.
func clampRelease(used, delta int64) int64 {
	if delta >= used {
		return 0
	}
	return used - delta
}

// Reserve locks the user's row, re-checks admission against the
// current counter, and applies delta. Must run inside the same
// transaction that commits the file record, so two concurrent uploads
// can never both pass the check against a stale counter.
func (l *QuotaLedger) Reserve(tx *gorm.DB, userID uint64, delta int64) (int64, error) {
	var user model.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, userID).Error; err != nil {
		return 0, err
	}
	if !l.Admit(user.UsedBytes, delta) {
		return user.UsedBytes, ErrQuotaExceeded
	}
	newTotal := user.UsedBytes + delta
	if newTotal < 0 {
		newTotal = 0
	}
	if err := tx.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("used_bytes", newTotal).Error; err != nil {
		return 0, err
	}
	return newTotal, nil
}

// Release returns delta bytes to the user under the same row lock.
// Deletion never fails the ledger and the counter never goes negative.
func (l *QuotaLedger) Release(tx *gorm.DB, userID uint64, delta int64) (int64, error) {
	var user model.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, userID).Error; err != nil {
		return 0, err
	}
	newTotal := clampRelease(user.UsedBytes, delta)
	if err := tx.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("used_bytes", newTotal).Error; err != nil {
		return 0, err
	}
	return newTotal, nil
}
