package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// Store failures collapse into three categories. Callers never retry;
// transient network errors surface as ErrStoreUnavailable.
var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrStoreAccessDenied = errors.New("store access denied")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// classify maps a raw client error onto the store error taxonomy while
// keeping the original message.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return fmt.Errorf("%w: %v", ErrObjectNotFound, err)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "AllAccessDisabled":
		return fmt.Errorf("%w: %v", ErrStoreAccessDenied, err)
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
