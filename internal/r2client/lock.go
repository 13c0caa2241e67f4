package r2client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ConditionalStore is the subset of Client a Lock needs.
type ConditionalStore interface {
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	PutObjectIfNotExists(ctx context.Context, key string, body io.Reader, contentType string) (bool, string, error)
	PutObjectIfMatch(ctx context.Context, key string, body io.Reader, etag, contentType string) (bool, string, error)
	DeleteObject(ctx context.Context, key string) error
}

// LockInfo is the JSON body of a lock object.
type LockInfo struct {
	Owner     string    `json:"owner"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Lock is a lease held as an object in the bucket. Only one owner can create
// the object; an expired lease may be taken over with an ETag-guarded write.
type Lock struct {
	store   ConditionalStore
	key     string
	ttl     time.Duration
	ownerID string
	etag    string
	now     func() time.Time
}

// NewLock creates a lock with a random owner id.
func NewLock(store ConditionalStore, key string, ttl time.Duration) *Lock {
	return &Lock{
		store:   store,
		key:     key,
		ttl:     ttl,
		ownerID: uuid.NewString(),
		now:     time.Now,
	}
}

// OwnerID identifies this lock holder.
func (l *Lock) OwnerID() string {
	return l.ownerID
}

// Acquire reports whether the lease is now ours. It returns false without
// error while another owner holds an unexpired lease.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	body, err := l.lease()
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}

	created, etag, err := l.store.PutObjectIfNotExists(ctx, l.key, bytes.NewReader(body), "application/json")
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	if created {
		l.etag = etag
		return true, nil
	}

	expired, oldETag, err := l.expired(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	if !expired {
		return false, nil
	}

	if oldETag == "" {
		// Deleted between our create and read; try once more.
		created, etag, err = l.store.PutObjectIfNotExists(ctx, l.key, bytes.NewReader(body), "application/json")
	} else {
		created, etag, err = l.store.PutObjectIfMatch(ctx, l.key, bytes.NewReader(body), oldETag, "application/json")
	}
	if err != nil {
		return false, fmt.Errorf("acquire lock: take over: %w", err)
	}
	if created {
		l.etag = etag
	}
	return created, nil
}

// Renew extends the lease if we still hold it.
func (l *Lock) Renew(ctx context.Context) (bool, error) {
	if l.etag == "" {
		return false, nil
	}

	body, err := l.lease()
	if err != nil {
		return false, fmt.Errorf("renew lock: %w", err)
	}

	ok, etag, err := l.store.PutObjectIfMatch(ctx, l.key, bytes.NewReader(body), l.etag, "application/json")
	if err != nil {
		return false, fmt.Errorf("renew lock: %w", err)
	}
	if !ok {
		l.etag = ""
		return false, nil
	}
	l.etag = etag
	return true, nil
}

// Release deletes the lock object if we still own it.
func (l *Lock) Release(ctx context.Context) error {
	defer func() { l.etag = "" }()

	info, _, err := l.read(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if info != nil && info.Owner != l.ownerID {
		return nil
	}
	return l.store.DeleteObject(ctx, l.key)
}

func (l *Lock) lease() ([]byte, error) {
	return json.Marshal(LockInfo{Owner: l.ownerID, ExpiresAt: l.now().Add(l.ttl)})
}

// expired returns the current object's ETag ("" if it vanished).
func (l *Lock) expired(ctx context.Context) (bool, string, error) {
	info, etag, err := l.read(ctx)
	if errors.Is(err, ErrNotFound) {
		return true, "", nil
	}
	if err != nil {
		return false, "", err
	}
	// Unreadable lease bodies are treated as expired.
	if info == nil {
		return true, etag, nil
	}
	return l.now().After(info.ExpiresAt), etag, nil
}

// read returns a nil info when the body is not valid JSON.
func (l *Lock) read(ctx context.Context) (*LockInfo, string, error) {
	body, etag, err := l.store.Download(ctx, l.key)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", fmt.Errorf("read lock: %w", err)
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, etag, nil
	}
	return &info, etag, nil
}
