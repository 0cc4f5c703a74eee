package db

import (
	"context"
	"errors"
)

// Blob describes a stored asset in the content-addressed store.
// The digest is the identity; bytes live on disk keyed by the same digest.
type Blob struct {
	Digest string
	Mime   string
	Size   int64
}

// GetBlob looks up a blob by digest. Returns ErrNotFound when the digest
// has never been stored.
func (db *DB) GetBlob(ctx context.Context, digest string) (*Blob, error) {
	var b Blob
	err := db.conn.QueryRowContext(ctx,
		`SELECT digest, mime, size FROM blobs WHERE digest = ?`, digest).
		Scan(&b.Digest, &b.Mime, &b.Size)
	if err != nil {
		return nil, WrapDBError(err, "get blob", digest)
	}
	return &b, nil
}

// InsertBlob records a newly stored blob. Inserting a digest that already
// exists is treated as success: the store is content-addressed, so the
// existing row already describes the same bytes.
func (db *DB) InsertBlob(ctx context.Context, digest, mime string, size int64) error {
	if digest == "" {
		return &StoreError{Op: "insert blob", Err: ErrInvalidArg}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO blobs (digest, mime, size) VALUES (?, ?, ?)
		 ON CONFLICT(digest) DO NOTHING`,
		digest, mime, size)
	if err != nil {
		return WrapDBError(err, "insert blob", digest)
	}
	return nil
}

// HasBlob reports whether a digest is present in the blob index.
func (db *DB) HasBlob(ctx context.Context, digest string) (bool, error) {
	_, err := db.GetBlob(ctx, digest)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// CountBlobs returns the total number of indexed blobs.
func (db *DB) CountBlobs(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM blobs").Scan(&n); err != nil {
		return 0, WrapDBError(err, "count blobs", "")
	}
	return n, nil
}

// ListBlobDigests returns every indexed digest. Used by doctor checks to
// cross-reference the on-disk store.
func (db *DB) ListBlobDigests(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT digest FROM blobs ORDER BY digest`)
	if err != nil {
		return nil, WrapDBError(err, "list blobs", "")
	}
	defer func() { _ = rows.Close() }()

	var digests []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, WrapDBError(err, "scan blob", "")
		}
		digests = append(digests, d)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapDBError(err, "list blobs", "")
	}
	return digests, nil
}
