package store

import "context"

// Backend is a durable key-value store holding whole values.
//
// Read reports found=false, with a nil error, when the key is absent.
// Delete of an absent key is not an error.
type Backend interface {
	Read(ctx context.Context, key string) (value []byte, found bool, err error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// RevisionBackend is a Backend that counts writes per key.
type RevisionBackend interface {
	Backend
	Revision(ctx context.Context, key string) (int64, error)
}

var (
	_ RevisionBackend = (*Store)(nil)

	_ Backend = (*Store)(nil)
	_ Backend = (*MemoryStore)(nil)
	_ Backend = (*RedisStore)(nil)
)
