package storage

import (
	"context"
	"io"
)

type Object struct {
	Name string
	Size int64
}

// ObjectStore is a read/write view of a flat collection of named objects,
// used as the source of preset documents registered at session start.
type ObjectStore interface {
	ListObjects(ctx context.Context, prefix string) ([]Object, error)

	GetObject(ctx context.Context, key string) ([]byte, error)

	PutObject(ctx context.Context, key string, data io.Reader) error
}
