package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider serves objects from a flat directory on disk.
type LocalProvider struct {
	dir string
}

var _ ObjectStore = (*LocalProvider)(nil)

func NewLocalProvider(dir string) *LocalProvider {
	return &LocalProvider{dir: dir}
}

func (p *LocalProvider) ListObjects(ctx context.Context, prefix string) ([]Object, error) {
	files, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, err
	}

	var objects []Object
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if prefix != "" && !strings.HasPrefix(file.Name(), prefix) {
			continue
		}

		info, err := file.Info()
		if err != nil {
			return nil, err
		}

		objects = append(objects, Object{Name: file.Name(), Size: info.Size()})
	}

	return objects, nil
}

func (p *LocalProvider) GetObject(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(filepath.Join(p.dir, key))
}

func (p *LocalProvider) PutObject(ctx context.Context, key string, data io.Reader) error {
	path := filepath.Join(p.dir, key)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, data); err != nil {
		return err
	}

	return nil
}
