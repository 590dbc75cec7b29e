package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidRef = errors.New("invalid blob reference")

// FS хранит изображения на диске под корнем MediaRoot; ref: относительный путь
type FS struct {
	root string
}

func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("blobstore: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: %w", err)
	}
	return &FS{root: abs}, nil
}

func (s *FS) resolve(ref string) (string, error) {
	if ref == "" || filepath.IsAbs(ref) {
		return "", fmt.Errorf("%q: %w", ref, ErrInvalidRef)
	}
	p := filepath.Join(s.root, filepath.Clean(ref))
	// выход за пределы корня через ".."
	if p != s.root && !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", ref, ErrInvalidRef)
	}
	return p, nil
}

// Delete удаляет файл; отсутствующий файл не ошибка
func (s *FS) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blobstore: delete %s: %w", ref, err)
	}
	return nil
}
