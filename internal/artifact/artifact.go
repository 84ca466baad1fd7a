package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrInvalidName = errors.New("invalid artifact name")

// Store saves generated workbooks and returns their public URL.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Remove(ctx context.Context, name string) error
}

// Name returns a fresh versioned file name for the order's workbook.
// Каждый расчёт пишет новый файл, старые ссылки остаются рабочими.
func Name(orderID int64) string {
	return fmt.Sprintf("order_%d_%s.xlsx", orderID, uuid.NewString()[:8])
}

func validName(name string) bool {
	return name != "" && name == filepath.Base(name) && name != "." && name != ".."
}

// DiskStore пишет файлы в каталог uploads, который раздаёт роутер.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, publicBaseURL string) (*DiskStore, error) {
	const op = "artifact.NewDiskStore"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &DiskStore{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (s *DiskStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	const op = "artifact.DiskStore.Save"

	if !validName(name) {
		return "", fmt.Errorf("%s: %w: %q", op, ErrInvalidName, name)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("%s: запись: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.baseURL + "/uploads/" + name, nil
}

func (s *DiskStore) Remove(ctx context.Context, name string) error {
	const op = "artifact.DiskStore.Remove"

	if !validName(name) {
		return fmt.Errorf("%s: %w: %q", op, ErrInvalidName, name)
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
