// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"github.com/poiesic/glimpse/storage"
)

// FS stores screenshots as flat files in one directory.
type FS struct {
	dir string
}

var _ storage.ImageStore = (*FS)(nil)

// NewFS creates the directory if needed and returns a filesystem image store.
//
// Returns storage.ImageStore interface to enforce abstraction.
func NewFS(dir string) (storage.ImageStore, error) {
	return newFS(dir)
}

func newFS(dir string) (*FS, error) {
	if dir == "" {
		return nil, errors.New("image directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storage.NewStoreError("create image directory", err)
	}
	return &FS{dir: dir}, nil
}

// Put writes data atomically, so a concurrent reader never sees a partial image.
func (s *FS) Put(ctx context.Context, name string, data []byte, _ string) (string, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return "", storage.NewStoreError("write image", err)
	}
	return path, nil
}

// Get reads the stored bytes.
func (s *FS) Get(ctx context.Context, name string) ([]byte, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, storage.NewStoreError("read image", err)
	}
	return data, nil
}

// Exists reports whether a file is stored under name.
func (s *FS) Exists(_ context.Context, name string) (bool, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, storage.NewStoreError("stat image", err)
	}
	return true, nil
}

// pathFor rejects names that would escape the store directory. Callers pass
// sanitized identifiers, so this only trips on programming errors.
func (s *FS) pathFor(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid image name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}
