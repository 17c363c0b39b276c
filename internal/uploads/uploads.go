// Package uploads stores user-submitted files (profile photos, vehicle
// photos, warranty documents) through a storage backend.
//
// Files are validated against a size-and-type policy before any byte reaches
// storage, and the storage write completes before the stored path is handed
// back for persistence. A failed write therefore never leaves a database row
// pointing at a missing file.
package uploads

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/inventory-admin/inventory-admin/internal/storage"
	"github.com/inventory-admin/inventory-admin/internal/validation"
)

// Service validates and stores uploaded files.
type Service struct {
	store storage.Storage

	// now is replaceable in tests to make stored names deterministic.
	now func() time.Time
}

// NewService creates an upload service backed by the given storage.
func NewService(store storage.Storage) *Service {
	return &Service{store: store, now: time.Now}
}

// Store validates file against policy and, when it passes, writes it to
// storage under dir. The returned string is the storage path to persist in
// the owning row.
//
// A nil file is legal when the policy is optional: the empty path signals
// "keep whatever is already stored". Validation failures come back as
// field errors; only storage faults are returned as the error value.
func (s *Service) Store(ctx context.Context, file *multipart.FileHeader, policy validation.UploadPolicy, required bool, dir string) (string, validation.Errors, error) {
	if file == nil {
		if required {
			var verrs validation.Errors
			verrs.Add(validation.CodeFileMissing, fmt.Sprintf("%s is required.", policy.Name))
			return "", verrs, nil
		}
		return "", nil, nil
	}

	meta := validation.UploadMeta{
		Filename:    file.Filename,
		Size:        file.Size,
		ContentType: file.Header.Get("Content-Type"),
	}
	if verrs := validation.ValidateUpload(meta, policy, required); !verrs.Empty() {
		return "", verrs, nil
	}

	src, err := file.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	storedPath := path.Join(dir, fmt.Sprintf("%d_%s", s.now().UnixNano(), sanitizeFilename(file.Filename)))

	if _, err := s.store.Upload(ctx, storedPath, src, file.Size); err != nil {
		return "", nil, fmt.Errorf("failed to store upload: %w", err)
	}

	return storedPath, nil, nil
}

// URL resolves a stored path to a browser-fetchable URL.
func (s *Service) URL(ctx context.Context, storedPath string, ttl time.Duration) (string, error) {
	return s.store.GetURL(ctx, storedPath, ttl)
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Service) Remove(ctx context.Context, storedPath string) error {
	return s.store.Delete(ctx, storedPath)
}

// sanitizeFilename strips path components and replaces anything outside a
// conservative character set. Uploaded names are attacker-controlled.
func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}
