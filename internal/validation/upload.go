// upload.go validates uploaded file parts against per-call-site policies.
// Validation inspects only the declared metadata (name, size, MIME type) and
// never reads file bytes; actual writing happens later, in the uploads
// service, strictly after validation has passed.
package validation

import "fmt"

// UploadPolicy is a named size/type window for one upload call site. The photo
// windows intentionally differ between profiles and vehicles; they are two
// distinct policies, not one with a forgotten floor.
type UploadPolicy struct {
	Name     string
	MinBytes int64 // 0 means no floor
	MaxBytes int64
	Types    []string // accepted declared MIME types
}

var (
	// ProfilePhotoPolicy bounds avatar uploads: 5 MiB ceiling, no floor.
	ProfilePhotoPolicy = UploadPolicy{
		Name:     "profile photo",
		MaxBytes: 5 << 20,
		Types:    []string{"image/jpeg", "image/png", "image/gif"},
	}

	// VehiclePhotoPolicy bounds car and motorcycle photos: 40 KiB – 4 MiB.
	VehiclePhotoPolicy = UploadPolicy{
		Name:     "vehicle photo",
		MinBytes: 40 << 10,
		MaxBytes: 4 << 20,
		Types:    []string{"image/jpeg", "image/png", "image/gif"},
	}

	// WarrantyDocPolicy bounds motorcycle warranty documents.
	WarrantyDocPolicy = UploadPolicy{
		Name:     "warranty document",
		MinBytes: 16 << 10,
		MaxBytes: 8 << 20,
		Types: []string{
			"application/pdf",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"text/plain",
		},
	}
)

// UploadMeta is the declared metadata of one uploaded part.
type UploadMeta struct {
	Filename    string
	Size        int64
	ContentType string
}

// ValidateUpload checks one uploaded part against a policy. A zero-size part
// with no filename counts as missing; required is how call sites distinguish
// "photo is mandatory on create" from "photo is optional on edit".
func ValidateUpload(meta UploadMeta, policy UploadPolicy, required bool) Errors {
	var errs Errors
	if meta.Filename == "" && meta.Size == 0 {
		if required {
			errs.Add(CodeFileMissing, fmt.Sprintf("A %s must be uploaded.", policy.Name))
		}
		return errs
	}

	if !policy.accepts(meta.ContentType) {
		errs.Add(CodeUnsupportedType,
			fmt.Sprintf("The %s must be one of the supported file types.", policy.Name))
	}
	if meta.Size > policy.MaxBytes {
		errs.Add(CodeFileTooLarge,
			fmt.Sprintf("The %s exceeds the maximum size of %d bytes.", policy.Name, policy.MaxBytes))
	}
	if policy.MinBytes > 0 && meta.Size < policy.MinBytes {
		errs.Add(CodeFileTooSmall,
			fmt.Sprintf("The %s is below the minimum size of %d bytes.", policy.Name, policy.MinBytes))
	}
	return errs
}

func (p UploadPolicy) accepts(contentType string) bool {
	for _, t := range p.Types {
		if t == contentType {
			return true
		}
	}
	return false
}
