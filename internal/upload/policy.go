package upload

import (
	"github.com/equipskill/equipskill-dashboard/config"
	"github.com/equipskill/equipskill-dashboard/internal/imagehost"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
)

const megabyte = 1024 * 1024

// Constraints bound one upload batch. MaxCount counts files already attached
// plus the new selection; zero means no count limit.
type Constraints struct {
	MaxCount      int
	MaxTotalBytes int64
}

// Default per-call-site limits.
var (
	EquipmentImages = Constraints{MaxCount: 5, MaxTotalBytes: 10 * megabyte}
	CV              = Constraints{MaxCount: 1, MaxTotalBytes: 5 * megabyte}
	Certificates    = Constraints{MaxCount: 0, MaxTotalBytes: 10 * megabyte}
)

// Limits groups the constraints of every call site.
type Limits struct {
	EquipmentImages Constraints
	CV              Constraints
	Certificates    Constraints
}

// DefaultLimits returns the built-in presets.
func DefaultLimits() Limits {
	return Limits{EquipmentImages: EquipmentImages, CV: CV, Certificates: Certificates}
}

// LimitsFromConfig applies the configured overrides to the presets.
func LimitsFromConfig(cfg config.UploadConfig) Limits {
	l := DefaultLimits()
	if cfg.EquipmentMaxImages > 0 {
		l.EquipmentImages.MaxCount = cfg.EquipmentMaxImages
	}
	if cfg.EquipmentMaxBytes > 0 {
		l.EquipmentImages.MaxTotalBytes = cfg.EquipmentMaxBytes
	}
	if cfg.CVMaxBytes > 0 {
		l.CV.MaxTotalBytes = cfg.CVMaxBytes
	}
	if cfg.CertificatesMaxBytes > 0 {
		l.Certificates.MaxTotalBytes = cfg.CertificatesMaxBytes
	}
	return l
}

// Check validates a selection before any network call. The byte limit applies
// to the new files only, not to what is already attached.
func Check(existing int, files []imagehost.File, c Constraints) error {
	if len(files) == 0 {
		return &apperrors.ValidationError{Fields: []apperrors.FieldError{{Field: "files", Reason: "no files selected"}}}
	}
	if c.MaxCount > 0 && existing+len(files) > c.MaxCount {
		return &apperrors.TooManyFilesError{Max: c.MaxCount, Existing: existing, Selected: len(files)}
	}
	var total int64
	for _, f := range files {
		total += f.Size
	}
	if c.MaxTotalBytes > 0 && total > c.MaxTotalBytes {
		return &apperrors.PayloadTooLargeError{MaxBytes: c.MaxTotalBytes, TotalBytes: total}
	}
	return nil
}
