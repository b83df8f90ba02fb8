package imaging

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/sirupsen/logrus"

	"github.com/Brownie44l1/dermascan-api/internal/apperr"
)

const (
	DefaultMaxFileSize = 10 << 20
	DefaultMaxWidth    = 8192
	DefaultMaxHeight   = 8192
	DefaultMaxPixels   = 40_000_000
)

// DefaultAllowedFormats lists the decoders registered by this package.
var DefaultAllowedFormats = []string{"jpeg", "png", "gif", "webp", "bmp"}

// Limits bounds the images accepted for classification.
type Limits struct {
	MaxFileSize    int64    `yaml:"maxFileSize"`
	MaxWidth       int      `yaml:"maxWidth"`
	MaxHeight      int      `yaml:"maxHeight"`
	MaxPixels      int64    `yaml:"maxPixels"`
	AllowedFormats []string `yaml:"allowedFormats"`
}

func (l Limits) withDefaults() Limits {
	if l.MaxFileSize <= 0 {
		l.MaxFileSize = DefaultMaxFileSize
	}
	if l.MaxWidth <= 0 {
		l.MaxWidth = DefaultMaxWidth
	}
	if l.MaxHeight <= 0 {
		l.MaxHeight = DefaultMaxHeight
	}
	if l.MaxPixels <= 0 {
		l.MaxPixels = DefaultMaxPixels
	}
	if len(l.AllowedFormats) == 0 {
		l.AllowedFormats = DefaultAllowedFormats
	}
	return l
}

// Info describes an image that passed validation.
type Info struct {
	Format   string
	Width    int
	Height   int
	FileSize int64
}

// Validator rejects payloads that are not decodable images within Limits.
type Validator struct {
	limits Limits
	log    logrus.FieldLogger
}

func NewValidator(limits Limits, log logrus.FieldLogger) *Validator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Validator{limits: limits.withDefaults(), log: log}
}

// MaxFileSize is the largest payload Validate accepts.
func (v *Validator) MaxFileSize() int64 {
	return v.limits.MaxFileSize
}

// SizeError reports a payload of size bytes exceeding the file size limit.
func (v *Validator) SizeError(size int64) error {
	v.log.WithFields(logrus.Fields{"size": size, "max_size": v.limits.MaxFileSize}).Warn("rejected oversized image")
	return apperr.New(apperr.KindInput, "imaging.validate",
		fmt.Sprintf("file size exceeds limit: %d bytes (max %d bytes)", size, v.limits.MaxFileSize))
}

var suspiciousSignatures = [][]byte{
	{0x4D, 0x5A},             // PE executable
	{0x7F, 0x45, 0x4C, 0x46}, // ELF
	{0x25, 0x50, 0x44, 0x46}, // PDF
	{0x50, 0x4B, 0x03, 0x04}, // zip
	{0x1F, 0x8B, 0x08},       // gzip
}

// Validate checks size, signature, format and dimensions without decoding
// the full pixel data.
func (v *Validator) Validate(raw []byte) (Info, error) {
	if len(raw) == 0 {
		return Info{}, apperr.New(apperr.KindInput, "imaging.validate", "empty image payload")
	}
	if int64(len(raw)) > v.limits.MaxFileSize {
		return Info{}, v.SizeError(int64(len(raw)))
	}
	for _, sig := range suspiciousSignatures {
		if bytes.HasPrefix(raw, sig) {
			v.log.WithField("signature_hex", fmt.Sprintf("%x", sig)).Warn("rejected non-image payload")
			return Info{}, apperr.New(apperr.KindInput, "imaging.validate", "payload is not an image")
		}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Info{}, apperr.Wrap(apperr.KindInput, "imaging.validate", "Invalid image format. Supported: "+strings.Join(v.limits.AllowedFormats, ", "), err)
	}
	if !v.allowed(format) {
		return Info{}, apperr.New(apperr.KindInput, "imaging.validate", "unsupported format: "+format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, apperr.New(apperr.KindInput, "imaging.validate", "image has no pixels")
	}
	if cfg.Width > v.limits.MaxWidth || cfg.Height > v.limits.MaxHeight {
		return Info{}, apperr.New(apperr.KindInput, "imaging.validate",
			fmt.Sprintf("dimensions exceed limit: %dx%d (max %dx%d)", cfg.Width, cfg.Height, v.limits.MaxWidth, v.limits.MaxHeight))
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > v.limits.MaxPixels {
		return Info{}, apperr.New(apperr.KindInput, "imaging.validate",
			fmt.Sprintf("pixel count exceeds limit: %d (max %d)", pixels, v.limits.MaxPixels))
	}

	return Info{
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
		FileSize: int64(len(raw)),
	}, nil
}

func (v *Validator) allowed(format string) bool {
	for _, f := range v.limits.AllowedFormats {
		if strings.EqualFold(f, format) || (format == "jpeg" && strings.EqualFold(f, "jpg")) {
			return true
		}
	}
	return false
}

// Decode decodes raw into an image using the registered decoders.
func Decode(raw []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInput, "imaging.decode", "failed to decode image", err)
	}
	return img, format, nil
}
