// Package normalizer turns platform attachments into uniform file
// descriptors. Normalization never fails: unsupported input degrades to
// category unknown with the processable flag cleared, and the caller
// decides how to reject it.
package normalizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
)

// mimeToExt maps known MIME types to extensions; extToMime is its inverse.
var mimeToExt = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"image/webp":      "webp",
	"application/pdf": "pdf",
	"video/mp4":       "mp4",
	"audio/mpeg":      "mp3",
	"audio/ogg":       "ogg",
}

var extToMime = func() map[string]string {
	inv := make(map[string]string, len(mimeToExt))
	for mime, ext := range mimeToExt {
		inv[ext] = mime
	}
	// jpeg shares the jpg MIME type
	inv["jpeg"] = "image/jpeg"
	return inv
}()

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
}

var documentExtensions = map[string]bool{
	"doc": true, "docx": true, "xls": true, "xlsx": true, "txt": true,
}

// kindNames maps message-kind hints to synthesized filename stems
var kindNames = map[domain.MessageKind]string{
	domain.KindPhoto:    "image",
	domain.KindVideo:    "video",
	domain.KindAudio:    "audio",
	domain.KindVoice:    "voice-note",
	domain.KindDocument: "document",
}

// Config bounds which descriptors are processable
type Config struct {
	MaxFileSize       int64
	AllowedExtensions []string
	AllowedMimeTypes  []string
}

// Normalizer builds file descriptors from raw attachments
type Normalizer struct {
	cfg         Config
	allowedExt  map[string]bool
	allowedMime map[string]bool
	now         func() time.Time
}

// New creates a normalizer with the given limits
func New(cfg Config) *Normalizer {
	n := &Normalizer{
		cfg:         cfg,
		allowedExt:  make(map[string]bool, len(cfg.AllowedExtensions)),
		allowedMime: make(map[string]bool, len(cfg.AllowedMimeTypes)),
		now:         time.Now,
	}
	for _, ext := range cfg.AllowedExtensions {
		n.allowedExt[strings.ToLower(ext)] = true
	}
	for _, mime := range cfg.AllowedMimeTypes {
		n.allowedMime[strings.ToLower(mime)] = true
	}
	return n
}

// Normalize builds the descriptor for an attachment. Pure apart from the
// clock used to synthesize filenames.
func (n *Normalizer) Normalize(att domain.Attachment, kind domain.MessageKind) domain.FileDescriptor {
	ext := resolveExtension(att)
	name := n.resolveFileName(att, kind, ext)
	mime := resolveMimeType(att, ext)
	category := resolveCategory(ext, mime)

	return domain.FileDescriptor{
		FileID:      att.FileID,
		FileName:    name,
		Size:        att.Size,
		MimeType:    mime,
		Extension:   ext,
		Category:    category,
		Processable: n.processable(ext, mime, category, att.Size),
	}
}

func resolveExtension(att domain.Attachment) string {
	if att.FileName != "" {
		if idx := strings.LastIndex(att.FileName, "."); idx >= 0 && idx < len(att.FileName)-1 {
			return strings.ToLower(att.FileName[idx+1:])
		}
	}
	if ext, ok := mimeToExt[strings.ToLower(att.MimeType)]; ok {
		return ext
	}
	return "bin"
}

func (n *Normalizer) resolveFileName(att domain.Attachment, kind domain.MessageKind, ext string) string {
	if att.FileName != "" {
		return att.FileName
	}
	stem, ok := kindNames[kind]
	if !ok {
		stem = "file"
	}
	return fmt.Sprintf("%s_%s.%s", stem, n.now().Format("20060102_150405"), ext)
}

func resolveMimeType(att domain.Attachment, ext string) string {
	if att.MimeType != "" {
		return att.MimeType
	}
	if mime, ok := extToMime[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

func resolveCategory(ext, mime string) domain.FileCategory {
	switch {
	case imageExtensions[ext] || strings.HasPrefix(mime, "image/"):
		return domain.CategoryImage
	case ext == "pdf" || mime == "application/pdf":
		return domain.CategoryPDF
	case documentExtensions[ext]:
		return domain.CategoryDocument
	default:
		return domain.CategoryUnknown
	}
}

// processable applies the allow-lists and size ceiling. A MIME type on the
// allow-list accepts files whose extension is not listed (camera uploads
// with uncommon extensions).
func (n *Normalizer) processable(ext, mime string, category domain.FileCategory, size int64) bool {
	if category == domain.CategoryUnknown {
		return false
	}
	if size > n.cfg.MaxFileSize {
		return false
	}
	if n.allowedExt[ext] {
		return true
	}
	return n.allowedMime[strings.ToLower(mime)]
}

// RejectReason returns the user-facing reason a descriptor cannot be
// processed, or the empty string if it can.
func (n *Normalizer) RejectReason(d domain.FileDescriptor) string {
	switch {
	case d.Processable:
		return ""
	case d.Size > n.cfg.MaxFileSize:
		return fmt.Sprintf("El archivo supera el tamaño máximo permitido (%d MB).", n.cfg.MaxFileSize>>20)
	case d.Category == domain.CategoryUnknown:
		return "El tipo de archivo no es reconocido. Envíe un PDF, imagen o documento de oficina."
	default:
		return fmt.Sprintf("La extensión .%s no está permitida.", d.Extension)
	}
}
