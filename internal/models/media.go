package models

import "strings"

type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
	KindImage MediaKind = "image"
	KindPDF   MediaKind = "pdf"
)

// ParseMediaKind accepts either a declared kind ("video") or a MIME type
// ("video/mp4", "application/pdf").
func ParseMediaKind(s string) (MediaKind, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(v, "/"); i > 0 {
		prefix := v[:i]
		switch prefix {
		case "video", "audio", "image":
			v = prefix
		default:
			if v == "application/pdf" {
				v = "pdf"
			}
		}
	}
	switch MediaKind(v) {
	case KindVideo, KindAudio, KindImage, KindPDF:
		return MediaKind(v), true
	}
	return "", false
}

// TimeBased reports whether the kind carries a timeline. Time-based media is
// analyzed one call per item with its own transcript; static media is batched.
func (k MediaKind) TimeBased() bool {
	return k == KindVideo || k == KindAudio
}

type MediaItem struct {
	ID       string    `json:"id"`
	Kind     MediaKind `json:"kind"`
	MimeType string    `json:"mimeType"`
	Data     []byte    `json:"data"` // base64 on the wire
	Comment  string    `json:"comment,omitempty"`
}

func (m MediaItem) HasContent() bool { return len(m.Data) > 0 }

// DefaultMimeType fills in a generic MIME type when the client only declared
// a kind.
func (m MediaItem) DefaultMimeType() string {
	if m.MimeType != "" {
		return m.MimeType
	}
	switch m.Kind {
	case KindVideo:
		return "video/mp4"
	case KindAudio:
		return "audio/mpeg"
	case KindImage:
		return "image/png"
	case KindPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}
