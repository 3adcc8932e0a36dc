package receipt

import "time"

// ContentType is the MIME type of an uploaded receipt blob.
type ContentType string

const (
	ContentTypeJPG ContentType = "image/jpeg"
	ContentTypePNG ContentType = "image/png"
	ContentTypePDF ContentType = "application/pdf"
)

// Allowed reports whether the content type may be stored as a receipt.
func (c ContentType) Allowed() bool {
	switch c {
	case ContentTypeJPG, ContentTypePNG, ContentTypePDF:
		return true
	}
	return false
}

const (
	// MaxFileSizeBytes is the largest receipt blob accepted.
	MaxFileSizeBytes int64 = 10 * 1024 * 1024
	// MinFileSizeBytes guards against truncated uploads.
	MinFileSizeBytes int64 = 1024
)

// Resource is a receipt reference as submitted by the client. A resource
// without an ID refers to a fresh upload sitting under the temporary prefix.
type Resource struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name"`
	ContentType ContentType `json:"contentType,omitempty"`
	Size        int64       `json:"size,omitempty"`
}

// Detail is a receipt as persisted on the owning expense record. The ID is
// minted server-side and doubles as the blob key under the permanent prefix.
type Detail struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ContentType ContentType `json:"contentType"`
	Size        int64       `json:"size"`
}

// HeadDetails is the blob metadata returned by a store lookup.
type HeadDetails struct {
	ContentType   string
	ContentLength int64
	LastModified  time.Time
}
