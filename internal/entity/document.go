package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
)

// Document represents an uploaded maintenance document for data transfer
// between layers.
type Document struct {
	ID               uuid.UUID                  `json:"id"`
	Filename         string                     `json:"filename"`
	FileType         constants.FileType         `json:"file_type"`
	FileSize         int64                      `json:"file_size"`
	UploadDate       time.Time                  `json:"upload_date"`
	Processed        bool                       `json:"processed"`
	ProcessingStatus constants.ProcessingStatus `json:"processing_status"`
	RawText          *string                    `json:"raw_text,omitempty"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

// Extension returns the on-disk extension for the document, preferring the
// one carried by the original filename.
func (d *Document) Extension() string {
	if i := lastDot(d.Filename); i >= 0 {
		return "." + constants.NormalizeExt(d.Filename[i:])
	}
	if ext, ok := constants.FileTypeToExt[d.FileType]; ok {
		return ext
	}
	return ".txt"
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
