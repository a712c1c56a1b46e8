package imagestore

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FieldImageURL is the logical field name used to look records up by source URL.
const FieldImageURL = "imageUrl"

// ImageRecord is a persisted image blob keyed by the URL it was downloaded from.
type ImageRecord struct {
	bun.BaseModel `bun:"table:images,alias:img"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	ImageURL  string    `bun:"image_url,notnull" json:"image_url"`
	ImageData []byte    `bun:"image_data" json:"-"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// NewImageRecord builds a record with a fresh ID.
func NewImageRecord(url string, data []byte) *ImageRecord {
	return &ImageRecord{
		ID:        uuid.New(),
		ImageURL:  url,
		ImageData: data,
		CreatedAt: time.Now().UTC(),
	}
}

// columns maps logical field names onto table columns.
var columns = map[string]string{
	FieldImageURL: "image_url",
	"image_url":   "image_url",
	"id":          "id",
}
