package file

import (
	"time"
)

// RelatedTo kinds
const (
	RelatedSchool = "SCHOOL"
	RelatedBeggar = "BEGGAR"
	RelatedUser   = "USER"
)

// RelatedTo optionally links an uploaded file to a survey record; both fields
// are set or neither is.
type RelatedTo struct {
	Kind string `bson:"type,omitempty" json:"type,omitempty"`
	ID   string `bson:"id,omitempty" json:"id,omitempty"`
}

func (r RelatedTo) IsZero() bool { return r.Kind == "" && r.ID == "" }

// File is the metadata record for an uploaded attachment. Filename is the
// generated on-disk name; OriginalName is what the client sent.
type File struct {
	ID           string    `bson:"_id,omitempty" json:"_id,omitempty"`
	FileID       string    `bson:"fileId" json:"fileId"`
	OriginalName string    `bson:"originalName" json:"originalName"`
	Filename     string    `bson:"filename" json:"filename"`
	MimeType     string    `bson:"mimetype" json:"mimetype"`
	Size         int64     `bson:"size" json:"size"`
	Path         string    `bson:"path" json:"path"`
	URL          string    `bson:"url" json:"url"`
	UploadedBy   string    `bson:"uploadedBy" json:"uploadedBy"`
	RelatedTo    RelatedTo `bson:"relatedTo,omitempty" json:"relatedTo,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"` // UTC
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"` // UTC
}

// Upload describes an incoming attachment. Content is streamed to blob
// storage; it is never buffered in the metadata layer.
type Upload struct {
	OriginalName  string
	MimeType      string
	Size          int64
	RelatedToKind string
	RelatedToID   string
}

// QueryFilter narrows file listings.
type QueryFilter struct {
	UploadedBy    string `query:"uploadedBy"`
	RelatedToKind string `query:"relatedToType"`
	RelatedToID   string `query:"relatedToId"`
}
