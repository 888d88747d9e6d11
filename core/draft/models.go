package draft

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/almajirisurvey/backend/core"
)

// Draft types
const (
	TypeSchool = "SCHOOL"
	TypeBeggar = "BEGGAR"
)

// Draft is an in-progress survey form autosaved from the field. Data is an
// opaque client-shaped document; the server never validates it against the
// final form schemas. Drafts are private to their interviewer, admins included.
type Draft struct {
	ID            string          `bson:"_id,omitempty" json:"_id,omitempty"`
	DraftID       string          `bson:"draftId" json:"draftId"`
	Type          string          `bson:"type" json:"type"`
	Data          json.RawMessage `bson:"data" json:"data"`
	InterviewerID string          `bson:"interviewerId" json:"interviewerId"`
	LastSaved     time.Time       `bson:"lastSaved" json:"lastSaved"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"` // UTC
	UpdatedAt     time.Time       `bson:"updatedAt" json:"updatedAt"` // UTC
}

// NewDraft contains information needed to create a Draft explicitly. The
// draftId is chosen by the client and is unique per interviewer, not globally.
type NewDraft struct {
	DraftID string          `json:"draftId" validate:"required"`
	Type    string          `json:"type" validate:"required,oneof=SCHOOL BEGGAR"`
	Data    json.RawMessage `json:"data" validate:"required"`
}

func (nd *NewDraft) Validate(validate *validator.Validate) error {
	nd.DraftID = core.CleanString(nd.DraftID)
	return validate.Struct(nd)
}

// SaveDraft is the autosave payload: same shape as NewDraft but processed as
// an idempotent upsert keyed on (draftId, interviewerId).
type SaveDraft NewDraft

func (sd *SaveDraft) Validate(validate *validator.Validate) error {
	return (*NewDraft)(sd).Validate(validate)
}

// UpdateDraft replaces the data blob of an existing draft.
type UpdateDraft struct {
	Data json.RawMessage `json:"data" validate:"required"`
}

func (ud UpdateDraft) Validate(validate *validator.Validate) error {
	return validate.Struct(ud)
}

// QueryFilter narrows draft listings; the owning interviewer is always implied
// by the caller and never part of the filter surface.
type QueryFilter struct {
	Type string `query:"type"`
}
