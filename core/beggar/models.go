package beggar

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/almajirisurvey/backend/core"
)

// Beggar is a standalone survey record for an individual encountered outside
// any school. BeggarID is the client-chosen natural key.
type Beggar struct {
	ID                   string       `bson:"_id,omitempty" json:"_id,omitempty"`
	BeggarID             string       `bson:"beggarId" json:"beggarId"`
	Name                 string       `bson:"name" json:"name"`
	Age                  core.FlexInt `bson:"age" json:"age"`
	Sex                  string       `bson:"sex" json:"sex"`
	Nationality          string       `bson:"nationality" json:"nationality"`
	StateOfOrigin        string       `bson:"stateOfOrigin" json:"stateOfOrigin"`
	LGA                  string       `bson:"lga" json:"lga"`
	TownVillage          string       `bson:"townVillage" json:"townVillage"`
	PermanentHomeAddress string       `bson:"permanentHomeAddress" json:"permanentHomeAddress"`
	FathersContactNumber string       `bson:"fathersContactNumber,omitempty" json:"fathersContactNumber,omitempty"`
	ContactNumber        string       `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	IsBegging            bool         `bson:"isBegging" json:"isBegging"`
	ReasonForBegging     string       `bson:"reasonForBegging,omitempty" json:"reasonForBegging,omitempty"`
	NIN                  string       `bson:"nin,omitempty" json:"nin,omitempty"`
	PictureURL           string       `bson:"pictureUrl,omitempty" json:"pictureUrl,omitempty"`
	InterviewerID        string       `bson:"interviewerId" json:"interviewerId"`
	CreatedAt            time.Time    `bson:"createdAt" json:"createdAt"` // UTC
	UpdatedAt            time.Time    `bson:"updatedAt" json:"updatedAt"` // UTC
}

// NewBeggar contains information needed to record a Beggar.
type NewBeggar struct {
	BeggarID             string       `json:"beggarId" validate:"required"`
	Name                 string       `json:"name" validate:"required,min=2,max=100"`
	Age                  core.FlexInt `json:"age" validate:"min=0,max=120"`
	Sex                  string       `json:"sex" validate:"required,oneof=MALE FEMALE"`
	Nationality          string       `json:"nationality" validate:"required"`
	StateOfOrigin        string       `json:"stateOfOrigin" validate:"required"`
	LGA                  string       `json:"lga" validate:"required"`
	TownVillage          string       `json:"townVillage" validate:"required"`
	PermanentHomeAddress string       `json:"permanentHomeAddress" validate:"required,min=5,max=500"`
	FathersContactNumber string       `json:"fathersContactNumber" validate:"omitempty,ngphone"`
	ContactNumber        string       `json:"contactNumber" validate:"omitempty,ngphone"`
	IsBegging            bool         `json:"isBegging"`
	ReasonForBegging     string       `json:"reasonForBegging"`
	NIN                  string       `json:"nin"`
	PictureURL           string       `json:"pictureUrl" validate:"omitempty,url"`
}

func (nb *NewBeggar) Validate(validate *validator.Validate) error {
	nb.BeggarID = core.CleanString(nb.BeggarID)
	nb.Name = core.CleanString(nb.Name)
	return validate.Struct(nb)
}

// UpdateBeggar is a partial update; empty fields keep their current value.
type UpdateBeggar struct {
	BeggarID             string        `json:"beggarId"`
	Name                 string        `json:"name" validate:"omitempty,min=2,max=100"`
	Age                  *core.FlexInt `json:"age" validate:"omitempty,min=0,max=120"`
	Sex                  string        `json:"sex" validate:"omitempty,oneof=MALE FEMALE"`
	Nationality          string        `json:"nationality"`
	StateOfOrigin        string        `json:"stateOfOrigin"`
	LGA                  string        `json:"lga"`
	TownVillage          string        `json:"townVillage"`
	PermanentHomeAddress string        `json:"permanentHomeAddress" validate:"omitempty,min=5,max=500"`
	FathersContactNumber string        `json:"fathersContactNumber" validate:"omitempty,ngphone"`
	ContactNumber        string        `json:"contactNumber" validate:"omitempty,ngphone"`
	IsBegging            *bool         `json:"isBegging"`
	ReasonForBegging     string        `json:"reasonForBegging"`
	NIN                  string        `json:"nin"`
	PictureURL           string        `json:"pictureUrl" validate:"omitempty,url"`
}

func (ub *UpdateBeggar) Validate(validate *validator.Validate) error {
	ub.BeggarID = core.CleanString(ub.BeggarID)
	ub.Name = core.CleanString(ub.Name)
	return validate.Struct(ub)
}

// QueryFilter narrows beggar listings. Search matches name or beggarId
// case-insensitively.
type QueryFilter struct {
	Search        string `query:"search"`
	LGA           string `query:"lga"`
	StateOfOrigin string `query:"stateOfOrigin"`
	Sex           string `query:"sex"`
	IsBegging     *bool  `query:"isBegging"`
	InterviewerID string `query:"interviewerId"`
	AgeRange      core.AgeRange
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
