package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/almajirisurvey/backend/core"
)

// Roles
const (
	RoleInterviewer = "INTERVIEWER"
	RoleSupervisor  = "SUPERVISOR"
	RoleAdmin       = "ADMIN"
)

var AllRoles = []string{RoleInterviewer, RoleSupervisor, RoleAdmin}

// passwordHashCost matches the slow adaptive hash factor used for all accounts.
const passwordHashCost = 12

// User is an identity record. Every survey record owner is identified by
// InterviewerID regardless of seniority; ADMIN accounts carry one too.
type User struct {
	ID            string    `bson:"_id,omitempty" json:"_id,omitempty"`
	InterviewerID string    `bson:"interviewerId" json:"interviewerId"`
	Name          string    `bson:"name" json:"name"`
	Email         string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone         string    `bson:"phone,omitempty" json:"phone,omitempty"`
	LGA           string    `bson:"lga" json:"lga"`
	Role          string    `bson:"role" json:"role"`
	PasswordHash  []byte    `bson:"passwordHash,omitempty" json:"-"`
	IsActive      bool      `bson:"isActive" json:"isActive"`
	LastLogin     time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"` // UTC
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), passwordHashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsSupervisor() bool {
	return u.Role == RoleSupervisor || u.Role == RoleAdmin
}

// Owns reports whether u owns a record stamped with interviewerID, or may act
// on it as an admin.
func (u *User) Owns(interviewerID string) bool {
	return u.InterviewerID == interviewerID || u.IsAdmin()
}

// RegisterUser contains information needed for self-service registration.
// The interviewer identifier is generated server-side.
type RegisterUser struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

func (ru *RegisterUser) Validate(validate *validator.Validate) error {
	ru.Name = core.CleanString(ru.Name)
	ru.Email = core.CleanString(ru.Email, true /* lower */)
	return validate.Struct(ru)
}

// NewAdmin contains information needed to provision an ADMIN account.
type NewAdmin struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	Phone    string `json:"phone" validate:"omitempty,ngphone"`
	LGA      string `json:"lga"`
}

func (na *NewAdmin) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	return validate.Struct(na)
}

// NewUser contains information needed by an admin to create a User of any role.
type NewUser struct {
	InterviewerID string `json:"interviewerId" validate:"required,interviewerid"`
	Name          string `json:"name" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"omitempty,ngphone"`
	LGA           string `json:"lga" validate:"required"`
	Role          string `json:"role" validate:"omitempty,oneof=INTERVIEWER SUPERVISOR ADMIN"`
	Password      string `json:"password" validate:"required,min=6,max=100"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.InterviewerID = core.CleanString(nu.InterviewerID)
	if nu.Role == "" {
		nu.Role = RoleInterviewer
	}
	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.InterviewerID, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	InterviewerID string `json:"interviewerId" validate:"omitempty,interviewerid"`
	Name          string `json:"name" validate:"omitempty,min=2,max=100"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"omitempty,ngphone"`
	LGA           string `json:"lga"`
	Role          string `json:"role" validate:"omitempty,oneof=INTERVIEWER SUPERVISOR ADMIN"`
	IsActive      *bool  `json:"isActive"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc *Service) error {
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.InterviewerID = core.CleanString(uu.InterviewerID)
	if err := validate.Struct(uu); err != nil {
		return err
	}

	// re-check natural keys only when they change
	iid, email := uu.InterviewerID, uu.Email
	if iid == origUsr.InterviewerID {
		iid = ""
	}
	if email == origUsr.Email {
		email = ""
	}
	if iid == "" && email == "" {
		return nil
	}
	return svc.checkUniqueness(iid, email)
}

// ChangePassword requires the current password to verify before replacing it.
type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required,min=6"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=100"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

// QueryFilter narrows user listings. Search does a case-insensitive match on
// one of Name, InterviewerID or Email.
type QueryFilter struct {
	Search   string `query:"search"`
	Role     string `query:"role"`
	LGA      string `query:"lga"`
	IsActive *bool  `query:"isActive"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
