package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/almajirisurvey/backend/core"
)

var (
	// errors
	ErrNotFound            = errors.New("user not found")
	ErrEmailExists         = errors.New("Email already exists")
	ErrInterviewerIDExists = errors.New("Interviewer ID already exists")
	ErrInvalidCredentials  = errors.New("Invalid credentials")
	ErrAccountDeactivated  = errors.New("Account is deactivated")
	ErrPasswordMismatch    = errors.New("Current password is incorrect")

	errIDGenExhausted = errors.New("could not generate a unique interviewer id")
)

// maxIDGenAttempts bounds the random-identifier collision retry loop.
const maxIDGenAttempts = 10

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, interviewerID, email string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByInterviewerID(ctx context.Context, interviewerID string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// FilterUsers applies AND on available QueryFilter fields, sorted
		// newest-created-first, and returns the page plus the total match count.
		FilterUsers(ctx context.Context, filter QueryFilter, page core.Page) ([]User, int64, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		UpdateLastLogin(ctx context.Context, id string, at time.Time) error
		UpdatePassword(ctx context.Context, id string, hash []byte) error
		DeleteUser(ctx context.Context, id string) error
		CountUsers(ctx context.Context) (int64, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(interviewerID, email string) error {
	if err := svc.repo.CheckUniqueness(context.Background(), interviewerID, email); err != nil {
		var field string
		switch err {
		case ErrInterviewerIDExists:
			field = "interviewerId"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// generateInterviewerID mints identifiers of the form <prefix>##### with 5
// random digits, retrying on collision. The retry loop is bounded; exhausting
// it means the id space is saturated and the operation fails loudly.
func (svc *Service) generateInterviewerID(ctx context.Context, prefix string) (string, error) {
	for attempt := 0; attempt < maxIDGenAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(90000))
		if err != nil {
			return "", err
		}
		id := fmt.Sprintf("%s%05d", prefix, n.Int64()+10000)
		if _, err = svc.repo.GetUserByInterviewerID(ctx, id); err == ErrNotFound {
			return id, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", errIDGenExhausted
}

// Register creates a self-service INTERVIEWER account with a generated
// INT##### identifier. Fails with an email-conflict validation error if the
// email is already in use.
func (svc *Service) Register(ctx context.Context, ru RegisterUser) (User, error) {
	if _, err := svc.repo.GetUserByEmail(ctx, ru.Email); err == nil {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if err != ErrNotFound {
		return User{}, err
	}

	id, err := svc.generateInterviewerID(ctx, "INT")
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		InterviewerID: id,
		Name:          ru.Name,
		Email:         ru.Email,
		Role:          RoleInterviewer,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err = usr.SetPassword(ru.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

// CreateAdmin provisions an ADMIN account with a generated ADMIN#####
// identifier. Exposure of this operation is a deployment-time concern; it is
// not routed over HTTP.
func (svc *Service) CreateAdmin(ctx context.Context, na NewAdmin) (User, error) {
	if _, err := svc.repo.GetUserByEmail(ctx, na.Email); err == nil {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if err != ErrNotFound {
		return User{}, err
	}

	id, err := svc.generateInterviewerID(ctx, "ADMIN")
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		InterviewerID: id,
		Name:          na.Name,
		Email:         na.Email,
		Phone:         na.Phone,
		LGA:           na.LGA,
		Role:          RoleAdmin,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err = usr.SetPassword(na.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Create is the admin path: any role, explicit interviewer id.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		InterviewerID: nu.InterviewerID,
		Name:          nu.Name,
		Email:         nu.Email,
		Phone:         nu.Phone,
		LGA:           nu.LGA,
		Role:          nu.Role,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) authenticate(ctx context.Context, usr User, err error, pwd string) (User, error) {
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	if usr.CheckPassword(pwd) != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = time.Now().UTC()
	if err = svc.repo.UpdateLastLogin(ctx, usr.ID, usr.LastLogin); err != nil {
		return User{}, err
	}
	return usr, nil
}

// Authenticate verifies interviewer credentials and stamps lastLogin.
func (svc *Service) Authenticate(ctx context.Context, interviewerID, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByInterviewerID(ctx, core.CleanString(interviewerID))
	return svc.authenticate(ctx, usr, err, pwd)
}

// AuthenticateAdmin verifies email credentials and requires the ADMIN role.
func (svc *Service) AuthenticateAdmin(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	usr, err = svc.authenticate(ctx, usr, err, pwd)
	if err != nil {
		return User{}, err
	}
	if !usr.IsAdmin() {
		return User{}, core.NewPermissionError("admin access required")
	}
	return usr, nil
}

// Refresh re-resolves the user behind verified refresh claims; it fails if the
// user no longer exists or was deactivated since issuance.
func (svc *Service) Refresh(ctx context.Context, claims *Claims) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidToken
		}
		return User{}, err
	}
	if !usr.IsActive {
		return User{}, ErrInvalidToken
	}
	return usr, nil
}

// ChangePassword replaces usr's password after verifying the current one.
func (svc *Service) ChangePassword(ctx context.Context, usr User, cp ChangePassword) error {
	if usr.CheckPassword(cp.CurrentPassword) != nil {
		return core.NewValidationError(ErrPasswordMismatch,
			core.FieldError{Field: "currentPassword", Error: ErrPasswordMismatch.Error()})
	}
	if err := usr.SetPassword(cp.NewPassword); err != nil {
		return err
	}
	return svc.repo.UpdatePassword(ctx, usr.ID, usr.PasswordHash)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, page core.Page) ([]User, int64, error) {
	return svc.repo.FilterUsers(ctx, filter, page)
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:            id,
		InterviewerID: uu.InterviewerID,
		Name:          uu.Name,
		Email:         uu.Email,
		Phone:         uu.Phone,
		LGA:           uu.LGA,
		Role:          uu.Role,
		UpdatedAt:     time.Now().UTC(),
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

// ToggleActive flips the activation flag and returns the updated user.
func (svc *Service) ToggleActive(ctx context.Context, id string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	active := !usr.IsActive
	return svc.repo.UpdateUser(ctx, User{ID: id, UpdatedAt: time.Now().UTC()}, &active)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteUser(ctx, id)
}

func (svc *Service) Count(ctx context.Context) (int64, error) {
	return svc.repo.CountUsers(ctx)
}
