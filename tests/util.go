package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/beggar"
	"github.com/almajirisurvey/backend/core/school"
	"github.com/almajirisurvey/backend/core/user"
)

// NopLogger discards everything; tests assert on behavior, not log output.
type NopLogger struct{}

func (NopLogger) Enable(bool)                        {}
func (NopLogger) Debug(string, ...interface{})       {}
func (NopLogger) Info(string, ...interface{})        {}
func (NopLogger) Warn(string, ...interface{})        {}
func (NopLogger) Error(string, ...interface{})       {}
func (NopLogger) Fatal(string, ...interface{})       {}

var _ core.Logger = NopLogger{}

// NewValidator returns a validator with the app's custom tags registered.
func NewValidator(t *testing.T) (*validator.Validate, ut.Translator) {
	t.Helper()

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	return validate, translator
}

// NewConfig returns a self-contained test configuration; nothing is read from
// the environment.
func NewConfig(t *testing.T) *core.Config {
	t.Helper()

	return &core.Config{
		Debug:    true,
		TestMode: true,
		Env:      "TEST",
		AppName:  "AlmajiriSurvey",
		Build:    "test",
		Server: core.ServerConfig{
			Host:            "localhost",
			Address:         ":0",
			ShutdownTimeout: 5 * time.Second,
		},
		Auth: core.AuthConfig{
			AccessSecret:       "test-access-secret",
			RefreshSecret:      "test-refresh-secret",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Upload: core.UploadConfig{
			Dir:              t.TempDir(),
			MaxFileSize:      1 << 20,
			AllowedMimeTypes: []string{"image/jpeg", "image/png", "text/csv"},
		},
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, interviewerID, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		InterviewerID: interviewerID,
		Name:          name,
		Email:         email,
		LGA:           "Kano Municipal",
		Role:          role,
		IsActive:      isActive,
		CreatedAt:     tstamp,
		UpdatedAt:     tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// SchoolPayload returns a valid NewSchool with a single enrolled student.
func SchoolPayload(code string) school.NewSchool {
	rate := core.FlexFloat(85.5)
	return school.NewSchool{
		SchoolCode: code,
		Name:       "Tsangaya Model School " + code,
		Address:    "12 Kofar Mata Road, Kano",
		Phone:      "+2348031234567",
		LGA:        "Kano Municipal",
		District:   "Kofar Mata",
		Ward:       "Ward A",
		Village:    "Kofar Mata",
		Community:  "Tsangaya",
		HeadTeacher: &school.HeadTeacher{
			Name:            "Mallam Sani",
			Phone:           "+2348039876543",
			Nationality:     "Nigerian",
			MaritalStatus:   "MARRIED",
			Age:             45,
			EducationLevel:  "QURANIC",
			SourcesOfIncome: []string{"FARMING"},
			MonthlyIncome:   35000,
		},
		SchoolStructure: &school.SchoolStructure{
			NumberOfTeachers:     12,
			NumberOfPupils:       240,
			FeedsPupils:          true,
			FoodSources:          []string{"PARENTS"},
			SanitaryCareProvider: "SCHOOL",
			LostPupilAction:      "REPORT_TO_PARENTS",
			StudyTime:            "MORNING",
			StudyTimes:           []string{"MORNING"},
			HasParentAgreements:  true,
			AgreementType:        "VERBAL",
		},
		Students: []school.Student{
			{
				Name:                 "Abdullahi Musa",
				Age:                  10,
				Gender:               "MALE",
				PermanentHomeAddress: "7 Gwale Road, Kano",
				Nationality:          "Nigerian",
				State:                "Kano",
				LGA:                  "Gwale",
				TownVillage:          "Gwale",
				FathersContactNumber: "+2348021112233",
				ParentName:           "Musa Ibrahim",
				ParentPhone:          "+2348021112233",
				ParentOccupation:     "Farmer",
				EnrollmentDate:       core.FlexTime{Time: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)},
				AttendanceRate:       &rate,
				AcademicPerformance:  "GOOD",
				HealthStatus:         "GOOD",
			},
		},
	}
}

// BeggarPayload returns a valid NewBeggar.
func BeggarPayload(beggarID string) beggar.NewBeggar {
	return beggar.NewBeggar{
		BeggarID:             beggarID,
		Name:                 "Usman Garba",
		Age:                  core.FlexInt(12),
		Sex:                  "MALE",
		Nationality:          "Nigerian",
		StateOfOrigin:        "Kano",
		LGA:                  "Dala",
		TownVillage:          "Dala",
		PermanentHomeAddress: "45 Dala Hill Road, Kano",
		FathersContactNumber: "+2348034445566",
		IsBegging:            true,
		ReasonForBegging:     "POVERTY",
	}
}
