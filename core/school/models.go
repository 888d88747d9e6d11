package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/almajirisurvey/backend/core"
)

// Statuses
const (
	StatusDraft      = "DRAFT"
	StatusPublished  = "PUBLISHED"
	StatusIncomplete = "INCOMPLETE"
)

// School is the aggregate root for a surveyed school. It owns the embedded
// HeadTeacher, SchoolStructure and Student records; students are only ever
// reached through their school.
type School struct {
	ID            string    `bson:"_id,omitempty" json:"_id,omitempty"`
	SchoolCode    string    `bson:"schoolCode" json:"schoolCode"`
	Name          string    `bson:"name" json:"name"`
	Address       string    `bson:"address" json:"address"`
	Phone         string    `bson:"phone" json:"phone"`
	Email         string    `bson:"email,omitempty" json:"email,omitempty"`
	LGA           string    `bson:"lga" json:"lga"`
	District      string    `bson:"district" json:"district"`
	Ward          string    `bson:"ward" json:"ward"`
	Village       string    `bson:"village,omitempty" json:"village,omitempty"`
	Community     string    `bson:"community,omitempty" json:"community,omitempty"`
	YearsInSchool *core.FlexInt `bson:"yearsInSchool,omitempty" json:"yearsInSchool,omitempty"`
	Status        string    `bson:"status" json:"status"`
	InterviewerID string    `bson:"interviewerId" json:"interviewerId"`

	HeadTeacher     *HeadTeacher     `bson:"headTeacher,omitempty" json:"headTeacher,omitempty"`
	SchoolStructure *SchoolStructure `bson:"schoolStructure,omitempty" json:"schoolStructure,omitempty"`
	Students        []Student        `bson:"students" json:"students"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"` // UTC
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"` // UTC
}

// HeadTeacher is the demographic and socioeconomic profile of a school's head
// teacher; at most one per school.
type HeadTeacher struct {
	Name             string          `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Phone            string          `bson:"phone" json:"phone" validate:"required,ngphone"`
	Nationality      string          `bson:"nationality" json:"nationality" validate:"required"`
	MaritalStatus    string          `bson:"maritalStatus" json:"maritalStatus" validate:"required,oneof=SINGLE MARRIED DIVORCED WIDOWED"`
	NumberOfWives    core.FlexInt    `bson:"numberOfWives" json:"numberOfWives" validate:"min=0,max=10"`
	Age              core.FlexInt    `bson:"age" json:"age" validate:"required,min=18,max=120"`
	EducationLevel   string          `bson:"educationLevel" json:"educationLevel" validate:"required,oneof=EARLY_CHILDHOOD PRIMARY LOWER_SECONDARY UPPER_SECONDARY HIGHER QURANIC OTHER"`
	OtherEducation   string          `bson:"otherEducation,omitempty" json:"otherEducation,omitempty"`
	NumberOfChildren core.FlexInt    `bson:"numberOfChildren" json:"numberOfChildren" validate:"min=0,max=50"`
	SourcesOfIncome  []string        `bson:"sourcesOfIncome" json:"sourcesOfIncome" validate:"required,min=1"`
	OtherIncome      string          `bson:"otherIncome,omitempty" json:"otherIncome,omitempty"`
	MonthlyIncome    core.FlexFloat  `bson:"monthlyIncome" json:"monthlyIncome" validate:"min=0"`
	PictureURL       string          `bson:"pictureUrl,omitempty" json:"pictureUrl,omitempty" validate:"omitempty,url"`
}

// SchoolStructure is the facility/operations profile. Boolean hasX flags gate
// their optional xDetail companions; the booleans are the queryable layer.
type SchoolStructure struct {
	HasClasses      bool          `bson:"hasClasses" json:"hasClasses"`
	NumberOfClasses *core.FlexInt `bson:"numberOfClasses,omitempty" json:"numberOfClasses,omitempty" validate:"omitempty,min=0,max=100"`
	StudentsPerClass *core.FlexInt `bson:"studentsPerClass,omitempty" json:"studentsPerClass,omitempty" validate:"omitempty,min=0,max=100"`
	NumberOfTeachers core.FlexInt `bson:"numberOfTeachers" json:"numberOfTeachers" validate:"min=0,max=1000"`
	NumberOfPupils   core.FlexInt `bson:"numberOfPupils" json:"numberOfPupils" validate:"min=0,max=10000"`

	HasIntervention  bool   `bson:"hasIntervention" json:"hasIntervention"`
	InterventionType string `bson:"interventionType,omitempty" json:"interventionType,omitempty"`

	HasToilets       bool          `bson:"hasToilets" json:"hasToilets"`
	NumberOfToilets  *core.FlexInt `bson:"numberOfToilets,omitempty" json:"numberOfToilets,omitempty" validate:"omitempty,min=0,max=100"`
	ToiletPictureURL string        `bson:"toiletPictureUrl,omitempty" json:"toiletPictureUrl,omitempty" validate:"omitempty,url"`

	FeedsPupils     bool     `bson:"feedsPupils" json:"feedsPupils"`
	FoodSources     []string `bson:"foodSources" json:"foodSources" validate:"required,min=1"`
	OtherFoodSource string   `bson:"otherFoodSource,omitempty" json:"otherFoodSource,omitempty"`

	TakesCareOfMedicalBills bool   `bson:"takesCareOfMedicalBills" json:"takesCareOfMedicalBills"`
	MedicalFundsSource      string `bson:"medicalFundsSource,omitempty" json:"medicalFundsSource,omitempty"`
	MedicalCareProvider     string `bson:"medicalCareProvider,omitempty" json:"medicalCareProvider,omitempty"`
	SanitaryCareProvider    string `bson:"sanitaryCareProvider" json:"sanitaryCareProvider" validate:"required"`

	LostPupilAction string   `bson:"lostPupilAction" json:"lostPupilAction" validate:"required"`
	StudyTime       string   `bson:"studyTime" json:"studyTime" validate:"required"`
	StudyTimes      []string `bson:"studyTimes" json:"studyTimes" validate:"required,min=1"`

	ProvidesSleepingPlace   bool   `bson:"providesSleepingPlace" json:"providesSleepingPlace"`
	SleepingPlaceLocation   string `bson:"sleepingPlaceLocation,omitempty" json:"sleepingPlaceLocation,omitempty"`
	SleepingPlacePictureURL string `bson:"sleepingPlacePictureUrl,omitempty" json:"sleepingPlacePictureUrl,omitempty" validate:"omitempty,url"`

	HasOtherStatePupils  bool   `bson:"hasOtherStatePupils" json:"hasOtherStatePupils"`
	OtherStatesCountries string `bson:"otherStatesCountries,omitempty" json:"otherStatesCountries,omitempty"`

	HasParentAgreements bool   `bson:"hasParentAgreements" json:"hasParentAgreements"`
	AgreementType       string `bson:"agreementType,omitempty" json:"agreementType,omitempty" validate:"omitempty,oneof=WRITTEN VERBAL"`

	AllowsBegging bool   `bson:"allowsBegging" json:"allowsBegging"`
	BeggingReason string `bson:"beggingReason,omitempty" json:"beggingReason,omitempty"`
}

// Student is an embedded list item under School. IDs are stable per-item
// identifiers local to the owning school, assigned server-side; students are
// never stored as an independent collection.
type Student struct {
	ID                   string          `bson:"_id,omitempty" json:"_id,omitempty"`
	Name                 string          `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Age                  core.FlexInt    `bson:"age" json:"age" validate:"min=0,max=25"`
	Gender               string          `bson:"gender" json:"gender" validate:"required,oneof=MALE FEMALE"`
	PermanentHomeAddress string          `bson:"permanentHomeAddress" json:"permanentHomeAddress" validate:"required,min=5,max=500"`
	Nationality          string          `bson:"nationality" json:"nationality" validate:"required"`
	State                string          `bson:"state" json:"state" validate:"required"`
	LGA                  string          `bson:"lga" json:"lga" validate:"required"`
	TownVillage          string          `bson:"townVillage" json:"townVillage" validate:"required"`
	FathersContactNumber string          `bson:"fathersContactNumber" json:"fathersContactNumber" validate:"required,ngphone"`
	IsBegging            bool            `bson:"isBegging" json:"isBegging"`
	NIN                  string          `bson:"nin,omitempty" json:"nin,omitempty"`
	PictureURL           string          `bson:"pictureUrl,omitempty" json:"pictureUrl,omitempty" validate:"omitempty,url"`
	ParentName           string          `bson:"parentName" json:"parentName" validate:"required"`
	ParentPhone          string          `bson:"parentPhone" json:"parentPhone" validate:"required,ngphone"`
	ParentOccupation     string          `bson:"parentOccupation" json:"parentOccupation" validate:"required"`
	FamilyIncome         *core.FlexFloat `bson:"familyIncome,omitempty" json:"familyIncome,omitempty" validate:"omitempty,min=0"`
	EnrollmentDate       core.FlexTime   `bson:"enrollmentDate" json:"enrollmentDate" validate:"required"`
	AttendanceRate       *core.FlexFloat `bson:"attendanceRate" json:"attendanceRate" validate:"required,min=0,max=100"`
	AcademicPerformance  string          `bson:"academicPerformance,omitempty" json:"academicPerformance,omitempty" validate:"omitempty,oneof=EXCELLENT GOOD AVERAGE BELOW_AVERAGE"`
	HasSpecialNeeds      bool            `bson:"hasSpecialNeeds" json:"hasSpecialNeeds"`
	SpecialNeedsType     string          `bson:"specialNeedsType,omitempty" json:"specialNeedsType,omitempty"`
	ReceivesScholarship  bool            `bson:"receivesScholarship" json:"receivesScholarship"`
	ScholarshipType      string          `bson:"scholarshipType,omitempty" json:"scholarshipType,omitempty"`
	HealthStatus         string          `bson:"healthStatus,omitempty" json:"healthStatus,omitempty" validate:"omitempty,oneof=EXCELLENT GOOD FAIR POOR"`
}

// NewSchool is the strict creation contract: head teacher, structure and at
// least one student are required.
type NewSchool struct {
	SchoolCode    string        `json:"schoolCode" validate:"required"`
	Name          string        `json:"name" validate:"required,min=2,max=200"`
	Address       string        `json:"address" validate:"required,min=5,max=500"`
	Phone         string        `json:"phone" validate:"required,ngphone"`
	Email         string        `json:"email" validate:"omitempty,email"`
	LGA           string        `json:"lga" validate:"required"`
	District      string        `json:"district" validate:"required"`
	Ward          string        `json:"ward" validate:"required"`
	Village       string        `json:"village"`
	Community     string        `json:"community"`
	YearsInSchool *core.FlexInt `json:"yearsInSchool" validate:"omitempty,min=0,max=100"`

	HeadTeacher     *HeadTeacher     `json:"headTeacher" validate:"required"`
	SchoolStructure *SchoolStructure `json:"schoolStructure" validate:"required"`
	Students        []Student        `json:"students" validate:"required,min=1,dive"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.SchoolCode = core.CleanString(ns.SchoolCode)
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

// UpdateSchool is a partial update; nil/empty fields keep their current value.
type UpdateSchool struct {
	SchoolCode    string        `json:"schoolCode"`
	Name          string        `json:"name" validate:"omitempty,min=2,max=200"`
	Address       string        `json:"address" validate:"omitempty,min=5,max=500"`
	Phone         string        `json:"phone" validate:"omitempty,ngphone"`
	Email         string        `json:"email" validate:"omitempty,email"`
	LGA           string        `json:"lga"`
	District      string        `json:"district"`
	Ward          string        `json:"ward"`
	Village       string        `json:"village"`
	Community     string        `json:"community"`
	YearsInSchool *core.FlexInt `json:"yearsInSchool" validate:"omitempty,min=0,max=100"`
	Status        string        `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED INCOMPLETE"`

	HeadTeacher     *HeadTeacher     `json:"headTeacher"`
	SchoolStructure *SchoolStructure `json:"schoolStructure"`
	Students        []Student        `json:"students" validate:"omitempty,dive"`
}

func (us *UpdateSchool) Validate(validate *validator.Validate) error {
	us.SchoolCode = core.CleanString(us.SchoolCode)
	us.Name = core.CleanString(us.Name)
	us.Email = core.CleanString(us.Email, true /* lower */)
	return validate.Struct(us)
}

// QueryFilter narrows school listings. Search matches name, address or
// schoolCode case-insensitively.
type QueryFilter struct {
	Search        string `query:"search"`
	LGA           string `query:"lga"`
	Status        string `query:"status"`
	InterviewerID string `query:"interviewerId"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// StudentFilter refines the flattened cross-school student listing; school
// level filters apply before unwinding, student-level ones after.
type StudentFilter struct {
	School    QueryFilter
	SchoolID  string `query:"schoolId"`
	Gender    string `query:"gender"`
	IsBegging *bool  `query:"isBegging"`
	AgeRange  core.AgeRange
}

// StudentRow is one flattened student with its owning school's summary
// attached.
type StudentRow struct {
	SchoolID     string  `bson:"schoolId" json:"schoolId"`
	SchoolCode   string  `bson:"schoolCode" json:"schoolCode"`
	SchoolName   string  `bson:"schoolName" json:"schoolName"`
	SchoolLGA    string  `bson:"schoolLga" json:"schoolLga"`
	SchoolStatus string  `bson:"schoolStatus" json:"schoolStatus"`
	Student      Student `bson:"student" json:"student"`
}
