package stats

import (
	"time"
)

// AgeBucketBoundaries are the histogram edges for age distributions; ages at
// or past the last boundary fall into the overflow bucket.
var AgeBucketBoundaries = []int{0, 5, 10, 15, 18, 25, 35, 50, 65}

// AgeOverflowLabel identifies the overflow bucket.
const AgeOverflowLabel = "65+"

// Bucket is one group of a distribution, keyed the way the aggregation
// pipelines key their groups.
type Bucket struct {
	ID    string `bson:"_id" json:"_id"`
	Count int64  `bson:"count" json:"count"`
}

// BoolBucket groups by a boolean dimension (e.g. isBegging).
type BoolBucket struct {
	ID    bool  `bson:"_id" json:"_id"`
	Count int64 `bson:"count" json:"count"`
}

// SchoolSummary is the projection used in recent-activity feeds.
type SchoolSummary struct {
	ID        string    `bson:"_id" json:"_id"`
	Name      string    `bson:"name" json:"name"`
	LGA       string    `bson:"lga,omitempty" json:"lga,omitempty"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// BeggarSummary is the projection used in recent-activity feeds.
type BeggarSummary struct {
	ID        string    `bson:"_id" json:"_id"`
	Name      string    `bson:"name" json:"name"`
	LGA       string    `bson:"lga,omitempty" json:"lga,omitempty"`
	IsBegging bool      `bson:"isBegging" json:"isBegging"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// SchoolFilter narrows the school statistics report.
type SchoolFilter struct {
	LGA    string `query:"lga"`
	Status string `query:"status"`
}

// BeggarFilter narrows the beggar statistics report.
type BeggarFilter struct {
	LGA           string `query:"lga"`
	StateOfOrigin string `query:"stateOfOrigin"`
}

// SchoolAggregates are the raw counts and distributions the storage layer
// produces for the school report; rates are computed by the service.
type SchoolAggregates struct {
	TotalSchools      int64
	PublishedSchools  int64
	DraftSchools      int64
	IncompleteSchools int64
	TotalStudents     int64
	StudentsByGender  []Bucket
	BeggingStudents   int64
	WithToilets       int64
	WithFeeding       int64
	WithSleeping      int64
	ByLGA             []Bucket
	ByStatus          []Bucket
}

// BeggarAggregates are the raw counts and distributions for the beggar report.
type BeggarAggregates struct {
	TotalBeggars    int64
	ActiveBeggars   int64
	InactiveBeggars int64
	AverageAge      float64
	ByAge           []Bucket
	ByGender        []Bucket
	ByNationality   []Bucket
	ByLGA           []Bucket
	ByState         []Bucket
}

// DashboardAggregates feed the cross-domain dashboard.
type DashboardAggregates struct {
	TotalSchools  int64
	TotalBeggars  int64
	TotalUsers    int64
	TotalStudents int64
	RecentSchools []SchoolSummary
	RecentBeggars []BeggarSummary
	SchoolStatus  []Bucket
	BeggarStatus  []BoolBucket
	TopLGAs       []Bucket
}

// SchoolReport is the assembled school statistics response.
type SchoolReport struct {
	Overview struct {
		TotalSchools      int64   `json:"totalSchools"`
		PublishedSchools  int64   `json:"publishedSchools"`
		DraftSchools      int64   `json:"draftSchools"`
		IncompleteSchools int64   `json:"incompleteSchools"`
		CompletionRate    float64 `json:"completionRate"`
	} `json:"overview"`
	Students struct {
		Total             int64    `json:"total"`
		ByGender          []Bucket `json:"byGender"`
		Begging           int64    `json:"begging"`
		BeggingPercentage float64  `json:"beggingPercentage"`
	} `json:"students"`
	Facilities struct {
		WithToilets  int64 `json:"withToilets"`
		WithFeeding  int64 `json:"withFeeding"`
		WithSleeping int64 `json:"withSleeping"`
	} `json:"facilities"`
	Distribution struct {
		ByLGA    []Bucket `json:"byLga"`
		ByStatus []Bucket `json:"byStatus"`
	} `json:"distribution"`
}

// BeggarReport is the assembled beggar statistics response.
type BeggarReport struct {
	Overview struct {
		TotalBeggars     int64   `json:"totalBeggars"`
		ActiveBeggars    int64   `json:"activeBeggars"`
		InactiveBeggars  int64   `json:"inactiveBeggars"`
		ActivePercentage float64 `json:"activePercentage"`
		AverageAge       int64   `json:"averageAge"`
	} `json:"overview"`
	Demographics struct {
		ByAge         []Bucket `json:"byAge"`
		ByGender      []Bucket `json:"byGender"`
		ByNationality []Bucket `json:"byNationality"`
	} `json:"demographics"`
	Location struct {
		ByLGA   []Bucket `json:"byLga"`
		ByState []Bucket `json:"byState"`
	} `json:"location"`
}

// DashboardReport is the assembled dashboard response.
type DashboardReport struct {
	Overview struct {
		TotalSchools  int64 `json:"totalSchools"`
		TotalBeggars  int64 `json:"totalBeggars"`
		TotalUsers    int64 `json:"totalUsers"`
		TotalStudents int64 `json:"totalStudents"`
	} `json:"overview"`
	RecentActivity struct {
		Schools []SchoolSummary `json:"schools"`
		Beggars []BeggarSummary `json:"beggars"`
	} `json:"recentActivity"`
	Breakdowns struct {
		SchoolStatus []Bucket     `json:"schoolStatus"`
		BeggarStatus []BoolBucket `json:"beggarStatus"`
	} `json:"breakdowns"`
	TopLGAs []Bucket `json:"topLgas"`
}

// InterviewerReport is the per-interviewer productivity report.
type InterviewerReport struct {
	Schools struct {
		Total          int64   `json:"total"`
		Published      int64   `json:"published"`
		Draft          int64   `json:"draft"`
		CompletionRate float64 `json:"completionRate"`
	} `json:"schools"`
	Students struct {
		Total             int64   `json:"total"`
		Begging           int64   `json:"begging"`
		BeggingPercentage float64 `json:"beggingPercentage"`
	} `json:"students"`
	Beggars struct {
		Total            int64   `json:"total"`
		Active           int64   `json:"active"`
		ActivePercentage float64 `json:"activePercentage"`
	} `json:"beggars"`
	RecentActivity struct {
		Schools []SchoolSummary `json:"schools"`
		Beggars []BeggarSummary `json:"beggars"`
	} `json:"recentActivity"`
}
