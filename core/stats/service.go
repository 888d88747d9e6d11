package stats

import (
	"context"
	"math"

	"github.com/almajirisurvey/backend/core/beggar"
	"github.com/almajirisurvey/backend/core/school"
)

const recentFeedLimit = 3

type (
	// Repository produces raw aggregates; distributions arrive sorted the way
	// the underlying pipelines sort them (count descending where noted).
	Repository interface {
		SchoolAggregates(ctx context.Context, f SchoolFilter) (SchoolAggregates, error)
		BeggarAggregates(ctx context.Context, f BeggarFilter) (BeggarAggregates, error)
		DashboardAggregates(ctx context.Context) (DashboardAggregates, error)
		// Per-interviewer figures are computed in-process over the full record
		// sets; an interviewer's volume is small by construction.
		ListSchoolsByInterviewer(ctx context.Context, interviewerID string) ([]school.School, error)
		ListBeggarsByInterviewer(ctx context.Context, interviewerID string) ([]beggar.Beggar, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Percentage returns part/total as a percentage rounded to 2 decimals, 0 when
// the denominator is zero.
func Percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

// SchoolStats assembles the school statistics report.
func (svc *Service) SchoolStats(ctx context.Context, f SchoolFilter) (SchoolReport, error) {
	agg, err := svc.repo.SchoolAggregates(ctx, f)
	if err != nil {
		return SchoolReport{}, err
	}

	var rep SchoolReport
	rep.Overview.TotalSchools = agg.TotalSchools
	rep.Overview.PublishedSchools = agg.PublishedSchools
	rep.Overview.DraftSchools = agg.DraftSchools
	rep.Overview.IncompleteSchools = agg.IncompleteSchools
	rep.Overview.CompletionRate = Percentage(agg.PublishedSchools, agg.TotalSchools)
	rep.Students.Total = agg.TotalStudents
	rep.Students.ByGender = emptyToSlice(agg.StudentsByGender)
	rep.Students.Begging = agg.BeggingStudents
	rep.Students.BeggingPercentage = Percentage(agg.BeggingStudents, agg.TotalStudents)
	rep.Facilities.WithToilets = agg.WithToilets
	rep.Facilities.WithFeeding = agg.WithFeeding
	rep.Facilities.WithSleeping = agg.WithSleeping
	rep.Distribution.ByLGA = emptyToSlice(agg.ByLGA)
	rep.Distribution.ByStatus = emptyToSlice(agg.ByStatus)
	return rep, nil
}

// BeggarStats assembles the beggar statistics report.
func (svc *Service) BeggarStats(ctx context.Context, f BeggarFilter) (BeggarReport, error) {
	agg, err := svc.repo.BeggarAggregates(ctx, f)
	if err != nil {
		return BeggarReport{}, err
	}

	var rep BeggarReport
	rep.Overview.TotalBeggars = agg.TotalBeggars
	rep.Overview.ActiveBeggars = agg.ActiveBeggars
	rep.Overview.InactiveBeggars = agg.InactiveBeggars
	rep.Overview.ActivePercentage = Percentage(agg.ActiveBeggars, agg.TotalBeggars)
	rep.Overview.AverageAge = int64(math.Round(agg.AverageAge))
	rep.Demographics.ByAge = emptyToSlice(agg.ByAge)
	rep.Demographics.ByGender = emptyToSlice(agg.ByGender)
	rep.Demographics.ByNationality = emptyToSlice(agg.ByNationality)
	rep.Location.ByLGA = emptyToSlice(agg.ByLGA)
	rep.Location.ByState = emptyToSlice(agg.ByState)
	return rep, nil
}

// Dashboard assembles the cross-domain dashboard.
func (svc *Service) Dashboard(ctx context.Context) (DashboardReport, error) {
	agg, err := svc.repo.DashboardAggregates(ctx)
	if err != nil {
		return DashboardReport{}, err
	}

	var rep DashboardReport
	rep.Overview.TotalSchools = agg.TotalSchools
	rep.Overview.TotalBeggars = agg.TotalBeggars
	rep.Overview.TotalUsers = agg.TotalUsers
	rep.Overview.TotalStudents = agg.TotalStudents
	rep.RecentActivity.Schools = emptyToSlice(agg.RecentSchools)
	rep.RecentActivity.Beggars = emptyToSlice(agg.RecentBeggars)
	rep.Breakdowns.SchoolStatus = emptyToSlice(agg.SchoolStatus)
	rep.Breakdowns.BeggarStatus = emptyToSlice(agg.BeggarStatus)
	rep.TopLGAs = emptyToSlice(agg.TopLGAs)
	return rep, nil
}

// InterviewerStats reports one interviewer's productivity, computed over their
// full record sets.
func (svc *Service) InterviewerStats(ctx context.Context, interviewerID string) (InterviewerReport, error) {
	schools, err := svc.repo.ListSchoolsByInterviewer(ctx, interviewerID)
	if err != nil {
		return InterviewerReport{}, err
	}
	beggars, err := svc.repo.ListBeggarsByInterviewer(ctx, interviewerID)
	if err != nil {
		return InterviewerReport{}, err
	}

	var rep InterviewerReport
	rep.Schools.Total = int64(len(schools))
	for _, sch := range schools {
		switch sch.Status {
		case school.StatusPublished:
			rep.Schools.Published++
		case school.StatusDraft:
			rep.Schools.Draft++
		}
		rep.Students.Total += int64(len(sch.Students))
		for _, st := range sch.Students {
			if st.IsBegging {
				rep.Students.Begging++
			}
		}
	}
	rep.Schools.CompletionRate = Percentage(rep.Schools.Published, rep.Schools.Total)
	rep.Students.BeggingPercentage = Percentage(rep.Students.Begging, rep.Students.Total)

	rep.Beggars.Total = int64(len(beggars))
	for _, bg := range beggars {
		if bg.IsBegging {
			rep.Beggars.Active++
		}
	}
	rep.Beggars.ActivePercentage = Percentage(rep.Beggars.Active, rep.Beggars.Total)

	// record sets arrive newest-created-first
	for _, sch := range schools {
		if len(rep.RecentActivity.Schools) == recentFeedLimit {
			break
		}
		rep.RecentActivity.Schools = append(rep.RecentActivity.Schools, SchoolSummary{
			ID: sch.ID, Name: sch.Name, Status: sch.Status, CreatedAt: sch.CreatedAt,
		})
	}
	for _, bg := range beggars {
		if len(rep.RecentActivity.Beggars) == recentFeedLimit {
			break
		}
		rep.RecentActivity.Beggars = append(rep.RecentActivity.Beggars, BeggarSummary{
			ID: bg.ID, Name: bg.Name, IsBegging: bg.IsBegging, CreatedAt: bg.CreatedAt,
		})
	}
	rep.RecentActivity.Schools = emptyToSlice(rep.RecentActivity.Schools)
	rep.RecentActivity.Beggars = emptyToSlice(rep.RecentActivity.Beggars)
	return rep, nil
}

// emptyToSlice keeps distributions rendering as [] rather than null.
func emptyToSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
