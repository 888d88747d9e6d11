package inmemdb

import (
	"context"
	"sort"
	"strconv"

	"github.com/almajirisurvey/backend/core/beggar"
	"github.com/almajirisurvey/backend/core/school"
	"github.com/almajirisurvey/backend/core/stats"
)

type statsRepository struct {
	db *DB
}

func NewStatsRepository(db *DB) stats.Repository {
	return &statsRepository{db: db}
}

func bucketize(counts map[string]int64, byCountDesc bool) []stats.Bucket {
	buckets := make([]stats.Bucket, 0, len(counts))
	for id, n := range counts {
		buckets = append(buckets, stats.Bucket{ID: id, Count: n})
	}
	if byCountDesc {
		sort.Slice(buckets, func(i, j int) bool {
			if buckets[i].Count != buckets[j].Count {
				return buckets[i].Count > buckets[j].Count
			}
			return buckets[i].ID < buckets[j].ID
		})
	} else {
		sort.Slice(buckets, func(i, j int) bool { return buckets[i].ID < buckets[j].ID })
	}
	return buckets
}

// ageBucket maps an age onto the shared histogram boundaries; ages past the
// last boundary land in the overflow bucket.
func ageBucket(age int) string {
	bounds := stats.AgeBucketBoundaries
	if age >= bounds[len(bounds)-1] {
		return stats.AgeOverflowLabel
	}
	for i := len(bounds) - 2; i >= 0; i-- {
		if age >= bounds[i] {
			return strconv.Itoa(bounds[i])
		}
	}
	return stats.AgeOverflowLabel // below the first boundary
}

func matchStatsSchool(sch school.School, f stats.SchoolFilter) bool {
	if f.LGA != "" && sch.LGA != f.LGA {
		return false
	}
	if f.Status != "" && sch.Status != f.Status {
		return false
	}
	return true
}

func (repo *statsRepository) SchoolAggregates(_ context.Context, f stats.SchoolFilter) (stats.SchoolAggregates, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var agg stats.SchoolAggregates
	byLGA := make(map[string]int64)
	byStatus := make(map[string]int64)
	byGender := make(map[string]int64)

	for _, sch := range repo.db.schools {
		if !matchStatsSchool(*sch, f) {
			continue
		}
		agg.TotalSchools++
		byLGA[sch.LGA]++
		byStatus[sch.Status]++
		switch sch.Status {
		case school.StatusPublished:
			agg.PublishedSchools++
		case school.StatusDraft:
			agg.DraftSchools++
		case school.StatusIncomplete:
			agg.IncompleteSchools++
		}
		if ss := sch.SchoolStructure; ss != nil {
			if ss.HasToilets {
				agg.WithToilets++
			}
			if ss.FeedsPupils {
				agg.WithFeeding++
			}
			if ss.ProvidesSleepingPlace {
				agg.WithSleeping++
			}
		}
		for _, st := range sch.Students {
			agg.TotalStudents++
			byGender[st.Gender]++
			if st.IsBegging {
				agg.BeggingStudents++
			}
		}
	}

	agg.ByLGA = bucketize(byLGA, true)
	agg.ByStatus = bucketize(byStatus, false)
	agg.StudentsByGender = bucketize(byGender, false)
	return agg, nil
}

func (repo *statsRepository) BeggarAggregates(_ context.Context, f stats.BeggarFilter) (stats.BeggarAggregates, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var agg stats.BeggarAggregates
	var ageSum int64
	byAge := make(map[string]int64)
	byGender := make(map[string]int64)
	byNationality := make(map[string]int64)
	byLGA := make(map[string]int64)
	byState := make(map[string]int64)

	for _, bg := range repo.db.beggars {
		if f.LGA != "" && bg.LGA != f.LGA {
			continue
		}
		if f.StateOfOrigin != "" && bg.StateOfOrigin != f.StateOfOrigin {
			continue
		}
		agg.TotalBeggars++
		if bg.IsBegging {
			agg.ActiveBeggars++
		} else {
			agg.InactiveBeggars++
		}
		ageSum += int64(bg.Age)
		byAge[ageBucket(int(bg.Age))]++
		byGender[bg.Sex]++
		byNationality[bg.Nationality]++
		byLGA[bg.LGA]++
		byState[bg.StateOfOrigin]++
	}
	if agg.TotalBeggars > 0 {
		agg.AverageAge = float64(ageSum) / float64(agg.TotalBeggars)
	}

	agg.ByAge = sortAgeBuckets(bucketize(byAge, false))
	agg.ByGender = bucketize(byGender, false)
	agg.ByNationality = bucketize(byNationality, true)
	agg.ByLGA = bucketize(byLGA, true)
	agg.ByState = bucketize(byState, true)
	return agg, nil
}

// sortAgeBuckets orders histogram buckets by their numeric lower bound with
// the overflow bucket last.
func sortAgeBuckets(buckets []stats.Bucket) []stats.Bucket {
	sort.Slice(buckets, func(i, j int) bool {
		a, aerr := strconv.Atoi(buckets[i].ID)
		b, berr := strconv.Atoi(buckets[j].ID)
		if aerr != nil {
			return false
		}
		if berr != nil {
			return true
		}
		return a < b
	})
	return buckets
}

func (repo *statsRepository) DashboardAggregates(_ context.Context) (stats.DashboardAggregates, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var agg stats.DashboardAggregates
	agg.TotalSchools = int64(len(repo.db.schools))
	agg.TotalBeggars = int64(len(repo.db.beggars))
	agg.TotalUsers = int64(len(repo.db.users))

	schoolStatus := make(map[string]int64)
	topLGAs := make(map[string]int64)
	var activeBeggars, inactiveBeggars int64

	schools := (&schoolRepository{db: repo.db}).query()
	for _, sch := range schools {
		agg.TotalStudents += int64(len(sch.Students))
		schoolStatus[sch.Status]++
		topLGAs[sch.LGA]++
	}
	for i, sch := range schools {
		if i == 5 {
			break
		}
		agg.RecentSchools = append(agg.RecentSchools, stats.SchoolSummary{
			ID: sch.ID, Name: sch.Name, LGA: sch.LGA, Status: sch.Status, CreatedAt: sch.CreatedAt,
		})
	}

	beggars := (&beggarRepository{db: repo.db}).query()
	for _, bg := range beggars {
		if bg.IsBegging {
			activeBeggars++
		} else {
			inactiveBeggars++
		}
	}
	for i, bg := range beggars {
		if i == 5 {
			break
		}
		agg.RecentBeggars = append(agg.RecentBeggars, stats.BeggarSummary{
			ID: bg.ID, Name: bg.Name, LGA: bg.LGA, IsBegging: bg.IsBegging, CreatedAt: bg.CreatedAt,
		})
	}

	agg.SchoolStatus = bucketize(schoolStatus, false)
	if inactiveBeggars > 0 {
		agg.BeggarStatus = append(agg.BeggarStatus, stats.BoolBucket{ID: false, Count: inactiveBeggars})
	}
	if activeBeggars > 0 {
		agg.BeggarStatus = append(agg.BeggarStatus, stats.BoolBucket{ID: true, Count: activeBeggars})
	}
	lgas := bucketize(topLGAs, true)
	if len(lgas) > 5 {
		lgas = lgas[:5]
	}
	agg.TopLGAs = lgas
	return agg, nil
}

func (repo *statsRepository) ListSchoolsByInterviewer(_ context.Context, interviewerID string) ([]school.School, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var schools []school.School
	for _, sch := range (&schoolRepository{db: repo.db}).query() {
		if sch.InterviewerID == interviewerID {
			schools = append(schools, sch)
		}
	}
	return schools, nil
}

func (repo *statsRepository) ListBeggarsByInterviewer(_ context.Context, interviewerID string) ([]beggar.Beggar, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var beggars []beggar.Beggar
	for _, bg := range (&beggarRepository{db: repo.db}).query() {
		if bg.InterviewerID == interviewerID {
			beggars = append(beggars, bg)
		}
	}
	return beggars, nil
}
