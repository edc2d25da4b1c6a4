package query

import (
	"net/url"
	"strconv"
	"time"

	"fittrack/fitness-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pagination bounds. Limits above maxLimit are rejected, not clamped.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Sort describes one sort key.
type Sort struct {
	Field string
	Desc  bool
}

// Page is a validated pagination request.
type Page struct {
	Number int
	Limit  int
}

// Skip returns the offset for the page, for stores that paginate with
// skip/limit.
func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Limit)
}

// UserFilter holds the normalized user list filters. Nil means "not
// filtered on".
type UserFilter struct {
	FitnessGoal   *domain.FitnessGoal
	ActivityLevel *domain.ActivityLevel
	IsActive      *bool
	Search        string // case-insensitive substring on name OR email
}

// WorkoutFilter holds the normalized workout list filters.
type WorkoutFilter struct {
	UserID       *primitive.ObjectID
	ExerciseType *domain.ExerciseType
	Intensity    *domain.Intensity
	Completed    *bool
	StartDate    *time.Time // inclusive lower bound on workoutDate
	EndDate      *time.Time // inclusive upper bound on workoutDate
}

// UserQuery is the store descriptor for a user list request.
type UserQuery struct {
	Filter UserFilter
	Sort   Sort
	Page   Page
}

// WorkoutQuery is the store descriptor for a workout list request.
type WorkoutQuery struct {
	Filter WorkoutFilter
	Sort   Sort
	Page   Page
}

var userSortFields = map[string]bool{
	"createdAt": true, "updatedAt": true, "name": true, "email": true, "age": true,
}

var workoutSortFields = map[string]bool{
	"workoutDate": true, "createdAt": true, "duration": true,
	"caloriesBurned": true, "title": true,
}

// ParseUserQuery translates raw query-string values into a UserQuery.
// Pure; fails fast with an InvalidParameter error instead of defaulting
// silently on malformed input.
func ParseUserQuery(values url.Values) (*UserQuery, error) {
	page, err := parsePage(values)
	if err != nil {
		return nil, err
	}
	sort, err := parseSort(values, "createdAt", userSortFields)
	if err != nil {
		return nil, err
	}

	q := &UserQuery{Sort: sort, Page: page}

	if raw := values.Get("fitnessGoal"); raw != "" {
		goal := domain.FitnessGoal(raw)
		if !domain.ValidFitnessGoal(goal) {
			return nil, domain.InvalidParameterError("fitnessGoal", "unknown fitness goal", raw)
		}
		q.Filter.FitnessGoal = &goal
	}
	if raw := values.Get("activityLevel"); raw != "" {
		level := domain.ActivityLevel(raw)
		if !domain.ValidActivityLevel(level) {
			return nil, domain.InvalidParameterError("activityLevel", "unknown activity level", raw)
		}
		q.Filter.ActivityLevel = &level
	}
	if raw := values.Get("isActive"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, domain.InvalidParameterError("isActive", "must be a boolean", raw)
		}
		q.Filter.IsActive = &active
	}
	q.Filter.Search = values.Get("search")

	return q, nil
}

// ParseWorkoutQuery translates raw query-string values into a WorkoutQuery.
func ParseWorkoutQuery(values url.Values) (*WorkoutQuery, error) {
	page, err := parsePage(values)
	if err != nil {
		return nil, err
	}
	sort, err := parseSort(values, "workoutDate", workoutSortFields)
	if err != nil {
		return nil, err
	}

	q := &WorkoutQuery{Sort: sort, Page: page}

	if raw := values.Get("userId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, domain.InvalidParameterError("userId", "must be a valid object id", raw)
		}
		q.Filter.UserID = &id
	}
	if raw := values.Get("exerciseType"); raw != "" {
		t := domain.ExerciseType(raw)
		if !domain.ValidExerciseType(t) {
			return nil, domain.InvalidParameterError("exerciseType", "unknown exercise type", raw)
		}
		q.Filter.ExerciseType = &t
	}
	if raw := values.Get("intensity"); raw != "" {
		i := domain.Intensity(raw)
		if !domain.ValidIntensity(i) {
			return nil, domain.InvalidParameterError("intensity", "unknown intensity", raw)
		}
		q.Filter.Intensity = &i
	}
	if raw := values.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, domain.InvalidParameterError("completed", "must be a boolean", raw)
		}
		q.Filter.Completed = &completed
	}
	if raw := values.Get("startDate"); raw != "" {
		t, err := parseDate(raw, false)
		if err != nil {
			return nil, domain.InvalidParameterError("startDate", "must be an RFC 3339 timestamp or YYYY-MM-DD date", raw)
		}
		q.Filter.StartDate = &t
	}
	if raw := values.Get("endDate"); raw != "" {
		t, err := parseDate(raw, true)
		if err != nil {
			return nil, domain.InvalidParameterError("endDate", "must be an RFC 3339 timestamp or YYYY-MM-DD date", raw)
		}
		q.Filter.EndDate = &t
	}
	if q.Filter.StartDate != nil && q.Filter.EndDate != nil && q.Filter.EndDate.Before(*q.Filter.StartDate) {
		return nil, domain.InvalidParameterError("endDate", "must not precede startDate", values.Get("endDate"))
	}

	return q, nil
}

func parsePage(values url.Values) (Page, error) {
	page := Page{Number: DefaultPage, Limit: DefaultLimit}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Page{}, domain.InvalidParameterError("page", "must be a positive integer", raw)
		}
		page.Number = n
	}
	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxLimit {
			return Page{}, domain.InvalidParameterError("limit", "must be an integer between 1 and 100", raw)
		}
		page.Limit = n
	}
	return page, nil
}

func parseSort(values url.Values, defaultField string, allowed map[string]bool) (Sort, error) {
	// Both defaults sort newest first.
	sort := Sort{Field: defaultField, Desc: true}

	if raw := values.Get("sort"); raw != "" {
		if !allowed[raw] {
			return Sort{}, domain.InvalidParameterError("sort", "unsupported sort field", raw)
		}
		sort.Field = raw
	}
	if raw := values.Get("order"); raw != "" {
		switch raw {
		case "asc", "1":
			sort.Desc = false
		case "desc", "-1":
			sort.Desc = true
		default:
			return Sort{}, domain.InvalidParameterError("order", "must be one of asc, desc, 1, -1", raw)
		}
	}
	return sort, nil
}

// parseDate accepts RFC 3339 or a bare date. A bare end-of-range date is
// widened to the end of that day so the bound stays inclusive.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
