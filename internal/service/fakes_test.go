package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/query"
	"fittrack/fitness-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories so the services are tested without a database.
// They mirror the store semantics the mongo implementations provide,
// including the deterministic tie-breaks of the aggregation reads.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User

	// enforceUnique emulates the unique index on email.
	enforceUnique bool
	// beforeCreate runs inside Create, after the service's uniqueness
	// check has already passed. Lets tests interleave a competing write
	// into the check-then-create window.
	beforeCreate func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enforceUnique {
		for _, existing := range r.users {
			if existing.Email == user.Email {
				return primitive.NilObjectID, repository.ErrDuplicateEmail
			}
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, q *query.UserQuery) ([]domain.User, error) {
	matched := r.match(q.Filter)
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less bool
		switch q.Sort.Field {
		case "name":
			less = a.Name < b.Name
		case "email":
			less = a.Email < b.Email
		default:
			less = a.CreatedAt.Before(b.CreatedAt)
		}
		if q.Sort.Desc {
			return !less
		}
		return less
	})

	start := int(q.Page.Skip())
	if start >= len(matched) {
		return []domain.User{}, nil
	}
	end := start + q.Page.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *fakeUserRepo) Count(ctx context.Context, filter query.UserFilter) (int64, error) {
	return int64(len(r.match(filter))), nil
}

func (r *fakeUserRepo) CountActive(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, user := range r.users {
		if user.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.enforceUnique {
		for id, existing := range r.users {
			if id != user.ID && existing.Email == user.Email {
				return repository.ErrDuplicateEmail
			}
		}
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) match(filter query.UserFilter) []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []domain.User{}
	for _, user := range r.users {
		if filter.FitnessGoal != nil && (user.FitnessGoal == nil || *user.FitnessGoal != *filter.FitnessGoal) {
			continue
		}
		if filter.ActivityLevel != nil && user.ActivityLevel != *filter.ActivityLevel {
			continue
		}
		if filter.IsActive != nil && user.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(user.Name), needle) &&
				!strings.Contains(strings.ToLower(user.Email), needle) {
				continue
			}
		}
		matched = append(matched, user)
	}
	return matched
}

type fakeWorkoutRepo struct {
	mu       sync.Mutex
	workouts map[primitive.ObjectID]domain.Workout
	users    *fakeUserRepo // for the most-active-users join
}

func newFakeWorkoutRepo(users *fakeUserRepo) *fakeWorkoutRepo {
	return &fakeWorkoutRepo{
		workouts: make(map[primitive.ObjectID]domain.Workout),
		users:    users,
	}
}

func (r *fakeWorkoutRepo) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	r.workouts[workout.ID] = *workout
	return workout.ID, nil
}

func (r *fakeWorkoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	workout, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &workout, nil
}

func (r *fakeWorkoutRepo) List(ctx context.Context, q *query.WorkoutQuery) ([]domain.Workout, error) {
	matched := r.match(q.Filter)
	sort.Slice(matched, func(i, j int) bool {
		less := matched[i].WorkoutDate.Before(matched[j].WorkoutDate)
		if q.Sort.Desc {
			return !less
		}
		return less
	})

	start := int(q.Page.Skip())
	if start >= len(matched) {
		return []domain.Workout{}, nil
	}
	end := start + q.Page.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *fakeWorkoutRepo) Count(ctx context.Context, filter query.WorkoutFilter) (int64, error) {
	return int64(len(r.match(filter))), nil
}

func (r *fakeWorkoutRepo) Update(ctx context.Context, workout *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[workout.ID]; !ok {
		return repository.ErrNotFound
	}
	workout.UpdatedAt = time.Now().UTC()
	r.workouts[workout.ID] = *workout
	return nil
}

func (r *fakeWorkoutRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

func (r *fakeWorkoutRepo) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, w := range r.workouts {
		if w.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeWorkoutRepo) UserTotals(ctx context.Context, userID primitive.ObjectID) (*repository.UserTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := &repository.UserTotals{}
	for _, w := range r.workouts {
		if w.UserID != userID || !w.Completed {
			continue
		}
		totals.Workouts++
		totals.TotalCalories += w.CaloriesBurned
		totals.TotalDuration += w.Duration
	}
	return totals, nil
}

func (r *fakeWorkoutRepo) CountCompletedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, w := range r.workouts {
		if w.UserID == userID && w.Completed && !w.WorkoutDate.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeWorkoutRepo) RecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recent := []domain.Workout{}
	for _, w := range r.workouts {
		if w.UserID == userID && w.Completed {
			recent = append(recent, w)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].WorkoutDate.After(recent[j].WorkoutDate)
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

func (r *fakeWorkoutRepo) GlobalTotals(ctx context.Context) (*repository.GlobalTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := &repository.GlobalTotals{}
	for _, w := range r.workouts {
		totals.TotalWorkouts++
		if w.Completed {
			totals.CompletedWorkouts++
		}
		totals.TotalCalories += w.CaloriesBurned
		totals.TotalDuration += w.Duration
	}
	if totals.TotalWorkouts > 0 {
		totals.AvgCalories = totals.TotalCalories / float64(totals.TotalWorkouts)
		totals.AvgDuration = totals.TotalDuration / float64(totals.TotalWorkouts)
	}
	return totals, nil
}

func (r *fakeWorkoutRepo) GroupByExerciseType(ctx context.Context) ([]repository.ExerciseTypeGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byType := map[domain.ExerciseType]*repository.ExerciseTypeGroup{}
	for _, w := range r.workouts {
		if !w.Completed {
			continue
		}
		g, ok := byType[w.ExerciseType]
		if !ok {
			g = &repository.ExerciseTypeGroup{ExerciseType: w.ExerciseType}
			byType[w.ExerciseType] = g
		}
		g.Count++
		g.TotalCalories += w.CaloriesBurned
		// Accumulate sums; convert to averages below.
		g.AvgCalories += w.CaloriesBurned
		g.AvgDuration += w.Duration
	}

	groups := []repository.ExerciseTypeGroup{}
	for _, g := range byType {
		g.AvgCalories /= float64(g.Count)
		g.AvgDuration /= float64(g.Count)
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].ExerciseType < groups[j].ExerciseType
	})
	return groups, nil
}

func (r *fakeWorkoutRepo) GroupByIntensity(ctx context.Context) ([]repository.IntensityGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byIntensity := map[domain.Intensity]*repository.IntensityGroup{}
	for _, w := range r.workouts {
		if !w.Completed {
			continue
		}
		g, ok := byIntensity[w.Intensity]
		if !ok {
			g = &repository.IntensityGroup{Intensity: w.Intensity}
			byIntensity[w.Intensity] = g
		}
		g.Count++
		g.AvgCalories += w.CaloriesBurned
		g.AvgDuration += w.Duration
	}

	groups := []repository.IntensityGroup{}
	for _, g := range byIntensity {
		g.AvgCalories /= float64(g.Count)
		g.AvgDuration /= float64(g.Count)
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Intensity < groups[j].Intensity
	})
	return groups, nil
}

func (r *fakeWorkoutRepo) MostActiveUsers(ctx context.Context, limit int) ([]repository.UserActivity, error) {
	r.mu.Lock()
	byUser := map[primitive.ObjectID]*repository.UserActivity{}
	for _, w := range r.workouts {
		if !w.Completed {
			continue
		}
		row, ok := byUser[w.UserID]
		if !ok {
			row = &repository.UserActivity{UserID: w.UserID}
			byUser[w.UserID] = row
		}
		row.Workouts++
		row.TotalCalories += w.CaloriesBurned
		row.TotalDuration += w.Duration
	}
	r.mu.Unlock()

	ranking := []repository.UserActivity{}
	for _, row := range byUser {
		if user, err := r.users.GetByID(ctx, row.UserID); err == nil {
			row.Name = user.Name
			row.Email = user.Email
		}
		ranking = append(ranking, *row)
	}
	// Count descending, user id ascending on ties.
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Workouts != ranking[j].Workouts {
			return ranking[i].Workouts > ranking[j].Workouts
		}
		return ranking[i].UserID.Hex() < ranking[j].UserID.Hex()
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}

func (r *fakeWorkoutRepo) match(filter query.WorkoutFilter) []domain.Workout {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []domain.Workout{}
	for _, w := range r.workouts {
		if filter.UserID != nil && w.UserID != *filter.UserID {
			continue
		}
		if filter.ExerciseType != nil && w.ExerciseType != *filter.ExerciseType {
			continue
		}
		if filter.Intensity != nil && w.Intensity != *filter.Intensity {
			continue
		}
		if filter.Completed != nil && w.Completed != *filter.Completed {
			continue
		}
		if filter.StartDate != nil && w.WorkoutDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && w.WorkoutDate.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, w)
	}
	return matched
}
