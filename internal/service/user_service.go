package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/query"
	"fittrack/fitness-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field bounds for user profiles.
const (
	minNameLen = 2
	maxNameLen = 50
	minAge     = 13
	maxAge     = 120
	minWeight  = 20.0
	maxWeight  = 500.0
	minHeight  = 50.0
	maxHeight  = 300.0
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CreateUserInput carries a new user's fields. Optional fields stay nil
// when the caller omitted them.
type CreateUserInput struct {
	Name          string
	Email         string
	Age           *int
	Weight        *float64
	Height        *float64
	FitnessGoal   *domain.FitnessGoal
	ActivityLevel *domain.ActivityLevel
	IsActive      *bool
}

// UpdateUserInput carries a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Name          *string
	Email         *string
	Age           *int
	Weight        *float64
	Height        *float64
	FitnessGoal   *domain.FitnessGoal
	ActivityLevel *domain.ActivityLevel
	IsActive      *bool
}

// UserService is the application boundary for user CRUD.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, q *query.UserQuery) ([]domain.User, query.Pagination, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// userService implements UserService.
type userService struct {
	userRepo    repository.UserRepository
	workoutRepo repository.WorkoutRepository
}

// NewUserService creates a new user service. The workout repository backs
// the delete-while-owning-workouts check.
func NewUserService(userRepo repository.UserRepository, workoutRepo repository.WorkoutRepository) UserService {
	return &userService{userRepo: userRepo, workoutRepo: workoutRepo}
}

// Create validates, normalizes and stores a new user. The email uniqueness
// check-then-create is not atomic; the unique index on email catches the
// losing side of a race and it is reported as the same conflict.
func (s *userService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	user := &domain.User{
		Name:          strings.TrimSpace(input.Name),
		Email:         normalizeEmail(input.Email),
		Age:           input.Age,
		Weight:        input.Weight,
		Height:        input.Height,
		FitnessGoal:   input.FitnessGoal,
		ActivityLevel: domain.DefaultActivityLevel,
		IsActive:      true,
	}
	if input.ActivityLevel != nil {
		user.ActivityLevel = *input.ActivityLevel
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if violations := validateUser(user); len(violations) > 0 {
		return nil, domain.ValidationError("user validation failed", violations...)
	}

	// Check-then-create; documented race, closed at the store by the
	// unique email index.
	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return nil, emailConflict(user.Email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.InternalError("failed to check email uniqueness", err)
	}

	user.ProfileCompletion = domain.ProfileCompletion(user)

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, emailConflict(user.Email)
		}
		return nil, domain.InternalError("failed to create user", err)
	}
	user.ID = id
	return user, nil
}

// Get retrieves a single user.
func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	objectID, err := parseUserID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError("user", id)
		}
		return nil, domain.InternalError("failed to load user", err)
	}
	return user, nil
}

// List runs the descriptor against the store and sizes the full match set
// for the page metadata. The two reads are not a snapshot; a concurrent
// write can shift the count relative to the page.
func (s *userService) List(ctx context.Context, q *query.UserQuery) ([]domain.User, query.Pagination, error) {
	users, err := s.userRepo.List(ctx, q)
	if err != nil {
		return nil, query.Pagination{}, domain.InternalError("failed to list users", err)
	}
	total, err := s.userRepo.Count(ctx, q.Filter)
	if err != nil {
		return nil, query.Pagination{}, domain.InternalError("failed to count users", err)
	}
	return users, query.NewPagination(q.Page, total), nil
}

// Update merges the partial input into the stored user, re-validates the
// result and recomputes profile completion before writing.
func (s *userService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	emailChanged := false
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		emailChanged = email != user.Email
		user.Email = email
	}
	if input.Age != nil {
		user.Age = input.Age
	}
	if input.Weight != nil {
		user.Weight = input.Weight
	}
	if input.Height != nil {
		user.Height = input.Height
	}
	if input.FitnessGoal != nil {
		user.FitnessGoal = input.FitnessGoal
	}
	if input.ActivityLevel != nil {
		user.ActivityLevel = *input.ActivityLevel
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if violations := validateUser(user); len(violations) > 0 {
		return nil, domain.ValidationError("user validation failed", violations...)
	}

	if emailChanged {
		if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
			return nil, emailConflict(user.Email)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, domain.InternalError("failed to check email uniqueness", err)
		}
	}

	user.ProfileCompletion = domain.ProfileCompletion(user)

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, emailConflict(user.Email)
		case errors.Is(err, repository.ErrNotFound):
			return nil, domain.NotFoundError("user", id)
		default:
			return nil, domain.InternalError("failed to update user", err)
		}
	}
	return user, nil
}

// Delete removes a user, refusing while any workout still references it.
func (s *userService) Delete(ctx context.Context, id string) error {
	objectID, err := parseUserID(id)
	if err != nil {
		return err
	}

	if _, err := s.userRepo.GetByID(ctx, objectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFoundError("user", id)
		}
		return domain.InternalError("failed to load user", err)
	}

	owned, err := s.workoutRepo.CountByUser(ctx, objectID)
	if err != nil {
		return domain.InternalError("failed to count user workouts", err)
	}
	if owned > 0 {
		return domain.ConflictError(
			fmt.Sprintf("user %s still owns %d workout(s); delete them first", id, owned))
	}

	if err := s.userRepo.Delete(ctx, objectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFoundError("user", id)
		}
		return domain.InternalError("failed to delete user", err)
	}
	return nil
}

func parseUserID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.NotFoundError("user", id)
	}
	return objectID, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailConflict(email string) error {
	return domain.ConflictError("email already registered",
		domain.FieldError{Field: "email", Message: "already registered", Value: email})
}

// validateUser checks every field bound and collects all violations so the
// caller sees them in one response.
func validateUser(u *domain.User) []domain.FieldError {
	var violations []domain.FieldError

	// Bounds count runes, matching the handler binding tags.
	if n := utf8.RuneCountInString(u.Name); n < minNameLen || n > maxNameLen {
		violations = append(violations, domain.FieldError{
			Field: "name", Message: fmt.Sprintf("must be %d-%d characters", minNameLen, maxNameLen), Value: u.Name,
		})
	}
	if !emailPattern.MatchString(u.Email) {
		violations = append(violations, domain.FieldError{
			Field: "email", Message: "must be a valid email address", Value: u.Email,
		})
	}
	if u.Age != nil && (*u.Age < minAge || *u.Age > maxAge) {
		violations = append(violations, domain.FieldError{
			Field: "age", Message: fmt.Sprintf("must be between %d and %d", minAge, maxAge), Value: *u.Age,
		})
	}
	if u.Weight != nil && (*u.Weight < minWeight || *u.Weight > maxWeight) {
		violations = append(violations, domain.FieldError{
			Field: "weight", Message: fmt.Sprintf("must be between %g and %g kg", minWeight, maxWeight), Value: *u.Weight,
		})
	}
	if u.Height != nil && (*u.Height < minHeight || *u.Height > maxHeight) {
		violations = append(violations, domain.FieldError{
			Field: "height", Message: fmt.Sprintf("must be between %g and %g cm", minHeight, maxHeight), Value: *u.Height,
		})
	}
	if u.FitnessGoal != nil && !domain.ValidFitnessGoal(*u.FitnessGoal) {
		violations = append(violations, domain.FieldError{
			Field: "fitnessGoal", Message: "unknown fitness goal", Value: string(*u.FitnessGoal),
		})
	}
	if !domain.ValidActivityLevel(u.ActivityLevel) {
		violations = append(violations, domain.FieldError{
			Field: "activityLevel", Message: "unknown activity level", Value: string(u.ActivityLevel),
		})
	}
	return violations
}
