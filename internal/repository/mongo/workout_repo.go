// internal/repository/mongo/workout_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/query"
	"fittrack/fitness-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository.
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout. User existence is the service's concern.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.Title == "" {
		return primitive.NilObjectID, errors.New("workout requires userId and title")
	}

	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// List runs the filtered, sorted, paginated query described by q.
func (r *mongoWorkoutRepository) List(ctx context.Context, q *query.WorkoutQuery) ([]domain.Workout, error) {
	findOptions := options.Find().
		SetSort(sortDoc(q.Sort)).
		SetSkip(q.Page.Skip()).
		SetLimit(int64(q.Page.Limit))

	cursor, err := r.collection.Find(ctx, workoutFilterDoc(q.Filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Count sizes the full match set for the filter, ignoring pagination.
func (r *mongoWorkoutRepository) Count(ctx context.Context, filter query.WorkoutFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, workoutFilterDoc(filter))
}

// Update replaces the stored document with the given snapshot.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}
	workout.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": workout.ID}, workout)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the workout. Unconditional; nothing references workouts.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountByUser counts every workout owned by the user.
func (r *mongoWorkoutRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID})
}

// UserTotals sums the user's completed workouts in a single group stage.
// An empty match set decodes to the zero struct, not an error.
func (r *mongoWorkoutRepository) UserTotals(ctx context.Context, userID primitive.ObjectID) (*repository.UserTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID, "completed": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"workouts":      bson.M{"$sum": 1},
			"totalCalories": bson.M{"$sum": "$caloriesBurned"},
			"totalDuration": bson.M{"$sum": "$duration"},
		}}},
	}

	var results []repository.UserTotals
	if err := r.aggregate(ctx, pipeline, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &repository.UserTotals{}, nil
	}
	return &results[0], nil
}

// CountCompletedSince counts the user's completed workouts with a
// workoutDate at or after since.
func (r *mongoWorkoutRepository) CountCompletedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	filter := bson.M{
		"userId":      userID,
		"completed":   true,
		"workoutDate": bson.M{"$gte": since},
	}
	return r.collection.CountDocuments(ctx, filter)
}

// RecentByUser returns the user's most recent workouts, newest first.
func (r *mongoWorkoutRepository) RecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Workout, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "workoutDate", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID, "completed": true}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// GlobalTotals aggregates over the whole collection. The completed count
// uses a conditional sum so a single pipeline covers both totals.
func (r *mongoWorkoutRepository) GlobalTotals(ctx context.Context) (*repository.GlobalTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"totalWorkouts": bson.M{"$sum": 1},
			"completedWorkouts": bson.M{"$sum": bson.M{
				"$cond": bson.A{"$completed", 1, 0},
			}},
			"totalCalories": bson.M{"$sum": "$caloriesBurned"},
			"totalDuration": bson.M{"$sum": "$duration"},
			"avgCalories":   bson.M{"$avg": "$caloriesBurned"},
			"avgDuration":   bson.M{"$avg": "$duration"},
		}}},
	}

	var results []repository.GlobalTotals
	if err := r.aggregate(ctx, pipeline, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &repository.GlobalTotals{}, nil
	}
	return &results[0], nil
}

// GroupByExerciseType groups completed workouts by type, largest group
// first with type as the deterministic tie-break.
func (r *mongoWorkoutRepository) GroupByExerciseType(ctx context.Context) ([]repository.ExerciseTypeGroup, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"completed": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$exerciseType",
			"count":         bson.M{"$sum": 1},
			"totalCalories": bson.M{"$sum": "$caloriesBurned"},
			"avgCalories":   bson.M{"$avg": "$caloriesBurned"},
			"avgDuration":   bson.M{"$avg": "$duration"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	groups := []repository.ExerciseTypeGroup{}
	if err := r.aggregate(ctx, pipeline, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GroupByIntensity groups completed workouts by intensity, largest group
// first.
func (r *mongoWorkoutRepository) GroupByIntensity(ctx context.Context) ([]repository.IntensityGroup, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"completed": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$intensity",
			"count":       bson.M{"$sum": 1},
			"avgCalories": bson.M{"$avg": "$caloriesBurned"},
			"avgDuration": bson.M{"$avg": "$duration"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	groups := []repository.IntensityGroup{}
	if err := r.aggregate(ctx, pipeline, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// MostActiveUsers ranks users by completed-workout count and joins the
// owning user document for name and email. Ties order by user id ascending
// so the ranking is deterministic.
func (r *mongoWorkoutRepository) MostActiveUsers(ctx context.Context, limit int) ([]repository.UserActivity, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"completed": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$userId",
			"workouts":      bson.M{"$sum": 1},
			"totalCalories": bson.M{"$sum": "$caloriesBurned"},
			"totalDuration": bson.M{"$sum": "$duration"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "workouts", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         userCollectionName,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.M{
			"workouts":      1,
			"totalCalories": 1,
			"totalDuration": 1,
			"name":          "$user.name",
			"email":         "$user.email",
		}}},
	}

	ranking := []repository.UserActivity{}
	if err := r.aggregate(ctx, pipeline, &ranking); err != nil {
		return nil, err
	}
	return ranking, nil
}

// aggregate runs a pipeline and decodes every result into out.
func (r *mongoWorkoutRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// workoutFilterDoc translates the normalized filter into a Mongo filter
// document. Date bounds are inclusive on both ends.
func workoutFilterDoc(f query.WorkoutFilter) bson.M {
	filter := bson.M{}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}
	if f.ExerciseType != nil {
		filter["exerciseType"] = *f.ExerciseType
	}
	if f.Intensity != nil {
		filter["intensity"] = *f.Intensity
	}
	if f.Completed != nil {
		filter["completed"] = *f.Completed
	}
	dateRange := bson.M{}
	if f.StartDate != nil {
		dateRange["$gte"] = *f.StartDate
	}
	if f.EndDate != nil {
		dateRange["$lte"] = *f.EndDate
	}
	if len(dateRange) > 0 {
		filter["workoutDate"] = dateRange
	}
	return filter
}

// EnsureWorkoutIndexes creates the indexes for the workouts collection.
// Call this once during application startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Per-user history, newest first.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "workoutDate", Value: -1}},
			Options: options.Index(),
		},
		{
			// Global feed and date-range filters.
			Keys:    bson.D{{Key: "workoutDate", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
