package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"homehub/database"
	"homehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoScheduleRepo implements ScheduleRepository using MongoDB.
type MongoScheduleRepo struct {
	coll *mongo.Collection
}

// NewMongoScheduleRepo creates a new instance of ScheduleRepository using MongoDB.
func NewMongoScheduleRepo() ScheduleRepository {
	coll := database.Collection("schedules")
	repo := &MongoScheduleRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoScheduleRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "deviceId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a schedule by its unique ID.
func (r *MongoScheduleRepo) GetByID(id string) (*models.Schedule, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var schedule models.Schedule
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&schedule); err != nil {
		return nil, fmt.Errorf("failed to fetch schedule with id %s: %w", id, err)
	}
	return &schedule, nil
}

func (r *MongoScheduleRepo) find(filter bson.M) ([]models.Schedule, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve schedules: %w", err)
	}
	defer cursor.Close(ctx)

	var schedules []models.Schedule
	for cursor.Next(ctx) {
		var s models.Schedule
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}

// GetAll retrieves all schedules.
func (r *MongoScheduleRepo) GetAll() ([]models.Schedule, error) {
	return r.find(bson.M{})
}

// GetEnabledCron retrieves enabled recurring schedules.
func (r *MongoScheduleRepo) GetEnabledCron() ([]models.Schedule, error) {
	return r.find(bson.M{"enabled": true, "cron": bson.M{"$ne": ""}})
}

// Create inserts a new schedule document.
func (r *MongoScheduleRepo) Create(schedule *models.Schedule) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, schedule)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// Update modifies an existing schedule document.
func (r *MongoScheduleRepo) Update(schedule *models.Schedule) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	schedule.UpdatedAt = time.Now()
	filter := bson.M{"id": schedule.ID}
	update := bson.M{"$set": schedule}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update schedule with id %s: %w", schedule.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("schedule with id %s not found", schedule.ID)
	}
	return nil
}

// Delete removes a schedule document by its ID.
func (r *MongoScheduleRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete schedule with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("schedule with id %s not found", id)
	}
	return nil
}
