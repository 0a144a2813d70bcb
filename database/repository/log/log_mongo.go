package logRepo

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

// MongoLogRepo implements LogRepository using MongoDB.
type MongoLogRepo struct {
	coll *mongo.Collection
}

// NewMongoLogRepo creates a new instance of LogRepository using MongoDB.
func NewMongoLogRepo() LogRepository {
	coll := database.Collection("device_logs")
	repo := &MongoLogRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoLogRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "deviceId", Value: 1}, {Key: "timestamp", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create appends a new activity entry.
func (r *MongoLogRepo) Create(entry *models.DeviceLog) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := r.coll.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create device log: %w", err)
	}
	return nil
}

func (r *MongoLogRepo) find(filter bson.M, limit int64) ([]models.DeviceLog, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve device logs: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.DeviceLog
	for cursor.Next(ctx) {
		var e models.DeviceLog
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode device log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GetRecent retrieves the most recent entries, newest first.
func (r *MongoLogRepo) GetRecent(limit int64) ([]models.DeviceLog, error) {
	return r.find(bson.M{}, limit)
}

// GetByDevice retrieves the most recent entries for one device.
func (r *MongoLogRepo) GetByDevice(deviceID string, limit int64) ([]models.DeviceLog, error) {
	return r.find(bson.M{"deviceId": deviceID}, limit)
}
