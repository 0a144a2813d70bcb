package deviceRepo

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

// MongoDeviceRepo implements DeviceRepository using MongoDB.
type MongoDeviceRepo struct {
	coll *mongo.Collection
}

// NewMongoDeviceRepo creates a new instance of DeviceRepository using MongoDB.
func NewMongoDeviceRepo() DeviceRepository {
	coll := database.Collection("devices")
	repo := &MongoDeviceRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoDeviceRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "roomId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a device by its unique ID.
func (r *MongoDeviceRepo) GetByID(id string) (*models.Device, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var device models.Device
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&device); err != nil {
		return nil, fmt.Errorf("failed to fetch device with id %s: %w", id, err)
	}
	return &device, nil
}

func (r *MongoDeviceRepo) find(filter bson.M) ([]models.Device, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve devices: %w", err)
	}
	defer cursor.Close(ctx)

	var devices []models.Device
	for cursor.Next(ctx) {
		var d models.Device
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to decode device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// GetAll retrieves all devices.
func (r *MongoDeviceRepo) GetAll() ([]models.Device, error) {
	return r.find(bson.M{})
}

// GetByRoom retrieves all devices assigned to a room.
func (r *MongoDeviceRepo) GetByRoom(roomID string) ([]models.Device, error) {
	return r.find(bson.M{"roomId": roomID})
}

// GetByRooms retrieves all devices assigned to any of the given rooms.
func (r *MongoDeviceRepo) GetByRooms(roomIDs []string) ([]models.Device, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	return r.find(bson.M{"roomId": bson.M{"$in": roomIDs}})
}

// Create inserts a new device document.
func (r *MongoDeviceRepo) Create(device *models.Device) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	device.CreatedAt = now
	device.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, device)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

// Update modifies an existing device document.
func (r *MongoDeviceRepo) Update(device *models.Device) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	device.UpdatedAt = time.Now()
	filter := bson.M{"id": device.ID}
	update := bson.M{"$set": device}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update device with id %s: %w", device.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("device with id %s not found", device.ID)
	}
	return nil
}

// UpdateStatus sets only the status and activity timestamp of a device.
func (r *MongoDeviceRepo) UpdateStatus(id string, status models.DeviceStatus) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"status":     status,
		"lastActive": now,
		"updatedAt":  now,
	}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update status of device %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("device with id %s not found", id)
	}
	return nil
}

// Delete removes a device document by its ID.
func (r *MongoDeviceRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete device with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("device with id %s not found", id)
	}
	return nil
}
