package requestRepo

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

// MongoRequestRepo implements RequestRepository using MongoDB.
type MongoRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoRequestRepo creates a new instance of RequestRepository using MongoDB.
func NewMongoRequestRepo() RequestRepository {
	coll := database.Collection("device_requests")
	repo := &MongoRequestRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoRequestRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "requesterId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "deviceId", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a request by its unique ID.
func (r *MongoRequestRepo) GetByID(id string) (*models.DeviceRequest, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var req models.DeviceRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to fetch request with id %s: %w", id, err)
	}
	return &req, nil
}

func (r *MongoRequestRepo) find(filter bson.M) ([]models.DeviceRequest, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []models.DeviceRequest
	for cursor.Next(ctx) {
		var req models.DeviceRequest
		if err := cursor.Decode(&req); err != nil {
			return nil, fmt.Errorf("failed to decode request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// GetAll retrieves all requests, newest first.
func (r *MongoRequestRepo) GetAll() ([]models.DeviceRequest, error) {
	return r.find(bson.M{})
}

// GetByRequester retrieves the requests filed by a user, newest first.
func (r *MongoRequestRepo) GetByRequester(requesterID string) ([]models.DeviceRequest, error) {
	return r.find(bson.M{"requesterId": requesterID})
}

// GetPending retrieves all requests still awaiting a decision.
func (r *MongoRequestRepo) GetPending() ([]models.DeviceRequest, error) {
	return r.find(bson.M{"status": models.RequestPending})
}

// HasPending reports whether the requester already has an outstanding
// PENDING request for the device.
func (r *MongoRequestRepo) HasPending(deviceID, requesterID string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{
		"deviceId":    deviceID,
		"requesterId": requesterID,
		"status":      models.RequestPending,
	})
	if err != nil {
		return false, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new request document.
func (r *MongoRequestRepo) Create(req *models.DeviceRequest) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	req.Status = models.RequestPending

	_, err := r.coll.InsertOne(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

// Resolve transitions a PENDING request into a terminal state. The filter
// includes the PENDING status so a terminal record is never rewritten.
func (r *MongoRequestRepo) Resolve(id string, outcome models.RequestStatus) (*models.DeviceRequest, error) {
	if outcome != models.RequestApproved && outcome != models.RequestRejected {
		return nil, fmt.Errorf("invalid resolution outcome %q", outcome)
	}

	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.RequestPending}
	update := bson.M{"$set": bson.M{
		"status":    outcome,
		"updatedAt": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.DeviceRequest
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		// Either unknown id or already resolved; disambiguate for the caller.
		if _, getErr := r.GetByID(id); getErr == nil {
			return nil, ErrAlreadyResolved
		}
		return nil, fmt.Errorf("request with id %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve request %s: %w", id, err)
	}
	return &updated, nil
}
