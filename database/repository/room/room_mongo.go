package roomRepo

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

// MongoRoomRepo implements RoomRepository using MongoDB.
type MongoRoomRepo struct {
	coll *mongo.Collection
}

// NewMongoRoomRepo creates a new instance of RoomRepository using MongoDB.
func NewMongoRoomRepo() RoomRepository {
	coll := database.Collection("rooms")
	repo := &MongoRoomRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoRoomRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "memberIds", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a room by its unique ID.
func (r *MongoRoomRepo) GetByID(id string) (*models.Room, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var room models.Room
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&room); err != nil {
		return nil, fmt.Errorf("failed to fetch room with id %s: %w", id, err)
	}
	return &room, nil
}

func (r *MongoRoomRepo) find(filter bson.M) ([]models.Room, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []models.Room
	for cursor.Next(ctx) {
		var rm models.Room
		if err := cursor.Decode(&rm); err != nil {
			return nil, fmt.Errorf("failed to decode room: %w", err)
		}
		rooms = append(rooms, rm)
	}
	return rooms, nil
}

// GetAll retrieves all rooms.
func (r *MongoRoomRepo) GetAll() ([]models.Room, error) {
	return r.find(bson.M{})
}

// GetByMember retrieves all rooms the given user belongs to.
func (r *MongoRoomRepo) GetByMember(userID string) ([]models.Room, error) {
	return r.find(bson.M{"memberIds": userID})
}

// Create inserts a new room document.
func (r *MongoRoomRepo) Create(room *models.Room) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, room)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// Update modifies an existing room document.
func (r *MongoRoomRepo) Update(room *models.Room) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	room.UpdatedAt = time.Now()
	filter := bson.M{"id": room.ID}
	update := bson.M{"$set": room}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update room with id %s: %w", room.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("room with id %s not found", room.ID)
	}
	return nil
}

// Delete removes a room document by its ID.
func (r *MongoRoomRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete room with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("room with id %s not found", id)
	}
	return nil
}
