package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/an-furnish/furnish-api/models"
)

const designRequestsCollection = "design_requests"

// MongoOrderStore keeps orders in a MongoDB collection. Status writes are a
// single findOneAndUpdate, so note appends need no retry loop.
type MongoOrderStore struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewMongoOrderStore builds a store over db
func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{db: db, coll: db.Collection(designRequestsCollection)}
}

// EnsureIndexes creates the unique humanCode index and the listing index
func (s *MongoOrderStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "humanCode", Value: 1}},
			Options: options.Index().SetName("humanCode_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create design request indexes: %w", err)
	}
	return nil
}

func (s *MongoOrderStore) Insert(ctx context.Context, order *models.DesignRequest) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Notes == nil {
		order.Notes = models.NoteList{}
	}

	if _, err := s.coll.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			order.ID = ""
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (s *MongoOrderStore) FindByID(ctx context.Context, id string) (*models.DesignRequest, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoOrderStore) FindByCode(ctx context.Context, code string) (*models.DesignRequest, error) {
	return s.findOne(ctx, bson.M{"humanCode": code})
}

func (s *MongoOrderStore) findOne(ctx context.Context, filter bson.M) (*models.DesignRequest, error) {
	var order models.DesignRequest
	if err := s.coll.FindOne(ctx, filter).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	normalizeOrder(&order)
	return &order, nil
}

func (s *MongoOrderStore) List(ctx context.Context, opts ListOptions) ([]models.DesignRequest, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit)).SetSkip(int64(opts.Offset()))
	}

	cursor, err := s.coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.DesignRequest{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	for i := range orders {
		normalizeOrder(&orders[i])
	}
	return orders, nil
}

func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id string, change StatusChange) (*models.DesignRequest, models.OrderStatus, error) {
	update := bson.M{
		"$set": bson.M{"status": change.Status, "updatedAt": change.At},
		"$inc": bson.M{"version": 1},
	}
	if change.Note != "" {
		update["$push"] = bson.M{"notes": change.Note}
	}

	// The pre-image tells us the replaced status; the post-image follows from the update
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var before models.DesignRequest
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", ErrOrderNotFound
		}
		return nil, "", fmt.Errorf("failed to update order status: %w", err)
	}
	normalizeOrder(&before)

	after := before
	after.Status = change.Status
	after.UpdatedAt = change.At.UTC()
	after.Version = before.Version + 1
	after.Notes = append(models.NoteList{}, before.Notes...)
	if change.Note != "" {
		after.Notes = append(after.Notes, change.Note)
	}
	return &after, before.Status, nil
}

func (s *MongoOrderStore) SetAttachment(ctx context.Context, id, key string, at time.Time) (*models.DesignRequest, error) {
	filter := bson.M{
		"_id":           id,
		"status":        models.StatusNew,
		"attachmentKey": bson.M{"$in": bson.A{nil, ""}},
	}
	update := bson.M{
		"$set": bson.M{"attachmentKey": key, "updatedAt": at},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.DesignRequest
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to record attachment: %w", err)
		}
		if _, findErr := s.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, ErrAttachmentNotAllowed
	}
	normalizeOrder(&order)
	return &order, nil
}

func (s *MongoOrderStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}
