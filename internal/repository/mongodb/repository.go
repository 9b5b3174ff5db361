package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/apperror"
	"github.com/mamadbah2/oilledger/internal/repository/store"
)

// MongoDBRepository implements store.Store with one collection per entity.
// Record ids are stored as _id, which gives duplicate detection for free.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

// NewMongoDBRepository connects, pings and ensures the ledger indexes.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client: client,
		dbName: dbName,
		logger: logger,
	}

	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	indexes := map[store.Entity]mongo.IndexModel{
		// One ledger line per product and day.
		store.StockLog: {
			Keys:    bson.D{{Key: "productId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		store.DispatchLog: {
			Keys: bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		store.PriceLog: {
			Keys: bson.D{{Key: "productId", Value: 1}, {Key: "isCurrent", Value: 1}},
		},
		store.Routes: {
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		store.Vehicles: {
			Keys:    bson.D{{Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	for entity, model := range indexes {
		if _, err := r.collection(entity).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", entity, err)
		}
	}
	return nil
}

func (r *MongoDBRepository) collection(entity store.Entity) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(string(entity))
}

// Find decodes every matching document into out.
func (r *MongoDBRepository) Find(ctx context.Context, entity store.Entity, filter store.Filter, out any) error {
	cursor, err := r.collection(entity).Find(ctx, toBSON(filter))
	if err != nil {
		return apperror.NewStore("find "+string(entity), err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return apperror.NewStore("find "+string(entity), err)
	}
	return nil
}

// FindOne decodes the first matching document into out.
func (r *MongoDBRepository) FindOne(ctx context.Context, entity store.Entity, filter store.Filter, out any) error {
	err := r.collection(entity).FindOne(ctx, toBSON(filter)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperror.NewNotFound(string(entity), map[string]any(filter))
	}
	if err != nil {
		return apperror.NewStore("find "+string(entity), err)
	}
	return nil
}

// Insert stores doc under id.
func (r *MongoDBRepository) Insert(ctx context.Context, entity store.Entity, id any, doc any) error {
	_, err := r.collection(entity).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.NewDuplicate(string(entity), id)
	}
	if err != nil {
		return apperror.NewStore("insert "+string(entity), err)
	}

	r.logger.Debug("document inserted", zap.String("collection", string(entity)), zap.Any("id", id))
	return nil
}

// Update applies fields with $set to the document with the given id.
func (r *MongoDBRepository) Update(ctx context.Context, entity store.Entity, id any, fields store.Fields) error {
	set := bson.M{}
	for key, value := range fields {
		set[fieldName(key)] = value
	}

	res, err := r.collection(entity).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return apperror.NewStore("update "+string(entity), err)
	}
	if res.MatchedCount == 0 {
		return apperror.NewNotFound(string(entity), id)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func toBSON(filter store.Filter) bson.M {
	out := bson.M{}
	for key, value := range filter {
		out[fieldName(key)] = value
	}
	return out
}

// fieldName maps model field names onto document keys; only the id differs.
func fieldName(key string) string {
	if key == store.FieldID {
		return "_id"
	}
	return key
}
