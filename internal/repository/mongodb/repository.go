package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/braincoral/reefplan/internal/domain/models"
)

// Repository defines the interface for production-plan storage.
type Repository interface {
	SavePlan(ctx context.Context, records []models.PlanRecord) error
	ListPlanNames(ctx context.Context) ([]string, error)
	LoadPlan(ctx context.Context, name string) ([]models.PlanRecord, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "production_plans",
	}, nil
}

// SavePlan appends the flattened plan records. Plans are never updated in
// place; every save is a new batch of rows keyed by plan name and save
// timestamp.
func (r *MongoDBRepository) SavePlan(ctx context.Context, records []models.PlanRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("refusing to save an empty plan")
	}

	docs := make([]interface{}, len(records))
	for i, record := range records {
		docs[i] = record
	}

	collection := r.client.Database(r.dbName).Collection(r.collName)
	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert plan records: %w", err)
	}
	return nil
}

// ListPlanNames returns the distinct names of saved plans.
func (r *MongoDBRepository) ListPlanNames(ctx context.Context) ([]string, error) {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	values, err := collection.Distinct(ctx, "plan_name", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list plan names: %w", err)
	}

	names := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// LoadPlan returns all records of the named plan ordered by day.
func (r *MongoDBRepository) LoadPlan(ctx context.Context, name string) ([]models.PlanRecord, error) {
	collection := r.client.Database(r.dbName).Collection(r.collName)

	findOptions := options.Find().SetSort(bson.D{{Key: "day", Value: 1}, {Key: "species", Value: 1}})
	cursor, err := collection.Find(ctx, bson.D{{Key: "plan_name", Value: name}}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %q: %w", name, err)
	}
	defer cursor.Close(ctx)

	var records []models.PlanRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode plan %q: %w", name, err)
	}
	return records, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
