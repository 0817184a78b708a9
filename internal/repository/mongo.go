package repository

import (
	"context"

	mongoInfra "github.com/RishiKendai/veritext/internal/infra/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	db *mongo.Database
}

func NewMongoRepository(client *mongoInfra.Client) *MongoRepository {
	return &MongoRepository{
		db: client.Database,
	}
}

func (r *MongoRepository) FindOne(ctx context.Context, collection string, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	return r.db.Collection(collection).FindOne(ctx, filter, opts...)
}

func (r *MongoRepository) FindMany(ctx context.Context, collection string, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	return r.db.Collection(collection).Find(ctx, filter, opts...)
}
