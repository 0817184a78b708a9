package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const stopwordSetsCollection = "stopword_sets"

var ErrStopwordSetNotFound = errors.New("stop-word set not found")

// StopwordSet is a named list of stop words, e.g. a domain-specific list.
type StopwordSet struct {
	Name  string   `bson:"name" json:"name"`
	Words []string `bson:"words" json:"words"`
}

type StopwordsRepository struct {
	mongoRepo *MongoRepository
}

func NewStopwordsRepository(mongoRepo *MongoRepository) *StopwordsRepository {
	return &StopwordsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *StopwordsRepository) GetSet(ctx context.Context, name string) (*StopwordSet, error) {
	filter := bson.M{"name": name}

	var set StopwordSet
	err := r.mongoRepo.FindOne(ctx, stopwordSetsCollection, filter).Decode(&set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrStopwordSetNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stop-word set: %w", err)
	}

	return &set, nil
}

// ListSetNames returns the names of all stored sets, sorted.
func (r *StopwordsRepository) ListSetNames(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"name": 1}).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.mongoRepo.FindMany(ctx, stopwordSetsCollection, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stop-word sets: %w", err)
	}
	defer cursor.Close(ctx)

	var sets []StopwordSet
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, fmt.Errorf("failed to decode stop-word sets: %w", err)
	}

	names := make([]string, 0, len(sets))
	for _, set := range sets {
		names = append(names, set.Name)
	}
	return names, nil
}
