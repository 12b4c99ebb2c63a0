package repository

import (
	"context"
	"fmt"

	"codeduel/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const problemsCollection = "problems"

type ProblemRepo interface {
	InsertMany(ctx context.Context, problems []*model.Problem) (int, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error

	// Random returns n problems sampled server-side, fewer when the corpus is smaller
	Random(ctx context.Context, n int) ([]*model.Problem, error)
	GetByTitle(ctx context.Context, title string) (*model.Problem, error)
}

type problemRepo struct {
	collection *mongo.Collection
}

func NewProblemRepo(client *mongo.Client, database string) ProblemRepo {
	return &problemRepo{
		collection: client.Database(database).Collection(problemsCollection),
	}
}

func (r *problemRepo) InsertMany(ctx context.Context, problems []*model.Problem) (int, error) {
	if len(problems) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, len(problems))
	for i, p := range problems {
		if p.ID == "" {
			p.ID = primitive.NewObjectID().Hex()
		}
		docs[i] = p
	}

	res, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("failed to insert problems: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func (r *problemRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *problemRepo) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}

func (r *problemRepo) Random(ctx context.Context, n int) ([]*model.Problem, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.M{"size": n}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var problems []*model.Problem
	if err = cursor.All(ctx, &problems); err != nil {
		return nil, err
	}
	return problems, nil
}

func (r *problemRepo) GetByTitle(ctx context.Context, title string) (*model.Problem, error) {
	var problem model.Problem
	err := r.collection.FindOne(ctx, bson.M{"title": title}).Decode(&problem)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &problem, nil
}
