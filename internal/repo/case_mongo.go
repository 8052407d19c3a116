package repo

import (
	"CaseKeeper/internal/model"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	casesCollection = "cases"
	// mongoUpdateAttempts bounds retries when another writer changed the
	// document between read and replace.
	mongoUpdateAttempts = 3
)

var errConcurrentModification = errors.New("concurrent modification")

type mongoCaseRepo struct {
	mu     sync.Mutex
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoCaseRepository подключается к MongoDB и готовит коллекцию cases.
func NewMongoCaseRepository(ctx context.Context, uri, dbName string) (CaseRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(dbName).Collection(casesCollection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "cabinet_no", Value: 1}, {Key: "shelf_no", Value: 1}, {Key: "sequence_no", Value: 1}}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return &mongoCaseRepo{client: client, coll: coll}, nil
}

func (r *mongoCaseRepo) Create(ctx context.Context, c *model.Case) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return "", storageErr("create", c.ID, err)
	}
	return c.ID, nil
}

func (r *mongoCaseRepo) GetByID(ctx context.Context, id string) (*model.Case, error) {
	var c model.Case
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get", id, err)
	}
	return &c, nil
}

func (r *mongoCaseRepo) ListAll(ctx context.Context) ([]model.Case, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storageErr("list", "", err)
	}
	cases := []model.Case{}
	if err := cur.All(ctx, &cases); err != nil {
		return nil, storageErr("list", "", err)
	}
	return cases, nil
}

func (r *mongoCaseRepo) FindByLocation(ctx context.Context, cabinet, shelf, sequence int) (*model.Case, error) {
	filter := bson.M{"cabinet_no": cabinet, "shelf_no": shelf, "sequence_no": sequence}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}})
	var c model.Case
	err := r.coll.FindOne(ctx, filter, opts).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("find location", "", err)
	}
	return &c, nil
}

func (r *mongoCaseRepo) UpdateFields(ctx context.Context, id string, fields model.CaseFields, actor string, at time.Time) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := bson.M{}
	for k, v := range fields.Columns() {
		set[k] = v
	}
	set["last_updated_by_user_name"] = actor
	set["last_updated_timestamp"] = at

	var c model.Case
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("update fields", id, err)
	}
	return &c, nil
}

func (r *mongoCaseRepo) Update(ctx context.Context, id string, mutate MutateFunc) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < mongoUpdateAttempts; attempt++ {
		var c model.Case
		err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&c)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, storageErr("update", id, err)
		}

		prev := c.LastUpdatedTimestamp
		if err := mutate(&c); err != nil {
			return nil, err
		}
		c.ID = id

		res, err := r.coll.ReplaceOne(ctx, bson.M{"id": id, "last_updated_timestamp": prev}, c)
		if err != nil {
			return nil, storageErr("update", id, err)
		}
		if res.MatchedCount == 1 {
			return &c, nil
		}
	}
	return nil, storageErr("update", id, errConcurrentModification)
}

func (r *mongoCaseRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, storageErr("delete", id, err)
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoCaseRepo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
