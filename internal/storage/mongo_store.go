package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/samvad-hq/wire-scout/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const articleCollection = "articles"

// articleDoc is the mongo document layout for an article.
type articleDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	URL        string             `bson:"url"`
	Title      string             `bson:"title"`
	Date       time.Time          `bson:"date"`
	Provider   string             `bson:"news_provided_by"`
	Content    string             `bson:"content"`
	IngestedAt time.Time          `bson:"_ingested_at"`
}

// mongoStore implements Store on a MongoDB collection.
type mongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	mode   string
	now    func() time.Time
}

func openMongo(ctx context.Context, uri, database, mode string) (*mongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &mongoStore{
		client: client,
		coll:   client.Database(database).Collection(articleCollection),
		mode:   mode,
		now:    time.Now,
	}, nil
}

func (m *mongoStore) Close(ctx context.Context) error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

// Save inserts a, or in upsert mode replaces the document with the same url.
func (m *mongoStore) Save(ctx context.Context, a domain.Article) (string, error) {
	doc := articleDoc{
		URL:        a.URL,
		Title:      a.Title,
		Date:       a.PublishedAt,
		Provider:   a.Provider,
		Content:    a.Content,
		IngestedAt: m.now().UTC(),
	}

	if m.mode == ModeUpsert {
		return m.upsert(ctx, doc)
	}

	res, err := m.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert article %s: %w", a.URL, err)
	}
	return objectIDString(res.InsertedID)
}

func (m *mongoStore) upsert(ctx context.Context, doc articleDoc) (string, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"_id": 1})

	var out struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := m.coll.FindOneAndUpdate(ctx, bson.M{"url": doc.URL}, bson.M{"$set": doc}, opts).Decode(&out)
	if err != nil {
		return "", fmt.Errorf("upsert article %s: %w", doc.URL, err)
	}
	return out.ID.Hex(), nil
}

// Query runs f as a mongo find sorted by _id (insertion order).
func (m *mongoStore) Query(ctx context.Context, f domain.Filter) ([]domain.StoredArticle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := m.coll.Find(ctx, buildFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer cur.Close(ctx)

	var docs []articleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}

	items := make([]domain.StoredArticle, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.StoredArticle{
			ID: d.ID.Hex(),
			Article: domain.Article{
				URL:         d.URL,
				Title:       d.Title,
				PublishedAt: d.Date,
				Provider:    d.Provider,
				Content:     d.Content,
			},
			IngestedAt: d.IngestedAt,
		})
	}
	return items, nil
}

// EnsureIndexes creates the url and date indexes used by upserts and range
// queries. It is idempotent.
func (m *mongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetName("url_1")},
		{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetName("date_1")},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// buildFilter translates f into a mongo query document. Text predicates are
// escaped so user input is matched literally.
func buildFilter(f domain.Filter) bson.M {
	query := bson.M{}
	textFields := []struct {
		field string
		value string
	}{
		{"title", f.Title},
		{"content", f.Content},
		{"news_provided_by", f.Provider},
	}
	for _, tf := range textFields {
		if tf.value == "" {
			continue
		}
		query[tf.field] = primitive.Regex{Pattern: regexp.QuoteMeta(tf.value), Options: "i"}
	}

	date := bson.M{}
	if f.Start != nil {
		date["$gte"] = *f.Start
	}
	if f.End != nil {
		date["$lte"] = *f.End
	}
	if len(date) > 0 {
		query["date"] = date
	}
	return query
}

func objectIDString(id interface{}) (string, error) {
	oid, ok := id.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	return oid.Hex(), nil
}
