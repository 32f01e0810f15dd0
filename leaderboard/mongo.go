package leaderboard

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoDbName is the database the leaderboard collection lives in
const mongoDbName = "submit_system"

// mongoStore persists leaderboard records in MongoDB, one document per team
type mongoStore struct {
	client  *mongo.Client
	records *mongo.Collection
}

// DialMongo connects to the MongoDB pointed at by uri and opens the
// leaderboard collection
func DialMongo(ctx context.Context, uri string) (Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to leaderboard database: %s",
			err.Error())
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to reach leaderboard database: %s",
			err.Error())
	}

	return mongoStore{
		client:  client,
		records: client.Database(mongoDbName).Collection("leaderboard"),
	}, nil
}

// Load implements Store
func (s mongoStore) Load(ctx context.Context) (map[string]Record, error) {
	cursor, err := s.records.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard collection: %s",
			err.Error())
	}

	var docs []Record
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard collection: %s",
			err.Error())
	}

	records := map[string]Record{}
	for _, doc := range docs {
		records[doc.Name] = doc
	}

	return records, nil
}

// Save implements Store. Each team's document is replaced whole, matching
// the single-transaction-per-invocation model of the tools.
func (s mongoStore) Save(ctx context.Context, records map[string]Record) error {
	for name, record := range records {
		_, err := s.records.ReplaceOne(ctx, bson.D{{Key: "_id", Value: name}},
			record, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("failed to write leaderboard record for %s: %s",
				name, err.Error())
		}
	}

	return nil
}

// Close implements Store
func (s mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
