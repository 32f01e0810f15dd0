package groups

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoDbName is the database membership collections live in
const mongoDbName = "submit_system"

// mongoStore persists membership state in MongoDB. Documents are one per
// user and one per group so the state can be inspected with normal queries.
type mongoStore struct {
	client *mongo.Client

	// users holds {_id: username, group: groupname} documents
	users *mongo.Collection

	// groups holds {_id: groupname, members: [username]} documents
	groups *mongo.Collection
}

// userDoc is one users collection document
type userDoc struct {
	Username string `bson:"_id"`
	Group    string `bson:"group"`
}

// groupDoc is one groups collection document
type groupDoc struct {
	Name    string   `bson:"_id"`
	Members []string `bson:"members"`
}

// DialMongo connects to the MongoDB pointed at by uri and opens the
// membership collections
func DialMongo(ctx context.Context, uri string) (Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to membership database: %s",
			err.Error())
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to reach membership database: %s",
			err.Error())
	}

	db := client.Database(mongoDbName)

	return mongoStore{
		client: client,
		users:  db.Collection("group_users"),
		groups: db.Collection("group_members"),
	}, nil
}

// Load implements Store
func (s mongoStore) Load(ctx context.Context) (*Membership, error) {
	membership := NewMembership()

	userCursor, err := s.users.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query users collection: %s", err.Error())
	}

	var users []userDoc
	if err := userCursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to read users collection: %s", err.Error())
	}

	for _, user := range users {
		membership.Users[user.Username] = user.Group
	}

	groupCursor, err := s.groups.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query groups collection: %s", err.Error())
	}

	var groups []groupDoc
	if err := groupCursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to read groups collection: %s", err.Error())
	}

	for _, group := range groups {
		membership.Groups[group.Name] = group.Members
	}

	return membership, nil
}

// Save implements Store. The collections are rewritten whole, matching the
// single-transaction-per-invocation model of the tools.
func (s mongoStore) Save(ctx context.Context, membership *Membership) error {
	if err := s.users.Drop(ctx); err != nil {
		return fmt.Errorf("failed to clear users collection: %s", err.Error())
	}
	if err := s.groups.Drop(ctx); err != nil {
		return fmt.Errorf("failed to clear groups collection: %s", err.Error())
	}

	if len(membership.Users) > 0 {
		userDocs := []interface{}{}
		for username, group := range membership.Users {
			userDocs = append(userDocs, userDoc{
				Username: username,
				Group:    group,
			})
		}

		if _, err := s.users.InsertMany(ctx, userDocs); err != nil {
			return fmt.Errorf("failed to write users collection: %s", err.Error())
		}
	}

	if len(membership.Groups) > 0 {
		groupDocs := []interface{}{}
		for name, members := range membership.Groups {
			groupDocs = append(groupDocs, groupDoc{
				Name:    name,
				Members: members,
			})
		}

		if _, err := s.groups.InsertMany(ctx, groupDocs); err != nil {
			return fmt.Errorf("failed to write groups collection: %s", err.Error())
		}
	}

	return nil
}

// Close implements Store
func (s mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
