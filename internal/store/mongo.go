package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Abhishek5chawan/WhisperLink/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore keeps each account as one document with the inbox embedded,
// so appends are a single filtered $push.
type MongoStore struct {
	Client *mongo.Client
	Users  *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo, %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo, %w", err)
	}

	users := client.Database(database).Collection("users")

	_, err = users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "verified", Value: 1}, {Key: "verify_code_expiry", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes, %w", err)
	}

	return &MongoStore{
		Client: client,
		Users:  users,
	}, nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User

	err := s.Users.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"messages": 0})).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStore) CreateUser(ctx context.Context, u *model.User) error {
	// $push refuses to append to a null field
	if u.Messages == nil {
		u.Messages = []model.Message{}
	}

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	_, err := s.Users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}

	return err
}

func (s *MongoStore) UpdatePending(ctx context.Context, id string, p PendingUpdate) error {
	set := bson.M{
		"verify_code":           p.Code,
		"verify_code_expiry":    p.Expiry,
		"verify_code_issued_at": p.IssuedAt,
		"updated_at":            time.Now().UTC(),
	}

	if p.Username != "" {
		set["username"] = p.Username
	}

	if p.PasswordHash != "" {
		set["password_hash"] = p.PasswordHash
	}

	r, err := s.Users.UpdateOne(ctx, bson.M{"_id": id, "verified": false}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}

		return err
	}

	if r.MatchedCount == 0 {
		return ErrConflict
	}

	return nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	r, err := s.Users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}

	if r.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *MongoStore) MarkVerified(ctx context.Context, id, code string, now time.Time) (bool, error) {
	r, err := s.Users.UpdateOne(ctx,
		bson.M{
			"_id":                id,
			"verified":           false,
			"verify_code":        code,
			"verify_code_expiry": bson.M{"$gte": now},
		},
		bson.M{"$set": bson.M{
			"verified":   true,
			"updated_at": now,
		}},
	)
	if err != nil {
		return false, err
	}

	return r.ModifiedCount == 1, nil
}

func (s *MongoStore) SetAccepting(ctx context.Context, id string, accepting bool) error {
	r, err := s.Users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"accepting_messages": accepting,
			"updated_at":         time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}

	if r.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *MongoStore) AppendMessage(ctx context.Context, username string, msg *model.Message) error {
	r, err := s.Users.UpdateOne(ctx,
		bson.M{"username": username, "accepting_messages": true},
		bson.M{"$push": bson.M{"messages": msg}},
	)
	if err != nil {
		return err
	}

	if r.MatchedCount == 1 {
		return nil
	}

	// Nothing matched, figure out which half of the filter failed
	n, err := s.Users.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrNotFound
	}

	return ErrNotAccepting
}

func (s *MongoStore) ListMessages(ctx context.Context, userID string) ([]model.Message, error) {
	var user model.User

	err := s.Users.FindOne(ctx, bson.M{"_id": userID}, options.FindOne().SetProjection(bson.M{"messages": 1})).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	messages := user.Messages
	if messages == nil {
		messages = []model.Message{}
	}

	for i := range messages {
		messages[i].UserID = userID
	}

	slices.SortFunc(messages, func(a, b model.Message) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return strings.Compare(b.ID, a.ID)
	})

	return messages, nil
}

func (s *MongoStore) DeleteMessage(ctx context.Context, userID, messageID string) error {
	r, err := s.Users.UpdateOne(ctx,
		bson.M{"_id": userID, "messages.id": messageID},
		bson.M{"$pull": bson.M{"messages": bson.M{"id": messageID}}},
	)
	if err != nil {
		return err
	}

	if r.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *MongoStore) DeleteStaleUnverified(ctx context.Context, cutoff time.Time) (int64, error) {
	r, err := s.Users.DeleteMany(ctx, bson.M{
		"verified":           false,
		"verify_code_expiry": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}

	return r.DeletedCount, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}
