package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rbroggi/gestionusers/internal/core/model"
	"github.com/rbroggi/gestionusers/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	nomIndex   = "nom_1"
	emailIndex = "email_1"
)

// MongoDB is a mongo adapter for persistance.
type MongoDB struct {
	userCollection *mongo.Collection
	nowFunc        func() time.Time
}

// MongoDBArgs are the mandatory arguments for the creation of a MongoDB
type MongoDBArgs struct {
	// UserCollection is a mongo collection
	UserCollection *mongo.Collection
}

// MongoDBOptArgs are the optional arguments for building a MongoDB
type MongoDBOptArgs = func(*MongoDB)

// WithNowFunc can be used to override the nowFunc. Useful for testing.
func WithNowFunc(nowFunc func() time.Time) MongoDBOptArgs {
	return func(p *MongoDB) {
		p.nowFunc = nowFunc
	}
}

// utcNow is truncated to the millisecond precision of BSON dates.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewMongoDB creates a new MongoDB.
func NewMongoDB(args MongoDBArgs, optArgs ...MongoDBOptArgs) (*MongoDB, error) {
	if args.UserCollection == nil {
		return nil, errors.New("nil user collection")
	}
	m := &MongoDB{userCollection: args.UserCollection, nowFunc: utcNow}
	for _, opt := range optArgs {
		opt(m)
	}
	return m, nil
}

// EnsureIndexes creates the unique indexes on nom and email. It is idempotent.
func (p *MongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := p.userCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "nom", Value: 1}},
			Options: options.Index().SetName(nomIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(emailIndex).SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("error creating user indexes: %w", err)
	}
	return nil
}

// SaveUser will save the user in the database.
func (p *MongoDB) SaveUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("nil user passed to save method")
	}

	dbUser := p.toDBModel(user)
	if _, err := p.userCollection.InsertOne(ctx, dbUser); err != nil {
		return translateWriteError(err)
	}

	user.ID = dbUser.ID.Hex()
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// UpdateUser sets the patch fields in a single find-and-modify. It returns model.ErrNotFound if the
// user does not exist.
func (p *MongoDB) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*ports.UpdateUserResult, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidID, id)
	}

	now := p.nowFunc()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	res := p.userCollection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: objectID}}, updateDocument(patch, now), opts)

	existing := new(userDB)
	if err := res.Decode(existing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, translateWriteError(err)
	}

	before := translateDBToModel(*existing)
	return &ports.UpdateUserResult{
		Before: before,
		After:  patch.Apply(before, now),
	}, nil
}

// ListUsers lists every user in natural order.
func (p *MongoDB) ListUsers(ctx context.Context) ([]model.User, error) {
	return p.find(ctx, bson.D{})
}

// DeleteUser removes the user and returns its last state. It returns model.ErrNotFound if the
// user does not exist.
func (p *MongoDB) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidID, id)
	}

	deleted := new(userDB)
	if err := p.userCollection.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: objectID}}).Decode(deleted); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	user := translateDBToModel(*deleted)
	return &user, nil
}

// SearchUsers lists the users whose nom/prenom contain the query terms, ignoring case.
func (p *MongoDB) SearchUsers(ctx context.Context, query ports.SearchUsersQuery) ([]model.User, error) {
	return p.find(ctx, searchFilter(query))
}

func (p *MongoDB) find(ctx context.Context, filter bson.D) ([]model.User, error) {
	cursor, err := p.userCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var users []userDB
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return translateDBToModels(users), nil
}

func searchFilter(query ports.SearchUsersQuery) bson.D {
	filter := bson.D{}
	if query.Nom != "" {
		filter = append(filter, bson.E{Key: "nom", Value: containsIgnoreCase(query.Nom)})
	}
	if query.Prenom != "" {
		filter = append(filter, bson.E{Key: "prenom", Value: containsIgnoreCase(query.Prenom)})
	}
	return filter
}

func containsIgnoreCase(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

func updateDocument(patch model.UserPatch, now time.Time) bson.D {
	toUpdate := bson.D{}
	if patch.Nom != nil {
		toUpdate = append(toUpdate, bson.E{Key: "nom", Value: *patch.Nom})
	}
	if patch.Prenom != nil {
		toUpdate = append(toUpdate, bson.E{Key: "prenom", Value: *patch.Prenom})
	}
	if patch.Tel != nil {
		toUpdate = append(toUpdate, bson.E{Key: "tel", Value: *patch.Tel})
	}
	if patch.Email != nil {
		toUpdate = append(toUpdate, bson.E{Key: "email", Value: *patch.Email})
	}
	toUpdate = append(toUpdate, bson.E{Key: "updatedAt", Value: now})

	return bson.D{{Key: "$set", Value: toUpdate}}
}

// translateWriteError turns unique index violations into *model.DuplicateKeyError.
func translateWriteError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return &model.DuplicateKeyError{Field: duplicateField(err.Error()), Err: err}
}

// duplicateField extracts the colliding field from a server message such as
// "E11000 duplicate key error collection: User.users index: nom_1 dup key: { nom: \"Dupont\" }".
func duplicateField(msg string) string {
	switch {
	case strings.Contains(msg, "index: "+nomIndex):
		return "nom"
	case strings.Contains(msg, "index: "+emailIndex):
		return "email"
	default:
		return ""
	}
}

func (p *MongoDB) toDBModel(user *model.User) *userDB {
	now := p.nowFunc()
	dbUser := &userDB{
		ID:        primitive.NewObjectID(),
		Nom:       user.Nom,
		Prenom:    user.Prenom,
		Tel:       user.Tel,
		Email:     user.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !user.CreatedAt.IsZero() {
		dbUser.CreatedAt = user.CreatedAt
	}
	return dbUser
}

func translateDBToModels(dbUsers []userDB) []model.User {
	models := make([]model.User, len(dbUsers))
	for i, dbUser := range dbUsers {
		models[i] = translateDBToModel(dbUser)
	}
	return models
}

func translateDBToModel(dbUser userDB) model.User {
	return model.User{
		ID:        dbUser.ID.Hex(),
		Nom:       dbUser.Nom,
		Prenom:    dbUser.Prenom,
		Tel:       dbUser.Tel,
		Email:     dbUser.Email,
		CreatedAt: dbUser.CreatedAt,
		UpdatedAt: dbUser.UpdatedAt,
	}
}

// userDB mirrors the document layout of the users collection.
type userDB struct {
	ID        primitive.ObjectID `bson:"_id"`
	Nom       string             `bson:"nom"`
	Prenom    string             `bson:"prenom"`
	Tel       string             `bson:"tel"`
	Email     string             `bson:"email"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}
