package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rbroggi/gestionusers/internal/core/model"
	"github.com/rbroggi/gestionusers/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDBTestSuite struct {
	suite.Suite
	db             *mongo.Client
	userCollection *mongo.Collection
	mongoAdapter   *MongoDB
}

var (
	dummyTime = time.Now().Truncate(time.Second).UTC()
)

func (suite *MongoDBTestSuite) SetupSuite() {
	url := os.Getenv("MONGODB_URL")
	if url == "" {
		suite.T().Skip("MONGODB_URL not set, skipping mongo adapter suite")
	}

	db, err := mongo.Connect(context.Background(), options.Client().ApplyURI(url))
	suite.Require().NoError(err)
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	suite.Require().NoError(db.Ping(timeoutCtx, nil))
	collection := db.Database("gestionusers_test").Collection("users")
	dummyTimeFunc := func() time.Time {
		return dummyTime
	}
	mongoAdapter, err := NewMongoDB(MongoDBArgs{UserCollection: collection}, WithNowFunc(dummyTimeFunc))
	suite.Require().NoError(err)
	suite.Require().NoError(mongoAdapter.EnsureIndexes(context.Background()))
	suite.mongoAdapter = mongoAdapter
	suite.db = db
	suite.userCollection = collection
}

func (suite *MongoDBTestSuite) SetupTest() {
	_, err := suite.userCollection.DeleteMany(context.Background(), bson.D{})
	suite.Require().NoError(err)
}

func (suite *MongoDBTestSuite) TearDownSuite() {
	if suite.db == nil {
		return
	}
	suite.Require().NoError(suite.db.Disconnect(context.Background()))
}

func (suite *MongoDBTestSuite) TestSaveUser() {
	tests := []struct {
		name        string
		existing    *model.User
		input       *model.User
		expectedErr func(err error)
		expectedDB  func(input *model.User, collection *mongo.Collection)
	}{
		{
			name:  "insert new user",
			input: &model.User{Nom: "Dupont", Prenom: "Jean", Tel: "12345678", Email: "jean.dupont@email.com"},
			expectedDB: func(input *model.User, collection *mongo.Collection) {
				res := collection.FindOne(context.Background(), bson.D{{Key: "_id", Value: mustID(suite.T(), input.ID)}})
				suite.NoError(res.Err())
				got := new(userDB)
				suite.Require().NoError(res.Decode(got))
				suite.Equal(input.ID, got.ID.Hex())
				suite.Equal("Dupont", got.Nom)
				suite.Equal("Jean", got.Prenom)
				suite.Equal("12345678", got.Tel)
				suite.Equal("jean.dupont@email.com", got.Email)
				suite.Equal(dummyTime, got.CreatedAt)
				suite.Equal(dummyTime, got.UpdatedAt)
			},
		},
		{
			name:     "duplicate nom",
			existing: &model.User{Nom: "Dupont", Prenom: "Jean", Tel: "12345678", Email: "jean.dupont@email.com"},
			input:    &model.User{Nom: "Dupont", Prenom: "Paul", Tel: "87654321", Email: "paul.dupont@email.com"},
			expectedErr: func(err error) {
				var dup *model.DuplicateKeyError
				suite.Require().ErrorAs(err, &dup)
				suite.Equal("nom", dup.Field)
			},
		},
		{
			name:     "duplicate email",
			existing: &model.User{Nom: "Dupont", Prenom: "Jean", Tel: "12345678", Email: "jean.dupont@email.com"},
			input:    &model.User{Nom: "Martin", Prenom: "Jean", Tel: "87654321", Email: "jean.dupont@email.com"},
			expectedErr: func(err error) {
				var dup *model.DuplicateKeyError
				suite.Require().ErrorAs(err, &dup)
				suite.Equal("email", dup.Field)
			},
		},
	}

	for _, test := range tests {
		suite.Run(test.name, func() {
			_, err := suite.userCollection.DeleteMany(context.Background(), bson.D{})
			suite.Require().NoError(err)
			if test.existing != nil {
				suite.Require().NoError(suite.mongoAdapter.SaveUser(context.Background(), test.existing))
			}
			err = suite.mongoAdapter.SaveUser(context.Background(), test.input)
			if test.expectedErr != nil {
				test.expectedErr(err)
			} else {
				suite.Require().NoError(err)
			}
			if test.expectedDB != nil {
				test.expectedDB(test.input, suite.userCollection)
			}
		})
	}
}

func (suite *MongoDBTestSuite) TestUpdateUser() {
	prenom := "Sophie"
	nom := "Martin"
	tests := []struct {
		name        string
		existing    []*model.User
		id          func(existing []*model.User) string
		patch       model.UserPatch
		expectedErr func(err error)
		expected    func(existing []*model.User, res *ports.UpdateUserResult)
	}{
		{
			name: "only the supplied field changes",
			existing: []*model.User{
				{Nom: "Dupont", Prenom: "Jean", Tel: "12345678", Email: "jean.dupont@email.com", CreatedAt: dummyTime.Add(-time.Hour)},
			},
			id:    func(existing []*model.User) string { return existing[0].ID },
			patch: model.UserPatch{Prenom: &prenom},
			expected: func(existing []*model.User, res *ports.UpdateUserResult) {
				suite.Equal(*existing[0], res.Before)
				expected := *existing[0]
				expected.Prenom = "Sophie"
				suite.Equal(expected, res.After)

				got := new(userDB)
				suite.Require().NoError(suite.userCollection.FindOne(context.Background(), bson.D{{Key: "_id", Value: mustID(suite.T(), existing[0].ID)}}).Decode(got))
				suite.Equal(expected, translateDBToModel(*got))
			},
		},
		{
			name: "duplicate nom on update",
			existing: []*model.User{
				{Nom: "Dupont", Prenom: "Jean", Tel: "12345678", Email: "jean.dupont@email.com"},
				{Nom: "Martin", Prenom: "Sophie", Tel: "87654321", Email: "sophie.martin@email.com"},
			},
			id:    func(existing []*model.User) string { return existing[0].ID },
			patch: model.UserPatch{Nom: &nom},
			expectedErr: func(err error) {
				var dup *model.DuplicateKeyError
				suite.Require().ErrorAs(err, &dup)
				suite.Equal("nom", dup.Field)
			},
		},
		{
			name:  "non-existing user",
			id:    func([]*model.User) string { return primitive.NewObjectID().Hex() },
			patch: model.UserPatch{Prenom: &prenom},
			expectedErr: func(err error) {
				suite.ErrorIs(err, model.ErrNotFound)
			},
		},
		{
			name:  "malformed id",
			id:    func([]*model.User) string { return "abc" },
			patch: model.UserPatch{Prenom: &prenom},
			expectedErr: func(err error) {
				suite.ErrorIs(err, model.ErrInvalidID)
			},
		},
	}

	for _, test := range tests {
		suite.Run(test.name, func() {
			_, err := suite.userCollection.DeleteMany(context.Background(), bson.D{})
			suite.Require().NoError(err)
			for _, u := range test.existing {
				suite.Require().NoError(suite.mongoAdapter.SaveUser(context.Background(), u))
			}
			res, err := suite.mongoAdapter.UpdateUser(context.Background(), test.id(test.existing), test.patch)
			if test.expectedErr != nil {
				test.expectedErr(err)
				return
			}
			suite.Require().NoError(err)
			test.expected(test.existing, res)
		})
	}
}

func (suite *MongoDBTestSuite) TestListUsers() {
	users, err := suite.mongoAdapter.ListUsers(context.Background())
	suite.Require().NoError(err)
	suite.NotNil(users)
	suite.Empty(users)

	existing := []*model.User{
		{Nom: "Dupont", Prenom: "Jean", Tel: "12345678", Email: "jean.dupont@email.com"},
		{Nom: "Martin", Prenom: "Sophie", Tel: "87654321", Email: "sophie.martin@email.com"},
	}
	for _, u := range existing {
		suite.Require().NoError(suite.mongoAdapter.SaveUser(context.Background(), u))
	}

	users, err = suite.mongoAdapter.ListUsers(context.Background())
	suite.Require().NoError(err)
	suite.ElementsMatch([]model.User{*existing[0], *existing[1]}, users)
}

func (suite *MongoDBTestSuite) TestDeleteUser() {
	existing := &model.User{Nom: "Dupont", Prenom: "Jean", Tel: "12345678", Email: "jean.dupont@email.com"}
	suite.Require().NoError(suite.mongoAdapter.SaveUser(context.Background(), existing))

	deleted, err := suite.mongoAdapter.DeleteUser(context.Background(), existing.ID)
	suite.Require().NoError(err)
	suite.Equal(existing, deleted)

	res := suite.userCollection.FindOne(context.Background(), bson.D{{Key: "_id", Value: mustID(suite.T(), existing.ID)}})
	suite.ErrorIs(res.Err(), mongo.ErrNoDocuments)

	_, err = suite.mongoAdapter.DeleteUser(context.Background(), existing.ID)
	suite.ErrorIs(err, model.ErrNotFound)

	_, err = suite.mongoAdapter.DeleteUser(context.Background(), "not-an-object-id")
	suite.ErrorIs(err, model.ErrInvalidID)
}

func (suite *MongoDBTestSuite) TestSearchUsers() {
	existing := []*model.User{
		{Nom: "Dupont", Prenom: "Jean", Tel: "12345678", Email: "jean.dupont@email.com"},
		{Nom: "Dupuis", Prenom: "Sophie", Tel: "12345679", Email: "sophie.dupuis@email.com"},
		{Nom: "Martin", Prenom: "Jeanne", Tel: "87654321", Email: "jeanne.martin@email.com"},
	}
	for _, u := range existing {
		suite.Require().NoError(suite.mongoAdapter.SaveUser(context.Background(), u))
	}

	tests := []struct {
		name     string
		query    ports.SearchUsersQuery
		expected []string
	}{
		{name: "case-insensitive substring on nom", query: ports.SearchUsersQuery{Nom: "dup"}, expected: []string{"Dupont", "Dupuis"}},
		{name: "substring on prenom", query: ports.SearchUsersQuery{Prenom: "JEAN"}, expected: []string{"Dupont", "Martin"}},
		{name: "both terms are combined", query: ports.SearchUsersQuery{Nom: "dup", Prenom: "jean"}, expected: []string{"Dupont"}},
		{name: "metacharacters match literally", query: ports.SearchUsersQuery{Nom: "d.p"}, expected: []string{}},
	}
	for _, test := range tests {
		suite.Run(test.name, func() {
			users, err := suite.mongoAdapter.SearchUsers(context.Background(), test.query)
			suite.Require().NoError(err)
			noms := make([]string, len(users))
			for i, u := range users {
				noms[i] = u.Nom
			}
			suite.ElementsMatch(test.expected, noms)
		})
	}
}

func TestMongoDBSuite(t *testing.T) {
	suite.Run(t, new(MongoDBTestSuite))
}

func TestSearchFilter(t *testing.T) {
	assert.Equal(t, bson.D{}, searchFilter(ports.SearchUsersQuery{}))
	assert.Equal(t,
		bson.D{
			{Key: "nom", Value: primitive.Regex{Pattern: "dup", Options: "i"}},
			{Key: "prenom", Value: primitive.Regex{Pattern: `j\.e`, Options: "i"}},
		},
		searchFilter(ports.SearchUsersQuery{Nom: "dup", Prenom: "j.e"}),
	)
}

func TestUpdateDocument(t *testing.T) {
	tel := "12345678"
	assert.Equal(t,
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "tel", Value: "12345678"},
			{Key: "updatedAt", Value: dummyTime},
		}}},
		updateDocument(model.UserPatch{Tel: &tel}, dummyTime),
	)
}

func TestDuplicateField(t *testing.T) {
	assert.Equal(t, "nom", duplicateField(`E11000 duplicate key error collection: User.users index: nom_1 dup key: { nom: "Dupont" }`))
	assert.Equal(t, "email", duplicateField(`E11000 duplicate key error collection: User.users index: email_1 dup key: { email: "a@b.fr" }`))
	assert.Equal(t, "", duplicateField("E11000 duplicate key error"))
}

func TestNewMongoDB_NilCollection(t *testing.T) {
	_, err := NewMongoDB(MongoDBArgs{})
	require.Error(t, err)
}

func mustID(t *testing.T, in string) primitive.ObjectID {
	objID, err := primitive.ObjectIDFromHex(in)
	require.NoError(t, err)
	return objID
}
