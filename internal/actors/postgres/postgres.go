package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"
	"github.com/rbroggi/gestionusers/internal/core/model"
	"github.com/rbroggi/gestionusers/internal/core/ports"
)

// constraint names as created by db/migrations
const (
	nomConstraint   = "users_nom_key"
	emailConstraint = "users_email_key"
)

// PostgresDB is a postgress adapter for persistance.
type PostgresDB struct {
	db      *pg.DB
	nowFunc func() time.Time
}

// PostgresDBArgs are the mandatory arguments for the creation of a PostgresDB
type PostgresDBArgs struct {
	// DB is a postgres database handle
	DB *pg.DB
}

// PostgresDBOptArgs are the optional arguments for building a PostgresDB
type PostgresDBOptArgs = func(*PostgresDB)

// WithNowFunc can be used to override the nowFunc. Useful for testing.
func WithNowFunc(nowFunc func() time.Time) PostgresDBOptArgs {
	return func(p *PostgresDB) {
		p.nowFunc = nowFunc
	}
}

// NewPostgresDB creates a new PostgresDB.
func NewPostgresDB(args PostgresDBArgs, optArgs ...PostgresDBOptArgs) (*PostgresDB, error) {
	if args.DB == nil {
		return nil, errors.New("nil postgres handle")
	}
	p := &PostgresDB{db: args.DB, nowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }}
	for _, opt := range optArgs {
		opt(p)
	}
	return p, nil
}

// SaveUser will save the user in the database.
func (p *PostgresDB) SaveUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("nil user passed to save method")
	}

	dbUser := p.toDBModel(user)
	if _, err := p.db.ModelContext(ctx, dbUser).Insert(); err != nil {
		return translateError(err)
	}

	user.ID = dbUser.ID.String()
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// UpdateUser locks the row, applies the patch and saves it. It returns model.ErrNotFound if the
// user does not exist.
func (p *PostgresDB) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*ports.UpdateUserResult, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var res *ports.UpdateUserResult
	err = p.db.RunInTransaction(ctx, func(tx *pg.Tx) error {
		existing := &userDB{ID: userID}
		if err := tx.ModelContext(ctx, existing).WherePK().For("UPDATE").Select(); err != nil {
			if errors.Is(err, pg.ErrNoRows) {
				return model.ErrNotFound
			}
			return err
		}

		before := translateDBToModel(*existing)
		after := patch.Apply(before, p.nowFunc())
		updated := toDBUser(userID, after)
		if _, err := tx.ModelContext(ctx, updated).WherePK().Update(); err != nil {
			return translateError(err)
		}
		res = &ports.UpdateUserResult{Before: before, After: after}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListUsers lists every user in storage order.
func (p *PostgresDB) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []userDB
	if err := p.db.ModelContext(ctx, &users).Select(); err != nil && !errors.Is(err, pg.ErrNoRows) {
		return nil, err
	}
	return translateDBToModels(users), nil
}

// DeleteUser removes the user and returns its last state.
func (p *PostgresDB) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	deleted := &userDB{ID: userID}
	res, err := p.db.ModelContext(ctx, deleted).WherePK().Returning("*").Delete()
	if err != nil {
		if errors.Is(err, pg.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, model.ErrNotFound
	}
	user := translateDBToModel(*deleted)
	return &user, nil
}

// SearchUsers lists the users whose nom/prenom contain the query terms, ignoring case.
func (p *PostgresDB) SearchUsers(ctx context.Context, query ports.SearchUsersQuery) ([]model.User, error) {
	var users []userDB
	q := p.db.ModelContext(ctx, &users)
	if query.Nom != "" {
		q = q.Where("nom ~* ?", regexp.QuoteMeta(query.Nom))
	}
	if query.Prenom != "" {
		q = q.Where("prenom ~* ?", regexp.QuoteMeta(query.Prenom))
	}
	if err := q.Select(); err != nil && !errors.Is(err, pg.ErrNoRows) {
		return nil, err
	}
	return translateDBToModels(users), nil
}

func parseID(id string) (uuid.UUID, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", model.ErrInvalidID, id)
	}
	return userID, nil
}

// translateError turns unique constraint violations into *model.DuplicateKeyError.
func translateError(err error) error {
	var pgErr pg.Error
	if !errors.As(err, &pgErr) || !pgErr.IntegrityViolation() || pgErr.Field('C') != "23505" {
		return err
	}
	return &model.DuplicateKeyError{Field: constraintField(pgErr.Field('n')), Err: err}
}

func constraintField(constraint string) string {
	switch constraint {
	case nomConstraint:
		return "nom"
	case emailConstraint:
		return "email"
	default:
		return ""
	}
}

func (p *PostgresDB) toDBModel(user *model.User) *userDB {
	now := p.nowFunc()
	dbUser := toDBUser(uuid.New(), *user)
	dbUser.CreatedAt = now
	if !user.CreatedAt.IsZero() {
		dbUser.CreatedAt = user.CreatedAt
	}
	dbUser.UpdatedAt = now
	return dbUser
}

func toDBUser(id uuid.UUID, user model.User) *userDB {
	return &userDB{
		ID:        id,
		Nom:       user.Nom,
		Prenom:    user.Prenom,
		Tel:       user.Tel,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
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
		ID:        dbUser.ID.String(),
		Nom:       dbUser.Nom,
		Prenom:    dbUser.Prenom,
		Tel:       dbUser.Tel,
		Email:     dbUser.Email,
		CreatedAt: dbUser.CreatedAt.UTC(),
		UpdatedAt: dbUser.UpdatedAt.UTC(),
	}
}

type userDB struct {
	tableName struct{} `pg:"users"`

	ID        uuid.UUID `pg:"id,pk,type:uuid"`
	Nom       string    `pg:"nom,use_zero"`
	Prenom    string    `pg:"prenom,use_zero"`
	Tel       string    `pg:"tel,use_zero"`
	Email     string    `pg:"email,use_zero"`
	CreatedAt time.Time `pg:"created_at"`
	UpdatedAt time.Time `pg:"updated_at"`
}
