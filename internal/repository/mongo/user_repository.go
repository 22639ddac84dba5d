package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/shadazls/assignment-backend/internal/models"
	"github.com/shadazls/assignment-backend/internal/repository"
)

type userDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"passwordHash,omitempty"`
	Role         string        `bson:"role"`
	Nom          string        `bson:"nom,omitempty"`
	Classe       string        `bson:"classe,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt"`
}

func (d userDocument) model() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         models.Role(d.Role),
		Nom:          d.Nom,
		Classe:       d.Classe,
		CreatedAt:    d.CreatedAt,
	}
}

var withoutPasswordHash = bson.D{{Key: "passwordHash", Value: 0}}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	doc := userDocument{
		ID:           bson.NewObjectID(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		Nom:          user.Nom,
		Classe:       user.Classe,
		CreatedAt:    user.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = doc.CreatedAt
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.findUser(ctx, bson.D{{Key: "_id", Value: oid}}, options.FindOne().SetProjection(withoutPasswordHash))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.D{{Key: "email", Value: email}}, options.FindOne())
}

func (s *Store) FindAdmin(ctx context.Context) (*models.User, error) {
	filter := bson.D{{Key: "role", Value: string(models.RoleAdmin)}}
	return s.findUser(ctx, filter, options.FindOne().SetProjection(withoutPasswordHash))
}

func (s *Store) findUser(ctx context.Context, filter bson.D, opts *options.FindOneOptionsBuilder) (*models.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, filter, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.model(), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.D{}, options.Find().SetProjection(withoutPasswordHash))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, *d.model())
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd models.UpdateUserRequest) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	filter := bson.D{{Key: "_id", Value: oid}}

	if upd.Empty() {
		return s.findUser(ctx, filter, options.FindOne().SetProjection(withoutPasswordHash))
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPasswordHash)

	var doc userDocument
	err = s.users.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: userSet(upd)}}, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, repository.ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return doc.model(), nil
}

// userSet builds the $set document. Only the fields of UpdateUserRequest can
// appear in it, so passwordHash is never written here.
func userSet(upd models.UpdateUserRequest) bson.D {
	set := bson.D{}
	if upd.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *upd.Email})
	}
	if upd.Role != nil {
		set = append(set, bson.E{Key: "role", Value: string(*upd.Role)})
	}
	if upd.Nom != nil {
		set = append(set, bson.E{Key: "nom", Value: *upd.Nom})
	}
	if upd.Classe != nil {
		set = append(set, bson.E{Key: "classe", Value: *upd.Classe})
	}
	return set
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	res, err := s.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
