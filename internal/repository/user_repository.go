package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/models"
)

// UserRepository persists the local user accounts used for role scoping.
type UserRepository struct {
	store docstore.Store
}

// NewUserRepository constructs the repository.
func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

// FindByEmail returns the user with the given email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionUsers, []docstore.Filter{
		docstore.Eq("email", email),
	})
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, docstore.ErrNotFound
	}
	var user models.User
	if err := docstore.Decode(docs[0], &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns the user with the given id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionUsers, id)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := docstore.Decode(doc, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates or updates a user account.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	doc, err := docstore.Encode(user)
	if err != nil {
		return err
	}
	if err := r.store.Upsert(ctx, docstore.CollectionUsers, user.ID, doc); err != nil {
		return fmt.Errorf("upsert user %s: %w", user.ID, err)
	}
	return nil
}
