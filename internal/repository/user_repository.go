package repository

import (
	"context"
	"errors"

	"schedule-service/internal/entity"
	"schedule-service/internal/storage"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type UserRepository struct {
	store *storage.Store
}

func NewUserRepository(store *storage.Store) *UserRepository {
	return &UserRepository{store}
}

// CreateUser appends a new user with the next id. Returns ErrAlreadyExists
// when the username is taken (exact, case-sensitive match).
func (r *UserRepository) CreateUser(ctx context.Context, username, passwordHash string) (*entity.User, error) {
	var created *entity.User
	err := r.store.Update(storage.Users, func() error {
		var users []entity.User
		if err := r.store.Load(storage.Users, &users); err != nil {
			return err
		}
		for _, u := range users {
			if u.Username == username {
				return ErrAlreadyExists
			}
		}
		id, err := r.store.NextID(storage.Users)
		if err != nil {
			return err
		}
		user := entity.User{ID: id, Username: username, Password: passwordHash}
		users = append(users, user)
		if err := r.store.Save(storage.Users, users); err != nil {
			return err
		}
		created = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetUserByUsername returns the user with that username, or ErrNotFound.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	var found *entity.User
	err := r.store.Update(storage.Users, func() error {
		var users []entity.User
		if err := r.store.Load(storage.Users, &users); err != nil {
			return err
		}
		for _, u := range users {
			if u.Username == username {
				found = &u
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// GetUserByID returns the user with that id, or ErrNotFound.
func (r *UserRepository) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	var found *entity.User
	err := r.store.Update(storage.Users, func() error {
		var users []entity.User
		if err := r.store.Load(storage.Users, &users); err != nil {
			return err
		}
		for _, u := range users {
			if u.ID == id {
				found = &u
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
