//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	apperrors "mentorchat/errors"
)

type IUserRepository interface {
	CreateUser(email, username, passwordHash string) (User, error)
	GetUserByEmail(email string) (User, error)
	GetUserByUsername(username string) (User, error)
}

// User is the account record backing the chat identity. Username is
// the routing identity of the relay and is immutable after signup.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// CreateUser persists a new account under both its email and username
// keys in one transaction, rejecting duplicates on either.
func (u UserRepository) CreateUser(email, username, passwordHash string) (User, error) {
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return User{}, apperrors.NewPersistenceError("create user", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte("user:email:" + email)
		nameKey := []byte("user:name:" + username)
		if _, err := txn.Get(emailKey); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		if _, err := txn.Get(nameKey); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey, data); err != nil {
			return err
		}
		return txn.Set(nameKey, data)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			return User{}, apperrors.ErrUserAlreadyExists
		}
		return User{}, apperrors.NewPersistenceError("create user", err)
	}
	return user, nil
}

func (u UserRepository) GetUserByEmail(email string) (User, error) {
	return u.get([]byte("user:email:" + email))
}

func (u UserRepository) GetUserByUsername(username string) (User, error) {
	return u.get([]byte("user:name:" + username))
}

func (u UserRepository) get(key []byte) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return User{}, apperrors.ErrInvalidCredentials
		}
		return User{}, apperrors.NewPersistenceError("get user", err)
	}
	return user, nil
}
