package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, email, password, role string) (User, error) {
	args := m.Called(ctx, email, password, role)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func TestService_Register(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret")

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", mock.Anything, "new@example.com", mock.AnythingOfType("string"), "CUSTOMER").
			Return(User{ID: 1, Email: "new@example.com", Role: RoleCustomer}, nil)

		svc := NewService(repo)
		token, u, err := svc.Register(context.Background(), "new@example.com", "password123")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, 1, u.ID)
		repo.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", mock.Anything, "dup@example.com", mock.AnythingOfType("string"), "CUSTOMER").
			Return(User{}, errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`))

		svc := NewService(repo)
		_, _, err := svc.Register(context.Background(), "dup@example.com", "password123")

		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestService_Login(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret")

	hash, err := HashPassword("password123")
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", mock.Anything, "admin@example.com").
			Return(User{ID: 1, Email: "admin@example.com", Password: hash, Role: RoleAdmin}, nil)

		svc := NewService(repo)
		token, u, err := svc.Login(context.Background(), "admin@example.com", "password123")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, RoleAdmin, u.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", mock.Anything, "admin@example.com").
			Return(User{ID: 1, Password: hash}, nil)

		svc := NewService(repo)
		_, _, err := svc.Login(context.Background(), "admin@example.com", "wrong")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", mock.Anything, "nobody@example.com").
			Return(User{}, errors.New("sql: no rows in result set"))

		svc := NewService(repo)
		_, _, err := svc.Login(context.Background(), "nobody@example.com", "password123")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
