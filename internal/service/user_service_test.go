package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/converse-api/internal/domain"
	"github.com/phrazzld/converse-api/internal/mocks"
	"github.com/phrazzld/converse-api/internal/store"
)

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		username    string
		email       string
		password    string
		setup       func(userStore *mocks.MockUserStore, hasher *mocks.MockPasswordHasher)
		wantErr     error
		checkResult func(t *testing.T, user *domain.User)
	}{
		{
			name:     "successful registration",
			username: "alice",
			email:    "Alice@Example.com",
			password: "correct horse battery staple",
			checkResult: func(t *testing.T, user *domain.User) {
				assert.Equal(t, "alice", user.Username)
				assert.Equal(t, "alice@example.com", user.Email, "email should be lowercased")
				assert.Empty(t, user.Password, "plaintext must not survive registration")
				assert.NotEmpty(t, user.HashedPassword)
			},
		},
		{
			name:     "missing username",
			username: "",
			email:    "alice@example.com",
			password: "pw",
			wantErr:  domain.ErrEmptyUsername,
		},
		{
			name:     "missing email",
			username: "alice",
			email:    "",
			password: "pw",
			wantErr:  domain.ErrEmptyEmail,
		},
		{
			name:     "missing password",
			username: "alice",
			email:    "alice@example.com",
			password: "",
			wantErr:  domain.ErrEmptyPassword,
		},
		{
			name:     "duplicate email",
			username: "alice",
			email:    "alice@example.com",
			password: "pw",
			setup: func(userStore *mocks.MockUserStore, hasher *mocks.MockPasswordHasher) {
				userStore.CreateFn = func(ctx context.Context, user *domain.User) error {
					return store.ErrEmailExists
				}
			},
			wantErr: store.ErrEmailExists,
		},
		{
			name:     "hashing failure",
			username: "alice",
			email:    "alice@example.com",
			password: "pw",
			setup: func(userStore *mocks.MockUserStore, hasher *mocks.MockPasswordHasher) {
				hasher.Err = errors.New("bcrypt unavailable")
			},
			wantErr: nil, // checked by substring below
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			db, dbMock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			userStore := mocks.NewMockUserStore()
			hasher := &mocks.MockPasswordHasher{}
			verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
			jwtService := &mocks.MockJWTService{Token: "token"}

			if tc.setup != nil {
				tc.setup(userStore, hasher)
			}

			// The transaction only begins once validation and hashing pass
			validInput := tc.username != "" && tc.email != "" && tc.password != "" && hasher.Err == nil
			if validInput {
				dbMock.ExpectBegin()
				if tc.wantErr != nil {
					dbMock.ExpectRollback()
				} else {
					dbMock.ExpectCommit()
				}
			}

			svc := NewUserService(userStore, hasher, verifier, jwtService, db, slog.Default())

			user, err := svc.Register(context.Background(), tc.username, tc.email, tc.password)

			switch {
			case tc.wantErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, user)
			case tc.name == "hashing failure":
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to hash password")
				assert.Nil(t, user)
			default:
				require.NoError(t, err)
				require.NotNil(t, user)
				if tc.checkResult != nil {
					tc.checkResult(t, user)
				}
			}

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func TestUserService_Login(t *testing.T) {
	t.Parallel()

	hashed := "hashed:pw"

	newService := func(
		userStore *mocks.MockUserStore,
		verifier *mocks.MockPasswordVerifier,
		jwtService *mocks.MockJWTService,
	) UserService {
		return NewUserService(
			userStore,
			&mocks.MockPasswordHasher{},
			verifier,
			jwtService,
			nil, // login never opens a transaction
			slog.Default(),
		)
	}

	t.Run("successful login", func(t *testing.T) {
		t.Parallel()

		userStore := mocks.NewMockUserStore()
		existing, err := domain.NewUser("alice", "alice@example.com", "pw")
		require.NoError(t, err)
		existing.Password = ""
		existing.HashedPassword = hashed
		userStore.Users[existing.Email] = existing

		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
		jwtService := &mocks.MockJWTService{Token: "signed-token"}

		svc := newService(userStore, verifier, jwtService)

		user, token, err := svc.Login(context.Background(), "alice@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, user.ID)
		assert.Equal(t, "signed-token", token)
		assert.Equal(t, 1, verifier.CompareCallCount)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()

		userStore := mocks.NewMockUserStore()
		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
		jwtService := &mocks.MockJWTService{Token: "signed-token"}

		svc := newService(userStore, verifier, jwtService)

		_, _, err := svc.Login(context.Background(), "nobody@example.com", "pw")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Zero(t, verifier.CompareCallCount, "password must not be checked for unknown users")
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		userStore := mocks.NewMockUserStore()
		existing, err := domain.NewUser("alice", "alice@example.com", "pw")
		require.NoError(t, err)
		existing.HashedPassword = hashed
		userStore.Users[existing.Email] = existing

		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: false}
		jwtService := &mocks.MockJWTService{Token: "signed-token"}

		svc := newService(userStore, verifier, jwtService)

		_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("token generation failure", func(t *testing.T) {
		t.Parallel()

		userStore := mocks.NewMockUserStore()
		existing, err := domain.NewUser("alice", "alice@example.com", "pw")
		require.NoError(t, err)
		existing.HashedPassword = hashed
		userStore.Users[existing.Email] = existing

		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
		jwtService := &mocks.MockJWTService{Err: errors.New("signing failed")}

		svc := newService(userStore, verifier, jwtService)

		_, _, err = svc.Login(context.Background(), "alice@example.com", "pw")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to generate token")
	})
}
