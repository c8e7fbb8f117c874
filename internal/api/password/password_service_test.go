package password

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lokeswarareddy/worst-passwords-api/config"
	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

// MockPasswordRepo is a mock implementation of the Repository interface
type MockPasswordRepo struct {
	mock.Mock
}

func (m *MockPasswordRepo) CreatePassword(ctx context.Context, record types.PasswordRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPasswordRepo) ListPasswords(ctx context.Context, limit, offset int) ([]*types.PasswordRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.PasswordRecord), args.Error(1)
}

func (m *MockPasswordRepo) ListAllPasswords(ctx context.Context) ([]*types.PasswordRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.PasswordRecord), args.Error(1)
}

func (m *MockPasswordRepo) ListPasswordsByUser(ctx context.Context, userID uuid.UUID) ([]*types.PasswordRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.PasswordRecord), args.Error(1)
}

func (m *MockPasswordRepo) GetPassword(ctx context.Context, id uuid.UUID) (*types.PasswordRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PasswordRecord), args.Error(1)
}

func (m *MockPasswordRepo) CountPasswords(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPasswordRepo) GetPasswordAtOffset(ctx context.Context, offset int64) (*types.PasswordRecord, error) {
	args := m.Called(ctx, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PasswordRecord), args.Error(1)
}

func (m *MockPasswordRepo) UpdatePassword(ctx context.Context, id uuid.UUID, password, site, username string) (*types.PasswordRecord, error) {
	args := m.Called(ctx, id, password, site, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PasswordRecord), args.Error(1)
}

func (m *MockPasswordRepo) DeletePassword(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.API = config.APIConfig{
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
	return cfg
}

func testOwner() *types.User {
	return &types.User{
		ID:       uuid.New(),
		Username: "testuser",
		Email:    "test@example.com",
	}
}

func TestSubmitPassword(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)
		ctx := context.Background()
		owner := testOwner()

		mockRepo.On("CreatePassword", mock.Anything, mock.AnythingOfType("types.PasswordRecord")).Return(nil).Once()

		record, err := service.SubmitPassword(ctx, owner, types.SubmitPasswordRequest{
			Password: "abc123",
			Site:     "example.com",
			Username: "leaky",
		})

		assert.NoError(t, err)
		assert.NotNil(t, record)
		assert.Equal(t, "abc123", record.Password)
		assert.Equal(t, "leaky", record.Username)
		assert.Equal(t, owner.ID, *record.CreatedBy)
		assert.Equal(t, owner.Username, *record.OwnerName)
		mockRepo.AssertExpectations(t)
	})

	t.Run("DefaultsUsernameToAnonymous", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)
		ctx := context.Background()

		mockRepo.On("CreatePassword", mock.Anything, mock.MatchedBy(func(rec types.PasswordRecord) bool {
			return rec.Username == "Anonymous"
		})).Return(nil).Once()

		record, err := service.SubmitPassword(ctx, testOwner(), types.SubmitPasswordRequest{
			Password: "abc123",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Anonymous", record.Username)
		mockRepo.AssertExpectations(t)
	})

	t.Run("TooShort", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)

		record, err := service.SubmitPassword(context.Background(), testOwner(), types.SubmitPasswordRequest{
			Password: "ab1",
		})

		assert.Error(t, err)
		assert.Nil(t, record)
		ve, ok := api.AsValidationError(err)
		assert.True(t, ok)
		assert.Len(t, ve.Errors, 1)
		assert.Equal(t, "Password must be at least 6 characters long.", ve.Errors[0].Message)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NoDigit", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)

		record, err := service.SubmitPassword(context.Background(), testOwner(), types.SubmitPasswordRequest{
			Password: "abcdef",
		})

		assert.Error(t, err)
		assert.Nil(t, record)
		ve, ok := api.AsValidationError(err)
		assert.True(t, ok)
		assert.Len(t, ve.Errors, 1)
		assert.Equal(t, "Password must contain at least one number.", ve.Errors[0].Message)
	})

	t.Run("BothViolations", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)

		record, err := service.SubmitPassword(context.Background(), testOwner(), types.SubmitPasswordRequest{
			Password: "abc",
		})

		assert.Error(t, err)
		assert.Nil(t, record)
		ve, ok := api.AsValidationError(err)
		assert.True(t, ok)
		assert.Len(t, ve.Errors, 2)
	})
}

func TestListPasswords(t *testing.T) {
	logger := slog.Default()

	t.Run("DefaultsAndClamping", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)
		ctx := context.Background()

		// Page 0 and limit 0 fall back to page 1 with the default size
		mockRepo.On("ListPasswords", mock.Anything, 20, 0).Return([]*types.PasswordRecord{}, nil).Once()
		_, err := service.ListPasswords(ctx, 0, 0)
		assert.NoError(t, err)

		// Oversized limit is clamped to the configured maximum
		mockRepo.On("ListPasswords", mock.Anything, 100, 100).Return([]*types.PasswordRecord{}, nil).Once()
		_, err = service.ListPasswords(ctx, 2, 500)
		assert.NoError(t, err)

		mockRepo.AssertExpectations(t)
	})

	t.Run("OffsetFromPage", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)
		ctx := context.Background()

		mockRepo.On("ListPasswords", mock.Anything, 10, 20).Return([]*types.PasswordRecord{}, nil).Once()

		_, err := service.ListPasswords(ctx, 3, 10)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestGetRandomPassword(t *testing.T) {
	logger := slog.Default()

	t.Run("EmptyStore", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)
		ctx := context.Background()

		mockRepo.On("CountPasswords", mock.Anything).Return(int64(0), nil).Once()

		pw, err := service.GetRandomPassword(ctx)

		assert.Error(t, err)
		assert.Empty(t, pw)
		assert.ErrorIs(t, err, api.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("SingleRecord", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)
		ctx := context.Background()

		mockRepo.On("CountPasswords", mock.Anything).Return(int64(1), nil).Once()
		mockRepo.On("GetPasswordAtOffset", mock.Anything, int64(0)).Return(&types.PasswordRecord{
			ID:       uuid.New(),
			Password: "qwerty1",
		}, nil).Once()

		pw, err := service.GetRandomPassword(ctx)

		assert.NoError(t, err)
		assert.Equal(t, "qwerty1", pw)
		mockRepo.AssertExpectations(t)
	})
}

func TestDeletePassword(t *testing.T) {
	logger := slog.Default()

	t.Run("OwnerCanDelete", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)
		ctx := context.Background()
		owner := testOwner()
		recordID := uuid.New()
		ownerID := owner.ID

		mockRepo.On("GetPassword", mock.Anything, recordID).Return(&types.PasswordRecord{
			ID:        recordID,
			Password:  "abc123",
			CreatedBy: &ownerID,
		}, nil).Once()
		mockRepo.On("DeletePassword", mock.Anything, recordID).Return(nil).Once()

		err := service.DeletePassword(ctx, recordID, owner)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NonOwnerForbidden", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)
		ctx := context.Background()
		recordID := uuid.New()
		someoneElse := uuid.New()

		mockRepo.On("GetPassword", mock.Anything, recordID).Return(&types.PasswordRecord{
			ID:        recordID,
			Password:  "abc123",
			CreatedBy: &someoneElse,
		}, nil).Once()

		err := service.DeletePassword(ctx, recordID, testOwner())

		assert.Error(t, err)
		assert.ErrorIs(t, err, api.ErrForbidden)
		mockRepo.AssertExpectations(t)
	})

	t.Run("OrphanedRecordForbidden", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)
		ctx := context.Background()
		recordID := uuid.New()

		mockRepo.On("GetPassword", mock.Anything, recordID).Return(&types.PasswordRecord{
			ID:       recordID,
			Password: "abc123",
		}, nil).Once()

		err := service.DeletePassword(ctx, recordID, testOwner())

		assert.ErrorIs(t, err, api.ErrForbidden)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockPasswordRepo)
		service := NewService(mockRepo, testConfig(), logger)
		ctx := context.Background()
		recordID := uuid.New()

		mockRepo.On("GetPassword", mock.Anything, recordID).Return(nil, api.ErrNotFound).Once()

		err := service.DeletePassword(ctx, recordID, testOwner())

		assert.ErrorIs(t, err, api.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})
}

func rec(password string, createdAt time.Time) *types.PasswordRecord {
	return &types.PasswordRecord{
		ID:        uuid.New(),
		Password:  password,
		CreatedAt: createdAt,
	}
}

func TestAggregateLeaderboard(t *testing.T) {
	now := time.Now()

	t.Run("CountsAndOrder", func(t *testing.T) {
		records := []*types.PasswordRecord{
			rec("123456", now),
			rec("password1", now.Add(time.Second)),
			rec("123456", now.Add(2*time.Second)),
			rec("qwerty1", now.Add(3*time.Second)),
			rec("123456", now.Add(4*time.Second)),
			rec("password1", now.Add(5*time.Second)),
		}

		entries := AggregateLeaderboard(records)

		assert.Equal(t, []types.LeaderboardEntry{
			{Password: "123456", Count: 3},
			{Password: "password1", Count: 2},
			{Password: "qwerty1", Count: 1},
		}, entries)
	})

	t.Run("TiesKeepFirstSeenOrder", func(t *testing.T) {
		records := []*types.PasswordRecord{
			rec("bbb111", now),
			rec("aaa111", now.Add(time.Second)),
			rec("bbb111", now.Add(2*time.Second)),
			rec("aaa111", now.Add(3*time.Second)),
		}

		entries := AggregateLeaderboard(records)

		assert.Equal(t, "bbb111", entries[0].Password)
		assert.Equal(t, "aaa111", entries[1].Password)
	})

	t.Run("Deterministic", func(t *testing.T) {
		records := []*types.PasswordRecord{
			rec("abc123", now),
			rec("def456", now.Add(time.Second)),
			rec("abc123", now.Add(2*time.Second)),
		}

		first := AggregateLeaderboard(records)
		second := AggregateLeaderboard(records)

		assert.Equal(t, first, second)
	})

	t.Run("Empty", func(t *testing.T) {
		entries := AggregateLeaderboard(nil)
		assert.Empty(t, entries)
	})
}
