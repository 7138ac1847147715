package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/mocks"
)

func TestSessionIssuer_IssueSession(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(*mocks.MockUserRepository, *mocks.MockSessionRepository)
		wantErr     error
		wantUserID  string
		wantNewUser bool
	}{
		{
			name: "existing user",
			setupMocks: func(users *mocks.MockUserRepository, _ *mocks.MockSessionRepository) {
				users.FindByPhoneFunc = func(ctx context.Context, phoneNumber string) (*domain.User, error) {
					return &domain.User{ID: "user-existing", PhoneNumber: phoneNumber, Role: domain.DefaultRole}, nil
				}
				users.CreateFunc = func(ctx context.Context, user *domain.User) error {
					t.Error("create must not be called for an existing user")
					return nil
				}
			},
			wantUserID: "user-existing",
		},
		{
			name:        "first verification creates the user",
			setupMocks:  func(*mocks.MockUserRepository, *mocks.MockSessionRepository) {},
			wantNewUser: true,
		},
		{
			name: "concurrent creation re-fetches the winner",
			setupMocks: func(users *mocks.MockUserRepository, _ *mocks.MockSessionRepository) {
				calls := 0
				users.FindByPhoneFunc = func(ctx context.Context, phoneNumber string) (*domain.User, error) {
					calls++
					if calls == 1 {
						return nil, domain.ErrUserNotFound
					}
					return &domain.User{ID: "user-winner", PhoneNumber: phoneNumber, Role: domain.DefaultRole}, nil
				}
				users.CreateFunc = func(ctx context.Context, user *domain.User) error {
					return domain.ErrUserAlreadyExists
				}
			},
			wantUserID: "user-winner",
		},
		{
			name: "user lookup storage failure",
			setupMocks: func(users *mocks.MockUserRepository, _ *mocks.MockSessionRepository) {
				users.FindByPhoneFunc = func(ctx context.Context, phoneNumber string) (*domain.User, error) {
					return nil, errors.New("connection reset")
				}
			},
			wantErr: domain.ErrStorageUnavailable,
		},
		{
			name: "session store failure",
			setupMocks: func(_ *mocks.MockUserRepository, sessions *mocks.MockSessionRepository) {
				sessions.CreateFunc = func(ctx context.Context, session *domain.Session) error {
					return domain.StorageError("create session", errors.New("redis down"))
				}
			},
			wantErr: domain.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := mocks.NewMockUserRepository()
			sessions := mocks.NewMockSessionRepository()
			tt.setupMocks(users, sessions)
			issuer := NewSessionIssuer(users, sessions, mocks.NewMockTokenService(), nil, nil, nil, time.Second)

			result, err := issuer.IssueSession(context.Background(), testPhone)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testPhone, result.User.PhoneNumber)
			assert.Equal(t, domain.DefaultRole, result.User.Role)
			if tt.wantUserID != "" {
				assert.Equal(t, tt.wantUserID, result.User.ID)
			} else {
				assert.NotEmpty(t, result.User.ID)
			}
			assert.Equal(t, result.User.ID, result.Session.UserID)
			assert.Equal(t, "token:"+result.User.ID+":"+result.Session.ID, result.AccessToken)
			assert.Equal(t, int64(3600), result.ExpiresIn)
			assert.WithinDuration(t, time.Now().Add(time.Hour), result.Session.ExpiresAt, 5*time.Second)
		})
	}
}

func TestSessionIssuer_ConcurrentFirstVerification(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	const callers = 5
	ids := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := s.issuer.IssueSession(ctx, testPhone)
			errs[i] = err
			if err == nil {
				ids[i] = result.User.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestSessionIssuer_GetCurrentSession(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	issued, err := s.issuer.IssueSession(ctx, testPhone)
	require.NoError(t, err)

	restored, err := s.issuer.GetCurrentSession(ctx, issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, issued.User.ID, restored.User.ID)
	assert.Equal(t, issued.Session.ID, restored.Session.ID)
	assert.Equal(t, testPhone, restored.User.PhoneNumber)
	assert.InDelta(t, 3600, restored.ExpiresIn, 5)

	_, err = s.issuer.GetCurrentSession(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)

	require.NoError(t, s.issuer.DestroySession(ctx, issued.Session.ID))
	_, err = s.issuer.GetCurrentSession(ctx, issued.AccessToken)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Logging out twice is fine
	assert.NoError(t, s.issuer.DestroySession(ctx, issued.Session.ID))
}

func TestSessionIssuer_GetCurrentSessionUserMismatch(t *testing.T) {
	sessions := mocks.NewMockSessionRepository()
	sessions.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		return &domain.Session{ID: sessionID, UserID: "someone-else", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	issuer := NewSessionIssuer(mocks.NewMockUserRepository(), sessions, mocks.NewMockTokenService(), nil, nil, nil, time.Second)

	_, err := issuer.GetCurrentSession(context.Background(), "token:user-1:sess-1")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestSessionIssuer_DestroySessionStorageFailure(t *testing.T) {
	sessions := mocks.NewMockSessionRepository()
	sessions.DeleteFunc = func(ctx context.Context, sessionID string) error {
		return errors.New("redis down")
	}
	issuer := NewSessionIssuer(mocks.NewMockUserRepository(), sessions, mocks.NewMockTokenService(), nil, nil, nil, time.Second)

	err := issuer.DestroySession(context.Background(), "sess-1")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
