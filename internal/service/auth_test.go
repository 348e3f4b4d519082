package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/Cab789/capstone/internal/model"
	repoMocks "github.com/Cab789/capstone/internal/repository/mocks"
)

type authMocks struct {
	users     *repoMocks.MockUserRepository
	tokens    *repoMocks.MockTokenRepository
	blocklist *repoMocks.MockBlocklistRepository
	mailing   *repoMocks.MockMailingListRepository
	limits    *repoMocks.MockSiteLimitsRepository
}

func newAuthService(t *testing.T) (AuthService, *authMocks) {
	t.Helper()
	m := &authMocks{
		users:     new(repoMocks.MockUserRepository),
		tokens:    new(repoMocks.MockTokenRepository),
		blocklist: new(repoMocks.MockBlocklistRepository),
		mailing:   new(repoMocks.MockMailingListRepository),
		limits:    new(repoMocks.MockSiteLimitsRepository),
	}
	svc := NewAuthService(m.users, m.tokens, m.blocklist, m.mailing, m.limits, NewLogMailer(), 500, 50)
	return svc, m
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:       "someone@example.com",
		Password:    "correct horse battery",
		FirstName:   "Some",
		LastName:    "One",
		AgreedToTOS: true,
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		mutate     func(in *RegisterInput)
		setupMocks func(m *authMocks)
		wantErr    error
	}{
		{
			name: "happy path",
			setupMocks: func(m *authMocks) {
				m.users.On("NormalizedEmailExists", ctx, "someone@example.com").Return(false, nil)
				m.blocklist.On("List", ctx).Return([]model.EmailBlockRule{}, nil)
				m.limits.On("Add", ctx, 1, 0).Return(&model.SiteLimits{DailySignups: 3}, nil)
				m.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == "someone@example.com" &&
						u.NormalizedEmail == "someone@example.com" &&
						u.ActivationNonce != "" &&
						!u.EmailVerified &&
						u.IsActive &&
						u.TotalCaseAllowance == 500
				})).Return(&model.User{ID: "new-id", Email: "someone@example.com", ActivationNonce: "nonce"}, nil)
			},
		},
		{
			name:       "whitespace in email",
			mutate:     func(in *RegisterInput) { in.Email = "some one@example.com" },
			setupMocks: func(m *authMocks) {},
			wantErr:    ErrEmailWhitespace,
		},
		{
			name:       "terms not agreed",
			mutate:     func(in *RegisterInput) { in.AgreedToTOS = false },
			setupMocks: func(m *authMocks) {},
			wantErr:    ErrTOSRequired,
		},
		{
			name: "normalized email already registered",
			mutate: func(in *RegisterInput) {
				in.Email = "first.last+tag@gmail.com"
			},
			setupMocks: func(m *authMocks) {
				m.users.On("NormalizedEmailExists", ctx, "firstlast@gmail.com").Return(true, nil)
			},
			wantErr: ErrEmailTaken,
		},
		{
			name:   "blocked domain",
			mutate: func(in *RegisterInput) { in.Email = "user@spam.example" },
			setupMocks: func(m *authMocks) {
				m.users.On("NormalizedEmailExists", ctx, "user@spam.example").Return(false, nil)
				m.blocklist.On("List", ctx).Return([]model.EmailBlockRule{{Domain: "spam.example"}}, nil)
			},
			wantErr: ErrEmailBlocked,
		},
		{
			name: "blocked by regex",
			setupMocks: func(m *authMocks) {
				m.users.On("NormalizedEmailExists", ctx, "someone@example.com").Return(false, nil)
				m.blocklist.On("List", ctx).Return([]model.EmailBlockRule{{Regex: `^someone@`}}, nil)
			},
			wantErr: ErrEmailBlocked,
		},
		{
			name: "broken blocklist regex is skipped",
			setupMocks: func(m *authMocks) {
				m.users.On("NormalizedEmailExists", ctx, "someone@example.com").Return(false, nil)
				m.blocklist.On("List", ctx).Return([]model.EmailBlockRule{{Regex: `([`}}, nil)
				m.limits.On("Add", ctx, 1, 0).Return(&model.SiteLimits{DailySignups: 1}, nil)
				m.users.On("Create", ctx, mock.Anything).Return(&model.User{ID: "new-id"}, nil)
			},
		},
		{
			name: "daily signup limit reached",
			setupMocks: func(m *authMocks) {
				m.users.On("NormalizedEmailExists", ctx, "someone@example.com").Return(false, nil)
				m.blocklist.On("List", ctx).Return([]model.EmailBlockRule{}, nil)
				m.limits.On("Add", ctx, 1, 0).Return(&model.SiteLimits{DailySignups: 51}, nil)
			},
			wantErr: ErrSignupsClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthService(t)
			in := validRegisterInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			tt.setupMocks(m)

			u, err := svc.Register(ctx, in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, u)
			}
			m.users.AssertExpectations(t)
			m.limits.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_MailingList(t *testing.T) {
	ctx := context.Background()
	svc, m := newAuthService(t)

	m.users.On("NormalizedEmailExists", ctx, "someone@example.com").Return(false, nil)
	m.blocklist.On("List", ctx).Return([]model.EmailBlockRule{}, nil)
	m.limits.On("Add", ctx, 1, 0).Return(&model.SiteLimits{DailySignups: 1}, nil)
	m.users.On("Create", ctx, mock.Anything).
		Return(&model.User{ID: "new-id", Email: "someone@example.com"}, nil)
	m.mailing.On("Add", ctx, "someone@example.com").
		Return(&model.MailingListEntry{ID: 1, Email: "someone@example.com"}, nil)

	in := validRegisterInput()
	in.MailingList = true
	_, err := svc.Register(ctx, in)

	assert.NoError(t, err)
	m.mailing.AssertExpectations(t)
}

func TestAuthService_Verify(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	recent := now.Add(-time.Hour)
	ancient := now.Add(-100 * time.Hour)

	tests := []struct {
		name       string
		nonce      string
		setupMocks func(m *authMocks)
		wantErr    error
	}{
		{
			name:  "happy path issues a token",
			nonce: "good-nonce",
			setupMocks: func(m *authMocks) {
				m.users.On("FindByID", ctx, "user-id").Return(&model.User{
					ID: "user-id", IsActive: true,
					ActivationNonce: "good-nonce", NonceExpires: &recent,
				}, nil)
				m.users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.EmailVerified && u.ActivationNonce == ""
				})).Return(nil)
				m.tokens.On("Replace", ctx, mock.MatchedBy(func(tok *model.AuthToken) bool {
					return tok.UserID == "user-id" && tok.Key != ""
				})).Return(nil)
			},
		},
		{
			name:  "wrong nonce",
			nonce: "bad-nonce",
			setupMocks: func(m *authMocks) {
				m.users.On("FindByID", ctx, "user-id").Return(&model.User{
					ID: "user-id", IsActive: true,
					ActivationNonce: "good-nonce", NonceExpires: &recent,
				}, nil)
			},
			wantErr: ErrInvalidNonce,
		},
		{
			name:  "nonce past the verification window",
			nonce: "good-nonce",
			setupMocks: func(m *authMocks) {
				m.users.On("FindByID", ctx, "user-id").Return(&model.User{
					ID: "user-id", IsActive: true,
					ActivationNonce: "good-nonce", NonceExpires: &ancient,
				}, nil)
			},
			wantErr: ErrInvalidNonce,
		},
		{
			name:  "inactive user",
			nonce: "good-nonce",
			setupMocks: func(m *authMocks) {
				m.users.On("FindByID", ctx, "user-id").Return(&model.User{
					ID: "user-id", IsActive: false,
					ActivationNonce: "good-nonce", NonceExpires: &recent,
				}, nil)
			},
			wantErr: ErrInvalidNonce,
		},
		{
			name:  "unknown user",
			nonce: "good-nonce",
			setupMocks: func(m *authMocks) {
				m.users.On("FindByID", ctx, "user-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrInvalidNonce,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthService(t)
			tt.setupMocks(m)

			token, err := svc.Verify(ctx, "user-id", tt.nonce)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, token)
			}
			m.users.AssertExpectations(t)
			m.tokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_ResendVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("regenerates an old nonce", func(t *testing.T) {
		svc, m := newAuthService(t)
		old := time.Now().UTC().Add(-30 * time.Hour)
		m.users.On("FindByEmail", ctx, "someone@example.com").Return(&model.User{
			ID: "user-id", Email: "someone@example.com", IsActive: true,
			ActivationNonce: "stale", NonceExpires: &old,
		}, nil)
		m.users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.ActivationNonce != "stale" && u.ActivationNonce != ""
		})).Return(nil)

		assert.NoError(t, svc.ResendVerification(ctx, "someone@example.com"))
		m.users.AssertExpectations(t)
	})

	t.Run("keeps a recent nonce", func(t *testing.T) {
		svc, m := newAuthService(t)
		recent := time.Now().UTC().Add(-time.Hour)
		m.users.On("FindByEmail", ctx, "someone@example.com").Return(&model.User{
			ID: "user-id", Email: "someone@example.com", IsActive: true,
			ActivationNonce: "fresh", NonceExpires: &recent,
		}, nil)

		assert.NoError(t, svc.ResendVerification(ctx, "someone@example.com"))
		m.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown address is silently accepted", func(t *testing.T) {
		svc, m := newAuthService(t)
		m.users.On("FindByEmail", ctx, "nobody@example.com").Return(nil, sql.ErrNoRows)

		assert.NoError(t, svc.ResendVerification(ctx, "nobody@example.com"))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password1234"), bcrypt.MinCost)
	assert.NoError(t, err)

	verified := func() *model.User {
		return &model.User{
			ID: "user-id", Email: "someone@example.com", PasswordHash: string(hash),
			IsActive: true, EmailVerified: true,
		}
	}

	t.Run("happy path returns existing token", func(t *testing.T) {
		svc, m := newAuthService(t)
		m.users.On("FindByEmail", ctx, "someone@example.com").Return(verified(), nil)
		m.tokens.On("FindByUser", ctx, "user-id").Return(&model.AuthToken{Key: "api-key", UserID: "user-id"}, nil)

		u, token, err := svc.Login(ctx, "someone@example.com", "password1234")

		assert.NoError(t, err)
		assert.Equal(t, "user-id", u.ID)
		assert.Equal(t, "api-key", token.Key)
	})

	t.Run("mints a token when none exists", func(t *testing.T) {
		svc, m := newAuthService(t)
		m.users.On("FindByEmail", ctx, "someone@example.com").Return(verified(), nil)
		m.tokens.On("FindByUser", ctx, "user-id").Return(nil, sql.ErrNoRows)
		m.tokens.On("Replace", ctx, mock.Anything).Return(nil)

		_, token, err := svc.Login(ctx, "someone@example.com", "password1234")

		assert.NoError(t, err)
		assert.NotEmpty(t, token.Key)
		m.tokens.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, m := newAuthService(t)
		m.users.On("FindByEmail", ctx, "someone@example.com").Return(verified(), nil)

		_, _, err := svc.Login(ctx, "someone@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, m := newAuthService(t)
		m.users.On("FindByEmail", ctx, "nobody@example.com").Return(nil, sql.ErrNoRows)

		_, _, err := svc.Login(ctx, "nobody@example.com", "password1234")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unverified email", func(t *testing.T) {
		svc, m := newAuthService(t)
		u := verified()
		u.EmailVerified = false
		m.users.On("FindByEmail", ctx, "someone@example.com").Return(u, nil)

		_, _, err := svc.Login(ctx, "someone@example.com", "password1234")
		assert.ErrorIs(t, err, ErrNotVerified)
	})
}

func TestAuthService_ResetAPIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the token", func(t *testing.T) {
		svc, m := newAuthService(t)
		m.users.On("FindByID", ctx, "user-id").Return(&model.User{ID: "user-id", EmailVerified: true}, nil)
		m.tokens.On("Replace", ctx, mock.Anything).Return(nil)

		token, err := svc.ResetAPIKey(ctx, "user-id")

		assert.NoError(t, err)
		assert.NotEmpty(t, token.Key)
	})

	t.Run("requires a verified email", func(t *testing.T) {
		svc, m := newAuthService(t)
		m.users.On("FindByID", ctx, "user-id").Return(&model.User{ID: "user-id"}, nil)

		_, err := svc.ResetAPIKey(ctx, "user-id")
		assert.ErrorIs(t, err, ErrNotVerified)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves the key to its user", func(t *testing.T) {
		svc, m := newAuthService(t)
		m.tokens.On("FindByKey", ctx, "api-key").Return(&model.AuthToken{Key: "api-key", UserID: "user-id"}, nil)
		m.users.On("FindByID", ctx, "user-id").Return(&model.User{ID: "user-id", IsActive: true}, nil)

		u, err := svc.Authenticate(ctx, "api-key")
		assert.NoError(t, err)
		assert.Equal(t, "user-id", u.ID)
	})

	t.Run("unknown key", func(t *testing.T) {
		svc, m := newAuthService(t)
		m.tokens.On("FindByKey", ctx, "bad-key").Return(nil, sql.ErrNoRows)

		_, err := svc.Authenticate(ctx, "bad-key")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty key", func(t *testing.T) {
		svc, _ := newAuthService(t)
		_, err := svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("deactivated user", func(t *testing.T) {
		svc, m := newAuthService(t)
		m.tokens.On("FindByKey", ctx, "api-key").Return(&model.AuthToken{Key: "api-key", UserID: "user-id"}, nil)
		m.users.On("FindByID", ctx, "user-id").Return(&model.User{ID: "user-id", IsActive: false}, nil)

		_, err := svc.Authenticate(ctx, "api-key")
		assert.ErrorIs(t, err, ErrUserInactive)
	})
}

func TestAuthService_ResetDailyLimits(t *testing.T) {
	ctx := context.Background()
	svc, m := newAuthService(t)
	m.limits.On("Reset", ctx).Return(nil)

	assert.NoError(t, svc.ResetDailyLimits(ctx))
	m.limits.AssertExpectations(t)
}
