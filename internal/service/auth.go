package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	emailaddr "github.com/Cab789/capstone/internal/email"
	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

var (
	ErrEmailWhitespace    = errors.New("email contains whitespace")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrEmailBlocked       = errors.New("this email address is invalid")
	ErrTOSRequired        = errors.New("you must agree to the terms of use")
	ErrSignupsClosed      = errors.New("signups are closed for today")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email address has not been verified")
	ErrInvalidNonce       = errors.New("verification link is invalid or expired")
	ErrUserInactive       = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid token")
)

// Activation windows. A nonce stops being accepted verifyWindow after it was
// issued; resending only mints a new nonce once resendAfter has passed.
const (
	verifyWindow = 72 * time.Hour
	resendAfter  = 24 * time.Hour
)

// RegisterInput is the signup payload.
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	FirstName   string `json:"first_name" validate:"max=100"`
	LastName    string `json:"last_name" validate:"max=100"`
	AgreedToTOS bool   `json:"agreed_to_tos"`
	MailingList bool   `json:"mailing_list"`
}

// AuthService defines the account use cases: registration, email
// verification, login and API key management.
type AuthService interface {
	// Register creates an inactive-for-API account and sends the
	// verification email.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)

	// Verify checks the activation nonce and, on success, marks the email
	// verified and issues the user's API key.
	Verify(ctx context.Context, userID, nonce string) (*model.AuthToken, error)

	// ResendVerification re-sends the activation email, minting a fresh
	// nonce if the current one is old enough.
	ResendVerification(ctx context.Context, email string) error

	// Login checks credentials and returns the user with their API key.
	Login(ctx context.Context, email, password string) (*model.User, *model.AuthToken, error)

	// ResetAPIKey replaces the user's API key. Requires a verified email.
	ResetAPIKey(ctx context.Context, userID string) (*model.AuthToken, error)

	// Authenticate resolves an API key to its user.
	Authenticate(ctx context.Context, key string) (*model.User, error)

	// SubscribeMailingList adds an address to the newsletter list.
	// Duplicate subscriptions are not an error.
	SubscribeMailingList(ctx context.Context, email string) error

	// ResetDailyLimits zeroes the sitewide daily signup and download
	// counters. Run at the start of each day.
	ResetDailyLimits(ctx context.Context) error
}

type authService struct {
	users     repository.UserRepository
	tokens    repository.TokenRepository
	blocklist repository.BlocklistRepository
	mailing   repository.MailingListRepository
	limits    repository.SiteLimitsRepository
	mailer    Mailer
	validate  *validator.Validate

	dailyAllowance   int
	dailySignupLimit int
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	blocklist repository.BlocklistRepository,
	mailing repository.MailingListRepository,
	limits repository.SiteLimitsRepository,
	mailer Mailer,
	dailyAllowance, dailySignupLimit int,
) AuthService {
	return &authService{
		users:            users,
		tokens:           tokens,
		blocklist:        blocklist,
		mailing:          mailing,
		limits:           limits,
		mailer:           mailer,
		validate:         validator.New(),
		dailyAllowance:   dailyAllowance,
		dailySignupLimit: dailySignupLimit,
	}
}

func newNonce() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func newTokenKey() string {
	return strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if strings.ContainsAny(in.Email, " \t\r\n") {
		return nil, ErrEmailWhitespace
	}
	if !in.AgreedToTOS {
		return nil, ErrTOSRequired
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	normalized := emailaddr.Normalize(in.Email)
	exists, err := s.users.NormalizedEmailExists(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	if err := s.checkBlocklist(ctx, in.Email); err != nil {
		return nil, err
	}

	// The counter row is incremented under a lock, so concurrent signups
	// past the limit all see a value above it.
	limits, err := s.limits.Add(ctx, 1, 0)
	if err != nil {
		return nil, err
	}
	if limits.DailySignups > s.dailySignupLimit {
		return nil, ErrSignupsClosed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &model.User{
		ID:                       uuid.New().String(),
		Email:                    strings.ToLower(in.Email),
		NormalizedEmail:          normalized,
		FirstName:                in.FirstName,
		LastName:                 in.LastName,
		PasswordHash:             string(hash),
		TotalCaseAllowance:       s.dailyAllowance,
		CaseAllowanceRemaining:   s.dailyAllowance,
		CaseAllowanceLastUpdated: now,
		IsActive:                 true,
		ActivationNonce:          newNonce(),
		NonceExpires:             &now,
		DateJoined:               now,
		AgreedToTOS:              true,
		MailingList:              in.MailingList,
	}
	stored, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, err
	}

	if in.MailingList {
		if _, err := s.mailing.Add(ctx, stored.Email); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
	}

	if err := s.sendVerification(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *authService) checkBlocklist(ctx context.Context, addr string) error {
	rules, err := s.blocklist.List(ctx)
	if err != nil {
		return err
	}
	lower := strings.ToLower(addr)
	domain := emailaddr.Domain(addr)
	for _, rule := range rules {
		if rule.Domain != "" && strings.EqualFold(rule.Domain, domain) {
			return ErrEmailBlocked
		}
		if rule.Regex == "" {
			continue
		}
		re, err := regexp.Compile(rule.Regex)
		if err != nil {
			// A broken rule must not block every signup.
			continue
		}
		if re.MatchString(lower) {
			return ErrEmailBlocked
		}
	}
	return nil
}

func (s *authService) sendVerification(ctx context.Context, u *model.User) error {
	body := fmt.Sprintf("To activate your account, visit /user/verify/%s/%s", u.ID, u.ActivationNonce)
	return s.mailer.Send(ctx, u.Email, "Please verify your email address", body)
}

func (s *authService) Verify(ctx context.Context, userID, nonce string) (*model.AuthToken, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidNonce
		}
		return nil, err
	}
	if !u.IsActive || u.ActivationNonce == "" || u.ActivationNonce != nonce {
		return nil, ErrInvalidNonce
	}
	if u.NonceExpires == nil || time.Now().UTC().After(u.NonceExpires.Add(verifyWindow)) {
		return nil, ErrInvalidNonce
	}

	u.EmailVerified = true
	u.ActivationNonce = ""
	u.NonceExpires = nil
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	token := &model.AuthToken{
		Key:       newTokenKey(),
		UserID:    u.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tokens.Replace(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *authService) ResendVerification(ctx context.Context, addr string) error {
	u, err := s.users.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Do not reveal whether the address has an account.
			return nil
		}
		return err
	}
	if u.EmailVerified || !u.IsActive {
		return nil
	}

	now := time.Now().UTC()
	if u.NonceExpires == nil || now.After(u.NonceExpires.Add(resendAfter)) {
		u.ActivationNonce = newNonce()
		u.NonceExpires = &now
		if err := s.users.Update(ctx, u); err != nil {
			return err
		}
	}
	return s.sendVerification(ctx, u)
}

func (s *authService) Login(ctx context.Context, addr, password string) (*model.User, *model.AuthToken, error) {
	u, err := s.users.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, nil, ErrUserInactive
	}
	if !u.EmailVerified {
		return nil, nil, ErrNotVerified
	}

	token, err := s.tokens.FindByUser(ctx, u.ID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, err
		}
		token = &model.AuthToken{Key: newTokenKey(), UserID: u.ID, CreatedAt: time.Now().UTC()}
		if err := s.tokens.Replace(ctx, token); err != nil {
			return nil, nil, err
		}
	}
	return u, token, nil
}

func (s *authService) ResetAPIKey(ctx context.Context, userID string) (*model.AuthToken, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.EmailVerified {
		return nil, ErrNotVerified
	}
	token := &model.AuthToken{Key: newTokenKey(), UserID: u.ID, CreatedAt: time.Now().UTC()}
	if err := s.tokens.Replace(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *authService) Authenticate(ctx context.Context, key string) (*model.User, error) {
	if key == "" {
		return nil, ErrInvalidToken
	}
	token, err := s.tokens.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	u, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}
	return u, nil
}

func (s *authService) SubscribeMailingList(ctx context.Context, addr string) error {
	if strings.ContainsAny(addr, " \t\r\n") || !strings.Contains(addr, "@") {
		return ErrEmailWhitespace
	}
	if _, err := s.mailing.Add(ctx, strings.ToLower(addr)); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	return nil
}

func (s *authService) ResetDailyLimits(ctx context.Context) error {
	return s.limits.Reset(ctx)
}
