// Package session is the identity provider the rest of the service asks for
// the acting user's name and role.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"civicsync-be/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidInput       = errors.New("invalid input")
)

// Provider authenticates users. Calls may block on a remote backend and
// honour ctx cancellation.
type Provider interface {
	Login(ctx context.Context, email, password string, role models.Role) (models.User, error)
	Signup(ctx context.Context, name, email, password string) (models.User, error)
}

const (
	DefaultAdminEmail = "admin@civicsync.com"
	adminName         = "City Administrator"
	minPasswordLength = 6
)

// MockProvider stands in for an authentication backend. It keeps accounts in
// memory and waits Latency before answering, like a remote round trip would.
//
// Admin login succeeds only for AdminEmail. Citizen login for an unknown email
// creates the citizen on the fly, named after the email's local part; an email
// that has signed up must present its password.
type MockProvider struct {
	AdminEmail string
	Latency    time.Duration

	mu    sync.Mutex
	users map[string]models.User
	now   func() time.Time
	log   zerolog.Logger
}

func NewMockProvider(adminEmail string, latency time.Duration, log zerolog.Logger) *MockProvider {
	if adminEmail == "" {
		adminEmail = DefaultAdminEmail
	}
	return &MockProvider{
		AdminEmail: strings.ToLower(adminEmail),
		Latency:    latency,
		users:      make(map[string]models.User),
		now:        time.Now,
		log:        log,
	}
}

// wait simulates the backend round trip.
func (p *MockProvider) wait(ctx context.Context) error {
	if p.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *MockProvider) Login(ctx context.Context, email, password string, role models.Role) (models.User, error) {
	if err := p.wait(ctx); err != nil {
		return models.User{}, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.User{}, ErrInvalidCredentials
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch role {
	case models.Admin:
		if email != p.AdminEmail {
			p.log.Warn().Str("email", email).Msg("admin login refused")
			return models.User{}, ErrInvalidCredentials
		}
		if user, ok := p.users[email]; ok {
			if user.Password != "" && !user.ComparePassword(password) {
				return models.User{}, ErrInvalidCredentials
			}
			return user, nil
		}
		user := p.newUser(adminName, email, models.Admin)
		p.users[email] = user
		return user, nil

	case models.Citizen:
		if user, ok := p.users[email]; ok {
			if user.Role != models.Citizen {
				return models.User{}, ErrInvalidCredentials
			}
			if user.Password != "" && !user.ComparePassword(password) {
				return models.User{}, ErrInvalidCredentials
			}
			return user, nil
		}
		user := p.newUser(strings.SplitN(email, "@", 2)[0], email, models.Citizen)
		p.users[email] = user
		p.log.Info().Str("user_id", user.ID).Msg("citizen created on first login")
		return user, nil

	default:
		return models.User{}, ErrInvalidInput
	}
}

func (p *MockProvider) Signup(ctx context.Context, name, email, password string) (models.User, error) {
	if err := p.wait(ctx); err != nil {
		return models.User{}, err
	}

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || len(password) < minPasswordLength {
		return models.User{}, ErrInvalidInput
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.users[email]; ok || email == p.AdminEmail {
		return models.User{}, ErrEmailTaken
	}

	user := p.newUser(name, email, models.Citizen)
	user.Password = password
	if err := user.HashPassword(); err != nil {
		return models.User{}, err
	}
	p.users[email] = user
	p.log.Info().Str("user_id", user.ID).Msg("citizen signed up")
	return user, nil
}

func (p *MockProvider) newUser(name, email string, role models.Role) models.User {
	now := p.now()
	return models.User{
		ID:        primitive.NewObjectID().Hex(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
