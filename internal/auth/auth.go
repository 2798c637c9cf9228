// Package auth checks login credentials.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"

	"github.com/dgallion1/sheetgraph/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for every failed login, whatever the
// cause, so callers cannot tell unknown users from wrong passwords.
var ErrInvalidCredentials = errors.New("invalid username or password")

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// User is the identity attached to a session.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
}

// Authenticator validates a username/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (User, error)
}

// ValidUsername reports whether name matches the accepted username format.
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

// DemoUser is one entry of the demo allowlist.
type DemoUser struct {
	User
	Password string
}

// DefaultDemoUsers is the built-in allowlist used in demo mode.
var DefaultDemoUsers = []DemoUser{
	{User: User{ID: "admin", Username: "admin", Name: "Administrator", Role: "Admin"}, Password: "admin123"},
	{User: User{ID: "user", Username: "user", Name: "John Doe", Role: "Analyst"}, Password: "user123"},
	{User: User{ID: "manager", Username: "manager", Name: "Jane Smith", Role: "Manager"}, Password: "manager123"},
}

// DemoAuthenticator checks credentials against a fixed allowlist.
type DemoAuthenticator struct {
	users []DemoUser
}

// NewDemoAuthenticator uses DefaultDemoUsers when users is empty.
func NewDemoAuthenticator(users ...DemoUser) *DemoAuthenticator {
	if len(users) == 0 {
		users = DefaultDemoUsers
	}
	return &DemoAuthenticator{users: users}
}

func (a *DemoAuthenticator) Authenticate(_ context.Context, username, password string) (User, error) {
	if !ValidUsername(username) {
		return User{}, ErrInvalidCredentials
	}
	for _, u := range a.users {
		nameOK := subtle.ConstantTimeCompare([]byte(u.Username), []byte(username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1
		if nameOK && passOK {
			return u.User, nil
		}
	}
	return User{}, ErrInvalidCredentials
}

// UserFinder looks up stored accounts by username.
type UserFinder interface {
	UserByUsername(ctx context.Context, username string) (store.User, error)
}

// StoreAuthenticator checks credentials against bcrypt hashes in a store.
type StoreAuthenticator struct {
	users UserFinder
}

func NewStoreAuthenticator(users UserFinder) *StoreAuthenticator {
	return &StoreAuthenticator{users: users}
}

func (a *StoreAuthenticator) Authenticate(ctx context.Context, username, password string) (User, error) {
	if !ValidUsername(username) {
		return User{}, ErrInvalidCredentials
	}
	rec, err := a.users.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !VerifyPassword(password, rec.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}
	return FromRecord(rec), nil
}

// FromRecord strips the stored hash from a user record.
func FromRecord(rec store.User) User {
	return User{
		ID:       rec.ID,
		Username: rec.Username,
		Name:     rec.Name,
		Role:     rec.Role,
		Email:    rec.Email,
	}
}

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// VerifyPassword compares password with a bcrypt hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Account is the input for provisioning a stored user.
type Account struct {
	Username string
	Password string
	Role     string
	Name     string
	Email    string
}

// UserWriter creates or updates stored accounts.
type UserWriter interface {
	UpsertUser(ctx context.Context, u store.User) (store.User, error)
}

// Provision hashes the account password and creates or updates the user.
// An existing user keeps its id.
func Provision(ctx context.Context, users UserWriter, a Account) (User, error) {
	if !ValidUsername(a.Username) {
		return User{}, fmt.Errorf("invalid username %q: use 3-20 letters, digits or underscores", a.Username)
	}
	hash, err := HashPassword(a.Password)
	if err != nil {
		return User{}, err
	}
	rec, err := users.UpsertUser(ctx, store.User{
		Username:     a.Username,
		PasswordHash: hash,
		Role:         a.Role,
		Name:         a.Name,
		Email:        a.Email,
	})
	if err != nil {
		return User{}, fmt.Errorf("save user %s: %w", a.Username, err)
	}
	return FromRecord(rec), nil
}
