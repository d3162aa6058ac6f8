// ABOUTME: Email/password authentication over the document store.
// ABOUTME: Passwords are bcrypt-hashed; sessions are HS256 JWTs that can be restored later.

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/harper/tigercub/internal/docstore"
	"github.com/harper/tigercub/internal/logging"
	"github.com/harper/tigercub/internal/models"
)

const (
	issuer            = "tigercub"
	accountsColl      = "accounts"
	signingKeyDoc     = "system/auth"
	minPasswordLength = 6
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionInvalid     = errors.New("session invalid or expired")
)

var emailPattern = regexp.MustCompile(`^[^\s@/]+@[^\s@/]+\.[^\s@/]+$`)

// User is the signed-in identity. UID scopes every document path.
type User struct {
	UID   string
	Email string
}

// Gateway is the authentication surface the rest of the app depends on.
type Gateway interface {
	SignUp(ctx context.Context, email, password string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignOut()
	CurrentUser() *User
	// OnAuthStateChanged calls fn with the current uid immediately and again
	// on every change. "" means signed out.
	OnAuthStateChanged(fn func(uid string)) (cancel func())
}

type account struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LocalGateway keeps accounts in the document store under accounts/{email}.
type LocalGateway struct {
	store docstore.Store
	ttl   time.Duration
	now   func() time.Time
	log   *log.Logger

	keyMu sync.Mutex
	key   []byte

	mu        sync.Mutex
	user      *User
	token     string
	listeners map[int]func(string)
	nextID    int
}

// Option configures a LocalGateway.
type Option func(*LocalGateway)

// WithSessionTTL sets how long issued tokens stay valid. Zero means forever.
func WithSessionTTL(ttl time.Duration) Option {
	return func(g *LocalGateway) {
		g.ttl = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *LocalGateway) {
		g.now = now
	}
}

func WithLogger(l *log.Logger) Option {
	return func(g *LocalGateway) {
		g.log = logging.OrDiscard(l)
	}
}

func NewLocalGateway(store docstore.Store, opts ...Option) *LocalGateway {
	g := &LocalGateway{
		store:     store,
		now:       time.Now,
		log:       logging.Discard(),
		listeners: make(map[int]func(string)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ Gateway = (*LocalGateway)(nil)

// SignUp creates an account and signs it in.
func (g *LocalGateway) SignUp(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	docPath := docstore.Join(accountsColl, email)
	if _, err := g.store.Get(ctx, docPath); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("look up account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	uid := uuid.NewString()
	err = g.store.Set(ctx, docPath, docstore.Fields{
		"uid":          uid,
		"email":        email,
		"passwordHash": string(hash),
		"createdAt":    docstore.ServerTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	user := &User{UID: uid, Email: email}
	if err := g.establish(ctx, user); err != nil {
		return nil, err
	}
	g.log.Info("account created", "uid", uid)
	return user, nil
}

// SignIn verifies credentials and signs the account in.
func (g *LocalGateway) SignIn(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	acct, err := g.lookup(ctx, email)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user := &User{UID: acct.UID, Email: acct.Email}
	if err := g.establish(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Restore signs in from a token issued by an earlier SignUp or SignIn.
func (g *LocalGateway) Restore(ctx context.Context, token string) (*User, error) {
	key, err := g.signingKey(ctx)
	if err != nil {
		return nil, err
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	acct, err := g.lookup(ctx, claims.Email)
	if errors.Is(err, docstore.ErrNotFound) || (err == nil && acct.UID != claims.Subject) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, err
	}

	user := &User{UID: acct.UID, Email: acct.Email}
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
	g.setUser(user)
	return user, nil
}

// SignOut forgets the current session.
func (g *LocalGateway) SignOut() {
	g.mu.Lock()
	g.token = ""
	g.mu.Unlock()
	g.setUser(nil)
}

func (g *LocalGateway) CurrentUser() *User {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.user == nil {
		return nil
	}
	u := *g.user
	return &u
}

// Token returns the session token of the signed-in user, or "".
func (g *LocalGateway) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

func (g *LocalGateway) OnAuthStateChanged(fn func(uid string)) (cancel func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	uid := uidOf(g.user)
	g.mu.Unlock()

	fn(uid)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.listeners, id)
			g.mu.Unlock()
		})
	}
}

func (g *LocalGateway) establish(ctx context.Context, user *User) error {
	token, err := g.issue(ctx, user)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
	g.setUser(user)
	return nil
}

// setUser swaps the identity and notifies listeners if the uid changed.
func (g *LocalGateway) setUser(user *User) {
	g.mu.Lock()
	before := uidOf(g.user)
	g.user = user
	after := uidOf(user)
	var fns []func(string)
	if before != after {
		for _, fn := range g.listeners {
			fns = append(fns, fn)
		}
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(after)
	}
}

func (g *LocalGateway) issue(ctx context.Context, user *User) (string, error) {
	key, err := g.signingKey(ctx)
	if err != nil {
		return "", err
	}
	now := g.now()
	claims := sessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  user.UID,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
	}
	if g.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(g.ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

func (g *LocalGateway) lookup(ctx context.Context, email string) (*account, error) {
	doc, err := g.store.Get(ctx, docstore.Join(accountsColl, normalizeEmail(email)))
	if err != nil {
		return nil, err
	}
	var acct account
	if err := doc.Decode(&acct); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &acct, nil
}

// signingKey loads the HMAC key, generating and storing one on first use.
func (g *LocalGateway) signingKey(ctx context.Context) ([]byte, error) {
	g.keyMu.Lock()
	defer g.keyMu.Unlock()
	if g.key != nil {
		return g.key, nil
	}

	doc, err := g.store.Get(ctx, signingKeyDoc)
	switch {
	case err == nil:
		var stored struct {
			SigningKey string `json:"signingKey"`
		}
		if err := doc.Decode(&stored); err != nil {
			return nil, err
		}
		key, err := base64.StdEncoding.DecodeString(stored.SigningKey)
		if err != nil {
			return nil, fmt.Errorf("decode signing key: %w", err)
		}
		g.key = key
	case errors.Is(err, docstore.ErrNotFound):
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		err := g.store.Set(ctx, signingKeyDoc, docstore.Fields{
			"signingKey": base64.StdEncoding.EncodeToString(key),
			"createdAt":  docstore.ServerTimestamp,
		})
		if err != nil {
			return nil, fmt.Errorf("store signing key: %w", err)
		}
		g.key = key
	default:
		return nil, fmt.Errorf("load signing key: %w", err)
	}
	return g.key, nil
}

func validateCredentials(email, password string) error {
	var errs models.ValidationErrors
	if !emailPattern.MatchString(email) {
		errs = append(errs, &models.ValidationError{Field: "email", Message: "a valid email is required"})
	}
	if len(password) < minPasswordLength {
		errs = append(errs, &models.ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func uidOf(u *User) string {
	if u == nil {
		return ""
	}
	return u.UID
}
