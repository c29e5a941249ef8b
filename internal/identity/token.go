package identity

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akalniens/keepsync/internal/common"
)

// Claims carries the user id and anonymity flag alongside the registered
// JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	Anonymous bool   `json:"anon"`
}

// GenerateToken signs a token for the given identity. Used by the auth
// provider and by tests.
func GenerateToken(id Identity, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		UserID:    id.UID,
		Anonymous: id.Anonymous,
	})
	return token.SignedString(secretKey)
}

// TokenProvider is a Provider fed by signed JWTs from the external auth
// service. SignIn and SignOut notify subscribers synchronously.
type TokenProvider struct {
	secret []byte

	mu       sync.Mutex
	id       Identity
	signedIn bool
	subs     map[int]func(Identity, bool)
	nextSub  int
}

// NewTokenProvider builds a provider validating tokens with the given key.
func NewTokenProvider(secret []byte) *TokenProvider {
	return &TokenProvider{secret: secret, subs: make(map[int]func(Identity, bool))}
}

// SignIn validates the token and makes its identity current.
func (p *TokenProvider) SignIn(tokenString string) error {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid || claims.UserID == "" {
		return common.ErrInvalidToken
	}

	p.set(Identity{UID: claims.UserID, Anonymous: claims.Anonymous}, true)
	return nil
}

// SignOut clears the current identity.
func (p *TokenProvider) SignOut() {
	p.set(Identity{}, false)
}

func (p *TokenProvider) set(id Identity, signedIn bool) {
	p.mu.Lock()
	p.id = id
	p.signedIn = signedIn
	subs := make([]func(Identity, bool), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(id, signedIn)
	}
}

// Current implements Provider.
func (p *TokenProvider) Current() (Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.id, p.signedIn
}

// OnChange implements Provider.
func (p *TokenProvider) OnChange(fn func(Identity, bool)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := p.nextSub
	p.nextSub++
	p.subs[key] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, key)
	}
}
