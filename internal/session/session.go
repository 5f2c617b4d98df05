package session

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie the signed session token travels in.
const CookieName = "session"

// Session is the authenticated identity carried by the cookie. There is
// no server-side session table; the cookie is the whole session.
type Session struct {
	UserID   int
	Username string
}

type Claims struct {
	UserID    int    `json:"uid"`
	Username  string `json:"username"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// Issue signs a session token for the given user. The token carries no
// expiry: sessions end at logout or when the browser drops the cookie.
func (m *Manager) Issue(userID int, username string) (string, error) {
	claims := Claims{
		UserID:    userID,
		Username:  username,
		TokenType: "session",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.secret)
}

// Verify parses and validates a raw token string.
func (m *Manager) Verify(raw string) (*Session, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.TokenType != "session" {
		return nil, errors.New("invalid token type")
	}

	return &Session{UserID: claims.UserID, Username: claims.Username}, nil
}

// FromRequest reads the session cookie off the request. It fails open:
// an absent, malformed or badly signed cookie is simply "not logged in",
// never an error the caller has to distinguish.
func (m *Manager) FromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)

	if err != nil || cookie.Value == "" {
		return nil
	}

	s, err := m.Verify(cookie.Value)

	if err != nil {
		return nil
	}

	return s
}
