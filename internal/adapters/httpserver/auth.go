package httpserver

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"

	tokenIssuer = "productattr"
	tokenTTL    = 30 * time.Minute
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Auth issues and checks HS256 bearer tokens. Admin tokens stay valid only
// while their email is in the allowed list.
type Auth struct {
	secret  []byte
	apiKey  string
	allowed map[string]struct{}
	now     func() time.Time
}

func NewAuth(secret, apiKey string, emails []string) *Auth {
	if secret == "" {
		secret = "dev-admin-secret"
	}
	allowed := map[string]struct{}{}
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			allowed[e] = struct{}{}
		}
	}
	return &Auth{secret: []byte(secret), apiKey: apiKey, allowed: allowed, now: time.Now}
}

func (a *Auth) Issue(email, role string, dur time.Duration) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(dur)
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

func (a *Auth) Verify(tok string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Email == "" {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

func (a *Auth) IsAllowed(email string) bool {
	_, ok := a.allowed[strings.ToLower(email)]
	return ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// requireUser accepts any valid token and writes 401 otherwise.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*Claims, bool) {
	tok := bearerToken(r)
	if tok == "" {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	claims, err := s.auth.Verify(tok)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return claims, true
}

// requireAdmin writes 401 without a valid token and 403 for non-admins.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (*Claims, bool) {
	claims, ok := s.requireUser(w, r)
	if !ok {
		return nil, false
	}
	if claims.Role != RoleAdmin || !s.auth.IsAllowed(claims.Email) {
		writeMessage(w, http.StatusForbidden, "forbidden")
		return nil, false
	}
	return claims, true
}

// apiAuthToken trades X-Admin-Key plus an email for a short-lived token.
// Allowed emails get admin tokens; role "viewer" may be asked for any email.
func (s *Server) apiAuthToken(w http.ResponseWriter, r *http.Request) {
	if s.auth.apiKey == "" {
		log.Error().Msg("ADMIN_API_KEY missing")
		writeMessage(w, http.StatusInternalServerError, "config")
		return
	}
	key := r.Header.Get("X-Admin-Key")
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.auth.apiKey)) != 1 {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, err, "")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" && len(s.auth.allowed) == 1 {
		for k := range s.auth.allowed {
			email = k
		}
	}
	role := RoleAdmin
	if req.Role == RoleViewer {
		role = RoleViewer
	}
	switch {
	case email == "":
		writeMessage(w, http.StatusBadRequest, "email required")
		return
	case role == RoleAdmin && !s.auth.IsAllowed(email):
		writeMessage(w, http.StatusForbidden, "forbidden")
		return
	}
	tok, exp, err := s.auth.Issue(email, role, tokenTTL)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "exp": exp.Unix(), "email": email, "role": role})
}
