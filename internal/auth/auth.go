// Package auth owns the accounts table, password verification and session
// tokens. Hashing is delegated to bcrypt; verification is constant time.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"machine-loan-backend/config"
	"machine-loan-backend/internal/apperr"
	"machine-loan-backend/internal/model"
	"machine-loan-backend/internal/store"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password;
// callers must not learn which.
var ErrInvalidCredentials = apperr.NewValidation("invalid credentials")

// Claims is the JWT payload for a logged-in session.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service verifies logins and issues session tokens.
type Service struct {
	store  *store.Store
	cfg    *config.Config
	secret []byte
	logger *zap.Logger
	now    func() time.Time
}

// New creates the auth service. When no signing secret is configured a
// random one is generated, which invalidates sessions across restarts.
func New(st *store.Store, cfg *config.Config, logger *zap.Logger) *Service {
	secret := []byte(cfg.Auth.JWTSecret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}
		secret = []byte(hex.EncodeToString(buf))
		logger.Warn("auth.jwt_secret not configured; sessions will not survive a restart")
	}
	return &Service{store: st, cfg: cfg, secret: secret, logger: logger, now: time.Now}
}

// Bootstrap creates the admin account when the accounts table is empty.
func (s *Service) Bootstrap() error {
	password := s.cfg.Auth.AdminPassword
	if password == "" {
		password = "admin123"
		s.logger.Warn("auth.admin_password not configured; using the default bootstrap password")
	}

	return s.store.Update(func(sn *store.Snapshot) (store.Table, error) {
		if len(sn.Accounts) > 0 {
			return 0, nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return 0, err
		}
		sn.Accounts = append(sn.Accounts, model.Account{
			Username:     s.cfg.Auth.AdminUsername,
			PasswordHash: string(hash),
			Role:         model.RoleAdmin,
		})
		s.logger.Info("bootstrap admin account created",
			zap.String("username", s.cfg.Auth.AdminUsername))
		return store.TableAccounts, nil
	})
}

// Login verifies the credentials, records the access time, and returns a
// signed session token.
func (s *Service) Login(username, password string) (string, model.Account, error) {
	var account model.Account
	found := false

	err := s.store.Update(func(sn *store.Snapshot) (store.Table, error) {
		for i := range sn.Accounts {
			if sn.Accounts[i].Username != username {
				continue
			}
			if bcrypt.CompareHashAndPassword(
				[]byte(sn.Accounts[i].PasswordHash), []byte(password)) != nil {
				return 0, ErrInvalidCredentials
			}
			sn.Accounts[i].LastAccess = s.now()
			account = sn.Accounts[i]
			found = true
			return store.TableAccounts, nil
		}
		return 0, ErrInvalidCredentials
	})
	if err != nil {
		return "", model.Account{}, err
	}
	if !found {
		return "", model.Account{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(account)
	if err != nil {
		return "", model.Account{}, err
	}
	s.logger.Info("login", zap.String("username", account.Username))
	return token, account, nil
}

func (s *Service) issueToken(account model.Account) (string, error) {
	now := s.now()
	claims := Claims{
		Username: account.Username,
		Role:     account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Auth.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyToken parses and validates a session token.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
