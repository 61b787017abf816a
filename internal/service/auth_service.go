package service

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"gorm.io/gorm"
)

const (
	defaultTokenTTL   = 24 * time.Hour
	minPasswordLength = 8
)

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for malformed or tampered tokens and tokens of deleted users.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrUsernameTaken is returned when creating a user with an existing username.
	ErrUsernameTaken = fmt.Errorf("username %w", ErrConflict)
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{3,64}$`)

// AuthOptions configures token issuing.
type AuthOptions struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Claims are the JWT claims carried by dashboard bearer tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID returns the numeric user id stored in the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// IssuedToken is a signed token with its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	IssuedToken
	User *db.User
}

// AuthService verifies editor credentials and issues bearer tokens.
type AuthService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewAuthService creates an AuthService instance.
func NewAuthService(gdb *gorm.DB, opts AuthOptions) *AuthService {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	issuer := strings.TrimSpace(opts.Issuer)
	if issuer == "" {
		issuer = "yanc-cms"
	}
	return &AuthService{
		db:     gdb,
		secret: []byte(opts.Secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// Login checks the credentials, stamps the login time and issues a token.
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user db.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.LastLoginAt = &now

	issued, err := s.Issue(&user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{IssuedToken: issued, User: &user}, nil
}

// Issue signs a token for the user.
func (s *AuthService) Issue(user *db.User) (IssuedToken, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return IssuedToken{Token: signed, ExpiresAt: expiresAt.UTC().Truncate(time.Second)}, nil
}

// ParseToken verifies the signature, issuer and expiry of a bearer token.
func (s *AuthService) ParseToken(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}

// Refresh re-issues a token for a user that still exists.
func (s *AuthService) Refresh(claims *Claims) (IssuedToken, error) {
	if claims == nil {
		return IssuedToken{}, ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return IssuedToken{}, err
	}

	user, err := s.GetUser(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return IssuedToken{}, ErrInvalidToken
		}
		return IssuedToken{}, err
	}
	return s.Issue(user)
}

// GetUser fetches a user by id.
func (s *AuthService) GetUser(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(userID uint, current, next string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return fieldError("current_password", "current_password is incorrect")
	}
	if err := validatePassword("new_password", next); err != nil {
		return err
	}
	return s.setPassword(user, next)
}

// CreateUser adds an editor account.
func (s *AuthService) CreateUser(username, password, displayName string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, fieldError("username", "username must be 3-64 letters, digits, dots, underscores or hyphens")
	}
	if err := validatePassword("password", password); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&db.User{}).Unscoped().Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hashed, err := db.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName = plainText(displayName)
	if displayName == "" {
		displayName = username
	}
	user := db.User{Username: username, Password: hashed, DisplayName: displayName}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// ResetPassword sets a new password without knowing the old one.
func (s *AuthService) ResetPassword(username, password string) error {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := validatePassword("password", password); err != nil {
		return err
	}
	return s.setPassword(&user, password)
}

// ListUsers returns every account ordered by username.
func (s *AuthService) ListUsers() ([]db.User, error) {
	users := []db.User{}
	if err := s.db.Order("username asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *AuthService) setPassword(user *db.User, password string) error {
	hashed, err := db.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.Model(user).Update("password", hashed).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	user.Password = hashed
	return nil
}

func validatePassword(field, password string) error {
	if len([]rune(password)) < minPasswordLength {
		return fieldError(field, fmt.Sprintf("%s must be at least %d characters in length", field, minPasswordLength))
	}
	if len(password) > 72 {
		return fieldError(field, fmt.Sprintf("%s must be a maximum of 72 bytes in length", field))
	}
	return nil
}
