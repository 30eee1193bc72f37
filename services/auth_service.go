package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/an-furnish/furnish-api/apperrors"
	"github.com/an-furnish/furnish-api/logger"
	"github.com/an-furnish/furnish-api/models"
)

// AdminRole is the role claim carried by locally issued tokens
const AdminRole = "admin"

// AdminClaims are the claims of a locally issued admin token
type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Credentials is the body of the setup and login endpoints
type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginResult is a freshly issued admin token
type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	Admin     *models.AdminUser `json:"admin"`
}

// AuthServiceOptions wires an AuthService
type AuthServiceOptions struct {
	Store  AdminStore
	Secret string
	Issuer string
	TTL    time.Duration
	Logger *logger.Logger
	Now    func() time.Time
}

// AuthService bootstraps the admin account and issues HS256 tokens for it
type AuthService struct {
	store    AdminStore
	secret   []byte
	issuer   string
	ttl      time.Duration
	log      *logger.Logger
	now      func() time.Time
	validate *validator.Validate
}

var authServiceInstance *AuthService

func NewAuthService(opts AuthServiceOptions) *AuthService {
	s := &AuthService{
		store:    opts.Store,
		secret:   []byte(opts.Secret),
		issuer:   opts.Issuer,
		ttl:      opts.TTL,
		log:      opts.Logger,
		now:      opts.Now,
		validate: validator.New(),
	}
	if s.ttl <= 0 {
		s.ttl = 24 * time.Hour
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// InitAuthService builds the process-wide AuthService
func InitAuthService(opts AuthServiceOptions) *AuthService {
	authServiceInstance = NewAuthService(opts)
	return authServiceInstance
}

// GetAuthService returns the initialized auth service, nil in Auth0 mode
func GetAuthService() *AuthService {
	return authServiceInstance
}

// SetAuthService sets the auth service instance (primarily for testing)
func SetAuthService(service *AuthService) {
	authServiceInstance = service
}

// Setup creates the first admin account. It is refused once any admin exists.
func (s *AuthService) Setup(ctx context.Context, creds Credentials) (*models.AdminUser, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := s.validate.Struct(creds); err != nil {
		return nil, apperrors.Validation("Username must be 3-64 characters and password 8-72 characters")
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to count admins", err)
		return nil, apperrors.Storage(err, "failed to check admin accounts")
	}
	if count > 0 {
		return nil, apperrors.Forbidden("Admin account already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to hash password")
	}

	now := s.now().UTC()
	admin := &models.AdminUser{
		Username:     creds.Username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, admin); err != nil {
		if errors.Is(err, ErrDuplicateAdmin) {
			return nil, apperrors.Forbidden("Admin account already exists")
		}
		s.log.Error(ctx, "failed to create admin", err)
		return nil, apperrors.Storage(err, "failed to create admin")
	}

	s.log.Info(s.log.WithField(ctx, "admin_id", admin.ID), "admin account created")
	return admin, nil
}

// Login checks the credentials and issues a signed token
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return nil, apperrors.Validation("Username and password are required")
	}

	admin, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		s.log.Error(ctx, "failed to load admin", err)
		return nil, apperrors.Storage(err, "failed to load admin")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(creds.Password)); err != nil {
		s.log.Warn(s.log.WithField(ctx, "username", username), "admin login rejected")
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	token, expiresAt, err := s.IssueToken(admin)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to issue token")
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Admin: admin}, nil
}

// IssueToken signs an HS256 token for admin
func (s *AuthService) IssueToken(admin *models.AdminUser) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := AdminClaims{
		Username: admin.Username,
		Role:     AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken validates a locally issued token and returns its claims
func (s *AuthService) ParseToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Role != AdminRole {
		return nil, errors.New("token does not carry the admin role")
	}
	return claims, nil
}

// Profile returns the admin behind a token subject
func (s *AuthService) Profile(ctx context.Context, adminID string) (*models.AdminUser, error) {
	admin, err := s.store.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, apperrors.NotFound("Admin not found")
		}
		return nil, apperrors.Storage(err, "failed to load admin")
	}
	return admin, nil
}
