package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/doctorcare-api/internal/models"
	"github.com/harentsoaR/doctorcare-api/internal/store"
	"github.com/harentsoaR/doctorcare-api/internal/utils"
)

const invalidCredentials = "Invalid email or password"

type AuthService struct {
	users  store.UserStore
	admins store.AdminStore
	tokens *utils.TokenService
	log    logrus.FieldLogger
}

func NewAuthService(users store.UserStore, admins store.AdminStore, tokens *utils.TokenService, log logrus.FieldLogger) *AuthService {
	return &AuthService{users: users, admins: admins, tokens: tokens, log: log}
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// AuthResult is returned by every successful login or registration.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
	FirstTime bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword rejects passwords bcrypt cannot hash as bad input.
func hashPassword(password string) (string, error) {
	hashed, err := utils.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", BadRequest("Password must be at most 72 bytes")
	}
	if err != nil {
		return "", Internal("failed to hash password", err)
	}
	return hashed, nil
}

// Register creates a user account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, BadRequest("Name, email and password are required")
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    strings.TrimSpace(in.Phone),
		Password: hashed,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, Conflict("User already exists")
		}
		return nil, Internal("failed to create user", err)
	}
	s.log.WithField("user_id", user.ID.Hex()).Info("User registered")

	return s.issue(models.UserPrincipal(user.ID), user, false)
}

// Login signs a user in. Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, BadRequest("Email and password required")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, Unauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, Internal("failed to find user", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, Unauthorized(invalidCredentials)
	}

	return s.issue(models.UserPrincipal(user.ID), user, false)
}

// CurrentUser resolves a user principal to its account.
func (s *AuthService) CurrentUser(ctx context.Context, p models.Principal) (*models.User, error) {
	if !p.IsUser() {
		return nil, Forbidden("Only patient accounts have a profile")
	}
	user, err := s.users.FindUserByID(ctx, p.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("User not found")
	}
	if err != nil {
		return nil, Internal("failed to find user", err)
	}
	return user, nil
}

// AdminLogin signs the administrator in. While no admin exists, the first
// call provisions the admin account from the supplied credentials.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, BadRequest("Email and password required")
	}

	admin, err := s.admins.FindAdminByEmail(ctx, email)
	if err == nil {
		return s.verifyAdmin(admin, password)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, Internal("failed to find admin", err)
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	admin = &models.Admin{Name: "Admin", Email: email, Password: hashed}
	err = s.admins.CreateAdmin(ctx, admin)
	switch {
	case err == nil:
		s.log.WithFields(logrus.Fields{"admin_id": admin.ID.Hex(), "email": email}).Warn("Admin account bootstrapped from first login")
		return s.issueAdmin(admin, true)
	case errors.Is(err, store.ErrAdminExists):
		// Another admin holds the slot. If a concurrent bootstrap with this
		// email won, the password still has to match.
		winner, ferr := s.admins.FindAdminByEmail(ctx, email)
		if errors.Is(ferr, store.ErrNotFound) {
			return nil, Unauthorized("Invalid password")
		}
		if ferr != nil {
			return nil, Internal("failed to find admin", ferr)
		}
		return s.verifyAdmin(winner, password)
	default:
		return nil, Internal("failed to create admin", err)
	}
}

func (s *AuthService) verifyAdmin(admin *models.Admin, password string) (*AuthResult, error) {
	if !utils.CheckPasswordHash(password, admin.Password) {
		return nil, Unauthorized("Invalid password")
	}
	return s.issueAdmin(admin, false)
}

func (s *AuthService) issueAdmin(admin *models.Admin, firstTime bool) (*AuthResult, error) {
	return s.issue(models.AdminPrincipal(admin.ID), nil, firstTime)
}

func (s *AuthService) issue(p models.Principal, user *models.User, firstTime bool) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(p)
	if err != nil {
		return nil, Internal("could not generate token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: user, FirstTime: firstTime}, nil
}
