package user

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/pkg/jwt"
	"github.com/penline/core/internal/store"
)

const maxBioLen = 500

type Service struct {
	users  store.UserStore
	tokens *jwt.Manager
	logger *zap.Logger
	cost   int
	now    func() time.Time
}

func NewService(users store.UserStore, tokens *jwt.Manager, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger.Named("UserService"),
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

// Register creates an account and signs a token for it. The first account
// becomes the admin.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (string, *models.UserModel, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("count users: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.cost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	role := models.RoleUser
	if count == 0 {
		role = models.RoleAdmin
	}
	u := &models.UserModel{
		Name:     strings.TrimSpace(dto.Name),
		Email:    strings.ToLower(strings.TrimSpace(dto.Email)),
		Password: string(hash),
		Avatar:   models.DefaultAvatar,
		Role:     role,
	}
	u.CreatedAt = s.now()
	if u.Name == "" {
		return "", nil, apperr.Validation("", apperr.FieldError{Field: "name", Message: "Please add a name"})
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Sign(u.ID, u.Role)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	s.logger.Info("user registered", zap.String("id", u.ID), zap.String("role", u.Role))
	return token, u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, *models.UserModel, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return "", nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, errInvalidCredentials
	}
	token, err := s.tokens.Sign(u.ID, u.Role)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

func (s *Service) Me(ctx context.Context, caller models.Identity) (*models.UserModel, error) {
	u, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user")
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, caller models.Identity, dto UpdateProfileDTO) (*models.UserModel, error) {
	u, err := s.Me(ctx, caller)
	if err != nil {
		return nil, err
	}
	if dto.Name != nil {
		u.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Avatar != nil {
		u.Avatar = strings.TrimSpace(*dto.Avatar)
		if u.Avatar == "" {
			u.Avatar = models.DefaultAvatar
		}
	}
	if dto.Bio != nil {
		u.Bio = strings.TrimSpace(*dto.Bio)
	}

	verr := &apperr.ValidationError{}
	switch n := utf8.RuneCountInString(u.Name); {
	case n == 0:
		verr.Add("name", "Please add a name")
	case n > 50:
		verr.Add("name", "Name cannot be more than 50 characters")
	}
	if utf8.RuneCountInString(u.Bio) > maxBioLen {
		verr.Add("bio", fmt.Sprintf("Bio cannot be more than %d characters", maxBioLen))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, caller models.Identity, oldPwd, newPwd string) error {
	u, err := s.Me(ctx, caller)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPwd)); err != nil {
		return errWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(newPwd)); err == nil {
		return errPasswordSameAsOld
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPwd), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = string(hash)
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.logger.Info("password changed", zap.String("id", u.ID))
	return nil
}
