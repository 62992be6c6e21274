package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/busline/booking-backend/internal/database"
	"github.com/busline/booking-backend/internal/models"
	"github.com/busline/booking-backend/pkg/jwt"
	"github.com/busline/booking-backend/pkg/validator"
)

// ErrInvalidCredentials is returned on a failed login without revealing
// which half was wrong.
var ErrInvalidCredentials = errors.New("invalid phone or password")

// UserService handles customer account registration and the login gate
type UserService struct {
	userRepo   *database.UserRepository
	jwtService *jwt.Service
	phones     *validator.PhoneValidator
	bcryptCost int
	logger     *logrus.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo *database.UserRepository, jwtService *jwt.Service, bcryptCost int, logger *logrus.Logger) *UserService {
	return &UserService{
		userRepo:   userRepo,
		jwtService: jwtService,
		phones:     validator.NewPhoneValidator(),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a customer account with a bcrypt password hash
func (s *UserService) Register(req *models.RegisterUserRequest) (*models.User, error) {
	phone, err := s.phones.Validate(req.Phone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Phone:        phone,
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("Customer registered")
	return user, nil
}

// Login verifies credentials and issues the access token used as the
// "is this caller allowed" gate.
func (s *UserService) Login(phone, password string) (string, *models.User, error) {
	normalized, err := s.phones.Validate(phone)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByPhone(normalized)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Phone)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}
