package services

import (
	"errors"
	"fmt"
	"strings"

	"table_ordering/internal/models"
	"table_ordering/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserUpdate lists the account fields an admin may change. Nil fields are
// left untouched; ClearVenue removes the venue assignment.
type UserUpdate struct {
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Role        *string `json:"role"`
	VenueID     *uint   `json:"venue_id"`
	ClearVenue  bool    `json:"clear_venue"`
	IsActive    *bool   `json:"is_active"`
	Password    *string `json:"password"`
}

type UserService interface {
	CreateUser(user *models.User, password string) error
	Authenticate(username, password string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetAllUsers(scope repository.Scope) ([]models.User, error)
	UpdateUser(id uint, update UserUpdate) (*models.User, error)
	DeleteUser(scope repository.Scope, id uint) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

const minPasswordLength = 8

func (s *userService) CreateUser(user *models.User, password string) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return validationError("username is required")
	}
	if len(password) < minPasswordLength {
		return validationError("password must be at least %d characters", minPasswordLength)
	}
	if user.Role == "" {
		user.Role = string(models.Waiter)
	}
	if !models.UserRole(user.Role).Valid() {
		return validationError("invalid role %q", user.Role)
	}
	if _, err := s.userRepo.GetByUsername(user.Username); err == nil {
		return validationError("username %s is already taken", user.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true

	return duplicate("username "+user.Username, s.userRepo.Create(user))
}

// Authenticate returns the active user matching the credentials. Unknown
// users and wrong passwords produce the same error.
func (s *userService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	return user, nil
}

func (s *userService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, notFound("user", err)
	}
	return user, nil
}

func (s *userService) GetUserByUsername(username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, notFound("user", err)
	}
	return user, nil
}

func (s *userService) GetAllUsers(scope repository.Scope) ([]models.User, error) {
	return s.userRepo.GetAll(scope)
}

// UpdateUser applies an admin edit. Role, venue and active changes take
// effect on the user's next request, since tokens are checked against the
// stored account.
func (s *userService) UpdateUser(id uint, update UserUpdate) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		user.Email = strings.TrimSpace(*update.Email)
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*update.PhoneNumber)
	}
	if update.Role != nil {
		if !models.UserRole(*update.Role).Valid() {
			return nil, validationError("invalid role %q", *update.Role)
		}
		user.Role = *update.Role
	}
	if update.ClearVenue {
		user.VenueID = nil
	} else if update.VenueID != nil {
		user.VenueID = update.VenueID
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}
	if update.Password != nil {
		if len(*update.Password) < minPasswordLength {
			return nil, validationError("password must be at least %d characters", minPasswordLength)
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. Callers cannot delete themselves.
func (s *userService) DeleteUser(scope repository.Scope, id uint) error {
	if scope.UserID == id {
		return fmt.Errorf("%w: you cannot delete your own account", ErrForbidden)
	}
	if _, err := s.GetUserByID(id); err != nil {
		return err
	}
	return s.userRepo.Delete(id)
}
