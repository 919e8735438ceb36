package service

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/yanews/ya-news/database"
	"github.com/yanews/ya-news/database/model"
	"github.com/yanews/ya-news/logger"
	"github.com/yanews/ya-news/util/crypto"
)

var (
	ErrUserExists        = errors.New("a user with that username already exists")
	ErrInvalidUsername   = errors.New("username may contain only letters, digits and @/./+/-/_ characters")
	ErrPasswordTooShort  = errors.New("password must contain at least 8 characters")
	ErrPasswordsMismatch = errors.New("the two password fields didn't match")
)

const (
	maxUsernameLength = 150
	minPasswordLength = 8
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

type UserService struct{}

// CheckUser returns the user whose credentials match, nil otherwise.
func (s *UserService) CheckUser(username string, password string) *model.User {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil
	}

	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil
	}
	return user
}

func (s *UserService) GetUserByUsername(username string) (*model.User, error) {
	user := &model.User{}
	err := database.GetDB().Model(model.User{}).Where("username = ?", username).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ValidateSignup checks the signup form the same way Register does and
// returns every problem found.
func (s *UserService) ValidateSignup(username, password1, password2 string) []error {
	errs := make([]error, 0)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLength || !usernamePattern.MatchString(username) {
		errs = append(errs, ErrInvalidUsername)
	} else if _, err := s.GetUserByUsername(username); err == nil {
		errs = append(errs, ErrUserExists)
	}
	if utf8.RuneCountInString(password1) < minPasswordLength {
		errs = append(errs, ErrPasswordTooShort)
	}
	if password1 != password2 {
		errs = append(errs, ErrPasswordsMismatch)
	}
	return errs
}

// Register validates the signup form and creates the user.
func (s *UserService) Register(username, password1, password2 string) (*model.User, error) {
	if errs := s.ValidateSignup(username, password1, password2); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s.CreateUser(username, password1)
}

// CreateUser stores a user with a hashed password, without form validation.
func (s *UserService) CreateUser(username, password string) (*model.User, error) {
	if username == "" {
		return nil, ErrInvalidUsername
	}
	if password == "" {
		return nil, ErrPasswordTooShort
	}
	hashedPassword, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	db := database.GetDB()
	var count int64
	if err := db.Model(model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	user := &model.User{Username: username, Password: hashedPassword}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	logger.Infof("user %s registered", username)
	return user, nil
}
