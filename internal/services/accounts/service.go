// Package accounts implements registration and the administrator's user
// management on top of the user directory.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/workplan/internal/common"
	"github.com/dmitrijs2005/workplan/internal/cryptox"
	"github.com/dmitrijs2005/workplan/internal/logging"
	"github.com/dmitrijs2005/workplan/internal/models"
	"github.com/dmitrijs2005/workplan/internal/repositories/users"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput is what the registration form collects.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Service is the account management surface used by the CLI.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*models.Account, error)
	List(ctx context.Context, search string) ([]models.Account, error)
	Update(ctx context.Context, id string, u models.AccountUpdate) (*models.Account, error)
	Remove(ctx context.Context, id string) error
	CreateAdmin(ctx context.Context) (*models.Account, error)
}

type service struct {
	dir    users.Directory
	scheme cryptox.Scheme
	log    logging.Logger
	clock  func() time.Time
	newID  func() string
}

// NewService returns a Service storing accounts in dir and passwords in the
// form produced by scheme.
func NewService(dir users.Directory, scheme cryptox.Scheme, log logging.Logger) Service {
	return &service{dir: dir, scheme: scheme, log: log, clock: time.Now, newID: uuid.NewString}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

func validateName(first, last string) error {
	if first == "" {
		return invalid("first name is required")
	}
	if last == "" {
		return invalid("last name is required")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	if !emailRe.MatchString(email) {
		return invalid("please enter a valid email address")
	}
	return nil
}

func (in RegisterInput) validate() error {
	if err := validateName(in.FirstName, in.LastName); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	switch {
	case in.Password == "":
		return invalid("password is required")
	case in.Password != in.ConfirmPassword:
		return invalid("passwords do not match")
	}
	return nil
}

func (s *service) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.dir.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	}
	return false, err
}

func (s *service) create(ctx context.Context, first, last, email, password string, role models.Role) (*models.Account, error) {
	stored, err := s.scheme.Hash(password)
	if err != nil {
		return nil, err
	}

	a := models.Account{
		ID:        s.newID(),
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  stored,
		Role:      role,
		CreatedAt: s.clock().UTC().Truncate(time.Millisecond),
	}
	if err := s.dir.Create(ctx, a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)

	if err := in.validate(); err != nil {
		return nil, err
	}

	taken, err := s.emailTaken(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, common.ErrEmailTaken
	}

	a, err := s.create(ctx, in.FirstName, in.LastName, in.Email, in.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "account registered", "id", a.ID, "email", a.Email)
	return a, nil
}

// List filters by a case-insensitive substring of name or email. An empty
// search returns every account.
func (s *service) List(ctx context.Context, search string) ([]models.Account, error) {
	all, err := s.dir.List(ctx)
	if err != nil {
		return nil, err
	}
	search = strings.TrimSpace(search)
	out := make([]models.Account, 0, len(all))
	for _, a := range all {
		if a.Matches(search) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id string, u models.AccountUpdate) (*models.Account, error) {
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Email = strings.TrimSpace(u.Email)

	if err := validateName(u.FirstName, u.LastName); err != nil {
		return nil, err
	}
	if err := validateEmail(u.Email); err != nil {
		return nil, err
	}
	if !u.Role.Valid() {
		return nil, invalid(fmt.Sprintf("unknown role %q", u.Role))
	}

	a, err := s.dir.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "account updated", "id", id, "role", string(a.Role))
	return a, nil
}

// Remove deletes the account. A session the account currently holds is left
// to expire on its own.
func (s *service) Remove(ctx context.Context, id string) error {
	if err := s.dir.Remove(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "account removed", "id", id)
	return nil
}

// CreateAdmin bootstraps the default administrator when no admin exists.
func (s *service) CreateAdmin(ctx context.Context) (*models.Account, error) {
	all, err := s.dir.List(ctx)
	if err != nil {
		return nil, err
	}
	taken := false
	for _, a := range all {
		if a.Role == models.RoleAdmin {
			return nil, common.ErrAdminExists
		}
		taken = taken || a.Email == common.DefaultAdminEmail
	}
	if taken {
		return nil, common.ErrEmailTaken
	}

	a, err := s.create(ctx, common.DefaultAdminFirstName, common.DefaultAdminLastName,
		common.DefaultAdminEmail, common.DefaultAdminPassword, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "admin account created", "email", a.Email)
	return a, nil
}
