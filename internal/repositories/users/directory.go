// Package users keeps the account directory as a JSON array under a single
// metadata key.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/workplan/internal/common"
	"github.com/dmitrijs2005/workplan/internal/cryptox"
	"github.com/dmitrijs2005/workplan/internal/models"
	"github.com/dmitrijs2005/workplan/internal/repositories/metadata"
)

// Directory is the account lookup and mutation surface.
type Directory interface {
	List(ctx context.Context) ([]models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByCredentials(ctx context.Context, email, password string) (*models.Account, error)
	Create(ctx context.Context, a models.Account) error
	Update(ctx context.Context, id string, u models.AccountUpdate) (*models.Account, error)
	Remove(ctx context.Context, id string) error
}

type wireAccount struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

type MetadataDirectory struct {
	repo   metadata.Repository
	key    string
	scheme cryptox.Scheme
}

// NewMetadataDirectory stores accounts under key and checks passwords with
// scheme.
func NewMetadataDirectory(repo metadata.Repository, key string, scheme cryptox.Scheme) *MetadataDirectory {
	return &MetadataDirectory{repo: repo, key: key, scheme: scheme}
}

func (d *MetadataDirectory) load(ctx context.Context) ([]models.Account, error) {
	data, err := d.repo.Get(ctx, d.key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var wire []wireAccount
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	accounts := make([]models.Account, 0, len(wire))
	for _, w := range wire {
		var created time.Time
		if w.CreatedAt != "" {
			created, err = time.Parse(time.RFC3339Nano, w.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("decode users: bad createdAt for %s: %w", w.ID, err)
			}
			created = created.UTC()
		}
		accounts = append(accounts, models.Account{
			ID:        w.ID,
			FirstName: w.FirstName,
			LastName:  w.LastName,
			Email:     w.Email,
			Password:  w.Password,
			Role:      models.Role(w.Role),
			CreatedAt: created,
		})
	}
	return accounts, nil
}

func (d *MetadataDirectory) store(ctx context.Context, accounts []models.Account) error {
	wire := make([]wireAccount, 0, len(accounts))
	for _, a := range accounts {
		var created string
		if !a.CreatedAt.IsZero() {
			created = a.CreatedAt.UTC().Format(models.TimeLayout)
		}
		wire = append(wire, wireAccount{
			ID:        a.ID,
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Email:     a.Email,
			Password:  a.Password,
			Role:      string(a.Role),
			CreatedAt: created,
		})
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	return d.repo.Set(ctx, d.key, data)
}

// List returns all accounts in insertion order.
func (d *MetadataDirectory) List(ctx context.Context) ([]models.Account, error) {
	return d.load(ctx)
}

// FindByEmail matches the email exactly. It returns common.ErrorNotFound
// when no account has it.
func (d *MetadataDirectory) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	accounts, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Email == email {
			return &accounts[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

// FindByCredentials returns common.ErrInvalidCredentials both for an
// unknown email and for a wrong password.
func (d *MetadataDirectory) FindByCredentials(ctx context.Context, email, password string) (*models.Account, error) {
	a, err := d.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !d.scheme.Verify(a.Password, password) {
		return nil, common.ErrInvalidCredentials
	}
	return a, nil
}

// Create appends a. The Password field must already be in the scheme's
// stored form.
func (d *MetadataDirectory) Create(ctx context.Context, a models.Account) error {
	accounts, err := d.load(ctx)
	if err != nil {
		return err
	}
	return d.store(ctx, append(accounts, a))
}

func (d *MetadataDirectory) Update(ctx context.Context, id string, u models.AccountUpdate) (*models.Account, error) {
	accounts, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].ID != id {
			continue
		}
		accounts[i].FirstName = u.FirstName
		accounts[i].LastName = u.LastName
		accounts[i].Email = u.Email
		accounts[i].Role = u.Role
		if err := d.store(ctx, accounts); err != nil {
			return nil, err
		}
		updated := accounts[i]
		return &updated, nil
	}
	return nil, common.ErrorNotFound
}

func (d *MetadataDirectory) Remove(ctx context.Context, id string) error {
	accounts, err := d.load(ctx)
	if err != nil {
		return err
	}
	for i := range accounts {
		if accounts[i].ID == id {
			return d.store(ctx, append(accounts[:i], accounts[i+1:]...))
		}
	}
	return common.ErrorNotFound
}
