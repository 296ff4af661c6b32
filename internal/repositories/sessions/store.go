// Package sessions persists the single active Session Record in the
// metadata medium and decodes it strictly: any shape mismatch is reported
// as common.ErrMalformedSession so that callers can fail closed.
package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/workplan/internal/common"
	"github.com/dmitrijs2005/workplan/internal/models"
	"github.com/dmitrijs2005/workplan/internal/repositories/metadata"
)

// Store reads and writes the record stored under one metadata key.
type Store interface {
	Load(ctx context.Context) (*models.SessionRecord, error)
	Save(ctx context.Context, rec models.SessionRecord) error
	Delete(ctx context.Context) error
}

type MetadataStore struct {
	repo   metadata.Repository
	key    string
	policy models.SessionPolicy
}

// NewMetadataStore keeps the record under key. policy is needed to check the
// expiresAt invariant while decoding.
func NewMetadataStore(repo metadata.Repository, key string, policy models.SessionPolicy) *MetadataStore {
	return &MetadataStore{repo: repo, key: key, policy: policy}
}

// wireRecord is the persisted layout of current_session.
type wireRecord struct {
	ID           *string `json:"id"`
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Email        *string `json:"email"`
	Role         *string `json:"role"`
	LoginTime    *string `json:"loginTime"`
	LastActivity *string `json:"lastActivity"`
	ExpiresAt    *string `json:"expiresAt"`
	RememberMe   *bool   `json:"rememberMe"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(models.TimeLayout)
}

func encode(rec models.SessionRecord) ([]byte, error) {
	role := string(rec.Role)
	login, last, exp := formatTime(rec.LoginTime), formatTime(rec.LastActivity), formatTime(rec.ExpiresAt)
	return json.Marshal(wireRecord{
		ID:           &rec.ID,
		FirstName:    &rec.FirstName,
		LastName:     &rec.LastName,
		Email:        &rec.Email,
		Role:         &role,
		LoginTime:    &login,
		LastActivity: &last,
		ExpiresAt:    &exp,
		RememberMe:   &rec.RememberMe,
	})
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", common.ErrMalformedSession, reason)
}

func parseTime(field string, v *string) (time.Time, error) {
	if v == nil {
		return time.Time{}, malformed("missing " + field)
	}
	t, err := time.Parse(time.RFC3339Nano, *v)
	if err != nil {
		return time.Time{}, malformed("bad " + field)
	}
	return t.UTC(), nil
}

func (s *MetadataStore) decode(data []byte) (*models.SessionRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w wireRecord
	if err := dec.Decode(&w); err != nil {
		return nil, malformed(err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformed("trailing data")
	}

	if w.ID == nil || *w.ID == "" {
		return nil, malformed("missing id")
	}
	if w.Email == nil || *w.Email == "" {
		return nil, malformed("missing email")
	}
	if w.FirstName == nil || w.LastName == nil {
		return nil, malformed("missing name")
	}
	if w.Role == nil || !models.Role(*w.Role).Valid() {
		return nil, malformed("bad role")
	}
	if w.RememberMe == nil {
		return nil, malformed("missing rememberMe")
	}

	login, err := parseTime("loginTime", w.LoginTime)
	if err != nil {
		return nil, err
	}
	last, err := parseTime("lastActivity", w.LastActivity)
	if err != nil {
		return nil, err
	}
	exp, err := parseTime("expiresAt", w.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if last.Before(login) {
		return nil, malformed("lastActivity before loginTime")
	}
	if !exp.Equal(last.Add(s.policy.Duration(*w.RememberMe))) {
		return nil, malformed("expiresAt does not match session length")
	}

	return &models.SessionRecord{
		User: models.User{
			ID:        *w.ID,
			FirstName: *w.FirstName,
			LastName:  *w.LastName,
			Email:     *w.Email,
			Role:      models.Role(*w.Role),
		},
		LoginTime:    login,
		LastActivity: last,
		ExpiresAt:    exp,
		RememberMe:   *w.RememberMe,
	}, nil
}

// Load returns common.ErrNoSession when nothing is stored and
// common.ErrMalformedSession when the stored value fails validation.
// Other errors come from the medium.
func (s *MetadataStore) Load(ctx context.Context) (*models.SessionRecord, error) {
	data, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, common.ErrNoSession
	}
	return s.decode(data)
}

func (s *MetadataStore) Save(ctx context.Context, rec models.SessionRecord) error {
	data, err := encode(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.repo.Set(ctx, s.key, data)
}

func (s *MetadataStore) Delete(ctx context.Context) error {
	return s.repo.Delete(ctx, s.key)
}
