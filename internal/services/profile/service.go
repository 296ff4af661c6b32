// Package profile reports on and wipes the WorkPlan data kept in the
// metadata medium under one key prefix.
package profile

import (
	"context"
	"slices"
	"strings"

	"github.com/dmitrijs2005/workplan/internal/logging"
	"github.com/dmitrijs2005/workplan/internal/repositories/metadata"
)

// Entry describes one stored key. Key has the profile prefix stripped.
type Entry struct {
	Key  string
	Size int
}

type Service struct {
	repo   metadata.Repository
	prefix string
	log    logging.Logger
}

// NewService returns a Service over the keys of repo that start with prefix.
// An empty prefix owns the whole medium.
func NewService(repo metadata.Repository, prefix string, log logging.Logger) *Service {
	return &Service{repo: repo, prefix: prefix, log: log}
}

// Entries lists the profile's keys sorted by name.
func (s *Service) Entries(ctx context.Context) ([]Entry, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(all))
	for k, v := range all {
		if !strings.HasPrefix(k, s.prefix) {
			continue
		}
		out = append(out, Entry{Key: strings.TrimPrefix(k, s.prefix), Size: len(v)})
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

// Reset removes every key of the profile and returns how many were removed.
// Keys of other prefixes sharing the medium are left alone.
func (s *Service) Reset(ctx context.Context) (int, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return 0, err
	}

	if s.prefix == "" {
		if err := s.repo.Clear(ctx); err != nil {
			return 0, err
		}
	} else {
		for _, e := range entries {
			if err := s.repo.Delete(ctx, s.prefix+e.Key); err != nil {
				return 0, err
			}
		}
	}

	s.log.Warn(ctx, "profile reset", "prefix", s.prefix, "keys", len(entries))
	return len(entries), nil
}
