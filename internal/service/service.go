// Package service implements the business operations over the repositories.
package service

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/haierkeys/offline-note-sync-service/internal/domain"
)

// timeNow is swapped out in retention tests.
var timeNow = time.Now

// Service bundles the repositories behind the business operations. One
// instance is shared by all handlers; it is safe for concurrent use because
// all state lives in the repositories.
type Service struct {
	notes  domain.NoteRepository
	tags   domain.TagRepository
	logger *zap.Logger
	sf     *singleflight.Group
}

type Option func(*Service)

func WithLogger(lg *zap.Logger) Option {
	return func(s *Service) {
		s.logger = lg
	}
}

func New(notes domain.NoteRepository, tags domain.TagRepository, opts ...Option) *Service {
	s := &Service{
		notes:  notes,
		tags:   tags,
		logger: zap.NewNop(),
		sf:     &singleflight.Group{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
