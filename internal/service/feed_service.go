package service

import (
	"time"

	"antigravity/internal/models"
	"antigravity/internal/repository"
)

// sponsoredInterval controls where featured resources are interleaved into
// the feed: one sponsored slot after every sponsoredInterval organic items.
const sponsoredInterval = 4

// FeedItem is a resource plus its placement flag, so clients can label
// sponsored slots.
type FeedItem struct {
	Resource  models.Resource `json:"resource"`
	Sponsored bool            `json:"sponsored"`
}

// FeedService assembles the directory feed: approved resources newest first,
// with currently featured resources interleaved at fixed positions. Positions
// are deterministic for a given dataset so paging stays stable.
type FeedService struct {
	resources *repository.ResourceRepository
}

func NewFeedService(resources *repository.ResourceRepository) *FeedService {
	return &FeedService{resources: resources}
}

func (s *FeedService) Build(filter repository.ResourceFilter) ([]FeedItem, error) {
	organic, err := s.resources.ListApproved(filter)
	if err != nil {
		return nil, err
	}
	featured, err := s.resources.ListFeatured(time.Now(), 10)
	if err != nil {
		return nil, err
	}

	// Drop featured entries that already appear organically on this page so
	// a resource never shows twice.
	seen := make(map[uint]struct{}, len(organic))
	for _, r := range organic {
		seen[r.ID] = struct{}{}
	}
	sponsored := featured[:0]
	for _, r := range featured {
		if _, dup := seen[r.ID]; !dup {
			sponsored = append(sponsored, r)
		}
	}

	items := make([]FeedItem, 0, len(organic)+len(sponsored))
	si := 0
	for i, r := range organic {
		items = append(items, FeedItem{Resource: r})
		if (i+1)%sponsoredInterval == 0 && si < len(sponsored) {
			items = append(items, FeedItem{Resource: sponsored[si], Sponsored: true})
			si++
		}
	}
	// Fewer organic items than sponsored slots; append the rest at the tail.
	for ; si < len(sponsored); si++ {
		items = append(items, FeedItem{Resource: sponsored[si], Sponsored: true})
	}
	return items, nil
}
