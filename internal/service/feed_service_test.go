package service

import (
	"fmt"
	"testing"
	"time"

	"antigravity/internal/domain"
	"antigravity/internal/models"
	"antigravity/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFeed(t *testing.T, e *testEnv, organic, featured int) {
	t.Helper()
	for i := 0; i < organic; i++ {
		r := &models.Resource{
			Type:        domain.ResourceTypePrompt,
			Title:       fmt.Sprintf("Organic %d", i),
			Slug:        fmt.Sprintf("organic-%d", i),
			Description: "x",
			Status:      domain.ResourceStatusApproved,
		}
		require.NoError(t, e.resources.Create(r))
	}
	until := time.Now().Add(24 * time.Hour)
	for i := 0; i < featured; i++ {
		r := &models.Resource{
			Type:          domain.ResourceTypeRule,
			Title:         fmt.Sprintf("Featured %d", i),
			Slug:          fmt.Sprintf("featured-%d", i),
			Description:   "x",
			Status:        domain.ResourceStatusApproved,
			FeaturedUntil: &until,
		}
		require.NoError(t, e.resources.Create(r))
	}
}

func TestFeedInterleavesSponsoredSlots(t *testing.T) {
	e := newTestEnv(t)
	feed := NewFeedService(e.resources)
	seedFeed(t, e, 8, 2)

	items, err := feed.Build(repository.ResourceFilter{Type: domain.ResourceTypePrompt, Limit: 20})
	require.NoError(t, err)

	var sponsoredIdx []int
	for i, it := range items {
		if it.Sponsored {
			sponsoredIdx = append(sponsoredIdx, i)
		}
	}
	// One sponsored slot after every 4 organic items.
	assert.Equal(t, []int{4, 9}, sponsoredIdx)
	assert.Len(t, items, 10)
}

func TestFeedDeduplicatesFeatured(t *testing.T) {
	e := newTestEnv(t)
	feed := NewFeedService(e.resources)
	seedFeed(t, e, 0, 3)

	// No type filter: featured rules also appear organically.
	items, err := feed.Build(repository.ResourceFilter{Limit: 20})
	require.NoError(t, err)

	seen := map[uint]int{}
	for _, it := range items {
		seen[it.Resource.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "resource %d appears more than once", id)
	}
}

func TestFeedExpiredFeaturedNotSponsored(t *testing.T) {
	e := newTestEnv(t)
	feed := NewFeedService(e.resources)
	past := time.Now().Add(-time.Hour)
	r := &models.Resource{
		Type:          domain.ResourceTypePrompt,
		Title:         "Lapsed",
		Slug:          "lapsed",
		Description:   "x",
		Status:        domain.ResourceStatusApproved,
		FeaturedUntil: &past,
	}
	require.NoError(t, e.resources.Create(r))

	items, err := feed.Build(repository.ResourceFilter{Limit: 20})
	require.NoError(t, err)
	for _, it := range items {
		assert.False(t, it.Sponsored)
	}
}
