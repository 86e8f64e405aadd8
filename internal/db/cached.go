package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vidyarthi-platform/opportunity-hub/internal/cache"
	"github.com/vidyarthi-platform/opportunity-hub/internal/metrics"
	"github.com/vidyarthi-platform/opportunity-hub/internal/models"
)

// opportunitiesTag groups every cached read that an admin mutation must
// invalidate.
const opportunitiesTag = "opportunities"

// CachedStore memoizes Store reads for a revalidation window. Keys are built
// from normalized request parameters, so equivalent requests share an entry.
type CachedStore struct {
	store *Store

	list       *cache.Cache[*ListResult]
	single     *cache.Cache[*models.Opportunity]
	categories *cache.Cache[[]models.Category]
	organizers *cache.Cache[[]models.Organizer]
}

func NewCachedStore(store *Store, size int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		store:      store,
		list:       cache.New[*ListResult](size, ttl),
		single:     cache.New[*models.Opportunity](size, ttl),
		categories: cache.New[[]models.Category](size, ttl),
		organizers: cache.New[[]models.Organizer](size, ttl),
	}
}

// listCacheKey serializes normalized options verbatim. Segment and category
// matching is case-sensitive in the store queries, so only the search term,
// which is matched case-insensitively, may be folded.
func listCacheKey(opts ListOptions) string {
	return fmt.Sprintf("list:%s|%d|%s|%s",
		opts.Segment, opts.Limit, strings.ToLower(opts.Search), opts.Category)
}

func (c *CachedStore) GetOpportunities(ctx context.Context, opts ListOptions) (*ListResult, error) {
	opts = normalizeListOptions(opts)
	result, hit, err := c.list.GetOrCompute(ctx, listCacheKey(opts), []string{opportunitiesTag}, func(ctx context.Context) (*ListResult, error) {
		return c.store.ListOpportunities(ctx, opts)
	})
	recordCacheOutcome("list", hit, err)
	return result, err
}

func (c *CachedStore) GetOpportunityByIDOrSlug(ctx context.Context, idOrSlug string) (*models.Opportunity, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, nil
	}
	result, hit, err := c.single.GetOrCompute(ctx, "opp:"+idOrSlug, []string{opportunitiesTag}, func(ctx context.Context) (*models.Opportunity, error) {
		return c.store.GetOpportunityByIDOrSlug(ctx, idOrSlug)
	})
	recordCacheOutcome("single", hit, err)
	return result, err
}

// GetOpportunitiesByIDs is a pass-through: arbitrary id sets make poor cache
// keys and the batch endpoint is called with user-specific saved lists.
func (c *CachedStore) GetOpportunitiesByIDs(ctx context.Context, ids []string) ([]*models.Opportunity, error) {
	return c.store.GetOpportunitiesByIDs(ctx, ids)
}

func (c *CachedStore) GetCategories(ctx context.Context) ([]models.Category, error) {
	result, hit, err := c.categories.GetOrCompute(ctx, "categories", []string{opportunitiesTag}, func(ctx context.Context) ([]models.Category, error) {
		return c.store.GetCategories(ctx)
	})
	recordCacheOutcome("categories", hit, err)
	return result, err
}

func (c *CachedStore) GetOrganizers(ctx context.Context) ([]models.Organizer, error) {
	result, hit, err := c.organizers.GetOrCompute(ctx, "organizers", []string{opportunitiesTag}, func(ctx context.Context) ([]models.Organizer, error) {
		return c.store.GetOrganizers(ctx)
	})
	recordCacheOutcome("organizers", hit, err)
	return result, err
}

func (c *CachedStore) IncrementViews(ctx context.Context, id string) error {
	return c.store.IncrementViews(ctx, id)
}

// GetUpcomingDeadlines returns active opportunities whose registration
// deadline falls within the next `days` days, soonest first. Deadlines marked
// TBD or unparseable are excluded. Derived from the cached default listing.
func (c *CachedStore) GetUpcomingDeadlines(ctx context.Context, days int) ([]*models.Opportunity, error) {
	if days <= 0 {
		days = 30
	}

	result, err := c.GetOpportunities(ctx, ListOptions{Limit: 200})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, days)

	type dated struct {
		opp      *models.Opportunity
		deadline time.Time
	}
	upcoming := []dated{}
	for _, opp := range result.Opportunities {
		if opp.RegistrationDeadlineTBD || opp.RegistrationDeadline == "" {
			continue
		}
		deadline, ok := parseDeadline(opp.RegistrationDeadline)
		if !ok {
			continue
		}
		if deadline.Before(now) || deadline.After(cutoff) {
			continue
		}
		upcoming = append(upcoming, dated{opp: opp, deadline: deadline})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].deadline.Before(upcoming[j].deadline)
	})

	opportunities := make([]*models.Opportunity, 0, len(upcoming))
	for _, entry := range upcoming {
		opportunities = append(opportunities, entry.opp)
	}
	return opportunities, nil
}

// InvalidateOpportunities drops every cached read; the next request
// recomputes. Called after admin mutations performed outside this service.
func (c *CachedStore) InvalidateOpportunities() {
	c.list.Invalidate(opportunitiesTag)
	c.single.Invalidate(opportunitiesTag)
	c.categories.Invalidate(opportunitiesTag)
	c.organizers.Invalidate(opportunitiesTag)
}

func parseDeadline(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func recordCacheOutcome(name string, hit bool, err error) {
	if err != nil {
		return
	}
	if hit {
		metrics.CacheHit(name)
	} else {
		metrics.CacheMiss(name)
	}
}
