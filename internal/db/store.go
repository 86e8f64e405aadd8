package db

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vidyarthi-platform/opportunity-hub/internal/metrics"
	"github.com/vidyarthi-platform/opportunity-hub/internal/models"
)

const (
	opportunitiesCollection = "opportunities"
	categoriesCollection    = "opportunityCategories"
	organizersCollection    = "organizers"
)

const defaultListLimit = 24

// activeStatuses are the only status values visible to public listings, in
// query order.
var activeStatuses = []string{"approved", "published"}

type Store struct {
	src Source
	log *zap.Logger
}

func NewStore(src Source, log *zap.Logger) *Store {
	return &Store{src: src, log: log}
}

// ListOptions filters a listing request. Zero values mean "no filter"; Limit
// defaults to 24. Segment takes priority over Category when both are set.
type ListOptions struct {
	Segment  string
	Category string
	Search   string
	Limit    int
}

// ListResult is a page of opportunities plus a grouping of the page by every
// segment tag its entities carry.
type ListResult struct {
	Opportunities []*models.Opportunity            `json:"opportunities"`
	Segments      map[string][]*models.Opportunity `json:"segments"`
}

func normalizeListOptions(opts ListOptions) ListOptions {
	normalized := ListOptions{
		Segment:  strings.TrimSpace(opts.Segment),
		Category: strings.TrimSpace(opts.Category),
		Search:   strings.TrimSpace(opts.Search),
		Limit:    opts.Limit,
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultListLimit
	}
	return normalized
}

func isActiveStatus(status any) bool {
	s, ok := status.(string)
	if !ok {
		return false
	}
	switch strings.ToLower(s) {
	case "approved", "published":
		return true
	}
	return false
}

// docSet accumulates raw documents across queries, rejecting inactive records
// and duplicates. First-seen wins, insertion order is preserved. This is the
// single authoritative activeness gate for every strategy.
type docSet struct {
	seen map[string]struct{}
	docs []Document
}

func newDocSet() *docSet {
	return &docSet{seen: map[string]struct{}{}}
}

func (ds *docSet) append(docs []Document, predicate func(map[string]any) bool) {
	for _, doc := range docs {
		if !isActiveStatus(doc.Data["status"]) {
			continue
		}
		if predicate != nil && !predicate(doc.Data) {
			continue
		}
		if _, ok := ds.seen[doc.ID]; ok {
			continue
		}
		ds.seen[doc.ID] = struct{}{}
		ds.docs = append(ds.docs, doc)
	}
}

func (ds *docSet) size() int { return len(ds.docs) }

// find runs one store query, degrading failure to zero documents. A failed
// sub-query is logged and counted but never aborts the whole request.
func (s *Store) find(ctx context.Context, query string, filter Filter, limit int) []Document {
	docs, err := s.src.Find(ctx, opportunitiesCollection, filter, limit)
	if err != nil {
		s.log.Error("opportunity query failed",
			zap.String("query", query),
			zap.String("field", filter.Field),
			zap.Any("value", filter.Value),
			zap.Error(err))
		metrics.QueryFailure(query)
		return nil
	}
	return docs
}

// ListOpportunities returns a de-duplicated, active-only page of opportunities
// using one of three retrieval strategies: segment tag, category cascade, or a
// plain status scan.
func (s *Store) ListOpportunities(ctx context.Context, opts ListOptions) (*ListResult, error) {
	opts = normalizeListOptions(opts)
	limit := opts.Limit

	// Over-fetch to leave room for the in-memory status filter and dedupe.
	// Status cannot be combined with segment/category constraints in one store
	// query without composite indexes.
	maxFetch := limit * 4
	if maxFetch < 40 {
		maxFetch = 40
	}

	set := newDocSet()

	switch {
	case opts.Segment != "":
		set.append(s.find(ctx, "segment", Filter{Field: "segments", Value: opts.Segment}, maxFetch), nil)

	case opts.Category != "":
		s.fetchByCategory(ctx, set, opts.Category, limit, maxFetch)

	default:
		for _, status := range activeStatuses {
			if set.size() >= limit {
				break
			}
			set.append(s.find(ctx, "status", Filter{Field: "status", Value: status}, limit), nil)
		}
	}

	docs := set.docs
	if len(docs) > limit {
		docs = docs[:limit]
	}

	opportunities := make([]*models.Opportunity, 0, len(docs))
	for _, doc := range docs {
		opportunities = append(opportunities, mapOpportunity(doc))
	}

	s.enrich(ctx, opportunities)

	if opts.Search != "" {
		opportunities = filterBySearch(opportunities, opts.Search)
	}

	// Re-check the tag: the segment query should guarantee it, but the merge
	// step could admit cross-strategy documents in the future.
	if opts.Segment != "" {
		filtered := make([]*models.Opportunity, 0, len(opportunities))
		for _, opp := range opportunities {
			if containsString(opp.Segments, opts.Segment) {
				filtered = append(filtered, opp)
			}
		}
		opportunities = filtered
	}

	segments := map[string][]*models.Opportunity{}
	for _, opp := range opportunities {
		for _, tag := range opp.Segments {
			segments[tag] = append(segments[tag], opp)
		}
	}

	return &ListResult{Opportunities: opportunities, Segments: segments}, nil
}

// fetchByCategory runs the category cascade: direct equality queries against
// every plausible spelling of the category, then a status-scan fallback with
// an in-memory predicate. Historical category data is free text from several
// admin forms, so exact-match querying alone misses records.
func (s *Store) fetchByCategory(ctx context.Context, set *docSet, category string, limit, maxFetch int) {
	raw := strings.TrimSpace(category)
	targets := categoryTargets(raw)
	predicate := func(data map[string]any) bool {
		return matchesCategoryData(data, targets)
	}

	type candidate struct {
		field string
		value string
	}
	var candidates []candidate
	for _, value := range []string{raw, titleCase(raw), strings.ReplaceAll(raw, "-", " ")} {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		candidates = append(candidates,
			candidate{field: "category", value: trimmed},
			candidate{field: "categoryName", value: trimmed},
		)
	}
	candidates = append(candidates, candidate{field: "categoryId", value: raw})

	for _, c := range candidates {
		set.append(s.find(ctx, "category", Filter{Field: c.field, Value: c.value}, maxFetch), predicate)
		if set.size() >= limit*2 {
			return
		}
	}

	if set.size() >= limit {
		return
	}
	for _, status := range activeStatuses {
		if set.size() >= limit*2 {
			break
		}
		set.append(s.find(ctx, "category-fallback", Filter{Field: "status", Value: status}, maxFetch), predicate)
	}
}

// filterBySearch keeps entities whose title, organizer, category or search
// keywords contain the needle, case-insensitively.
func filterBySearch(opportunities []*models.Opportunity, search string) []*models.Opportunity {
	needle := strings.ToLower(search)
	filtered := make([]*models.Opportunity, 0, len(opportunities))
	for _, opp := range opportunities {
		pool := make([]string, 0, 3+len(opp.SearchKeywords))
		pool = append(pool, opp.Title, opp.Organizer, opp.Category)
		pool = append(pool, opp.SearchKeywords...)
		if strings.Contains(strings.ToLower(strings.Join(pool, " ")), needle) {
			filtered = append(filtered, opp)
		}
	}
	return filtered
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

// GetOpportunityByIDOrSlug looks an opportunity up by document id, falling
// back to a slug-equality query. Returns (nil, nil) when neither matches.
func (s *Store) GetOpportunityByIDOrSlug(ctx context.Context, idOrSlug string) (*models.Opportunity, error) {
	doc, err := s.src.Get(ctx, opportunitiesCollection, idOrSlug)
	if err != nil {
		return nil, err
	}

	if doc == nil {
		docs, err := s.src.Find(ctx, opportunitiesCollection, Filter{Field: "slug", Value: idOrSlug}, 1)
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, nil
		}
		doc = &docs[0]
	}

	opportunity := mapOpportunity(*doc)
	s.enrich(ctx, []*models.Opportunity{opportunity})
	return opportunity, nil
}

// GetOpportunitiesByIDs batch-loads opportunities, de-duplicating the input
// and silently dropping ids that resolve to nothing. Result order follows the
// de-duplicated input order.
func (s *Store) GetOpportunitiesByIDs(ctx context.Context, ids []string) ([]*models.Opportunity, error) {
	seen := map[string]struct{}{}
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return []*models.Opportunity{}, nil
	}

	docs, err := s.src.GetAll(ctx, opportunitiesCollection, unique)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}

	opportunities := make([]*models.Opportunity, 0, len(docs))
	for _, id := range unique {
		if doc, ok := byID[id]; ok {
			opportunities = append(opportunities, mapOpportunity(doc))
		}
	}

	s.enrich(ctx, opportunities)
	return opportunities, nil
}

// IncrementViews bumps the view counter on a single document.
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	return s.src.IncrementField(ctx, opportunitiesCollection, id, "views", 1)
}

// GetCategories lists the category reference collection for nav and filters.
func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	docs, err := s.src.Find(ctx, categoriesCollection, Filter{}, 0)
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(docs))
	for _, doc := range docs {
		name := asNonEmptyString(doc.Data["name"])
		if name == "" {
			continue
		}
		slug := asNonEmptyString(doc.Data["slug"])
		if slug == "" {
			slug = slugify(name)
		}
		categories = append(categories, models.Category{ID: doc.ID, Name: name, Slug: slug})
	}
	return categories, nil
}

// GetOrganizers lists the organizer reference collection. The logo field has
// been stored under three spellings over time.
func (s *Store) GetOrganizers(ctx context.Context) ([]models.Organizer, error) {
	docs, err := s.src.Find(ctx, organizersCollection, Filter{}, 0)
	if err != nil {
		return nil, err
	}

	organizers := make([]models.Organizer, 0, len(docs))
	for _, doc := range docs {
		name := asNonEmptyString(doc.Data["name"])
		if name == "" {
			continue
		}
		logo := asNonEmptyString(doc.Data["logo"])
		if logo == "" {
			logo = asNonEmptyString(doc.Data["logoUrl"])
		}
		if logo == "" {
			logo = asNonEmptyString(doc.Data["logoURL"])
		}
		organizers = append(organizers, models.Organizer{ID: doc.ID, Name: name, Logo: logo})
	}
	return organizers, nil
}
