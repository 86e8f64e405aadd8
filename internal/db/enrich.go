package db

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vidyarthi-platform/opportunity-hub/internal/metrics"
	"github.com/vidyarthi-platform/opportunity-hub/internal/models"
)

// enrich backfills category and organizer display fields from their reference
// collections. The distinct ids are collected across the whole batch first so
// N entities cost two concurrent batched lookups, not 2N. Entities are mutated
// in place. A failed lookup degrades to "no reference data": entities keep
// whatever the mapper already set.
func (s *Store) enrich(ctx context.Context, opportunities []*models.Opportunity) {
	if len(opportunities) == 0 {
		return
	}

	categoryIDs := map[string]struct{}{}
	organizerIDs := map[string]struct{}{}
	for _, opp := range opportunities {
		if opp.CategoryID != "" {
			categoryIDs[opp.CategoryID] = struct{}{}
		}
		if opp.OrganizerID != "" {
			organizerIDs[opp.OrganizerID] = struct{}{}
		}
	}
	if len(categoryIDs) == 0 && len(organizerIDs) == 0 {
		return
	}

	var categoryDocs, organizerDocs []Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categoryDocs = s.fetchReferenceDocs(gctx, categoriesCollection, categoryIDs)
		return nil
	})
	g.Go(func() error {
		organizerDocs = s.fetchReferenceDocs(gctx, organizersCollection, organizerIDs)
		return nil
	})
	_ = g.Wait()

	categories := make(map[string]map[string]any, len(categoryDocs))
	for _, doc := range categoryDocs {
		categories[doc.ID] = doc.Data
	}
	organizers := make(map[string]map[string]any, len(organizerDocs))
	for _, doc := range organizerDocs {
		organizers[doc.ID] = doc.Data
	}

	for _, opp := range opportunities {
		if data, ok := categories[opp.CategoryID]; ok && opp.CategoryID != "" {
			if name := asNonEmptyString(data["name"]); name != "" {
				opp.Category = name
				opp.CategoryName = name
			} else if opp.Category == "" && opp.CategoryName == "" {
				opp.Category = "Unknown Category"
				opp.CategoryName = "Unknown Category"
			}
		}

		if data, ok := organizers[opp.OrganizerID]; ok && opp.OrganizerID != "" {
			if name := asNonEmptyString(data["name"]); name != "" {
				opp.Organizer = name
				opp.OrganizerName = name
			} else if opp.Organizer == "" && opp.OrganizerName == "" {
				opp.Organizer = "Unknown Organizer"
				opp.OrganizerName = "Unknown Organizer"
			}

			logo := asNonEmptyString(data["logo"])
			if logo == "" {
				logo = asNonEmptyString(data["logoUrl"])
			}
			if logo == "" {
				logo = asNonEmptyString(data["logoURL"])
			}
			if opp.OrganizerLogo == "" && logo != "" {
				opp.OrganizerLogo = logo
			}
		}
	}
}

func (s *Store) fetchReferenceDocs(ctx context.Context, collection string, ids map[string]struct{}) []Document {
	if len(ids) == 0 {
		return nil
	}

	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}

	docs, err := s.src.GetAll(ctx, collection, list)
	if err != nil {
		s.log.Error("reference lookup failed", zap.String("collection", collection), zap.Error(err))
		metrics.QueryFailure("enrich-" + collection)
		return nil
	}
	return docs
}
