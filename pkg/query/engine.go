// Package query assembles paginated, enriched message pages: one compound
// index scan for the raw rows, then per-row joins of author identity,
// reaction groups, thread rollups and image URLs.
package query

import (
	"context"
	"errors"
	"sync"

	"chatstore/pkg/blob"
	"chatstore/pkg/identity"
	"chatstore/pkg/models"
	"chatstore/pkg/reactions"
	"chatstore/pkg/store"
	"chatstore/pkg/threads"
)

var (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// workers bounds the enrichment fan-out per page request.
var workers = 8

// SetWorkers configures the per-page enrichment concurrency. Values below
// one fall back to serial enrichment.
func SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	workers = n
}

// SetPageSizes overrides the default and maximum page sizes. Non-positive
// values leave the current setting untouched.
func SetPageSizes(def, max int) {
	if def > 0 {
		DefaultPageSize = def
	}
	if max > 0 {
		MaxPageSize = max
	}
	if DefaultPageSize > MaxPageSize {
		DefaultPageSize = MaxPageSize
	}
}

// GetPage returns one page of enriched messages for the context, newest
// first. Rows whose author cannot be resolved are dropped, not failed; the
// continuation cursor still covers everything the store scan consumed, so
// a dropped row shortens the page rather than double-fetching.
func GetPage(ctx context.Context, pc PageContext, cursor string, limit int) (models.Page, error) {
	if err := pc.Validate(); err != nil {
		return models.Page{}, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	key, err := pc.indexKey()
	if err != nil {
		return models.Page{}, err
	}
	rows, next, done, err := store.MessagePage(key, cursor, limit)
	if err != nil {
		return models.Page{}, err
	}

	enriched, err := enrichAll(ctx, rows)
	if err != nil {
		return models.Page{}, err
	}

	page := models.Page{Messages: make([]models.EnrichedMessage, 0, len(enriched)), NextCursor: next, IsDone: done}
	for _, em := range enriched {
		if em == nil {
			rowsDropped.Inc()
			continue
		}
		page.Messages = append(page.Messages, *em)
	}
	return page, nil
}

// enrichAll fans the per-row joins out over a bounded worker set. Rows are
// independent of each other; only the work within a row is ordered. Slots
// stay positional so the store ordering survives the join.
func enrichAll(ctx context.Context, rows []models.Message) ([]*models.EnrichedMessage, error) {
	out := make([]*models.EnrichedMessage, len(rows))
	errs := make([]error, len(rows))
	ids := identity.NewCache()

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := range rows {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			if ctx.Err() != nil {
				// deadline hit mid-page: drop the row rather than fail the page
				return
			}
			out[i], errs[i] = enrichRow(rows[i], ids, true)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EnrichOne joins a single message with its author, reactions and image
// URL, without the thread rollup (single-message reads do not preview
// threads). Returns (nil, nil) when the author is unresolvable.
func EnrichOne(m models.Message) (*models.EnrichedMessage, error) {
	return enrichRow(m, identity.NewCache(), false)
}

func enrichRow(m models.Message, ids *identity.Cache, withThread bool) (*models.EnrichedMessage, error) {
	member, err := ids.Member(m.MemberID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user, err := ids.User(member.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	groups, err := reactions.Collect(m.ID)
	if err != nil {
		return nil, err
	}

	em := &models.EnrichedMessage{
		Message:   m,
		Member:    member,
		User:      user,
		Reactions: groups,
		ImageURL:  blob.ResolveDisplayURL(m.Image),
	}
	if withThread {
		sum, err := threads.Summarize(m.ID, ids)
		if err != nil {
			return nil, err
		}
		em.Thread = &sum
	}
	return em, nil
}
