package ui

import (
	"context"

	"github.com/parkerfly38/shulpick/internal/backend"
	"github.com/parkerfly38/shulpick/internal/searchselect"
)

// MemberSource searches members and answers a flat list.
func MemberSource(s backend.Searcher, limit int) searchselect.Source[backend.Member] {
	return searchselect.SourceFunc[backend.Member](func(ctx context.Context, q string) (searchselect.Results[backend.Member], error) {
		members, err := s.SearchMembers(ctx, q, limit)
		if err != nil {
			return searchselect.Results[backend.Member]{}, err
		}
		return searchselect.Flat(members), nil
	})
}

// TierSource searches membership tiers and answers a flat list.
func TierSource(s backend.Searcher, limit int) searchselect.Source[backend.Tier] {
	return searchselect.SourceFunc[backend.Tier](func(ctx context.Context, q string) (searchselect.Results[backend.Tier], error) {
		tiers, err := s.SearchTiers(ctx, q, limit)
		if err != nil {
			return searchselect.Results[backend.Tier]{}, err
		}
		return searchselect.Flat(tiers), nil
	})
}

// GlobalSource searches every entity kind. Groups keep the order the backend
// sent them in and are headed by their title-cased key.
func GlobalSource(s backend.Searcher, limit int) searchselect.Source[backend.Record] {
	return searchselect.SourceFunc[backend.Record](func(ctx context.Context, q string) (searchselect.Results[backend.Record], error) {
		groups, err := s.SearchAll(ctx, q, limit)
		if err != nil {
			return searchselect.Results[backend.Record]{}, err
		}
		out := make([]searchselect.Group[backend.Record], 0, len(groups))
		for _, g := range groups {
			out = append(out, searchselect.Group[backend.Record]{
				Name:  titleCase(g.Name),
				Items: g.Records,
			})
		}
		return searchselect.Grouped(out...), nil
	})
}
