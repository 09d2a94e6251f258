package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"

	"github.com/parkerfly38/shulpick/internal/backend"
	"github.com/parkerfly38/shulpick/internal/ui"
)

// Lookup runs one search without the TUI and prints the rows as a table.
func Lookup(ctx context.Context, opts Options, kind ui.FieldKind, query string, w io.Writer) error {
	e, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = e.closeLog() }()
	return lookup(ctx, e.client, kind, query, e.cfg.Search.MinQueryLen, w)
}

func lookup(ctx context.Context, s backend.Searcher, kind ui.FieldKind, query string, minLen int, w io.Writer) error {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minLen {
		return fmt.Errorf("query must be at least %d characters", minLen)
	}

	var (
		header []string
		data   [][]string
	)
	switch kind {
	case ui.FieldMember:
		members, err := s.SearchMembers(ctx, query, 0)
		if err != nil {
			return fmt.Errorf("search members: %w", err)
		}
		header = []string{"ID", "NAME", "HEBREW NAME", "EMAIL", "PHONE"}
		for _, m := range members {
			data = append(data, []string{m.ItemID(), m.ItemLabel(), dash(m.HebrewName), dash(m.Email), dash(m.Phone)})
		}
	case ui.FieldTier:
		tiers, err := s.SearchTiers(ctx, query, 0)
		if err != nil {
			return fmt.Errorf("search tiers: %w", err)
		}
		header = []string{"ID", "NAME", "CATEGORY", "PRICE"}
		for _, t := range tiers {
			data = append(data, []string{t.ItemID(), t.ItemLabel(), dash(t.Category), t.Price.String()})
		}
	case ui.FieldSearch:
		groups, err := s.SearchAll(ctx, query, 0)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		header = []string{"GROUP", "ID", "LABEL", "EMAIL"}
		for _, g := range groups {
			for _, r := range g.Records {
				data = append(data, []string{g.Name, string(r.ID), r.ItemLabel(), dash(r.Email)})
			}
		}
	default:
		return fmt.Errorf("unknown field %q", kind)
	}

	if len(data) == 0 {
		_, err := fmt.Fprintf(w, "no results for %q\n", query)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
	return nil
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
