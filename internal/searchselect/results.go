package searchselect

// Item is a selectable result. IDs must be unique within one result set.
type Item interface {
	ItemID() string
	ItemLabel() string
}

// Detailer is implemented by items that carry secondary display fields such
// as a subtitle, price or category.
type Detailer interface {
	ItemDetail() string
}

// Group is a named run of results within a grouped result set.
type Group[T Item] struct {
	Name  string
	Items []T
}

// Results is either a flat list or an ordered list of named groups, kept in
// server order. Highlight math always works over Rows.
type Results[T Item] struct {
	groups  []Group[T]
	grouped bool
	rows    []T
}

// Flat wraps a single-entity response.
func Flat[T Item](items []T) Results[T] {
	rows := append([]T(nil), items...)
	return Results[T]{
		groups: []Group[T]{{Items: rows}},
		rows:   rows,
	}
}

// Grouped wraps a multi-entity response. Empty groups are dropped.
func Grouped[T Item](groups ...Group[T]) Results[T] {
	r := Results[T]{grouped: true}
	for _, g := range groups {
		if len(g.Items) == 0 {
			continue
		}
		items := append([]T(nil), g.Items...)
		r.groups = append(r.groups, Group[T]{Name: g.Name, Items: items})
		r.rows = append(r.rows, items...)
	}
	return r
}

// Len returns the number of selectable rows.
func (r Results[T]) Len() int { return len(r.rows) }

// Rows returns the flattened rows in display order.
func (r Results[T]) Rows() []T { return r.rows }

// Groups returns the non-empty groups. A flat result has one unnamed group.
func (r Results[T]) Groups() []Group[T] { return r.groups }

// IsGrouped reports whether the result came from a keyed-group response.
func (r Results[T]) IsGrouped() bool { return r.grouped }
