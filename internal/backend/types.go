package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// ID is a result identifier. The backend sends numeric ids for most
// entities and string ids for some, so both decode into the same type.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Amount is a price. PHP backends often encode decimals as strings.
type Amount float64

// UnmarshalJSON accepts a JSON number or a numeric string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
		if len(data) == 0 {
			*a = 0
			return nil
		}
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("amount must be numeric: %w", err)
	}
	*a = Amount(f)
	return nil
}

// String renders the amount with thousands separators and two decimals.
func (a Amount) String() string {
	return "$" + humanize.FormatFloat("#,###.##", float64(a))
}

// Member mirrors one row of the member search endpoint.
type Member struct {
	ID         ID     `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	HebrewName string `json:"hebrew_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

func (m Member) ItemID() string { return string(m.ID) }

// ItemLabel joins first and last name, falling back to the email and then
// the id so a row is never blank.
func (m Member) ItemLabel() string {
	if name := joinName(m.FirstName, m.LastName); name != "" {
		return name
	}
	if m.Email != "" {
		return m.Email
	}
	return "#" + string(m.ID)
}

func (m Member) ItemDetail() string {
	return joinNonEmpty(" · ", m.HebrewName, m.Email, m.Phone)
}

// Tier mirrors one row of the membership tier search endpoint.
type Tier struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Price    Amount `json:"price"`
}

func (t Tier) ItemID() string { return string(t.ID) }

func (t Tier) ItemLabel() string {
	if t.Name != "" {
		return t.Name
	}
	return "#" + string(t.ID)
}

func (t Tier) ItemDetail() string {
	price := ""
	if t.Price != 0 {
		price = t.Price.String()
	}
	return joinNonEmpty(" · ", t.Category, price)
}

// Record is one row of the global search. Kind is the name of the group it
// arrived in; the remaining fields cover the label shapes the backend uses.
type Record struct {
	Kind      string `json:"-"`
	ID        ID     `json:"id"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Title     string `json:"title,omitempty"`
	Email     string `json:"email,omitempty"`
}

// ItemID is prefixed with the kind because ids are only unique per entity.
func (r Record) ItemID() string {
	if r.Kind == "" {
		return string(r.ID)
	}
	return r.Kind + ":" + string(r.ID)
}

func (r Record) ItemLabel() string {
	switch {
	case r.Name != "":
		return r.Name
	case joinName(r.FirstName, r.LastName) != "":
		return joinName(r.FirstName, r.LastName)
	case r.Title != "":
		return r.Title
	default:
		return "#" + string(r.ID)
	}
}

func (r Record) ItemDetail() string { return r.Email }

// Group is one named array of the global search response.
type Group struct {
	Name    string
	Records []Record
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
