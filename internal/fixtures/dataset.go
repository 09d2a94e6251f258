package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed data/congregation.json
var embeddedDataset []byte

// Person is a member or student row.
type Person struct {
	ID         int    `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	HebrewName string `json:"hebrew_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

func (p Person) haystack() string {
	return strings.Join([]string{p.FirstName + " " + p.LastName, p.HebrewName, p.Email}, "\n")
}

type Household struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (h Household) haystack() string { return h.Name }

type Event struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date,omitempty"`
}

func (e Event) haystack() string { return e.Title }

type Tier struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
}

func (t Tier) haystack() string { return t.Name + "\n" + t.Category }

// Dataset is everything the fixture server can answer with. Slice order is
// the order results are returned in.
type Dataset struct {
	Members    []Person    `json:"members"`
	Students   []Person    `json:"students"`
	Households []Household `json:"households"`
	Events     []Event     `json:"events"`
	Tiers      []Tier      `json:"tiers"`
}

// LoadDataset reads a dataset from path, or the embedded sample when path is
// empty.
func LoadDataset(path string) (Dataset, error) {
	raw := embeddedDataset
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return Dataset{}, fmt.Errorf("read dataset: %w", err)
		}
		raw = b
	}
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return Dataset{}, fmt.Errorf("parse dataset: %w", err)
	}
	return ds, nil
}

type searchable interface {
	haystack() string
}

// match returns the rows whose searchable text contains q, case-insensitively,
// keeping dataset order and stopping at limit.
func match[T searchable](rows []T, q string, limit int) []T {
	needle := strings.ToLower(q)
	out := make([]T, 0, min(limit, len(rows)))
	for _, row := range rows {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(row.haystack()), needle) {
			out = append(out, row)
		}
	}
	return out
}
