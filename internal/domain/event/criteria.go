package event

import (
	"strings"
	"time"
)

// Criteria is the set of optional search filters. Blank strings and nil times
// leave that dimension unconstrained.
type Criteria struct {
	Query    string
	From     *time.Time
	To       *time.Time
	City     string
	Category string
}

// Predicate is one boolean condition over an event.
type Predicate interface {
	Matches(e *Event) bool
}

// TextContains matches when the title or the description contains Text,
// ignoring case.
type TextContains struct {
	Text string
}

func (p TextContains) Matches(e *Event) bool {
	needle := strings.ToLower(p.Text)
	return strings.Contains(strings.ToLower(e.Title), needle) ||
		strings.Contains(strings.ToLower(e.Description), needle)
}

// StartsAtOrAfter matches events starting at or after Time.
type StartsAtOrAfter struct {
	Time time.Time
}

func (p StartsAtOrAfter) Matches(e *Event) bool {
	return !e.StartAt.Before(p.Time)
}

// StartsAtOrBefore matches events starting at or before Time.
type StartsAtOrBefore struct {
	Time time.Time
}

func (p StartsAtOrBefore) Matches(e *Event) bool {
	return !e.StartAt.After(p.Time)
}

// CityEquals is a case-insensitive exact match on the city.
type CityEquals struct {
	City string
}

func (p CityEquals) Matches(e *Event) bool {
	return strings.EqualFold(e.City, p.City)
}

// CategoryEquals is a case-insensitive exact match on the category.
type CategoryEquals struct {
	Category string
}

func (p CategoryEquals) Matches(e *Event) bool {
	return strings.EqualFold(e.Category, p.Category)
}

// All is the conjunction of its predicates. An empty All matches every event.
type All []Predicate

func (a All) Matches(e *Event) bool {
	for _, p := range a {
		if !p.Matches(e) {
			return false
		}
	}
	return true
}

// Predicates returns one predicate per filter that is present.
func (c Criteria) Predicates() All {
	preds := All{}
	if q := strings.TrimSpace(c.Query); q != "" {
		preds = append(preds, TextContains{Text: q})
	}
	if c.From != nil {
		preds = append(preds, StartsAtOrAfter{Time: *c.From})
	}
	if c.To != nil {
		preds = append(preds, StartsAtOrBefore{Time: *c.To})
	}
	if city := strings.TrimSpace(c.City); city != "" {
		preds = append(preds, CityEquals{City: city})
	}
	if category := strings.TrimSpace(c.Category); category != "" {
		preds = append(preds, CategoryEquals{Category: category})
	}
	return preds
}
