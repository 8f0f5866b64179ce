package event

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Field length limits, counted in characters.
const (
	MaxTitleLength    = 200
	MaxCityLength     = 120
	MaxVenueLength    = 200
	MaxCategoryLength = 80
	MaxURLLength      = 400
)

// Details holds every client-editable field of an event.
type Details struct {
	Title       string
	Description string
	City        string
	Venue       string
	Category    string
	StartAt     time.Time
	EndAt       *time.Time
	Organizer   string
	Price       *decimal.Decimal
	URL         string
}

// Event is the stored event record.
type Event struct {
	ID string
	Details
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEvent creates an unsaved event stamped with now.
func NewEvent(d Details, now time.Time) *Event {
	return &Event{
		Details:   d,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Replace overwrites all mutable fields. UpdatedAt always moves forward.
func (e *Event) Replace(d Details, now time.Time) {
	if !now.After(e.UpdatedAt) {
		now = e.UpdatedAt.Add(time.Microsecond)
	}
	e.Details = d
	e.UpdatedAt = now
}

// Normalize trims surrounding whitespace from the text fields and cuts
// timestamps to the microsecond precision storage keeps.
func (d Details) Normalize() Details {
	d.StartAt = d.StartAt.Truncate(time.Microsecond)
	if d.EndAt != nil {
		end := d.EndAt.Truncate(time.Microsecond)
		d.EndAt = &end
	}
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.City = strings.TrimSpace(d.City)
	d.Venue = strings.TrimSpace(d.Venue)
	d.Category = strings.TrimSpace(d.Category)
	d.Organizer = strings.TrimSpace(d.Organizer)
	d.URL = strings.TrimSpace(d.URL)
	return d
}

// Validate checks every field and reports all violations at once.
func (d Details) Validate() error {
	var v ValidationError

	if strings.TrimSpace(d.Title) == "" {
		v.Add("title", "title is required")
	} else if utf8.RuneCountInString(d.Title) > MaxTitleLength {
		v.Add("title", tooLong(MaxTitleLength))
	}
	if strings.TrimSpace(d.Category) == "" {
		v.Add("category", "category is required")
	} else if utf8.RuneCountInString(d.Category) > MaxCategoryLength {
		v.Add("category", tooLong(MaxCategoryLength))
	}
	if utf8.RuneCountInString(d.City) > MaxCityLength {
		v.Add("city", tooLong(MaxCityLength))
	}
	if utf8.RuneCountInString(d.Venue) > MaxVenueLength {
		v.Add("venue", tooLong(MaxVenueLength))
	}
	if utf8.RuneCountInString(d.URL) > MaxURLLength {
		v.Add("url", tooLong(MaxURLLength))
	}
	if d.StartAt.IsZero() {
		v.Add("startAt", "start time is required")
	} else if d.EndAt != nil && d.EndAt.Before(d.StartAt) {
		v.Add("endAt", "end time must not be before start time")
	}
	if d.Price != nil && d.Price.IsNegative() {
		v.Add("price", "price must not be negative")
	}

	if len(v.Violations) > 0 {
		return &v
	}
	return nil
}
