package domain

import "time"

// ReadingStatus tracks where a book sits in the reading lifecycle.
type ReadingStatus string

// Reading statuses.
const (
	StatusTBR      ReadingStatus = "tbr"
	StatusReading  ReadingStatus = "reading"
	StatusFinished ReadingStatus = "finished"
	StatusDNF      ReadingStatus = "dnf"
)

// Valid reports whether the status is one of the known lifecycle values.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusTBR, StatusReading, StatusFinished, StatusDNF:
		return true
	}
	return false
}

// Book represents one record in the reading-list library.
//
// Classification fields (Genre, Subgenre, Tropes, SpiceLevel) hold canonical
// vocabulary values once a record has passed through fuzzy validation; raw
// free-text values only live in incoming requests, never in the store.
type Book struct {
	Entity
	Title        string        `json:"title"`
	Author       string        `json:"author"`
	Series       string        `json:"series,omitempty"`
	SeriesNumber float64       `json:"series_number,omitempty"`
	Status       ReadingStatus `json:"status"`
	Description  string        `json:"description,omitempty"`
	ISBN         string        `json:"isbn,omitempty"`

	// Classification (canonical vocabulary values).
	Genre      string   `json:"genre,omitempty"`
	Subgenre   string   `json:"subgenre,omitempty"`
	Tropes     []string `json:"tropes,omitempty"`
	SpiceLevel int      `json:"spice_level,omitempty"` // 1-5, 0 = unrated

	// Queue state (TBR ordering).
	QueuePosition int `json:"queue_position,omitempty"` // 1-based, 0 = unqueued

	// Personal tracking.
	Rating       float64    `json:"rating,omitempty"` // 0.5-5 stars
	DateAdded    time.Time  `json:"date_added"`
	DateStarted  *time.Time `json:"date_started,omitempty"`
	DateFinished *time.Time `json:"date_finished,omitempty"`
	Notes        string     `json:"notes,omitempty"`

	// Availability snapshot (populated by the availability checker).
	Availability []SourceAvailability `json:"availability,omitempty"`
}

// SourceAvailability records whether a book is available through one source.
type SourceAvailability struct {
	Source    string    `json:"source"` // e.g. "kindle-unlimited", "hoopla", "library"
	Available bool      `json:"available"`
	Detail    string    `json:"detail,omitempty"` // e.g. "3 week wait"
	CheckedAt time.Time `json:"checked_at"`
}

// IsQueued reports whether the book holds a TBR queue slot.
func (b *Book) IsQueued() bool {
	return b.Status == StatusTBR && b.QueuePosition > 0
}

// AvailabilityFor returns the snapshot for one source, or nil if never checked.
func (b *Book) AvailabilityFor(source string) *SourceAvailability {
	for i := range b.Availability {
		if b.Availability[i].Source == source {
			return &b.Availability[i]
		}
	}
	return nil
}

// SetAvailability updates or appends the snapshot for one source.
func (b *Book) SetAvailability(sa SourceAvailability) {
	for i := range b.Availability {
		if b.Availability[i].Source == sa.Source {
			b.Availability[i] = sa
			return
		}
	}
	b.Availability = append(b.Availability, sa)
}
