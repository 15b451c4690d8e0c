package availability

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
)

// Prober checks one source for one book.
type Prober interface {
	Name() string
	Probe(ctx context.Context, book *domain.Book) (domain.SourceAvailability, error)
}

// Source is a marker-scanning scrape source. It fetches a search page for
// the book and decides availability by looking for known phrases in the
// page text. Negative markers win over positive ones, since storefronts
// tend to show "not available" banners alongside generic availability copy.
type Source struct {
	client *Client

	name      string
	searchURL string // format string receiving one url-escaped query
	positive  []string
	negative  []string
}

// NewSource builds a marker-scanning source.
func NewSource(client *Client, name, searchURL string, positive, negative []string) *Source {
	return &Source{
		client:    client,
		name:      name,
		searchURL: searchURL,
		positive:  positive,
		negative:  negative,
	}
}

// Name returns the source identifier stored on availability snapshots.
func (s *Source) Name() string { return s.name }

// SearchURL returns the lookup URL for a book.
func (s *Source) SearchURL(book *domain.Book) string {
	query := strings.TrimSpace(book.Title + " " + book.Author)
	return fmt.Sprintf(s.searchURL, url.QueryEscape(query))
}

// Probe fetches the source's search page and scans it for markers.
func (s *Source) Probe(ctx context.Context, book *domain.Book) (domain.SourceAvailability, error) {
	body, err := s.client.Fetch(ctx, s.name, s.SearchURL(book))
	if err != nil {
		return domain.SourceAvailability{}, fmt.Errorf("probe %s: %w", s.name, err)
	}

	text := strings.ToLower(pageText(body))
	result := domain.SourceAvailability{
		Source:    s.name,
		CheckedAt: time.Now().UTC(),
	}

	for _, marker := range s.negative {
		if strings.Contains(text, strings.ToLower(marker)) {
			result.Detail = fmt.Sprintf("found %q", marker)
			return result, nil
		}
	}
	for _, marker := range s.positive {
		if strings.Contains(text, strings.ToLower(marker)) {
			result.Available = true
			result.Detail = fmt.Sprintf("found %q", marker)
			return result, nil
		}
	}

	result.Detail = "no availability markers found"
	return result, nil
}

// DefaultSources returns the built-in scrape sources.
func DefaultSources(client *Client) []Prober {
	return []Prober{
		NewSource(client,
			"kindle-unlimited",
			"https://www.amazon.com/s?i=digital-text&k=%s",
			[]string{"Read for Free", "Included with Kindle Unlimited"},
			[]string{"No results for"},
		),
		NewSource(client,
			"libby",
			"https://libbyapp.com/search/library/search/query-%s/page-1",
			[]string{"Available", "Borrow"},
			[]string{"No results", "Wait list"},
		),
		NewSource(client,
			"hoopla",
			"https://www.hoopladigital.com/search?q=%s&scope=everything&type=direct",
			[]string{"Borrow", "Instantly available"},
			[]string{"No results found"},
		),
	}
}
