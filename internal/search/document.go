// Package search provides full-text search and content-based recommendations
// over the book library using Bleve. Recommendations lean on the index's
// term-frequency scoring: a book's genre, tropes, and author become the
// query, and the best-scoring other books come back as suggestions.
package search

import (
	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
)

// BookDocument is the indexed shape of a book. Classification values are
// denormalized into the document so one query can match across title,
// author, and taxonomy at once.
type BookDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Series      string   `json:"series,omitempty"`
	Description string   `json:"description,omitempty"`
	Genre       string   `json:"genre,omitempty"`
	Subgenre    string   `json:"subgenre,omitempty"`
	Tropes      []string `json:"tropes,omitempty"`
	Status      string   `json:"status,omitempty"`
	SpiceLevel  int      `json:"spice_level,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	CreatedAt   int64    `json:"created_at"` // Unix millis
	UpdatedAt   int64    `json:"updated_at"` // Unix millis
}

// DocumentFromBook builds the indexable document for a book.
func DocumentFromBook(book *domain.Book) *BookDocument {
	return &BookDocument{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Series:      book.Series,
		Description: book.Description,
		Genre:       book.Genre,
		Subgenre:    book.Subgenre,
		Tropes:      append([]string(nil), book.Tropes...),
		Status:      string(book.Status),
		SpiceLevel:  book.SpiceLevel,
		Rating:      book.Rating,
		CreatedAt:   book.CreatedAt.UnixMilli(),
		UpdatedAt:   book.UpdatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *BookDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if d.Series != "" {
		m["series"] = d.Series
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Genre != "" {
		m["genre"] = d.Genre
	}
	if d.Subgenre != "" {
		m["subgenre"] = d.Subgenre
	}
	if len(d.Tropes) > 0 {
		m["tropes"] = d.Tropes
	}
	if d.Status != "" {
		m["status"] = d.Status
	}
	if d.SpiceLevel > 0 {
		m["spice_level"] = d.SpiceLevel
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}
	return m
}
