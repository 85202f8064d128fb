package models

import (
	"fmt"
	"time"
)

// Book is one catalog entry. Ids are assigned by catalog.Library.
type Book struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Year      uint32 `json:"year"`
	Available bool   `json:"available"`
}

func NewBook(title, author string, year uint32) Book {
	return Book{
		Title:     title,
		Author:    author,
		Year:      year,
		Available: true,
	}
}

// Borrow marks the book as loaned out. Callers check availability first.
func (b *Book) Borrow() {
	b.Available = false
}

// Return marks the book as back on the shelf. Callers check availability first.
func (b *Book) Return() {
	b.Available = true
}

func (b Book) Describe() string {
	status := "available"
	if !b.Available {
		status = "borrowed"
	}
	return fmt.Sprintf("%q by %s (%d), id %d, %s", b.Title, b.Author, b.Year, b.ID, status)
}

func (b Book) String() string {
	return b.Describe()
}

// BookRecord is the SQLite row for a Book. Catalog ids start at 0, which gorm
// reads as an unset primary key, so the id lives in its own unique column.
type BookRecord struct {
	RowID     uint   `gorm:"primaryKey"`
	BookID    uint64 `gorm:"not null;uniqueIndex"`
	Title     string `gorm:"not null"`
	Author    string `gorm:"not null"`
	Year      uint32 `gorm:"not null"`
	Available bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (BookRecord) TableName() string {
	return "books"
}

func NewBookRecord(b Book) BookRecord {
	return BookRecord{
		BookID:    b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Year:      b.Year,
		Available: b.Available,
	}
}

func (r BookRecord) Book() Book {
	return Book{
		ID:        r.BookID,
		Title:     r.Title,
		Author:    r.Author,
		Year:      r.Year,
		Available: r.Available,
	}
}
