package entities

import "time"

// Book is a single catalogue entry, identified by its ISBN.
// Optional attributes are pointers so that a cleared value is stored as NULL
// and rendered as JSON null.
type Book struct {
	ISBN      string    `gorm:"primaryKey;size:32" json:"isbn"`
	AmazonURL *string   `gorm:"size:2048" json:"amazon_url"`
	Author    *string   `gorm:"index;size:255" json:"author"`
	Language  *string   `gorm:"size:64" json:"language"`
	Pages     *int      `json:"pages"`
	Publisher *string   `gorm:"size:255" json:"publisher"`
	Title     string    `gorm:"index;size:512;not null" json:"title"`
	Year      *int      `json:"year"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// BookChanges is the replacement set for every mutable column of a book.
// A nil optional field clears the column; a nil Title keeps the stored title.
type BookChanges struct {
	AmazonURL *string
	Author    *string
	Language  *string
	Pages     *int
	Publisher *string
	Title     *string
	Year      *int
}

// Columns returns the column assignments for an UPDATE statement.
func (c BookChanges) Columns() map[string]any {
	columns := map[string]any{
		"amazon_url": c.AmazonURL,
		"author":     c.Author,
		"language":   c.Language,
		"pages":      c.Pages,
		"publisher":  c.Publisher,
		"year":       c.Year,
	}
	if c.Title != nil {
		columns["title"] = *c.Title
	}
	return columns
}
