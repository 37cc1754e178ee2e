package data

import (
	"github.com/emzola/librarian/internal/validator"
)

const (
	CoverHard = "hard"
	CoverSoft = "soft"
)

// Book defines a book model. Inventory is the number of copies available to lend.
type Book struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Authors     []int64  `json:"authors"`
	AuthorNames []string `json:"author_names,omitempty"`
	Cover       string   `json:"cover"`
	Inventory   int      `json:"inventory"`
	DailyFee    Fee      `json:"daily_fee"`
	CoverImage  string   `json:"cover_image,omitempty"`
	Version     int32    `json:"-"`
}

func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(book.Title != "", "title", "must be provided")
	v.Check(len(book.Title) <= 255, "title", "must not be more than 255 bytes long")
	v.Check(len(book.Authors) >= 1, "authors", "must contain at least 1 author")
	v.Check(validator.Unique(book.Authors), "authors", "must not contain duplicate values")
	v.Check(validator.In(book.Cover, CoverHard, CoverSoft), "cover", "must be either hard or soft")
	v.Check(book.Inventory >= 0, "inventory", "must not be negative")
	v.Check(!book.DailyFee.IsNegative(), "daily_fee", "must not be negative")
	v.Check(book.DailyFee.LessThan(MaxFee), "daily_fee", "must be less than 100.00")
	v.Check(book.DailyFee.HasCents(), "daily_fee", "must not have more than 2 decimal places")
}
