package data

import (
	"strings"

	"github.com/emzola/librarian/internal/validator"
)

// Author defines an author model.
type Author struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Pseudonym *string `json:"pseudonym"`
	Version   int32   `json:"-"`
}

// FullName joins the first and last name of the author.
func (a *Author) FullName() string {
	return a.FirstName + " " + a.LastName
}

func ValidateAuthor(v *validator.Validator, author *Author) {
	v.Check(strings.TrimSpace(author.FirstName) != "", "first_name", "must be provided")
	v.Check(len(author.FirstName) <= 255, "first_name", "must not be more than 255 bytes long")
	v.Check(strings.TrimSpace(author.LastName) != "", "last_name", "must be provided")
	v.Check(len(author.LastName) <= 255, "last_name", "must not be more than 255 bytes long")
	if author.Pseudonym != nil {
		v.Check(strings.TrimSpace(*author.Pseudonym) != "", "pseudonym", "must not be blank")
		v.Check(len(*author.Pseudonym) <= 255, "pseudonym", "must not be more than 255 bytes long")
	}
}
