package dto

import "github.com/emzola/librarian/data"

// AuthorRequestBody defines the request body for creating and updating an author.
// The fields are pointers so partial updates can tell a missing field from an
// empty one.
type AuthorRequestBody struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Pseudonym *string `json:"pseudonym"`
}

// QsListAuthors defines the query strings used for listing authors.
type QsListAuthors struct {
	FirstName string
	Filters   data.Filters
}
