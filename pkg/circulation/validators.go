package circulation

// LoanPayload identifies a (patron, book) pair for borrow and return
// requests.
type LoanPayload struct {
	UserID int `json:"user_id" validate:"required,gte=1"`
	BookID int `json:"book_id" validate:"required,gte=1"`
}

// BorrowedBooksQuery selects whose open loans to list.
type BorrowedBooksQuery struct {
	UserID int `query:"user_id" validate:"required,gte=1"`
}
