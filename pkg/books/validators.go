package books

// CreateBookPayload represents the request body for adding a book.
type CreateBookPayload struct {
	Title        string `json:"title" mod:"trim" validate:"required,max=300"`
	Author       string `json:"author" mod:"trim" validate:"required,max=200"`
	Type         string `json:"type" validate:"required,oneof=comics story novel high-content"`
	Language     string `json:"language" mod:"trim" validate:"required,max=100"`
	Copies       int    `json:"copies" default:"1" validate:"gte=1"`
	Availability int    `json:"availability" default:"1"`
}

// UpdateBookPayload represents the request body for updating a book.
type UpdateBookPayload struct {
	Title        *string `json:"title" mod:"trim" validate:"omitempty,max=300"`
	Author       *string `json:"author" mod:"trim" validate:"omitempty,max=200"`
	Type         *string `json:"type" validate:"omitempty,oneof=comics story novel high-content"`
	Language     *string `json:"language" mod:"trim" validate:"omitempty,max=100"`
	Copies       *int    `json:"copies" validate:"omitempty,gte=1"`
	Availability *int    `json:"availability"`
}

// ListBooksQuery represents the query parameters for listing books.
type ListBooksQuery struct {
	Search string `query:"search"`
}
