package patrons

// CreatePatronPayload represents the request body for registering a patron.
type CreatePatronPayload struct {
	Name    string `json:"name" mod:"trim" validate:"required,max=200"`
	Email   string `json:"email" mod:"trim" validate:"required,email,max=200"`
	Phone   string `json:"phone" mod:"trim" validate:"required,max=40"`
	Address string `json:"address" mod:"trim" validate:"max=500"`
}

// UpdatePatronPayload represents the request body for updating a patron.
type UpdatePatronPayload struct {
	Name    *string `json:"name" mod:"trim" validate:"omitempty,max=200"`
	Email   *string `json:"email" mod:"trim" validate:"omitempty,email,max=200"`
	Phone   *string `json:"phone" mod:"trim" validate:"omitempty,max=40"`
	Address *string `json:"address" mod:"trim" validate:"omitempty,max=500"`
}

// ListPatronsQuery represents the query parameters for listing patrons.
type ListPatronsQuery struct {
	Search string `query:"search"`
}
