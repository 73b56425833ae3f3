package ratings

type AddRatingPayload struct {
	Rating  *float64 `json:"rating" validate:"required,min=0,max=10"`
	Comment *string  `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

type UpdateRatingPayload struct {
	Rating  *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=10"`
	Comment *string  `json:"comment,omitempty" validate:"omitempty,max=1000"`
}
