package tags

type ListTagsQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"100" validate:"min=1,max=500"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type CreateTagPayload struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Color string `json:"color,omitempty" default:"#6366f1" validate:"hexcolor"`
}

type UpdateTagPayload struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

type SetMangaTagsPayload struct {
	Tags []string `json:"tags" validate:"required,max=50,dive,min=1,max=100"`
}
