package libraries

type ListLibrariesQuery struct {
	Limit  int  `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset int  `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Active bool `query:"active" json:"active,omitempty"`
}

type CreateLibraryPayload struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Path        string  `json:"path" validate:"required,max=4096"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type UpdateLibraryPayload struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
