package manga

type ListMangaQuery struct {
	Limit     int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset    int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	LibraryID *int    `query:"library_id" json:"library_id,omitempty" validate:"omitempty,min=1"`
	Search    *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
	Favorites *bool   `query:"favorites" json:"favorites,omitempty"`
}

type ScanPayload struct {
	Path string `json:"path" validate:"required,max=4096"`
	Mode string `json:"mode,omitempty" default:"single" validate:"oneof=single library"`
}

type UpdateMangaPayload struct {
	Title      *string `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	IsFavorite *bool   `json:"is_favorite,omitempty"`
}
