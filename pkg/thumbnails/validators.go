package thumbnails

type GenerateThumbnailQuery struct {
	Path string `query:"path" json:"path" validate:"required,max=4096"`
	Size Size   `query:"size" json:"size,omitempty" default:"medium" validate:"oneof=small medium large"`
}

type BatchThumbnailsPayload struct {
	MangaIDs []int `json:"manga_ids" validate:"required,min=1,max=100,dive,min=1"`
	Size     Size  `json:"size,omitempty" default:"medium" validate:"oneof=small medium large"`
}

type GenerateAllPayload struct {
	Size Size `json:"size,omitempty" default:"medium" validate:"oneof=small medium large"`
}

type CleanCacheQuery struct {
	MaxAgeDays int `query:"max_age_days" json:"max_age_days,omitempty" default:"30" validate:"min=1,max=3650"`
}
