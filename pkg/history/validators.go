package history

type ListHistoryQuery struct {
	Limit   int    `query:"limit" json:"limit,omitempty" default:"20" validate:"min=1,max=100"`
	Offset  int    `query:"offset" json:"offset,omitempty" validate:"min=0"`
	MangaID *int   `query:"manga_id" json:"manga_id,omitempty" validate:"omitempty,min=1"`
	Since   string `query:"since" json:"since,omitempty" validate:"date"`
}

type RecordHistoryPayload struct {
	MangaID    int     `json:"manga_id" validate:"required,min=1"`
	ChapterID  *int    `json:"chapter_id,omitempty" validate:"omitempty,min=1"`
	PageNumber int     `json:"page_number,omitempty" default:"1" validate:"min=1"`
	Progress   float64 `json:"progress,omitempty" validate:"min=0,max=1"`
}

type ContinueReadingQuery struct {
	Limit int `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=50"`
}

type ClearHistoryQuery struct {
	OlderThanDays *int `query:"older_than_days" json:"older_than_days,omitempty" validate:"omitempty,min=1,max=3650"`
}
