package images

type ServeImageQuery struct {
	Path string `query:"path" json:"path" validate:"required,max=4096"`
}
