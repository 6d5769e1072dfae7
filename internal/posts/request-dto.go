package posts

type CreatePostRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
	Caption  string `json:"caption" validate:"required,min=1,max=2200"`
}

type UpdatePostRequest struct {
	ImageURL *string `json:"image_url,omitempty" validate:"omitempty,url"`
	Caption  *string `json:"caption,omitempty" validate:"omitempty,min=1,max=2200"`
}
