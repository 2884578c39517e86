package post

import "github.com/mznsh11/Blex/internal/model"

type CreatePostRequest struct {
	Caption string      `json:"caption"`
	Media   model.Media `json:"media"`
}

type CreateListingRequest struct {
	Name        string      `json:"name"`
	Price       float64     `json:"price"`
	Description string      `json:"description"`
	Media       model.Media `json:"media"`
}

type CreateJobRequest struct {
	Title        string      `json:"title"`
	Company      string      `json:"company"`
	Requirements string      `json:"requirements"`
	Media        model.Media `json:"media"`
}
