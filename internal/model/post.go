package model

import (
	"errors"
	"fmt"
	"time"
)

// PostKind discriminates the three record shapes sharing the post identity.
type PostKind string

const (
	PostNormal  PostKind = "normal"
	PostProduct PostKind = "product"
	PostJob     PostKind = "job"
)

func ParsePostKind(s string) (PostKind, error) {
	switch PostKind(s) {
	case PostNormal, PostProduct, PostJob:
		return PostKind(s), nil
	default:
		return "", fmt.Errorf("unknown post type %q", s)
	}
}

// Media is owned by exactly one post. An empty kind and URL is valid and
// means the post carries no media.
type Media struct {
	ID   int    `json:"id"`
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

type Product struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type Job struct {
	Title        string `json:"title"`
	Company      string `json:"company"`
	Requirements string `json:"requirements"`
}

// Post is the closed tagged variant covering normal updates, marketplace
// listings and job postings. Exactly one of Product/Job is set for the
// product and job kinds. Author is the author's username; it is empty only
// when a stored row referenced a user that no longer resolves.
type Post struct {
	ID           int           `json:"id"`
	Kind         PostKind      `json:"kind"`
	Caption      string        `json:"caption"`
	Author       string        `json:"author"`
	Media        Media         `json:"media"`
	CreatedAt    time.Time     `json:"created_at"`
	Interactions []Interaction `json:"interactions,omitempty"`
	Product      *Product      `json:"product,omitempty"`
	Job          *Job          `json:"job,omitempty"`
}

var errAuthorRequired = errors.New("author required")

// Constructors take a live author handle, not an identifier: an
// identifier-only author is a resolution failure, never a valid input here.

func NewNormalPost(id int, caption string, media Media, author *User, at time.Time) (*Post, error) {
	if author == nil {
		return nil, errAuthorRequired
	}
	return &Post{
		ID:        id,
		Kind:      PostNormal,
		Caption:   caption,
		Author:    author.Username(),
		Media:     media,
		CreatedAt: at,
	}, nil
}

func NewProductPost(id int, name string, price float64, description string, media Media, author *User, at time.Time) (*Post, error) {
	if author == nil {
		return nil, errAuthorRequired
	}
	return &Post{
		ID:        id,
		Kind:      PostProduct,
		Caption:   "Buy: " + name,
		Author:    author.Username(),
		Media:     media,
		CreatedAt: at,
		Product:   &Product{Name: name, Price: price, Description: description},
	}, nil
}

func NewJobPost(id int, title, company, requirements string, media Media, author *User, at time.Time) (*Post, error) {
	if author == nil {
		return nil, errAuthorRequired
	}
	return &Post{
		ID:        id,
		Kind:      PostJob,
		Caption:   "Job: " + title,
		Author:    author.Username(),
		Media:     media,
		CreatedAt: at,
		Job:       &Job{Title: title, Company: company, Requirements: requirements},
	}, nil
}

// Clone returns a copy detached from the live graph, safe to hand out
// after the state lock is released.
func (p *Post) Clone() *Post {
	copied := *p
	copied.Interactions = append([]Interaction(nil), p.Interactions...)
	if p.Product != nil {
		product := *p.Product
		copied.Product = &product
	}
	if p.Job != nil {
		job := *p.Job
		copied.Job = &job
	}
	return &copied
}

// LikedBy reports whether username already has a like attached.
func (p *Post) LikedBy(username string) bool {
	for _, i := range p.Interactions {
		if i.Kind == InteractionLike && i.Username == username {
			return true
		}
	}
	return false
}
