package post

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mznsh11/Blex/internal/model"
	"github.com/mznsh11/Blex/internal/state"
	"github.com/mznsh11/Blex/internal/store"
)

// ErrProfessionalOnly gates job postings to professional accounts.
var ErrProfessionalOnly = errors.New("professional account required")

type Service struct {
	state *state.State
	store *store.Orchestrator
}

func NewService(st *state.State, orch *store.Orchestrator) *Service {
	return &Service{state: st, store: orch}
}

func (s *Service) CreatePost(ctx context.Context, actor string, req CreatePostRequest) (*model.Post, error) {
	var created *model.Post
	err := s.state.Update(func(g *state.Graph) error {
		author := g.FindUser(actor)
		if author == nil {
			return model.ErrNotFound
		}
		p, err := model.NewNormalPost(g.NextPostID(), req.Caption, req.Media, author, time.Now())
		if err != nil {
			return err
		}
		g.Posts = append(g.Posts, p)
		created = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// CreateListing adds the product post and registers it in the marketplace in
// the same critical section.
func (s *Service) CreateListing(ctx context.Context, actor string, req CreateListingRequest) (*model.Post, error) {
	var created *model.Post
	err := s.state.Update(func(g *state.Graph) error {
		author := g.FindUser(actor)
		if author == nil {
			return model.ErrNotFound
		}
		p, err := model.NewProductPost(g.NextPostID(), req.Name, req.Price, req.Description, req.Media, author, time.Now())
		if err != nil {
			return err
		}
		g.Posts = append(g.Posts, p)
		g.Marketplace = append(g.Marketplace, p.ID)
		created = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// CreateJobPosting is restricted to professional accounts.
func (s *Service) CreateJobPosting(ctx context.Context, actor string, req CreateJobRequest) (*model.Post, error) {
	var created *model.Post
	err := s.state.Update(func(g *state.Graph) error {
		author := g.FindUser(actor)
		if author == nil {
			return model.ErrNotFound
		}
		if author.Account.Role != model.RoleProfessional {
			return ErrProfessionalOnly
		}
		p, err := model.NewJobPost(g.NextPostID(), req.Title, req.Company, req.Requirements, req.Media, author, time.Now())
		if err != nil {
			return err
		}
		g.Posts = append(g.Posts, p)
		created = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// DeletePost removes the post and, for listings, its marketplace entry.
// Only the author may delete; anyone else sees not found.
func (s *Service) DeletePost(ctx context.Context, actor string, postID int) error {
	err := s.state.Update(func(g *state.Graph) error {
		user := g.FindUser(actor)
		if user == nil {
			return model.ErrNotFound
		}
		target := g.FindPost(postID)
		if target == nil || target.Author != user.Username() {
			return model.ErrNotFound
		}

		kept := g.Posts[:0]
		for _, p := range g.Posts {
			if p.ID != postID {
				kept = append(kept, p)
			}
		}
		g.Posts = kept

		ids := g.Marketplace[:0]
		for _, id := range g.Marketplace {
			if id != postID {
				ids = append(ids, id)
			}
		}
		g.Marketplace = ids
		return nil
	})
	if err != nil {
		return err
	}
	return s.persist(ctx)
}

// GetPost hands out a detached copy; interactions keep landing on the live
// post under the state lock while callers marshal the copy outside it.
func (s *Service) GetPost(postID int) (*model.Post, error) {
	var found *model.Post
	s.state.View(func(g *state.Graph) {
		if p := g.FindPost(postID); p != nil {
			found = p.Clone()
		}
	})
	if found == nil {
		return nil, model.ErrNotFound
	}
	return found, nil
}

// UserPosts lists a user's posts, newest last, resolving the identifier the
// same way login does.
func (s *Service) UserPosts(identifier string) ([]*model.Post, error) {
	var posts []*model.Post
	var found bool
	s.state.View(func(g *state.Graph) {
		u := g.FindUser(identifier)
		if u == nil {
			return
		}
		found = true
		for _, p := range g.Posts {
			if p.Author == u.Username() {
				posts = append(posts, p.Clone())
			}
		}
	})
	if !found {
		return nil, model.ErrNotFound
	}
	return posts, nil
}

// SearchListings matches the product name or description; an empty query
// returns every listing.
func (s *Service) SearchListings(query string) []*model.Post {
	needle := strings.ToLower(query)
	var results []*model.Post
	s.state.View(func(g *state.Graph) {
		for _, p := range g.ListingPosts() {
			if strings.Contains(strings.ToLower(p.Product.Name), needle) ||
				strings.Contains(strings.ToLower(p.Product.Description), needle) {
				results = append(results, p.Clone())
			}
		}
	})
	return results
}

// SearchJobs matches the job title or company.
func (s *Service) SearchJobs(query string) []*model.Post {
	needle := strings.ToLower(query)
	var results []*model.Post
	s.state.View(func(g *state.Graph) {
		for _, p := range g.JobPosts() {
			if strings.Contains(strings.ToLower(p.Job.Title), needle) ||
				strings.Contains(strings.ToLower(p.Job.Company), needle) {
				results = append(results, p.Clone())
			}
		}
	})
	return results
}

// persist writes the full snapshot; a failed save fails the mutation that
// triggered it even though the in-memory graph already moved on.
func (s *Service) persist(ctx context.Context) error {
	g := s.state.Snapshot()
	return s.store.SaveAll(ctx, g.Users, g.Posts, g.Messages, g.Marketplace)
}
