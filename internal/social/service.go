package social

import (
	"context"
	"strings"
	"time"

	"github.com/mznsh11/Blex/internal/auth"
	"github.com/mznsh11/Blex/internal/model"
	"github.com/mznsh11/Blex/internal/state"
	"github.com/mznsh11/Blex/internal/store"
)

type Service struct {
	state *state.State
	store *store.Orchestrator
}

func NewService(st *state.State, orch *store.Orchestrator) *Service {
	return &Service{state: st, store: orch}
}

// Follow adds the edge on both sides. The target is resolved by username
// first and display name second; following yourself is not a thing, so a
// target that resolves back to the actor reads as not found.
func (s *Service) Follow(ctx context.Context, actor, target string) error {
	err := s.state.Update(func(g *state.Graph) error {
		from := g.FindUser(actor)
		if from == nil {
			return model.ErrNotFound
		}
		to := g.FindUser(target)
		if to == nil || to.Username() == from.Username() {
			return model.ErrNotFound
		}
		if from.IsFollowing(to.Username()) {
			return model.ErrAlreadyFollowing
		}
		from.Following = append(from.Following, to.Username())
		to.Followers = append(to.Followers, from.Username())
		return nil
	})
	if err != nil {
		return err
	}
	return s.persist(ctx)
}

func (s *Service) Unfollow(ctx context.Context, actor, target string) error {
	err := s.state.Update(func(g *state.Graph) error {
		from := g.FindUser(actor)
		if from == nil {
			return model.ErrNotFound
		}
		to := g.FindUser(target)
		if to == nil {
			return model.ErrNotFound
		}
		if !from.IsFollowing(to.Username()) {
			return model.ErrNotFollowing
		}
		from.Following = remove(from.Following, to.Username())
		to.Followers = remove(to.Followers, from.Username())
		return nil
	})
	if err != nil {
		return err
	}
	return s.persist(ctx)
}

// LikePost records at most one like per user per post.
func (s *Service) LikePost(ctx context.Context, actor string, postID int) error {
	err := s.state.Update(func(g *state.Graph) error {
		user := g.FindUser(actor)
		if user == nil {
			return model.ErrNotFound
		}
		post := g.FindPost(postID)
		if post == nil {
			return model.ErrNotFound
		}
		if post.LikedBy(user.Username()) {
			return model.ErrAlreadyLiked
		}
		post.Interactions = append(post.Interactions, model.NewLike(user.Username(), time.Now()))
		return nil
	})
	if err != nil {
		return err
	}
	return s.persist(ctx)
}

// CommentOnPost always appends; the same user may comment any number of
// times.
func (s *Service) CommentOnPost(ctx context.Context, actor string, postID int, content string) error {
	err := s.state.Update(func(g *state.Graph) error {
		user := g.FindUser(actor)
		if user == nil {
			return model.ErrNotFound
		}
		post := g.FindPost(postID)
		if post == nil {
			return model.ErrNotFound
		}
		post.Interactions = append(post.Interactions, model.NewComment(user.Username(), content, time.Now()))
		return nil
	})
	if err != nil {
		return err
	}
	return s.persist(ctx)
}

// SearchUsers matches the display name, case-insensitively, excluding the
// actor. An empty query matches everyone else.
func (s *Service) SearchUsers(actor, query string) []auth.Profile {
	var results []auth.Profile
	needle := strings.ToLower(query)
	s.state.View(func(g *state.Graph) {
		self := g.FindUser(actor)
		for _, u := range g.Users {
			if self != nil && u.Username() == self.Username() {
				continue
			}
			if strings.Contains(strings.ToLower(u.Name), needle) {
				results = append(results, auth.ProfileOf(u))
			}
		}
	})
	return results
}

func (s *Service) Relations(identifier string) (Relations, error) {
	var rel Relations
	var found bool
	s.state.View(func(g *state.Graph) {
		u := g.FindUser(identifier)
		if u == nil {
			return
		}
		found = true
		rel = Relations{
			User:      auth.ProfileOf(u),
			Followers: append([]string(nil), u.Followers...),
			Following: append([]string(nil), u.Following...),
		}
	})
	if !found {
		return Relations{}, model.ErrNotFound
	}
	return rel, nil
}

func remove(list []string, value string) []string {
	kept := list[:0]
	for _, v := range list {
		if v != value {
			kept = append(kept, v)
		}
	}
	return kept
}

// persist writes the full snapshot; a failed save fails the mutation that
// triggered it even though the in-memory graph already moved on.
func (s *Service) persist(ctx context.Context) error {
	g := s.state.Snapshot()
	return s.store.SaveAll(ctx, g.Users, g.Posts, g.Messages, g.Marketplace)
}
