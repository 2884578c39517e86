package state

import (
	"strings"
	"sync"

	"github.com/mznsh11/Blex/internal/model"
)

// Graph is the in-memory object graph: every collection the persistence
// layer snapshots and every handler reads. Marketplace holds post ids;
// the posts themselves live only in Posts.
type Graph struct {
	Users       []*model.User
	Posts       []*model.Post
	Messages    []*model.Message
	Marketplace []int

	nextPostID int
}

// FindUser resolves an identifier to a live user handle: first by exact
// case-insensitive username, then by exact case-insensitive display name.
// First-registered wins on a name collision.
func (g *Graph) FindUser(identifier string) *model.User {
	identifier = strings.TrimSpace(identifier)
	for _, u := range g.Users {
		if strings.EqualFold(u.Username(), identifier) {
			return u
		}
	}
	for _, u := range g.Users {
		if strings.EqualFold(u.Name, identifier) {
			return u
		}
	}
	return nil
}

func (g *Graph) FindPost(id int) *model.Post {
	for _, p := range g.Posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// NextPostID allocates the next post id. Ids are unique across all post
// kinds and are never reused.
func (g *Graph) NextPostID() int {
	if g.nextPostID < 1 {
		g.nextPostID = 1
	}
	id := g.nextPostID
	g.nextPostID++
	return id
}

// SeedPostIDs re-seeds the counter to max(existing ids)+1.
func (g *Graph) SeedPostIDs() {
	g.nextPostID = 1
	for _, p := range g.Posts {
		if p.ID >= g.nextPostID {
			g.nextPostID = p.ID + 1
		}
	}
}

// ListingPosts resolves the marketplace ids to their product posts,
// skipping ids without a matching product post.
func (g *Graph) ListingPosts() []*model.Post {
	var listings []*model.Post
	for _, id := range g.Marketplace {
		if p := g.FindPost(id); p != nil && p.Kind == model.PostProduct {
			listings = append(listings, p)
		}
	}
	return listings
}

func (g *Graph) JobPosts() []*model.Post {
	var jobs []*model.Post
	for _, p := range g.Posts {
		if p.Kind == model.PostJob {
			jobs = append(jobs, p)
		}
	}
	return jobs
}

// State owns the graph behind a single mutex. All mutations go through
// Update, so no two writers ever interleave; reads run under the same lock
// and snapshots are deep copies that saves can walk without holding it.
type State struct {
	mu    sync.Mutex
	graph Graph
}

func New() *State {
	return &State{}
}

// Replace installs a freshly loaded graph and re-seeds the post id counter.
func (s *State) Replace(users []*model.User, posts []*model.Post, messages []*model.Message, marketplace []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = Graph{Users: users, Posts: posts, Messages: messages, Marketplace: marketplace}
	s.graph.SeedPostIDs()
}

func (s *State) Update(fn func(*Graph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.graph)
}

func (s *State) View(fn func(*Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.graph)
}

// Snapshot deep-copies the graph for persistence.
func (s *State) Snapshot() Graph {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Graph{nextPostID: s.graph.nextPostID}
	for _, u := range s.graph.Users {
		snap.Users = append(snap.Users, u.Clone())
	}
	for _, p := range s.graph.Posts {
		snap.Posts = append(snap.Posts, p.Clone())
	}
	for _, m := range s.graph.Messages {
		snap.Messages = append(snap.Messages, m.Clone())
	}
	snap.Marketplace = append([]int(nil), s.graph.Marketplace...)
	return snap
}
