package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"

	"github.com/mznsh11/Blex/internal/model"
	"github.com/mznsh11/Blex/internal/state"
	"github.com/mznsh11/Blex/internal/store"
)

func seedUser(t *testing.T, st *state.State, id int, username, name string) {
	t.Helper()
	acc, err := model.NewAccount(username, "digest", model.RoleRegular)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if err := st.Update(func(g *state.Graph) error {
		g.Users = append(g.Users, model.NewUser(id, name, "", "", acc))
		return nil
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func seedPost(t *testing.T, st *state.State, id int, author string) {
	t.Helper()
	if err := st.Update(func(g *state.Graph) error {
		u := g.FindUser(author)
		post, err := model.NewNormalPost(id, "caption", model.Media{}, u, time.Now())
		if err != nil {
			return err
		}
		g.Posts = append(g.Posts, post)
		return nil
	}); err != nil {
		t.Fatalf("seed post: %v", err)
	}
}

func newTestService(t *testing.T) (*Service, *state.State) {
	t.Helper()
	st := state.New()
	return NewService(st, store.NewOrchestrator(nil, t.TempDir())), st
}

func TestFollowAndUnfollow(t *testing.T) {
	svc, st := newTestService(t)
	seedUser(t, st, 1, "alice", "Alice")
	seedUser(t, st, 2, "acme", "Acme Corp")

	if err := svc.Follow(context.Background(), "alice", "acme"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	st.View(func(g *state.Graph) {
		alice := g.FindUser("alice")
		acme := g.FindUser("acme")
		if !alice.IsFollowing("acme") {
			t.Fatalf("expected following edge")
		}
		if len(acme.Followers) != 1 || acme.Followers[0] != "alice" {
			t.Fatalf("expected mirrored follower edge, got %v", acme.Followers)
		}
	})

	if err := svc.Follow(context.Background(), "alice", "acme"); !errors.Is(err, model.ErrAlreadyFollowing) {
		t.Fatalf("expected ErrAlreadyFollowing, got %v", err)
	}

	if err := svc.Unfollow(context.Background(), "alice", "acme"); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	st.View(func(g *state.Graph) {
		if g.FindUser("alice").IsFollowing("acme") {
			t.Fatalf("expected edge removed")
		}
		if len(g.FindUser("acme").Followers) != 0 {
			t.Fatalf("expected mirror removed")
		}
	})

	if err := svc.Unfollow(context.Background(), "alice", "acme"); !errors.Is(err, model.ErrNotFollowing) {
		t.Fatalf("expected ErrNotFollowing, got %v", err)
	}
}

func TestFollowResolvesDisplayName(t *testing.T) {
	svc, st := newTestService(t)
	seedUser(t, st, 1, "alice", "Alice")
	seedUser(t, st, 2, "acme", "Acme Corp")

	if err := svc.Follow(context.Background(), "alice", "Acme Corp"); err != nil {
		t.Fatalf("follow by display name: %v", err)
	}
	st.View(func(g *state.Graph) {
		if !g.FindUser("alice").IsFollowing("acme") {
			t.Fatalf("expected edge stored under the username")
		}
	})
}

func TestFollowSelfAndUnknown(t *testing.T) {
	svc, st := newTestService(t)
	seedUser(t, st, 1, "alice", "Alice")

	if err := svc.Follow(context.Background(), "alice", "alice"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for self, got %v", err)
	}
	if err := svc.Follow(context.Background(), "alice", "ghost"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown target, got %v", err)
	}
	if err := svc.Follow(context.Background(), "ghost", "alice"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown actor, got %v", err)
	}
}

func TestLikePostOncePerUser(t *testing.T) {
	svc, st := newTestService(t)
	seedUser(t, st, 1, "alice", "Alice")
	seedUser(t, st, 2, "acme", "Acme Corp")
	seedPost(t, st, 1, "acme")

	if err := svc.LikePost(context.Background(), "alice", 1); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := svc.LikePost(context.Background(), "alice", 1); !errors.Is(err, model.ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}
	if err := svc.LikePost(context.Background(), "acme", 1); err != nil {
		t.Fatalf("second user like: %v", err)
	}
	if err := svc.LikePost(context.Background(), "alice", 99); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	st.View(func(g *state.Graph) {
		post := g.FindPost(1)
		if len(post.Interactions) != 2 {
			t.Fatalf("expected 2 likes, got %d", len(post.Interactions))
		}
	})
}

func TestCommentOnPostRepeats(t *testing.T) {
	svc, st := newTestService(t)
	seedUser(t, st, 1, "alice", "Alice")
	seedPost(t, st, 1, "alice")

	if err := svc.CommentOnPost(context.Background(), "alice", 1, "first"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if err := svc.CommentOnPost(context.Background(), "alice", 1, "second"); err != nil {
		t.Fatalf("repeat comment: %v", err)
	}
	if err := svc.CommentOnPost(context.Background(), "alice", 99, "x"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	st.View(func(g *state.Graph) {
		post := g.FindPost(1)
		if len(post.Interactions) != 2 {
			t.Fatalf("expected 2 comments, got %d", len(post.Interactions))
		}
		if post.Interactions[0].Content != "first" || post.Interactions[1].Content != "second" {
			t.Fatalf("comments out of order")
		}
	})
}

func TestSearchUsersExcludesActor(t *testing.T) {
	svc, st := newTestService(t)
	seedUser(t, st, 1, "alice", "Alice Smith")
	seedUser(t, st, 2, "alison", "Alison Jones")
	seedUser(t, st, 3, "bob", "Bob")

	results := svc.SearchUsers("alice", "ali")
	if len(results) != 1 || results[0].Username != "alison" {
		t.Fatalf("unexpected results: %+v", results)
	}

	all := svc.SearchUsers("alice", "")
	if len(all) != 2 {
		t.Fatalf("expected everyone but the actor, got %d", len(all))
	}
}

func TestRelations(t *testing.T) {
	svc, st := newTestService(t)
	seedUser(t, st, 1, "alice", "Alice")
	seedUser(t, st, 2, "acme", "Acme Corp")

	if err := svc.Follow(context.Background(), "alice", "acme"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	rel, err := svc.Relations("acme")
	if err != nil {
		t.Fatalf("relations: %v", err)
	}
	if rel.User.Username != "acme" || len(rel.Followers) != 1 || rel.Followers[0] != "alice" {
		t.Fatalf("unexpected relations: %+v", rel)
	}

	if _, err := svc.Relations("ghost"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFollowReturnsSaveFailure(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	st := state.New()
	seedUser(t, st, 1, "alice", "Alice")
	seedUser(t, st, 2, "acme", "Acme Corp")
	svc := NewService(st, store.NewOrchestrator(mock, t.TempDir()))

	errDown := errors.New("primary store down")
	mock.ExpectBegin().WillReturnError(errDown)

	if err := svc.Follow(context.Background(), "alice", "acme"); !errors.Is(err, errDown) {
		t.Fatalf("expected the save error surfaced, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
