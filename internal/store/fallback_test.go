package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mznsh11/Blex/internal/model"
)

func fallbackUser(t *testing.T, id int, username, name string) *model.User {
	t.Helper()
	acc, err := model.NewAccount(username, "digest-"+username, model.RoleRegular)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	return model.NewUser(id, name, "bio", "pic.png", acc)
}

func TestFallbackUsersRoundTrip(t *testing.T) {
	f := NewFallback(t.TempDir())

	alice := fallbackUser(t, 1, "alice", "Alice")
	acme := fallbackUser(t, 2, "acme", "Acme Corp")
	acme.Account.Role = model.RoleProfessional

	if err := f.SaveUsers([]*model.User{alice, acme}); err != nil {
		t.Fatalf("save users: %v", err)
	}

	loaded, err := f.LoadUsers()
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 users, got %d", len(loaded))
	}
	if loaded[0].Username() != "alice" || loaded[0].Account.PasswordHash != "digest-alice" {
		t.Fatalf("user fields did not round trip: %+v", loaded[0])
	}
	if loaded[1].Account.Role != model.RoleProfessional {
		t.Fatalf("role did not round trip")
	}
}

func TestFallbackLoadUsersSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	content := "1|alice|regular|digest|Alice|bio|pic\n" +
		"2|bob|regular|digest|Bob|bio\n" + // 6 fields, malformed
		"x|carl|regular|digest|Carl|bio|pic\n" + // bad id
		"3|dana|regular|digest|Dana|bio|pic\n"
	if err := os.WriteFile(filepath.Join(dir, usersFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	loaded, err := NewFallback(dir).LoadUsers()
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected malformed lines to be skipped, got %d users", len(loaded))
	}
	if loaded[0].Username() != "alice" || loaded[1].Username() != "dana" {
		t.Fatalf("unexpected users survived: %v, %v", loaded[0].Username(), loaded[1].Username())
	}
}

func TestFallbackLoadUsersMissingFile(t *testing.T) {
	loaded, err := NewFallback(t.TempDir()).LoadUsers()
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty collection for missing file")
	}
}

func TestFallbackPostsRoundTrip(t *testing.T) {
	f := NewFallback(t.TempDir())

	alice := fallbackUser(t, 1, "alice", "Alice")
	acme := fallbackUser(t, 2, "acme", "Acme Corp")
	users := []*model.User{alice, acme}

	now := time.Now().Round(time.Millisecond)
	normal, _ := model.NewNormalPost(1, "hello world", model.Media{ID: 1, Kind: "image", URL: "http://img"}, alice, now)
	product, _ := model.NewProductPost(2, "Widget", 9.99, "small, shiny, useful", model.Media{}, acme, now)
	job, _ := model.NewJobPost(3, "Dev", "Acme", "Go, SQL", model.Media{ID: 2, Kind: "video", URL: "http://vid"}, acme, now)

	if err := f.SavePosts([]*model.Post{normal, product, job}); err != nil {
		t.Fatalf("save posts: %v", err)
	}

	loaded, err := f.LoadPosts(users)
	if err != nil {
		t.Fatalf("load posts: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(loaded))
	}

	if loaded[0].Kind != model.PostNormal || loaded[0].Caption != "hello world" || loaded[0].Author != "alice" {
		t.Fatalf("normal post did not round trip: %+v", loaded[0])
	}
	if !loaded[0].CreatedAt.Equal(now) {
		t.Fatalf("timestamp did not round trip")
	}
	if loaded[0].Media.Kind != "image" || loaded[0].Media.URL != "http://img" {
		t.Fatalf("media did not round trip")
	}

	p := loaded[1]
	if p.Kind != model.PostProduct || p.Product == nil {
		t.Fatalf("expected product post")
	}
	if p.Product.Price != 9.99 || p.Product.Description != "small, shiny, useful" {
		t.Fatalf("product payload did not round trip: %+v", p.Product)
	}
	if p.Caption != "Buy: Widget" {
		t.Fatalf("unexpected caption %q", p.Caption)
	}

	j := loaded[2]
	if j.Kind != model.PostJob || j.Job == nil || j.Job.Requirements != "Go, SQL" {
		t.Fatalf("job payload did not round trip: %+v", j.Job)
	}
}

func TestFallbackLoadPostsUnresolvedAuthor(t *testing.T) {
	f := NewFallback(t.TempDir())
	alice := fallbackUser(t, 1, "alice", "Alice")
	post, _ := model.NewNormalPost(1, "hi", model.Media{}, alice, time.Now())
	if err := f.SavePosts([]*model.Post{post}); err != nil {
		t.Fatalf("save posts: %v", err)
	}

	// load against a user collection that no longer has alice
	loaded, err := f.LoadPosts(nil)
	if err != nil {
		t.Fatalf("load posts: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected the post to survive")
	}
	if loaded[0].Author != "" {
		t.Fatalf("expected empty author, got %q", loaded[0].Author)
	}
}

func TestFallbackLoadPostsSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	content := "NormalPost|1|hi|alice|0,,|" + time.Now().Format(fileTimeLayout) + "\n" +
		"NormalPost|2|short\n" +
		"GhostPost|3|x|alice|0,,|now\n" +
		"ProductPost|x|c|alice|0,,|Widget,notaprice,d|now\n"
	if err := os.WriteFile(filepath.Join(dir, postsFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	alice := fallbackUser(t, 1, "alice", "Alice")
	loaded, err := NewFallback(dir).LoadPosts([]*model.User{alice})
	if err != nil {
		t.Fatalf("load posts: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != 1 {
		t.Fatalf("expected only the well-formed record, got %d", len(loaded))
	}
}

func TestFallbackFollowersRoundTripAndRepair(t *testing.T) {
	f := NewFallback(t.TempDir())

	alice := fallbackUser(t, 1, "alice", "Alice")
	acme := fallbackUser(t, 2, "acme", "Acme Corp")
	alice.Following = []string{"acme"}
	// acme.Followers deliberately left without the mirror entry
	users := []*model.User{alice, acme}

	if err := f.SaveFollowers(users); err != nil {
		t.Fatalf("save followers: %v", err)
	}
	if err := f.LoadFollowers(users); err != nil {
		t.Fatalf("load followers: %v", err)
	}

	if !alice.IsFollowing("acme") {
		t.Fatalf("expected edge to survive")
	}
	if len(acme.Followers) != 1 || acme.Followers[0] != "alice" {
		t.Fatalf("expected mirror side to be repaired, got %v", acme.Followers)
	}
}

func TestFallbackLoadFollowersDropsUnresolved(t *testing.T) {
	dir := t.TempDir()
	content := "alice|ghost\nalice|acme\nbroken\n"
	if err := os.WriteFile(filepath.Join(dir, followersFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	alice := fallbackUser(t, 1, "alice", "Alice")
	acme := fallbackUser(t, 2, "acme", "Acme Corp")
	users := []*model.User{alice, acme}

	if err := NewFallback(dir).LoadFollowers(users); err != nil {
		t.Fatalf("load followers: %v", err)
	}
	if len(alice.Following) != 1 || alice.Following[0] != "acme" {
		t.Fatalf("expected only the resolvable edge, got %v", alice.Following)
	}
}

func TestFallbackWriteReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFallback(dir)

	alice := fallbackUser(t, 1, "alice", "Alice")
	if err := f.SaveUsers([]*model.User{alice}); err != nil {
		t.Fatalf("save users: %v", err)
	}
	if err := f.SaveUsers(nil); err != nil {
		t.Fatalf("overwrite users: %v", err)
	}

	loaded, err := f.LoadUsers()
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected snapshot write to replace the file")
	}
}
