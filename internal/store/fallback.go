package store

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mznsh11/Blex/internal/model"
)

const (
	usersFile     = "users.txt"
	postsFile     = "posts.txt"
	followersFile = "followers.txt"

	fileTimeLayout = time.RFC3339Nano
)

// Fallback is the flat-file storage tier: pipe-delimited text records, one
// per line, in a fixed field order. It mirrors users, posts and follow
// edges and is consulted only when the primary tier yields nothing.
type Fallback struct {
	dir string
}

func NewFallback(dir string) *Fallback {
	return &Fallback{dir: dir}
}

func (f *Fallback) SaveUsers(users []*model.User) error {
	var b strings.Builder
	for _, u := range users {
		fmt.Fprintf(&b, "%d|%s|%s|%s|%s|%s|%s\n",
			u.ID, u.Username(), u.Account.Role, u.Account.PasswordHash, u.Name, u.Bio, u.ProfilePic)
	}
	return f.writeFile(usersFile, b.String())
}

// LoadUsers skips malformed lines (wrong field count) with a warning; one
// bad record never aborts the load. A missing file is an empty collection.
func (f *Fallback) LoadUsers() ([]*model.User, error) {
	lines, err := f.readLines(usersFile)
	if err != nil {
		return nil, err
	}

	var users []*model.User
	for n, line := range lines {
		parts := strings.Split(line, "|")
		if len(parts) != 7 {
			log.Printf("fallback: %s line %d: malformed user record (%d fields)", usersFile, n+1, len(parts))
			continue
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			log.Printf("fallback: %s line %d: bad user id %q", usersFile, n+1, parts[0])
			continue
		}
		acc := model.Account{Username: parts[1], Role: model.Role(parts[2]), PasswordHash: parts[3]}
		users = append(users, model.NewUser(id, parts[4], parts[5], parts[6], acc))
	}
	return users, nil
}

func (f *Fallback) SavePosts(posts []*model.Post) error {
	var b strings.Builder
	for _, p := range posts {
		media := fmt.Sprintf("%d,%s,%s", p.Media.ID, p.Media.Kind, p.Media.URL)
		ts := p.CreatedAt.Format(fileTimeLayout)
		switch p.Kind {
		case model.PostNormal:
			fmt.Fprintf(&b, "NormalPost|%d|%s|%s|%s|%s\n", p.ID, p.Caption, p.Author, media, ts)
		case model.PostProduct:
			info := fmt.Sprintf("%s,%s,%s", p.Product.Name, strconv.FormatFloat(p.Product.Price, 'f', -1, 64), p.Product.Description)
			fmt.Fprintf(&b, "ProductPost|%d|%s|%s|%s|%s|%s\n", p.ID, p.Caption, p.Author, media, info, ts)
		case model.PostJob:
			info := fmt.Sprintf("%s,%s,%s", p.Job.Title, p.Job.Company, p.Job.Requirements)
			fmt.Fprintf(&b, "JobPost|%d|%s|%s|%s|%s|%s\n", p.ID, p.Caption, p.Author, media, info, ts)
		}
	}
	return f.writeFile(postsFile, b.String())
}

func (f *Fallback) LoadPosts(users []*model.User) ([]*model.Post, error) {
	lines, err := f.readLines(postsFile)
	if err != nil {
		return nil, err
	}

	var posts []*model.Post
	for n, line := range lines {
		post, ok := parsePostLine(line, users)
		if !ok {
			log.Printf("fallback: %s line %d: malformed post record", postsFile, n+1)
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func parsePostLine(line string, users []*model.User) (*model.Post, bool) {
	parts := strings.Split(line, "|")
	if len(parts) < 1 {
		return nil, false
	}

	var kind model.PostKind
	switch parts[0] {
	case "NormalPost":
		if len(parts) != 6 {
			return nil, false
		}
		kind = model.PostNormal
	case "ProductPost":
		if len(parts) != 7 {
			return nil, false
		}
		kind = model.PostProduct
	case "JobPost":
		if len(parts) != 7 {
			return nil, false
		}
		kind = model.PostJob
	default:
		return nil, false
	}

	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, false
	}
	media, ok := parseMediaTriplet(parts[4])
	if !ok {
		return nil, false
	}

	post := &model.Post{
		ID:        id,
		Kind:      kind,
		Caption:   parts[2],
		Media:     media,
		CreatedAt: parseFileTime(parts[len(parts)-1]),
	}
	if u := findByUsername(users, parts[3]); u != nil {
		post.Author = u.Username()
	} else {
		log.Printf("fallback: post %d author %q does not resolve", id, parts[3])
	}

	switch kind {
	case model.PostProduct:
		info := strings.SplitN(parts[5], ",", 3)
		if len(info) != 3 {
			return nil, false
		}
		price, err := strconv.ParseFloat(info[1], 64)
		if err != nil {
			return nil, false
		}
		post.Product = &model.Product{Name: info[0], Price: price, Description: info[2]}
	case model.PostJob:
		info := strings.SplitN(parts[5], ",", 3)
		if len(info) != 3 {
			return nil, false
		}
		post.Job = &model.Job{Title: info[0], Company: info[1], Requirements: info[2]}
	}
	return post, true
}

func parseMediaTriplet(s string) (model.Media, bool) {
	parts := strings.SplitN(s, ",", 3)
	if len(parts) != 3 {
		return model.Media{}, false
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return model.Media{}, false
	}
	return model.Media{ID: id, Kind: parts[1], URL: parts[2]}, true
}

func parseFileTime(s string) time.Time {
	ts, err := time.Parse(fileTimeLayout, s)
	if err != nil {
		log.Printf("fallback: bad timestamp %q", s)
		return time.Time{}
	}
	return ts
}

func (f *Fallback) SaveFollowers(users []*model.User) error {
	var b strings.Builder
	for _, u := range users {
		for _, followed := range u.Following {
			fmt.Fprintf(&b, "%s|%s\n", u.Username(), followed)
		}
	}
	return f.writeFile(followersFile, b.String())
}

func (f *Fallback) LoadFollowers(users []*model.User) error {
	lines, err := f.readLines(followersFile)
	if err != nil {
		return err
	}
	if lines == nil {
		return nil
	}

	clearFollowEdges(users)
	for n, line := range lines {
		parts := strings.Split(line, "|")
		if len(parts) != 2 {
			log.Printf("fallback: %s line %d: malformed follow record", followersFile, n+1)
			continue
		}
		applyFollowEdge(users, parts[0], parts[1])
	}
	return nil
}

// writeFile stages the content in a temp file and renames it into place, so
// a crash mid-write cannot truncate an existing record file.
func (f *Fallback) writeFile(name, content string) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(f.dir, name))
}

func (f *Fallback) readLines(name string) ([]string, error) {
	file, err := os.Open(filepath.Join(f.dir, name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
