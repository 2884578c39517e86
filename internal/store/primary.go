package store

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mznsh11/Blex/internal/model"
)

// querier is the subset of database operations the adapters need. It is
// satisfied by db.Querier, pgx.Tx and pgxmock pools, so the same save code
// runs inside the snapshot transaction and in tests.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var snapshotTables = []string{"users", "posts", "followers", "likes", "comments", "messages", "marketplace"}

func clearTables(ctx context.Context, q querier) error {
	for _, table := range snapshotTables {
		if _, err := q.Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func saveUsers(ctx context.Context, q querier, users []*model.User) error {
	for _, u := range users {
		_, err := q.Exec(ctx, `
			INSERT INTO users (user_id, username, password_hash, role, name, bio, profile_pic)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, u.ID, u.Username(), u.Account.PasswordHash, string(u.Account.Role), u.Name, u.Bio, u.ProfilePic)
		if err != nil {
			return err
		}
	}
	return nil
}

func loadUsers(ctx context.Context, q querier) ([]*model.User, error) {
	rows, err := q.Query(ctx, `
		SELECT user_id, username, password_hash, role, name, bio, profile_pic FROM users
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var (
			id                                   int
			username, hash, role, name, bio, pic string
		)
		if err := rows.Scan(&id, &username, &hash, &role, &name, &bio, &pic); err != nil {
			return nil, err
		}
		acc := model.Account{Username: username, PasswordHash: hash, Role: model.Role(role)}
		users = append(users, model.NewUser(id, name, bio, pic, acc))
	}
	return users, rows.Err()
}

func savePosts(ctx context.Context, q querier, posts []*model.Post) error {
	for _, p := range posts {
		var (
			productName, description        *string
			price                           *float64
			jobTitle, company, requirements *string
		)
		if p.Product != nil {
			productName = &p.Product.Name
			price = &p.Product.Price
			description = &p.Product.Description
		}
		if p.Job != nil {
			jobTitle = &p.Job.Title
			company = &p.Job.Company
			requirements = &p.Job.Requirements
		}
		_, err := q.Exec(ctx, `
			INSERT INTO posts (post_id, post_type, caption, author_username,
				media_id, media_type, media_url,
				product_name, price, description,
				job_title, company, requirements, timestamp)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		`, p.ID, string(p.Kind), p.Caption, p.Author,
			p.Media.ID, p.Media.Kind, p.Media.URL,
			productName, price, description,
			jobTitle, company, requirements, p.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// loadPosts decodes the polymorphic posts table: one row per post, the
// post_type column selects the variant. A row whose author does not resolve
// still loads, with an empty author.
func loadPosts(ctx context.Context, q querier, users []*model.User) ([]*model.Post, error) {
	rows, err := q.Query(ctx, `
		SELECT post_id, post_type, caption, author_username,
			media_id, media_type, media_url,
			product_name, price, description,
			job_title, company, requirements, timestamp
		FROM posts
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		var (
			id, mediaID                     int
			ptype, caption, author          string
			mediaType, mediaURL             string
			productName, description        *string
			price                           *float64
			jobTitle, company, requirements *string
			ts                              time.Time
		)
		if err := rows.Scan(&id, &ptype, &caption, &author,
			&mediaID, &mediaType, &mediaURL,
			&productName, &price, &description,
			&jobTitle, &company, &requirements, &ts); err != nil {
			return nil, err
		}

		kind, err := model.ParsePostKind(ptype)
		if err != nil {
			log.Printf("store: skipping post %d: %v", id, err)
			continue
		}

		post := &model.Post{
			ID:        id,
			Kind:      kind,
			Caption:   caption,
			Media:     model.Media{ID: mediaID, Kind: mediaType, URL: mediaURL},
			CreatedAt: ts,
		}
		if u := findByUsername(users, author); u != nil {
			post.Author = u.Username()
		} else {
			log.Printf("store: post %d author %q does not resolve", id, author)
		}
		switch kind {
		case model.PostProduct:
			post.Product = &model.Product{Name: strVal(productName), Price: floatVal(price), Description: strVal(description)}
		case model.PostJob:
			post.Job = &model.Job{Title: strVal(jobTitle), Company: strVal(company), Requirements: strVal(requirements)}
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func saveFollowers(ctx context.Context, q querier, users []*model.User) error {
	for _, u := range users {
		for _, followed := range u.Following {
			_, err := q.Exec(ctx, `
				INSERT INTO followers (follower_username, followed_username) VALUES ($1,$2)
			`, u.Username(), followed)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// loadFollowers rebuilds both sides of every edge: an edge missing its
// mirror in storage is repaired here.
func loadFollowers(ctx context.Context, q querier, users []*model.User) error {
	rows, err := q.Query(ctx, `SELECT follower_username, followed_username FROM followers`)
	if err != nil {
		return err
	}
	defer rows.Close()

	clearFollowEdges(users)
	for rows.Next() {
		var follower, followed string
		if err := rows.Scan(&follower, &followed); err != nil {
			return err
		}
		applyFollowEdge(users, follower, followed)
	}
	return rows.Err()
}

func saveLikes(ctx context.Context, q querier, posts []*model.Post) error {
	for _, p := range posts {
		for _, i := range p.Interactions {
			if i.Kind != model.InteractionLike {
				continue
			}
			_, err := q.Exec(ctx, `
				INSERT INTO likes (post_id, username, timestamp) VALUES ($1,$2,$3)
			`, p.ID, i.Username, i.CreatedAt)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// loadLikes replaces the like-kind interactions on every post, leaving
// comments untouched.
func loadLikes(ctx context.Context, q querier, posts []*model.Post, users []*model.User) error {
	rows, err := q.Query(ctx, `SELECT post_id, username, timestamp FROM likes`)
	if err != nil {
		return err
	}
	defer rows.Close()

	stripInteractions(posts, model.InteractionLike)
	for rows.Next() {
		var (
			postID   int
			username string
			ts       time.Time
		)
		if err := rows.Scan(&postID, &username, &ts); err != nil {
			return err
		}
		attachInteraction(posts, users, postID, username, model.NewLike(username, ts))
	}
	return rows.Err()
}

func saveComments(ctx context.Context, q querier, posts []*model.Post) error {
	for _, p := range posts {
		for _, i := range p.Interactions {
			if i.Kind != model.InteractionComment {
				continue
			}
			_, err := q.Exec(ctx, `
				INSERT INTO comments (post_id, username, content, timestamp) VALUES ($1,$2,$3,$4)
			`, p.ID, i.Username, i.Content, i.CreatedAt)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func loadComments(ctx context.Context, q querier, posts []*model.Post, users []*model.User) error {
	rows, err := q.Query(ctx, `SELECT post_id, username, content, timestamp FROM comments`)
	if err != nil {
		return err
	}
	defer rows.Close()

	stripInteractions(posts, model.InteractionComment)
	for rows.Next() {
		var (
			postID            int
			username, content string
			ts                time.Time
		)
		if err := rows.Scan(&postID, &username, &content, &ts); err != nil {
			return err
		}
		attachInteraction(posts, users, postID, username, model.NewComment(username, content, ts))
	}
	return rows.Err()
}

func saveMessages(ctx context.Context, q querier, messages []*model.Message) error {
	for _, m := range messages {
		_, err := q.Exec(ctx, `
			INSERT INTO messages (sender_username, receiver_username, content, timestamp)
			VALUES ($1,$2,$3,$4)
		`, m.Sender, m.Receiver, m.Content, m.SentAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// loadMessages drops any message whose sender or receiver does not resolve.
// This is documented lossy behavior, not a failure.
func loadMessages(ctx context.Context, q querier, users []*model.User) ([]*model.Message, error) {
	rows, err := q.Query(ctx, `SELECT sender_username, receiver_username, content, timestamp FROM messages`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		var (
			sender, receiver, content string
			ts                        time.Time
		)
		if err := rows.Scan(&sender, &receiver, &content, &ts); err != nil {
			return nil, err
		}
		if findByUsername(users, sender) == nil || findByUsername(users, receiver) == nil {
			log.Printf("store: dropping message %s -> %s: endpoint does not resolve", sender, receiver)
			continue
		}
		messages = append(messages, &model.Message{Sender: sender, Receiver: receiver, Content: content, SentAt: ts})
	}
	return messages, rows.Err()
}

func saveMarketplace(ctx context.Context, q querier, marketplace []int) error {
	for _, id := range marketplace {
		if _, err := q.Exec(ctx, `INSERT INTO marketplace (post_id) VALUES ($1)`, id); err != nil {
			return err
		}
	}
	return nil
}

func loadMarketplaceIDs(ctx context.Context, q querier) ([]int, error) {
	rows, err := q.Query(ctx, `SELECT post_id FROM marketplace`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Reconstruction helpers shared by both storage tiers. Stored rows carry
// exact usernames, so resolution here is a plain match, not the two-pass
// presentation lookup.

func findByUsername(users []*model.User, username string) *model.User {
	for _, u := range users {
		if u.Username() == username {
			return u
		}
	}
	return nil
}

func findPost(posts []*model.Post, id int) *model.Post {
	for _, p := range posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func clearFollowEdges(users []*model.User) {
	for _, u := range users {
		u.Followers = nil
		u.Following = nil
	}
}

func applyFollowEdge(users []*model.User, follower, followed string) {
	from := findByUsername(users, follower)
	to := findByUsername(users, followed)
	if from == nil || to == nil {
		log.Printf("store: dropping follow edge %s -> %s: endpoint does not resolve", follower, followed)
		return
	}
	if !from.IsFollowing(to.Username()) {
		from.Following = append(from.Following, to.Username())
	}
	for _, f := range to.Followers {
		if f == from.Username() {
			return
		}
	}
	to.Followers = append(to.Followers, from.Username())
}

func stripInteractions(posts []*model.Post, kind model.InteractionKind) {
	for _, p := range posts {
		kept := p.Interactions[:0]
		for _, i := range p.Interactions {
			if i.Kind != kind {
				kept = append(kept, i)
			}
		}
		p.Interactions = kept
	}
}

func attachInteraction(posts []*model.Post, users []*model.User, postID int, username string, interaction model.Interaction) {
	post := findPost(posts, postID)
	if post == nil || findByUsername(users, username) == nil {
		log.Printf("store: dropping %s on post %d by %q: reference does not resolve", interaction.Kind, postID, username)
		return
	}
	post.Interactions = append(post.Interactions, interaction)
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatVal(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
