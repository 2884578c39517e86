package store

import (
	"context"
	"errors"
	"log"

	"github.com/mznsh11/Blex/internal/db"
	"github.com/mznsh11/Blex/internal/model"
)

// ErrPrimaryUnavailable marks save and lookup paths that need the primary
// store when none is configured.
var ErrPrimaryUnavailable = errors.New("primary store unavailable")

// Orchestrator owns the save/load cycle across both storage tiers.
type Orchestrator struct {
	db       db.Querier
	fallback *Fallback
}

func NewOrchestrator(database db.Querier, dataDir string) *Orchestrator {
	return &Orchestrator{db: database, fallback: NewFallback(dataDir)}
}

// SaveAll persists a full snapshot: every table is cleared and rewritten
// from the in-memory collections inside one transaction, so a mid-sequence
// failure rolls back instead of leaving some tables cleared and others not.
// After commit, users, posts and follow edges are mirrored to the fallback
// tier. Without a primary store the snapshot goes to the fallback tier
// alone; a failure on either tier is the caller's to surface.
func (o *Orchestrator) SaveAll(ctx context.Context, users []*model.User, posts []*model.Post, messages []*model.Message, marketplace []int) error {
	if o.db == nil {
		log.Printf("store: %v, writing snapshot to fallback tier only", ErrPrimaryUnavailable)
		return o.mirrorFallback(users, posts)
	}

	tx, err := o.db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := writeSnapshot(ctx, tx, users, posts, messages, marketplace); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	return o.mirrorFallback(users, posts)
}

func (o *Orchestrator) mirrorFallback(users []*model.User, posts []*model.Post) error {
	if err := o.fallback.SaveUsers(users); err != nil {
		return err
	}
	if err := o.fallback.SavePosts(posts); err != nil {
		return err
	}
	return o.fallback.SaveFollowers(users)
}

func writeSnapshot(ctx context.Context, q querier, users []*model.User, posts []*model.Post, messages []*model.Message, marketplace []int) error {
	if err := clearTables(ctx, q); err != nil {
		return err
	}
	if err := saveUsers(ctx, q, users); err != nil {
		return err
	}
	if err := savePosts(ctx, q, posts); err != nil {
		return err
	}
	if err := saveFollowers(ctx, q, users); err != nil {
		return err
	}
	if err := saveLikes(ctx, q, posts); err != nil {
		return err
	}
	if err := saveComments(ctx, q, posts); err != nil {
		return err
	}
	if err := saveMessages(ctx, q, messages); err != nil {
		return err
	}
	return saveMarketplace(ctx, q, marketplace)
}

// LoadAll reconstructs the object graph in dependency order: users first,
// then posts (resolving authors), messages, the marketplace set, follow
// edges, likes and comments. Each of the user and post collections falls
// back to the text tier when the primary tier yields nothing — evaluated
// independently, at most once, never chained further. A failing primary
// read counts as an empty collection so the fallback tier can still serve.
func (o *Orchestrator) LoadAll(ctx context.Context) ([]*model.User, []*model.Post, []*model.Message, []int, error) {
	var users []*model.User
	usersFromFallback := false
	if o.db != nil {
		loaded, err := loadUsers(ctx, o.db)
		if err != nil {
			log.Printf("store: primary user load failed: %v", err)
		}
		users = loaded
	}
	if len(users) == 0 {
		fbUsers, err := o.fallback.LoadUsers()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if len(fbUsers) > 0 {
			users = fbUsers
			usersFromFallback = true
		}
	}

	var posts []*model.Post
	if o.db != nil {
		loaded, err := loadPosts(ctx, o.db, users)
		if err != nil {
			log.Printf("store: primary post load failed: %v", err)
		}
		posts = loaded
	}
	if len(posts) == 0 {
		fbPosts, err := o.fallback.LoadPosts(users)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		posts = fbPosts
	}

	var messages []*model.Message
	if o.db != nil {
		loaded, err := loadMessages(ctx, o.db, users)
		if err != nil {
			log.Printf("store: message load failed: %v", err)
		}
		messages = loaded
	}

	var stored []int
	if o.db != nil {
		ids, err := loadMarketplaceIDs(ctx, o.db)
		if err != nil {
			log.Printf("store: marketplace load failed: %v", err)
		}
		stored = ids
	}
	marketplace := buildMarketplace(stored, posts)

	// When users came from the fallback tier the primary follower table
	// cannot reference them; take the edges from the same tier.
	if usersFromFallback {
		if err := o.fallback.LoadFollowers(users); err != nil {
			return nil, nil, nil, nil, err
		}
	} else if o.db != nil {
		if err := loadFollowers(ctx, o.db, users); err != nil {
			log.Printf("store: follower load failed: %v", err)
		}
	}

	if o.db != nil {
		if err := loadLikes(ctx, o.db, posts, users); err != nil {
			log.Printf("store: like load failed: %v", err)
		}
		if err := loadComments(ctx, o.db, posts, users); err != nil {
			log.Printf("store: comment load failed: %v", err)
		}
	}

	return users, posts, messages, marketplace, nil
}

// buildMarketplace keeps the stored listing ids that still name a product
// post, then adds back any product post the table was missing. Every
// resulting id is guaranteed to exist in the post collection.
func buildMarketplace(stored []int, posts []*model.Post) []int {
	seen := map[int]bool{}
	var ids []int
	for _, id := range stored {
		if seen[id] {
			continue
		}
		if p := findPost(posts, id); p != nil && p.Kind == model.PostProduct {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, p := range posts {
		if p.Kind == model.PostProduct && !seen[p.ID] {
			seen[p.ID] = true
			ids = append(ids, p.ID)
		}
	}
	return ids
}
