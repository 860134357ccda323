package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BlogPostRepository handles database operations for generated posts
type BlogPostRepository struct {
	db *DB
}

var _ PostRepository = (*BlogPostRepository)(nil)

// NewPostRepository creates a new blog post repository
func NewPostRepository(db *DB) *BlogPostRepository {
	return &BlogPostRepository{db: db}
}

func (r *BlogPostRepository) SlugExists(slug string) (bool, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM blog_posts WHERE slug = ? LIMIT 1`, slug).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return true, nil
}

func (r *BlogPostRepository) InsertPost(post BlogPost) error {
	now := time.Now().UTC()
	if post.ID == "" {
		post.ID = uuid.NewString()
	}

	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO blog_posts (
			id, title, slug, excerpt, content, category, tags,
			featured_image_url, video_id, video_duration, reading_time_minutes,
			is_published, source, source_channel_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, post.ID, post.Title, post.Slug, post.Excerpt, post.Content, post.Category,
		string(tags), post.FeaturedImageURL, post.VideoID, post.VideoDuration,
		post.ReadingTimeMinutes, post.IsPublished, post.Source, post.SourceChannelID,
		now, now)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

func (r *BlogPostRepository) GetPostByID(id string) (*BlogPost, error) {
	var post BlogPost
	var tags string
	err := r.db.QueryRow(`
		SELECT id, title, slug, excerpt, content, category, tags,
		       featured_image_url, video_id, video_duration, reading_time_minutes,
		       is_published, source, source_channel_id, created_at, updated_at
		FROM blog_posts
		WHERE id = ?
	`, id).Scan(
		&post.ID, &post.Title, &post.Slug, &post.Excerpt, &post.Content, &post.Category,
		&tags, &post.FeaturedImageURL, &post.VideoID, &post.VideoDuration,
		&post.ReadingTimeMinutes, &post.IsPublished, &post.Source, &post.SourceChannelID,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &post.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}

	return &post, nil
}

func (r *BlogPostRepository) GetPostCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM blog_posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}
