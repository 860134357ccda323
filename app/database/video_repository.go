package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProcessedVideoRepository handles database operations for processing records
type ProcessedVideoRepository struct {
	db *DB
}

var _ VideoRepository = (*ProcessedVideoRepository)(nil)

// NewVideoRepository creates a new processed video repository
func NewVideoRepository(db *DB) *ProcessedVideoRepository {
	return &ProcessedVideoRepository{db: db}
}

// ClaimVideo performs the claim as a single upsert so that two concurrent
// notifications for the same video cannot both enter the pipeline. The
// conditional update only fires for rows in the pending or failed state.
func (r *ProcessedVideoRepository) ClaimVideo(videoID string) (*ProcessedVideo, bool, error) {
	now := time.Now().UTC()

	res, err := r.db.Exec(`
		INSERT INTO processed_videos (id, video_id, status, created_at, updated_at)
		VALUES (?, ?, 'processing', ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			status = 'processing',
			error_message = NULL,
			processed_at = NULL,
			updated_at = excluded.updated_at
		WHERE processed_videos.status IN ('pending', 'failed')
	`, uuid.NewString(), videoID, now, now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to claim video: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read claim result: %w", err)
	}

	video, err := r.GetVideoByID(videoID)
	if err != nil {
		return nil, false, err
	}
	if video == nil {
		return nil, false, fmt.Errorf("video record disappeared after claim: %s", videoID)
	}

	return video, affected > 0, nil
}

func (r *ProcessedVideoRepository) GetVideoByID(videoID string) (*ProcessedVideo, error) {
	var v ProcessedVideo
	err := r.db.QueryRow(`
		SELECT id, video_id, video_title, status, blog_post_id, error_message,
		       processed_at, created_at, updated_at
		FROM processed_videos
		WHERE video_id = ?
	`, videoID).Scan(
		&v.ID, &v.VideoID, &v.VideoTitle, &v.Status, &v.BlogPostID, &v.ErrorMessage,
		&v.ProcessedAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return &v, nil
}

func (r *ProcessedVideoRepository) ListVideos(limit int) ([]VideoWithPost, error) {
	rows, err := r.db.Query(`
		SELECT v.id, v.video_id, v.video_title, v.status, v.blog_post_id,
		       v.error_message, v.processed_at, v.created_at, v.updated_at,
		       p.title, p.slug
		FROM processed_videos v
		LEFT JOIN blog_posts p ON p.id = v.blog_post_id
		ORDER BY v.created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []VideoWithPost
	for rows.Next() {
		var v VideoWithPost
		err := rows.Scan(
			&v.ID, &v.VideoID, &v.VideoTitle, &v.Status, &v.BlogPostID,
			&v.ErrorMessage, &v.ProcessedAt, &v.CreatedAt, &v.UpdatedAt,
			&v.PostTitle, &v.PostSlug,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating video rows: %w", err)
	}

	return videos, nil
}

func (r *ProcessedVideoRepository) GetVideoStats() (*VideoStats, error) {
	var stats VideoStats
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM processed_videos
	`).Scan(&stats.Total, &stats.Processing, &stats.Completed, &stats.Failed)
	if err != nil {
		return nil, fmt.Errorf("failed to get video stats: %w", err)
	}
	return &stats, nil
}

func (r *ProcessedVideoRepository) SetVideoTitle(videoID string, title string) error {
	_, err := r.db.Exec(`
		UPDATE processed_videos
		SET video_title = ?, updated_at = ?
		WHERE video_id = ?
	`, title, time.Now().UTC(), videoID)
	if err != nil {
		return fmt.Errorf("failed to set video title: %w", err)
	}
	return nil
}

func (r *ProcessedVideoRepository) MarkCompleted(videoID string, blogPostID string, processedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE processed_videos
		SET status = 'completed', blog_post_id = ?, error_message = NULL,
		    processed_at = ?, updated_at = ?
		WHERE video_id = ?
	`, blogPostID, processedAt, time.Now().UTC(), videoID)
	if err != nil {
		return fmt.Errorf("failed to mark video completed: %w", err)
	}
	return nil
}

func (r *ProcessedVideoRepository) MarkFailed(videoID string, message string, processedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE processed_videos
		SET status = 'failed', error_message = ?, processed_at = ?, updated_at = ?
		WHERE video_id = ?
	`, message, processedAt, time.Now().UTC(), videoID)
	if err != nil {
		return fmt.Errorf("failed to mark video failed: %w", err)
	}
	return nil
}
