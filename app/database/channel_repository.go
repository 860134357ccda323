package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChannelSubscriptionRepository handles database operations for watched channels
type ChannelSubscriptionRepository struct {
	db *DB
}

var _ ChannelRepository = (*ChannelSubscriptionRepository)(nil)

// NewChannelRepository creates a new channel subscription repository
func NewChannelRepository(db *DB) *ChannelSubscriptionRepository {
	return &ChannelSubscriptionRepository{db: db}
}

func (r *ChannelSubscriptionRepository) UpsertChannel(ch ChannelSubscription) (*ChannelSubscription, error) {
	now := time.Now().UTC()
	id := ch.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.db.Exec(`
		INSERT INTO channel_subscriptions
			(id, channel_id, channel_name, channel_url, webhook_secret, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET
			channel_name = excluded.channel_name,
			channel_url = excluded.channel_url,
			updated_at = excluded.updated_at
	`, id, ch.ChannelID, ch.ChannelName, ch.ChannelURL, ch.WebhookSecret, ch.IsActive, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert channel: %w", err)
	}

	return r.GetChannelByID(ch.ChannelID)
}

func (r *ChannelSubscriptionRepository) GetChannelByID(channelID string) (*ChannelSubscription, error) {
	var ch ChannelSubscription
	err := r.db.QueryRow(`
		SELECT id, channel_id, channel_name, channel_url, webhook_secret,
		       is_active, subscription_expires_at, created_at, updated_at
		FROM channel_subscriptions
		WHERE channel_id = ?
	`, channelID).Scan(
		&ch.ID, &ch.ChannelID, &ch.ChannelName, &ch.ChannelURL, &ch.WebhookSecret,
		&ch.IsActive, &ch.SubscriptionExpiresAt, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	return &ch, nil
}

func (r *ChannelSubscriptionRepository) ListChannels() ([]ChannelSubscription, error) {
	rows, err := r.db.Query(`
		SELECT id, channel_id, channel_name, channel_url, webhook_secret,
		       is_active, subscription_expires_at, created_at, updated_at
		FROM channel_subscriptions
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []ChannelSubscription
	for rows.Next() {
		var ch ChannelSubscription
		err := rows.Scan(
			&ch.ID, &ch.ChannelID, &ch.ChannelName, &ch.ChannelURL, &ch.WebhookSecret,
			&ch.IsActive, &ch.SubscriptionExpiresAt, &ch.CreatedAt, &ch.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		channels = append(channels, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel rows: %w", err)
	}

	return channels, nil
}

func (r *ChannelSubscriptionRepository) GetChannelCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM channel_subscriptions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get channel count: %w", err)
	}
	return count, nil
}

func (r *ChannelSubscriptionRepository) UpdateLease(channelID string, expiresAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE channel_subscriptions
		SET subscription_expires_at = ?, updated_at = ?
		WHERE channel_id = ?
	`, expiresAt, time.Now().UTC(), channelID)
	if err != nil {
		return fmt.Errorf("failed to update lease: %w", err)
	}
	return nil
}

func (r *ChannelSubscriptionRepository) SetActive(channelID string, active bool) error {
	_, err := r.db.Exec(`
		UPDATE channel_subscriptions
		SET is_active = ?, updated_at = ?
		WHERE channel_id = ?
	`, active, time.Now().UTC(), channelID)
	if err != nil {
		return fmt.Errorf("failed to update active flag: %w", err)
	}
	return nil
}

func (r *ChannelSubscriptionRepository) DeleteChannel(channelID string) error {
	_, err := r.db.Exec(`DELETE FROM channel_subscriptions WHERE channel_id = ?`, channelID)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return nil
}
