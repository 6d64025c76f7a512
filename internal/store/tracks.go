package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cesargomez89/mixtape/internal/domain"
)

const trackColumns = `id, user_id, title, file_url, id3, created_at`

// CreateTrack inserts the track and fills in its generated id.
func (db *DB) CreateTrack(ctx context.Context, track *domain.Track) error {
	if track.CreatedAt.IsZero() {
		track.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO tracks (user_id, title, file_url, id3, created_at) VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, track.UserID, track.Title, track.FileURL, track.ID3, track.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read track id: %w", err)
	}
	track.ID = id
	return nil
}

func (db *DB) GetTrack(ctx context.Context, id int64) (*domain.Track, error) {
	return db.getTrack(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
}

func (db *DB) GetTrackByFileURL(ctx context.Context, fileURL string) (*domain.Track, error) {
	return db.getTrack(ctx, `SELECT `+trackColumns+` FROM tracks WHERE file_url = ?`, fileURL)
}

func (db *DB) getTrack(ctx context.Context, query string, arg interface{}) (*domain.Track, error) {
	var track domain.Track
	if err := db.GetContext(ctx, &track, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	return &track, nil
}

// ListTracks returns every track, newest first.
func (db *DB) ListTracks(ctx context.Context) ([]domain.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks ORDER BY created_at DESC, id DESC`

	tracks := []domain.Track{}
	if err := db.SelectContext(ctx, &tracks, query); err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	return tracks, nil
}

// UpdateTrack persists the editable fields: title and id3.
func (db *DB) UpdateTrack(ctx context.Context, track *domain.Track) error {
	query := `UPDATE tracks SET title = ?, id3 = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, track.Title, track.ID3, track.ID)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}
	return expectRow(result)
}

func (db *DB) DeleteTrack(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	return expectRow(result)
}

func expectRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
