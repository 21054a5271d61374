// Package store persists the presentation state.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"lyricdeck/internal/model"
	"lyricdeck/internal/openlyrics"
)

const (
	keyTheme        = "theme"
	keyCurrentSlide = "current_slide"
)

// ErrNotMigrated indicates the schema has not been applied yet.
var ErrNotMigrated = errors.New("database schema is not migrated")

// Store persists the presentation state in Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load reads the whole state. An empty database loads as a fresh state.
func (s *Store) Load(ctx context.Context) (*model.State, error) {
	songs, err := s.loadSongs(ctx)
	if err != nil {
		return nil, err
	}
	playlists, err := s.loadPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	theme := model.DefaultTheme()
	raw, found, err := s.presentationValue(ctx, keyTheme)
	if err != nil {
		return nil, err
	}
	if found {
		if err := json.Unmarshal([]byte(raw), &theme); err != nil {
			return nil, fmt.Errorf("decode theme: %w", err)
		}
	}

	if len(songs) == 0 && len(playlists) == 0 {
		state := model.NewState()
		state.SetTheme(theme)
		return state, nil
	}
	return model.RestoreState(songs, playlists, theme), nil
}

func (s *Store) loadSongs(ctx context.Context) (map[uint32]openlyrics.Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, body
		FROM songs
		ORDER BY id ASC`)
	if err != nil {
		return nil, queryError("select songs", err)
	}
	defer rows.Close()

	songs := make(map[uint32]openlyrics.Song)
	for rows.Next() {
		var (
			id   int64
			body []byte
			song openlyrics.Song
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		if err := json.Unmarshal(body, &song); err != nil {
			return nil, fmt.Errorf("decode song %d: %w", id, err)
		}
		songs[uint32(id)] = song
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

func (s *Store) loadPlaylists(ctx context.Context) (map[uint32]model.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, body
		FROM playlists
		ORDER BY id ASC`)
	if err != nil {
		return nil, queryError("select playlists", err)
	}
	defer rows.Close()

	playlists := make(map[uint32]model.Playlist)
	for rows.Next() {
		var (
			id       int64
			body     []byte
			playlist model.Playlist
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		if err := json.Unmarshal(body, &playlist); err != nil {
			return nil, fmt.Errorf("decode playlist %d: %w", id, err)
		}
		playlists[uint32(id)] = playlist
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// Save replaces the stored state with state in a single transaction.
func (s *Store) Save(ctx context.Context, state *model.State) (err error) {
	theme, err := json.Marshal(state.Theme())
	if err != nil {
		return fmt.Errorf("encode theme: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM songs`); err != nil {
		return queryError("delete songs", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM playlists`); err != nil {
		return queryError("delete playlists", err)
	}

	for _, listing := range state.SongsByTitle() {
		var body []byte
		if body, err = json.Marshal(listing.Song); err != nil {
			return fmt.Errorf("encode song %d: %w", listing.ID, err)
		}
		themes := lo.Map(listing.Song.Properties.Themes, func(theme openlyrics.Theme, _ int) string {
			return theme.Text
		})
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO songs (id, title, themes, body)
			VALUES ($1, $2, $3, $4::jsonb)`,
			int64(listing.ID), model.TitleForSong(listing.Song), pq.Array(themes), string(body)); err != nil {
			return fmt.Errorf("insert song %d: %w", listing.ID, err)
		}
	}

	for _, listing := range state.Playlists() {
		var body []byte
		if body, err = json.Marshal(listing.Playlist); err != nil {
			return fmt.Errorf("encode playlist %d: %w", listing.ID, err)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO playlists (id, name, body)
			VALUES ($1, $2, $3::jsonb)`,
			int64(listing.ID), listing.Playlist.Name, string(body)); err != nil {
			return fmt.Errorf("insert playlist %d: %w", listing.ID, err)
		}
	}

	if err = setPresentationValue(ctx, tx, keyTheme, string(theme)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SaveCurrent stores the selected slide. A nil index clears the selection.
func (s *Store) SaveCurrent(ctx context.Context, idx *model.SlideIndex) error {
	if idx == nil {
		if _, err := s.db.ExecContext(ctx, `
			DELETE FROM presentation
			WHERE key = $1`, keyCurrentSlide); err != nil {
			return queryError("clear current slide", err)
		}
		return nil
	}
	return setPresentationValue(ctx, s.db, keyCurrentSlide, idx.String())
}

// LoadCurrent returns the stored selection, or nil when nothing is selected.
func (s *Store) LoadCurrent(ctx context.Context) (*model.SlideIndex, error) {
	raw, found, err := s.presentationValue(ctx, keyCurrentSlide)
	if err != nil || !found {
		return nil, err
	}
	idx, err := model.ParseSlideIndex(raw)
	if err != nil {
		return nil, fmt.Errorf("decode current slide: %w", err)
	}
	return &idx, nil
}

func (s *Store) presentationValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value
		FROM presentation
		WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, queryError("select "+key, err)
	}
	return value, true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setPresentationValue(ctx context.Context, db execer, key, value string) error {
	if _, err := db.ExecContext(ctx, `
		INSERT INTO presentation (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value); err != nil {
		return queryError("store "+key, err)
	}
	return nil
}

func queryError(op string, err error) error {
	if isUndefinedTable(err) {
		return fmt.Errorf("%s: %w", op, ErrNotMigrated)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	return false
}
