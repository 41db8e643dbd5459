package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ashok9315-cmyk/profolia.art/internal/config"
	"github.com/ashok9315-cmyk/profolia.art/internal/types"
	"github.com/ashok9315-cmyk/profolia.art/internal/types/media"
)

type Postgres struct {
	Db *sql.DB
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		log.Fatal(err)
		return nil, err
	}

	log.Println("Connected to Postgres database")

	// Create tables if they don't exist
	pg := &Postgres{Db: db}
	err = pg.CreateTables()
	if err != nil {
		log.Fatal("Failed to create tables:", err)
	}

	return pg, nil
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			username VARCHAR(255) UNIQUE NOT NULL,
			profession VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS media_assets (
			id TEXT PRIMARY KEY,
			profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			file_name TEXT NOT NULL,
			kind VARCHAR(20) NOT NULL CHECK (kind IN ('image', 'video', 'audio', 'document')),
			object_key TEXT UNIQUE NOT NULL,
			url TEXT NOT NULL,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			category VARCHAR(100) NOT NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			metadata JSONB NOT NULL DEFAULT '{}',
			display_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_media_assets_profile ON media_assets(profile_id, display_order);`,
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

func (p *Postgres) CreateProfile(username, profession string) (types.Profile, error) {
	profile := types.Profile{
		ID:         uuid.New().String(),
		Username:   username,
		Profession: profession,
	}

	query := `
	INSERT INTO profiles (id, username, profession)
	VALUES ($1, $2, $3)
	RETURNING created_at
	`

	err := p.Db.QueryRow(query, profile.ID, profile.Username, profile.Profession).Scan(&profile.CreatedAt)
	if err != nil {
		return types.Profile{}, err
	}

	return profile, nil
}

func (p *Postgres) GetProfile(id string) (types.Profile, error) {
	var profile types.Profile
	query := `
	SELECT id, username, profession, created_at FROM profiles WHERE id = $1
	`

	err := p.Db.QueryRow(query, id).Scan(&profile.ID, &profile.Username, &profile.Profession, &profile.CreatedAt)
	if err != nil {
		return types.Profile{}, err
	}

	return profile, nil
}

func (p *Postgres) CreateMediaAsset(asset *media.MediaAsset) (*media.MediaAsset, error) {
	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}

	metadata := asset.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	tags := asset.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
	INSERT INTO media_assets (id, profile_id, file_name, kind, object_key, url, size_bytes, category, tags, metadata, display_order)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING created_at
	`

	err = p.Db.QueryRow(query,
		asset.ID, asset.ProfileID, asset.FileName, string(asset.Kind), asset.ObjectKey,
		asset.URL, asset.Size, asset.Category, pq.Array(tags), metadataJSON, asset.DisplayOrder,
	).Scan(&asset.CreatedAt)
	if err != nil {
		return nil, err
	}

	return asset, nil
}

const assetColumns = `id, profile_id, file_name, kind, object_key, url, size_bytes, category, tags, metadata, display_order, created_at`

func scanAsset(row *sql.Row) (*media.MediaAsset, error) {
	var asset media.MediaAsset
	var metadataJSON []byte

	err := row.Scan(
		&asset.ID, &asset.ProfileID, &asset.FileName, &asset.Kind, &asset.ObjectKey,
		&asset.URL, &asset.Size, &asset.Category, pq.Array(&asset.Tags), &metadataJSON,
		&asset.DisplayOrder, &asset.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(metadataJSON, &asset.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}

	return &asset, nil
}

func (p *Postgres) GetMediaAsset(id string) (*media.MediaAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM media_assets WHERE id = $1`
	return scanAsset(p.Db.QueryRow(query, id))
}

func (p *Postgres) ListMediaByProfile(profileID string) ([]media.MediaAsset, error) {
	query := `
	SELECT ` + assetColumns + `
	FROM media_assets
	WHERE profile_id = $1
	ORDER BY display_order ASC, created_at ASC
	`

	rows, err := p.Db.Query(query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := []media.MediaAsset{}
	for rows.Next() {
		var asset media.MediaAsset
		var metadataJSON []byte

		err := rows.Scan(
			&asset.ID, &asset.ProfileID, &asset.FileName, &asset.Kind, &asset.ObjectKey,
			&asset.URL, &asset.Size, &asset.Category, pq.Array(&asset.Tags), &metadataJSON,
			&asset.DisplayOrder, &asset.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadataJSON, &asset.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}

		assets = append(assets, asset)
	}

	return assets, rows.Err()
}

func (p *Postgres) DeleteMediaAsset(id string) error {
	result, err := p.Db.Exec(`DELETE FROM media_assets WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// UpdateDisplayOrder rewrites the display order of a profile's assets to
// match the given ID sequence. IDs that do not belong to the profile are
// ignored by the WHERE clause, so one profile can never reorder another's
// media.
func (p *Postgres) UpdateDisplayOrder(profileID string, orderedIDs []string) error {
	tx, err := p.Db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE media_assets SET display_order = $1 WHERE id = $2 AND profile_id = $3`
	for i, id := range orderedIDs {
		if _, err := tx.Exec(query, i, id, profileID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (p *Postgres) NextDisplayOrder(profileID string) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(display_order) + 1, 0) FROM media_assets WHERE profile_id = $1`

	err := p.Db.QueryRow(query, profileID).Scan(&next)
	if err != nil {
		return 0, err
	}

	return next, nil
}

func (p *Postgres) ObjectKeys() (map[string]struct{}, error) {
	rows, err := p.Db.Query(`SELECT object_key FROM media_assets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys[key] = struct{}{}
	}

	return keys, rows.Err()
}
