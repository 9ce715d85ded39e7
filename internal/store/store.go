package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	dbtypes "github.com/jumak-kr/jumakweb/internal/db"
	"github.com/jumak-kr/jumakweb/pkg/models"
)

// ErrNotFound is returned when an update or delete targets a note id that
// does not exist.
var ErrNotFound = errors.New("note not found")

type PgStore struct {
	db *sqlx.DB
}

func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{db: sqlx.NewDb(db, "postgres")}
}

var (
	sharedOnce sync.Once
	shared     *PgStore
	sharedErr  error
)

// Shared opens the process-wide store on first call, waits for the database
// to come up, runs migrations, and returns the same handle from then on.
// Later calls return the original result and ignore their arguments.
func Shared(dsn string, log zerolog.Logger) (*PgStore, error) {
	sharedOnce.Do(func() {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			sharedErr = fmt.Errorf("db open: %w", err)
			return
		}
		// simple ping + wait (db might be starting in docker)
		for i := 0; i < 10; i++ {
			if err = db.Ping(); err == nil {
				break
			}
			log.Warn().Err(err).Int("attempt", i+1).Msg("waiting for db")
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			sharedErr = fmt.Errorf("db connect: %w", err)
			return
		}
		if err := RunMigrations(db); err != nil {
			sharedErr = fmt.Errorf("migrations: %w", err)
			return
		}
		shared = NewPgStore(db)
	})
	return shared, sharedErr
}

func RunMigrations(db *sql.DB) error {
	initSQL := `
CREATE TABLE IF NOT EXISTS tasting_notes(
  id UUID PRIMARY KEY,
  user_id TEXT NOT NULL,
  author_name TEXT,
  liquor_id INTEGER NOT NULL,
  liquor_name TEXT,
  rating INTEGER NOT NULL,
  flavor_profile JSONB,
  content TEXT,
  tags JSONB,
  images JSONB,
  is_public BOOLEAN DEFAULT TRUE,
  created_at TIMESTAMP,
  updated_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notes_user ON tasting_notes(user_id);
CREATE INDEX IF NOT EXISTS idx_notes_liquor ON tasting_notes(liquor_id);
CREATE INDEX IF NOT EXISTS idx_notes_created ON tasting_notes(created_at);
-- GIN index for jsonb array search on tags
CREATE INDEX IF NOT EXISTS idx_notes_tags ON tasting_notes USING GIN (tags);
`
	_, err := db.Exec(initSQL)
	return err
}

const noteColumns = `id,user_id,author_name,liquor_id,liquor_name,rating,flavor_profile,content,tags,images,is_public,created_at,updated_at`

// Create inserts a new note and returns it with the generated id and
// timestamps filled in. Tags and images marshal to jsonb via dbtypes.
func (p *PgStore) Create(n *models.TastingNote) (*models.TastingNote, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Tags == nil {
		n.Tags = dbtypes.StringSlice{}
	}
	if n.Images == nil {
		n.Images = dbtypes.StringSlice{}
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	stmt := `
INSERT INTO tasting_notes (` + noteColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8,$9::jsonb,$10::jsonb,$11,$12,$13)
`
	_, err := p.db.Exec(stmt,
		n.ID,
		n.UserID,
		n.AuthorName,
		n.LiquorID,
		n.LiquorName,
		n.Rating,
		n.FlavorProfile,
		n.Content,
		n.Tags,
		n.Images,
		n.IsPublic,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note id=%s: %w", n.ID, err)
	}
	return n, nil
}

func (p *PgStore) ByUser(userID string) ([]*models.TastingNote, error) {
	rows := []*models.TastingNote{}
	query := `
SELECT ` + noteColumns + `
FROM tasting_notes
WHERE user_id = $1
ORDER BY created_at DESC
`
	err := p.db.Select(&rows, query, userID)
	return rows, err
}

func (p *PgStore) ByLiquor(liquorID int) ([]*models.TastingNote, error) {
	rows := []*models.TastingNote{}
	query := `
SELECT ` + noteColumns + `
FROM tasting_notes
WHERE liquor_id = $1 AND is_public = TRUE
ORDER BY created_at DESC
`
	err := p.db.Select(&rows, query, liquorID)
	return rows, err
}

// Public returns the newest public notes, for the community feed.
func (p *PgStore) Public(limit int) ([]*models.TastingNote, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows := []*models.TastingNote{}
	query := `
SELECT ` + noteColumns + `
FROM tasting_notes
WHERE is_public = TRUE
ORDER BY created_at DESC
LIMIT $1
`
	err := p.db.Select(&rows, query, limit)
	return rows, err
}

func (p *PgStore) ByID(id string) (*models.TastingNote, error) {
	rows := []*models.TastingNote{}
	query := `
SELECT ` + noteColumns + `
FROM tasting_notes
WHERE id = $1
LIMIT 1
`
	if err := p.db.Select(&rows, query, id); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Update rewrites the editable fields of a note owned by userID. The
// ownership check rides in the WHERE clause so a foreign id and a missing id
// both come back as ErrNotFound.
func (p *PgStore) Update(id, userID string, n *models.TastingNote) (*models.TastingNote, error) {
	if n.Tags == nil {
		n.Tags = dbtypes.StringSlice{}
	}
	if n.Images == nil {
		n.Images = dbtypes.StringSlice{}
	}
	stmt := `
UPDATE tasting_notes SET
 rating=$1,
 flavor_profile=$2::jsonb,
 content=$3,
 tags=$4::jsonb,
 images=$5::jsonb,
 is_public=$6,
 updated_at=$7
WHERE id=$8 AND user_id=$9
`
	res, err := p.db.Exec(stmt,
		n.Rating,
		n.FlavorProfile,
		n.Content,
		n.Tags,
		n.Images,
		n.IsPublic,
		time.Now().UTC(),
		id,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update note id=%s: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return p.ByID(id)
}

func (p *PgStore) Delete(id, userID string) error {
	res, err := p.db.Exec("DELETE FROM tasting_notes WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
