package models

import (
	"time"

	dbtypes "github.com/jumak-kr/jumakweb/internal/db"
)

// TastingNote is a user-authored review of one traditional liquor.
// The store owns the authoritative copy; API responses are re-fetched
// after every mutation rather than patched in place.
type TastingNote struct {
	ID            string                `db:"id" json:"_id"`
	UserID        string                `db:"user_id" json:"user_id"`
	AuthorName    string                `db:"author_name" json:"author_name"`
	LiquorID      int                   `db:"liquor_id" json:"liquor_id"`
	LiquorName    string                `db:"liquor_name" json:"liquor_name"`
	Rating        int                   `db:"rating" json:"rating"`
	FlavorProfile dbtypes.FlavorProfile `db:"flavor_profile" json:"flavor_profile"`
	Content       string                `db:"content" json:"content"`
	Tags          dbtypes.StringSlice   `db:"tags" json:"tags"`
	Images        dbtypes.StringSlice   `db:"images" json:"images"`
	IsPublic      bool                  `db:"is_public" json:"is_public"`
	CreatedAt     time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time             `db:"updated_at" json:"updated_at"`
}
