package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Post publication states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post represents a blog post authored by a user. Slug and excerpt are
// derived fields maintained by the post service whenever title or content
// change.
type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Slug         string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Excerpt      string    `gorm:"size:512" json:"excerpt"`
	CoverImage   string    `gorm:"size:512" json:"cover_image,omitempty"`
	CoverAssetID string    `gorm:"size:512" json:"-"`
	AuthorID     uint      `gorm:"index;not null" json:"author_id"`
	Status       string    `gorm:"size:16;index;default:'draft'" json:"status"`
	ViewCount    int64     `gorm:"default:0" json:"view_count"`
	LikeCount    int64     `gorm:"default:0" json:"like_count"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Tags live in post_tags rows so the tag filter stays an exact match;
	// the service loads and replaces them around the persisted record.
	Tags   []string   `gorm:"-" json:"tags"`
	Author PublicUser `gorm:"-" json:"author,omitempty"`
	// Set for the requesting actor on reads; not stored.
	LikedByMe bool `gorm:"-" json:"liked_by_me"`
}

// PostTag is one tag attached to a post.
type PostTag struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	PostID uint   `gorm:"index:idx_post_tag,unique;not null" json:"-"`
	Tag    string `gorm:"size:64;index:idx_post_tag,unique;index;not null" json:"-"`
}

// PostLike is one user's membership in a post's liked-by set. The composite
// unique index is what keeps concurrent toggles from double-counting.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PostID    uint      `gorm:"index:idx_post_like,unique;not null" json:"post_id"`
	UserID    uint      `gorm:"index:idx_post_like,unique;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StringList stores a []string as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, (*[]string)(s))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(s))
	default:
		return errors.New("unsupported type for StringList")
	}
}

// OwnerID identifies the owning user for authorization checks.
func (p *Post) OwnerID() uint { return p.AuthorID }
