package models

import "time"

// Comment represents a reply to a post. A comment may itself reply to a
// parent comment on the same post; replies are looked up by parent id
// rather than stored as a child list.
type Comment struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	PostID   uint  `gorm:"index:idx_comment_post;not null" json:"post_id"`
	AuthorID uint  `gorm:"index;not null" json:"author_id"`
	ParentID *uint `gorm:"index" json:"parent_id,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`

	Images       StringList `gorm:"type:text" json:"images"`
	ImageAssetIDs StringList `gorm:"type:text" json:"-"`

	LikeCount int64 `gorm:"default:0" json:"like_count"`
	IsEdited  bool  `gorm:"default:false" json:"is_edited"`

	CreatedAt time.Time `gorm:"index:idx_comment_post" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author    PublicUser `gorm:"-" json:"author,omitempty"`
	Replies   []Comment  `gorm:"-" json:"replies,omitempty"`
	LikedByMe bool       `gorm:"-" json:"liked_by_me"`
}

// CommentLike is one user's membership in a comment's liked-by set.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CommentID uint      `gorm:"index:idx_comment_like,unique;not null" json:"comment_id"`
	UserID    uint      `gorm:"index:idx_comment_like,unique;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnerID identifies the owning user for authorization checks.
func (c *Comment) OwnerID() uint { return c.AuthorID }
