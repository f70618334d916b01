package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Habib-0007/habsblog-api/media"
	"github.com/Habib-0007/habsblog-api/models"
	"github.com/Habib-0007/habsblog-api/utils"
)

// CommentService orchestrates the comment lifecycle: threading validation,
// image handling, the like-toggle state machine and the one-level reply
// cascade on delete.
type CommentService struct {
	db    *gorm.DB
	media media.Store
}

// NewCommentService creates a new CommentService instance.
func NewCommentService(db *gorm.DB, store media.Store) *CommentService {
	return &CommentService{db: db, media: store}
}

// CreateCommentInput carries the fields accepted on creation. Images are
// base64 data-URI payloads.
type CreateCommentInput struct {
	PostID   uint
	ParentID *uint
	Content  string
	Images   []string
}

// UpdateCommentInput carries partial update fields. A nil Images slice
// leaves attachments untouched; a non-nil slice replaces them.
type UpdateCommentInput struct {
	Content string
	Images  []string
}

// CommentFilters selects one page of a post's comments: top-level when
// ParentID is nil, otherwise the direct replies of that parent.
type CommentFilters struct {
	PostID   uint
	ParentID *uint
	Page     int
	Limit    int
}

// CommentPage is one page of list results.
type CommentPage struct {
	Comments   []*models.Comment `json:"comments"`
	Pagination Pagination        `json:"pagination"`
}

// Create persists a comment against an existing post. A parent comment, if
// given, must exist and belong to the same post; a mismatch is rejected,
// never silently reparented. Image uploads that fail mid-batch roll back
// the already-uploaded assets and abort the create.
func (s *CommentService) Create(actor Actor, in CreateCommentInput) (*models.Comment, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated("authentication required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrValidation("comment content is required")
	}

	var post models.Post
	if err := s.db.First(&post, in.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("post not found")
		}
		return nil, ErrInternal(err)
	}

	if in.ParentID != nil {
		var parent models.Comment
		if err := s.db.First(&parent, *in.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound("parent comment not found")
			}
			return nil, ErrInternal(err)
		}
		if parent.PostID != in.PostID {
			return nil, ErrValidation("parent comment does not belong to this post")
		}
	}

	urls, assetIDs, err := s.uploadImages(in.Images)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:        in.PostID,
		AuthorID:      actor.ID,
		ParentID:      in.ParentID,
		Content:       strings.TrimSpace(in.Content),
		Images:        urls,
		ImageAssetIDs: assetIDs,
	}
	if err := s.db.Create(comment).Error; err != nil {
		s.cleanupAssets(assetIDs)
		return nil, ErrInternal(err)
	}

	if err := s.hydrate(actor, comment); err != nil {
		return nil, ErrInternal(err)
	}
	return comment, nil
}

// List returns one page of a post's top-level comments or of a parent's
// direct replies, newest first.
func (s *CommentService) List(actor Actor, f CommentFilters) (*CommentPage, error) {
	var exists int64
	if err := s.db.Model(&models.Post{}).Where("id = ?", f.PostID).Count(&exists).Error; err != nil {
		return nil, ErrInternal(err)
	}
	if exists == 0 {
		return nil, ErrNotFound("post not found")
	}

	page, limit := clampPage(f.Page, f.Limit)
	query := s.db.Model(&models.Comment{}).Where("post_id = ?", f.PostID)
	if f.ParentID != nil {
		query = query.Where("parent_id = ?", *f.ParentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, ErrInternal(err)
	}

	var comments []*models.Comment
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&comments).Error; err != nil {
		return nil, ErrInternal(err)
	}

	if err := s.hydrate(actor, comments...); err != nil {
		return nil, ErrInternal(err)
	}
	return &CommentPage{Comments: comments, Pagination: newPagination(page, limit, total)}, nil
}

// Get fetches a comment with its direct replies attached.
func (s *CommentService) Get(actor Actor, id uint) (*models.Comment, error) {
	comment, err := s.findByID(id)
	if err != nil {
		return nil, err
	}

	var replies []models.Comment
	if err := s.db.Where("parent_id = ?", id).Order("created_at ASC").Find(&replies).Error; err != nil {
		return nil, ErrInternal(err)
	}

	all := make([]*models.Comment, 0, len(replies)+1)
	all = append(all, comment)
	for i := range replies {
		all = append(all, &replies[i])
	}
	if err := s.hydrate(actor, all...); err != nil {
		return nil, ErrInternal(err)
	}
	comment.Replies = replies
	return comment, nil
}

// Update applies a partial update. Replacing images deletes the old assets
// best-effort before uploading the new batch; a content change marks the
// comment as edited.
func (s *CommentService) Update(actor Actor, id uint, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.findByID(id)
	if err != nil {
		return nil, err
	}

	if !CanAct(actor, comment, ActionUpdate) {
		return nil, ErrForbidden("not authorized to update this comment")
	}

	changed := false
	if in.Images != nil {
		s.cleanupAssets(comment.ImageAssetIDs)
		urls, assetIDs, err := s.uploadImages(in.Images)
		if err != nil {
			return nil, err
		}
		comment.Images = urls
		comment.ImageAssetIDs = assetIDs
		comment.IsEdited = true
		changed = true
	}
	if content := strings.TrimSpace(in.Content); content != "" && content != comment.Content {
		comment.Content = content
		comment.IsEdited = true
		changed = true
	}

	if changed {
		if err := s.db.Omit("like_count").Save(comment).Error; err != nil {
			return nil, ErrInternal(err)
		}
	}

	if err := s.hydrate(actor, comment); err != nil {
		return nil, ErrInternal(err)
	}
	return comment, nil
}

// Delete removes a comment, its direct replies and every attached asset.
// The reply cascade is one level deep: only comments whose parent is the
// deleted comment are removed.
func (s *CommentService) Delete(actor Actor, id uint) error {
	comment, err := s.findByID(id)
	if err != nil {
		return err
	}

	if !CanAct(actor, comment, ActionDelete) {
		return ErrForbidden("not authorized to delete this comment")
	}

	var replies []models.Comment
	if err := s.db.Where("parent_id = ?", id).Find(&replies).Error; err != nil {
		return ErrInternal(err)
	}

	s.cleanupAssets(comment.ImageAssetIDs)
	for _, r := range replies {
		s.cleanupAssets(r.ImageAssetIDs)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(replies)+1)
		ids = append(ids, id)
		for _, r := range replies {
			ids = append(ids, r.ID)
		}
		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
	if err != nil {
		return ErrInternal(err)
	}
	return nil
}

// ToggleLike mirrors the post like-toggle for comments.
func (s *CommentService) ToggleLike(actor Actor, commentID uint) (liked bool, likeCount int64, err error) {
	if actor.Anonymous() {
		return false, 0, ErrUnauthenticated("authentication required")
	}
	if _, err := s.findByID(commentID); err != nil {
		return false, 0, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CommentLike
		findErr := tx.Where("comment_id = ? AND user_id = ?", commentID, actor.ID).First(&existing).Error
		switch {
		case findErr == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			liked = false
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			createErr := tx.Create(&models.CommentLike{CommentID: commentID, UserID: actor.ID}).Error
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				if err := tx.Where("comment_id = ? AND user_id = ?", commentID, actor.ID).
					Delete(&models.CommentLike{}).Error; err != nil {
					return err
				}
				liked = false
			} else if createErr != nil {
				return createErr
			} else {
				liked = true
			}
		default:
			return findErr
		}

		if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("like_count",
				gorm.Expr("(SELECT COUNT(*) FROM comment_likes WHERE comment_id = ?)", commentID)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Select("like_count").Where("id = ?", commentID).Scan(&likeCount).Error
	})
	if err != nil {
		return false, 0, ErrInternal(err)
	}
	return liked, likeCount, nil
}

func (s *CommentService) findByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("comment not found")
		}
		return nil, ErrInternal(err)
	}
	return &comment, nil
}

// uploadImages stores a batch of data-URI payloads. On any failure the
// already-uploaded assets are removed and the whole batch fails.
func (s *CommentService) uploadImages(payloads []string) (models.StringList, models.StringList, error) {
	if len(payloads) == 0 {
		return models.StringList{}, models.StringList{}, nil
	}
	urls := make(models.StringList, 0, len(payloads))
	assetIDs := make(models.StringList, 0, len(payloads))
	for _, p := range payloads {
		asset, err := s.media.Upload(p, "comments/images")
		if err != nil {
			s.cleanupAssets(assetIDs)
			return nil, nil, ErrDependency("image upload failed", err)
		}
		urls = append(urls, asset.URL)
		assetIDs = append(assetIDs, asset.ID)
	}
	return urls, assetIDs, nil
}

func (s *CommentService) cleanupAssets(assetIDs []string) {
	for _, id := range assetIDs {
		if id == "" {
			continue
		}
		if err := s.media.Delete(id); err != nil && utils.Sugar != nil {
			utils.Sugar.Warnf("media cleanup failed asset=%s err=%v", id, err)
		}
	}
}

// hydrate attaches author shapes and the actor's like state.
func (s *CommentService) hydrate(actor Actor, comments ...*models.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(comments))
	authorIDs := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
		authorIDs = append(authorIDs, c.AuthorID)
		if c.Images == nil {
			c.Images = models.StringList{}
		}
	}

	authors, err := loadAuthors(s.db, authorIDs)
	if err != nil {
		return err
	}

	likedByMe := make(map[uint]bool)
	if !actor.Anonymous() {
		var likes []models.CommentLike
		if err := s.db.Where("comment_id IN ? AND user_id = ?", ids, actor.ID).Find(&likes).Error; err != nil {
			return err
		}
		for _, l := range likes {
			likedByMe[l.CommentID] = true
		}
	}

	for _, c := range comments {
		c.Author = authors[c.AuthorID]
		c.LikedByMe = likedByMe[c.ID]
	}
	return nil
}
