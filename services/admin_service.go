package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Habib-0007/habsblog-api/media"
	"github.com/Habib-0007/habsblog-api/models"
	"github.com/Habib-0007/habsblog-api/utils"
)

// AdminService covers the moderation surface: platform-wide listings, role
// management, the full user-removal cascade and the dashboard rollup.
type AdminService struct {
	db    *gorm.DB
	media media.Store
	posts *PostService
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(db *gorm.DB, store media.Store) *AdminService {
	return &AdminService{db: db, media: store, posts: NewPostService(db, store)}
}

// UserPage is one page of user listing results.
type UserPage struct {
	Users      []*models.User `json:"users"`
	Pagination Pagination     `json:"pagination"`
}

// DashboardStats is the admin dashboard rollup.
type DashboardStats struct {
	Counts struct {
		Users          int64 `json:"users"`
		Posts          int64 `json:"posts"`
		PublishedPosts int64 `json:"publishedPosts"`
		DraftPosts     int64 `json:"draftPosts"`
		Comments       int64 `json:"comments"`
	} `json:"counts"`
	RecentUsers  []*models.User `json:"recentUsers"`
	RecentPosts  []*models.Post `json:"recentPosts"`
	PopularPosts []*models.Post `json:"popularPosts"`
}

// ListUsers returns one page of all accounts, newest first.
func (s *AdminService) ListUsers(actor Actor, page, limit int) (*UserPage, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden("admin access required")
	}

	page, limit = clampPage(page, limit)

	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, ErrInternal(err)
	}

	var users []*models.User
	if err := s.db.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return nil, ErrInternal(err)
	}

	return &UserPage{Users: users, Pagination: newPagination(page, limit, total)}, nil
}

// ListPosts returns one page of every post regardless of status, newest
// first.
func (s *AdminService) ListPosts(actor Actor, page, limit int) (*PostPage, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden("admin access required")
	}

	page, limit = clampPage(page, limit)

	var total int64
	if err := s.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, ErrInternal(err)
	}

	var posts []*models.Post
	if err := s.db.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&posts).Error; err != nil {
		return nil, ErrInternal(err)
	}

	if err := s.posts.hydrate(actor, posts...); err != nil {
		return nil, ErrInternal(err)
	}
	return &PostPage{Posts: posts, Pagination: newPagination(page, limit, total)}, nil
}

// ListComments returns one page of every comment on the platform, newest
// first.
func (s *AdminService) ListComments(actor Actor, page, limit int) (*CommentPage, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden("admin access required")
	}

	page, limit = clampPage(page, limit)

	var total int64
	if err := s.db.Model(&models.Comment{}).Count(&total).Error; err != nil {
		return nil, ErrInternal(err)
	}

	var comments []*models.Comment
	if err := s.db.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&comments).Error; err != nil {
		return nil, ErrInternal(err)
	}

	authorIDs := make([]uint, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := loadAuthors(s.db, authorIDs)
	if err != nil {
		return nil, ErrInternal(err)
	}
	for _, c := range comments {
		c.Author = authors[c.AuthorID]
		if c.Images == nil {
			c.Images = models.StringList{}
		}
	}

	return &CommentPage{Comments: comments, Pagination: newPagination(page, limit, total)}, nil
}

// UpdateUserRole promotes or demotes an account.
func (s *AdminService) UpdateUserRole(actor Actor, userID uint, role string) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden("admin access required")
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, ErrValidation("role must be user or admin")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("user not found")
		}
		return nil, ErrInternal(err)
	}

	if err := s.db.Model(&user).Update("role", role).Error; err != nil {
		return nil, ErrInternal(err)
	}
	user.Role = role
	return &user, nil
}

// DeleteUser removes an account and everything it authored: its posts with
// their comment threads and like memberships, its comments on other posts,
// and every media asset those records owned. Records go in one transaction;
// media cleanup is best-effort around it.
func (s *AdminService) DeleteUser(actor Actor, userID uint) error {
	if !actor.IsAdmin() {
		return ErrForbidden("admin access required")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound("user not found")
		}
		return ErrInternal(err)
	}

	var posts []models.Post
	if err := s.db.Where("author_id = ?", userID).Find(&posts).Error; err != nil {
		return ErrInternal(err)
	}
	postIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}

	// Comments subject to removal: every thread under the user's posts plus
	// the user's own comments elsewhere.
	var comments []models.Comment
	query := s.db.Where("author_id = ?", userID)
	if len(postIDs) > 0 {
		query = s.db.Where("author_id = ? OR post_id IN ?", userID, postIDs)
	}
	if err := query.Find(&comments).Error; err != nil {
		return ErrInternal(err)
	}

	s.cleanupAsset(user.AvatarAssetID)
	for _, p := range posts {
		s.cleanupAsset(p.CoverAssetID)
	}
	for _, c := range comments {
		for _, assetID := range c.ImageAssetIDs {
			s.cleanupAsset(assetID)
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		commentIDs := make([]uint, 0, len(comments))
		for _, c := range comments {
			commentIDs = append(commentIDs, c.ID)
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostTag{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.AuthToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return ErrInternal(err)
	}

	utils.InvalidatePostCaches()
	return nil
}

// Dashboard assembles the counts and highlight lists for the admin landing
// page.
func (s *AdminService) Dashboard(actor Actor) (*DashboardStats, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden("admin access required")
	}

	stats := &DashboardStats{}
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Counts.Users, s.db.Model(&models.User{})},
		{&stats.Counts.Posts, s.db.Model(&models.Post{})},
		{&stats.Counts.PublishedPosts, s.db.Model(&models.Post{}).Where("status = ?", models.StatusPublished)},
		{&stats.Counts.DraftPosts, s.db.Model(&models.Post{}).Where("status = ?", models.StatusDraft)},
		{&stats.Counts.Comments, s.db.Model(&models.Comment{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, ErrInternal(err)
		}
	}

	if err := s.db.Order("created_at DESC").Limit(5).Find(&stats.RecentUsers).Error; err != nil {
		return nil, ErrInternal(err)
	}
	if err := s.db.Order("created_at DESC").Limit(5).Find(&stats.RecentPosts).Error; err != nil {
		return nil, ErrInternal(err)
	}
	if err := s.db.Where("status = ?", models.StatusPublished).
		Order("view_count DESC, like_count DESC").Limit(5).Find(&stats.PopularPosts).Error; err != nil {
		return nil, ErrInternal(err)
	}

	if err := s.posts.hydrate(actor, stats.RecentPosts...); err != nil {
		return nil, ErrInternal(err)
	}
	if err := s.posts.hydrate(actor, stats.PopularPosts...); err != nil {
		return nil, ErrInternal(err)
	}

	return stats, nil
}

func (s *AdminService) cleanupAsset(assetID string) {
	if assetID == "" {
		return
	}
	if err := s.media.Delete(assetID); err != nil && utils.Sugar != nil {
		utils.Sugar.Warnf("media cleanup failed asset=%s err=%v", assetID, err)
	}
}
