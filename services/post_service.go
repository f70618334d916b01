package services

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Habib-0007/habsblog-api/media"
	"github.com/Habib-0007/habsblog-api/models"
	"github.com/Habib-0007/habsblog-api/utils"
)

const excerptLength = 160

// PostService orchestrates the post lifecycle: authorization, slug and
// excerpt derivation, cover media handling, cascading deletion and the
// like-toggle state machine.
type PostService struct {
	db    *gorm.DB
	media media.Store
}

// NewPostService creates a new PostService instance.
func NewPostService(db *gorm.DB, store media.Store) *PostService {
	return &PostService{db: db, media: store}
}

// CreatePostInput carries the fields accepted on creation. CoverImage is a
// base64 data-URI payload, not a URL.
type CreatePostInput struct {
	Title      string
	Content    string
	Excerpt    string
	CoverImage string
	Tags       []string
	Status     string
}

// UpdatePostInput carries partial update fields. Empty strings and nil
// slices mean "leave untouched".
type UpdatePostInput struct {
	Title      string
	Content    string
	Excerpt    string
	CoverImage string
	Tags       []string
	Status     string
}

// PostFilters selects and orders a page of posts.
type PostFilters struct {
	Search string
	Tag    string
	Author uint
	Status string
	SortBy string
	Page   int
	Limit  int
}

// PostPage is one page of list results.
type PostPage struct {
	Posts      []*models.Post `json:"posts"`
	Pagination Pagination     `json:"pagination"`
}

// Create persists a new post owned by the actor. A supplied cover image is
// uploaded first; an upload failure aborts the create with no record
// persisted.
func (s *PostService) Create(actor Actor, in CreatePostInput) (*models.Post, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated("authentication required")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrValidation("title is required")
	}
	if len([]rune(title)) > 200 {
		return nil, ErrValidation("title cannot be more than 200 characters")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrValidation("content is required")
	}

	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	if status != models.StatusDraft && status != models.StatusPublished {
		return nil, ErrValidation("status must be draft or published")
	}

	post := &models.Post{
		Title:    title,
		Slug:     utils.Slugify(title),
		Content:  in.Content,
		AuthorID: actor.ID,
		Status:   status,
		Tags:     normalizeTags(in.Tags),
	}

	post.Excerpt = in.Excerpt
	if post.Excerpt == "" {
		post.Excerpt = utils.MarkdownToPlainText(in.Content, excerptLength)
	}

	if in.CoverImage != "" {
		asset, err := s.media.Upload(in.CoverImage, "posts/covers")
		if err != nil {
			return nil, ErrDependency("cover image upload failed", err)
		}
		post.CoverImage = asset.URL
		post.CoverAssetID = asset.ID
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return replacePostTags(tx, post.ID, post.Tags)
	})
	if err != nil {
		// The create never happened; do not leak the uploaded cover.
		s.cleanupAsset(post.CoverAssetID)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict("a post with this title already exists")
		}
		return nil, ErrInternal(err)
	}

	utils.InvalidatePostCaches()
	return post, nil
}

// Get fetches a post by numeric id or by slug, enforcing draft visibility,
// and atomically increments the view counter.
func (s *PostService) Get(actor Actor, idOrSlug string) (*models.Post, error) {
	post, err := s.find(idOrSlug)
	if err != nil {
		return nil, err
	}

	if !CanAct(actor, post, ActionRead) {
		return nil, ErrForbidden("not authorized to view this post")
	}

	// Single atomic statement; load-mutate-save would lose concurrent views.
	if err := s.db.Model(&models.Post{}).Where("id = ?", post.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		return nil, ErrInternal(err)
	}
	post.ViewCount++

	if err := s.hydrate(actor, post); err != nil {
		return nil, ErrInternal(err)
	}
	return post, nil
}

// Resolve looks a post up by numeric id or slug and checks read access
// without counting a view. Used when a post is the anchor of another
// operation rather than the thing being read.
func (s *PostService) Resolve(actor Actor, idOrSlug string) (*models.Post, error) {
	post, err := s.find(idOrSlug)
	if err != nil {
		return nil, err
	}
	if !CanAct(actor, post, ActionRead) {
		return nil, ErrForbidden("not authorized to view this post")
	}
	return post, nil
}

// List assembles a filtered, sorted, paged result set. Drafts are excluded
// unless the status filter explicitly requests them from an authorized
// caller; non-admin callers asking for drafts are scoped to their own.
func (s *PostService) List(actor Actor, f PostFilters) (*PostPage, error) {
	status := f.Status
	if status == "" {
		status = models.StatusPublished
	}
	if status != models.StatusDraft && status != models.StatusPublished {
		return nil, ErrValidation("status must be draft or published")
	}

	if status == models.StatusDraft && !actor.IsAdmin() {
		if actor.Anonymous() || (f.Author != 0 && f.Author != actor.ID) {
			return nil, ErrForbidden("not authorized to list drafts")
		}
		f.Author = actor.ID
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "newest"
	}
	var order string
	switch sortBy {
	case "newest":
		order = "created_at DESC"
	case "oldest":
		order = "created_at ASC"
	case "popular":
		order = "view_count DESC, like_count DESC"
	default:
		return nil, ErrValidation("sort must be newest, oldest or popular")
	}

	page, limit := clampPage(f.Page, f.Limit)

	query := s.db.Model(&models.Post{}).Where("status = ?", status)
	if search := strings.TrimSpace(f.Search); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(excerpt) LIKE ?",
			needle, needle, needle,
		)
	}
	if f.Tag != "" {
		query = query.Where("id IN (?)",
			s.db.Model(&models.PostTag{}).Select("post_id").Where("tag = ?", strings.ToLower(f.Tag)))
	}
	if f.Author != 0 {
		query = query.Where("author_id = ?", f.Author)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, ErrInternal(err)
	}

	var posts []*models.Post
	if err := query.Order(order).Offset((page - 1) * limit).Limit(limit).Find(&posts).Error; err != nil {
		return nil, ErrInternal(err)
	}

	if err := s.hydrate(actor, posts...); err != nil {
		return nil, ErrInternal(err)
	}

	return &PostPage{Posts: posts, Pagination: newPagination(page, limit, total)}, nil
}

// ListDrafts returns the actor's own drafts, most recently updated first.
func (s *PostService) ListDrafts(actor Actor, page, limit int) (*PostPage, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated("authentication required")
	}

	page, limit = clampPage(page, limit)
	query := s.db.Model(&models.Post{}).
		Where("author_id = ? AND status = ?", actor.ID, models.StatusDraft)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, ErrInternal(err)
	}

	var posts []*models.Post
	if err := query.Order("updated_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&posts).Error; err != nil {
		return nil, ErrInternal(err)
	}

	if err := s.hydrate(actor, posts...); err != nil {
		return nil, ErrInternal(err)
	}
	return &PostPage{Posts: posts, Pagination: newPagination(page, limit, total)}, nil
}

// Update applies a partial update. Only the fields present in the request
// are touched; the slug is re-derived only when the title changes.
func (s *PostService) Update(actor Actor, id uint, in UpdatePostInput) (*models.Post, error) {
	post, err := s.findByID(id)
	if err != nil {
		return nil, err
	}

	if !CanAct(actor, post, ActionUpdate) {
		return nil, ErrForbidden("not authorized to update this post")
	}

	if in.CoverImage != "" {
		// Replacing the cover: old asset cleanup is best-effort and must
		// not abort the update.
		s.cleanupAsset(post.CoverAssetID)
		asset, err := s.media.Upload(in.CoverImage, "posts/covers")
		if err != nil {
			return nil, ErrDependency("cover image upload failed", err)
		}
		post.CoverImage = asset.URL
		post.CoverAssetID = asset.ID
	}

	if title := strings.TrimSpace(in.Title); title != "" && title != post.Title {
		if len([]rune(title)) > 200 {
			return nil, ErrValidation("title cannot be more than 200 characters")
		}
		post.Title = title
		post.Slug = utils.Slugify(title)
	}
	if in.Content != "" {
		post.Content = in.Content
	}
	if in.Excerpt != "" {
		post.Excerpt = in.Excerpt
	}
	if in.Status != "" {
		if in.Status != models.StatusDraft && in.Status != models.StatusPublished {
			return nil, ErrValidation("status must be draft or published")
		}
		post.Status = in.Status
	}
	if in.Tags != nil {
		post.Tags = normalizeTags(in.Tags)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Counters are maintained by atomic statements elsewhere; writing
		// our loaded values back would lose concurrent increments.
		if err := tx.Omit("view_count", "like_count").Save(post).Error; err != nil {
			return err
		}
		if in.Tags != nil {
			return replacePostTags(tx, post.ID, post.Tags)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict("a post with this title already exists")
		}
		return nil, ErrInternal(err)
	}

	utils.InvalidatePostCaches()

	if err := s.hydrate(actor, post); err != nil {
		return nil, ErrInternal(err)
	}
	return post, nil
}

// Delete removes a post and cascades to its comments, like memberships,
// tags and media assets. Record deletion happens in one transaction so a
// caller that observes the post as gone never finds orphaned comments;
// media cleanup is best-effort around it.
func (s *PostService) Delete(actor Actor, id uint) error {
	post, err := s.findByID(id)
	if err != nil {
		return err
	}

	if !CanAct(actor, post, ActionDelete) {
		return ErrForbidden("not authorized to delete this post")
	}

	var comments []models.Comment
	if err := s.db.Where("post_id = ?", id).Find(&comments).Error; err != nil {
		return ErrInternal(err)
	}

	s.cleanupAsset(post.CoverAssetID)
	for _, c := range comments {
		for _, assetID := range c.ImageAssetIDs {
			s.cleanupAsset(assetID)
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		commentIDs := make([]uint, 0, len(comments))
		for _, c := range comments {
			commentIDs = append(commentIDs, c.ID)
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return ErrInternal(err)
	}

	utils.InvalidatePostCaches()
	return nil
}

// ToggleLike flips the actor's membership in the post's liked-by set and
// keeps the denormalized counter equal to the set's cardinality within the
// same transaction. Returns the actor's resulting state.
func (s *PostService) ToggleLike(actor Actor, postID uint) (liked bool, likeCount int64, err error) {
	if actor.Anonymous() {
		return false, 0, ErrUnauthenticated("authentication required")
	}
	if _, err := s.findByID(postID); err != nil {
		return false, 0, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PostLike
		findErr := tx.Where("post_id = ? AND user_id = ?", postID, actor.ID).First(&existing).Error
		switch {
		case findErr == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			liked = false
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			createErr := tx.Create(&models.PostLike{PostID: postID, UserID: actor.ID}).Error
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				// Lost a race with our own double-submit: fall back to unlike.
				if err := tx.Where("post_id = ? AND user_id = ?", postID, actor.ID).
					Delete(&models.PostLike{}).Error; err != nil {
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

		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count",
				gorm.Expr("(SELECT COUNT(*) FROM post_likes WHERE post_id = ?)", postID)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Select("like_count").Where("id = ?", postID).Scan(&likeCount).Error
	})
	if err != nil {
		return false, 0, ErrInternal(err)
	}

	utils.InvalidatePostCaches()
	return liked, likeCount, nil
}

func (s *PostService) find(idOrSlug string) (*models.Post, error) {
	if id, err := strconv.ParseUint(idOrSlug, 10, 64); err == nil {
		return s.findByID(uint(id))
	}
	var post models.Post
	if err := s.db.Where("slug = ?", idOrSlug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("post not found")
		}
		return nil, ErrInternal(err)
	}
	return &post, nil
}

func (s *PostService) findByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("post not found")
		}
		return nil, ErrInternal(err)
	}
	return &post, nil
}

// hydrate attaches tags, author shapes and the actor's like state.
func (s *PostService) hydrate(actor Actor, posts ...*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		authorIDs = append(authorIDs, p.AuthorID)
		if p.Tags == nil {
			p.Tags = []string{}
		}
	}

	var tagRows []models.PostTag
	if err := s.db.Where("post_id IN ?", ids).Find(&tagRows).Error; err != nil {
		return err
	}
	tagsByPost := make(map[uint][]string)
	for _, row := range tagRows {
		tagsByPost[row.PostID] = append(tagsByPost[row.PostID], row.Tag)
	}

	authors, err := loadAuthors(s.db, authorIDs)
	if err != nil {
		return err
	}

	likedByMe := make(map[uint]bool)
	if !actor.Anonymous() {
		var likes []models.PostLike
		if err := s.db.Where("post_id IN ? AND user_id = ?", ids, actor.ID).Find(&likes).Error; err != nil {
			return err
		}
		for _, l := range likes {
			likedByMe[l.PostID] = true
		}
	}

	for _, p := range posts {
		if tags, ok := tagsByPost[p.ID]; ok {
			p.Tags = tags
		}
		p.Author = authors[p.AuthorID]
		p.LikedByMe = likedByMe[p.ID]
	}
	return nil
}

// cleanupAsset deletes a stored media object, best-effort: failure is
// logged and never surfaced to the caller.
func (s *PostService) cleanupAsset(assetID string) {
	if assetID == "" {
		return
	}
	if err := s.media.Delete(assetID); err != nil && utils.Sugar != nil {
		utils.Sugar.Warnf("media cleanup failed asset=%s err=%v", assetID, err)
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func replacePostTags(tx *gorm.DB, postID uint, tags []string) error {
	if err := tx.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error; err != nil {
		return err
	}
	for _, t := range tags {
		if err := tx.Create(&models.PostTag{PostID: postID, Tag: t}).Error; err != nil {
			return err
		}
	}
	return nil
}
