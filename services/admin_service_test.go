package services

import (
	"fmt"
	"testing"

	"github.com/Habib-0007/habsblog-api/models"
)

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db, newFakeStore())
	_, user := createUser(t, db, "alice", models.RoleUser)

	tests := []struct {
		name string
		call func() error
	}{
		{"list users", func() error { _, err := svc.ListUsers(user, 1, 10); return err }},
		{"list posts", func() error { _, err := svc.ListPosts(user, 1, 10); return err }},
		{"list comments", func() error { _, err := svc.ListComments(user, 1, 10); return err }},
		{"update role", func() error { _, err := svc.UpdateUserRole(user, user.ID, models.RoleAdmin); return err }},
		{"delete user", func() error { return svc.DeleteUser(user, user.ID) }},
		{"dashboard", func() error { _, err := svc.Dashboard(user); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := kindOf(t, tt.call()); got != KindForbidden {
				t.Errorf("kind = %v, want %v", got, KindForbidden)
			}
		})
	}
}

func TestAdminUpdateUserRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db, newFakeStore())
	_, admin := createUser(t, db, "carol", models.RoleAdmin)
	target, _ := createUser(t, db, "alice", models.RoleUser)

	if _, err := svc.UpdateUserRole(admin, target.ID, "superuser"); KindOf(err) != KindValidation {
		t.Errorf("bad role kind = %v, want %v", KindOf(err), KindValidation)
	}
	if _, err := svc.UpdateUserRole(admin, 9999, models.RoleAdmin); KindOf(err) != KindNotFound {
		t.Errorf("unknown user kind = %v, want %v", KindOf(err), KindNotFound)
	}

	updated, err := svc.UpdateUserRole(admin, target.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateUserRole() error = %v", err)
	}
	if updated.Role != models.RoleAdmin {
		t.Errorf("Role = %q, want %q", updated.Role, models.RoleAdmin)
	}
}

func TestAdminDeleteUserCascades(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewAdminService(db, store)
	posts := NewPostService(db, store)
	comments := NewCommentService(db, store)
	_, admin := createUser(t, db, "carol", models.RoleAdmin)
	doomed, doomedActor := createUser(t, db, "alice", models.RoleUser)
	survivor, survivorActor := createUser(t, db, "bob", models.RoleUser)

	own, err := posts.Create(doomedActor, CreatePostInput{
		Title: "Doomed Post", Content: "body", Status: models.StatusPublished,
	})
	if err != nil {
		t.Fatalf("Create(own post) error = %v", err)
	}
	kept, err := posts.Create(survivorActor, CreatePostInput{
		Title: "Kept Post", Content: "body", Status: models.StatusPublished,
	})
	if err != nil {
		t.Fatalf("Create(kept post) error = %v", err)
	}

	// The doomed user comments on the survivor's post and the survivor
	// comments on the doomed post.
	if _, err := comments.Create(doomedActor, CreateCommentInput{PostID: kept.ID, Content: "drive-by"}); err != nil {
		t.Fatalf("Create(comment on kept) error = %v", err)
	}
	if _, err := comments.Create(survivorActor, CreateCommentInput{PostID: own.ID, Content: "on doomed"}); err != nil {
		t.Fatalf("Create(comment on doomed) error = %v", err)
	}
	if _, _, err := posts.ToggleLike(doomedActor, kept.ID); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}

	if err := svc.DeleteUser(admin, doomed.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	if err := db.First(&models.User{}, doomed.ID).Error; err == nil {
		t.Error("doomed user record still present")
	}
	if err := db.First(&models.Post{}, own.ID).Error; err == nil {
		t.Error("doomed user's post still present")
	}
	if err := db.First(&models.Post{}, kept.ID).Error; err != nil {
		t.Errorf("survivor's post gone: %v", err)
	}

	var commentCount int64
	if err := db.Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if commentCount != 0 {
		t.Errorf("comments remaining = %d, want 0 (authored or under deleted post)", commentCount)
	}

	var likes int64
	if err := db.Model(&models.PostLike{}).Where("user_id = ?", doomed.ID).Count(&likes).Error; err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if likes != 0 {
		t.Errorf("doomed user's likes remaining = %d, want 0", likes)
	}
}

func TestAdminDashboard(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewAdminService(db, store)
	posts := NewPostService(db, store)
	_, admin := createUser(t, db, "carol", models.RoleAdmin)
	_, author := createUser(t, db, "alice", models.RoleUser)

	for i := 0; i < 7; i++ {
		status := models.StatusPublished
		if i >= 5 {
			status = models.StatusDraft
		}
		post, err := posts.Create(author, CreatePostInput{
			Title:   fmt.Sprintf("Post %d", i),
			Content: "body",
			Status:  status,
		})
		if err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
		// Give earlier posts more views so popularity ordering is fixed.
		if status == models.StatusPublished {
			if err := db.Model(&models.Post{}).Where("id = ?", post.ID).
				Update("view_count", 100-i).Error; err != nil {
				t.Fatalf("seed views: %v", err)
			}
		}
	}

	stats, err := svc.Dashboard(admin)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if stats.Counts.Users != 2 {
		t.Errorf("Users = %d, want 2", stats.Counts.Users)
	}
	if stats.Counts.Posts != 7 || stats.Counts.PublishedPosts != 5 || stats.Counts.DraftPosts != 2 {
		t.Errorf("post counts = (%d, %d, %d), want (7, 5, 2)",
			stats.Counts.Posts, stats.Counts.PublishedPosts, stats.Counts.DraftPosts)
	}
	if len(stats.RecentPosts) != 5 {
		t.Errorf("RecentPosts = %d, want 5", len(stats.RecentPosts))
	}
	if len(stats.PopularPosts) != 5 {
		t.Fatalf("PopularPosts = %d, want 5", len(stats.PopularPosts))
	}
	for _, p := range stats.PopularPosts {
		if p.Status != models.StatusPublished {
			t.Errorf("popular post %q is %s, want published", p.Title, p.Status)
		}
	}
	if stats.PopularPosts[0].Title != "Post 0" {
		t.Errorf("most popular = %q, want %q", stats.PopularPosts[0].Title, "Post 0")
	}
}

func TestAdminListings(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewAdminService(db, store)
	posts := NewPostService(db, store)
	comments := NewCommentService(db, store)
	_, admin := createUser(t, db, "carol", models.RoleAdmin)
	_, author := createUser(t, db, "alice", models.RoleUser)

	draft, err := posts.Create(author, CreatePostInput{Title: "Draft Post", Content: "body"})
	if err != nil {
		t.Fatalf("Create(draft) error = %v", err)
	}
	if _, err := comments.Create(author, CreateCommentInput{PostID: draft.ID, Content: "note"}); err != nil {
		t.Fatalf("Create(comment) error = %v", err)
	}

	users, err := svc.ListUsers(admin, 1, 10)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if users.Pagination.TotalResults != 2 {
		t.Errorf("user TotalResults = %d, want 2", users.Pagination.TotalResults)
	}

	allPosts, err := svc.ListPosts(admin, 1, 10)
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(allPosts.Posts) != 1 || allPosts.Posts[0].Status != models.StatusDraft {
		t.Errorf("admin post listing should include drafts, got %d posts", len(allPosts.Posts))
	}

	allComments, err := svc.ListComments(admin, 1, 10)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(allComments.Comments) != 1 {
		t.Errorf("comments = %d, want 1", len(allComments.Comments))
	}
	if allComments.Comments[0].Author.Name != "alice" {
		t.Errorf("comment author = %q, want %q", allComments.Comments[0].Author.Name, "alice")
	}
}
