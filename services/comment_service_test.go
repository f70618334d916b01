package services

import (
	"testing"

	"github.com/Habib-0007/habsblog-api/models"
)

func seedPost(t *testing.T, svc *PostService, actor Actor, title string) *models.Post {
	t.Helper()
	post, err := svc.Create(actor, CreatePostInput{
		Title: title, Content: "body", Status: models.StatusPublished,
	})
	if err != nil {
		t.Fatalf("seed post %q: %v", title, err)
	}
	return post
}

func TestCommentCreateParentMustMatchPost(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	posts := NewPostService(db, store)
	svc := NewCommentService(db, store)
	_, actor := createUser(t, db, "alice", models.RoleUser)

	first := seedPost(t, posts, actor, "First Post")
	second := seedPost(t, posts, actor, "Second Post")

	parent, err := svc.Create(actor, CreateCommentInput{PostID: first.ID, Content: "top level"})
	if err != nil {
		t.Fatalf("Create(parent) error = %v", err)
	}

	_, err = svc.Create(actor, CreateCommentInput{
		PostID: second.ID, ParentID: &parent.ID, Content: "wrong thread",
	})
	if got := kindOf(t, err); got != KindValidation {
		t.Errorf("cross-post reply kind = %v, want %v", got, KindValidation)
	}

	reply, err := svc.Create(actor, CreateCommentInput{
		PostID: first.ID, ParentID: &parent.ID, Content: "same thread",
	})
	if err != nil {
		t.Fatalf("Create(reply) error = %v", err)
	}
	if reply.ParentID == nil || *reply.ParentID != parent.ID {
		t.Errorf("reply ParentID = %v, want %d", reply.ParentID, parent.ID)
	}
}

func TestCommentCreateValidation(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	posts := NewPostService(db, store)
	svc := NewCommentService(db, store)
	_, actor := createUser(t, db, "alice", models.RoleUser)
	post := seedPost(t, posts, actor, "A Post")

	missing := uint(9999)
	tests := []struct {
		name     string
		actor    Actor
		input    CreateCommentInput
		wantKind Kind
	}{
		{"anonymous", Actor{}, CreateCommentInput{PostID: post.ID, Content: "hi"}, KindUnauthenticated},
		{"empty content", actor, CreateCommentInput{PostID: post.ID, Content: "   "}, KindValidation},
		{"missing post", actor, CreateCommentInput{PostID: missing, Content: "hi"}, KindNotFound},
		{"missing parent", actor, CreateCommentInput{PostID: post.ID, ParentID: &missing, Content: "hi"}, KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.actor, tt.input)
			if got := kindOf(t, err); got != tt.wantKind {
				t.Errorf("Create() kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestCommentListThreading(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	posts := NewPostService(db, store)
	svc := NewCommentService(db, store)
	_, actor := createUser(t, db, "alice", models.RoleUser)
	post := seedPost(t, posts, actor, "Threaded Post")

	parent, err := svc.Create(actor, CreateCommentInput{PostID: post.ID, Content: "parent"})
	if err != nil {
		t.Fatalf("Create(parent) error = %v", err)
	}
	for _, content := range []string{"reply one", "reply two"} {
		if _, err := svc.Create(actor, CreateCommentInput{
			PostID: post.ID, ParentID: &parent.ID, Content: content,
		}); err != nil {
			t.Fatalf("Create(%q) error = %v", content, err)
		}
	}

	top, err := svc.List(actor, CommentFilters{PostID: post.ID})
	if err != nil {
		t.Fatalf("List(top) error = %v", err)
	}
	if len(top.Comments) != 1 {
		t.Errorf("top-level comments = %d, want 1", len(top.Comments))
	}

	replies, err := svc.List(actor, CommentFilters{PostID: post.ID, ParentID: &parent.ID})
	if err != nil {
		t.Fatalf("List(replies) error = %v", err)
	}
	if len(replies.Comments) != 2 {
		t.Errorf("replies = %d, want 2", len(replies.Comments))
	}

	fetched, err := svc.Get(actor, parent.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(fetched.Replies) != 2 {
		t.Errorf("Get() replies = %d, want 2", len(fetched.Replies))
	}
}

func TestCommentUpdateMarksEdited(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	posts := NewPostService(db, store)
	svc := NewCommentService(db, store)
	_, actor := createUser(t, db, "alice", models.RoleUser)
	_, other := createUser(t, db, "bob", models.RoleUser)
	post := seedPost(t, posts, actor, "A Post")

	comment, err := svc.Create(actor, CreateCommentInput{PostID: post.ID, Content: "original"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if comment.IsEdited {
		t.Error("new comment is already marked edited")
	}

	if _, err := svc.Update(other, comment.ID, UpdateCommentInput{Content: "hijack"}); KindOf(err) != KindForbidden {
		t.Errorf("other user update kind = %v, want %v", KindOf(err), KindForbidden)
	}

	updated, err := svc.Update(actor, comment.ID, UpdateCommentInput{Content: "revised"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.IsEdited {
		t.Error("IsEdited = false after a content change")
	}
	if updated.Content != "revised" {
		t.Errorf("Content = %q, want %q", updated.Content, "revised")
	}
}

func TestCommentDeleteCascadesOneLevel(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	posts := NewPostService(db, store)
	svc := NewCommentService(db, store)
	_, actor := createUser(t, db, "alice", models.RoleUser)
	post := seedPost(t, posts, actor, "A Post")

	parent, err := svc.Create(actor, CreateCommentInput{
		PostID:  post.ID,
		Content: "parent",
		Images:  []string{"data:image/png;base64,aGk="},
	})
	if err != nil {
		t.Fatalf("Create(parent) error = %v", err)
	}
	reply, err := svc.Create(actor, CreateCommentInput{
		PostID: post.ID, ParentID: &parent.ID, Content: "reply",
	})
	if err != nil {
		t.Fatalf("Create(reply) error = %v", err)
	}
	if _, _, err := svc.ToggleLike(actor, reply.ID); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}

	if err := svc.Delete(actor, parent.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var remaining int64
	if err := db.Model(&models.Comment{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if remaining != 0 {
		t.Errorf("comments remaining = %d, want 0", remaining)
	}
	var likes int64
	if err := db.Model(&models.CommentLike{}).Count(&likes).Error; err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if likes != 0 {
		t.Errorf("comment likes remaining = %d, want 0", likes)
	}
	if got := store.liveCount(); got != 0 {
		t.Errorf("live media assets = %d, want 0", got)
	}

	if _, err := svc.Get(actor, reply.ID); KindOf(err) != KindNotFound {
		t.Errorf("Get(reply) kind = %v, want %v", KindOf(err), KindNotFound)
	}
}

func TestCommentToggleLike(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	posts := NewPostService(db, store)
	svc := NewCommentService(db, store)
	_, actor := createUser(t, db, "alice", models.RoleUser)
	post := seedPost(t, posts, actor, "A Post")

	comment, err := svc.Create(actor, CreateCommentInput{PostID: post.ID, Content: "likeable"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	liked, count, err := svc.ToggleLike(actor, comment.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if !liked || count != 1 {
		t.Errorf("first toggle = (%v, %d), want (true, 1)", liked, count)
	}

	liked, count, err = svc.ToggleLike(actor, comment.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if liked || count != 0 {
		t.Errorf("second toggle = (%v, %d), want (false, 0)", liked, count)
	}
}
