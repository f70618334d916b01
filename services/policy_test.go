package services

import (
	"testing"

	"github.com/Habib-0007/habsblog-api/models"
)

func TestCanAct(t *testing.T) {
	owner := Actor{ID: 1, Role: models.RoleUser}
	other := Actor{ID: 2, Role: models.RoleUser}
	admin := Actor{ID: 3, Role: models.RoleAdmin}
	anon := Actor{}

	published := &models.Post{AuthorID: 1, Status: models.StatusPublished}
	draft := &models.Post{AuthorID: 1, Status: models.StatusDraft}
	comment := &models.Comment{AuthorID: 1}

	tests := []struct {
		name     string
		actor    Actor
		resource Resource
		action   Action
		want     bool
	}{
		{"anonymous reads published", anon, published, ActionRead, true},
		{"anonymous reads draft", anon, draft, ActionRead, false},
		{"other reads draft", other, draft, ActionRead, false},
		{"owner reads draft", owner, draft, ActionRead, true},
		{"admin reads draft", admin, draft, ActionRead, true},
		{"owner updates post", owner, published, ActionUpdate, true},
		{"other updates post", other, published, ActionUpdate, false},
		{"admin updates post", admin, published, ActionUpdate, true},
		{"anonymous updates post", anon, published, ActionUpdate, false},
		{"owner deletes comment", owner, comment, ActionDelete, true},
		{"other deletes comment", other, comment, ActionDelete, false},
		{"admin deletes comment", admin, comment, ActionDelete, true},
		{"user takes admin action", owner, nil, ActionAdmin, false},
		{"admin takes admin action", admin, nil, ActionAdmin, true},
		{"nil resource update", owner, nil, ActionUpdate, false},
		{"unknown action", admin, published, Action("publish"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAct(tt.actor, tt.resource, tt.action); got != tt.want {
				t.Errorf("CanAct() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaginationClamp(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative page", -3, 20, 1, 20},
		{"limit capped", 1, 500, 1, 100},
		{"in range", 4, 25, 4, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := clampPage(tt.page, tt.limit)
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("clampPage(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.limit, page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := newPagination(3, 10, 25)
	if p.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", p.TotalPages)
	}
	if p.TotalResults != 25 {
		t.Errorf("TotalResults = %d, want 25", p.TotalResults)
	}
}
