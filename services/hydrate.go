package services

import (
	"gorm.io/gorm"

	"github.com/Habib-0007/habsblog-api/models"
)

// loadAuthors fetches the public author shape for a set of user ids.
func loadAuthors(db *gorm.DB, ids []uint) (map[uint]models.PublicUser, error) {
	out := make(map[uint]models.PublicUser, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.Where("id IN ?", uniqueIDs(ids)).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.Public()
	}
	return out, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
