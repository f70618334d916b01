package utils

import (
	"time"

	"gorm.io/gorm"

	"github.com/Habib-0007/habsblog-api/models"
)

// StartTokenCleaner launches a background goroutine that periodically deletes
// expired auth tokens (refresh and password-reset). It is best-effort and
// logs failures; a token left behind is still rejected by the expiry check
// at use time.
func StartTokenCleaner(db *gorm.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			res := db.Where("expires_at <= ?", time.Now()).Delete(&models.AuthToken{})
			if res.Error != nil {
				if Sugar != nil {
					Sugar.Warnf("token cleaner delete failed: %v", res.Error)
				}
				continue
			}
			if res.RowsAffected > 0 && Sugar != nil {
				Sugar.Debugf("token cleaner removed %d expired tokens", res.RowsAffected)
			}
		}
	}()
}
