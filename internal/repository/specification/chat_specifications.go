package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ownerless matches chats stored without a user.
type Ownerless struct{}

func (s Ownerless) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id IS NULL")
}

// OwnedByOrOwnerless picks UserOwnedBy for a concrete owner and Ownerless for nil.
func OwnedByOrOwnerless(owner *uuid.UUID) Specification {
	if owner == nil {
		return Ownerless{}
	}
	return UserOwnedBy{UserID: *owner}
}

// RecentlyUpdatedFirst orders chats for listing.
var RecentlyUpdatedFirst = OrderBy{Field: "updated_at", Desc: true}
