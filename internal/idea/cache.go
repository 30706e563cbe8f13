package idea

import (
	"context"
	"fmt"
	"innovation-portal/redis"
)

// PublicListVersionKey versions every cached page of approved ideas.
const PublicListVersionKey = "ideas:public:version"

// UserListVersionKey versions every cached page of one author's ideas.
func UserListVersionKey(userID uint64) string {
	return fmt.Sprintf("user:%d:ideas:version", userID)
}

// InvalidateLists drops the author's cached pages, and the public ones when
// the change can affect them.
func InvalidateLists(ctx context.Context, cache *redis.Cache, authorID uint64, public bool) {
	cache.IncrementVersion(ctx, UserListVersionKey(authorID))
	if public {
		cache.IncrementVersion(ctx, PublicListVersionKey)
	}
}
