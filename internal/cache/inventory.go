package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	PostDetailKeyPrefix = "post:%d:%d"
	RateSummaryPrefix   = "post:%d:rates"
)

const (
	UserTTL        = 5 * time.Minute
	PostDetailTTL  = 30 * time.Minute
	RateSummaryTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// PostDetailKey is scoped by owner so a cached detail can never leak across users.
func PostDetailKey(ownerID, postID uint) string {
	return fmt.Sprintf(PostDetailKeyPrefix, ownerID, postID)
}

func RateSummaryKey(postID uint) string {
	return fmt.Sprintf(RateSummaryPrefix, postID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, ownerID, postID uint) {
	Invalidate(ctx, PostDetailKey(ownerID, postID), RateSummaryKey(postID))
}
