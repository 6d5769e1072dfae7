package constants

// Redis key prefixes. Refresh-token records deliberately carry no prefix:
// their key is the raw "userID:jti" pair issued at login.
const (
	PostFeedCacheKey   = "instaclone:cache:posts:feed"
	PostByIDCachePref  = "instaclone:cache:posts:id:"
	RateLimitKeyPrefix = "instaclone:ratelimit:"
)
