package handlers

import (
	"net/http"
	"strings"

	"github.com/sah-lishi/backend-journey/internal/middleware"
	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/repositories"
)

const apiPrefix = "/api/v1"

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users          UserStore
	Sessions       SessionManager
	Authenticator  middleware.Authenticator
	Hasher         PasswordHasher
	Content        ContentStore
	Engagement     Engagement
	Feed           FeedLister
	Catalog        VideoCatalog
	Videos         VideoLookup
	Comments       repositories.CommentRepository
	Tweets         repositories.TweetRepository
	Playlists      repositories.PlaylistRepository
	Health         map[string]HealthChecker
	AuthLimiter    middleware.RateLimiter
	TrustedProxies middleware.TrustedProxies
	Cookies        CookiePolicy
	UploadDir      string
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Checks: deps.Health}
	users := UserHandler{
		Users:     deps.Users,
		Sessions:  deps.Sessions,
		Hasher:    deps.Hasher,
		Content:   deps.Content,
		Cookies:   deps.Cookies,
		UploadDir: deps.UploadDir,
	}
	likes := LikeHandler{Engagement: deps.Engagement}
	subscriptions := SubscriptionHandler{Engagement: deps.Engagement}
	videos := VideoHandler{Feed: deps.Feed, Catalog: deps.Catalog, UploadDir: deps.UploadDir}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	tweets := TweetHandler{Tweets: deps.Tweets}
	playlists := PlaylistHandler{Playlists: deps.Playlists}

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(deps.Authenticator)(h)
	}
	limited := func(scope string, h http.HandlerFunc) http.Handler {
		return middleware.RateLimit(deps.AuthLimiter, scope, deps.TrustedProxies)(h)
	}
	route := func(pattern string, h http.Handler) {
		method, path, _ := strings.Cut(pattern, " ")
		mux.Handle(method+" "+apiPrefix+path, h)
	}

	mux.HandleFunc("GET /healthz", health.Handle)

	route("POST /users/register", limited("register", users.Register))
	route("POST /users/login", limited("login", users.Login))
	route("POST /users/logout", authed(users.Logout))
	route("POST /users/refresh-token", limited("refresh", users.Refresh))
	route("GET /users/current-user", authed(users.CurrentUser))
	route("GET /users/history", authed(users.History))

	for _, alias := range []struct {
		short, long string
		kind        models.Target
		param       string
	}{
		{"v", "video", models.TargetVideo, "videoId"},
		{"c", "comment", models.TargetComment, "commentId"},
		{"t", "tweet", models.TargetTweet, "tweetId"},
	} {
		toggle := authed(likes.Toggle(alias.kind, alias.param))
		route("POST /likes/toggle/"+alias.short+"/{"+alias.param+"}", toggle)
		route("POST /likes/toggle/"+alias.long+"/{"+alias.param+"}", toggle)
	}
	route("GET /likes/videos", authed(likes.LikedVideos))

	route("POST /subscriptions/c/{channelId}", authed(subscriptions.Toggle))
	route("GET /subscriptions/c/{channelId}", authed(subscriptions.Subscribers))
	route("GET /subscriptions/u/{subscriberId}", authed(subscriptions.Subscriptions))

	route("GET /videos", authed(videos.List))
	route("POST /videos", authed(videos.Publish))
	route("GET /videos/{videoId}", middleware.OptionalAuth(deps.Authenticator)(http.HandlerFunc(videos.Get)))
	route("PATCH /videos/{videoId}", authed(videos.Update))
	route("DELETE /videos/{videoId}", authed(videos.Delete))
	route("PATCH /videos/toggle/publish/{videoId}", authed(videos.TogglePublish))

	route("GET /comments/{videoId}", authed(comments.List))
	route("POST /comments/{videoId}", authed(comments.Add))
	route("PATCH /comments/c/{commentId}", authed(comments.Update))
	route("DELETE /comments/c/{commentId}", authed(comments.Delete))

	route("POST /tweets", authed(tweets.Create))
	route("GET /tweets/user/{userId}", authed(tweets.ListByUser))
	route("PATCH /tweets/{tweetId}", authed(tweets.Update))
	route("DELETE /tweets/{tweetId}", authed(tweets.Delete))

	route("POST /playlist", authed(playlists.Create))
	route("GET /playlist/user/{userId}", authed(playlists.ListByUser))
	route("GET /playlist/{playlistId}", authed(playlists.Get))
	route("PATCH /playlist/add/{videoId}/{playlistId}", authed(playlists.AddVideo))
	route("PATCH /playlist/remove/{videoId}/{playlistId}", authed(playlists.RemoveVideo))
	route("PATCH /playlist/{playlistId}", authed(playlists.Update))
	route("DELETE /playlist/{playlistId}", authed(playlists.Delete))
}
