package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/auth"
	"github.com/sah-lishi/backend-journey/internal/httpserver"
	"github.com/sah-lishi/backend-journey/internal/logging"
	"github.com/sah-lishi/backend-journey/internal/middleware"
	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/repositories"
)

// UserHandler implements registration and the session endpoints.
type UserHandler struct {
	Users     UserStore
	Sessions  SessionManager
	Hasher    PasswordHasher
	Content   ContentStore
	Cookies   CookiePolicy
	UploadDir string
	NowFunc   func() time.Time
}

type registerForm struct {
	FullName string
	Username string
	Email    string
	Password string
}

func (f registerForm) validate() error {
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"fullname", f.FullName},
		{"username", f.Username},
		{"email", f.Email},
		{"password", f.Password},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name+" is required")
		}
	}
	if len(missing) > 0 {
		return &apperr.Error{Kind: apperr.KindInvalidArgument, Message: "all fields are required", Details: missing}
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return apperr.Wrap(apperr.KindInvalidArgument, "invalid email address", err)
	}
	if len(f.Password) < auth.MinPasswordLength {
		return apperr.InvalidArgument("password must be at least 8 characters")
	}
	if strings.ContainsAny(f.Username, " \t@") {
		return apperr.InvalidArgument("username may not contain spaces or @")
	}
	return nil
}

// Register handles POST /api/v1/users/register.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := parseMultipart(w, r); err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	form := registerForm{
		FullName: strings.TrimSpace(r.FormValue("fullname")),
		Username: strings.ToLower(strings.TrimSpace(r.FormValue("username"))),
		Email:    strings.ToLower(strings.TrimSpace(r.FormValue("email"))),
		Password: r.FormValue("password"),
	}
	if err := form.validate(); err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	for _, identifier := range []string{form.Username, form.Email} {
		_, err := h.Users.FindByLogin(ctx, identifier)
		if err == nil {
			httpserver.Fail(ctx, w, apperr.Conflict("user with email or username already exists"))
			return
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			httpserver.Fail(ctx, w, apperr.Internal("unable to verify existing accounts", err))
			return
		}
	}

	avatarPath, err := spool(r, "avatar", h.UploadDir)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	if avatarPath == "" {
		httpserver.Fail(ctx, w, apperr.InvalidArgument("avatar file is required"))
		return
	}
	coverPath, err := spool(r, "coverImage", h.UploadDir)
	if err != nil {
		removeTemp(avatarPath)
		httpserver.Fail(ctx, w, err)
		return
	}

	avatar, err := h.Content.Upload(ctx, avatarPath)
	if err != nil || avatar == nil {
		removeTemp(coverPath)
		logger.Warn("avatar upload failed", "error", err)
		httpserver.Fail(ctx, w, apperr.Wrap(apperr.KindInvalidArgument, "avatar file not uploaded", err))
		return
	}

	// The cover image is optional; a failed upload leaves it empty.
	var cover *models.Asset
	if coverPath != "" {
		if cover, err = h.Content.Upload(ctx, coverPath); err != nil {
			logger.Warn("cover image upload failed", "error", err)
			cover = nil
		}
	}

	hashed, err := h.Hasher.Hash(form.Password)
	if err != nil {
		h.discardAssets(r, avatar, cover)
		httpserver.Fail(ctx, w, apperr.Internal("failed to secure password", err))
		return
	}

	now := h.now()
	user := models.User{
		ID:        models.NewID(),
		Username:  form.Username,
		Email:     form.Email,
		FullName:  form.FullName,
		Avatar:    avatar.URL,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if cover != nil {
		user.CoverImage = cover.URL
	}

	if err := h.Users.Create(ctx, user); err != nil {
		h.discardAssets(r, avatar, cover)
		if errors.Is(err, repositories.ErrConflict) {
			httpserver.Fail(ctx, w, apperr.Wrap(apperr.KindConflict, "user with email or username already exists", err))
			return
		}
		httpserver.Fail(ctx, w, apperr.Internal("something went wrong while registering the user", err))
		return
	}

	logger.Info("user registered", "userId", user.ID, "username", user.Username)
	httpserver.Respond(ctx, w, http.StatusCreated, user.Sanitized(), "User registered successfully")
}

func (h UserHandler) discardAssets(r *http.Request, assets ...*models.Asset) {
	for _, a := range assets {
		if a == nil {
			continue
		}
		if err := h.Content.Delete(r.Context(), a.PublicID, a.Kind); err != nil {
			logging.FromContext(r.Context()).Warn("delete orphaned upload", "publicId", a.PublicID, "error", err)
		}
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User         *models.User `json:"user,omitempty"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// loginIdentifiers returns the distinct non-blank identifiers, username first.
func loginIdentifiers(username, email string) []string {
	var out []string
	for _, v := range []string{username, email} {
		v = strings.TrimSpace(v)
		if v == "" || slices.ContainsFunc(out, func(seen string) bool { return strings.EqualFold(seen, v) }) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Login handles POST /api/v1/users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	identifiers := loginIdentifiers(req.Username, req.Email)
	if len(identifiers) == 0 {
		httpserver.Fail(ctx, w, apperr.InvalidArgument("username or email is required"))
		return
	}

	// Either identifier may name the account; only an unknown one moves on
	// to the next.
	var (
		result auth.LoginResult
		err    error
	)
	for _, identifier := range identifiers {
		result, err = h.Sessions.Login(ctx, identifier, req.Password)
		if apperr.KindOf(err) != apperr.KindNotFound {
			break
		}
	}
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	h.Cookies.SetSession(w, result.Tokens)
	httpserver.Respond(ctx, w, http.StatusOK, sessionResponse{
		User:         &result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// Logout handles POST /api/v1/users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requireUser(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	if err := h.Sessions.Logout(ctx, userID); err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	h.Cookies.ClearSession(w)
	httpserver.Respond(ctx, w, http.StatusOK, struct{}{}, "User logged out")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /api/v1/users/refresh-token. The rotation token is
// read from the refreshToken cookie, falling back to the JSON body.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	carried := ""
	if c, err := r.Cookie(middleware.RefreshTokenCookie); err == nil {
		carried = strings.TrimSpace(c.Value)
	}
	if carried == "" {
		var req refreshRequest
		if err := decodeJSON(w, r, &req); err != nil {
			httpserver.Fail(ctx, w, err)
			return
		}
		carried = strings.TrimSpace(req.RefreshToken)
	}

	tokens, err := h.Sessions.Refresh(ctx, carried)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			h.Cookies.ClearSession(w)
		}
		httpserver.Fail(ctx, w, err)
		return
	}

	h.Cookies.SetSession(w, tokens)
	httpserver.Respond(ctx, w, http.StatusOK, sessionResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "Access token refreshed")
}

// CurrentUser handles GET /api/v1/users/current-user.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requireUser(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			httpserver.Fail(ctx, w, apperr.Unauthorized("invalid access token"))
			return
		}
		httpserver.Fail(ctx, w, apperr.Internal("unable to load user", err))
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, user.Sanitized(), "Current user fetched successfully")
}

// History handles GET /api/v1/users/history.
func (h UserHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requireUser(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	entries, err := h.Users.WatchHistory(ctx, userID)
	if err != nil {
		httpserver.Fail(ctx, w, apperr.Internal("unable to load watch history", err))
		return
	}
	if entries == nil {
		entries = []models.WatchEntry{}
	}
	httpserver.Respond(ctx, w, http.StatusOK, entries, "Watch history fetched successfully")
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
