package api

import (
	"context"
	"net/http"
	"time"

	"socialmap/api/middleware"
	"socialmap/models"
	"socialmap/service"
)

const defaultDisplayName = "Путешественник"

type ProfileHandler struct {
	users   service.UserService
	avatars service.AvatarService
	links   service.LinkService
}

func NewProfileHandler(users service.UserService, avatars service.AvatarService, links service.LinkService) *ProfileHandler {
	return &ProfileHandler{
		users:   users,
		avatars: avatars,
		links:   links,
	}
}

// ProfileResponse is the caller's own profile
type ProfileResponse struct {
	UID            string `json:"uid"`
	DisplayName    string `json:"displayName"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	Credits        int64  `json:"credits"`
	TelegramLinked bool   `json:"telegramLinked"`
}

// AvatarRequest carries a base64 image data URL
type AvatarRequest struct {
	DataURL string `json:"dataUrl"`
}

// LinkCodeResponse is handed to the user to send to the bot as /link <code>
type LinkCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newProfileResponse(user *models.User) ProfileResponse {
	return ProfileResponse{
		UID:            user.UID,
		DisplayName:    user.DisplayName,
		AvatarURL:      user.AvatarURL,
		Credits:        user.Credits,
		TelegramLinked: user.IsLinked(),
	}
}

// ensureProfile loads the caller's profile, creating it on first use
func (h *ProfileHandler) ensureProfile(ctx context.Context) (*models.User, error) {
	name := middleware.GetUserName(ctx)
	if name == "" {
		name = defaultDisplayName
	}
	return h.users.GetOrCreateUser(ctx, middleware.GetUserID(ctx), name)
}

// GetProfile returns the caller's profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserID(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.ensureProfile(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to load profile")
		return
	}
	writeSuccess(w, newProfileResponse(user))
}

// UploadAvatar hosts the submitted image and stores its url on the profile
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserID(r.Context())
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req AvatarRequest
	if err := decodeJSON(w, r, &req, service.MaxAvatarDataURLLength+1<<10); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := service.ValidateAvatarDataURL(req.DataURL); err != nil {
		writeServiceError(w, r, err, "Invalid avatar")
		return
	}

	if _, err := h.ensureProfile(r.Context()); err != nil {
		writeServiceError(w, r, err, "Failed to load profile")
		return
	}

	url, err := h.avatars.UploadAvatar(r.Context(), uid, req.DataURL)
	if err != nil {
		writeServiceError(w, r, err, "Failed to upload avatar")
		return
	}
	writeSuccess(w, map[string]string{"avatarUrl": url})
}

// IssueLinkCode creates a one-time code that binds the caller's chat account
func (h *ProfileHandler) IssueLinkCode(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserID(r.Context())
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if _, err := h.ensureProfile(r.Context()); err != nil {
		writeServiceError(w, r, err, "Failed to load profile")
		return
	}

	code, err := h.links.IssueCode(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err, "Failed to issue link code")
		return
	}
	writeSuccess(w, LinkCodeResponse{Code: code.Code, ExpiresAt: code.ExpiresAt})
}
