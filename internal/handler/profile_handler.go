package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/broadcast-feed/internal/model"
	"github.com/shinyyama/broadcast-feed/internal/service"
)

type ProfileHandler struct {
	svc service.ProfileService
}

func NewProfileHandler(svc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

type ProfileResponse struct {
	ID          int64   `json:"id"`
	CreatedAt   string  `json:"createdAt"`
	UserName    string  `json:"userName"`
	FullName    string  `json:"fullName"`
	Description string  `json:"description"`
	Region      *string `json:"region,omitempty"`
	MainURL     *string `json:"mainUrl,omitempty"`
	Avatar      []byte  `json:"avatar,omitempty"`
}

type FollowRequest struct {
	FollowingID int64 `json:"followingId"`
}

type FollowResponse struct {
	FollowID int64 `json:"followId"`
}

var errFileTooLarge = errors.New("file too large")

// Create accepts multipart/form-data with an optional avatar file.
func (h *ProfileHandler) Create(c echo.Context) error {
	avatar, err := optionalFile(c, "avatar", service.MaxAvatarBytes)
	if err != nil {
		return badRequest(c, "invalid avatar: "+err.Error())
	}
	id, err := h.svc.Create(c.Request().Context(), service.CreateProfileInput{
		UserName:    c.FormValue("userName"),
		FullName:    c.FormValue("fullName"),
		Description: c.FormValue("description"),
		Region:      optionalForm(c, "region"),
		MainURL:     optionalForm(c, "mainUrl"),
		Avatar:      avatar,
	})
	if err != nil {
		return serviceError(c, err, "profile not found", "create profile failed")
	}
	return c.JSON(http.StatusCreated, map[string]int64{"profileId": id})
}

func (h *ProfileHandler) Get(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "profile not found", "get profile failed")
	}
	return c.JSON(http.StatusOK, toProfileResponse(p))
}

func (h *ProfileHandler) GetByUserName(c echo.Context) error {
	p, err := h.svc.GetByUserName(c.Request().Context(), c.Param("userName"))
	if err != nil {
		return serviceError(c, err, "profile not found", "get profile by user name failed")
	}
	return c.JSON(http.StatusOK, toProfileResponse(p))
}

func (h *ProfileHandler) UpdateAvatar(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	avatar, err := optionalFile(c, "avatar", service.MaxAvatarBytes)
	if err != nil {
		return badRequest(c, "invalid avatar: "+err.Error())
	}
	if avatar == nil {
		return badRequest(c, "avatar is required")
	}
	if err := h.svc.UpdateAvatar(c.Request().Context(), id, avatar); err != nil {
		return serviceError(c, err, "profile not found", "update avatar failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "avatar updated"})
}

func (h *ProfileHandler) Follow(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var req FollowRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	followID, err := h.svc.Follow(c.Request().Context(), id, req.FollowingID)
	if err != nil {
		return serviceError(c, err, "profile not found", "follow failed")
	}
	return c.JSON(http.StatusCreated, FollowResponse{FollowID: followID})
}

func optionalForm(c echo.Context, name string) *string {
	v := c.FormValue(name)
	if v == "" {
		return nil
	}
	return &v
}

// optionalFile reads a multipart file field. A missing field yields nil.
func optionalFile(c echo.Context, name string, limit int64) ([]byte, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	return readFile(fh, limit)
}

func readFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	if fh.Size > limit {
		return nil, errFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errFileTooLarge
	}
	return data, nil
}

func toProfileResponse(p *model.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UserName:    p.UserName,
		FullName:    p.FullName,
		Description: p.Description,
		Region:      p.Region,
		MainURL:     p.MainURL,
		Avatar:      p.Avatar,
	}
}
