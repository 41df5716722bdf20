package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/broadcast-feed/internal/media"
)

const maxImageBytes = 5 << 20

type MediaHandler struct {
	uploader media.Uploader
}

func NewMediaHandler(uploader media.Uploader) *MediaHandler {
	return &MediaHandler{uploader: uploader}
}

type ImageUploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// UploadImage stores a message image and returns its URL, which the client
// then passes as imageUrl when creating the message.
func (h *MediaHandler) UploadImage(c echo.Context) error {
	if h.uploader == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "image storage is not configured"))
	}
	data, err := optionalFile(c, "image", maxImageBytes)
	if err != nil {
		return badRequest(c, "invalid image: "+err.Error())
	}
	if data == nil {
		return badRequest(c, "image is required")
	}
	imageURL, err := h.uploader.Upload(c.Request().Context(), "messages", data)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedType) {
			return badRequest(c, err.Error())
		}
		return internalError(c, err, "upload image failed")
	}
	return c.JSON(http.StatusCreated, ImageUploadResponse{ImageURL: imageURL})
}
