package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/broadcast-feed/internal/model"
	"github.com/shinyyama/broadcast-feed/internal/repository"
	"github.com/shinyyama/broadcast-feed/internal/service"
)

type MessageHandler struct {
	svc service.MessageService
}

func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type ProfileShortResponse struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
	FullName string `json:"fullName"`
	Avatar   []byte `json:"avatar,omitempty"`
}

type MessageResponder struct {
	ID              int64                  `json:"id"`
	UpdatedAt       string                 `json:"updatedAt"`
	Body            *string                `json:"body"`
	Likes           int32                  `json:"likes"`
	Image           *string                `json:"image,omitempty"`
	MsgGroupType    model.MessageGroupType `json:"msgGroupType"`
	Author          ProfileShortResponse   `json:"user"`
	BroadcastingMsg *MessageResponder      `json:"broadcastingMsg,omitempty"`
}

type CreateMessageRequest struct {
	UserID            int64   `json:"userId"`
	Body              string  `json:"body"`
	GroupType         int32   `json:"groupType"`
	BroadcastingMsgID *int64  `json:"broadcastingMsgId"`
	ImageURL          *string `json:"imageUrl"`
}

type CreateResponseRequest struct {
	UserID    int64  `json:"userId"`
	Body      string `json:"body"`
	GroupType int32  `json:"groupType"`
}

type CreatedMessageResponse struct {
	Message   string `json:"message"`
	MessageID int64  `json:"messageId"`
}

type MessageListResponse struct {
	Messages []MessageResponder `json:"messages"`
}

func (h *MessageHandler) Create(c echo.Context) error {
	var req CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	id, err := h.svc.Create(c.Request().Context(), service.CreateMessageInput{
		UserID:            req.UserID,
		Body:              req.Body,
		GroupType:         model.MessageGroupType(req.GroupType),
		BroadcastingMsgID: req.BroadcastingMsgID,
		ImageURL:          req.ImageURL,
	})
	if err != nil {
		return serviceError(c, err, "message not found", "create message failed")
	}
	return c.JSON(http.StatusCreated, CreatedMessageResponse{Message: "message created", MessageID: id})
}

func (h *MessageHandler) Respond(c echo.Context) error {
	originalID, err := parseID(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var req CreateResponseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	id, err := h.svc.Respond(c.Request().Context(), service.RespondInput{
		UserID:        req.UserID,
		OriginalMsgID: originalID,
		Body:          req.Body,
		GroupType:     model.MessageGroupType(req.GroupType),
	})
	if err != nil {
		return serviceError(c, err, "message not found", "create response failed")
	}
	return c.JSON(http.StatusCreated, CreatedMessageResponse{Message: "response created", MessageID: id})
}

func (h *MessageHandler) Get(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "message not found", "get message failed")
	}
	return c.JSON(http.StatusOK, toMessageResponder(v))
}

func (h *MessageHandler) ListResponses(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var limit int
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
	}
	views, err := h.svc.Responses(c.Request().Context(), id, limit)
	if err != nil {
		return serviceError(c, err, "message not found", "list responses failed")
	}
	return c.JSON(http.StatusOK, toMessageList(views))
}

// Feed serves GET /messages?followerId=&lastUpdatedAt=&pageSize=.
func (h *MessageHandler) Feed(c echo.Context) error {
	followerID, err := parseID(c.QueryParam("followerId"))
	if err != nil {
		return badRequest(c, "invalid followerId")
	}
	var before time.Time
	if raw := c.QueryParam("lastUpdatedAt"); raw != "" {
		before, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return badRequest(c, "lastUpdatedAt must be RFC3339")
		}
	}
	var pageSize *int
	if raw := c.QueryParam("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "invalid pageSize")
		}
		pageSize = &n
	}
	views, err := h.svc.Feed(c.Request().Context(), followerID, before, pageSize)
	if err != nil {
		return serviceError(c, err, "feed not found", "query feed failed")
	}
	return c.JSON(http.StatusOK, toMessageList(views))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

func toMessageList(views []repository.MessageView) MessageListResponse {
	resp := MessageListResponse{Messages: make([]MessageResponder, 0, len(views))}
	for i := range views {
		resp.Messages = append(resp.Messages, toMessageResponder(&views[i]))
	}
	return resp
}

func toMessageResponder(v *repository.MessageView) MessageResponder {
	r := MessageResponder{
		ID:           v.ID,
		UpdatedAt:    v.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Body:         v.Body,
		Likes:        v.Likes,
		Image:        v.Image,
		MsgGroupType: v.GroupType,
		Author: ProfileShortResponse{
			ID:       v.Author.ID,
			UserName: v.Author.UserName,
			FullName: v.Author.FullName,
			Avatar:   v.Author.Avatar,
		},
	}
	if v.Broadcast != nil {
		inner := toMessageResponder(v.Broadcast)
		inner.BroadcastingMsg = nil
		r.BroadcastingMsg = &inner
	}
	return r
}
