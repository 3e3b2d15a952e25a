package handler

import (
	"net/http"
	"strconv"

	"Chatline/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler interface {
	CreatePrivateChat(c *gin.Context)
	CreateGroupChat(c *gin.Context)
	GetUserChats(c *gin.Context)
	DeleteChat(c *gin.Context)
}

type chatHandler struct {
	service service.ChatService
}

func NewChatHandler(svc service.ChatService) ChatHandler {
	return &chatHandler{service: svc}
}

type createPrivateChatRequest struct {
	OtherUserID int64 `json:"otherUserId" binding:"required"`
}

type createGroupChatRequest struct {
	Name      string  `json:"name" binding:"required"`
	MemberIDs []int64 `json:"memberIds" binding:"required"`
}

func (h *chatHandler) CreatePrivateChat(c *gin.Context) {
	var req createPrivateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}

	chat, err := h.service.CreatePrivateChat(c.Request.Context(), currentUserID(c), req.OtherUserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": chat})
}

func (h *chatHandler) CreateGroupChat(c *gin.Context) {
	var req createGroupChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}

	chat, err := h.service.CreateGroupChat(c.Request.Context(), currentUserID(c), req.Name, req.MemberIDs)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": chat})
}

func (h *chatHandler) GetUserChats(c *gin.Context) {
	chats, err := h.service.GetUserChats(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": chats})
}

func (h *chatHandler) DeleteChat(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || chatID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid chat id"})
		return
	}

	if err := h.service.DeleteChat(c.Request.Context(), chatID, currentUserID(c)); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"message": "chat deleted successfully"}})
}
