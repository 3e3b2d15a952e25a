package handler

import (
	"net/http"
	"strconv"

	"Chatline/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler interface {
	SendMessage(c *gin.Context)
	DeleteMessage(c *gin.Context)
	GetChatMessages(c *gin.Context)
}

type messageHandler struct {
	service service.MessageService
}

func NewMessageHandler(svc service.MessageService) MessageHandler {
	return &messageHandler{service: svc}
}

type sendMessageRequest struct {
	ChatID  int64  `json:"chatId" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type deleteMessageRequest struct {
	ChatID    int64 `json:"chatId" binding:"required"`
	MessageID int64 `json:"id" binding:"required"`
}

func (h *messageHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), req.ChatID, currentUserID(c), req.Content)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": msg})
}

func (h *messageHandler) DeleteMessage(c *gin.Context) {
	var req deleteMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}

	if err := h.service.DeleteMessage(c.Request.Context(), req.ChatID, currentUserID(c), req.MessageID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"message": "message deleted successfully"}})
}

func (h *messageHandler) GetChatMessages(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chatId"), 10, 64)
	if err != nil || chatID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid chat id"})
		return
	}

	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid page number"})
		return
	}

	messages, err := h.service.GetChatMessages(c.Request.Context(), currentUserID(c), chatID, page)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": messages})
}
