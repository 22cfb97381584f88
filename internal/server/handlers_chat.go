package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Role    string             `json:"role"`
	Message string             `json:"message"`
	History []ConversationTurn `json:"history"`
}

type saveChatRequest struct {
	AnalysisID  string             `json:"analysis_id"`
	ChatHistory []ConversationTurn `json:"chat_history"`
}

// chatFollowup continues a conversation about a previous analysis. The reply
// is free text by contract, so it passes through without normalization.
func (a *App) chatFollowup(c *gin.Context) {
	if _, ok := authUserFromContext(c); !ok {
		writeError(c, http.StatusUnauthorized, authRequiredMessage)
		return
	}

	var payload chatRequest
	if !mustJSON(c, &payload) {
		return
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		writeError(c, http.StatusBadRequest, "El campo 'message' es obligatorio.")
		return
	}

	turns := make([]ConversationTurn, 0, len(payload.History)+1)
	turns = append(turns, payload.History...)
	turns = append(turns, ConversationTurn{Role: "user", Text: message})

	reply, err := a.ai.GenerateContent(c.Request.Context(), AIRequest{
		SystemPrompt: chatSystemPrompt(strings.TrimSpace(payload.Role)),
		Turns:        turns,
		Temperature:  0.7,
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Error en el chat: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reply":   reply,
	})
}

// saveChatHistory overwrites the chat history of one analysis. The update
// filters on both record id and owner in a single statement so a caller can
// never touch someone else's record.
func (a *App) saveChatHistory(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, authRequiredMessage)
		return
	}

	var payload saveChatRequest
	if !mustJSON(c, &payload) {
		return
	}

	analysisID := strings.TrimSpace(payload.AnalysisID)
	if analysisID == "" {
		writeError(c, http.StatusBadRequest, "El campo 'analysis_id' es obligatorio.")
		return
	}

	rows, err := a.store.UpdateChatHistory(c.Request.Context(), analysisID, user.ID, payload.ChatHistory)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if rows == 0 {
		writeError(c, http.StatusNotFound, "Análisis no encontrado.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
