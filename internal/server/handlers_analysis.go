package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type analyzeRequest struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

const historyLimit = 50

// analyzeMessage runs the structured analysis. The endpoint is public, but
// when the caller happens to present a valid token the result is persisted to
// their history. Storage is best effort: a failed insert is logged and the
// analysis is returned anyway.
func (a *App) analyzeMessage(c *gin.Context) {
	var payload analyzeRequest
	if !mustJSON(c, &payload) {
		return
	}

	role := strings.TrimSpace(payload.Role)
	message := strings.TrimSpace(payload.Message)
	if role == "" || message == "" {
		writeError(c, http.StatusBadRequest, "Los campos 'role' y 'message' son obligatorios.")
		return
	}

	userTurn := fmt.Sprintf("Analiza este mensaje que recibí de mi %s:\n\n\"%s\"", roleLabel(role), message)
	reply, err := a.ai.GenerateContent(c.Request.Context(), AIRequest{
		SystemPrompt: analysisSystemPrompt(role),
		Turns:        []ConversationTurn{{Role: "user", Text: userTurn}},
		Temperature:  0.7,
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Error al conectar con la IA: "+err.Error())
		return
	}

	analysis, err := normalizeAnalysis(reply)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "La IA generó una respuesta inválida. Intenta de nuevo.")
		return
	}

	if user, ok := a.userFromRequest(c); ok {
		if err := a.store.InsertAnalysis(c.Request.Context(), user.ID, role, message, analysis); err != nil {
			log.Printf("best-effort analysis save failed for user %s: %v", user.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"analysis": analysis,
	})
}

func (a *App) getHistory(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, authRequiredMessage)
		return
	}

	records, err := a.store.ListByOwner(c.Request.Context(), user.ID, historyLimit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"analyses": records,
	})
}
