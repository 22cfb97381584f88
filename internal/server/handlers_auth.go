package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// register proxies sign-up to the auth service. Upstream failure detail is
// passed through here; only the auth gate genericizes errors.
func (a *App) register(c *gin.Context) {
	var payload credentialsRequest
	if !mustJSON(c, &payload) {
		return
	}

	email := strings.TrimSpace(payload.Email)
	password := strings.TrimSpace(payload.Password)
	if email == "" || password == "" {
		writeError(c, http.StatusBadRequest, "Email y contraseña son obligatorios.")
		return
	}

	user, err := a.auth.SignUp(c.Request.Context(), email, password)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(user.ID) == "" {
		writeError(c, http.StatusBadRequest, "No se pudo crear la cuenta.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cuenta creada exitosamente. Revisa tu email para confirmar.",
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

func (a *App) login(c *gin.Context) {
	var payload credentialsRequest
	if !mustJSON(c, &payload) {
		return
	}

	email := strings.TrimSpace(payload.Email)
	password := strings.TrimSpace(payload.Password)
	if email == "" || password == "" {
		writeError(c, http.StatusBadRequest, "Email y contraseña son obligatorios.")
		return
	}

	session, err := a.auth.SignInWithPassword(c.Request.Context(), email, password)
	if err != nil {
		writeError(c, http.StatusUnauthorized, err.Error())
		return
	}
	if strings.TrimSpace(session.AccessToken) == "" {
		writeError(c, http.StatusUnauthorized, "Credenciales incorrectas.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"access_token": session.AccessToken,
		"user": gin.H{
			"id":    session.User.ID,
			"email": session.User.Email,
		},
	})
}
