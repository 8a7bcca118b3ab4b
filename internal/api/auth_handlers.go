package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/booksmt/booksmt/internal/auth"
	"github.com/booksmt/booksmt/internal/session"
)

// AuthHandler contains authentication handlers
type AuthHandler struct {
	dir      *auth.Directory
	sessions *session.Store
	machine  *session.Machine
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(dir *auth.Directory, sessions *session.Store, machine *session.Machine) *AuthHandler {
	return &AuthHandler{dir: dir, sessions: sessions, machine: machine}
}

// Login handles credential submission. A match creates a session on the
// main page and returns its token; any mismatch surfaces an error and no
// session is created.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	entry, err := h.dir.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password."})
		return
	}

	s := h.sessions.Create()
	h.machine.Login(s, entry.Username)

	token, err := auth.GenerateToken(s.ID, entry.Username)
	if err != nil {
		h.sessions.Delete(s.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"username": entry.Username,
		"page":     s.Page,
	})
}

// Logout resets the session from any page and discards it.
func (h *AuthHandler) Logout(c *gin.Context) {
	s := auth.GetSession(c)
	h.machine.Logout(s)
	h.sessions.Delete(s.ID)

	c.JSON(http.StatusOK, gin.H{"page": s.Page})
}
