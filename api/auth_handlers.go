package api

import (
	"log"
	"net/http"

	"github.com/PeakReachMedia/peakreach-go/config"
	"github.com/PeakReachMedia/peakreach-go/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// LoginHandler authenticates an operator and issues the token required by
// the session-data query endpoint.
func LoginHandler(c *gin.Context) {
	var loginReq struct {
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if config.OperatorPasswordHash == "" || config.JWTSecret == "" {
		log.Printf("ERROR: LoginHandler - operator credentials not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(config.OperatorPasswordHash), []byte(loginReq.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateOperatorToken(config.JWTSecret, config.OperatorTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
