package httpserver

import (
	"net/http"

	accountsvc "shopcart/internal/service/account"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func signupHandler(svc AccountService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req accountsvc.SignupInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		acct, err := svc.Signup(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"account": acct})
	}
}

func loginHandler(svc AccountService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}
		acct, token, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"account":     acct,
			"accessToken": token,
			"expiresIn":   svc.AccessTTLSeconds(),
		})
	}
}

func anonymousSessionHandler(svc AnonymousService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		anonymousID, token, err := svc.Issue(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"anonymousId": anonymousID,
			"accessToken": token,
			"expiresIn":   svc.TTLSeconds(),
		})
	}
}
