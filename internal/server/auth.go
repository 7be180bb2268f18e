package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/mepworks/invoicing/internal/auth/domain"
)

func (s *Server) Login(c *gin.Context) {
	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) Register(c *gin.Context) {
	var req authdomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Only an authenticated admin may grant a non-customer role.
	if req.Role != "" && req.Role != authdomain.RoleCustomer {
		principal := s.optionalPrincipal(c)
		if principal == nil || principal.Role != authdomain.RoleAdmin {
			req.Role = authdomain.RoleCustomer
		}
	}

	user, err := s.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func (s *Server) Logout(c *gin.Context) {
	if err := s.authSvc.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"loggedOut": true}})
}

func (s *Server) Me(c *gin.Context) {
	principal := currentPrincipal(c)
	if principal == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": principal})
}

// optionalPrincipal resolves the bearer token on routes outside AuthRequired.
func (s *Server) optionalPrincipal(c *gin.Context) *authdomain.Principal {
	token := bearerToken(c)
	if token == "" {
		return nil
	}
	principal, err := s.authSvc.Authenticate(c.Request.Context(), token)
	if err != nil {
		return nil
	}
	return principal
}
