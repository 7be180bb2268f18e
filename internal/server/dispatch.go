package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	dispatchdomain "github.com/mepworks/invoicing/internal/dispatch/domain"
)

func (s *Server) IssueDispatchNote(c *gin.Context) {
	var req dispatchdomain.IssueOrUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	note, err := s.dispatchSvc.IssueOrUpdate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": note})
}

func (s *Server) GetDispatchByInvoice(c *gin.Context) {
	note, err := s.dispatchSvc.GetByInvoice(c.Request.Context(), strings.TrimSpace(c.Param("invoiceId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// A missing note is a normal state; the client renders it as not yet
	// dispatched.
	c.JSON(http.StatusOK, gin.H{"data": note})
}
