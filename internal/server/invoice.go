package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/mepworks/invoicing/internal/invoice/domain"
)

const queryDateLayout = "2006-01-02"

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": invoice})
}

func (s *Server) NextInvoiceNo(c *gin.Context) {
	next, err := s.invoiceSvc.NextInvoiceNo(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nextInvoiceNo": next})
}

func (s *Server) ListInvoices(c *gin.Context) {
	req := invoicedomain.ListInvoiceRequest{
		Search:      strings.TrimSpace(c.Query("search")),
		PaymentType: strings.TrimSpace(c.Query("paymentType")),
		Sort:        strings.TrimSpace(c.Query("sort")),
	}

	if raw := strings.TrimSpace(c.Query("startDate")); raw != "" {
		parsed, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			AbortWithError(c, invoicedomain.NewValidationError("startDate", "invalid_date", "startDate must be YYYY-MM-DD"))
			return
		}
		req.StartDate = &parsed
	}
	if raw := strings.TrimSpace(c.Query("endDate")); raw != "" {
		parsed, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			AbortWithError(c, invoicedomain.NewValidationError("endDate", "invalid_date", "endDate must be YYYY-MM-DD"))
			return
		}
		req.EndDate = &parsed
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			AbortWithError(c, invoicedomain.NewValidationError("limit", "invalid_limit", "limit must be a non-negative integer"))
			return
		}
		req.Limit = limit
	}

	invoices, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) MyInvoices(c *gin.Context) {
	principal := currentPrincipal(c)
	if principal == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	invoices, err := s.invoiceSvc.ListByPhone(c.Request.Context(), principal.Phone)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

func (s *Server) InvoiceStats(c *gin.Context) {
	stats, err := s.invoiceSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (s *Server) SalesOverTime(c *gin.Context) {
	series, err := s.invoiceSvc.SalesOverTime(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": series})
}

func (s *Server) InvoiceStatusCounts(c *gin.Context) {
	counts, err := s.invoiceSvc.StatusCounts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": counts})
}

func (s *Server) OutstandingCredit(c *gin.Context) {
	exposure, err := s.invoiceSvc.OutstandingCredit(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": exposure})
}
