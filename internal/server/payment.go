package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/mepworks/invoicing/internal/payment/domain"
	"github.com/shopspring/decimal"
)

type createPaymentRequest struct {
	InvoiceID     string          `json:"invoiceId"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	PaymentMethod string          `json:"paymentMethod"`
	ChequeNo      string          `json:"chequeNo"`
	ChequeBank    string          `json:"chequeBank"`
	ChequeDate    *time.Time      `json:"chequeDate"`
}

func (s *Server) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.paymentSvc.Apply(c.Request.Context(), paymentdomain.ApplyPaymentRequest{
		InvoiceID:     req.InvoiceID,
		AmountPaid:    req.AmountPaid,
		PaymentMethod: req.PaymentMethod,
		ChequeNo:      req.ChequeNo,
		ChequeBank:    req.ChequeBank,
		ChequeDate:    req.ChequeDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (s *Server) PaymentHistory(c *gin.Context) {
	payments, err := s.paymentSvc.History(c.Request.Context(), strings.TrimSpace(c.Param("invoiceId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}
