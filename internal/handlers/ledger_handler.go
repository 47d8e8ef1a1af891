package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/services"
)

// LedgerHandler handles the write side: sales, expenses, products and customers
type LedgerHandler struct {
	ledgerService services.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService services.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// @Summary Record a sale
// @Description Record a sale; item prices default to the product's current prices
// @Tags sales
// @Accept json
// @Produce json
// @Param sale body services.RecordSaleRequest true "Sale data"
// @Success 201 {object} models.Sale
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sales [post]
func (h *LedgerHandler) CreateSale(c *gin.Context) {
	var req services.RecordSaleRequest
	if !bindJSON(c, &req) {
		return
	}

	sale, err := h.ledgerService.RecordSale(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to record sale")
		return
	}

	c.JSON(http.StatusCreated, sale)
}

// @Summary Delete a sale
// @Tags sales
// @Param id path string true "Sale ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sales/{id} [delete]
func (h *LedgerHandler) DeleteSale(c *gin.Context) {
	if err := h.ledgerService.DeleteSale(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "Failed to delete sale")
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Record an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param expense body services.RecordExpenseRequest true "Expense data"
// @Success 201 {object} models.Expense
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses [post]
func (h *LedgerHandler) CreateExpense(c *gin.Context) {
	var req services.RecordExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := h.ledgerService.RecordExpense(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to record expense")
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// @Summary Delete an expense
// @Tags expenses
// @Param id path string true "Expense ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses/{id} [delete]
func (h *LedgerHandler) DeleteExpense(c *gin.Context) {
	if err := h.ledgerService.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "Failed to delete expense")
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Param product body services.RecordProductRequest true "Product data"
// @Success 201 {object} models.Product
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /products [post]
func (h *LedgerHandler) CreateProduct(c *gin.Context) {
	var req services.RecordProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.ledgerService.RecordProduct(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// @Summary Create a customer
// @Tags customers
// @Accept json
// @Produce json
// @Param customer body services.RecordCustomerRequest true "Customer data"
// @Success 201 {object} models.Customer
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /customers [post]
func (h *LedgerHandler) CreateCustomer(c *gin.Context) {
	var req services.RecordCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.ledgerService.RecordCustomer(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// bindJSON decodes the body into req and writes a 400 when it cannot
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return false
	}
	return true
}
