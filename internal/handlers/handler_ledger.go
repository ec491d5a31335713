package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/knbsoft/knb_backend/internal/apperrors"
	portssvc "github.com/knbsoft/knb_backend/internal/core/ports/services"
	"github.com/knbsoft/knb_backend/internal/dto"
	"github.com/knbsoft/knb_backend/internal/middleware"
)

// LedgerHandler exposes the money movement operations.
type LedgerHandler struct {
	ledgerSvc  portssvc.LedgerSvcFacade
	accountSvc portssvc.AccountSvcFacade
}

func NewLedgerHandler(ledgerSvc portssvc.LedgerSvcFacade, accountSvc portssvc.AccountSvcFacade) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc, accountSvc: accountSvc}
}

// authorizeAccountAccess allows staff roles to act on any account and clients
// only on their own.
func (h *LedgerHandler) authorizeAccountAccess(ctx context.Context, accountNumber int64) (string, error) {
	userID, ok := middleware.GetUserIDFromCtx(ctx)
	if !ok {
		return "", apperrors.ErrForbidden
	}
	role, ok := middleware.GetRoleFromCtx(ctx)
	if !ok {
		return "", apperrors.ErrForbidden
	}
	if role.CanViewAllAccounts() {
		return userID, nil
	}

	own, err := h.accountSvc.GetAccountByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: no account linked to user", apperrors.ErrForbidden)
	}
	if own.AccountNumber != accountNumber {
		return "", fmt.Errorf("%w: account %d does not belong to user", apperrors.ErrForbidden, accountNumber)
	}
	return userID, nil
}

// Deposit godoc
// @Summary Deposit cash into an account
// @Tags transactions
// @Accept json
// @Produce json
// @Param deposit body dto.DepositRequest true "Deposit details"
// @Success 200 {object} dto.MovementResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 422 {object} handlers.ErrorResponse
// @Router /transactions/deposit [post]
func (h *LedgerHandler) Deposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	userID, _ := middleware.GetUserIDFromCtx(c.Request.Context())
	result, err := h.ledgerSvc.Deposit(c.Request.Context(), req.AccountNumber, req.Amount, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMovementResponse(result))
}

// Withdraw godoc
// @Summary Withdraw cash from an account
// @Tags transactions
// @Accept json
// @Produce json
// @Param withdrawal body dto.WithdrawRequest true "Withdrawal details"
// @Success 200 {object} dto.MovementResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 422 {object} handlers.ErrorResponse
// @Router /transactions/withdraw [post]
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	userID, _ := middleware.GetUserIDFromCtx(c.Request.Context())
	result, err := h.ledgerSvc.Withdraw(c.Request.Context(), req.AccountNumber, req.Amount, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMovementResponse(result))
}

// Transfer godoc
// @Summary Transfer funds between two accounts
// @Tags transactions
// @Accept json
// @Produce json
// @Param transfer body dto.TransferRequest true "Transfer details"
// @Success 200 {object} dto.MovementResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 422 {object} handlers.ErrorResponse
// @Router /transactions/transfer [post]
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	userID, err := h.authorizeAccountAccess(c.Request.Context(), req.FromAccount)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.ledgerSvc.Transfer(c.Request.Context(), req.FromAccount, req.ToAccount, req.Amount, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMovementResponse(result))
}

// PayBill godoc
// @Summary Pay a utility bill from an account
// @Tags transactions
// @Accept json
// @Produce json
// @Param payment body dto.PayBillRequest true "Bill payment details"
// @Success 200 {object} dto.MovementResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 422 {object} handlers.ErrorResponse
// @Router /transactions/paybill [post]
func (h *LedgerHandler) PayBill(c *gin.Context) {
	var req dto.PayBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	userID, err := h.authorizeAccountAccess(c.Request.Context(), req.AccountNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.ledgerSvc.PayBill(c.Request.Context(), req.AccountNumber, req.Amount, req.Payee, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMovementResponse(result))
}

// ListEntries godoc
// @Summary List an account's transaction history
// @Tags transactions
// @Produce json
// @Param accountNumber path int true "Account number"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Opaque pagination token"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Router /accounts/{accountNumber}/transactions [get]
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	accountNumber, err := strconv.ParseInt(c.Param("accountNumber"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid account number"})
		return
	}

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}

	if _, err := h.authorizeAccountAccess(c.Request.Context(), accountNumber); err != nil {
		respondError(c, err)
		return
	}

	page, err := h.ledgerSvc.ListEntries(c.Request.Context(), accountNumber, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
