package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/knbsoft/knb_backend/internal/core/ports/services"
	"github.com/knbsoft/knb_backend/internal/dto"
	"github.com/knbsoft/knb_backend/internal/middleware"
)

// AccountHandler exposes account directory operations. It also holds the
// ledger facade so an opening deposit is booked through the ledger engine and
// shows up in the transaction log like any other credit.
type AccountHandler struct {
	accountSvc portssvc.AccountSvcFacade
	ledgerSvc  portssvc.LedgerSvcFacade
}

func NewAccountHandler(accountSvc portssvc.AccountSvcFacade, ledgerSvc portssvc.LedgerSvcFacade) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc, ledgerSvc: ledgerSvc}
}

// CreateAccount godoc
// @Summary Open a new bank account
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 409 {object} handlers.ErrorResponse
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	creatorID, _ := middleware.GetUserIDFromCtx(c.Request.Context())

	acc, err := h.accountSvc.CreateAccount(c.Request.Context(), req, creatorID)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.OpeningDeposit.IsPositive() {
		result, err := h.ledgerSvc.Deposit(c.Request.Context(), acc.AccountNumber, req.OpeningDeposit, creatorID)
		if err != nil {
			// The account exists; the opening deposit can be retried as a
			// normal deposit.
			middleware.GetLoggerFromCtx(c.Request.Context()).Error("Opening deposit failed after account creation",
				slog.Int64("acno", acc.AccountNumber), slog.String("error", err.Error()))
			respondError(c, err)
			return
		}
		acc.Balance = result.NewBalance
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(acc))
}

// GetAccount godoc
// @Summary Get an account by number
// @Tags accounts
// @Produce json
// @Param accountNumber path int true "Account number"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /accounts/{accountNumber} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountNumber, err := strconv.ParseInt(c.Param("accountNumber"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid account number"})
		return
	}

	acc, err := h.accountSvc.GetAccountByNumber(c.Request.Context(), accountNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

// GetMyAccount godoc
// @Summary Get the authenticated user's account
// @Tags accounts
// @Produce json
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /accounts/me [get]
func (h *AccountHandler) GetMyAccount(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	acc, err := h.accountSvc.GetAccountByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

// ListAccounts godoc
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListAccountsResponse
// @Router /accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.accountSvc.ListAccounts(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// UpdateAccountStatus godoc
// @Summary Transition an account's lifecycle status
// @Tags accounts
// @Accept json
// @Produce json
// @Param accountNumber path int true "Account number"
// @Param status body dto.UpdateAccountStatusRequest true "New status"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /accounts/{accountNumber}/status [patch]
func (h *AccountHandler) UpdateAccountStatus(c *gin.Context) {
	accountNumber, err := strconv.ParseInt(c.Param("accountNumber"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid account number"})
		return
	}

	var req dto.UpdateAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	userID, _ := middleware.GetUserIDFromCtx(c.Request.Context())
	acc, err := h.accountSvc.UpdateAccountStatus(c.Request.Context(), accountNumber, req.Status, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

// UpdateContact godoc
// @Summary Update an account's contact details
// @Tags accounts
// @Accept json
// @Produce json
// @Param accountNumber path int true "Account number"
// @Param contact body dto.UpdateContactRequest true "New contact details"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /accounts/{accountNumber}/contact [patch]
func (h *AccountHandler) UpdateContact(c *gin.Context) {
	accountNumber, err := strconv.ParseInt(c.Param("accountNumber"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid account number"})
		return
	}

	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	userID, _ := middleware.GetUserIDFromCtx(c.Request.Context())
	acc, err := h.accountSvc.UpdateContactInfo(c.Request.Context(), accountNumber, req.MobileNumber, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}
