package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MarwanIssa100/SparkUp/internal/ledger"
	"github.com/MarwanIssa100/SparkUp/internal/model"
	"github.com/MarwanIssa100/SparkUp/internal/state"
	"github.com/MarwanIssa100/SparkUp/internal/view"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// Session yields the connected account, or false when none is configured.
type Session interface {
	Account() (common.Address, bool)
}

type IdeaHandler struct {
	store     *state.Store
	commander *state.Commander
	reader    *ledger.Reader
	session   Session
}

func NewIdeaHandler(store *state.Store, commander *state.Commander, reader *ledger.Reader, session Session) *IdeaHandler {
	return &IdeaHandler{
		store:     store,
		commander: commander,
		reader:    reader,
		session:   session,
	}
}

// ListIdeas renders the current snapshot projected for the session account.
func (h *IdeaHandler) ListIdeas(c *gin.Context) {
	account, connected := h.session.Account()

	resp := IdeaListResponse{
		Ideas:     view.ProjectAll(h.store.Ideas(), account),
		Loading:   h.store.Loading(),
		Connected: connected,
	}
	if connected {
		resp.Account = account.Hex()
	}
	if err := h.store.LastErr(); err != nil {
		resp.Error = "Failed to load ideas"
	}
	if pending, ok := h.commander.Pending(); ok {
		resp.Pending = pending
	}

	SuccessResponse(c, http.StatusOK, "", resp)
}

// CreateIdea applies the optimistic record and submits the transaction.
func (h *IdeaHandler) CreateIdea(c *gin.Context) {
	var req CreateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	txHash, err := h.commander.SubmitCreate(c.Request.Context(), req.Title, req.Description, req.Goal)
	if err != nil {
		h.writeCommandError(c, err)
		return
	}

	SuccessResponse(c, http.StatusAccepted, "Idea submitted", gin.H{"tx_hash": txHash.Hex()})
}

// FundIdea attaches the amount as transaction value.
func (h *IdeaHandler) FundIdea(c *gin.Context) {
	id, ok := h.ideaId(c)
	if !ok {
		return
	}

	var req FundIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	txHash, err := h.commander.Fund(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.writeCommandError(c, err)
		return
	}

	SuccessResponse(c, http.StatusAccepted, "Funding submitted", gin.H{"tx_hash": txHash.Hex()})
}

// Withdraw lets the campaign owner collect the raised funds. Ownership is
// checked by the contract, not here.
func (h *IdeaHandler) Withdraw(c *gin.Context) {
	id, ok := h.ideaId(c)
	if !ok {
		return
	}

	txHash, err := h.commander.Withdraw(c.Request.Context(), id)
	if err != nil {
		h.writeCommandError(c, err)
		return
	}

	SuccessResponse(c, http.StatusAccepted, "Withdrawal submitted", gin.H{"tx_hash": txHash.Hex()})
}

// CompleteIdea marks the campaign completed.
func (h *IdeaHandler) CompleteIdea(c *gin.Context) {
	id, ok := h.ideaId(c)
	if !ok {
		return
	}

	txHash, err := h.commander.Complete(c.Request.Context(), id)
	if err != nil {
		h.writeCommandError(c, err)
		return
	}

	SuccessResponse(c, http.StatusAccepted, "Completion submitted", gin.H{"tx_hash": txHash.Hex()})
}

// Refund requests the session account's contribution back.
func (h *IdeaHandler) Refund(c *gin.Context) {
	id, ok := h.ideaId(c)
	if !ok {
		return
	}

	txHash, err := h.commander.Refund(c.Request.Context(), id)
	if err != nil {
		h.writeCommandError(c, err)
		return
	}

	SuccessResponse(c, http.StatusAccepted, "Refund submitted", gin.H{"tx_hash": txHash.Hex()})
}

// Refresh re-runs the full snapshot fetch.
func (h *IdeaHandler) Refresh(c *gin.Context) {
	if err := h.reader.Refresh(c.Request.Context(), h.store); err != nil {
		ErrorResponse(c, http.StatusBadGateway, "Failed to load ideas")
		return
	}
	h.ListIdeas(c)
}

func (h *IdeaHandler) ideaId(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		ErrorResponse(c, http.StatusBadRequest, "invalid idea id")
		return 0, false
	}
	return id, true
}

func (h *IdeaHandler) writeCommandError(c *gin.Context, err error) {
	var validationErr *model.ValidationError
	var conversionErr *model.ConversionError
	var writeErr *model.WriteError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &conversionErr), errors.Is(err, model.ErrNoAccount):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrBusy):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.As(err, &writeErr):
		ErrorResponse(c, http.StatusBadGateway, err.Error())
	default:
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
