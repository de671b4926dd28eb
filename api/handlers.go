package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// Balances is the part of the ledger the API reads
type Balances interface {
	GetBalance(ctx context.Context, account models.Account) (models.Bobux, error)
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.MemberBalance, error)
}

// Subscriptions lists a guild's role subscriptions
type Subscriptions interface {
	List(ctx context.Context, guildID, memberID int64) ([]*models.SubscriptionListing, error)
}

// Handler serves the read-only API
type Handler struct {
	balances      Balances
	subscriptions Subscriptions
	now           func() time.Time
}

// NewHandler creates a handler over the ledger and subscriptions
func NewHandler(balances Balances, subscriptions Subscriptions) *Handler {
	return &Handler{
		balances:      balances,
		subscriptions: subscriptions,
		now:           time.Now,
	}
}

// Health reports that the process is serving
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthDTO{Status: "ok", Time: h.now().UTC()})
}

// ListBalances returns the guild leaderboard, highest first
func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	guildID, ok := snowflakeParam(w, r, "guildID")
	if !ok {
		return
	}

	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxLeaderboardLimit {
			writeError(w, http.StatusBadRequest, "BadRequest", "limit must be between 1 and 100.")
			return
		}
		limit = parsed
	}

	rows, err := h.balances.Leaderboard(r.Context(), guildID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := make([]BalanceDTO, 0, len(rows))
	for _, row := range rows {
		response = append(response, toBalanceDTO(row.GuildID, row.UserID, row.Balance))
	}
	writeJSON(w, http.StatusOK, response)
}

// GetBalance returns one member's balance. Members without a row have zero.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	guildID, ok := snowflakeParam(w, r, "guildID")
	if !ok {
		return
	}
	userID, ok := snowflakeParam(w, r, "userID")
	if !ok {
		return
	}

	balance, err := h.balances.GetBalance(r.Context(), models.NewAccount(userID, guildID))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBalanceDTO(guildID, userID, balance))
}

// ListSubscriptions returns the guild's available role subscriptions
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	guildID, ok := snowflakeParam(w, r, "guildID")
	if !ok {
		return
	}

	listings, err := h.subscriptions.List(r.Context(), guildID, 0)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := make([]SubscriptionDTO, 0, len(listings))
	for _, listing := range listings {
		response = append(response, toSubscriptionDTO(listing))
	}
	writeJSON(w, http.StatusOK, response)
}

func snowflakeParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "BadRequest", name+" must be a snowflake.")
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := service.HTTPStatus(err)
	message, ok := service.UserMessage(err)
	if !ok {
		log.WithFields(log.Fields{
			"path":  r.URL.Path,
			"error": err,
		}).Error("HTTP API request failed")
		message = "An internal error has occurred."
	}
	writeError(w, status, service.ErrorType(err), message)
}

func writeError(w http.ResponseWriter, status int, errorType, message string) {
	writeJSON(w, status, ErrorDTO{Error: ErrorDetail{
		Type:       errorType,
		Message:    message,
		HTTPStatus: status,
	}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to write HTTP API response")
	}
}
