package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/applyr/applyr/internal/http/response"
	"github.com/applyr/applyr/internal/observability"
	"github.com/applyr/applyr/internal/service"
)

// BotHandler is the internal surface the companion chat bot calls. It never
// sees user credentials; it resolves senders by telegram handle and ingests
// vacancies on their behalf.
type BotHandler struct {
	auth      *service.AuthService
	vacancies *service.VacancyService
}

func NewBotHandler(auth *service.AuthService, vacancies *service.VacancyService) *BotHandler {
	return &BotHandler{auth: auth, vacancies: vacancies}
}

func (h *BotHandler) GetUserByTelegram(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if handle == "" {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "handle is required")
		return
	}
	user, err := h.auth.FindByTelegram(r.Context(), handle)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, userInfoResponse{
		ID:               user.ID,
		Username:         user.Username,
		TelegramUsername: user.TelegramUsername,
		CreatedAt:        user.CreatedAt,
	})
}

func (h *BotHandler) CreateVacancy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uint `json:"user_id"`
		vacancyRequest
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "user_id is required")
		return
	}
	if req.Name == "" || req.Link == "" {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name and link are required")
		return
	}
	// Never ingest for an id no account holds.
	if _, err := h.auth.UserByID(r.Context(), req.UserID); err != nil {
		MapServiceError(w, err)
		return
	}
	v, err := h.vacancies.IngestFromBot(r.Context(), req.UserID, service.VacancyInput{
		Name:        req.Name,
		Link:        req.Link,
		CompanyName: req.CompanyName,
		Description: req.Description,
	})
	if err != nil {
		MapServiceError(w, err)
		return
	}
	observability.Audit(r, "bot.vacancy_ingested", "user_id", req.UserID, "vacancy_id", v.ID)
	response.JSON(w, http.StatusOK, v)
}
