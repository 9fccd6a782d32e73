package handler

import (
	"encoding/json"
	"net/http"

	"github.com/applyr/applyr/internal/http/response"
	"github.com/applyr/applyr/internal/service"
)

type notesResponse struct {
	VacancyID uint   `json:"vacancy_id"`
	Notes     string `json:"notes"`
}

type FavoriteHandler struct {
	favorites *service.FavoriteService
}

func NewFavoriteHandler(favorites *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

func (h *FavoriteHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	vacancyID, ok := pathID(w, r, "vacancy_id")
	if !ok {
		return
	}
	notes, err := h.favorites.GetNotes(r.Context(), userID, vacancyID)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, notesResponse{VacancyID: vacancyID, Notes: notes})
}

func (h *FavoriteHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	vacancyID, ok := pathID(w, r, "vacancy_id")
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body")
		return
	}
	notes, err := h.favorites.UpdateNotes(r.Context(), userID, vacancyID, req.Notes)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, notesResponse{VacancyID: vacancyID, Notes: notes})
}
