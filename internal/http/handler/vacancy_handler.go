package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/applyr/applyr/internal/http/middleware"
	"github.com/applyr/applyr/internal/http/response"
	"github.com/applyr/applyr/internal/service"
)

type vacancyRequest struct {
	Name        string `json:"name"`
	Link        string `json:"link"`
	CompanyName string `json:"company_name"`
	Description string `json:"description"`
}

type VacancyHandler struct {
	vacancies *service.VacancyService
}

func NewVacancyHandler(vacancies *service.VacancyService) *VacancyHandler {
	return &VacancyHandler{vacancies: vacancies}
}

func (h *VacancyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	in, ok := decodeVacancy(w, r)
	if !ok {
		return
	}
	v, err := h.vacancies.Create(r.Context(), userID, in)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, v)
}

func (h *VacancyHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "vacancy_id")
	if !ok {
		return
	}
	v, err := h.vacancies.Get(r.Context(), userID, id)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, v)
}

func (h *VacancyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	vacancies, err := h.vacancies.ListByUser(r.Context(), userID)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, vacancies)
}

func (h *VacancyHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "vacancy_id")
	if !ok {
		return
	}
	in, ok := decodeVacancy(w, r)
	if !ok {
		return
	}
	v, err := h.vacancies.Update(r.Context(), userID, id, in)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, v)
}

func (h *VacancyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "vacancy_id")
	if !ok {
		return
	}
	if err := h.vacancies.Delete(r.Context(), userID, id); err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, messageResponse{Message: "vacancy deleted"})
}

func decodeVacancy(w http.ResponseWriter, r *http.Request) (service.VacancyInput, bool) {
	var req vacancyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body")
		return service.VacancyInput{}, false
	}
	if req.Name == "" || req.Link == "" {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name and link are required")
		return service.VacancyInput{}, false
	}
	return service.VacancyInput{
		Name:        req.Name,
		Link:        req.Link,
		CompanyName: req.CompanyName,
		Description: req.Description,
	}, true
}

// currentUserID pulls the authenticated user id out of the claims the Auth
// middleware stored. Reaching here without claims means a route was wired
// without the middleware, which reads as unauthenticated, not a 500.
func currentUserID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token")
		return 0, false
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token")
		return 0, false
	}
	return userID, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
