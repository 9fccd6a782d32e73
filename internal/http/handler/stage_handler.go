package handler

import (
	"encoding/json"
	"net/http"

	"github.com/applyr/applyr/internal/domain"
	"github.com/applyr/applyr/internal/http/response"
	"github.com/applyr/applyr/internal/service"
)

type stageRequest struct {
	VacancyID   uint   `json:"vacancy_id"`
	StageType   string `json:"stage_type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type StageHandler struct {
	stages *service.StageService
}

func NewStageHandler(stages *service.StageService) *StageHandler {
	return &StageHandler{stages: stages}
}

func (h *StageHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req stageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VacancyID == 0 {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "vacancy_id is required")
		return
	}
	in, ok := stageInput(w, req)
	if !ok {
		return
	}
	stage, err := h.stages.Create(r.Context(), userID, req.VacancyID, in)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stage)
}

func (h *StageHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "stage_id")
	if !ok {
		return
	}
	stage, err := h.stages.Get(r.Context(), userID, id)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stage)
}

func (h *StageHandler) ListByVacancy(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	vacancyID, ok := pathID(w, r, "vacancy_id")
	if !ok {
		return
	}
	stages, err := h.stages.ListByVacancy(r.Context(), userID, vacancyID)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stages)
}

func (h *StageHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "stage_id")
	if !ok {
		return
	}
	var req stageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body")
		return
	}
	in, ok := stageInput(w, req)
	if !ok {
		return
	}
	stage, err := h.stages.Update(r.Context(), userID, id, in)
	if err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stage)
}

func (h *StageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "stage_id")
	if !ok {
		return
	}
	if err := h.stages.Delete(r.Context(), userID, id); err != nil {
		MapServiceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, messageResponse{Message: "stage deleted"})
}

func stageInput(w http.ResponseWriter, req stageRequest) (service.StageInput, bool) {
	stageType := domain.StageType(req.StageType)
	if req.StageType != "" && !domain.ValidStageType(stageType) {
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown stage_type")
		return service.StageInput{}, false
	}
	return service.StageInput{
		StageType:   stageType,
		Title:       req.Title,
		Description: req.Description,
	}, true
}
