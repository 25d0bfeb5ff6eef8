package handlers

import (
	"net/http"

	"github.com/zdenkokanos/MTAA-backend/middleware"
	"github.com/zdenkokanos/MTAA-backend/services"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

type createTeamRequest struct {
	TeamName string `json:"team_name"`
}

type joinTeamRequest struct {
	Code string `json:"code"`
}

type checkTicketRequest struct {
	Ticket string `json:"ticket"`
}

// CreateTeam godoc
// @Summary Зарегистрировать команду на турнир
// @Tags registry
// @Description Создаёт команду, генерирует код вступления и билет для создателя.
// @Accept json
// @Produce json
// @Param id path int true "Tournament ID"
// @Param input body createTeamRequest true "Название команды"
// @Success 201 {object} models.TeamRegistration
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Название занято / уже зарегистрирован"
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Security BearerAuth
// @Router /tournaments/{id}/register [post]
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input createTeamRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	reg, err := h.teamService.CreateTeam(r.Context(), tournamentID, input.TeamName, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"message":   "Team and member registered",
		"team_id":   reg.TeamID,
		"team_code": reg.TeamCode,
		"ticket":    reg.Ticket,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// JoinTeam godoc
// @Summary Вступить в команду по коду
// @Tags registry
// @Accept json
// @Produce json
// @Param id path int true "Tournament ID"
// @Param input body joinTeamRequest true "Код команды"
// @Success 201 {object} map[string]string "Билет участника"
// @Failure 400 {object} map[string]string "Команда заполнена / ошибка валидации"
// @Failure 404 {object} map[string]string "Команда или турнир не найдены"
// @Failure 409 {object} map[string]string "Уже зарегистрирован / регистрация закрыта"
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Security BearerAuth
// @Router /tournaments/{id}/join_team [post]
func (h *TeamHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input joinTeamRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	ticket, err := h.teamService.JoinTeam(r.Context(), tournamentID, input.Code, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"message": "User added to the team",
		"ticket":  ticket,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckTicket godoc
// @Summary Проверить билет участника
// @Tags registry
// @Accept json
// @Produce json
// @Param id path int true "Tournament ID"
// @Param input body checkTicketRequest true "Билет"
// @Success 200 {object} models.TeamMembership
// @Failure 403 {object} map[string]string "Только владелец турнира"
// @Failure 404 {object} map[string]string "Билет не найден"
// @Security BearerAuth
// @Router /tournaments/{id}/check-tickets [post]
func (h *TeamHandler) CheckTicket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input checkTicketRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	membership, err := h.teamService.CheckTicket(r.Context(), tournamentID, currentUserID, input.Ticket)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, membership, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) ListEnrolledTeams(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.teamService.ListEnrolledTeams(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) CountTeams(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	count, err := h.teamService.CountTeams(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team_count": count}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
