package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/WilliamSoderberg/volley-bracket/brackets"
	"github.com/WilliamSoderberg/volley-bracket/exports"
	"github.com/WilliamSoderberg/volley-bracket/middleware"
	"github.com/WilliamSoderberg/volley-bracket/models"
	"github.com/WilliamSoderberg/volley-bracket/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	scoreService      services.ScoreService
}

func NewTournamentHandler(ts services.TournamentService, ss services.ScoreService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		scoreService:      ss,
	}
}

// CreateHandler handles POST /tournaments.
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.TournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := http.Header{"Location": []string{"/tournaments/" + t.ID}}
	view := services.TournamentView{Tournament: t, Schedule: services.BuildSchedule(t)}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": view}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}. Admins get the
// full document, access code included.
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var view *services.TournamentView
	if middleware.IsAdmin(r.Context()) {
		var t *models.Tournament
		if t, err = h.tournamentService.GetDocument(r.Context(), id); err == nil {
			view = &services.TournamentView{Tournament: t, Schedule: services.BuildSchedule(t)}
		}
	} else {
		view, err = h.tournamentService.Get(r.Context(), id)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PUT /tournaments/{tournamentID}.
func (h *TournamentHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.TournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t, err := h.tournamentService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	view := services.TournamentView{Tournament: t, Schedule: services.BuildSchedule(t)}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /tournaments/{tournamentID}.
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reportInput struct {
	MatchID string       `json:"match_id"`
	Sets    []models.Set `json:"sets"`
	Code    string       `json:"code"`
	Clear   bool         `json:"clear"`
	Cascade bool         `json:"cascade"`
}

// ReportHandler handles POST /tournaments/{tournamentID}/report. It reports
// sets, or clears the match when clear is set. An admin session overrides
// the access code.
func (h *TournamentHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input reportInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.MatchID == "" {
		badRequestResponse(w, r, fmt.Errorf("match_id is required"))
		return
	}

	cred := services.CodeCredential(input.Code)
	if middleware.IsAdmin(r.Context()) {
		cred = services.AdminCredential()
	}

	var res *services.ScoreResult
	if input.Clear {
		res, err = h.scoreService.Clear(r.Context(), id, input.MatchID, brackets.ClearOptions{Cascade: input.Cascade}, cred)
	} else {
		res, err = h.scoreService.Report(r.Context(), id, input.MatchID, input.Sets, cred)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": res}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ScheduleExportHandler handles GET /tournaments/{tournamentID}/schedule.xlsx.
func (h *TournamentHandler) ScheduleExportHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.tournamentService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := exports.WriteSchedule(&buf, view.Tournament); err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", exports.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="schedule-%s.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
