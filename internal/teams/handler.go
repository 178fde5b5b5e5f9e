package teams

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/teamroom-io/teamroom/internal/platform/httpx"
	"github.com/teamroom-io/teamroom/internal/shared"
)

// Handler wires HTTP endpoints for team management.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers team routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/team", h.handleCreate)
	r.Get("/team/{teamID}", h.handleRead)
	r.Put("/team/{teamID}", h.handleUpdate)
	r.Delete("/team/{teamID}", h.handleDelete)
	r.Post("/team_user/{teamID}", h.handleAddMember)
	r.Delete("/team_user/{teamID}", h.handleRemoveMember)
}

type createTeamRequest struct {
	Name string `json:"name" validate:"required,max=50"`
	Type string `json:"type" validate:"required,max=50"`
}

type updateTeamRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type memberRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type restrictedTeamView struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type fullTeamView struct {
	ID          int64    `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	AdvanceTime int      `json:"advance_time"`
	Members     []Member `json:"members"`
}

func teamPathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "teamID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrValidation
	}
	return id, nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if _, err := h.service.Create(r.Context(), principal, req.Name, req.Type); err != nil {
		h.respondError(w, err, "create team")
		return
	}
	httpx.NoContent(w, http.StatusCreated)
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	id, err := teamPathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	team, members, full, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, err, "read team")
		return
	}
	if !full {
		httpx.JSON(w, http.StatusOK, restrictedTeamView{ID: team.ID, Type: team.Type.Name})
		return
	}
	httpx.JSON(w, http.StatusOK, fullTeamView{
		ID:          team.ID,
		Type:        team.Type.Name,
		Name:        team.Name,
		AdvanceTime: team.Type.AdvanceTime,
		Members:     members,
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := teamPathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateTeamRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.Update(r.Context(), principal, id, req.Name); err != nil {
		h.respondError(w, err, "update team")
		return
	}
	httpx.NoContent(w, http.StatusOK)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := teamPathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.respondError(w, err, "delete team")
		return
	}
	httpx.NoContent(w, http.StatusOK)
}

func (h *Handler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	h.handleMembership(w, r, h.service.AddMember)
}

func (h *Handler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	h.handleMembership(w, r, h.service.RemoveMember)
}

func (h *Handler) handleMembership(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, principal *shared.Principal, teamID, userID int64) error) {
	id, err := teamPathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req memberRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if err := apply(r.Context(), principal, id, req.UserID); err != nil {
		h.respondError(w, err, "change membership")
		return
	}
	httpx.NoContent(w, http.StatusOK)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	if h.logger != nil {
		h.logger.Warn(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
