package rooms

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/teamroom-io/teamroom/internal/platform/httpx"
	"github.com/teamroom-io/teamroom/internal/shared"
)

// Handler wires HTTP endpoints for room management.
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

// MountRoutes registers room routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/room", h.handleList)
	r.Post("/room", h.handleCreate)
	r.Get("/room/{roomID}", h.handleRead)
	r.Put("/room/{roomID}", h.handleUpdate)
	r.Delete("/room/{roomID}", h.handleDelete)
}

type createRoomRequest struct {
	Number string `json:"number" validate:"required,max=50"`
}

type updateRoomRequest struct {
	Number   string   `json:"number" validate:"required,max=50"`
	Features []string `json:"features" validate:"required,dive,required,max=50"`
}

type roomDetail struct {
	ID           int64             `json:"id"`
	Number       string            `json:"number"`
	Features     []Feature         `json:"features"`
	Reservations []ReservationSlot `json:"reservations"`
}

func roomPathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrValidation
	}
	return id, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, err, "list rooms")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	room, err := h.service.Create(r.Context(), req.Number)
	if err != nil {
		h.respondError(w, err, "create room")
		return
	}
	httpx.JSON(w, http.StatusCreated, room)
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	id, err := roomPathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	room, features, reservations, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "read room")
		return
	}
	httpx.JSON(w, http.StatusOK, roomDetail{
		ID:           room.ID,
		Number:       room.Number,
		Features:     features,
		Reservations: reservations,
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := roomPathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateRoomRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.service.Update(r.Context(), id, req.Number, req.Features); err != nil {
		h.respondError(w, err, "update room")
		return
	}
	httpx.NoContent(w, http.StatusOK)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := roomPathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err, "delete room")
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
