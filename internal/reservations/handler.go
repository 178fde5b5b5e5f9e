package reservations

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/teamroom-io/teamroom/internal/platform/httpx"
	"github.com/teamroom-io/teamroom/internal/shared"
)

// Handler wires HTTP endpoints for reservations.
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

// MountRoutes registers reservation routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reservation", h.handleList)
	r.Post("/reservation", h.handleCreate)
	r.Get("/reservation/{resID}", h.handleRead)
	r.Put("/reservation/{resID}", h.handleUpdate)
	r.Delete("/reservation/{resID}", h.handleDelete)
}

type bookingPayload struct {
	TeamID   int64  `json:"team_id" validate:"required,gt=0"`
	RoomID   int64  `json:"room_id" validate:"required,gt=0"`
	Start    string `json:"start" validate:"required"`
	End      string `json:"end" validate:"required"`
	Override bool   `json:"override"`
}

type conflictResponse struct {
	Overridable bool `json:"overridable"`
}

type reservationView struct {
	ID        int64  `json:"id"`
	TeamID    int64  `json:"team_id"`
	RoomID    int64  `json:"room_id"`
	CreatedBy int64  `json:"created_by"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

func viewOf(res Reservation) reservationView {
	return reservationView{
		ID:        res.ID,
		TeamID:    res.TeamID,
		RoomID:    res.RoomID,
		CreatedBy: res.CreatedBy,
		Start:     res.Start.Format(time.RFC3339),
		End:       res.End.Format(time.RFC3339),
	}
}

func (h *Handler) decodeBooking(r *http.Request) (BookingRequest, error) {
	var payload bookingPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		return BookingRequest{}, shared.ErrValidation
	}
	if err := h.validate.Struct(payload); err != nil {
		return BookingRequest{}, shared.ErrValidation
	}
	start, err := time.Parse(time.RFC3339, payload.Start)
	if err != nil {
		return BookingRequest{}, shared.ErrValidation
	}
	end, err := time.Parse(time.RFC3339, payload.End)
	if err != nil {
		return BookingRequest{}, shared.ErrValidation
	}
	return BookingRequest{
		TeamID:   payload.TeamID,
		RoomID:   payload.RoomID,
		Start:    start,
		End:      end,
		Override: payload.Override,
	}, nil
}

func reservationPathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "resID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrValidation
	}
	return id, nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeBooking(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if _, err := h.service.Create(r.Context(), principal, req); err != nil {
		h.respondError(w, err, "create reservation")
		return
	}
	httpx.NoContent(w, http.StatusCreated)
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	id, err := reservationPathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	res, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, err, "read reservation")
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(*res))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := reservationPathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	req, err := h.decodeBooking(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if _, err := h.service.Update(r.Context(), principal, id, req); err != nil {
		h.respondError(w, err, "update reservation")
		return
	}
	httpx.NoContent(w, http.StatusOK)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := reservationPathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.respondError(w, err, "delete reservation")
		return
	}
	httpx.NoContent(w, http.StatusOK)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time
	startParam := r.URL.Query().Get("start")
	endParam := r.URL.Query().Get("end")
	if startParam != "" && endParam != "" {
		start, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			httpx.RespondError(w, shared.ErrValidation)
			return
		}
		end, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			httpx.RespondError(w, shared.ErrValidation)
			return
		}
		from, to = &start, &end
	}

	principal := shared.PrincipalFromContext(r.Context())
	list, err := h.service.List(r.Context(), principal, from, to)
	if err != nil {
		h.respondError(w, err, "list reservations")
		return
	}
	views := make([]reservationView, len(list))
	for i, res := range list {
		views[i] = viewOf(res)
	}
	httpx.JSON(w, http.StatusOK, views)
}

// respondError translates engine results into boundary responses: an
// overridable or blocked conflict is a 409 carrying the overridable flag,
// invalid intervals and dangling references are 400s, everything else follows
// the shared taxonomy.
func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		httpx.JSON(w, http.StatusConflict, conflictResponse{Overridable: conflict.Overridable})
		return
	}
	if errors.Is(err, ErrInvalidInterval) || errors.Is(err, ErrInvalidReference) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if h.logger != nil {
		h.logger.Warn(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
