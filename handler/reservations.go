package handler

import (
	"errors"
	"net/http"

	"github.com/antoniovct/api-biblioteca/data/dto"
	"github.com/antoniovct/api-biblioteca/internal/validator"
	"github.com/antoniovct/api-biblioteca/service"
)

// CreateReservation godoc
// @Summary Reserve a book
// @Description This endpoint queues a pending reservation for a book with no copies on the shelf
// @Tags reservations
// @Accept  json
// @Produce json
// @Param body body dto.CreateReservationRequestBody true "JSON payload required to create a reservation"
// @Success 201 {object} data.Reservation
// @Failure 400
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /v1/reservations [post]
func (h *Handler) createReservationHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateReservationRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	// Readers reserve for themselves; only admins may reserve on behalf of
	// another user.
	user := h.contextGetUser(r)
	if !user.IsAdmin() || requestBody.UserID == 0 {
		requestBody.UserID = user.ID
	}
	reservation, err := h.service.CreateReservation(requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrPolicyViolation):
			h.policyViolationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusCreated, envelope{"reservation": reservation}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listReservationsHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListReservations
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Status = h.readString(qs, "status", "")
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "created_at")
	qsInput.Filters.SortSafeList = []string{"id", "created_at", "expires_at", "status", "-id", "-created_at", "-expires_at", "-status"}
	if !v.Valid() {
		h.failedValidationResponse(w, r, errors.New("invalid query string values"))
		return
	}
	// Readers only see their own reservations.
	user := h.contextGetUser(r)
	if user.IsAdmin() {
		qsInput.UserID = int64(h.readInt(qs, "user_id", 0, v))
	} else {
		qsInput.UserID = user.ID
	}
	reservations, metadata, err := h.service.ListReservations(qsInput.UserID, qsInput.Status, qsInput.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"reservations": reservations, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) showReservationHandler(w http.ResponseWriter, r *http.Request) {
	reservationID, err := h.readIDParam(r, "reservationId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	reservation, err := h.service.GetReservation(reservationID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"reservation": reservation}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateReservation godoc
// @Summary Update a reservation's status
// @Description This endpoint moves a reservation to the active, finalized or expired status
// @Tags reservations
// @Accept  json
// @Produce json
// @Param body body dto.UpdateReservationRequestBody true "JSON payload required to update a reservation"
// @Success 200 {object} data.Reservation
// @Failure 400
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /v1/reservations/{reservationId} [patch]
func (h *Handler) updateReservationHandler(w http.ResponseWriter, r *http.Request) {
	reservationID, err := h.readIDParam(r, "reservationId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.UpdateReservationRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	reservation, err := h.service.UpdateReservationStatus(reservationID, requestBody.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrPolicyViolation):
			h.policyViolationResponse(w, r, err)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"reservation": reservation}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) deleteReservationHandler(w http.ResponseWriter, r *http.Request) {
	reservationID, err := h.readIDParam(r, "reservationId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteReservation(reservationID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "reservation successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
