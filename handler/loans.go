package handler

import (
	"errors"
	"net/http"

	"github.com/antoniovct/api-biblioteca/data/dto"
	"github.com/antoniovct/api-biblioteca/internal/validator"
	"github.com/antoniovct/api-biblioteca/service"
)

// CreateLoan godoc
// @Summary Borrow a book
// @Description This endpoint opens a new loan for the authenticated user
// @Tags loans
// @Accept  json
// @Produce json
// @Param body body dto.CreateLoanRequestBody true "JSON payload required to create a loan"
// @Success 201 {object} data.Loan
// @Failure 400
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /v1/loans [post]
func (h *Handler) createLoanHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateLoanRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	// Readers borrow for themselves; only admins may open a loan on behalf of
	// another user.
	user := h.contextGetUser(r)
	if !user.IsAdmin() || requestBody.UserID == 0 {
		requestBody.UserID = user.ID
	}
	loan, err := h.service.CreateLoan(requestBody)
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
	err = h.encodeJSON(w, http.StatusCreated, envelope{"loan": loan}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listLoansHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListLoans
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Status = h.readString(qs, "status", "")
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "start_date")
	qsInput.Filters.SortSafeList = []string{"id", "start_date", "due_date", "status", "-id", "-start_date", "-due_date", "-status"}
	if !v.Valid() {
		h.failedValidationResponse(w, r, errors.New("invalid query string values"))
		return
	}
	// Readers only see their own loans.
	user := h.contextGetUser(r)
	if user.IsAdmin() {
		qsInput.UserID = int64(h.readInt(qs, "user_id", 0, v))
	} else {
		qsInput.UserID = user.ID
	}
	loans, metadata, err := h.service.ListLoans(qsInput.UserID, qsInput.Status, qsInput.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"loans": loans, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) showLoanHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := h.readIDParam(r, "loanId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	loan, err := h.service.GetLoan(loanID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"loan": loan}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// RenewLoan godoc
// @Summary Renew a loan
// @Description This endpoint resets a loan's due date to fourteen days from today
// @Tags loans
// @Produce json
// @Success 200 {object} data.Loan
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /v1/loans/{loanId}/renew [patch]
func (h *Handler) renewLoanHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := h.readIDParam(r, "loanId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	loan, err := h.service.RenewLoan(loanID)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"loan": loan}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ReturnLoan godoc
// @Summary Return a book
// @Description This endpoint finalizes a loan, charging a fine when the book comes back late
// @Tags loans
// @Produce json
// @Success 200 {object} data.Loan
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /v1/loans/{loanId}/return [patch]
func (h *Handler) returnLoanHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := h.readIDParam(r, "loanId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	loan, err := h.service.ReturnLoan(loanID)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"loan": loan}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) deleteLoanHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := h.readIDParam(r, "loanId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteLoan(loanID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "loan successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
