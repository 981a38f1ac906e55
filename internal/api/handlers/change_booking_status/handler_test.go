package change_booking_status

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-BayLedger/internal/service/bookings"
	"github.com/m04kA/SMC-BayLedger/internal/service/bookings/models"
	"github.com/m04kA/SMC-BayLedger/pkg/logger"
)

const bookingID = "4f6c2f8e-9a53-4c1e-8f59-3a8cbbd2c0aa"

type stubService struct {
	called string
	err    error
}

func (s *stubService) result(method string) (*models.BookingResponse, error) {
	s.called = method
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingResponse{ID: bookingID, Status: method}, nil
}

func (s *stubService) Confirm(context.Context, string) (*models.BookingResponse, error) {
	return s.result("confirmed")
}

func (s *stubService) CheckIn(context.Context, string) (*models.BookingResponse, error) {
	return s.result("checked_in")
}

func (s *stubService) CheckOut(context.Context, string) (*models.BookingResponse, error) {
	return s.result("completed")
}

func (s *stubService) MarkNoShow(context.Context, string) (*models.BookingResponse, error) {
	return s.result("no_show")
}

func serve(svc BookingService, action Action, id string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	h := NewHandler(svc, action, logger.NewWithWriter(io.Discard, "error"))
	r.HandleFunc("/api/v1/bookings/{bookingId}/"+string(action), h.Handle).Methods(http.MethodPost)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+id+"/"+string(action), nil))
	return rec
}

func TestHandle_DispatchesAction(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{ActionConfirm, "confirmed"},
		{ActionCheckIn, "checked_in"},
		{ActionCheckOut, "completed"},
		{ActionNoShow, "no_show"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			svc := &stubService{}
			rec := serve(svc, tt.action, bookingID)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, svc.called)
		})
	}
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(&stubService{}, ActionConfirm, "42").Code)
	assert.Equal(t, http.StatusNotFound, serve(&stubService{err: bookings.ErrBookingNotFound}, ActionConfirm, bookingID).Code)
	assert.Equal(t, http.StatusConflict, serve(&stubService{err: bookings.ErrInvalidTransition}, ActionCheckOut, bookingID).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(&stubService{err: bookings.ErrInternal}, ActionNoShow, bookingID).Code)
}
