package handler

import (
	"net/http"
	"testing"
	"time"

	ledgerapp "github.com/erp/backoffice/internal/application/ledger"
	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func financeRouter(svc *MockObligationService, now time.Time) *gin.Engine {
	h := NewFinanceHandler(svc)
	h.now = func() time.Time { return now }
	r := newTestRouter(testTenantID)
	r.GET("/receivables", h.ListReceivables)
	r.POST("/receivables/:id/settle", h.SettleReceivable)
	r.GET("/payables", h.ListPayables)
	r.POST("/payables/:id/settle", h.SettlePayable)
	r.GET("/obligations/due", h.ListDue)
	return r
}

var financeNow = time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

func TestFinanceHandler_Settle(t *testing.T) {
	id := uuid.New()

	t.Run("receivable", func(t *testing.T) {
		svc := new(MockObligationService)
		svc.On("Settle", mock.Anything, testTenantID, id, ledger.ObligationReceivable).
			Return(&ledgerapp.ObligationResponse{ID: id, Status: ledger.StatusReceived}, nil)

		w := doJSON(financeRouter(svc, financeNow), http.MethodPost, "/receivables/"+id.String()+"/settle", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(decodeEnvelope(t, w).Data), `"status":"received"`)
	})

	t.Run("second settle conflicts", func(t *testing.T) {
		svc := new(MockObligationService)
		svc.On("Settle", mock.Anything, testTenantID, id, ledger.ObligationPayable).
			Return(nil, ledger.ErrObligationAlreadySettled)

		w := doJSON(financeRouter(svc, financeNow), http.MethodPost, "/payables/"+id.String()+"/settle", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadySettled, decodeEnvelope(t, w).Error.Code)
	})

	t.Run("unknown obligation", func(t *testing.T) {
		svc := new(MockObligationService)
		svc.On("Settle", mock.Anything, testTenantID, id, ledger.ObligationPayable).Return(nil, shared.ErrNotFound)

		w := doJSON(financeRouter(svc, financeNow), http.MethodPost, "/payables/"+id.String()+"/settle", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFinanceHandler_List(t *testing.T) {
	svc := new(MockObligationService)
	svc.On("ListObligations", mock.Anything, testTenantID, ledger.ObligationPayable,
		ledgerapp.ListFilter{Status: "open", Page: 1, PageSize: 20}).
		Return(shared.NewPaginated([]ledgerapp.ObligationResponse{{CounterpartyName: "Acme"}}, 1, 1, 20), nil)
	r := financeRouter(svc, financeNow)

	w := doJSON(r, http.MethodGet, "/payables?status=open", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decodeEnvelope(t, w).Meta.Total)

	w = doJSON(r, http.MethodGet, "/payables?status=cancelled", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestFinanceHandler_ListDue(t *testing.T) {
	t.Run("explicit cutoff", func(t *testing.T) {
		svc := new(MockObligationService)
		svc.On("ListOpenDueOn", mock.Anything, testTenantID, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)).
			Return([]ledgerapp.ObligationResponse{}, nil)

		w := doJSON(financeRouter(svc, financeNow), http.MethodGet, "/obligations/due?cutoff=2026-03-20", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("defaults to today", func(t *testing.T) {
		svc := new(MockObligationService)
		svc.On("ListOpenDueOn", mock.Anything, testTenantID, financeNow).Return([]ledgerapp.ObligationResponse{}, nil)

		w := doJSON(financeRouter(svc, financeNow), http.MethodGet, "/obligations/due", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("malformed cutoff", func(t *testing.T) {
		w := doJSON(financeRouter(new(MockObligationService), financeNow), http.MethodGet, "/obligations/due?cutoff=20-03-2026", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
