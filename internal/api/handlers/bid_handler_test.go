package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bidtrack/internal/models"
	"bidtrack/internal/services"
	"bidtrack/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBidService struct {
	lastListQuery  services.ListQuery
	lastUpdate     services.UpdateBidInput
	lastUpdateID   uint
	createErr      error
	updateErr      error
	getErr         error
	listResult     *services.ListResult
	checkExists    bool
	deleteAllCount int64
}

func (s *stubBidService) List(ctx context.Context, q services.ListQuery) (*services.ListResult, error) {
	s.lastListQuery = q
	if s.listResult != nil {
		return s.listResult, nil
	}
	return &services.ListResult{Data: []models.Bid{}, Total: 0, Page: q.Page, Limit: q.Limit}, nil
}

func (s *stubBidService) CheckCompany(ctx context.Context, company string) (bool, error) {
	if company == "" {
		return false, utils.E(utils.CodeInvalidArgument, "BidService.CheckCompany", "company required", nil)
	}
	return s.checkExists, nil
}

func (s *stubBidService) Get(ctx context.Context, id uint) (*models.Bid, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &models.Bid{ID: id, CompanyName: "Acme"}, nil
}

func (s *stubBidService) Create(ctx context.Context, in services.CreateBidInput) (*models.Bid, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.Bid{
		ID:              1,
		CompanyName:     in.CompanyName,
		JobTitle:        in.JobTitle,
		JDLink:          in.JDLink,
		Status:          models.StatusApplied,
		InterviewStatus: models.InterviewNone,
		BiddedDate:      time.Now().UTC(),
	}, nil
}

func (s *stubBidService) Update(ctx context.Context, id uint, in services.UpdateBidInput) (*models.Bid, error) {
	s.lastUpdateID = id
	s.lastUpdate = in
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &models.Bid{ID: id}, nil
}

func (s *stubBidService) Delete(ctx context.Context, id uint) error { return nil }

func (s *stubBidService) DeleteAll(ctx context.Context) (int64, error) {
	return s.deleteAllCount, nil
}

func (s *stubBidService) Stats(ctx context.Context) (*services.StatsSummary, error) {
	return &services.StatsSummary{
		ByStatus:          []models.StatusCount{{Status: models.StatusApplied, Cnt: 2}},
		ByInterviewStatus: []models.InterviewStatusCount{{InterviewStatus: models.InterviewNone, Cnt: 2}},
	}, nil
}

func (s *stubBidService) Timeseries(ctx context.Context, period, typ string) ([]models.TimeseriesPoint, error) {
	return []models.TimeseriesPoint{{Bucket: "2026-08", Value: models.StatusApplied, Cnt: 2}}, nil
}

type stubExportService struct{}

func (stubExportService) ExportBids(ctx context.Context) ([]byte, error) {
	return []byte("PK\x03\x04"), nil
}

func newTestRouter(svc services.BidService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewBidHandler(svc, stubExportService{})

	r.GET("/bids", h.List)
	r.POST("/bids", h.Create)
	r.GET("/bids/check/company", h.CheckCompany)
	r.GET("/bids/export", h.Export)
	r.GET("/bids/summary/stats", h.Stats)
	r.GET("/bids/summary/timeseries/multi", h.Timeseries)
	r.GET("/bids/:id", h.Get)
	r.PUT("/bids/:id", h.Update)
	r.DELETE("/bids/all", h.DeleteAll)
	r.DELETE("/bids/:id", h.Delete)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListPassesQueryParams(t *testing.T) {
	svc := &stubBidService{}
	r := newTestRouter(svc)

	w := doRequest(r, http.MethodGet, "/bids?page=3&limit=25&company=acme&status=applied", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 3, svc.lastListQuery.Page)
	assert.Equal(t, 25, svc.lastListQuery.Limit)
	assert.Equal(t, "acme", svc.lastListQuery.Company)
	assert.Equal(t, "applied", svc.lastListQuery.Status)

	var body struct {
		Data  []models.Bid `json:"data"`
		Total int64        `json:"total"`
		Page  int          `json:"page"`
		Limit int          `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Page)
	assert.NotNil(t, body.Data)
}

func TestCreateReturns201(t *testing.T) {
	r := newTestRouter(&stubBidService{})

	w := doRequest(r, http.MethodPost, "/bids",
		`{"company_name":"Acme","job_title":"Eng","jd_link":"https://x.test/a"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var b models.Bid
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, "Acme", b.CompanyName)
	assert.Equal(t, models.StatusApplied, b.Status)
	assert.False(t, b.BiddedDate.IsZero())
}

func TestCreateConflictShape(t *testing.T) {
	svc := &stubBidService{
		createErr: utils.E(utils.CodeConflict, "BidService.Create", "Company already has a bid", nil),
	}
	r := newTestRouter(svc)

	w := doRequest(r, http.MethodPost, "/bids",
		`{"company_name":"Acme","job_title":"Eng","jd_link":"https://x.test/a"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Company already has a bid", body["error"])
}

func TestInternalErrorIsOpaque(t *testing.T) {
	svc := &stubBidService{
		getErr: utils.E(utils.CodeInternal, "BidService.Get", "failed to get bid", assertErr("pq: connection refused")),
	}
	r := newTestRouter(svc)

	w := doRequest(r, http.MethodGet, "/bids/7", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Server error", body["error"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func TestGetInvalidID(t *testing.T) {
	r := newTestRouter(&stubBidService{})

	w := doRequest(r, http.MethodGet, "/bids/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetNotFound(t *testing.T) {
	svc := &stubBidService{
		getErr: utils.E(utils.CodeNotFound, "BidService.Get", "bid not found", utils.ErrNotFound),
	}
	r := newTestRouter(svc)

	w := doRequest(r, http.MethodGet, "/bids/404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePartialBody(t *testing.T) {
	svc := &stubBidService{}
	r := newTestRouter(svc)

	w := doRequest(r, http.MethodPut, "/bids/5", `{"status":"chatting"}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, uint(5), svc.lastUpdateID)
	require.NotNil(t, svc.lastUpdate.Status)
	assert.Equal(t, "chatting", *svc.lastUpdate.Status)
	assert.Nil(t, svc.lastUpdate.JobTitle)
	assert.Nil(t, svc.lastUpdate.CompanyName)
	assert.False(t, svc.lastUpdate.InterviewScheduledSet)
}

func TestUpdateClearsInterviewScheduled(t *testing.T) {
	svc := &stubBidService{}
	r := newTestRouter(svc)

	w := doRequest(r, http.MethodPut, "/bids/5", `{"interview_scheduled":""}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.True(t, svc.lastUpdate.InterviewScheduledSet)
	assert.Nil(t, svc.lastUpdate.InterviewScheduled)
}

func TestUpdateBadTimestamp(t *testing.T) {
	r := newTestRouter(&stubBidService{})

	w := doRequest(r, http.MethodPut, "/bids/5", `{"interview_scheduled":"tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAllRoute(t *testing.T) {
	svc := &stubBidService{deleteAllCount: 7}
	r := newTestRouter(svc)

	w := doRequest(r, http.MethodDelete, "/bids/all", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.EqualValues(t, 7, body["deleted"])
}

func TestCheckCompany(t *testing.T) {
	svc := &stubBidService{checkExists: true}
	r := newTestRouter(svc)

	w := doRequest(r, http.MethodGet, "/bids/check/company?company=Acme", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists":true}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/bids/check/company", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimeseriesShape(t *testing.T) {
	r := newTestRouter(&stubBidService{})

	w := doRequest(r, http.MethodGet, "/bids/summary/timeseries/multi?period=month&type=status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.TimeseriesPoint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "2026-08", body.Data[0].Bucket)
}

func TestExportHeaders(t *testing.T) {
	r := newTestRouter(&stubBidService{})

	w := doRequest(r, http.MethodGet, "/bids/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
}

func TestStatsShape(t *testing.T) {
	r := newTestRouter(&stubBidService{})

	w := doRequest(r, http.MethodGet, "/bids/summary/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ByStatus          []models.StatusCount          `json:"byStatus"`
		ByInterviewStatus []models.InterviewStatusCount `json:"byInterviewStatus"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.ByStatus, 1)
	assert.Equal(t, int64(2), body.ByStatus[0].Cnt)
}
