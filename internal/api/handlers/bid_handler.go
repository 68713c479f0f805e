package handlers

import (
	"net/http"
	"strconv"
	"time"

	"bidtrack/internal/services"
	"bidtrack/internal/utils"
	"github.com/gin-gonic/gin"
)

type BidHandler struct {
	svc    services.BidService
	export services.ExportService
}

func NewBidHandler(svc services.BidService, export services.ExportService) *BidHandler {
	return &BidHandler{svc: svc, export: export}
}

func (h *BidHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	res, err := h.svc.List(c.Request.Context(), services.ListQuery{
		Page:            page,
		Limit:           limit,
		Company:         c.Query("company"),
		JobTitle:        c.Query("job_title"),
		Status:          c.Query("status"),
		InterviewStatus: c.Query("interview_status"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *BidHandler) CheckCompany(c *gin.Context) {
	exists, err := h.svc.CheckCompany(c.Request.Context(), c.Query("company"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h *BidHandler) Get(c *gin.Context) {
	id, ok := bidID(c)
	if !ok {
		return
	}

	b, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type CreateBidRequest struct {
	CompanyName        string `json:"company_name"`
	JobTitle           string `json:"job_title"`
	JDLink             string `json:"jd_link"`
	Description        string `json:"description"`
	Status             string `json:"status"`
	InterviewStatus    string `json:"interview_status"`
	InterviewScheduled string `json:"interview_scheduled"`
}

func (h *BidHandler) Create(c *gin.Context) {
	const op = "BidHandler.Create"

	var req CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	scheduled, err := parseScheduled(req.InterviewScheduled)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "interview_scheduled must be an RFC 3339 timestamp", err))
		return
	}

	b, err := h.svc.Create(c.Request.Context(), services.CreateBidInput{
		CompanyName:        req.CompanyName,
		JobTitle:           req.JobTitle,
		JDLink:             req.JDLink,
		Description:        req.Description,
		Status:             req.Status,
		InterviewStatus:    req.InterviewStatus,
		InterviewScheduled: scheduled,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// UpdateBidRequest is a partial patch: absent fields stay untouched. An empty
// interview_scheduled string clears the timestamp.
type UpdateBidRequest struct {
	CompanyName        *string `json:"company_name"`
	JobTitle           *string `json:"job_title"`
	JDLink             *string `json:"jd_link"`
	Description        *string `json:"description"`
	Status             *string `json:"status"`
	InterviewStatus    *string `json:"interview_status"`
	InterviewScheduled *string `json:"interview_scheduled"`
}

func (h *BidHandler) Update(c *gin.Context) {
	const op = "BidHandler.Update"

	id, ok := bidID(c)
	if !ok {
		return
	}

	var req UpdateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	in := services.UpdateBidInput{
		CompanyName:     req.CompanyName,
		JobTitle:        req.JobTitle,
		JDLink:          req.JDLink,
		Description:     req.Description,
		Status:          req.Status,
		InterviewStatus: req.InterviewStatus,
	}
	if req.InterviewScheduled != nil {
		in.InterviewScheduledSet = true
		scheduled, err := parseScheduled(*req.InterviewScheduled)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, op, "interview_scheduled must be an RFC 3339 timestamp", err))
			return
		}
		in.InterviewScheduled = scheduled
	}

	b, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

func (h *BidHandler) Delete(c *gin.Context) {
	id, ok := bidID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *BidHandler) DeleteAll(c *gin.Context) {
	n, err := h.svc.DeleteAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": n})
}

func (h *BidHandler) Stats(c *gin.Context) {
	out, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *BidHandler) Timeseries(c *gin.Context) {
	points, err := h.svc.Timeseries(c.Request.Context(), c.Query("period"), c.Query("type"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": points})
}

func (h *BidHandler) Export(c *gin.Context) {
	data, err := h.export.ExportBids(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	filename := "bids-" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func bidID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "BidHandler", "invalid bid id", err))
		return 0, false
	}
	return uint(id), true
}

func parseScheduled(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	u := t.UTC()
	return &u, nil
}
