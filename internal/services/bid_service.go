package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"bidtrack/internal/cache"
	"bidtrack/internal/models"
	pgrepo "bidtrack/internal/repositories/postgres"
	"bidtrack/internal/utils"
)

const (
	statsSummaryKey = "stats:summary"
	statsCacheTTL   = 30 * time.Second
)

var timeseriesPeriods = []string{"hour", "day", "week", "month"}
var timeseriesTypes = []string{"status", "interview_status"}

type ListQuery struct {
	Page            int
	Limit           int
	Company         string
	JobTitle        string
	Status          string
	InterviewStatus string
}

type ListResult struct {
	Data  []models.Bid `json:"data"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type CreateBidInput struct {
	CompanyName        string
	JobTitle           string
	JDLink             string
	Description        string
	Status             string
	InterviewStatus    string
	InterviewScheduled *time.Time
}

// UpdateBidInput is a partial patch: nil means "leave the field alone".
// InterviewScheduled is cleared by setting InterviewScheduledSet with a nil
// time.
type UpdateBidInput struct {
	CompanyName           *string
	JobTitle              *string
	JDLink                *string
	Description           *string
	Status                *string
	InterviewStatus       *string
	InterviewScheduledSet bool
	InterviewScheduled    *time.Time
}

type StatsSummary struct {
	ByStatus          []models.StatusCount          `json:"byStatus"`
	ByInterviewStatus []models.InterviewStatusCount `json:"byInterviewStatus"`
}

type BidService interface {
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	CheckCompany(ctx context.Context, company string) (bool, error)
	Get(ctx context.Context, id uint) (*models.Bid, error)
	Create(ctx context.Context, in CreateBidInput) (*models.Bid, error)
	Update(ctx context.Context, id uint, in UpdateBidInput) (*models.Bid, error)
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*StatsSummary, error)
	Timeseries(ctx context.Context, period, typ string) ([]models.TimeseriesPoint, error)
}

type bidService struct {
	bids  pgrepo.BidRepository
	cache cache.Cache
}

func NewBidService(bids pgrepo.BidRepository, c cache.Cache) BidService {
	if c == nil {
		c = cache.Noop{}
	}
	return &bidService{bids: bids, cache: c}
}

func (s *bidService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	const op = "BidService.List"

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	if q.Limit < 1 {
		q.Limit = 1
	}
	if q.Limit > 1000 {
		q.Limit = 1000
	}

	bids, total, err := s.bids.List(ctx, pgrepo.ListFilter{
		Company:         q.Company,
		JobTitle:        q.JobTitle,
		Status:          q.Status,
		InterviewStatus: q.InterviewStatus,
		Page:            q.Page,
		Limit:           q.Limit,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list bids", err)
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	return &ListResult{Data: bids, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *bidService) CheckCompany(ctx context.Context, company string) (bool, error) {
	const op = "BidService.CheckCompany"

	if company == "" {
		return false, utils.E(utils.CodeInvalidArgument, op, "company required", nil)
	}
	exists, err := s.bids.ExistsByNorm(ctx, utils.NormalizeCompany(company), 0)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to check company", err)
	}
	return exists, nil
}

func (s *bidService) Get(ctx context.Context, id uint) (*models.Bid, error) {
	const op = "BidService.Get"

	b, err := s.bids.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "bid not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get bid", err)
	}
	return b, nil
}

func (s *bidService) Create(ctx context.Context, in CreateBidInput) (*models.Bid, error) {
	const op = "BidService.Create"

	if strings.TrimSpace(in.CompanyName) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "company_name is required", nil)
	}
	if strings.TrimSpace(in.JobTitle) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job_title is required", nil)
	}
	if strings.TrimSpace(in.JDLink) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "jd_link is required", nil)
	}
	if !validURL(in.JDLink) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "jd_link must be a valid URL", nil)
	}

	status := models.StatusApplied
	if in.Status != "" {
		status = strings.ToLower(strings.TrimSpace(in.Status))
		if !models.ValidStatus(status) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid status value", nil)
		}
	}
	interview := models.InterviewNone
	if in.InterviewStatus != "" {
		interview = strings.ToLower(strings.TrimSpace(in.InterviewStatus))
		if !models.ValidInterviewStatus(interview) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid interview_status value", nil)
		}
	}

	norm := utils.NormalizeCompany(in.CompanyName)
	exists, err := s.bids.ExistsByNorm(ctx, norm, 0)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to check company", err)
	}
	if exists {
		return nil, utils.E(utils.CodeConflict, op, "Company already has a bid", nil)
	}

	b := &models.Bid{
		CompanyName:        in.CompanyName,
		CompanyNorm:        norm,
		JobTitle:           in.JobTitle,
		JDLink:             in.JDLink,
		Description:        in.Description,
		Status:             status,
		InterviewStatus:    interview,
		BiddedDate:         time.Now().UTC(),
		InterviewScheduled: in.InterviewScheduled,
	}
	if err := s.bids.Create(ctx, b); err != nil {
		// The unique index closes the gap between the exists check and the
		// insert under concurrent creates.
		if errors.Is(err, pgrepo.ErrDuplicateCompany) {
			return nil, utils.E(utils.CodeConflict, op, "Company already has a bid", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create bid", err)
	}

	s.invalidateStats(ctx)
	return b, nil
}

func (s *bidService) Update(ctx context.Context, id uint, in UpdateBidInput) (*models.Bid, error) {
	const op = "BidService.Update"

	if _, err := s.bids.GetByID(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "bid not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get bid", err)
	}

	fields := map[string]any{}

	if in.CompanyName != nil {
		if strings.TrimSpace(*in.CompanyName) == "" {
			return nil, utils.E(utils.CodeInvalidArgument, op, "company_name cannot be empty", nil)
		}
		norm := utils.NormalizeCompany(*in.CompanyName)
		exists, err := s.bids.ExistsByNorm(ctx, norm, id)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to check company", err)
		}
		if exists {
			return nil, utils.E(utils.CodeConflict, op, "Another bid for this company exists", nil)
		}
		fields["company_name"] = *in.CompanyName
		fields["company_norm"] = norm
	}
	if in.JobTitle != nil {
		if strings.TrimSpace(*in.JobTitle) == "" {
			return nil, utils.E(utils.CodeInvalidArgument, op, "job_title cannot be empty", nil)
		}
		fields["job_title"] = *in.JobTitle
	}
	if in.JDLink != nil {
		if strings.TrimSpace(*in.JDLink) == "" {
			return nil, utils.E(utils.CodeInvalidArgument, op, "jd_link cannot be empty", nil)
		}
		if !validURL(*in.JDLink) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "jd_link must be a valid URL", nil)
		}
		fields["jd_link"] = *in.JDLink
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*in.Status))
		if !models.ValidStatus(status) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid status value", nil)
		}
		fields["status"] = status
	}
	if in.InterviewStatus != nil {
		interview := strings.ToLower(strings.TrimSpace(*in.InterviewStatus))
		if !models.ValidInterviewStatus(interview) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid interview_status value", nil)
		}
		fields["interview_status"] = interview
	}
	if in.InterviewScheduledSet {
		fields["interview_scheduled"] = in.InterviewScheduled
	}

	if len(fields) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "No fields to update", nil)
	}
	fields["updated_at"] = time.Now().UTC()

	b, err := s.bids.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, pgrepo.ErrDuplicateCompany) {
			return nil, utils.E(utils.CodeConflict, op, "Another bid for this company exists", err)
		}
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "bid not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update bid", err)
	}

	s.invalidateStats(ctx)
	return b, nil
}

func (s *bidService) Delete(ctx context.Context, id uint) error {
	const op = "BidService.Delete"

	// Deleting an id that is already gone is a success, not an error.
	if err := s.bids.Delete(ctx, id); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete bid", err)
	}
	s.invalidateStats(ctx)
	return nil
}

func (s *bidService) DeleteAll(ctx context.Context) (int64, error) {
	const op = "BidService.DeleteAll"

	n, err := s.bids.DeleteAll(ctx)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to delete bids", err)
	}
	s.invalidateStats(ctx)
	return n, nil
}

func (s *bidService) Stats(ctx context.Context) (*StatsSummary, error) {
	const op = "BidService.Stats"

	var cached StatsSummary
	if hit, _ := s.cache.GetJSON(ctx, statsSummaryKey, &cached); hit {
		return &cached, nil
	}

	byStatus, err := s.bids.CountByStatus(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count by status", err)
	}
	byInterview, err := s.bids.CountByInterviewStatus(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count by interview_status", err)
	}
	if byStatus == nil {
		byStatus = []models.StatusCount{}
	}
	if byInterview == nil {
		byInterview = []models.InterviewStatusCount{}
	}

	out := &StatsSummary{ByStatus: byStatus, ByInterviewStatus: byInterview}
	_ = s.cache.SetJSON(ctx, statsSummaryKey, out, statsCacheTTL)
	return out, nil
}

func (s *bidService) Timeseries(ctx context.Context, period, typ string) ([]models.TimeseriesPoint, error) {
	const op = "BidService.Timeseries"

	if period == "" {
		period = "week"
	}
	if typ == "" {
		typ = "status"
	}
	if !contains(timeseriesPeriods, period) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid period value", nil)
	}
	if !contains(timeseriesTypes, typ) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid type value", nil)
	}

	key := "stats:ts:" + period + ":" + typ
	var cached []models.TimeseriesPoint
	if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
		return cached, nil
	}

	points, err := s.bids.Timeseries(ctx, period, typ)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to build timeseries", err)
	}
	if points == nil {
		points = []models.TimeseriesPoint{}
	}
	_ = s.cache.SetJSON(ctx, key, points, statsCacheTTL)
	return points, nil
}

// invalidateStats drops every cached aggregate after a mutation. Best effort:
// the TTL bounds staleness if the delete fails.
func (s *bidService) invalidateStats(ctx context.Context) {
	keys := []string{statsSummaryKey}
	for _, p := range timeseriesPeriods {
		for _, t := range timeseriesTypes {
			keys = append(keys, "stats:ts:"+p+":"+t)
		}
	}
	_ = s.cache.Del(ctx, keys...)
}

func validURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && u.Scheme != "" && u.Host != ""
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
