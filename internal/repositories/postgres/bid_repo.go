package postgres

import (
	"context"
	"errors"

	"bidtrack/internal/models"
	"bidtrack/internal/utils"
	"gorm.io/gorm"
)

// ErrDuplicateCompany is returned when an insert or rename trips the unique
// index on company_norm.
var ErrDuplicateCompany = errors.New("duplicate company")

type ListFilter struct {
	Company         string
	JobTitle        string
	Status          string
	InterviewStatus string
	Page            int
	Limit           int
}

type BidRepository interface {
	List(ctx context.Context, f ListFilter) ([]models.Bid, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Bid, error)
	ExistsByNorm(ctx context.Context, norm string, excludeID uint) (bool, error)
	Create(ctx context.Context, b *models.Bid) error
	Update(ctx context.Context, id uint, fields map[string]any) (*models.Bid, error)
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
	ListAll(ctx context.Context) ([]models.Bid, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountByInterviewStatus(ctx context.Context) ([]models.InterviewStatusCount, error)
	Timeseries(ctx context.Context, period, dimension string) ([]models.TimeseriesPoint, error)
}

type bidRepo struct {
	db *gorm.DB
}

func NewBidRepo(db *gorm.DB) BidRepository {
	return &bidRepo{db: db}
}

func (r *bidRepo) List(ctx context.Context, f ListFilter) ([]models.Bid, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Bid{})

	if f.Company != "" {
		q = q.Where("company_name ILIKE ?", "%"+f.Company+"%")
	}
	if f.JobTitle != "" {
		q = q.Where("job_title ILIKE ?", "%"+f.JobTitle+"%")
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.InterviewStatus != "" {
		q = q.Where("interview_status = ?", f.InterviewStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bids []models.Bid
	err := q.
		Order("bidded_date DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&bids).Error
	return bids, total, err
}

func (r *bidRepo) GetByID(ctx context.Context, id uint) (*models.Bid, error) {
	var b models.Bid
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bidRepo) ExistsByNorm(ctx context.Context, norm string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("company_norm = ?", norm)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *bidRepo) Create(ctx context.Context, b *models.Bid) error {
	err := r.db.WithContext(ctx).Create(b).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateCompany
	}
	return err
}

// Update applies a partial column map and reloads the row. Callers are
// responsible for existence and enum checks; a rename that collides with
// another bid's company_norm comes back as ErrDuplicateCompany.
func (r *bidRepo) Update(ctx context.Context, id uint, fields map[string]any) (*models.Bid, error) {
	err := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("id = ?", id).
		Updates(fields).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrDuplicateCompany
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *bidRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Bid{}).Error
}

func (r *bidRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.Bid{})
	return res.RowsAffected, res.Error
}

func (r *bidRepo) ListAll(ctx context.Context) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.WithContext(ctx).
		Order("bidded_date DESC").
		Find(&bids).Error
	return bids, err
}

func (r *bidRepo) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	var rows []models.StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Select("status, COUNT(*) AS cnt").
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

func (r *bidRepo) CountByInterviewStatus(ctx context.Context) ([]models.InterviewStatusCount, error) {
	var rows []models.InterviewStatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Select("interview_status, COUNT(*) AS cnt").
		Group("interview_status").
		Order("interview_status").
		Scan(&rows).Error
	return rows, err
}

// Bucket label formats per period. bidded_date is stored UTC, so the labels
// are deterministic across deployments.
var bucketFormats = map[string]string{
	"hour":  "YYYY-MM-DD HH24:00",
	"day":   "YYYY-MM-DD",
	"week":  `IYYY-"W"IW`,
	"month": "YYYY-MM",
}

func (r *bidRepo) Timeseries(ctx context.Context, period, dimension string) ([]models.TimeseriesPoint, error) {
	format, ok := bucketFormats[period]
	if !ok {
		return nil, errors.New("unknown period: " + period)
	}

	// dimension is chosen from a fixed set here, never interpolated from
	// request input.
	var column string
	switch dimension {
	case "interview_status":
		column = "interview_status"
	default:
		column = "status"
	}

	var points []models.TimeseriesPoint
	err := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Select("to_char(date_trunc(?, bidded_date), ?) AS bucket, "+column+" AS value, COUNT(*) AS cnt", period, format).
		Group("1, 2").
		Order("1, 2").
		Scan(&points).Error
	return points, err
}
