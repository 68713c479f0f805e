package postgres

import (
	"fmt"
	"time"

	"bidtrack/internal/models"
	"bidtrack/internal/utils"
	"gorm.io/gorm"
)

// Migrate brings the bids table up to the current schema. Every step is
// idempotent and runs on each startup: older deployments lacked the
// description and company_norm columns and carried pre-rework enum values.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Bid{}); err != nil {
		return fmt.Errorf("failed to migrate bids table: %w", err)
	}

	if err := backfillCompanyNorm(db); err != nil {
		return fmt.Errorf("failed to backfill company_norm: %w", err)
	}

	// Coerce legacy enum values (Applied/Interview/Offer/... eras) to the
	// current defaults, best effort.
	if err := db.Model(&models.Bid{}).
		Where("status NOT IN ?", []string{
			models.StatusApplied, models.StatusRefused, models.StatusChatting,
			models.StatusTestTask, models.StatusFillTheForm,
		}).
		Update("status", models.StatusApplied).Error; err != nil {
		return fmt.Errorf("failed to normalize legacy status values: %w", err)
	}
	if err := db.Model(&models.Bid{}).
		Where("interview_status NOT IN ?", []string{
			models.InterviewNone, models.InterviewRecruiter, models.InterviewTech,
			models.InterviewTechLive, models.InterviewTech2, models.InterviewFinal,
		}).
		Update("interview_status", models.InterviewNone).Error; err != nil {
		return fmt.Errorf("failed to normalize legacy interview_status values: %w", err)
	}

	return seed(db)
}

// backfillCompanyNorm fills the normalized column for rows created before it
// existed. The unique index from AutoMigrate assumes no legacy duplicates;
// if two legacy rows collide the index creation fails loudly, which is
// preferable to silently dropping one.
func backfillCompanyNorm(db *gorm.DB) error {
	var rows []models.Bid
	if err := db.Where("company_norm = '' OR company_norm IS NULL").Find(&rows).Error; err != nil {
		return err
	}
	for _, b := range rows {
		norm := utils.NormalizeCompany(b.CompanyName)
		if err := db.Model(&models.Bid{}).
			Where("id = ?", b.ID).
			Update("company_norm", norm).Error; err != nil {
			return err
		}
	}
	return nil
}

// seed inserts three example rows when the table is empty so the dashboard is
// non-empty on first run.
func seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Bid{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	in3d := now.Add(72 * time.Hour)
	samples := []models.Bid{
		{
			CompanyName:     "Acme Corp",
			CompanyNorm:     utils.NormalizeCompany("Acme Corp"),
			JobTitle:        "Frontend Engineer",
			JDLink:          "https://acme.example/jd/frontend",
			Status:          models.StatusApplied,
			InterviewStatus: models.InterviewNone,
			BiddedDate:      now,
		},
		{
			CompanyName:        "Globex",
			CompanyNorm:        utils.NormalizeCompany("Globex"),
			JobTitle:           "Fullstack Developer",
			JDLink:             "https://globex.example/jd/fullstack",
			Status:             models.StatusChatting,
			InterviewStatus:    models.InterviewRecruiter,
			BiddedDate:         now,
			InterviewScheduled: &in3d,
		},
		{
			CompanyName:     "Initech",
			CompanyNorm:     utils.NormalizeCompany("Initech"),
			JobTitle:        "Backend Engineer",
			JDLink:          "https://initech.example/jd/backend",
			Status:          models.StatusTestTask,
			InterviewStatus: models.InterviewNone,
			BiddedDate:      now,
		},
	}
	return db.Create(&samples).Error
}
