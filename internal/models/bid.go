package models

import (
	"time"
)

// Bid statuses. The status lives in the table as plain text; validation is a
// set-membership check shared by create and update.
const (
	StatusApplied     = "applied"
	StatusRefused     = "refused"
	StatusChatting    = "chatting"
	StatusTestTask    = "test task"
	StatusFillTheForm = "fill the form"
)

const (
	InterviewNone      = "none"
	InterviewRecruiter = "recruiter"
	InterviewTech      = "tech"
	InterviewTechLive  = "tech(live coding)"
	InterviewTech2     = "tech 2"
	InterviewFinal     = "final"
)

var allowedStatuses = map[string]bool{
	StatusApplied:     true,
	StatusRefused:     true,
	StatusChatting:    true,
	StatusTestTask:    true,
	StatusFillTheForm: true,
}

var allowedInterviewStatuses = map[string]bool{
	InterviewNone:      true,
	InterviewRecruiter: true,
	InterviewTech:      true,
	InterviewTechLive:  true,
	InterviewTech2:     true,
	InterviewFinal:     true,
}

func ValidStatus(s string) bool          { return allowedStatuses[s] }
func ValidInterviewStatus(s string) bool { return allowedInterviewStatuses[s] }

type Bid struct {
	ID          uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CompanyName string `gorm:"column:company_name;type:varchar(255);not null" json:"company_name"`
	// CompanyNorm is the application-maintained normalized copy of
	// CompanyName. The unique index is what actually enforces the
	// one-bid-per-company rule under concurrent creates.
	CompanyNorm     string `gorm:"column:company_norm;type:varchar(255);uniqueIndex:idx_bids_company_norm" json:"-"`
	JobTitle        string `gorm:"column:job_title;type:varchar(255);not null" json:"job_title"`
	JDLink          string `gorm:"column:jd_link;type:varchar(1024)" json:"jd_link"`
	Description     string `gorm:"column:description;type:text" json:"description"`
	Status          string `gorm:"column:status;type:varchar(50);default:applied" json:"status"`
	InterviewStatus string `gorm:"column:interview_status;type:varchar(100);default:none" json:"interview_status"`

	BiddedDate         time.Time  `gorm:"column:bidded_date;type:timestamptz" json:"bidded_date"`
	InterviewScheduled *time.Time `gorm:"column:interview_scheduled;type:timestamptz" json:"interview_scheduled"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Bid) TableName() string { return "bids" }

// StatusCount is one row of the grouped stats summary.
type StatusCount struct {
	Status string `json:"status"`
	Cnt    int64  `json:"cnt"`
}

type InterviewStatusCount struct {
	InterviewStatus string `json:"interview_status"`
	Cnt             int64  `json:"cnt"`
}

// TimeseriesPoint is one (bucket, dimension value, count) tuple. The client
// pivots these into one column per value.
type TimeseriesPoint struct {
	Bucket string `json:"bucket"`
	Value  string `json:"value"`
	Cnt    int64  `json:"cnt"`
}
