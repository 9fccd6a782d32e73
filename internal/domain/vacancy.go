package domain

import "time"

type StageType string

const (
	StageNew      StageType = "new"
	StageHR       StageType = "hr"
	StageTech     StageType = "tech"
	StageBusiness StageType = "business"
	StageRejected StageType = "rejected"
	StageOffer    StageType = "offer"
)

// ValidStageType reports whether t is one of the known pipeline stages.
func ValidStageType(t StageType) bool {
	switch t {
	case StageNew, StageHR, StageTech, StageBusiness, StageRejected, StageOffer:
		return true
	}
	return false
}

// Vacancy is a job posting a user applied to, either entered by hand or
// ingested by the companion bot.
type Vacancy struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Name        string    `gorm:"size:500;not null" json:"name"`
	Link        string    `gorm:"type:text;not null" json:"link"`
	CompanyName string    `gorm:"type:text" json:"company_name,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Stages []Stage `gorm:"constraint:OnDelete:CASCADE" json:"stages,omitempty"`
}

// Stage is one pipeline step of a vacancy (HR interview, tech interview,
// offer, rejection and so on).
type Stage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VacancyID   uint      `gorm:"index;not null" json:"vacancy_id"`
	StageType   StageType `gorm:"size:32;default:new" json:"stage_type"`
	Title       string    `gorm:"type:text" json:"title,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Favorite holds a user's personal notes for one vacancy. One row per
// (user, vacancy) pair.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_favorite_user_vacancy,unique;not null" json:"user_id"`
	VacancyID uint      `gorm:"index:idx_favorite_user_vacancy,unique;not null" json:"vacancy_id"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
