package project

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project statuses relevant to the engine. Generation is only allowed
// once the diagnostic interview has completed.
const (
	StatusIntake            = "intake"
	StatusInterviewComplete = "interview_complete"
	StatusRoadmapDelivered  = "roadmap_delivered"
)

// Project is one consulting engagement. The assigned consultant is the
// only actor allowed to generate, edit and finalize its roadmaps.
type Project struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	ConsultantID uuid.UUID `gorm:"type:uuid;not null;index" json:"consultant_id"`
	Status       string    `gorm:"column:status;not null;default:'intake';index" json:"status"`

	Industry       string `gorm:"column:industry" json:"industry"`
	JobDescription string `gorm:"column:job_description;type:text" json:"job_description"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "project" }

// InterviewAnswer is one question/answer pair captured during the
// diagnostic interview.
type InterviewAnswer struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Ordering  int       `gorm:"column:ordering;not null;default:0" json:"ordering"`
	Question  string    `gorm:"column:question;type:text;not null" json:"question"`
	Answer    string    `gorm:"column:answer;type:text" json:"answer"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (InterviewAnswer) TableName() string { return "interview_answer" }

// SelfAssessment is the client's 1-5 self-scored proficiency for one
// job task.
type SelfAssessment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	TaskName  string    `gorm:"column:task_name;not null" json:"task_name"`
	Score     int       `gorm:"column:score;not null" json:"score"`
	Comment   string    `gorm:"column:comment;type:text" json:"comment"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (SelfAssessment) TableName() string { return "self_assessment" }
