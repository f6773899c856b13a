package models

import (
	"time"

	"gorm.io/datatypes"
)

// Answers maps a question id to the option id the student picked
type Answers map[uint]uint

// TestResult is the single permitted outcome of a student's attempt at a
// test. Results are never cascade-deleted; a teacher removes one with reset.
type TestResult struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	StudentID   uint                        `json:"student_id" gorm:"not null;uniqueIndex:idx_test_results_student_test"`
	TestID      uint                        `json:"test_id" gorm:"not null;uniqueIndex:idx_test_results_student_test;index"`
	Score       int                         `json:"score" gorm:"not null"`
	CompletedAt time.Time                   `json:"completed_at" gorm:"not null"`
	Answers     datatypes.JSONType[Answers] `json:"answers" gorm:"type:jsonb"`

	Student *Student `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:RESTRICT"`
	Test    *Test    `json:"-" gorm:"foreignKey:TestID;constraint:OnDelete:RESTRICT"`
}

func (TestResult) TableName() string {
	return "test_results"
}

// AttemptState is the position of a (student, test) pair in the attempt lifecycle
type AttemptState string

const (
	AttemptNotVisible AttemptState = "not_visible"
	AttemptAvailable  AttemptState = "available"
	AttemptCompleted  AttemptState = "completed"
)

// AllModels lists every table owned by the service in migration order
func AllModels() []interface{} {
	return []interface{}{
		&Teacher{},
		&Student{},
		&Test{},
		&Question{},
		&Option{},
		&TeacherStudent{},
		&TeacherTest{},
		&TestResult{},
	}
}
