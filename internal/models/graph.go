package models

import "time"

// Teacher is the business profile of a user holding the teacher role
type Teacher struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	UserID   string    `json:"user_id" gorm:"uniqueIndex;not null;size:255"`
	JoinedAt time.Time `json:"joined_at" gorm:"not null;autoCreateTime"`
}

func (Teacher) TableName() string {
	return "teachers"
}

// Student is the business profile of a user holding the student role
type Student struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"uniqueIndex;not null;size:255"`
	EnrolledAt time.Time `json:"enrolled_at" gorm:"not null;autoCreateTime"`
}

func (Student) TableName() string {
	return "students"
}

// TeacherStudent is one edge of the teacher<->student assignment graph.
// Neither side owns the edge; it is queried from both directions.
type TeacherStudent struct {
	TeacherID uint      `json:"teacher_id" gorm:"primaryKey;autoIncrement:false"`
	StudentID uint      `json:"student_id" gorm:"primaryKey;autoIncrement:false;index"`
	LinkedAt  time.Time `json:"linked_at" gorm:"not null;autoCreateTime"`

	Teacher *Teacher `json:"-" gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE"`
	Student *Student `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
}

func (TeacherStudent) TableName() string {
	return "teacher_students"
}

// TeacherTest is one edge of the teacher<->test ownership graph
type TeacherTest struct {
	TeacherID uint      `json:"teacher_id" gorm:"primaryKey;autoIncrement:false"`
	TestID    uint      `json:"test_id" gorm:"primaryKey;autoIncrement:false;index"`
	LinkedAt  time.Time `json:"linked_at" gorm:"not null;autoCreateTime"`

	Teacher *Teacher `json:"-" gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE"`
	Test    *Test    `json:"-" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE"`
}

func (TeacherTest) TableName() string {
	return "teacher_tests"
}
