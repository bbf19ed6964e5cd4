package models

import "time"

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

type Course struct {
	ID           string      `json:"_id,omitempty"`
	Title        string      `json:"title,omitempty"`
	Slug         string      `json:"slug,omitempty"`
	Description  string      `json:"description,omitempty"`
	Category     string      `json:"category,omitempty"`
	Level        CourseLevel `json:"level,omitempty"`
	Price        float64     `json:"price,omitempty"`
	Thumbnail    string      `json:"thumbnail,omitempty"`
	InstructorID string      `json:"instructor,omitempty"`
	Modules      []string    `json:"modules,omitempty"`
	Published    bool        `json:"isPublished,omitempty"`
	Rating       float64     `json:"rating,omitempty"`
	CreatedAt    time.Time   `json:"createdAt,omitempty"`
	UpdatedAt    time.Time   `json:"updatedAt,omitempty"`
}

type CourseRequest struct {
	Title        string      `json:"title" validate:"required"`
	Description  string      `json:"description" validate:"required"`
	Category     string      `json:"category,omitempty"`
	Level        CourseLevel `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price        float64     `json:"price" validate:"gte=0"`
	Thumbnail    string      `json:"thumbnail,omitempty" validate:"omitempty,url"`
	InstructorID string      `json:"instructor,omitempty"`
}

type PublishRequest struct {
	Published bool `json:"isPublished"`
}

type Module struct {
	ID          string    `json:"_id,omitempty"`
	CourseID    string    `json:"course,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	Order       int       `json:"order,omitempty"`
	Duration    int       `json:"duration,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

type ModuleRequest struct {
	CourseID    string `json:"course" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty" validate:"omitempty,url"`
	Order       int    `json:"order" validate:"gte=0"`
	Duration    int    `json:"duration,omitempty" validate:"gte=0"`
}

type Question struct {
	Text    string   `json:"question" validate:"required"`
	Options []string `json:"options" validate:"min=2,dive,required"`
	Answer  int      `json:"answer" validate:"gte=0"`
}

type Quiz struct {
	ID        string     `json:"_id,omitempty"`
	ModuleID  string     `json:"module,omitempty"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions,omitempty"`
	PassMark  int        `json:"passMark,omitempty"`
}

type QuizRequest struct {
	ModuleID  string     `json:"module" validate:"required"`
	Title     string     `json:"title" validate:"required"`
	Questions []Question `json:"questions" validate:"min=1,dive"`
	PassMark  int        `json:"passMark" validate:"gte=0,lte=100"`
}

type QuizSubmission struct {
	Answers []int `json:"answers" validate:"min=1"`
}

type QuizResult struct {
	Score  int  `json:"score"`
	Passed bool `json:"passed"`
}

type Instructor struct {
	ID     string `json:"_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Bio    string `json:"bio,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type InstructorRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Bio    string `json:"bio,omitempty"`
	Avatar string `json:"avatar,omitempty" validate:"omitempty,url"`
}

type Review struct {
	ID        string    `json:"_id,omitempty"`
	CourseID  string    `json:"course,omitempty"`
	UserID    string    `json:"user,omitempty"`
	Rating    int       `json:"rating,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type ReviewRequest struct {
	CourseID string `json:"course" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment,omitempty"`
}
