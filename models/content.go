package models

import "time"

type Blog struct {
	ID        string    `json:"_id,omitempty"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content,omitempty"`
	Author    string    `json:"author,omitempty"`
	Image     string    `json:"image,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type BlogRequest struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content" validate:"required"`
	Author  string   `json:"author,omitempty"`
	Image   string   `json:"image,omitempty" validate:"omitempty,url"`
	Tags    []string `json:"tags,omitempty"`
}

type Event struct {
	ID          string    `json:"_id,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartsAt    time.Time `json:"startDate,omitempty"`
	EndsAt      time.Time `json:"endDate,omitempty"`
	Image       string    `json:"image,omitempty"`
}

type EventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartsAt    time.Time `json:"startDate" validate:"required"`
	EndsAt      time.Time `json:"endDate" validate:"required,gtfield=StartsAt"`
	Image       string    `json:"image,omitempty" validate:"omitempty,url"`
}

// ListQuery is the common pagination/search query of list endpoints
type ListQuery struct {
	Page   int
	Limit  int
	Search string
}
