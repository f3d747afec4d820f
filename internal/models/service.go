package models

import (
	"time"
)

// Service is an entry of the useful services directory
type Service struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	URL          string    `json:"url" db:"url"`
	Description  *string   `json:"description" db:"description"`
	CategoryID   *string   `json:"categoryId" db:"category_id"`
	CategoryName *string   `json:"categoryName,omitempty" db:"category_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// ServiceRequest is the body of POST and PUT /api/services
type ServiceRequest struct {
	Title       string  `json:"title" binding:"required,notblank,max=255"`
	URL         string  `json:"url" binding:"required,url,max=2048"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	CategoryID  *string `json:"categoryId" binding:"omitempty,uuid"`
}

// ServiceQuery filters the services listing
type ServiceQuery struct {
	Page
	Search string
}

// ServiceList is the paginated services envelope
type ServiceList struct {
	Services []Service `json:"services"`
	Total    int       `json:"total"`
}

// ServiceCategory groups directory entries, independent of article categories
type ServiceCategory struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ServiceCategoryRequest is the body of POST /api/services/service-categories
type ServiceCategoryRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255"`
}
