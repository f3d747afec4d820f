package models

// Category groups articles
type Category struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// CategoryRequest is the body of POST and PUT /api/categories
type CategoryRequest struct {
	ID   string `json:"id" binding:"omitempty,uuid"`
	Name string `json:"name" binding:"required,notblank,max=255"`
}
