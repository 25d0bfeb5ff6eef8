package models

// SportCategory представляет вид спорта.
type SportCategory struct {
	ID    int     `json:"id" db:"id"`
	Name  string  `json:"category_name" db:"category_name"`
	Image *string `json:"category_image,omitempty" db:"category_image"`
}
