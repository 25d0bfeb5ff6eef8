package models

import "time"

type User struct {
	ID                 int       `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Gender             *string   `json:"gender,omitempty"`
	Age                *int      `json:"age,omitempty"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	PreferredLocation  *string   `json:"preferred_location,omitempty"`
	PreferredLatitude  *float64  `json:"preferred_latitude,omitempty"`
	PreferredLongitude *float64  `json:"preferred_longitude,omitempty"`
	ImageKey           *string   `json:"-"`
	ImageURL           *string   `json:"image_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`

	PreferredCategoryIDs []int `json:"preferred_category_ids,omitempty"`
}

// PushToken - токен Expo для push-уведомлений.
type PushToken struct {
	UserID   int     `json:"user_id"`
	Token    string  `json:"token"`
	Platform *string `json:"platform,omitempty"`
}

// PushRecipient - получатель напоминания о турнире.
type PushRecipient struct {
	UserID    int
	FirstName string
	Token     string
}
