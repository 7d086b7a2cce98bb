package model

import "time"

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Point     int64     `json:"point"` // Внутренний баланс, списывается один раз при бронировании
	CreatedAt time.Time `json:"created_at"`
}
