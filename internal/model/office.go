package model

import (
	"math"
	"time"
)

type Office struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	LeaseFee     int64     `json:"lease_fee"`     // Стоимость аренды за месяц
	MaxCapacity  int       `json:"max_capacity"`  // Максимальное количество человек
	MaxRoomCount int       `json:"max_room_count"` // Количество сдаваемых комнат
	ReviewCount  int64     `json:"review_count"`
	TotalRate    int64     `json:"total_rate"` // Сумма всех оценок, среднее не храним
	CreatedAt    time.Time `json:"created_at"`
}

// AverageRate возвращает средний рейтинг офиса, округлённый до двух знаков.
// Если отзывов нет - 0.
func (o *Office) AverageRate() float64 {
	if o.ReviewCount == 0 {
		return 0
	}
	return math.Round(float64(o.TotalRate)/float64(o.ReviewCount)*100) / 100
}
