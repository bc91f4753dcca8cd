package dto

import "time"

// TransportStatusDTO текущее состояние транспорта обновлений
type TransportStatusDTO struct {
	State     string    `json:"state"`
	Endpoint  string    `json:"endpoint"`
	Since     time.Time `json:"since"`
	Received  uint64    `json:"received"`
	Dropped   uint64    `json:"dropped"`
	PollEvery string    `json:"poll_every"`
}
