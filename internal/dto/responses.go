package dto

import (
	"time"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AuthResponse struct {
	User         *models.User  `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    time.Duration `json:"expires_in"`
}

type CatalogVersionResponse struct {
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderResponse struct {
	Order   *models.Order           `json:"order"`
	Answers []models.QuestionAnswer `json:"answers,omitempty"`
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type PaymentResponse struct {
	Payment *models.Payment `json:"payment"`
	Card    *CardResponse   `json:"card,omitempty"`
}

type CardResponse struct {
	Number string `json:"number"`
	Holder string `json:"holder"`
}

type PaymentListResponse struct {
	Payments []models.Payment `json:"payments"`
}

type UploadResponse struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}
