package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

const maxBodyBytes = 1 << 20

// decode reads a JSON body into dst and validates it. The returned error
// is safe to show to the client.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, e := range ve {
				msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s", e.Field(), e.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ─── Requests ───────────────────────────────────────────────────────────────

type registerRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	MobileNo string `json:"mobileNo" validate:"required,max=20"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	MobileNo string `json:"mobileNo" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyRequest struct {
	QuestionID          string `json:"questionId" validate:"required"`
	SelectedOptionIndex *int   `json:"selectedOptionIndex" validate:"required"`
}

type journeyRequest struct {
	TransportType  domain.TransportType `json:"transportType" validate:"required,oneof=bicycle train bus electric car"`
	Distance       float64              `json:"distance" validate:"gt=0"`
	FuelEfficiency *float64             `json:"fuelEfficiency" validate:"omitempty,gt=0"`
	Emissions      *float64             `json:"emissions"`
}

type avatarRequest struct {
	Avatar string `json:"avatar" validate:"required,max=2048"`
}

type postRequest struct {
	Content string   `json:"content" validate:"required,max=5000"`
	Images  []string `json:"images" validate:"max=10,dive,url"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type reactRequest struct {
	Type string `json:"type" validate:"omitempty,max=20"`
}

type eventRequest struct {
	Name               string `json:"name" validate:"required,max=200"`
	Date               string `json:"date" validate:"required"`
	Time               string `json:"time" validate:"required"`
	Location           string `json:"location" validate:"required,max=300"`
	RequiredVolunteers int    `json:"requiredVolunteers" validate:"gte=1"`
}

// eventDate accepts a full timestamp or a bare calendar day.
func eventDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(domain.DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event date %q", s)
	}
	return t, nil
}

// ─── Responses ──────────────────────────────────────────────────────────────

type userSummary struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	MobileNo string `json:"mobileNo"`
	Points   int    `json:"points"`
}

func summarize(u *domain.User) userSummary {
	return userSummary{ID: u.ID, FullName: u.FullName, MobileNo: u.MobileNo, Points: u.Points}
}
