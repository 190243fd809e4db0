package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	bookingapp "villacove/internal/app/handlers/booking"
	domainavailability "villacove/internal/domain/availability"
	domainbooking "villacove/internal/domain/booking"
	domainrange "villacove/internal/domain/shared/daterange"
	domainvilla "villacove/internal/domain/villa"
	mongodb "villacove/internal/infra/db/mongo"
	"villacove/internal/infra/obs"
)

// respondError translates domain failures into HTTP answers. Conflicts
// (someone else took the dates) are 409 so clients know to retry with
// different input, not the same request.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domainvilla.ErrVillaNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, bookingapp.ErrDatesUnavailable),
		errors.Is(err, domainavailability.ErrDateAlreadyBlocked),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, mongodb.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainrange.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrCheckInInPast),
		errors.Is(err, domainbooking.ErrBelowMinStay),
		errors.Is(err, domainbooking.ErrGuestsOverCap),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainbooking.ErrGuestRequired),
		errors.Is(err, domainvilla.ErrNameRequired),
		errors.Is(err, domainvilla.ErrSlugRequired),
		errors.Is(err, domainvilla.ErrCapacity),
		errors.Is(err, domainvilla.ErrMinStay),
		errors.Is(err, domainvilla.ErrNightlyRate),
		errors.Is(err, domainvilla.ErrFeeNegative),
		errors.Is(err, domainvilla.ErrPhotosRequired),
		errors.Is(err, domainvilla.ErrCurrencyMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if logger != nil {
			logger.Error("request failed",
				"error", err,
				"path", c.FullPath(),
				"request_id", obs.RequestIDFromContext(c.Request.Context()),
			)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// parseDateParam accepts plain days ("2025-07-01") or RFC3339 instants.
func parseDateParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
