package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"villacove/internal/app/commands"
	"villacove/internal/app/dto"
	availabilityapp "villacove/internal/app/handlers/availability"
	bookingapp "villacove/internal/app/handlers/booking"
	reportsapp "villacove/internal/app/handlers/reports"
	villasapp "villacove/internal/app/handlers/villas"
	"villacove/internal/app/queries"
	"villacove/internal/infra/storage/s3"
)

const maxPhotoSizeBytes = 10 << 20

// AdminHandler is the back-office surface. Every route sits behind the
// admin session middleware.
type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Uploader s3.Uploader
	Logger   *slog.Logger
}

type villaRequest struct {
	Name             string   `json:"name"`
	Slug             string   `json:"slug"`
	Description      string   `json:"description"`
	Location         string   `json:"location"`
	Capacity         int      `json:"capacity"`
	MinStayNights    int      `json:"min_stay_nights"`
	NightlyRateCents int64    `json:"nightly_rate_cents"`
	CleaningFeeCents int64    `json:"cleaning_fee_cents"`
	ServiceFeeCents  int64    `json:"service_fee_cents"`
	Currency         string   `json:"currency"`
	Amenities        []string `json:"amenities"`
}

func (h AdminHandler) ListVillas(c *gin.Context) {
	result, err := queries.Ask[villasapp.CatalogQuery, dto.VillaCollection](c.Request.Context(), h.Queries, villasapp.CatalogQuery{IncludeDrafts: true})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) CreateVilla(c *gin.Context) {
	var req villaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := villasapp.CreateVillaCommand{
		CommandID:        uuid.NewString(),
		Name:             req.Name,
		Slug:             req.Slug,
		Description:      req.Description,
		Location:         req.Location,
		Capacity:         req.Capacity,
		MinStayNights:    req.MinStayNights,
		NightlyRateCents: req.NightlyRateCents,
		CleaningFeeCents: req.CleaningFeeCents,
		ServiceFeeCents:  req.ServiceFeeCents,
		Currency:         req.Currency,
		Amenities:        req.Amenities,
	}
	result, err := commands.Dispatch[villasapp.CreateVillaCommand, *villasapp.CreateVillaResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AdminHandler) UpdateVilla(c *gin.Context) {
	var req villaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := villasapp.UpdateVillaCommand{
		VillaID:          c.Param("id"),
		Name:             req.Name,
		Description:      req.Description,
		Location:         req.Location,
		Capacity:         req.Capacity,
		MinStayNights:    req.MinStayNights,
		NightlyRateCents: req.NightlyRateCents,
		CleaningFeeCents: req.CleaningFeeCents,
		ServiceFeeCents:  req.ServiceFeeCents,
		Currency:         req.Currency,
		Amenities:        req.Amenities,
	}
	result, err := commands.Dispatch[villasapp.UpdateVillaCommand, *villasapp.UpdateVillaResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) PublishVilla(c *gin.Context) {
	h.setPublished(c, true)
}

func (h AdminHandler) UnpublishVilla(c *gin.Context) {
	h.setPublished(c, false)
}

func (h AdminHandler) setPublished(c *gin.Context, publish bool) {
	cmd := villasapp.PublishVillaCommand{VillaID: c.Param("id"), Publish: publish}
	result, err := commands.Dispatch[villasapp.PublishVillaCommand, *villasapp.PublishVillaResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) UploadPhoto(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage unavailable"})
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if file.Size > maxPhotoSizeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo exceeds size limit"})
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer src.Close()

	villaID := c.Param("id")
	key := fmt.Sprintf("villas/%s/%s%s", villaID, uuid.NewString(), filepath.Ext(file.Filename))
	url, err := h.Uploader.Upload(c.Request.Context(), key, src, file.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	cmd := villasapp.AddPhotoCommand{VillaID: villaID, URL: url}
	result, err := commands.Dispatch[villasapp.AddPhotoCommand, *villasapp.AddPhotoResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type blockDatesRequest struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Reason string    `json:"reason"`
}

func (h AdminHandler) BlockDates(c *gin.Context) {
	var req blockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := availabilityapp.BlockDatesCommand{
		VillaID: c.Param("id"),
		From:    req.From,
		To:      req.To,
		Reason:  req.Reason,
	}
	result, err := commands.Dispatch[availabilityapp.BlockDatesCommand, *availabilityapp.BlockDatesResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AdminHandler) UnblockDates(c *gin.Context) {
	var req blockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := availabilityapp.UnblockDatesCommand{
		VillaID: c.Param("id"),
		From:    req.From,
		To:      req.To,
	}
	result, err := commands.Dispatch[availabilityapp.UnblockDatesCommand, *availabilityapp.UnblockDatesResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ListBookings(c *gin.Context) {
	result, err := queries.Ask[bookingapp.ListByVillaQuery, dto.BookingCollection](c.Request.Context(), h.Queries, bookingapp.ListByVillaQuery{VillaID: c.Param("id")})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h AdminHandler) CancelBooking(c *gin.Context) {
	// body is optional; a bare cancel is fine
	var req cancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	cmd := bookingapp.CancelBookingCommand{BookingID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) OccupancyReport(c *gin.Context) {
	start, err := parseDateParam(c.Query("start"))
	if err != nil || start.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date"})
		return
	}
	end, err := parseDateParam(c.Query("end"))
	if err != nil || end.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date"})
		return
	}
	result, err := queries.Ask[reportsapp.OccupancyQuery, dto.OccupancyReport](c.Request.Context(), h.Queries, reportsapp.OccupancyQuery{
		VillaID:     c.Param("id"),
		PeriodStart: start,
		PeriodEnd:   end,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
