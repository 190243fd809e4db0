package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"villacove/internal/app/dto"
	availabilityapp "villacove/internal/app/handlers/availability"
	villasapp "villacove/internal/app/handlers/villas"
	"villacove/internal/app/queries"
)

// SiteHandler serves the public marketing site: published villas only,
// slug-addressed.
type SiteHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h SiteHandler) Catalog(c *gin.Context) {
	result, err := queries.Ask[villasapp.CatalogQuery, dto.VillaCollection](c.Request.Context(), h.Queries, villasapp.CatalogQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SiteHandler) Detail(c *gin.Context) {
	result, err := queries.Ask[villasapp.DetailQuery, dto.VillaDetail](c.Request.Context(), h.Queries, villasapp.DetailQuery{Slug: c.Param("slug")})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SiteHandler) Calendar(c *gin.Context) {
	detail, err := queries.Ask[villasapp.DetailQuery, dto.VillaDetail](c.Request.Context(), h.Queries, villasapp.DetailQuery{Slug: c.Param("slug")})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, availabilityapp.GetCalendarQuery{
		VillaID: detail.ID,
		From:    from,
		To:      to,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SiteHandler) CheckAvailability(c *gin.Context) {
	detail, err := queries.Ask[villasapp.DetailQuery, dto.VillaDetail](c.Request.Context(), h.Queries, villasapp.DetailQuery{Slug: c.Param("slug")})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	checkIn, err := parseDateParam(c.Query("check_in"))
	if err != nil || checkIn.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in date"})
		return
	}
	checkOut, err := parseDateParam(c.Query("check_out"))
	if err != nil || checkOut.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out date"})
		return
	}
	result, err := queries.Ask[availabilityapp.CheckQuery, dto.AvailabilityCheck](c.Request.Context(), h.Queries, availabilityapp.CheckQuery{
		VillaID:  detail.ID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ SiteHTTP = SiteHandler{}
