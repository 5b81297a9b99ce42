package security

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/CalumRakk/resume-project/internal/delivery/http/response"
	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// EventsHandler exposes persisted security events to administrators.
type EventsHandler struct {
	reader domain.SecurityEventReader
}

func NewEventsHandler(reader domain.SecurityEventReader) *EventsHandler {
	return &EventsHandler{reader: reader}
}

// RegisterRoutes expects admin to already require an authenticated admin.
func (h *EventsHandler) RegisterRoutes(admin *gin.RouterGroup) {
	g := admin.Group("/admin/security")
	g.GET("/stats", h.GetStats)
	g.GET("/events", h.ListEvents)
}

// GetStats godoc
// @Summary      Security statistics
// @Description  Event counts for the last 24 hours, including token binding mismatches per client address.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.SecurityStats}
// @Failure      403  {object}  response.Response
// @Router       /admin/security/stats [get]
func (h *EventsHandler) GetStats(c *gin.Context) {
	stats, err := h.reader.GetStats(c.Request.Context())
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	response.Success(c, http.StatusOK, "Security stats", stats)
}

// ListEvents godoc
// @Summary      Security events
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        types   query     string  false  "Comma separated event types"
// @Param        ip      query     string  false  "Client address"
// @Param        since   query     string  false  "RFC3339 start time"
// @Param        limit   query     int     false  "Page size, at most 200"  default(50)
// @Param        offset  query     int     false  "Offset"
// @Success      200     {object}  response.Response{data=response.Paginated}
// @Failure      400     {object}  response.Response
// @Router       /admin/security/events [get]
func (h *EventsHandler) ListEvents(c *gin.Context) {
	filter := domain.SecurityEventFilter{
		SearchIP: strings.TrimSpace(c.Query("ip")),
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultEventLimit)))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultEventLimit
	case filter.Limit > maxEventLimit:
		filter.Limit = maxEventLimit
	}
	filter.Offset = max(filter.Offset, 0)

	if types := c.Query("types"); types != "" {
		for _, t := range strings.Split(types, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.EventTypes = append(filter.EventTypes, t)
			}
		}
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			c.Error(apperror.BadRequest("since must be an RFC3339 timestamp"))
			return
		}
		filter.StartTime = &t
	}

	events, total, err := h.reader.ListEvents(c.Request.Context(), filter)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	response.Success(c, http.StatusOK, "Security events", response.Paginated{
		Items:    events,
		Total:    total,
		Page:     filter.Offset/filter.Limit + 1,
		PageSize: filter.Limit,
	})
}
