package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jobportal/internal/apperrors"
	"github.com/mrlokans/jobportal/internal/entities"
	"github.com/mrlokans/jobportal/internal/pagination"
)

type AuditController struct {
	events EventReader
}

func NewAuditController(events EventReader) *AuditController {
	return &AuditController{
		events: events,
	}
}

// GetAuditEvents returns paginated audit events, most recent first.
// GET /admin/audit?page=N&per_page=M&type=auth&principal_id=7
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	pageNum := pagination.ParsePage(c.Query("page"))
	perPage := pagination.ParsePerPage(c.Query("per_page"))
	eventType := c.Query("type")

	var principalID uint
	if raw := c.Query("principal_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid principal_id")
			return
		}
		principalID = uint(id)
	}

	if eventType != "" && !isEventType(eventType) {
		respondError(c, http.StatusBadRequest, "unknown event type")
		return
	}

	offset := (pageNum - 1) * perPage

	var events []entities.AuditEvent
	var total int64
	var err error

	if eventType != "" {
		events, total, err = ac.events.GetEventsByType(entities.AuditEventType(eventType), principalID, perPage, offset)
	} else {
		events, total, err = ac.events.GetEvents(principalID, perPage, offset)
	}

	if err != nil {
		_ = c.Error(apperrors.Technical(err, "load audit events"))
		return
	}

	page := pagination.New(pageNum, int(total), perPage)

	c.JSON(http.StatusOK, gin.H{
		"events": PaginatedResponse{
			Data:       events,
			Total:      total,
			Page:       pageNum,
			PerPage:    perPage,
			HasMore:    pageNum < page.Pages,
			TotalPages: page.Pages,
		},
		"eventTypes": getEventTypes(),
	})
}

type EventTypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func getEventTypes() []EventTypeOption {
	return []EventTypeOption{
		{Value: "", Label: "All Events"},
		{Value: string(entities.AuditEventAuth), Label: "Authentication"},
		{Value: string(entities.AuditEventRegistration), Label: "Registration"},
		{Value: string(entities.AuditEventSecurity), Label: "Security"},
		{Value: string(entities.AuditEventUpload), Label: "Upload"},
	}
}

func isEventType(v string) bool {
	for _, opt := range getEventTypes() {
		if opt.Value != "" && opt.Value == v {
			return true
		}
	}
	return false
}
