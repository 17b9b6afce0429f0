package transport

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ds-lab/eventmanager/internal/entity"
	"github.com/ds-lab/eventmanager/internal/service"
)

type AttendeeHandler struct {
	registrationService service.RegistrationService
	checkinService      service.CheckinService
}

func NewAttendeeHandler(registrationService service.RegistrationService, checkinService service.CheckinService) *AttendeeHandler {
	return &AttendeeHandler{
		registrationService: registrationService,
		checkinService:      checkinService,
	}
}

func (h *AttendeeHandler) Register(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req service.RegisterAttendeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attendee, err := h.registrationService.RegisterAttendee(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attendee)
}

func (h *AttendeeHandler) ListAttendees(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var checkedIn *bool
	if v := c.Query("checked_in"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "checked_in must be a boolean"})
			return
		}
		checkedIn = &parsed
	}

	attendees, err := h.registrationService.ListAttendees(c.Request.Context(), id, checkedIn)
	if err != nil {
		writeError(c, err)
		return
	}

	if attendees == nil {
		attendees = []*entity.Attendee{}
	}
	c.JSON(http.StatusOK, attendees)
}

// checkinBody carries the desired flag; absent means check in.
type checkinBody struct {
	CheckedIn *bool `json:"checked_in"`
}

func (h *AttendeeHandler) CheckIn(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	attendeeID, err := strconv.ParseInt(c.Param("attendee_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attendee id"})
		return
	}

	desired := true
	if c.Request.ContentLength > 0 {
		var body checkinBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if body.CheckedIn != nil {
			desired = *body.CheckedIn
		}
	}

	attendee, err := h.checkinService.CheckIn(c.Request.Context(), id, attendeeID, desired)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, attendee)
}

type bulkCheckinBody struct {
	Rows []entity.CheckinRow `json:"rows" binding:"required"`
}

// BulkCheckin accepts either a JSON body of rows or an uploaded CSV file with
// attendee_id/email columns. Both forms feed the same processor and produce
// the same report.
func (h *AttendeeHandler) BulkCheckin(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var rows []entity.CheckinRow
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing csv file upload"})
			return
		}
		defer file.Close()

		rows, err = parseCheckinCSV(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else {
		var body bulkCheckinBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rows = body.Rows
	}

	// A cancelled batch still yields the report of the rows it got through.
	report, err := h.checkinService.BulkCheckin(c.Request.Context(), id, rows)
	if err != nil && report == nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// parseCheckinCSV reads a header row naming attendee_id and/or email columns
// and turns every record into a check-in row. An unparseable attendee id is
// kept as a raw key so the processor can report it as a row failure instead
// of aborting the upload.
func parseCheckinCSV(r io.Reader) ([]entity.CheckinRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("csv file is empty or has no header row")
	}

	idCol, emailCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "attendee_id":
			idCol = i
		case "email":
			emailCol = i
		}
	}
	if idCol < 0 && emailCol < 0 {
		return nil, errors.New("csv header must contain an attendee_id or email column")
	}

	var rows []entity.CheckinRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		var row entity.CheckinRow
		if idCol >= 0 && idCol < len(record) {
			raw := strings.TrimSpace(record[idCol])
			if raw != "" {
				if id, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil {
					row.AttendeeID = &id
				} else {
					row.Raw = raw
				}
			}
		}
		if row.AttendeeID == nil && emailCol >= 0 && emailCol < len(record) {
			if email := strings.TrimSpace(record[emailCol]); email != "" && row.Raw == "" {
				row.Email = &email
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
