package controllers

import (
	"net/http"
	"strconv"
	"time"

	"civicsync-be/middlewares"
	"civicsync-be/models"
	"civicsync-be/store"

	"github.com/gin-gonic/gin"
)

// EventController serves the community event calendar
type EventController struct {
	Store *store.Store
}

// GetEvents lists events, optionally narrowed to one day, one month or the
// next upcoming ones
func (ec *EventController) GetEvents(c *gin.Context) {
	if upcoming := c.Query("upcoming"); upcoming != "" {
		n, err := strconv.Atoi(upcoming)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upcoming count"})
			return
		}
		c.JSON(http.StatusOK, ec.Store.UpcomingEvents(time.Now(), n))
		return
	}

	if date := c.Query("date"); date != "" {
		if _, err := time.Parse(models.EventDateLayout, date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		c.JSON(http.StatusOK, ec.Store.EventsOn(date))
		return
	}

	if month := c.Query("month"); month != "" {
		m, err := time.Parse("2006-01", month)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month, expected YYYY-MM"})
			return
		}
		c.JSON(http.StatusOK, ec.Store.EventsInMonth(m.Year(), m.Month()))
		return
	}

	c.JSON(http.StatusOK, ec.Store.Events())
}

// GetEvent retrieves one event by its ID
func (ec *EventController) GetEvent(c *gin.Context) {
	event, err := ec.Store.Event(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// CreateEvent lets an administrator schedule an event
func (ec *EventController) CreateEvent(c *gin.Context) {
	var input store.CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := ec.Store.CreateEvent(c.Request.Context(), input)
	middlewares.RecordStoreOperation("create_event", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// RegisterForEvent takes one volunteer slot for the caller
func (ec *EventController) RegisterForEvent(c *gin.Context) {
	event, err := ec.Store.RegisterForEvent(c.Request.Context(), c.Param("id"))
	middlewares.RecordStoreOperation("register_for_event", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}
