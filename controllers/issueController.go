package controllers

import (
	"net/http"

	"civicsync-be/middlewares"
	"civicsync-be/models"
	"civicsync-be/store"

	"github.com/gin-gonic/gin"
)

// IssueController serves issue reporting, triage and upvotes
type IssueController struct {
	Store *store.Store
}

// CreateIssue handles the creation of a new issue
func (ic *IssueController) CreateIssue(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Type        string `json:"type"`
		CustomType  string `json:"customType" binding:"max=100"`
		Description string `json:"description" binding:"max=1000"`
		Location    struct {
			Lat     *float64 `json:"lat"`
			Lng     *float64 `json:"lng"`
			Address string   `json:"address" binding:"max=200"`
		} `json:"location"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := ic.Store.ReportIssue(c.Request.Context(), store.ReportIssueInput{
		Type:        input.Type,
		CustomType:  input.CustomType,
		Description: input.Description,
		Lat:         input.Location.Lat,
		Lng:         input.Location.Lng,
		Address:     input.Location.Address,
		ReportedBy:  user.Name,
	})
	middlewares.RecordStoreOperation("report_issue", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetAllIssues lists issues with status, tab, type and search filtering
func (ic *IssueController) GetAllIssues(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)

	filter := store.IssueFilter{
		Viewer:     user.ID,
		ViewerName: user.Name,
		Type:       c.Query("type"),
		Search:     c.Query("search"),
	}

	if status := c.DefaultQuery("status", "all"); status != "all" {
		filter.Status = models.IssueStatus(status)
		if !filter.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
	}

	switch c.DefaultQuery("tab", "all") {
	case "all":
	case "my-issues":
		filter.Mine = true
	case "upvoted":
		filter.Upvoted = true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tab"})
		return
	}

	issues := ic.Store.Issues(filter)
	c.JSON(http.StatusOK, gin.H{
		"issues":      issues,
		"totalIssues": len(issues),
	})
}

// GetIssue retrieves an issue by its ID as seen by the caller
func (ic *IssueController) GetIssue(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)

	issue, err := ic.Store.Issue(c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// UpdateIssueStatus lets an administrator move an issue along its lifecycle
func (ic *IssueController) UpdateIssueStatus(c *gin.Context) {
	var input struct {
		Status  string `json:"status" binding:"required"`
		Remarks string `json:"remarks" binding:"max=1000"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := ic.Store.UpdateIssueStatus(c.Request.Context(), c.Param("id"), models.IssueStatus(input.Status), input.Remarks)
	middlewares.RecordStoreOperation("update_issue_status", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// UpvoteIssue records the caller's upvote; repeating it changes nothing
func (ic *IssueController) UpvoteIssue(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	issue, err := ic.Store.UpvoteIssue(c.Request.Context(), c.Param("id"), user.ID)
	middlewares.RecordStoreOperation("upvote_issue", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// GetIssueAnalytics returns the dashboard counters
func (ic *IssueController) GetIssueAnalytics(c *gin.Context) {
	user, _ := middlewares.CurrentUser(c)
	c.JSON(http.StatusOK, ic.Store.Stats(user.Name))
}
