package models

import (
	"fmt"
	"time"
)

// IssueType enum
type IssueType string

const (
	Potholes          IssueType = "Potholes"
	GarbageCollection IssueType = "Garbage Collection"
	Powercut          IssueType = "Powercut"
	WaterLeakage      IssueType = "Water Leakage"
	StreetlightIssue  IssueType = "Streetlight Issue"
	SewerOverflow     IssueType = "Sewer Overflow"
	RoadDamage        IssueType = "Road Damage"
	TreeFall          IssueType = "Tree Fall"
	OpenWires         IssueType = "Open Wires"
	OtherIssue        IssueType = "Other"
)

// IssueTypes is the catalog offered to reporters, in display order.
var IssueTypes = []IssueType{
	Potholes, GarbageCollection, Powercut, WaterLeakage, StreetlightIssue,
	SewerOverflow, RoadDamage, TreeFall, OpenWires, OtherIssue,
}

// IsCatalogIssueType reports whether t is one of IssueTypes.
func IsCatalogIssueType(t string) bool {
	for _, c := range IssueTypes {
		if string(c) == t {
			return true
		}
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "pending"
	InProgress IssueStatus = "in-progress"
	Resolved   IssueStatus = "resolved"
)

// Rank orders statuses along the issue lifecycle. Unknown statuses rank -1.
func (s IssueStatus) Rank() int {
	switch s {
	case Pending:
		return 0
	case InProgress:
		return 1
	case Resolved:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is a known lifecycle status.
func (s IssueStatus) Valid() bool {
	return s.Rank() >= 0
}

// Location is the point an issue was reported at.
type Location struct {
	Lat     float64 `bson:"lat" json:"lat"`
	Lng     float64 `bson:"lng" json:"lng"`
	Address string  `bson:"address" json:"address"`
}

// CoordinateAddress renders the display address used when no street address is known.
func CoordinateAddress(lat, lng float64) string {
	return fmt.Sprintf("Lat: %.4f, Lng: %.4f", lat, lng)
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID           string      `bson:"_id" json:"id"`
	Type         string      `bson:"type" json:"type"`
	Description  string      `bson:"description" json:"description"`
	Location     Location    `bson:"location" json:"location"`
	Status       IssueStatus `bson:"status" json:"status"`
	Upvotes      int         `bson:"upvotes" json:"upvotes"`
	ReportedBy   string      `bson:"reportedBy" json:"reportedBy"`
	ReportedAt   time.Time   `bson:"reportedAt" json:"reportedAt"`
	UpdatedAt    time.Time   `bson:"updatedAt" json:"updatedAt"`
	AdminRemarks string      `bson:"adminRemarks,omitempty" json:"adminRemarks,omitempty"`

	// Revision counts the changes applied to the issue. Persisted copies
	// with a lower revision are stale.
	Revision int64 `bson:"revision" json:"-"`

	// HasUpvoted is computed for the viewer the issue was read for.
	HasUpvoted bool `bson:"-" json:"hasUpvoted"`
}
