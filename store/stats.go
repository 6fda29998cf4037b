package store

import "civicsync-be/models"

// Stats summarizes the store for the dashboards.
type Stats struct {
	TotalIssues      int            `json:"totalIssues"`
	PendingIssues    int            `json:"pendingIssues"`
	InProgressIssues int            `json:"inProgressIssues"`
	ResolvedIssues   int            `json:"resolvedIssues"`
	MyIssues         int            `json:"myIssues"`
	TotalUpvotes     int            `json:"totalUpvotes"`
	TotalEvents      int            `json:"totalEvents"`
	UpcomingEvents   int            `json:"upcomingEvents"`
	TotalVolunteers  int            `json:"totalVolunteers"`
	IssuesByType     map[string]int `json:"issuesByType"`
}

// Stats counts issues and volunteers. MyIssues counts the issues reported
// under viewerName; UpcomingEvents counts events dated today or later.
func (s *Store) Stats(viewerName string) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalIssues:  len(s.issues),
		TotalEvents:  len(s.events),
		IssuesByType: make(map[string]int),
	}
	for _, rec := range s.issues {
		switch rec.issue.Status {
		case models.Pending:
			st.PendingIssues++
		case models.InProgress:
			st.InProgressIssues++
		case models.Resolved:
			st.ResolvedIssues++
		}
		if viewerName != "" && rec.issue.ReportedBy == viewerName {
			st.MyIssues++
		}
		st.TotalUpvotes += rec.issue.Upvotes
		st.IssuesByType[rec.issue.Type]++
	}
	today := s.now().Format(models.EventDateLayout)
	for _, event := range s.events {
		st.TotalVolunteers += event.RegisteredVolunteers
		if event.Date >= today {
			st.UpcomingEvents++
		}
	}
	return st
}
