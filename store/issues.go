package store

import (
	"context"
	"strings"

	"civicsync-be/models"
)

// ReportIssueInput is what a reporter submits. Lat and Lng come from the map
// click or geolocation done by the caller.
type ReportIssueInput struct {
	Type        string   `json:"type" validate:"required"`
	CustomType  string   `json:"customType"`
	Description string   `json:"description" validate:"required"`
	Lat         *float64 `json:"lat" validate:"required,latitude"`
	Lng         *float64 `json:"lng" validate:"required,longitude"`
	Address     string   `json:"address"`
	ReportedBy  string   `json:"reportedBy"`
}

// ReportIssue appends a new pending issue.
func (s *Store) ReportIssue(ctx context.Context, input ReportIssueInput) (models.Issue, error) {
	input.Type = strings.TrimSpace(input.Type)
	input.CustomType = strings.TrimSpace(input.CustomType)
	input.Description = strings.TrimSpace(input.Description)
	input.Address = strings.TrimSpace(input.Address)
	input.ReportedBy = strings.TrimSpace(input.ReportedBy)

	if err := s.check(input); err != nil {
		return models.Issue{}, err
	}
	if !models.IsCatalogIssueType(input.Type) {
		return models.Issue{}, invalidField("type", "is not a known issue type")
	}

	issueType := input.Type
	if issueType == string(models.OtherIssue) && input.CustomType != "" {
		issueType = input.CustomType
	}
	address := input.Address
	if address == "" {
		address = models.CoordinateAddress(*input.Lat, *input.Lng)
	}
	reporter := input.ReportedBy
	if reporter == "" {
		reporter = "Anonymous"
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Issue{}, ErrClosed
	}
	now := s.now()
	issue := models.Issue{
		ID:          s.nextID(func(id string) bool { _, ok := s.issueIdx[id]; return ok }),
		Type:        issueType,
		Description: input.Description,
		Location: models.Location{
			Lat:     *input.Lat,
			Lng:     *input.Lng,
			Address: address,
		},
		Status:     models.Pending,
		Upvotes:    0,
		ReportedBy: reporter,
		ReportedAt: now,
		UpdatedAt:  now,
		Revision:   1,
	}
	rec := &issueRecord{issue: issue, voters: make(map[string]struct{})}
	s.issues = append(s.issues, rec)
	s.issueIdx[issue.ID] = rec
	s.mu.Unlock()

	s.log.Info().Str("issue_id", issue.ID).Str("type", issue.Type).Msg("issue reported")
	s.mirrorIssue(ctx, issue)
	return issue, nil
}

// UpdateIssueStatus moves an issue forward along pending, in-progress,
// resolved. States may be skipped and the current status may be re-applied,
// but a status never regresses. Non-empty remarks replace the admin remarks;
// empty remarks leave them as they are.
func (s *Store) UpdateIssueStatus(ctx context.Context, id string, status models.IssueStatus, remarks string) (models.Issue, error) {
	if !status.Valid() {
		return models.Issue{}, invalidField("status", "must be one of: pending in-progress resolved")
	}
	remarks = strings.TrimSpace(remarks)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Issue{}, ErrClosed
	}
	rec, ok := s.issueIdx[id]
	if !ok {
		s.mu.Unlock()
		return models.Issue{}, ErrIssueNotFound
	}
	if status.Rank() < rec.issue.Status.Rank() {
		current := rec.issue.Status
		s.mu.Unlock()
		s.log.Warn().Str("issue_id", id).Str("from", string(current)).Str("to", string(status)).Msg("status regression refused")
		return models.Issue{}, ErrInvalidTransition
	}
	rec.issue.Status = status
	if remarks != "" {
		rec.issue.AdminRemarks = remarks
	}
	rec.issue.UpdatedAt = s.now()
	rec.issue.Revision++
	issue := rec.issue
	s.mu.Unlock()

	s.log.Info().Str("issue_id", id).Str("status", string(status)).Msg("issue status updated")
	s.mirrorIssue(ctx, issue)
	return issue, nil
}

// UpvoteIssue adds viewer's upvote to the issue. A viewer that has already
// upvoted gets the issue back unchanged.
func (s *Store) UpvoteIssue(ctx context.Context, id, viewer string) (models.Issue, error) {
	if viewer == "" {
		return models.Issue{}, invalidField("viewer", "is required")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Issue{}, ErrClosed
	}
	rec, ok := s.issueIdx[id]
	if !ok {
		s.mu.Unlock()
		return models.Issue{}, ErrIssueNotFound
	}
	if _, voted := rec.voters[viewer]; voted {
		issue := rec.view(viewer)
		s.mu.Unlock()
		return issue, nil
	}
	now := s.now()
	rec.voters[viewer] = struct{}{}
	rec.issue.Upvotes++
	rec.issue.UpdatedAt = now
	rec.issue.Revision++
	issue := rec.view(viewer)
	s.mu.Unlock()

	s.mirrorIssue(ctx, issue)
	s.mirrorVote(ctx, models.Vote{
		ID:        models.VoteID(id, viewer),
		Issue:     id,
		User:      viewer,
		CreatedAt: now,
	})
	return issue, nil
}

// Issue returns a single issue as seen by viewer.
func (s *Store) Issue(id, viewer string) (models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.issueIdx[id]
	if !ok {
		return models.Issue{}, ErrIssueNotFound
	}
	return rec.view(viewer), nil
}

// IssueFilter narrows Issues. Zero values match everything.
type IssueFilter struct {
	// Viewer is the user id hasUpvoted and Upvoted are evaluated for.
	Viewer string
	// ViewerName is matched against reportedBy when Mine is set.
	ViewerName string
	Status     models.IssueStatus
	Type       string
	Mine       bool
	Upvoted    bool
	// Search matches description, type and address, ignoring case.
	Search string
}

func (f IssueFilter) match(rec *issueRecord) bool {
	if f.Status != "" && rec.issue.Status != f.Status {
		return false
	}
	if f.Type != "" && rec.issue.Type != f.Type {
		return false
	}
	if f.Mine && (f.ViewerName == "" || rec.issue.ReportedBy != f.ViewerName) {
		return false
	}
	if f.Upvoted && !rec.votedBy(f.Viewer) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(rec.issue.Description), q) &&
			!strings.Contains(strings.ToLower(rec.issue.Type), q) &&
			!strings.Contains(strings.ToLower(rec.issue.Location.Address), q) {
			return false
		}
	}
	return true
}

// Issues lists matching issues in reporting order.
func (s *Store) Issues(filter IssueFilter) []models.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Issue, 0, len(s.issues))
	for _, rec := range s.issues {
		if filter.match(rec) {
			out = append(out, rec.view(filter.Viewer))
		}
	}
	return out
}

func (r *issueRecord) votedBy(viewer string) bool {
	if viewer == "" {
		return false
	}
	_, ok := r.voters[viewer]
	return ok
}

func (r *issueRecord) view(viewer string) models.Issue {
	issue := r.issue
	issue.HasUpvoted = r.votedBy(viewer)
	return issue
}
