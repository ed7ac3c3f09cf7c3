package grpcapi

import (
	"time"

	"tracker/internal/models"
	"tracker/internal/services"
)

type Empty struct{}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginReply struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type IDRequest struct {
	ID string `json:"id"`
}

type PageRequest struct {
	Page    int32 `json:"page"`
	PerPage int32 `json:"per_page"`
}

func (p PageRequest) request() services.PageRequest {
	return services.NewPageRequest(int(p.Page), int(p.PerPage))
}

type Pagination struct {
	Page       int32 `json:"page"`
	PerPage    int32 `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int32 `json:"total_pages"`
}

type Label struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Issue struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      IssueStatus `json:"status"`
	Priority    Priority    `json:"priority"`
	Assignee    *string     `json:"assignee,omitempty"`
	Creator     string      `json:"creator"`
	MilestoneID *string     `json:"milestone_id,omitempty"`
	Labels      []Label     `json:"labels"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Milestone struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     *string   `json:"due_date,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateIssueRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      IssueStatus `json:"status"`
	Priority    Priority    `json:"priority"`
	Assignee    *string     `json:"assignee,omitempty"`
	Creator     string      `json:"creator"`
	MilestoneID *string     `json:"milestone_id,omitempty"`
	LabelIDs    []string    `json:"label_ids"`
}

// UpdateIssueRequest only changes the fields that are set.
type UpdateIssueRequest struct {
	ID          string       `json:"id"`
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Status      *IssueStatus `json:"status,omitempty"`
	Priority    *Priority    `json:"priority,omitempty"`
	Assignee    *string      `json:"assignee,omitempty"`
	MilestoneID *string      `json:"milestone_id,omitempty"`
	LabelIDs    *[]string    `json:"label_ids,omitempty"`
}

type ListIssuesRequest struct {
	PageRequest
	Status   IssueStatus `json:"status"`
	Priority Priority    `json:"priority"`
}

type ListIssuesReply struct {
	Issues     []Issue    `json:"issues"`
	Pagination Pagination `json:"pagination"`
}

type CreateLabelRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type UpdateLabelRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ListLabelsReply struct {
	Labels     []Label    `json:"labels"`
	Pagination Pagination `json:"pagination"`
}

type CreateCommentRequest struct {
	IssueID string `json:"issue_id"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

type UpdateCommentRequest struct {
	ID      string  `json:"id"`
	Content *string `json:"content,omitempty"`
}

type ListCommentsRequest struct {
	PageRequest
	IssueID string `json:"issue_id"`
}

type ListCommentsReply struct {
	Comments   []Comment  `json:"comments"`
	Pagination Pagination `json:"pagination"`
}

type CreateMilestoneRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date,omitempty"`
	Status      string  `json:"status"`
}

type UpdateMilestoneRequest struct {
	ID          string  `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type ListMilestonesRequest struct {
	PageRequest
	Status string `json:"status"`
}

type ListMilestonesReply struct {
	Milestones []Milestone `json:"milestones"`
	Pagination Pagination  `json:"pagination"`
}

func toUser(u *models.User) User {
	return User{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

func toLabel(l models.Label) Label {
	return Label{
		ID:          l.ID,
		Name:        l.Name,
		Color:       l.Color,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toIssue(i models.Issue) Issue {
	return Issue{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Status:      statusOf(i.Status),
		Priority:    priorityOf(i.Priority),
		Assignee:    i.Assignee,
		Creator:     i.Creator,
		MilestoneID: i.MilestoneID,
		Labels:      mapSlice(i.Labels, toLabel),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toComment(c models.Comment) Comment {
	return Comment{
		ID:        c.ID,
		IssueID:   c.IssueID,
		Content:   c.Content,
		Author:    c.Author,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toMilestone(m models.Milestone) Milestone {
	return Milestone{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		DueDate:     m.DueDate,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toPagination(p services.Pagination) Pagination {
	return Pagination{
		Page:       int32(p.Page),
		PerPage:    int32(p.PerPage),
		Total:      p.Total,
		TotalPages: int32(p.TotalPages),
	}
}

func mapSlice[M, V any](items []M, fn func(M) V) []V {
	out := make([]V, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}
