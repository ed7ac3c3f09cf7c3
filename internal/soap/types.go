package soap

import (
	"encoding/xml"
	"time"

	"tracker/internal/models"
	"tracker/internal/services"
)

// Namespace is the target namespace of every operation element.
const Namespace = "urn:tracker"

type User struct {
	ID        uint      `xml:"id"`
	Username  string    `xml:"username"`
	CreatedAt time.Time `xml:"createdAt"`
}

type Label struct {
	ID          string    `xml:"id"`
	Name        string    `xml:"name"`
	Color       string    `xml:"color"`
	Description string    `xml:"description"`
	CreatedAt   time.Time `xml:"createdAt"`
	UpdatedAt   time.Time `xml:"updatedAt"`
}

type Issue struct {
	ID          string    `xml:"id"`
	Title       string    `xml:"title"`
	Description string    `xml:"description"`
	Status      string    `xml:"status"`
	Priority    string    `xml:"priority"`
	Assignee    *string   `xml:"assignee,omitempty"`
	Creator     string    `xml:"creator"`
	MilestoneID *string   `xml:"milestoneId,omitempty"`
	Labels      []Label   `xml:"labels>label"`
	CreatedAt   time.Time `xml:"createdAt"`
	UpdatedAt   time.Time `xml:"updatedAt"`
}

type Comment struct {
	ID        string    `xml:"id"`
	IssueID   string    `xml:"issueId"`
	Content   string    `xml:"content"`
	Author    string    `xml:"author"`
	CreatedAt time.Time `xml:"createdAt"`
	UpdatedAt time.Time `xml:"updatedAt"`
}

type Milestone struct {
	ID          string    `xml:"id"`
	Title       string    `xml:"title"`
	Description string    `xml:"description"`
	DueDate     *string   `xml:"dueDate,omitempty"`
	Status      string    `xml:"status"`
	CreatedAt   time.Time `xml:"createdAt"`
	UpdatedAt   time.Time `xml:"updatedAt"`
}

type Pagination struct {
	Page       int   `xml:"page"`
	PerPage    int   `xml:"perPage"`
	Total      int64 `xml:"total"`
	TotalPages int   `xml:"totalPages"`
}

// Response is the body of every <Op>Response element; only the fields the
// operation fills are written.
type Response struct {
	XMLName    xml.Name
	Success    bool        `xml:"success,omitempty"`
	Token      string      `xml:"token,omitempty"`
	ExpiresAt  *time.Time  `xml:"expiresAt,omitempty"`
	User       *User       `xml:"user,omitempty"`
	Issue      *Issue      `xml:"issue,omitempty"`
	Issues     []Issue     `xml:"issues>issue"`
	Label      *Label      `xml:"label,omitempty"`
	Labels     []Label     `xml:"labels>label"`
	Comment    *Comment    `xml:"comment,omitempty"`
	Comments   []Comment   `xml:"comments>comment"`
	Milestone  *Milestone  `xml:"milestone,omitempty"`
	Milestones []Milestone `xml:"milestones>milestone"`
	Pagination *Pagination `xml:"pagination,omitempty"`
}

func toUser(u *models.User) *User {
	return &User{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
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
	labels := make([]Label, len(i.Labels))
	for n, l := range i.Labels {
		labels[n] = toLabel(l)
	}
	return Issue{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Status:      i.Status,
		Priority:    i.Priority,
		Assignee:    i.Assignee,
		Creator:     i.Creator,
		MilestoneID: i.MilestoneID,
		Labels:      labels,
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

func toPagination(p services.Pagination) *Pagination {
	return &Pagination{Page: p.Page, PerPage: p.PerPage, Total: p.Total, TotalPages: p.TotalPages}
}

func mapSlice[M, V any](items []M, fn func(M) V) []V {
	out := make([]V, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}
