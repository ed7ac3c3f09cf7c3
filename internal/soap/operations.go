package soap

import (
	"context"
	"encoding/xml"
	"time"

	"tracker/internal/services"
	"tracker/internal/session"
)

// Authenticated is embedded by requests that need a live session.
type Authenticated struct {
	SessionID string `xml:"sessionId"`
}

func (a *Authenticated) sessionToken() string { return a.SessionID }

type tokenCarrier interface {
	sessionToken() string
}

type PageParams struct {
	Page    int `xml:"page"`
	PerPage int `xml:"perPage"`
}

func (p PageParams) request() services.PageRequest {
	return services.NewPageRequest(p.Page, p.PerPage)
}

// LabelIDs wraps <labels><labelId>..</labelId></labels> so that an update
// can tell an absent element from an empty one.
type LabelIDs struct {
	IDs []string `xml:"labelId"`
}

type CredentialsRequest struct {
	Username string `xml:"username"`
	Password string `xml:"password"`
}

type SessionRequest struct {
	Authenticated
}

type IDRequest struct {
	Authenticated
	ID string `xml:"id"`
}

type CreateIssueRequest struct {
	Authenticated
	Title       string    `xml:"title"`
	Description string    `xml:"description"`
	Status      string    `xml:"status"`
	Priority    string    `xml:"priority"`
	Assignee    *string   `xml:"assignee"`
	Creator     string    `xml:"creator"`
	MilestoneID *string   `xml:"milestoneId"`
	Labels      *LabelIDs `xml:"labels"`
}

type ListIssuesRequest struct {
	Authenticated
	PageParams
	Status   string `xml:"status"`
	Priority string `xml:"priority"`
}

type UpdateIssueRequest struct {
	Authenticated
	ID          string    `xml:"id"`
	Title       *string   `xml:"title"`
	Description *string   `xml:"description"`
	Status      *string   `xml:"status"`
	Priority    *string   `xml:"priority"`
	Assignee    *string   `xml:"assignee"`
	MilestoneID *string   `xml:"milestoneId"`
	Labels      *LabelIDs `xml:"labels"`
}

type CreateLabelRequest struct {
	Authenticated
	Name        string `xml:"name"`
	Color       string `xml:"color"`
	Description string `xml:"description"`
}

type ListLabelsRequest struct {
	Authenticated
	PageParams
}

type UpdateLabelRequest struct {
	Authenticated
	ID          string  `xml:"id"`
	Name        *string `xml:"name"`
	Color       *string `xml:"color"`
	Description *string `xml:"description"`
}

type CreateCommentRequest struct {
	Authenticated
	IssueID string `xml:"issueId"`
	Content string `xml:"content"`
	Author  string `xml:"author"`
}

type ListCommentsRequest struct {
	Authenticated
	PageParams
	IssueID string `xml:"issueId"`
}

type UpdateCommentRequest struct {
	Authenticated
	ID      string  `xml:"id"`
	Content *string `xml:"content"`
}

type CreateMilestoneRequest struct {
	Authenticated
	Title       string  `xml:"title"`
	Description string  `xml:"description"`
	DueDate     *string `xml:"dueDate"`
	Status      string  `xml:"status"`
}

type ListMilestonesRequest struct {
	Authenticated
	PageParams
	Status string `xml:"status"`
}

type UpdateMilestoneRequest struct {
	Authenticated
	ID          string  `xml:"id"`
	Title       *string `xml:"title"`
	Description *string `xml:"description"`
	DueDate     *string `xml:"dueDate"`
	Status      *string `xml:"status"`
}

type operation struct {
	auth   bool
	decode func(dec *xml.Decoder, start *xml.StartElement) (any, error)
	run    func(ctx context.Context, req any) (*Response, error)
}

// op binds a request type to its implementation.
func op[Req any](auth bool, fn func(ctx context.Context, req *Req) (*Response, error)) operation {
	return operation{
		auth: auth,
		decode: func(dec *xml.Decoder, start *xml.StartElement) (any, error) {
			req := new(Req)
			if err := dec.DecodeElement(req, start); err != nil {
				return nil, err
			}
			return req, nil
		},
		run: func(ctx context.Context, req any) (*Response, error) {
			return fn(ctx, req.(*Req))
		},
	}
}

func (h *Handler) buildOperations() map[string]operation {
	svc := h.svc
	return map[string]operation{
		"Register": op(false, func(ctx context.Context, req *CredentialsRequest) (*Response, error) {
			user, err := svc.Auth.Register(ctx, req.Username, req.Password)
			if err != nil {
				return nil, err
			}
			return &Response{User: toUser(user)}, nil
		}),
		"Login": op(false, func(ctx context.Context, req *CredentialsRequest) (*Response, error) {
			user, err := svc.Auth.Verify(ctx, req.Username, req.Password)
			if err != nil {
				return nil, err
			}
			s, err := h.sessions.Create(ctx, session.Principal{UserID: user.ID, Username: user.Username})
			if err != nil {
				return nil, err
			}
			expires := s.ExpiresAt.UTC().Truncate(time.Second)
			return &Response{Token: s.Token, ExpiresAt: &expires, User: toUser(user)}, nil
		}),
		"Logout": op(false, func(ctx context.Context, req *SessionRequest) (*Response, error) {
			if err := h.sessions.Destroy(ctx, req.SessionID); err != nil {
				return nil, err
			}
			return &Response{Success: true}, nil
		}),
		"GetProfile": op(true, func(ctx context.Context, _ *SessionRequest) (*Response, error) {
			actor, _ := services.ActorFrom(ctx)
			user, err := svc.Auth.Profile(ctx, actor.UserID)
			if err != nil {
				return nil, err
			}
			return &Response{User: toUser(user)}, nil
		}),

		"CreateIssue": op(true, func(ctx context.Context, req *CreateIssueRequest) (*Response, error) {
			in := services.CreateIssueInput{
				Title:       req.Title,
				Description: req.Description,
				Status:      req.Status,
				Priority:    req.Priority,
				Assignee:    req.Assignee,
				Creator:     req.Creator,
				MilestoneID: req.MilestoneID,
			}
			if req.Labels != nil {
				in.Labels = req.Labels.IDs
			}
			issue, err := svc.Issues.Create(ctx, in)
			if err != nil {
				return nil, err
			}
			v := toIssue(*issue)
			return &Response{Issue: &v}, nil
		}),
		"GetIssue": op(true, func(ctx context.Context, req *IDRequest) (*Response, error) {
			issue, err := svc.Issues.Get(ctx, req.ID)
			if err != nil {
				return nil, err
			}
			v := toIssue(*issue)
			return &Response{Issue: &v}, nil
		}),
		"ListIssues": op(true, func(ctx context.Context, req *ListIssuesRequest) (*Response, error) {
			filter := services.IssueFilter{Status: req.Status, Priority: req.Priority}
			issues, pg, err := svc.Issues.List(ctx, filter, req.request())
			if err != nil {
				return nil, err
			}
			return &Response{Issues: mapSlice(issues, toIssue), Pagination: toPagination(pg)}, nil
		}),
		"UpdateIssue": op(true, func(ctx context.Context, req *UpdateIssueRequest) (*Response, error) {
			in := services.UpdateIssueInput{
				Title:       req.Title,
				Description: req.Description,
				Status:      req.Status,
				Priority:    req.Priority,
				Assignee:    req.Assignee,
				MilestoneID: req.MilestoneID,
			}
			if req.Labels != nil {
				ids := req.Labels.IDs
				in.Labels = &ids
			}
			issue, err := svc.Issues.Update(ctx, req.ID, in)
			if err != nil {
				return nil, err
			}
			v := toIssue(*issue)
			return &Response{Issue: &v}, nil
		}),
		"DeleteIssue": op(true, func(ctx context.Context, req *IDRequest) (*Response, error) {
			if err := svc.Issues.Delete(ctx, req.ID); err != nil {
				return nil, err
			}
			return &Response{Success: true}, nil
		}),

		"CreateLabel": op(true, func(ctx context.Context, req *CreateLabelRequest) (*Response, error) {
			label, err := svc.Labels.Create(ctx, services.CreateLabelInput{
				Name:        req.Name,
				Color:       req.Color,
				Description: req.Description,
			})
			if err != nil {
				return nil, err
			}
			v := toLabel(*label)
			return &Response{Label: &v}, nil
		}),
		"GetLabel": op(true, func(ctx context.Context, req *IDRequest) (*Response, error) {
			label, err := svc.Labels.Get(ctx, req.ID)
			if err != nil {
				return nil, err
			}
			v := toLabel(*label)
			return &Response{Label: &v}, nil
		}),
		"ListLabels": op(true, func(ctx context.Context, req *ListLabelsRequest) (*Response, error) {
			labels, pg, err := svc.Labels.List(ctx, req.request())
			if err != nil {
				return nil, err
			}
			return &Response{Labels: mapSlice(labels, toLabel), Pagination: toPagination(pg)}, nil
		}),
		"UpdateLabel": op(true, func(ctx context.Context, req *UpdateLabelRequest) (*Response, error) {
			label, err := svc.Labels.Update(ctx, req.ID, services.UpdateLabelInput{
				Name:        req.Name,
				Color:       req.Color,
				Description: req.Description,
			})
			if err != nil {
				return nil, err
			}
			v := toLabel(*label)
			return &Response{Label: &v}, nil
		}),
		"DeleteLabel": op(true, func(ctx context.Context, req *IDRequest) (*Response, error) {
			if err := svc.Labels.Delete(ctx, req.ID); err != nil {
				return nil, err
			}
			return &Response{Success: true}, nil
		}),

		"CreateComment": op(true, func(ctx context.Context, req *CreateCommentRequest) (*Response, error) {
			comment, err := svc.Comments.Create(ctx, services.CreateCommentInput{
				IssueID: req.IssueID,
				Content: req.Content,
				Author:  req.Author,
			})
			if err != nil {
				return nil, err
			}
			v := toComment(*comment)
			return &Response{Comment: &v}, nil
		}),
		"GetComment": op(true, func(ctx context.Context, req *IDRequest) (*Response, error) {
			comment, err := svc.Comments.Get(ctx, req.ID)
			if err != nil {
				return nil, err
			}
			v := toComment(*comment)
			return &Response{Comment: &v}, nil
		}),
		"ListComments": op(true, func(ctx context.Context, req *ListCommentsRequest) (*Response, error) {
			comments, pg, err := svc.Comments.List(ctx, req.IssueID, req.request())
			if err != nil {
				return nil, err
			}
			return &Response{Comments: mapSlice(comments, toComment), Pagination: toPagination(pg)}, nil
		}),
		"UpdateComment": op(true, func(ctx context.Context, req *UpdateCommentRequest) (*Response, error) {
			comment, err := svc.Comments.Update(ctx, req.ID, services.UpdateCommentInput{Content: req.Content})
			if err != nil {
				return nil, err
			}
			v := toComment(*comment)
			return &Response{Comment: &v}, nil
		}),
		"DeleteComment": op(true, func(ctx context.Context, req *IDRequest) (*Response, error) {
			if err := svc.Comments.Delete(ctx, req.ID); err != nil {
				return nil, err
			}
			return &Response{Success: true}, nil
		}),

		"CreateMilestone": op(true, func(ctx context.Context, req *CreateMilestoneRequest) (*Response, error) {
			milestone, err := svc.Milestones.Create(ctx, services.CreateMilestoneInput{
				Title:       req.Title,
				Description: req.Description,
				DueDate:     req.DueDate,
				Status:      req.Status,
			})
			if err != nil {
				return nil, err
			}
			v := toMilestone(*milestone)
			return &Response{Milestone: &v}, nil
		}),
		"GetMilestone": op(true, func(ctx context.Context, req *IDRequest) (*Response, error) {
			milestone, err := svc.Milestones.Get(ctx, req.ID)
			if err != nil {
				return nil, err
			}
			v := toMilestone(*milestone)
			return &Response{Milestone: &v}, nil
		}),
		"ListMilestones": op(true, func(ctx context.Context, req *ListMilestonesRequest) (*Response, error) {
			filter := services.MilestoneFilter{Status: req.Status}
			milestones, pg, err := svc.Milestones.List(ctx, filter, req.request())
			if err != nil {
				return nil, err
			}
			return &Response{Milestones: mapSlice(milestones, toMilestone), Pagination: toPagination(pg)}, nil
		}),
		"UpdateMilestone": op(true, func(ctx context.Context, req *UpdateMilestoneRequest) (*Response, error) {
			milestone, err := svc.Milestones.Update(ctx, req.ID, services.UpdateMilestoneInput{
				Title:       req.Title,
				Description: req.Description,
				DueDate:     req.DueDate,
				Status:      req.Status,
			})
			if err != nil {
				return nil, err
			}
			v := toMilestone(*milestone)
			return &Response{Milestone: &v}, nil
		}),
		"DeleteMilestone": op(true, func(ctx context.Context, req *IDRequest) (*Response, error) {
			if err := svc.Milestones.Delete(ctx, req.ID); err != nil {
				return nil, err
			}
			return &Response{Success: true}, nil
		}),
	}
}
