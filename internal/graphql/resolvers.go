package graphql

import (
	"context"
	"encoding/json"
	"log/slog"

	"tracker/internal/services"
	"tracker/internal/session"

	gql "github.com/graphql-go/graphql"
)

type Resolver struct {
	svc      *services.Services
	sessions *session.Registry
	logger   *slog.Logger
}

func NewResolver(svc *services.Services, sessions *session.Registry, logger *slog.Logger) *Resolver {
	return &Resolver{svc: svc, sessions: sessions, logger: logger}
}

type requestAuth struct {
	token     string
	principal session.Principal
	ok        bool
}

type authKey struct{}

func withAuth(ctx context.Context, a requestAuth) context.Context {
	return context.WithValue(ctx, authKey{}, a)
}

func authFrom(ctx context.Context) requestAuth {
	a, _ := ctx.Value(authKey{}).(requestAuth)
	return a
}

// page is the shape of every list result.
type page[T any] struct {
	Items      []T                 `json:"items"`
	Pagination services.Pagination `json:"pagination"`
}

func newPage[T any](items []T, pg services.Pagination) page[T] {
	if items == nil {
		items = []T{}
	}
	return page[T]{Items: items, Pagination: pg}
}

func (r *Resolver) fail(err error) error {
	e := services.AsError(err)
	if e.Internal() {
		r.logger.Error("GraphQL resolver failed", "kind", e.Kind, "error", e.Err)
	}
	return &Error{Code: CodeFor(e.Kind), Message: e.Message}
}

func (r *Resolver) public(fn gql.FieldResolveFn) gql.FieldResolveFn {
	return func(p gql.ResolveParams) (interface{}, error) {
		res, err := fn(p)
		if err != nil {
			return nil, r.fail(err)
		}
		return res, nil
	}
}

func (r *Resolver) authed(fn gql.FieldResolveFn) gql.FieldResolveFn {
	return r.public(func(p gql.ResolveParams) (interface{}, error) {
		if !authFrom(p.Context).ok {
			return nil, services.ErrUnauthorized
		}
		return fn(p)
	})
}

// decodeArg copies a GraphQL input object into a service input through its
// JSON field names.
func decodeArg(p gql.ResolveParams, name string, dst any) error {
	raw, err := json.Marshal(p.Args[name])
	if err != nil {
		return &services.Error{Kind: services.KindInvalidInput, Message: "invalid " + name}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &services.Error{Kind: services.KindInvalidInput, Message: "invalid " + name}
	}
	return nil
}

func stringArg(p gql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func pageArg(p gql.ResolveParams) services.PageRequest {
	page, _ := p.Args["page"].(int)
	perPage, _ := p.Args["per_page"].(int)
	return services.NewPageRequest(page, perPage)
}

func (r *Resolver) register(p gql.ResolveParams) (interface{}, error) {
	return r.svc.Auth.Register(p.Context, stringArg(p, "username"), stringArg(p, "password"))
}

func (r *Resolver) login(p gql.ResolveParams) (interface{}, error) {
	user, err := r.svc.Auth.Verify(p.Context, stringArg(p, "username"), stringArg(p, "password"))
	if err != nil {
		return nil, err
	}
	s, err := r.sessions.Create(p.Context, session.Principal{UserID: user.ID, Username: user.Username})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"token":      s.Token,
		"expires_at": s.ExpiresAt,
		"user":       user,
	}, nil
}

func (r *Resolver) logout(p gql.ResolveParams) (interface{}, error) {
	if err := r.sessions.Destroy(p.Context, authFrom(p.Context).token); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Resolver) me(p gql.ResolveParams) (interface{}, error) {
	return r.svc.Auth.Profile(p.Context, authFrom(p.Context).principal.UserID)
}

func (r *Resolver) issue(p gql.ResolveParams) (interface{}, error) {
	return r.svc.Issues.Get(p.Context, stringArg(p, "id"))
}

func (r *Resolver) issues(p gql.ResolveParams) (interface{}, error) {
	filter := services.IssueFilter{Status: stringArg(p, "status"), Priority: stringArg(p, "priority")}
	items, pg, err := r.svc.Issues.List(p.Context, filter, pageArg(p))
	if err != nil {
		return nil, err
	}
	return newPage(items, pg), nil
}

func (r *Resolver) createIssue(p gql.ResolveParams) (interface{}, error) {
	var in services.CreateIssueInput
	if err := decodeArg(p, "input", &in); err != nil {
		return nil, err
	}
	return r.svc.Issues.Create(p.Context, in)
}

func (r *Resolver) updateIssue(p gql.ResolveParams) (interface{}, error) {
	var in services.UpdateIssueInput
	if err := decodeArg(p, "input", &in); err != nil {
		return nil, err
	}
	return r.svc.Issues.Update(p.Context, stringArg(p, "id"), in)
}

func (r *Resolver) deleteIssue(p gql.ResolveParams) (interface{}, error) {
	if err := r.svc.Issues.Delete(p.Context, stringArg(p, "id")); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Resolver) label(p gql.ResolveParams) (interface{}, error) {
	return r.svc.Labels.Get(p.Context, stringArg(p, "id"))
}

func (r *Resolver) labels(p gql.ResolveParams) (interface{}, error) {
	items, pg, err := r.svc.Labels.List(p.Context, pageArg(p))
	if err != nil {
		return nil, err
	}
	return newPage(items, pg), nil
}

func (r *Resolver) createLabel(p gql.ResolveParams) (interface{}, error) {
	var in services.CreateLabelInput
	if err := decodeArg(p, "input", &in); err != nil {
		return nil, err
	}
	return r.svc.Labels.Create(p.Context, in)
}

func (r *Resolver) updateLabel(p gql.ResolveParams) (interface{}, error) {
	var in services.UpdateLabelInput
	if err := decodeArg(p, "input", &in); err != nil {
		return nil, err
	}
	return r.svc.Labels.Update(p.Context, stringArg(p, "id"), in)
}

func (r *Resolver) deleteLabel(p gql.ResolveParams) (interface{}, error) {
	if err := r.svc.Labels.Delete(p.Context, stringArg(p, "id")); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Resolver) comment(p gql.ResolveParams) (interface{}, error) {
	return r.svc.Comments.Get(p.Context, stringArg(p, "id"))
}

func (r *Resolver) comments(p gql.ResolveParams) (interface{}, error) {
	items, pg, err := r.svc.Comments.List(p.Context, stringArg(p, "issue_id"), pageArg(p))
	if err != nil {
		return nil, err
	}
	return newPage(items, pg), nil
}

func (r *Resolver) createComment(p gql.ResolveParams) (interface{}, error) {
	var in services.CreateCommentInput
	if err := decodeArg(p, "input", &in); err != nil {
		return nil, err
	}
	return r.svc.Comments.Create(p.Context, in)
}

func (r *Resolver) updateComment(p gql.ResolveParams) (interface{}, error) {
	var in services.UpdateCommentInput
	if err := decodeArg(p, "input", &in); err != nil {
		return nil, err
	}
	return r.svc.Comments.Update(p.Context, stringArg(p, "id"), in)
}

func (r *Resolver) deleteComment(p gql.ResolveParams) (interface{}, error) {
	if err := r.svc.Comments.Delete(p.Context, stringArg(p, "id")); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Resolver) milestone(p gql.ResolveParams) (interface{}, error) {
	return r.svc.Milestones.Get(p.Context, stringArg(p, "id"))
}

func (r *Resolver) milestones(p gql.ResolveParams) (interface{}, error) {
	filter := services.MilestoneFilter{Status: stringArg(p, "status")}
	items, pg, err := r.svc.Milestones.List(p.Context, filter, pageArg(p))
	if err != nil {
		return nil, err
	}
	return newPage(items, pg), nil
}

func (r *Resolver) createMilestone(p gql.ResolveParams) (interface{}, error) {
	var in services.CreateMilestoneInput
	if err := decodeArg(p, "input", &in); err != nil {
		return nil, err
	}
	return r.svc.Milestones.Create(p.Context, in)
}

func (r *Resolver) updateMilestone(p gql.ResolveParams) (interface{}, error) {
	var in services.UpdateMilestoneInput
	if err := decodeArg(p, "input", &in); err != nil {
		return nil, err
	}
	return r.svc.Milestones.Update(p.Context, stringArg(p, "id"), in)
}

func (r *Resolver) deleteMilestone(p gql.ResolveParams) (interface{}, error) {
	if err := r.svc.Milestones.Delete(p.Context, stringArg(p, "id")); err != nil {
		return nil, err
	}
	return true, nil
}
