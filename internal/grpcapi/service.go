// Package grpcapi serves the tracker operations over gRPC. Messages travel
// as JSON; the service descriptor is declared by hand.
package grpcapi

import (
	"context"
	"log/slog"

	"tracker/internal/services"
	"tracker/internal/session"

	"google.golang.org/grpc"
)

const ServiceName = "tracker.v1.TrackerService"

type TrackerServer interface {
	Register(context.Context, *Credentials) (*User, error)
	Login(context.Context, *Credentials) (*LoginReply, error)
	Logout(context.Context, *Empty) (*Empty, error)
	GetProfile(context.Context, *Empty) (*User, error)

	CreateIssue(context.Context, *CreateIssueRequest) (*Issue, error)
	GetIssue(context.Context, *IDRequest) (*Issue, error)
	ListIssues(context.Context, *ListIssuesRequest) (*ListIssuesReply, error)
	UpdateIssue(context.Context, *UpdateIssueRequest) (*Issue, error)
	DeleteIssue(context.Context, *IDRequest) (*Empty, error)

	CreateLabel(context.Context, *CreateLabelRequest) (*Label, error)
	GetLabel(context.Context, *IDRequest) (*Label, error)
	ListLabels(context.Context, *PageRequest) (*ListLabelsReply, error)
	UpdateLabel(context.Context, *UpdateLabelRequest) (*Label, error)
	DeleteLabel(context.Context, *IDRequest) (*Empty, error)

	CreateComment(context.Context, *CreateCommentRequest) (*Comment, error)
	GetComment(context.Context, *IDRequest) (*Comment, error)
	ListComments(context.Context, *ListCommentsRequest) (*ListCommentsReply, error)
	UpdateComment(context.Context, *UpdateCommentRequest) (*Comment, error)
	DeleteComment(context.Context, *IDRequest) (*Empty, error)

	CreateMilestone(context.Context, *CreateMilestoneRequest) (*Milestone, error)
	GetMilestone(context.Context, *IDRequest) (*Milestone, error)
	ListMilestones(context.Context, *ListMilestonesRequest) (*ListMilestonesReply, error)
	UpdateMilestone(context.Context, *UpdateMilestoneRequest) (*Milestone, error)
	DeleteMilestone(context.Context, *IDRequest) (*Empty, error)
}

func unary[Req, Resp any](name string, fn func(TrackerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(TrackerServer)
			if interceptor == nil {
				return fn(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(s, ctx, req.(*Req))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrackerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", TrackerServer.Register),
		unary("Login", TrackerServer.Login),
		unary("Logout", TrackerServer.Logout),
		unary("GetProfile", TrackerServer.GetProfile),
		unary("CreateIssue", TrackerServer.CreateIssue),
		unary("GetIssue", TrackerServer.GetIssue),
		unary("ListIssues", TrackerServer.ListIssues),
		unary("UpdateIssue", TrackerServer.UpdateIssue),
		unary("DeleteIssue", TrackerServer.DeleteIssue),
		unary("CreateLabel", TrackerServer.CreateLabel),
		unary("GetLabel", TrackerServer.GetLabel),
		unary("ListLabels", TrackerServer.ListLabels),
		unary("UpdateLabel", TrackerServer.UpdateLabel),
		unary("DeleteLabel", TrackerServer.DeleteLabel),
		unary("CreateComment", TrackerServer.CreateComment),
		unary("GetComment", TrackerServer.GetComment),
		unary("ListComments", TrackerServer.ListComments),
		unary("UpdateComment", TrackerServer.UpdateComment),
		unary("DeleteComment", TrackerServer.DeleteComment),
		unary("CreateMilestone", TrackerServer.CreateMilestone),
		unary("GetMilestone", TrackerServer.GetMilestone),
		unary("ListMilestones", TrackerServer.ListMilestones),
		unary("UpdateMilestone", TrackerServer.UpdateMilestone),
		unary("DeleteMilestone", TrackerServer.DeleteMilestone),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tracker/v1/tracker.proto",
}

// publicMethods skip the session check.
var publicMethods = map[string]bool{
	"/" + ServiceName + "/Register": true,
	"/" + ServiceName + "/Login":    true,
	"/" + ServiceName + "/Logout":   true,
}

// NewServer returns a gRPC server with the tracker service registered.
func NewServer(svc *services.Services, sessions *session.Registry, logger *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ForceServerCodec(Codec{}),
		grpc.ChainUnaryInterceptor(
			loggingInterceptor(logger),
			errorInterceptor(logger),
			authInterceptor(sessions, logger),
		),
	}, opts...)

	s := grpc.NewServer(opts...)
	s.RegisterService(&ServiceDesc, &Server{svc: svc, sessions: sessions})
	return s
}

type Server struct {
	svc      *services.Services
	sessions *session.Registry
}

var _ TrackerServer = (*Server)(nil)

func (s *Server) Register(ctx context.Context, in *Credentials) (*User, error) {
	user, err := s.svc.Auth.Register(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}
	u := toUser(user)
	return &u, nil
}

func (s *Server) Login(ctx context.Context, in *Credentials) (*LoginReply, error) {
	user, err := s.svc.Auth.Verify(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Create(ctx, session.Principal{UserID: user.ID, Username: user.Username})
	if err != nil {
		return nil, err
	}
	return &LoginReply{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: toUser(user)}, nil
}

func (s *Server) Logout(ctx context.Context, _ *Empty) (*Empty, error) {
	if err := s.sessions.Destroy(ctx, bearerToken(ctx)); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) GetProfile(ctx context.Context, _ *Empty) (*User, error) {
	actor, _ := services.ActorFrom(ctx)
	user, err := s.svc.Auth.Profile(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	u := toUser(user)
	return &u, nil
}

func (s *Server) CreateIssue(ctx context.Context, in *CreateIssueRequest) (*Issue, error) {
	status, err := statusValue(in.Status)
	if err != nil {
		return nil, err
	}
	priority, err := priorityValue(in.Priority)
	if err != nil {
		return nil, err
	}
	issue, err := s.svc.Issues.Create(ctx, services.CreateIssueInput{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		Assignee:    in.Assignee,
		Creator:     in.Creator,
		MilestoneID: in.MilestoneID,
		Labels:      in.LabelIDs,
	})
	if err != nil {
		return nil, err
	}
	out := toIssue(*issue)
	return &out, nil
}

func (s *Server) GetIssue(ctx context.Context, in *IDRequest) (*Issue, error) {
	issue, err := s.svc.Issues.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	out := toIssue(*issue)
	return &out, nil
}

func (s *Server) ListIssues(ctx context.Context, in *ListIssuesRequest) (*ListIssuesReply, error) {
	status, err := statusValue(in.Status)
	if err != nil {
		return nil, err
	}
	priority, err := priorityValue(in.Priority)
	if err != nil {
		return nil, err
	}
	issues, pg, err := s.svc.Issues.List(ctx, services.IssueFilter{Status: status, Priority: priority}, in.request())
	if err != nil {
		return nil, err
	}
	return &ListIssuesReply{Issues: mapSlice(issues, toIssue), Pagination: toPagination(pg)}, nil
}

func (s *Server) UpdateIssue(ctx context.Context, in *UpdateIssueRequest) (*Issue, error) {
	upd := services.UpdateIssueInput{
		Title:       in.Title,
		Description: in.Description,
		Assignee:    in.Assignee,
		MilestoneID: in.MilestoneID,
		Labels:      in.LabelIDs,
	}
	if in.Status != nil {
		status, err := statusValue(*in.Status)
		if err != nil {
			return nil, err
		}
		upd.Status = &status
	}
	if in.Priority != nil {
		priority, err := priorityValue(*in.Priority)
		if err != nil {
			return nil, err
		}
		upd.Priority = &priority
	}
	issue, err := s.svc.Issues.Update(ctx, in.ID, upd)
	if err != nil {
		return nil, err
	}
	out := toIssue(*issue)
	return &out, nil
}

func (s *Server) DeleteIssue(ctx context.Context, in *IDRequest) (*Empty, error) {
	if err := s.svc.Issues.Delete(ctx, in.ID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) CreateLabel(ctx context.Context, in *CreateLabelRequest) (*Label, error) {
	label, err := s.svc.Labels.Create(ctx, services.CreateLabelInput{
		Name:        in.Name,
		Color:       in.Color,
		Description: in.Description,
	})
	if err != nil {
		return nil, err
	}
	out := toLabel(*label)
	return &out, nil
}

func (s *Server) GetLabel(ctx context.Context, in *IDRequest) (*Label, error) {
	label, err := s.svc.Labels.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	out := toLabel(*label)
	return &out, nil
}

func (s *Server) ListLabels(ctx context.Context, in *PageRequest) (*ListLabelsReply, error) {
	labels, pg, err := s.svc.Labels.List(ctx, in.request())
	if err != nil {
		return nil, err
	}
	return &ListLabelsReply{Labels: mapSlice(labels, toLabel), Pagination: toPagination(pg)}, nil
}

func (s *Server) UpdateLabel(ctx context.Context, in *UpdateLabelRequest) (*Label, error) {
	label, err := s.svc.Labels.Update(ctx, in.ID, services.UpdateLabelInput{
		Name:        in.Name,
		Color:       in.Color,
		Description: in.Description,
	})
	if err != nil {
		return nil, err
	}
	out := toLabel(*label)
	return &out, nil
}

func (s *Server) DeleteLabel(ctx context.Context, in *IDRequest) (*Empty, error) {
	if err := s.svc.Labels.Delete(ctx, in.ID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) CreateComment(ctx context.Context, in *CreateCommentRequest) (*Comment, error) {
	comment, err := s.svc.Comments.Create(ctx, services.CreateCommentInput{
		IssueID: in.IssueID,
		Content: in.Content,
		Author:  in.Author,
	})
	if err != nil {
		return nil, err
	}
	out := toComment(*comment)
	return &out, nil
}

func (s *Server) GetComment(ctx context.Context, in *IDRequest) (*Comment, error) {
	comment, err := s.svc.Comments.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	out := toComment(*comment)
	return &out, nil
}

func (s *Server) ListComments(ctx context.Context, in *ListCommentsRequest) (*ListCommentsReply, error) {
	comments, pg, err := s.svc.Comments.List(ctx, in.IssueID, in.request())
	if err != nil {
		return nil, err
	}
	return &ListCommentsReply{Comments: mapSlice(comments, toComment), Pagination: toPagination(pg)}, nil
}

func (s *Server) UpdateComment(ctx context.Context, in *UpdateCommentRequest) (*Comment, error) {
	comment, err := s.svc.Comments.Update(ctx, in.ID, services.UpdateCommentInput{Content: in.Content})
	if err != nil {
		return nil, err
	}
	out := toComment(*comment)
	return &out, nil
}

func (s *Server) DeleteComment(ctx context.Context, in *IDRequest) (*Empty, error) {
	if err := s.svc.Comments.Delete(ctx, in.ID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) CreateMilestone(ctx context.Context, in *CreateMilestoneRequest) (*Milestone, error) {
	milestone, err := s.svc.Milestones.Create(ctx, services.CreateMilestoneInput{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
	})
	if err != nil {
		return nil, err
	}
	out := toMilestone(*milestone)
	return &out, nil
}

func (s *Server) GetMilestone(ctx context.Context, in *IDRequest) (*Milestone, error) {
	milestone, err := s.svc.Milestones.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	out := toMilestone(*milestone)
	return &out, nil
}

func (s *Server) ListMilestones(ctx context.Context, in *ListMilestonesRequest) (*ListMilestonesReply, error) {
	milestones, pg, err := s.svc.Milestones.List(ctx, services.MilestoneFilter{Status: in.Status}, in.request())
	if err != nil {
		return nil, err
	}
	return &ListMilestonesReply{Milestones: mapSlice(milestones, toMilestone), Pagination: toPagination(pg)}, nil
}

func (s *Server) UpdateMilestone(ctx context.Context, in *UpdateMilestoneRequest) (*Milestone, error) {
	milestone, err := s.svc.Milestones.Update(ctx, in.ID, services.UpdateMilestoneInput{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
	})
	if err != nil {
		return nil, err
	}
	out := toMilestone(*milestone)
	return &out, nil
}

func (s *Server) DeleteMilestone(ctx context.Context, in *IDRequest) (*Empty, error) {
	if err := s.svc.Milestones.Delete(ctx, in.ID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}
