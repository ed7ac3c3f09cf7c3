package grpcapi

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"time"

	"tracker/internal/services"
	"tracker/internal/session"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// CodeFor maps an error kind onto a gRPC status code.
func CodeFor(kind services.Kind) codes.Code {
	switch kind {
	case services.KindInvalidInput, services.KindInvalidColor, services.KindNoUpdateFields:
		return codes.InvalidArgument
	case services.KindUserExists:
		return codes.AlreadyExists
	case services.KindInvalidCredentials, services.KindUnauthorized:
		return codes.Unauthenticated
	case services.KindNotFound:
		return codes.NotFound
	default:
		return codes.Internal
	}
}

// bearerToken reads "authorization: Bearer <token>" from incoming metadata.
func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get("authorization") {
		if scheme, token, ok := strings.Cut(v, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

func clientActor(ctx context.Context) services.Actor {
	var a services.Actor
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		a.IP = p.Addr.String()
		if host, _, err := net.SplitHostPort(a.IP); err == nil {
			a.IP = host
		}
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ua := md.Get("user-agent"); len(ua) > 0 {
			a.UserAgent = ua[0]
		}
	}
	return a
}

func authInterceptor(sessions *session.Registry, logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		actor := clientActor(ctx)
		if !publicMethods[info.FullMethod] {
			p, ok, err := sessions.Validate(ctx, bearerToken(ctx))
			if err != nil {
				logger.Error("Session lookup failed", "method", info.FullMethod, "error", err)
				return nil, err
			}
			if !ok {
				return nil, services.ErrUnauthorized
			}
			actor.UserID, actor.Username = p.UserID, p.Username
		}
		return handler(services.WithActor(ctx, actor), req)
	}
}

// errorInterceptor turns service errors into status errors and hides the
// cause of internal failures.
func errorInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if _, ok := status.FromError(err); ok {
			return nil, err
		}
		e := services.AsError(err)
		if e.Internal() {
			logger.Error("gRPC call failed", "method", info.FullMethod, "kind", e.Kind, "error", e.Err)
		}
		return nil, status.Error(CodeFor(e.Kind), e.Message)
	}
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("gRPC request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}
