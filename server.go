package scache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"SCache/registry"
)

// Server exposes the caches of one Manager over gRPC. Remote values are
// stored as ByteView under string keys.
type Server struct {
	addr         string
	serviceName  string
	manager      *Manager
	registry     registry.Config
	grpcServer   *grpc.Server
	healthServer *health.Server
	stopCh       chan error
	stopOnce     sync.Once
}

// NewServer creates a server for manager and creates the caches listed in
// cfg. A nil metrics records nothing.
func NewServer(cfg Config, manager *Manager, metrics Metrics) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = NoopMetrics()
	}

	for _, name := range cfg.Caches {
		if _, err := CreateCache[string, ByteView](manager, name); err != nil && !errors.Is(err, ErrCacheExists) {
			return nil, fmt.Errorf("failed to create cache %s: %w", name, err)
		}
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		metricsInterceptor(metrics),
		loggingInterceptor,
	))
	s := &Server{
		addr:         cfg.Addr,
		serviceName:  cfg.ServiceName,
		manager:      manager,
		registry:     cfg.Registry,
		grpcServer:   grpcServer,
		healthServer: health.NewServer(),
		stopCh:       make(chan error),
	}
	grpcServer.RegisterService(&serviceDesc, s)

	healthpb.RegisterHealthServer(grpcServer, s.healthServer)
	s.healthServer.SetServingStatus(cfg.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return s, nil
}

// Start listens on the configured address and serves until Stop.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen at %s: %w", s.addr, err)
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis. The server registers itself in etcd first
// when endpoints are configured.
func (s *Server) Serve(lis net.Listener) error {
	if s.registry.Enabled() {
		if err := registry.Register(s.registry, s.serviceName, s.addr, s.stopCh); err != nil {
			logrus.Errorf("failed to register service: %v", err)
			return err
		}
	}

	logrus.Infof("Server starting at %s", lis.Addr())
	return s.grpcServer.Serve(lis)
}

func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.healthServer.Shutdown()
		s.grpcServer.GracefulStop()
		logrus.Infof("Server at %s stopped", s.addr)
	})
}

func (s *Server) Get(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	cache, key, err := s.route(ctx, true)
	if err != nil {
		return nil, err
	}

	view, ok := cache.Get(key)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "key %q not found in %s", key, cache.Name())
	}
	return wrapperspb.Bytes(view.Clone()), nil
}

func (s *Server) Put(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	cache, key, err := s.route(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(in.GetValue()) == 0 {
		return nil, status.Error(codes.InvalidArgument, ErrValueRequired.Error())
	}

	if err := cache.Put(key, NewByteView(in.GetValue())); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) Remove(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	cache, key, err := s.route(ctx, true)
	if err != nil {
		return nil, err
	}
	return wrapperspb.Bool(cache.Remove(key)), nil
}

func (s *Server) Clear(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	cache, _, err := s.route(ctx, false)
	if err != nil {
		return nil, err
	}
	cache.Clear()
	return &emptypb.Empty{}, nil
}

// route resolves the cache and key named in the request metadata.
func (s *Server) route(ctx context.Context, needKey bool) (*Cache[string, ByteView], string, error) {
	md, _ := metadata.FromIncomingContext(ctx)

	name := firstValue(md, metadataCache)
	if name == "" {
		return nil, "", status.Error(codes.InvalidArgument, ErrNameRequired.Error())
	}
	key := firstValue(md, metadataKey)
	if needKey && key == "" {
		return nil, "", status.Error(codes.InvalidArgument, ErrKeyRequired.Error())
	}

	cache, err := GetCache[string, ByteView](s.manager, name)
	if err != nil {
		return nil, "", toStatus(err)
	}
	return cache, key, nil
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrCacheNotFound), errors.Is(err, ErrIncompatibleTypes), errors.Is(err, ErrCacheClosed):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrManagerClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrKeyRequired), errors.Is(err, ErrValueRequired):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func isMiss(err error) bool {
	return status.Code(err) == codes.NotFound
}

func loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	logrus.Debugf("Server: %s %s/%q", info.FullMethod, firstValue(md, metadataCache), firstValue(md, metadataKey))

	resp, err := handler(ctx, req)
	if err != nil && !isMiss(err) {
		logrus.Warnf("Server: %s failed: %v", info.FullMethod, err)
	}
	return resp, err
}
