// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package server exposes the plugin manager over gRPC. Lifecycle failures
// are reported in-band as success=false responses so that callers can
// distinguish them from transport problems.
package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/inkpad-io/inkpad/logging"
	"github.com/inkpad-io/inkpad/plugins"
	"github.com/inkpad-io/inkpad/security"
	"github.com/inkpad-io/inkpad/server/proto"
	"github.com/inkpad-io/inkpad/types"
)

// TokenMetadataKey is the gRPC metadata key carrying a plugin access token.
const TokenMetadataKey = "x-inkpad-token"

// Server implements proto.PluginServiceServer on top of a plugin manager.
type Server struct {
	proto.UnimplementedPluginServiceServer

	manager  *plugins.Manager
	security *security.Manager
	logger   logging.Logger
}

// New returns a Server delegating to the given manager.
func New(manager *plugins.Manager, sec *security.Manager) *Server {
	return &Server{
		manager:  manager,
		security: sec,
		logger:   logging.NewNoOpLogger(),
	}
}

// WithLogger sets the logger and returns the server.
func (s *Server) WithLogger(logger logging.Logger) *Server {
	s.logger = logger
	return s
}

// Initialize re-initializes a plugin with a fresh configuration.
func (s *Server) Initialize(ctx context.Context, req *proto.InitializeRequest) (*proto.BasicResponse, error) {
	err := s.manager.Initialize(ctx, req.GetPluginId(), toConfig(req.GetConfig()))
	return basic(err), nil
}

// Start transitions a plugin to Active.
func (s *Server) Start(ctx context.Context, req *proto.PluginRequest) (*proto.BasicResponse, error) {
	err := s.manager.Start(ctx, req.GetPluginId())
	return basic(err), nil
}

// Stop transitions a plugin to Inactive.
func (s *Server) Stop(ctx context.Context, req *proto.PluginRequest) (*proto.BasicResponse, error) {
	err := s.manager.Stop(ctx, req.GetPluginId())
	return basic(err), nil
}

// Shutdown stops every active plugin.
func (s *Server) Shutdown(ctx context.Context, _ *proto.ShutdownRequest) (*proto.BasicResponse, error) {
	err := s.manager.Shutdown(ctx)
	return basic(err), nil
}

// GetStatus reports the lifecycle state of a plugin. Unknown ids report
// the unknown state rather than an error.
func (s *Server) GetStatus(_ context.Context, req *proto.PluginRequest) (*proto.StatusResponse, error) {
	state := s.manager.Status(req.GetPluginId())
	return &proto.StatusResponse{
		Success: true,
		State:   string(state),
	}, nil
}

// HealthCheck runs the plugin's health check.
func (s *Server) HealthCheck(ctx context.Context, req *proto.PluginRequest) (*proto.HealthCheckResponse, error) {
	health := s.manager.Health(ctx, req.GetPluginId())
	return &proto.HealthCheckResponse{
		Success: health.State == types.HealthOK,
		Message: health.Message,
		Status:  string(health.State),
	}, nil
}

// GetInfo returns the plugin's descriptor.
func (s *Server) GetInfo(_ context.Context, req *proto.PluginRequest) (*proto.InfoResponse, error) {
	info, err := s.manager.Info(req.GetPluginId())
	if err != nil {
		return &proto.InfoResponse{Message: err.Error()}, nil
	}
	return &proto.InfoResponse{
		Success:             true,
		Name:                info.Name,
		Version:             info.Version,
		Author:              info.Author,
		Description:         info.Description,
		ApiVersion:          info.APIVersion,
		Capabilities:        info.Capabilities,
		RequiredPermissions: info.RequiredPermissions,
		SubscribedEvents:    info.SubscribedEvents,
		PublishedEvents:     info.PublishedEvents,
	}, nil
}

// GetCapabilities returns the plugin's declared capabilities.
func (s *Server) GetCapabilities(_ context.Context, req *proto.PluginRequest) (*proto.CapabilitiesResponse, error) {
	caps, err := s.manager.Capabilities(req.GetPluginId())
	if err != nil {
		return &proto.CapabilitiesResponse{Message: err.Error()}, nil
	}
	return &proto.CapabilitiesResponse{
		Success:      true,
		Capabilities: caps,
	}, nil
}

// Configure replaces the plugin's configuration.
func (s *Server) Configure(ctx context.Context, req *proto.ConfigureRequest) (*proto.BasicResponse, error) {
	err := s.manager.Configure(ctx, req.GetPluginId(), toConfig(req.GetConfig()))
	return basic(err), nil
}

// GetConfiguration returns the plugin's current configuration. Non-string
// values are dropped on the wire.
func (s *Server) GetConfiguration(_ context.Context, req *proto.PluginRequest) (*proto.ConfigurationResponse, error) {
	config, err := s.manager.GetConfiguration(req.GetPluginId())
	if err != nil {
		return &proto.ConfigurationResponse{Message: err.Error()}, nil
	}
	return &proto.ConfigurationResponse{
		Success: true,
		Config:  fromConfig(config),
	}, nil
}

// Execute dispatches a named operation to the plugin.
func (s *Server) Execute(ctx context.Context, req *proto.ExecuteRequest) (*proto.ExecuteResponse, error) {
	results, err := s.manager.Execute(ctx, req.GetPluginId(), req.GetOperation(), req.GetParams())
	if err != nil {
		return &proto.ExecuteResponse{Message: err.Error()}, nil
	}
	return &proto.ExecuteResponse{
		Success: true,
		Results: results,
	}, nil
}

// TokenUnaryInterceptor returns a grpc.UnaryServerInterceptor that resolves
// the x-inkpad-token metadata entry to a plugin id and logs the caller.
// Requests without a token pass through; the token is advisory until a call
// reaches a permission check.
func TokenUnaryInterceptor(sec *security.Manager, logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(TokenMetadataKey); len(vals) > 0 {
				if id, ok := sec.LookupByToken(vals[0]); ok {
					logger.Debug("RPC %v called by plugin %v.", info.FullMethod, id)
				} else {
					logger.Warn("RPC %v presented an unknown token.", info.FullMethod)
				}
			}
		}
		return handler(ctx, req)
	}
}

// basic converts a manager error into the wire response. The error kind is
// prefixed to the message so that callers can branch on it.
func basic(err error) *proto.BasicResponse {
	if err != nil {
		return &proto.BasicResponse{Message: err.Error()}
	}
	return &proto.BasicResponse{Success: true}
}

func toConfig(in map[string]string) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func fromConfig(in map[string]interface{}) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
