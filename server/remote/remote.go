// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package remote provides the entry implementation for external plugins.
// An external bundle's entrypoint is the gRPC address of a process serving
// PluginService; the entry proxies lifecycle calls to it.
package remote

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/inkpad-io/inkpad/bundle"
	"github.com/inkpad-io/inkpad/server/proto"
	"github.com/inkpad-io/inkpad/types"
)

func init() {
	bundle.RegisterExternalFactory(func(m bundle.Manifest) types.Entry {
		var target string
		if len(m.Entrypoints) > 0 {
			target = m.Entrypoints[0]
		}
		return &Entry{
			target:     target,
			descriptor: m.Descriptor,
		}
	})
}

// Entry proxies the plugin lifecycle to an out-of-process PluginService.
// The remote end identifies its plugin by the declared name.
type Entry struct {
	target     string
	descriptor types.Descriptor

	mtx    sync.Mutex
	conn   *grpc.ClientConn
	client proto.PluginServiceClient
}

// Info returns the descriptor declared in the bundle manifest.
func (e *Entry) Info() types.Descriptor { return e.descriptor }

// Initialize dials the remote process and forwards the configuration.
func (e *Entry) Initialize(ctx context.Context, config map[string]interface{}) error {
	client, err := e.dial()
	if err != nil {
		return err
	}
	resp, err := client.Initialize(ctx, &proto.InitializeRequest{
		PluginId: e.descriptor.Name,
		Config:   stringConfig(config),
	})
	return e.result("initialize", resp, err)
}

// Start forwards the start call.
func (e *Entry) Start(ctx context.Context) error {
	client, err := e.dial()
	if err != nil {
		return err
	}
	resp, err := client.Start(ctx, &proto.PluginRequest{PluginId: e.descriptor.Name})
	return e.result("start", resp, err)
}

// Stop forwards the stop call and closes the connection.
func (e *Entry) Stop(ctx context.Context) error {
	client, err := e.dial()
	if err != nil {
		return err
	}
	resp, err := client.Stop(ctx, &proto.PluginRequest{PluginId: e.descriptor.Name})
	stopErr := e.result("stop", resp, err)

	e.mtx.Lock()
	if e.conn != nil {
		e.conn.Close()
		e.conn = nil
		e.client = nil
	}
	e.mtx.Unlock()
	return stopErr
}

// HealthCheck forwards the health check.
func (e *Entry) HealthCheck(ctx context.Context) (types.Health, error) {
	client, err := e.dial()
	if err != nil {
		return types.Health{}, err
	}
	resp, err := client.HealthCheck(ctx, &proto.PluginRequest{PluginId: e.descriptor.Name})
	if err != nil {
		return types.Health{}, types.NewError(types.NetworkErr, "plugin %v health check: %v", e.descriptor.Name, err)
	}
	return types.Health{
		State:   types.HealthState(resp.GetStatus()),
		Message: resp.GetMessage(),
	}, nil
}

// Execute forwards a named operation.
func (e *Entry) Execute(ctx context.Context, op string, params map[string]string) (map[string]string, error) {
	client, err := e.dial()
	if err != nil {
		return nil, err
	}
	resp, err := client.Execute(ctx, &proto.ExecuteRequest{
		PluginId:  e.descriptor.Name,
		Operation: op,
		Params:    params,
	})
	if err != nil {
		return nil, types.NewError(types.NetworkErr, "plugin %v execute: %v", e.descriptor.Name, err)
	}
	if !resp.GetSuccess() {
		return nil, types.NewError(types.LifecycleErr, "plugin %v execute: %v", e.descriptor.Name, resp.GetMessage())
	}
	return resp.GetResults(), nil
}

func (e *Entry) dial() (proto.PluginServiceClient, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if e.client != nil {
		return e.client, nil
	}
	conn, err := grpc.NewClient(e.target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, types.NewError(types.NetworkErr, "dial plugin %v at %v: %v", e.descriptor.Name, e.target, err)
	}
	e.conn = conn
	e.client = proto.NewPluginServiceClient(conn)
	return e.client, nil
}

func (e *Entry) result(op string, resp *proto.BasicResponse, err error) error {
	if err != nil {
		return types.NewError(types.NetworkErr, "plugin %v %v: %v", e.descriptor.Name, op, err)
	}
	if !resp.GetSuccess() {
		return fmt.Errorf("plugin %v %v: %v", e.descriptor.Name, op, resp.GetMessage())
	}
	return nil
}

func stringConfig(config map[string]interface{}) map[string]string {
	if config == nil {
		return nil
	}
	out := make(map[string]string, len(config))
	for k, v := range config {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
