package supervisorctl

import (
	"context"

	"google.golang.org/grpc"
)

// serviceName is the gRPC service name the admin surface registers under.
const serviceName = "supervisorctl.Supervisor"

// ServiceDesc is the hand-written grpc.ServiceDesc for this admin surface.
// There is no .proto file behind it — the three RPCs below are internal ops
// tooling over internal/supervisor, not a public API, so the messages in
// messages.go are marshaled through the jsonCodec registered in codec.go
// instead of compiled protobuf.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListRunning", Handler: listRunningHandler},
		{MethodName: "StopRoom", Handler: stopRoomHandler},
		{MethodName: "Health", Handler: healthHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/supervisorctl/supervisorctl.proto",
}

// Handler is implemented by Service; kept separate from Service so
// ServiceDesc.HandlerType documents the RPC surface independent of its one
// concrete implementation.
type Handler interface {
	ListRunning(context.Context, *ListRunningRequest) (*ListRunningResponse, error)
	StopRoom(context.Context, *StopRoomRequest) (*StopRoomResponse, error)
	Health(context.Context, *HealthRequest) (*HealthResponse, error)
}

func listRunningHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListRunningRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).ListRunning(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ListRunning"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Handler).ListRunning(ctx, req.(*ListRunningRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func stopRoomHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StopRoomRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).StopRoom(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/StopRoom"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Handler).StopRoom(ctx, req.(*StopRoomRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func healthHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(HealthRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Health"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Handler).Health(ctx, req.(*HealthRequest))
	}
	return interceptor(ctx, in, info, handler)
}
