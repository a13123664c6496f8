package emitterrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// EmitterServiceClient is the client API for EmitterService, matching the
// interface protoc-gen-go-grpc would generate from a one-RPC
// `service EmitterService { rpc Emit(EmitRequest) returns (EmitResponse); }`.
type EmitterServiceClient interface {
	Emit(ctx context.Context, in *EmitRequest, opts ...grpc.CallOption) (*EmitResponse, error)
}

type emitterServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewEmitterServiceClient wraps an established gRPC connection.
func NewEmitterServiceClient(cc grpc.ClientConnInterface) EmitterServiceClient {
	return &emitterServiceClient{cc: cc}
}

func (c *emitterServiceClient) Emit(ctx context.Context, in *EmitRequest, opts ...grpc.CallOption) (*EmitResponse, error) {
	out := new(EmitResponse)
	err := c.cc.Invoke(ctx, EmitterService_Emit_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EmitterServiceServer is the server API for EmitterService.
type EmitterServiceServer interface {
	Emit(context.Context, *EmitRequest) (*EmitResponse, error)
}

// UnimplementedEmitterServiceServer embeds into a concrete implementation
// to satisfy forward compatibility, matching generated-code convention.
type UnimplementedEmitterServiceServer struct{}

func (UnimplementedEmitterServiceServer) Emit(context.Context, *EmitRequest) (*EmitResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Emit not implemented")
}

// RegisterEmitterServiceServer registers srv on s under the service
// descriptor below.
func RegisterEmitterServiceServer(s grpc.ServiceRegistrar, srv EmitterServiceServer) {
	s.RegisterService(&EmitterService_ServiceDesc, srv)
}

func _EmitterService_Emit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(EmitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EmitterServiceServer).Emit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EmitterService_Emit_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EmitterServiceServer).Emit(ctx, req.(*EmitRequest))
	}
	return interceptor(ctx, in, info, handler)
}

const EmitterService_Emit_FullMethodName = "/emitterrpc.EmitterService/Emit"

// EmitterService_ServiceDesc is the grpc.ServiceDesc for EmitterService, in
// the shape protoc-gen-go-grpc emits for a single-RPC service.
var EmitterService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "emitterrpc.EmitterService",
	HandlerType: (*EmitterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Emit",
			Handler:    _EmitterService_Emit_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "emitter.proto",
}
