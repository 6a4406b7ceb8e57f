package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully-qualified gRPC service name.
	ServiceName = "palisade.flight_eval.v1.FlightEvalService"
	// GradeFullMethod is the full method path of the Grade RPC.
	GradeFullMethod = "/" + ServiceName + "/Grade"
)

// FlightEvalServiceServer is the server API for FlightEvalService.
type FlightEvalServiceServer interface {
	Grade(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// FlightEvalServiceDesc describes FlightEvalService. Messages are
// google.protobuf.Struct so the service needs no generated stubs.
var FlightEvalServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlightEvalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Grade",
			Handler:    gradeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flight_eval/v1/flight_eval.proto",
}

// RegisterFlightEvalServiceServer registers srv on s.
func RegisterFlightEvalServiceServer(s grpc.ServiceRegistrar, srv FlightEvalServiceServer) {
	s.RegisterService(&FlightEvalServiceDesc, srv)
}

func gradeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightEvalServiceServer).Grade(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GradeFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlightEvalServiceServer).Grade(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls FlightEvalService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Grade grades one transcript remotely.
func (c *Client) Grade(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GradeFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
