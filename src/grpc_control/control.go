package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "tariffobserver.DashboardControl"

// Every method takes and returns a google.protobuf.Struct so that no
// generated code is needed on either side.

// DashboardControlServer is the server API for the control service.
type DashboardControlServer interface {
	ListSources(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Refresh(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveSource(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetComparison(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCorrelation(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type serverMethod func(DashboardControlServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call serverMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DashboardControlServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(DashboardControlServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// DashboardControl_ServiceDesc describes the control service for grpc.Server.
var DashboardControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardControlServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListSources", DashboardControlServer.ListSources),
		unary("GetStatus", DashboardControlServer.GetStatus),
		unary("Refresh", DashboardControlServer.Refresh),
		unary("RemoveSource", DashboardControlServer.RemoveSource),
		unary("GetComparison", DashboardControlServer.GetComparison),
		unary("GetCorrelation", DashboardControlServer.GetCorrelation),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tariffobserver/control",
}

func RegisterDashboardControlServer(s grpc.ServiceRegistrar, srv DashboardControlServer) {
	s.RegisterService(&DashboardControl_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

type DashboardControlClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardControlClient(cc grpc.ClientConnInterface) *DashboardControlClient {
	return &DashboardControlClient{cc: cc}
}

// Call invokes method with args converted to a Struct. args may be nil.
func (c *DashboardControlClient) Call(ctx context.Context, method string, args map[string]interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(args)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
