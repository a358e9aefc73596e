package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "viability.v1.ViabilityService"

// Method names of the viability service.
const (
	MethodGetInitialData         = "GetInitialData"
	MethodComputeEquipmentBudget = "ComputeEquipmentBudget"
	MethodComputeFullViability   = "ComputeFullViability"
	MethodComputeBudgetCheck     = "ComputeBudgetCheck"
	MethodSimulateEquipment      = "SimulateEquipment"
	MethodSimulateSolar          = "SimulateSolar"
	MethodGetPrice               = "GetPrice"
)

// FullMethod returns the wire name of a method, e.g.
// "/viability.v1.ViabilityService/GetPrice".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// ViabilityServer is the server API of the viability service.
type ViabilityServer interface {
	GetInitialData(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeEquipmentBudget(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeFullViability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeBudgetCheck(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SimulateEquipment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SimulateSolar(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPrice(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterViabilityServer registers srv with s.
func RegisterViabilityServer(s grpc.ServiceRegistrar, srv ViabilityServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type unaryMethod func(ViabilityServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func handler(method string, fn unaryMethod) grpc.MethodHandler {
	fullMethod := FullMethod(method)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(srv.(ViabilityServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return fn(srv.(ViabilityServer), ctx, req.(*structpb.Struct))
		})
	}
}

// ServiceDesc describes the viability service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ViabilityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodGetInitialData, Handler: handler(MethodGetInitialData, ViabilityServer.GetInitialData)},
		{MethodName: MethodComputeEquipmentBudget, Handler: handler(MethodComputeEquipmentBudget, ViabilityServer.ComputeEquipmentBudget)},
		{MethodName: MethodComputeFullViability, Handler: handler(MethodComputeFullViability, ViabilityServer.ComputeFullViability)},
		{MethodName: MethodComputeBudgetCheck, Handler: handler(MethodComputeBudgetCheck, ViabilityServer.ComputeBudgetCheck)},
		{MethodName: MethodSimulateEquipment, Handler: handler(MethodSimulateEquipment, ViabilityServer.SimulateEquipment)},
		{MethodName: MethodSimulateSolar, Handler: handler(MethodSimulateSolar, ViabilityServer.SimulateSolar)},
		{MethodName: MethodGetPrice, Handler: handler(MethodGetPrice, ViabilityServer.GetPrice)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "viability/v1/viability.proto",
}

// Client calls the viability service, converting Go values to and from
// Struct messages.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a Client over cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Invoke calls method with req and decodes the reply into resp. req may be
// nil for methods that take no input.
func (c *Client) Invoke(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in := &structpb.Struct{}
	if req != nil {
		var err error
		if in, err = ToStruct(req); err != nil {
			return err
		}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return err
	}
	return FromStruct(out, resp)
}
