package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/core/service"
)

const (
	GRPCServiceName = "inventory.v1.InventoryService"
	// JSONCodecName is the content subtype clients pass with
	// grpc.CallContentSubtype to reach this service.
	JSONCodecName   = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string { return JSONCodecName }

type DashboardRequest struct{}

// InventoryServer is the gRPC surface of the inventory service.
type InventoryServer interface {
	Transfer(ctx context.Context, req *TransferRequest) (*TransferResponse, error)
	GetDashboard(ctx context.Context, req *DashboardRequest) (*DashboardJSON, error)
}

type GRPCHandler struct {
	inventoryService *service.InventoryService
	logger           *slog.Logger
}

func NewGRPCHandler(inventoryService *service.InventoryService, logger *slog.Logger) *GRPCHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCHandler{inventoryService: inventoryService, logger: logger}
}

func (h *GRPCHandler) Transfer(ctx context.Context, req *TransferRequest) (*TransferResponse, error) {
	res, err := h.inventoryService.Transfer(ctx, req.Domain())
	if err != nil {
		return nil, h.grpcError(err)
	}
	out := toTransferResponse(res)
	return &out, nil
}

func (h *GRPCHandler) GetDashboard(ctx context.Context, _ *DashboardRequest) (*DashboardJSON, error) {
	d, err := h.inventoryService.Dashboard(ctx)
	if err != nil {
		return nil, h.grpcError(err)
	}
	out := toDashboardJSON(d)
	return &out, nil
}

func (h *GRPCHandler) grpcError(err error) error {
	code := grpcCode(err)
	if code == codes.Internal {
		h.logger.Error("rpc failed", "error", err)
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}

func grpcCode(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidTransfer):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrCapacityExceeded):
		return codes.FailedPrecondition
	case errors.Is(err, service.ErrDuplicateRequest):
		return codes.AlreadyExists
	default:
		return codes.Internal
	}
}

// RegisterInventoryServer attaches srv to s under GRPCServiceName.
func RegisterInventoryServer(s grpc.ServiceRegistrar, srv InventoryServer) {
	s.RegisterService(&inventoryServiceDesc, srv)
}

var inventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: GRPCServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Transfer", Handler: transferHandler},
		{MethodName: "GetDashboard", Handler: getDashboardHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/inventory.proto",
}

func transferHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TransferRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).Transfer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + GRPCServiceName + "/Transfer"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).Transfer(ctx, req.(*TransferRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getDashboardHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DashboardRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).GetDashboard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + GRPCServiceName + "/GetDashboard"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).GetDashboard(ctx, req.(*DashboardRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// InventoryClient calls the service over a connection that negotiates the
// JSON codec.
type InventoryClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryClient(cc grpc.ClientConnInterface) *InventoryClient {
	return &InventoryClient{cc: cc}
}

func (c *InventoryClient) Transfer(ctx context.Context, req *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	out := new(TransferResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+GRPCServiceName+"/Transfer", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryClient) GetDashboard(ctx context.Context, opts ...grpc.CallOption) (*DashboardJSON, error) {
	out := new(DashboardJSON)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+GRPCServiceName+"/GetDashboard", &DashboardRequest{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
