package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fekuna/omnipos-ledger-service/internal/analytics"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "ledger.v1.AnalyticsService"

// AnalyticsServer is the gRPC face of the analytics usecase. Requests and responses are
// google.protobuf.Struct documents shaped like the REST JSON.
type AnalyticsServer interface {
	GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetShopDetail(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetShopLeaderboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type AnalyticsGRPCHandler struct {
	uc     analytics.UseCase
	logger logger.ZapLogger
}

var _ AnalyticsServer = (*AnalyticsGRPCHandler)(nil)

func NewAnalyticsGRPCHandler(uc analytics.UseCase, log logger.ZapLogger) *AnalyticsGRPCHandler {
	return &AnalyticsGRPCHandler{
		uc:     uc,
		logger: log,
	}
}

func RegisterAnalyticsServer(s grpc.ServiceRegistrar, srv AnalyticsServer) {
	s.RegisterService(&analyticsServiceDesc, srv)
}

func (h *AnalyticsGRPCHandler) GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter := ledger.Filter{
		Shop:      stringField(req, "shop"),
		StartDate: stringField(req, "startDate"),
		EndDate:   stringField(req, "endDate"),
	}
	res, err := h.uc.Dashboard(ctx, filter)
	if err != nil {
		return nil, h.toStatus("get dashboard", err)
	}
	return toStruct(res)
}

func (h *AnalyticsGRPCHandler) GetShopDetail(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := stringField(req, "shopName")
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "shopName is required")
	}
	res, err := h.uc.ShopDetail(ctx, name)
	if err != nil {
		return nil, h.toStatus("get shop detail", err)
	}
	return toStruct(res)
}

func (h *AnalyticsGRPCHandler) GetShopLeaderboard(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	board, err := h.uc.ShopLeaderboard(ctx)
	if err != nil {
		return nil, h.toStatus("get shop leaderboard", err)
	}
	return toStruct(map[string]interface{}{"shops": board})
}

func (h *AnalyticsGRPCHandler) toStatus(op string, err error) error {
	switch {
	case ledger.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	}
	h.logger.Error("failed to "+op, zap.Error(err))
	return status.Error(codes.Internal, err.Error())
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	if v, ok := s.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

// toStruct converts v through its JSON form so field names match the REST API.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func unaryHandler(call func(AnalyticsServer, context.Context, *structpb.Struct) (*structpb.Struct, error), method string) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AnalyticsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(AnalyticsServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// analyticsServiceDesc carries no Metadata: the messages are structpb, so there is no .proto file
// for reflection to serve.
var analyticsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnalyticsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetDashboard", Handler: unaryHandler(AnalyticsServer.GetDashboard, "GetDashboard")},
		{MethodName: "GetShopDetail", Handler: unaryHandler(AnalyticsServer.GetShopDetail, "GetShopDetail")},
		{MethodName: "GetShopLeaderboard", Handler: unaryHandler(AnalyticsServer.GetShopLeaderboard, "GetShopLeaderboard")},
	},
	Streams: []grpc.StreamDesc{},
}
