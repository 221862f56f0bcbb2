package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/uuid"
	"github.com/venomauth/licensing-service/internal/application"
)

// LicensingInternalService is the mesh-internal surface the runtime client
// API calls before serving end users: application gating and blacklist
// checks. Dashboard traffic never reaches it.
type LicensingInternalService interface {
	GetApplicationStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckBlacklist(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type LicensingInternalServer struct {
	service *application.Service
}

func NewLicensingInternalServer(service *application.Service) *LicensingInternalServer {
	return &LicensingInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc LicensingInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "venomauth.licensing.v1.LicensingInternalService",
		HandlerType: (*LicensingInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetApplicationStatus",
				Handler:    structHandler("GetApplicationStatus", LicensingInternalService.GetApplicationStatus),
			},
			{
				MethodName: "CheckBlacklist",
				Handler:    structHandler("CheckBlacklist", LicensingInternalService.CheckBlacklist),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "venomauth/licensing/v1/licensing_internal.proto",
	}, svc)
}

func applicationIDField(req *structpb.Struct) (uuid.UUID, error) {
	val := req.GetFields()["application_id"]
	if val == nil || val.GetStringValue() == "" {
		return uuid.Nil, status.Error(codes.InvalidArgument, "missing application_id")
	}
	id, err := uuid.Parse(val.GetStringValue())
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "invalid application_id")
	}
	return id, nil
}

func (s *LicensingInternalServer) GetApplicationStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	applicationID, err := applicationIDField(req)
	if err != nil {
		return nil, err
	}

	app, err := s.service.InternalGetApplication(ctx, applicationID)
	if err != nil {
		return nil, status.Error(codes.NotFound, "application not found")
	}

	resp, err := structpb.NewStruct(map[string]any{
		"application_id": app.ApplicationID.String(),
		"status":         app.Status,
		"version":        app.Version,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *LicensingInternalServer) CheckBlacklist(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	applicationID, err := applicationIDField(req)
	if err != nil {
		return nil, err
	}
	hwid := req.GetFields()["hwid"].GetStringValue()
	ip := req.GetFields()["ip"].GetStringValue()

	blocked, err := s.service.InternalCheckBlacklist(ctx, applicationID, hwid, ip)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "check blacklist: %v", err)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"blocked": blocked,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func structHandler(method string, call func(LicensingInternalService, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/venomauth.licensing.v1.LicensingInternalService/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		svc, ok := srv.(LicensingInternalService)
		if !ok {
			return nil, status.Error(codes.Internal, "invalid service binding")
		}
		if interceptor == nil {
			return call(svc, ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return call(svc, ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
