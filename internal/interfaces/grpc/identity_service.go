package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/errors"
)

// IdentityServiceName is the fully qualified gRPC service name.
const IdentityServiceName = "jwtauth.v1.IdentityService"

const (
	whoAmIMethod        = "/" + IdentityServiceName + "/WhoAmI"
	validateTokenMethod = "/" + IdentityServiceName + "/ValidateToken"
)

// IdentityServer is the server API of IdentityService. Messages are protobuf
// well-known types so no generated code is needed.
type IdentityServer interface {
	// WhoAmI returns the principal attached to the call as {subject, roles}.
	WhoAmI(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// ValidateToken reports whether a raw token decodes successfully.
	ValidateToken(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

// IdentityServiceDesc describes IdentityService for grpc.Server.RegisterService.
var IdentityServiceDesc = grpc.ServiceDesc{
	ServiceName: IdentityServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "WhoAmI", Handler: whoAmIHandler},
		{MethodName: "ValidateToken", Handler: validateTokenHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jwtauth/v1/identity.proto",
}

func whoAmIHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).WhoAmI(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: whoAmIMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityServer).WhoAmI(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func validateTokenHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).ValidateToken(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: validateTokenMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityServer).ValidateToken(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// IdentityService implements IdentityServer.
type IdentityService struct {
	codec service.TokenCodec
}

var _ IdentityServer = (*IdentityService)(nil)

// NewIdentityService creates a new IdentityService.
func NewIdentityService(codec service.TokenCodec) *IdentityService {
	return &IdentityService{codec: codec}
}

func (s *IdentityService) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	principal, ok := models.PrincipalFromContext(ctx)
	if !ok {
		return nil, errors.ErrUnauthorized
	}

	roles := make([]interface{}, len(principal.Roles))
	for i, r := range principal.Roles {
		roles[i] = r
	}
	out, err := structpb.NewStruct(map[string]interface{}{
		"subject": principal.Subject,
		"roles":   roles,
	})
	if err != nil {
		return nil, errors.ErrInternalServer.WithError(err)
	}
	return out, nil
}

func (s *IdentityService) ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if req.GetValue() == "" {
		return nil, errors.ErrInvalidRequest.WithDescription("token is required")
	}
	return wrapperspb.Bool(s.codec.Validate(ctx, req.GetValue())), nil
}

// IdentityClient calls IdentityService.
type IdentityClient struct {
	cc grpc.ClientConnInterface
}

// NewIdentityClient creates a client over cc.
func NewIdentityClient(cc grpc.ClientConnInterface) *IdentityClient {
	return &IdentityClient{cc: cc}
}

// WhoAmI returns the caller's subject and roles. The bearer token travels in the
// authorization metadata of ctx.
func (c *IdentityClient) WhoAmI(ctx context.Context, opts ...grpc.CallOption) (models.Principal, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, whoAmIMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return models.Principal{}, err
	}

	fields := out.GetFields()
	principal := models.Principal{Subject: fields["subject"].GetStringValue()}
	for _, v := range fields["roles"].GetListValue().GetValues() {
		principal.Roles = append(principal.Roles, v.GetStringValue())
	}
	return principal, nil
}

// ValidateToken asks the server whether token is valid.
func (c *IdentityClient) ValidateToken(ctx context.Context, token string, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, validateTokenMethod, wrapperspb.String(token), out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}
