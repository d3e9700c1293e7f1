// Package v1 defines the gaze.v1.GazePrecision gRPC service. Every message
// on the wire is a google.protobuf.Struct; messages.go maps them to typed
// Go values and descriptor.go registers a matching proto file descriptor.
package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const GazePrecision_ServiceName = "gaze.v1.GazePrecision"

const (
	GazePrecision_OpenSession_FullMethodName       = "/gaze.v1.GazePrecision/OpenSession"
	GazePrecision_CloseSession_FullMethodName      = "/gaze.v1.GazePrecision/CloseSession"
	GazePrecision_ListSessions_FullMethodName      = "/gaze.v1.GazePrecision/ListSessions"
	GazePrecision_StartTest_FullMethodName         = "/gaze.v1.GazePrecision/StartTest"
	GazePrecision_RecordPrediction_FullMethodName  = "/gaze.v1.GazePrecision/RecordPrediction"
	GazePrecision_StreamPredictions_FullMethodName = "/gaze.v1.GazePrecision/StreamPredictions"
	GazePrecision_FinishTest_FullMethodName        = "/gaze.v1.GazePrecision/FinishTest"
	GazePrecision_GetSessionSummary_FullMethodName = "/gaze.v1.GazePrecision/GetSessionSummary"
	GazePrecision_GetActiveTest_FullMethodName     = "/gaze.v1.GazePrecision/GetActiveTest"
	GazePrecision_ListResults_FullMethodName       = "/gaze.v1.GazePrecision/ListResults"
)

type GazePrecision_StreamPredictionsServer = grpc.ClientStreamingServer[structpb.Struct, structpb.Struct]

type GazePrecision_StreamPredictionsClient = grpc.ClientStreamingClient[structpb.Struct, structpb.Struct]

// GazePrecisionServer is the server API for the GazePrecision service.
type GazePrecisionServer interface {
	OpenSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSessions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartTest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordPrediction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StreamPredictions(GazePrecision_StreamPredictionsServer) error
	FinishTest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSessionSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetActiveTest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListResults(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedGazePrecisionServer()
}

// UnimplementedGazePrecisionServer must be embedded by server implementations.
type UnimplementedGazePrecisionServer struct{}

func (UnimplementedGazePrecisionServer) OpenSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method OpenSession not implemented")
}
func (UnimplementedGazePrecisionServer) CloseSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CloseSession not implemented")
}
func (UnimplementedGazePrecisionServer) ListSessions(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListSessions not implemented")
}
func (UnimplementedGazePrecisionServer) StartTest(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method StartTest not implemented")
}
func (UnimplementedGazePrecisionServer) RecordPrediction(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method RecordPrediction not implemented")
}
func (UnimplementedGazePrecisionServer) StreamPredictions(GazePrecision_StreamPredictionsServer) error {
	return status.Error(codes.Unimplemented, "method StreamPredictions not implemented")
}
func (UnimplementedGazePrecisionServer) FinishTest(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method FinishTest not implemented")
}
func (UnimplementedGazePrecisionServer) GetSessionSummary(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSessionSummary not implemented")
}
func (UnimplementedGazePrecisionServer) GetActiveTest(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetActiveTest not implemented")
}
func (UnimplementedGazePrecisionServer) ListResults(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListResults not implemented")
}
func (UnimplementedGazePrecisionServer) mustEmbedUnimplementedGazePrecisionServer() {}

func RegisterGazePrecisionServer(s grpc.ServiceRegistrar, srv GazePrecisionServer) {
	s.RegisterService(&GazePrecision_ServiceDesc, srv)
}

type unaryCall func(srv GazePrecisionServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GazePrecisionServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(GazePrecisionServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func streamPredictionsHandler(srv any, stream grpc.ServerStream) error {
	return srv.(GazePrecisionServer).StreamPredictions(&grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

var GazePrecision_ServiceDesc = grpc.ServiceDesc{
	ServiceName: GazePrecision_ServiceName,
	HandlerType: (*GazePrecisionServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "OpenSession",
			Handler:    unaryHandler(GazePrecision_OpenSession_FullMethodName, GazePrecisionServer.OpenSession),
		},
		{
			MethodName: "CloseSession",
			Handler:    unaryHandler(GazePrecision_CloseSession_FullMethodName, GazePrecisionServer.CloseSession),
		},
		{
			MethodName: "ListSessions",
			Handler:    unaryHandler(GazePrecision_ListSessions_FullMethodName, GazePrecisionServer.ListSessions),
		},
		{
			MethodName: "StartTest",
			Handler:    unaryHandler(GazePrecision_StartTest_FullMethodName, GazePrecisionServer.StartTest),
		},
		{
			MethodName: "RecordPrediction",
			Handler:    unaryHandler(GazePrecision_RecordPrediction_FullMethodName, GazePrecisionServer.RecordPrediction),
		},
		{
			MethodName: "FinishTest",
			Handler:    unaryHandler(GazePrecision_FinishTest_FullMethodName, GazePrecisionServer.FinishTest),
		},
		{
			MethodName: "GetSessionSummary",
			Handler:    unaryHandler(GazePrecision_GetSessionSummary_FullMethodName, GazePrecisionServer.GetSessionSummary),
		},
		{
			MethodName: "GetActiveTest",
			Handler:    unaryHandler(GazePrecision_GetActiveTest_FullMethodName, GazePrecisionServer.GetActiveTest),
		},
		{
			MethodName: "ListResults",
			Handler:    unaryHandler(GazePrecision_ListResults_FullMethodName, GazePrecisionServer.ListResults),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamPredictions",
			Handler:       streamPredictionsHandler,
			ClientStreams: true,
		},
	},
	Metadata: gazeProtoPath,
}

// GazePrecisionClient is the client API for the GazePrecision service.
type GazePrecisionClient interface {
	OpenSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CloseSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListSessions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	StartTest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RecordPrediction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	StreamPredictions(ctx context.Context, opts ...grpc.CallOption) (GazePrecision_StreamPredictionsClient, error)
	FinishTest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetSessionSummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetActiveTest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListResults(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type gazePrecisionClient struct {
	cc grpc.ClientConnInterface
}

func NewGazePrecisionClient(cc grpc.ClientConnInterface) GazePrecisionClient {
	return &gazePrecisionClient{cc}
}

func (c *gazePrecisionClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gazePrecisionClient) OpenSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GazePrecision_OpenSession_FullMethodName, in, opts)
}

func (c *gazePrecisionClient) CloseSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GazePrecision_CloseSession_FullMethodName, in, opts)
}

func (c *gazePrecisionClient) ListSessions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GazePrecision_ListSessions_FullMethodName, in, opts)
}

func (c *gazePrecisionClient) StartTest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GazePrecision_StartTest_FullMethodName, in, opts)
}

func (c *gazePrecisionClient) RecordPrediction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GazePrecision_RecordPrediction_FullMethodName, in, opts)
}

func (c *gazePrecisionClient) StreamPredictions(ctx context.Context, opts ...grpc.CallOption) (GazePrecision_StreamPredictionsClient, error) {
	stream, err := c.cc.NewStream(ctx, &GazePrecision_ServiceDesc.Streams[0], GazePrecision_StreamPredictions_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}, nil
}

func (c *gazePrecisionClient) FinishTest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GazePrecision_FinishTest_FullMethodName, in, opts)
}

func (c *gazePrecisionClient) GetSessionSummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GazePrecision_GetSessionSummary_FullMethodName, in, opts)
}

func (c *gazePrecisionClient) GetActiveTest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GazePrecision_GetActiveTest_FullMethodName, in, opts)
}

func (c *gazePrecisionClient) ListResults(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GazePrecision_ListResults_FullMethodName, in, opts)
}
