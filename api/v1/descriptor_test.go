package v1

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/reflection"
	rpb "google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

func TestServiceDescriptorRegistered(t *testing.T) {
	d, err := protoregistry.GlobalFiles.FindDescriptorByName(GazePrecision_ServiceName)
	require.NoError(t, err)

	svc, ok := d.(protoreflect.ServiceDescriptor)
	require.True(t, ok)
	assert.Equal(t, gazeProtoPath, svc.ParentFile().Path())

	methods := svc.Methods()
	assert.Equal(t, len(GazePrecision_ServiceDesc.Methods)+len(GazePrecision_ServiceDesc.Streams), methods.Len())
	for _, m := range GazePrecision_ServiceDesc.Methods {
		md := methods.ByName(protoreflect.Name(m.MethodName))
		require.NotNil(t, md, m.MethodName)
		assert.Equal(t, protoreflect.FullName("google.protobuf.Struct"), md.Input().FullName())
		assert.False(t, md.IsStreamingClient())
	}

	stream := methods.ByName("StreamPredictions")
	require.NotNil(t, stream)
	assert.True(t, stream.IsStreamingClient())
	assert.False(t, stream.IsStreamingServer())
}

type reflectedServer struct {
	UnimplementedGazePrecisionServer
}

func TestServiceDescribableOverReflection(t *testing.T) {
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterGazePrecisionServer(srv, reflectedServer{})
	reflection.Register(srv)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stream, err := rpb.NewServerReflectionClient(conn).ServerReflectionInfo(ctx)
	require.NoError(t, err)
	require.NoError(t, stream.Send(&rpb.ServerReflectionRequest{
		MessageRequest: &rpb.ServerReflectionRequest_FileContainingSymbol{
			FileContainingSymbol: GazePrecision_ServiceName,
		},
	}))

	resp, err := stream.Recv()
	require.NoError(t, err)
	files := resp.GetFileDescriptorResponse().GetFileDescriptorProto()
	require.NotEmpty(t, files, "error response: %v", resp.GetErrorResponse())

	var names []string
	for _, raw := range files {
		var fd descriptorpb.FileDescriptorProto
		require.NoError(t, proto.Unmarshal(raw, &fd))
		names = append(names, fd.GetName())
		if fd.GetName() == gazeProtoPath {
			require.Len(t, fd.GetService(), 1)
			assert.Equal(t, "GazePrecision", fd.GetService()[0].GetName())
		}
	}
	assert.Contains(t, names, gazeProtoPath)
}
