package v1

import (
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
)

const gazeProtoPath = "gaze/v1/gaze.proto"

// File_gaze_v1_gaze_proto describes the GazePrecision service. It is
// registered with protoregistry.GlobalFiles so server reflection can
// resolve the service and its methods.
var File_gaze_v1_gaze_proto protoreflect.FileDescriptor

func init() {
	fd, err := buildFileDescriptor(&GazePrecision_ServiceDesc)
	if err != nil {
		panic(err)
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(err)
	}
	File_gaze_v1_gaze_proto = fd
}

// buildFileDescriptor derives the proto file from the service descriptor so
// the two cannot drift apart. Every method takes and returns a Struct.
func buildFileDescriptor(desc *grpc.ServiceDesc) (protoreflect.FileDescriptor, error) {
	structType := "." + string((&structpb.Struct{}).ProtoReflect().Descriptor().FullName())

	svc := &descriptorpb.ServiceDescriptorProto{Name: proto.String("GazePrecision")}
	for _, m := range desc.Methods {
		svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(m.MethodName),
			InputType:  proto.String(structType),
			OutputType: proto.String(structType),
		})
	}
	for _, st := range desc.Streams {
		svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
			Name:            proto.String(st.StreamName),
			InputType:       proto.String(structType),
			OutputType:      proto.String(structType),
			ClientStreaming: proto.Bool(st.ClientStreams),
			ServerStreaming: proto.Bool(st.ServerStreams),
		})
	}

	file := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(gazeProtoPath),
		Package:    proto.String("gaze.v1"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{structpb.File_google_protobuf_struct_proto.Path()},
		Service:    []*descriptorpb.ServiceDescriptorProto{svc},
	}
	return protodesc.NewFile(file, protoregistry.GlobalFiles)
}
