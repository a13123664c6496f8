// Package emitterrpc defines the wire boundary between the core compiler
// and the assembly emitter, which §6 names as an external collaborator
// reachable only through the STG program and descriptor table. No protoc
// toolchain runs in this environment, so the message types below are
// hand-written in the shape protoc-gen-go would produce for a minimal
// `emitter.proto` (one RPC, one request carrying the translated program as
// an opaque YAML-encoded payload rather than a fully-descriptored nested
// message — see DESIGN.md for why the STG tree itself isn't expanded into
// proto fields). EmitRequest/EmitResponse implement proto.Message via
// protoimpl exactly as real generated code does, so they travel over a
// genuine gRPC channel.
package emitterrpc

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/runtime/protoimpl"
)

// EmitRequest carries one compiled program to the emitter: the source hash
// (for the emitter's own logging/correlation) and the STG program,
// YAML-encoded via internal/stgwire.
type EmitRequest struct {
	state         protoimpl.MessageState
	sizeCache     protoimpl.SizeCache
	unknownFields protoimpl.UnknownFields

	SourceHash  string `protobuf:"bytes,1,opt,name=source_hash,json=sourceHash,proto3" json:"source_hash,omitempty"`
	ProgramYaml []byte `protobuf:"bytes,2,opt,name=program_yaml,json=programYaml,proto3" json:"program_yaml,omitempty"`
}

func (x *EmitRequest) Reset()         { *x = EmitRequest{} }
func (x *EmitRequest) String() string { return protoimpl.X.MessageStringOf(x) }
func (*EmitRequest) ProtoMessage()    {}
func (x *EmitRequest) ProtoReflect() protoreflect.Message {
	return protoimpl.X.MessageOf(x)
}

// EmitResponse is the emitter's reply: success/failure plus a diagnostic
// message on failure.
type EmitResponse struct {
	state         protoimpl.MessageState
	sizeCache     protoimpl.SizeCache
	unknownFields protoimpl.UnknownFields

	Ok      bool   `protobuf:"varint,1,opt,name=ok,proto3" json:"ok,omitempty"`
	Message string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

func (x *EmitResponse) Reset()         { *x = EmitResponse{} }
func (x *EmitResponse) String() string { return protoimpl.X.MessageStringOf(x) }
func (*EmitResponse) ProtoMessage()    {}
func (x *EmitResponse) ProtoReflect() protoreflect.Message {
	return protoimpl.X.MessageOf(x)
}
