// Validation of an EmitRequest against a descriptor built at runtime from
// descriptorpb, rather than from a .proto file compiled ahead of time.
// jhump/protoreflect's desc package is the ecosystem's usual entry point for
// working with such descriptors dynamically (reflection, dynamic messages,
// descriptor diffing); here it backs a guard that runs just before a
// program is shipped to the emitter, confirming the message on the wire
// still has the shape Emit's handler expects and that the STG program
// embedded in it actually carries the descriptor table the cleanup stage
// built (§4.5 step 4) for every constructor the program uses.
package emitterrpc

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.in/yaml.v3"

	"github.com/htlc-project/htlc/internal/stgwire"
)

// emitRequestDescriptor builds the FileDescriptor a real `emitter.proto`
// would produce for EmitRequest, by hand rather than via protoc.
func emitRequestDescriptor() (*desc.FileDescriptor, error) {
	label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	strType := descriptorpb.FieldDescriptorProto_TYPE_STRING
	bytesType := descriptorpb.FieldDescriptorProto_TYPE_BYTES

	fdProto := &descriptorpb.FileDescriptorProto{
		Name:    strPtr("emitter.proto"),
		Package: strPtr("emitterrpc"),
		Syntax:  strPtr("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: strPtr("EmitRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: strPtr("source_hash"), Number: int32Ptr(1), Label: &label, Type: &strType, JsonName: strPtr("sourceHash")},
					{Name: strPtr("program_yaml"), Number: int32Ptr(2), Label: &label, Type: &bytesType, JsonName: strPtr("programYaml")},
				},
			},
		},
	}

	fd, err := protodesc.NewFile(fdProto, nil)
	if err != nil {
		return nil, fmt.Errorf("building emitter.proto descriptor: %w", err)
	}
	wrapped, err := desc.WrapFile(fd)
	if err != nil {
		return nil, fmt.Errorf("wrapping emitter.proto descriptor: %w", err)
	}
	return wrapped, nil
}

func strPtr(s string) *string { return &s }
func int32Ptr(i int32) *int32 { return &i }

// ValidateEmitRequest checks req against the descriptor emitRequestDescriptor
// builds, and against the STG program it carries: both fields must be
// present, and the embedded program's descriptor table (stgwire's mirror of
// stg.Program.Descriptors) must cover every constructor the program's
// bindings reference.
func ValidateEmitRequest(req *EmitRequest) error {
	fd, err := emitRequestDescriptor()
	if err != nil {
		return err
	}
	msgDesc := fd.FindMessage("emitterrpc.EmitRequest")
	if msgDesc == nil {
		return fmt.Errorf("emitter.proto descriptor is missing message EmitRequest")
	}
	if msgDesc.FindFieldByName("source_hash") == nil {
		return fmt.Errorf("descriptor missing field source_hash")
	}
	if msgDesc.FindFieldByName("program_yaml") == nil {
		return fmt.Errorf("descriptor missing field program_yaml")
	}

	if req.SourceHash == "" {
		return fmt.Errorf("emit request missing source_hash")
	}
	if len(req.ProgramYaml) == 0 {
		return fmt.Errorf("emit request missing program_yaml")
	}

	var wire stgwire.Program
	if err := yaml.Unmarshal(req.ProgramYaml, &wire); err != nil {
		return fmt.Errorf("program_yaml does not decode to a valid STG program: %w", err)
	}
	return validateDescriptorCoverage(&wire)
}

// validateDescriptorCoverage confirms every data constructor named in a
// `con` expression reachable from the program's bindings has a matching
// entry in wire.Descriptors, i.e. that cleanup's reachability pass actually
// ran before this program was handed to the emitter.
func validateDescriptorCoverage(wire *stgwire.Program) error {
	used := map[string]bool{}
	for _, lf := range wire.Bindings {
		collectWireConstructors(lf.Body, used)
	}
	for name := range used {
		if _, ok := wire.Descriptors[name]; !ok {
			return fmt.Errorf("constructor %q used in program but missing from descriptor table", name)
		}
	}
	return nil
}

func collectWireConstructors(e stgwire.Expr, used map[string]bool) {
	switch e.Kind {
	case "con":
		used[e.Name] = true
	case "let":
		for _, lf := range e.Bindings {
			collectWireConstructors(lf.Body, used)
		}
		if e.Body != nil {
			collectWireConstructors(*e.Body, used)
		}
	case "primcase":
		for _, alt := range e.PrimAlts {
			collectWireConstructors(alt.Body, used)
		}
		if e.Default != nil {
			collectWireConstructors(*e.Default, used)
		}
	case "algcase":
		for _, alt := range e.AlgAlts {
			collectWireConstructors(alt.Body, used)
		}
		if e.Default != nil {
			collectWireConstructors(*e.Default, used)
		}
	}
}
