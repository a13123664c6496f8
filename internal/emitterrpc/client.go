package emitterrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gopkg.in/yaml.v3"

	"github.com/htlc-project/htlc/internal/stg"
	"github.com/htlc-project/htlc/internal/stgwire"
)

// Send dials addr, ships prog (identified by sourceHash) to the configured
// emitter, and returns its response. Used by cmd/htlc's --emitter-addr flag
// as the alternative to pretty-printing the STG program locally.
func Send(ctx context.Context, addr, sourceHash string, prog *stg.Program) (*EmitResponse, error) {
	blob, err := yaml.Marshal(stgwire.FromProgram(prog))
	if err != nil {
		return nil, fmt.Errorf("encoding program for emitter: %w", err)
	}
	req := &EmitRequest{SourceHash: sourceHash, ProgramYaml: blob}
	if err := ValidateEmitRequest(req); err != nil {
		return nil, fmt.Errorf("refusing to send malformed emit request: %w", err)
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dialing emitter at %s: %w", addr, err)
	}
	defer conn.Close()

	client := NewEmitterServiceClient(conn)
	resp, err := client.Emit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("emitter rejected program: %w", err)
	}
	return resp, nil
}
