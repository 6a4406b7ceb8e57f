package server

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/triage-ai/palisade/flight_eval/internal/auth"
	"github.com/triage-ai/palisade/flight_eval/internal/engine"
	"github.com/triage-ai/palisade/flight_eval/internal/pack"
	"github.com/triage-ai/palisade/flight_eval/internal/report"
	"github.com/triage-ai/palisade/flight_eval/internal/runner"
	"github.com/triage-ai/palisade/flight_eval/internal/storage"
	"github.com/triage-ai/palisade/flight_eval/internal/transcript"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// EvalServer implements FlightEvalService over a loaded, validated pack.
type EvalServer struct {
	engine       *engine.EvalEngine
	auth         auth.Authenticator
	pack         *pack.Pack
	writer       storage.EventWriter
	defaultModel string
	logger       *zap.Logger
}

// NewEvalServer creates a new EvalServer with the given dependencies.
func NewEvalServer(
	eng *engine.EvalEngine,
	authenticator auth.Authenticator,
	p *pack.Pack,
	writer storage.EventWriter,
	defaultModel string,
	logger *zap.Logger,
) *EvalServer {
	return &EvalServer{
		engine:       eng,
		auth:         authenticator,
		pack:         p,
		writer:       writer,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// Grade implements the FlightEvalService.Grade RPC.
func (s *EvalServer) Grade(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	// 1. Authenticate
	principal, err := s.auth.Authenticate(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "authentication failed: %v", err)
	}

	// 2. Decode request
	fields := req.GetFields()
	scenarioID := fields["scenario_id"].GetStringValue()
	if scenarioID == "" {
		return nil, status.Error(codes.InvalidArgument, "scenario_id is required")
	}
	modelName := fields["model_name"].GetStringValue()
	if modelName == "" {
		modelName = s.defaultModel
	}
	text := fields["transcript"].GetStringValue()

	// 3. Evaluate
	v, err := s.engine.Evaluate(ctx, s.pack, scenarioID, modelName, text)
	if err != nil {
		s.logger.Info("grade rejected",
			zap.String("key_id", principal.KeyID),
			zap.String("scenario_id", scenarioID),
			zap.Error(err),
		)
		return nil, toStatus(err)
	}

	requestID := uuid.New().String()

	// 4. Fire-and-forget: write event
	if s.writer != nil {
		s.writer.Write(runner.NewVerdictEvent(requestID, "grpc", v))
	}

	return rowToStruct(report.FromVerdict(v), requestID)
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, engine.ErrUnknownScenario):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, engine.ErrMissingGolden):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, transcript.ErrMalformedToolCall):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func rowToStruct(row report.Row, requestID string) (*structpb.Struct, error) {
	record := row.Record()
	m := make(map[string]any, len(report.Headers)+1)
	for i, h := range report.Headers {
		m[h] = record[i]
	}
	m["request_id"] = requestID
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
