// Package rpc exposes the viability service over gRPC.
//
// Messages are google.protobuf.Struct values whose fields mirror the HTTP
// JSON bodies, so the service needs no generated code. The service
// descriptor is declared by hand in desc.go.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rshade/solar-mining-viability/internal/metrics"
	"github.com/rshade/solar-mining-viability/internal/viability"
)

// RequestIDMetadataKey is the gRPC metadata key carrying the request ID.
const RequestIDMetadataKey = "x-request-id"

type contextKey int

const requestIDKey contextKey = iota

// Server implements ViabilityServer on top of viability.Service.
type Server struct {
	svc     *viability.Service
	metrics *metrics.Recorder
	logger  zerolog.Logger
}

// New creates a Server. rec may be nil.
func New(svc *viability.Service, rec *metrics.Recorder, logger zerolog.Logger) *Server {
	return &Server{svc: svc, metrics: rec, logger: logger}
}

// NewGRPCServer returns a grpc.Server with the viability service registered
// behind the logging interceptor.
func (s *Server) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(s.UnaryInterceptor())}, opts...)
	gs := grpc.NewServer(opts...)
	RegisterViabilityServer(gs, s)
	return gs
}

// requestID extracts the request ID from context or metadata, or generates
// a UUID if not present.
func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return id
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(RequestIDMetadataKey); len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return uuid.New().String()
}

// UnaryInterceptor assigns a request ID, recovers panics, and logs and
// counts every call.
func (s *Server) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		id := requestID(ctx)
		ctx = context.WithValue(ctx, requestIDKey, id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDMetadataKey, id))

		start := time.Now()
		defer func() {
			if p := recover(); p != nil {
				s.logger.Error().
					Str("request_id", id).
					Str("method", info.FullMethod).
					Interface("panic", p).
					Msg("handler panic recovered")
				resp, err = nil, s.newErrorWithID(id, codes.Internal, "internal error")
			}

			code := status.Code(err)
			event := s.logger.Info()
			if code == codes.Internal || code == codes.Unknown {
				event = s.logger.Error().Err(err)
			}
			event.
				Str("request_id", id).
				Str("method", info.FullMethod).
				Str("code", code.String()).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("grpc request")
			s.metrics.ObserveGRPC(info.FullMethod, code.String())
		}()

		return handler(ctx, req)
	}
}

// newErrorWithID creates a gRPC error carrying the request ID in a
// RequestInfo detail.
func (s *Server) newErrorWithID(id string, code codes.Code, msg string, details ...*errdetails.BadRequest_FieldViolation) error {
	st := status.New(code, msg)

	var withDetails *status.Status
	var err error
	if len(details) > 0 {
		withDetails, err = st.WithDetails(
			&errdetails.RequestInfo{RequestId: id},
			&errdetails.BadRequest{FieldViolations: details},
		)
	} else {
		withDetails, err = st.WithDetails(&errdetails.RequestInfo{RequestId: id})
	}
	if err != nil {
		s.logger.Warn().
			Str("request_id", id).
			Str("grpc_code", code.String()).
			Err(err).
			Msg("failed to attach error details to gRPC status")
		return st.Err()
	}
	return withDetails.Err()
}

// toStatus maps a service error to a gRPC status error.
func (s *Server) toStatus(id, operation string, err error) error {
	var ve *viability.ValidationError
	if errors.As(err, &ve) {
		return s.newErrorWithID(id, codes.InvalidArgument, ve.Error(),
			&errdetails.BadRequest_FieldViolation{Field: ve.Field, Description: ve.Reason})
	}
	s.logger.Error().
		Str("request_id", id).
		Str("operation", operation).
		Err(err).
		Msg("request failed")
	return s.newErrorWithID(id, codes.Internal, "internal error")
}

// call decodes in into a Req, runs fn and encodes the result.
func call[Req, Resp any](s *Server, ctx context.Context, operation string, in *structpb.Struct, fn func(context.Context, Req) (Resp, error)) (*structpb.Struct, error) {
	id := requestID(ctx)

	var req Req
	if err := FromStruct(in, &req); err != nil {
		return nil, s.newErrorWithID(id, codes.InvalidArgument, fmt.Sprintf("invalid request payload: %v", err))
	}
	resp, err := fn(ctx, req)
	if err != nil {
		return nil, s.toStatus(id, operation, err)
	}
	out, err := ToStruct(resp)
	if err != nil {
		return nil, s.toStatus(id, operation, fmt.Errorf("encode response: %w", err))
	}
	return out, nil
}

// empty is the request of methods that take no input.
type empty struct{}

// GetInitialData returns the reference tables.
func (s *Server) GetInitialData(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(s, ctx, viability.OpInitialData, in, func(context.Context, empty) (any, error) {
		return s.svc.InitialData(), nil
	})
}

// ComputeEquipmentBudget checks the equipment cost against a budget.
func (s *Server) ComputeEquipmentBudget(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(s, ctx, viability.OpEquipmentBudget, in, func(_ context.Context, req viability.EquipmentBudgetRequest) (viability.EquipmentBudget, error) {
		return s.svc.ComputeEquipmentBudget(req)
	})
}

// ComputeFullViability runs the full pipeline.
func (s *Server) ComputeFullViability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(s, ctx, viability.OpFullViability, in, s.svc.ComputeFullViability)
}

// ComputeBudgetCheck checks equipment plus solar cost against a budget.
func (s *Server) ComputeBudgetCheck(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(s, ctx, viability.OpBudgetCheck, in, func(_ context.Context, req viability.BudgetCheckRequest) (viability.BudgetStatus, error) {
		return s.svc.ComputeBudgetCheck(req)
	})
}

// SimulateEquipment previews the equipment side of the pipeline.
func (s *Server) SimulateEquipment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(s, ctx, viability.OpSimulateEquip, in, func(_ context.Context, req viability.EquipmentSimulationRequest) (viability.EquipmentSimulation, error) {
		return s.svc.SimulateEquipment(req)
	})
}

// SimulateSolar previews the solar side of the pipeline.
func (s *Server) SimulateSolar(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(s, ctx, viability.OpSimulateSolar, in, func(_ context.Context, req viability.SolarSimulationRequest) (viability.SolarSimulation, error) {
		return s.svc.SimulateSolar(req)
	})
}

// GetPrice returns the current BTC quote.
func (s *Server) GetPrice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(s, ctx, viability.OpPrice, in, func(ctx context.Context, _ empty) (any, error) {
		return s.svc.Price(ctx), nil
	})
}

// ToStruct converts a JSON-encodable value into a Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromStruct decodes a Struct into dst using the JSON field names.
// A nil Struct leaves dst untouched.
func FromStruct(in *structpb.Struct, dst any) error {
	if in == nil {
		return nil
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
