package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	pb "github.com/godilite/gaze-server/api/v1"
	"github.com/godilite/gaze-server/internal/precision"
	"github.com/godilite/gaze-server/internal/service"
	"github.com/godilite/gaze-server/internal/session"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

const (
	cacheKeySessionSummary CacheKeyType = "grpc:session_summary"
)

type GRPCHandlers struct {
	pb.UnimplementedGazePrecisionServer
	precision PrecisionService
	sessions  SessionManager
	cache     Cacher
	logger    *zap.Logger
	sfGroup   singleflight.Group
	cacheTTL  time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers. cache may be nil.
func NewGRPCHandlers(prec PrecisionService, sessions SessionManager, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if prec == nil {
		panic("nil PrecisionService provided to NewGRPCHandlers")
	}
	if sessions == nil {
		panic("nil SessionManager provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		precision: prec,
		sessions:  sessions,
		cache:     cache,
		logger:    logger.Named("grpc-handler"),
		cacheTTL:  ttl,
	}
}

func summaryKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", cacheKeySessionSummary, sessionID)
}

func decodeRequest[T any](in *structpb.Struct) (T, error) {
	req, err := pb.Decode[T](in)
	if err != nil {
		return req, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return req, nil
}

func encodeReply(v any) (*structpb.Struct, error) {
	out, err := pb.Encode(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	return out, nil
}

func requireSessionID(id string) error {
	if id == "" {
		return status.Error(codes.InvalidArgument, "session_id is required")
	}
	return nil
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, session.ErrSessionNotFound):
		s.logger.Info("session not found", zap.String("op", op))
		return status.Error(codes.NotFound, "session not found")
	case errors.Is(err, service.ErrNoResults):
		s.logger.Info("no results found", zap.String("op", op))
		return status.Error(codes.NotFound, "no precision results for the given session")
	case errors.Is(err, service.ErrNoActiveTest):
		return status.Error(codes.FailedPrecondition, "no active precision test")
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, session.ErrInvalidIdentity),
		errors.Is(err, session.ErrNameRequired):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func toSessionReply(sess session.Session) pb.SessionReply {
	return pb.SessionReply{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Name:      sess.Name,
		Identity:  int(sess.Identity),
		Connected: sess.Connected,
	}
}

func (s *GRPCHandlers) OpenSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest[pb.OpenSessionRequest](in)
	if err != nil {
		return nil, err
	}

	sess, reused, err := s.sessions.Authenticate(session.Handshake{
		SessionID: req.SessionID,
		Name:      req.Name,
		Identity:  session.Identity(req.Identity),
	})
	if err != nil {
		return nil, s.handleError(ctx, "OpenSession", err)
	}

	reply := toSessionReply(sess)
	reply.LandingPage = sess.Identity.LandingPage()
	reply.Reused = reused
	return encodeReply(reply)
}

func (s *GRPCHandlers) CloseSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest[pb.SessionRequest](in)
	if err != nil {
		return nil, err
	}
	if err := requireSessionID(req.SessionID); err != nil {
		return nil, err
	}

	if err := s.sessions.Disconnect(req.SessionID); err != nil {
		return nil, s.handleError(ctx, "CloseSession", err)
	}
	return pb.Empty(), nil
}

func (s *GRPCHandlers) ListSessions(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	all := s.sessions.Sessions()

	reply := pb.ListSessionsReply{Sessions: make([]pb.SessionReply, len(all))}
	for i, sess := range all {
		reply.Sessions[i] = toSessionReply(sess)
	}
	return encodeReply(reply)
}

func (s *GRPCHandlers) StartTest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest[pb.StartTestRequest](in)
	if err != nil {
		return nil, err
	}
	if err := requireSessionID(req.SessionID); err != nil {
		return nil, err
	}

	target, err := precision.ParseCalibrationTarget(req.Target)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	info, err := s.precision.StartTest(ctx, req.SessionID, target, precision.Viewport{
		Width:      req.ViewportWidth,
		Height:     req.ViewportHeight,
		OffsetLeft: req.OffsetLeft,
		OffsetTop:  req.OffsetTop,
	})
	if err != nil {
		return nil, s.handleError(ctx, "StartTest", err)
	}

	return encodeReply(pb.StartTestReply{
		TestID:      info.TestID,
		Target:      string(info.Target),
		TargetX:     info.Point.X,
		TargetY:     info.Point.Y,
		MaxDistance: info.MaxDistance,
		Deadline:    info.Deadline,
	})
}

func predictionPoint(req pb.PredictionRequest) (precision.GazePoint, error) {
	if err := requireSessionID(req.SessionID); err != nil {
		return precision.GazePoint{}, err
	}
	if req.DocX == nil || req.DocY == nil {
		return precision.GazePoint{}, status.Error(codes.InvalidArgument, "doc_x and doc_y are required")
	}
	p := precision.GazePoint{X: *req.DocX, Y: *req.DocY}
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return precision.GazePoint{}, status.Error(codes.InvalidArgument, "coordinates must be finite")
	}
	return p, nil
}

func (s *GRPCHandlers) RecordPrediction(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest[pb.PredictionRequest](in)
	if err != nil {
		return nil, err
	}
	p, err := predictionPoint(req)
	if err != nil {
		return nil, err
	}

	if err := s.precision.RecordPrediction(ctx, req.SessionID, p); err != nil {
		return nil, s.handleError(ctx, "RecordPrediction", err)
	}
	return pb.Empty(), nil
}

// StreamPredictions consumes predictions until the client closes the stream.
// Points that cannot be recorded are counted, not fatal.
func (s *GRPCHandlers) StreamPredictions(stream pb.GazePrecision_StreamPredictionsServer) error {
	ctx := stream.Context()
	var reply pb.StreamPredictionsReply

	for {
		in, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			out, encErr := encodeReply(reply)
			if encErr != nil {
				return encErr
			}
			return stream.SendAndClose(out)
		}
		if err != nil {
			return s.handleError(ctx, "StreamPredictions", err)
		}

		req, err := decodeRequest[pb.PredictionRequest](in)
		if err != nil {
			reply.Rejected++
			continue
		}
		p, err := predictionPoint(req)
		if err != nil {
			reply.Rejected++
			continue
		}
		if err := s.precision.RecordPrediction(ctx, req.SessionID, p); err != nil {
			s.logger.Debug("prediction rejected", zap.String("session_id", req.SessionID), zap.Error(err))
			reply.Rejected++
			continue
		}
		reply.Accepted++
	}
}

func (s *GRPCHandlers) FinishTest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest[pb.SessionRequest](in)
	if err != nil {
		return nil, err
	}
	if err := requireSessionID(req.SessionID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	res, err := s.precision.FinishTest(ctx, req.SessionID)
	if err != nil {
		return nil, s.handleError(ctx, "FinishTest", err)
	}
	invalidate(ctx, s.cache, summaryKey(req.SessionID), s.logger)

	return encodeReply(pb.FinishTestReply{
		TestID:  res.TestID,
		Target:  string(res.Target),
		Score:   res.Score,
		Mean:    res.Mean,
		StdDev:  res.StdDev,
		Samples: res.Samples,
	})
}

func (s *GRPCHandlers) GetSessionSummary(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest[pb.SessionRequest](in)
	if err != nil {
		return nil, err
	}
	if err := requireSessionID(req.SessionID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	summary, err := FindAndCache(ctx, s.cache, &s.sfGroup, summaryKey(req.SessionID), s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.SessionSummary, error) {
		return s.precision.GetSessionSummary(fetchCtx, req.SessionID)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetSessionSummary", err)
	}

	return encodeReply(s.mapToSummaryReply(summary))
}

// GetActiveTest reports the test currently collecting predictions for a session.
func (s *GRPCHandlers) GetActiveTest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest[pb.SessionRequest](in)
	if err != nil {
		return nil, err
	}
	if err := requireSessionID(req.SessionID); err != nil {
		return nil, err
	}

	info, ok := s.precision.ActiveTest(req.SessionID)
	if !ok {
		return encodeReply(pb.ActiveTestReply{})
	}
	return encodeReply(pb.ActiveTestReply{
		Active:    true,
		TestID:    info.TestID,
		Target:    string(info.Target),
		StartedAt: info.StartedAt,
		Deadline:  info.Deadline,
	})
}

// ListResults returns a session's stored test results, newest first.
func (s *GRPCHandlers) ListResults(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest[pb.SessionRequest](in)
	if err != nil {
		return nil, err
	}
	if err := requireSessionID(req.SessionID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	results, err := s.precision.ListResults(ctx, req.SessionID)
	if err != nil {
		return nil, s.handleError(ctx, "ListResults", err)
	}

	reply := pb.ListResultsReply{
		SessionID: req.SessionID,
		Results:   make([]pb.TestResult, len(results)),
	}
	for i, r := range results {
		reply.Results[i] = pb.TestResult{
			TestID:      r.TestID,
			Target:      string(r.Target),
			Score:       r.Score,
			Mean:        r.Mean,
			StdDev:      r.StdDev,
			Samples:     r.Samples,
			MaxDistance: r.MaxDistance,
			FinishedAt:  r.FinishedAt,
		}
	}
	return encodeReply(reply)
}

// ResultStored drops the cached summary of the result's session. It is
// registered with the precision service so that tests finished by their
// timer are reflected in the next summary.
func (s *GRPCHandlers) ResultStored(res service.TestResult) {
	invalidate(context.Background(), s.cache, summaryKey(res.SessionID), s.logger)
}

func (s *GRPCHandlers) mapToSummaryReply(summary service.SessionSummary) pb.SessionSummaryReply {
	targets := make([]pb.TargetSummary, len(summary.Targets))
	for i, t := range summary.Targets {
		targets[i] = pb.TargetSummary{
			Target:       t.Target,
			TestCount:    t.TestCount,
			AverageScore: t.AverageScore,
			BestScore:    t.BestScore,
			AverageMean:  t.AverageMean,
		}
	}
	return pb.SessionSummaryReply{
		SessionID:    summary.SessionID,
		OverallScore: summary.OverallScore,
		Targets:      targets,
	}
}
