package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"

	"ctrnf-scores/internal/domain"
	"ctrnf-scores/internal/repository"
	"ctrnf-scores/internal/service"
)

const ScoresCalculationName = "scores.v1.ScoresCalculation"

const (
	ParseTableProcedure       = "/" + ScoresCalculationName + "/ParseTable"
	ResolveTableProcedure     = "/" + ScoresCalculationName + "/ResolveTable"
	SubmitTableProcedure      = "/" + ScoresCalculationName + "/SubmitTable"
	DeleteSubmissionProcedure = "/" + ScoresCalculationName + "/DeleteSubmission"
)

type ScoresServer struct {
	resolver    *service.ResolutionService
	submissions *service.SubmissionService
	logger      zerolog.Logger
}

func NewScoresServer(resolver *service.ResolutionService, submissions *service.SubmissionService, logger zerolog.Logger) *ScoresServer {
	return &ScoresServer{resolver: resolver, submissions: submissions, logger: logger}
}

// NewScoresHandler mounts every procedure under the service path.
func NewScoresHandler(s *ScoresServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ParseTableProcedure, connect.NewUnaryHandler(ParseTableProcedure, s.ParseTable, opts...))
	mux.Handle(ResolveTableProcedure, connect.NewUnaryHandler(ResolveTableProcedure, s.ResolveTable, opts...))
	mux.Handle(SubmitTableProcedure, connect.NewUnaryHandler(SubmitTableProcedure, s.SubmitTable, opts...))
	mux.Handle(DeleteSubmissionProcedure, connect.NewUnaryHandler(DeleteSubmissionProcedure, s.DeleteSubmission, opts...))
	return "/" + ScoresCalculationName + "/", mux
}

func (s *ScoresServer) ParseTable(ctx context.Context, req *connect.Request[ParseTableRequest]) (*connect.Response[ParseTableResponse], error) {
	m, err := s.resolver.Parse(req.Msg.Text)
	if err != nil {
		return nil, s.toConnectError(ctx, "ParseTable", err)
	}
	return connect.NewResponse(&ParseTableResponse{Match: toMatch(m)}), nil
}

func (s *ScoresServer) ResolveTable(ctx context.Context, req *connect.Request[ResolveTableRequest]) (*connect.Response[ResolveTableResponse], error) {
	res, err := s.resolver.Resolve(ctx, req.Msg.Text)
	if err != nil {
		return nil, s.toConnectError(ctx, "ResolveTable", err)
	}
	return connect.NewResponse(toResolveResponse(res)), nil
}

func (s *ScoresServer) SubmitTable(ctx context.Context, req *connect.Request[SubmitTableRequest]) (*connect.Response[SubmitTableResponse], error) {
	sub, res, err := s.submissions.Submit(ctx, req.Msg.Text, req.Msg.Author)
	if sub == nil {
		return nil, s.toConnectError(ctx, "SubmitTable", err)
	}

	resp := &SubmitTableResponse{SubmissionID: sub.ID, Template: sub.Template}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("id", sub.ID).Msg("stored submission could not be resolved")
		resp.Error = domain.Explain(err)
	} else {
		resp.Resolution = toResolveResponse(res)
	}
	return connect.NewResponse(resp), nil
}

func (s *ScoresServer) DeleteSubmission(ctx context.Context, req *connect.Request[DeleteSubmissionRequest]) (*connect.Response[DeleteSubmissionResponse], error) {
	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("submission id is required"))
	}
	if err := s.submissions.Withdraw(ctx, req.Msg.ID); err != nil {
		return nil, s.toConnectError(ctx, "DeleteSubmission", err)
	}
	return connect.NewResponse(&DeleteSubmissionResponse{}), nil
}

func toResolveResponse(res *service.Resolution) *ResolveTableResponse {
	return &ResolveTableResponse{
		Match:     toMatch(res.Match),
		Results:   toResults(res.Results),
		Submitted: res.Submitted,
		MatchID:   res.MatchID,
		Replayed:  res.Replayed,
	}
}

func (s *ScoresServer) toConnectError(ctx context.Context, procedure string, err error) *connect.Error {
	code, explain := connect.CodeInternal, true
	switch {
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrValidation):
		code = connect.CodeInvalidArgument
	case errors.Is(err, domain.ErrRemoteUnavailable):
		code = connect.CodeUnavailable
	case errors.Is(err, domain.ErrResolutionNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, repository.ErrSubmissionNotFound):
		code, explain = connect.CodeNotFound, false
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	}

	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &s.logger
	}
	logger.Warn().Err(err).Str("procedure", procedure).Str("code", code.String()).Msg("request failed")

	if !explain {
		return connect.NewError(code, err)
	}
	explanation := strings.ReplaceAll(domain.Explain(err), "\n", " ")
	return connect.NewError(code, fmt.Errorf("%s: %w", explanation, err))
}
