package server

import (
	"fmt"
	"net/http"
	"strconv"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"

	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/transport/controlfile"
	"trade_pilot/internal/worker"
	"trade_pilot/pkg/errcodes"
	"trade_pilot/pkg/httpx/reply"
	"trade_pilot/pkg/httpx/req"
	"trade_pilot/pkg/rest"
)

const defaultLogLimit = 100

type sessionControl interface {
	controlfile.Controller
	Status() worker.Snapshot
	Journal() []entity.LogLine
}

type SessionServer struct {
	session sessionControl
}

func NewSessionServer(session sessionControl) SessionServer {
	return SessionServer{
		session: session,
	}
}

func (s SessionServer) getV1Session(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, newRESTSession(s.session.Status()))

	return nil
}

func (s SessionServer) getV1SessionLog(w http.ResponseWriter, r *http.Request) error {
	limit := defaultLogLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return failure.NewInvalidArgumentError(
				fmt.Sprintf("invalid limit %q", raw),
				failure.WithCode(errcodes.ValidationError),
				failure.WithDescription("limit must be a non-negative integer"),
			)
		}
		limit = n
	}

	lines := s.session.Journal()
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	reply.JSON(r.Context(), w, http.StatusOK, newRESTLog(lines))

	return nil
}

func (s SessionServer) postV1SessionControl(w http.ResponseWriter, r *http.Request) error {
	var request rest.ControlRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	return s.apply(w, r, request.Command)
}

func (s SessionServer) postV1SessionCommand(w http.ResponseWriter, r *http.Request) error {
	return s.apply(w, r, chi.URLParam(r, "command"))
}

func (s SessionServer) apply(w http.ResponseWriter, r *http.Request, raw string) error {
	ctx := r.Context()

	command, ok, err := controlfile.ParseCommand(raw)
	if err != nil || !ok {
		return failure.NewInvalidArgumentError(
			fmt.Sprintf("invalid command %q", raw),
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription("command must be one of pause, resume, toggle, skip, stop"),
		)
	}

	if !s.session.Status().Running {
		reply.JSON(ctx, w, http.StatusConflict, rest.Error{
			Code:    rest.ErrorCode(errcodes.SessionNotRunning),
			Message: "session is not running",
		})

		return nil
	}

	controlfile.Apply(s.session, command)

	reply.JSON(ctx, w, http.StatusAccepted, newRESTSession(s.session.Status()))

	return nil
}
