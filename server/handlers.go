package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hupe1980/notomate/agent"
	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/graph"
	"github.com/hupe1980/notomate/runner"
	"github.com/hupe1980/notomate/session"
)

type routeDoc struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var routeDocs = []routeDoc{
	{"GET", "/healthz", "Liveness probe"},
	{"POST", "/notion-agent/invoke", "Ask the Notion agent. Body: {input, chat_history: [[human, ai], ...]}. Reply: {output}"},
	{"POST", "/notion-agent/stream", "Same as invoke, streamed as server-sent events"},
	{"POST", "/supervisor/invoke", "Ask the supervisor. Body: {messages: [{role, content, name}], session_id?}. Reply: {output, messages}. " + sessionModeDoc},
	{"POST", "/supervisor/stream", "Same as invoke, streamed as server-sent events. " + sessionModeDoc},
	{"POST", "/sessions", "Create a conversation session. Reply: {session_id}"},
	{"DELETE", "/sessions/{id}", "Forget a conversation session. 204 on success, 404 for an unknown id"},
}

const sessionModeDoc = "With session_id the stored history is used and only the last user message of messages is read; every other message is ignored."

func (s *Server) handleDocs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"title":  "NotoMate",
		"routes": routeDocs,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) decodeAgentRequest(w http.ResponseWriter, r *http.Request) (*AgentInvokeRequest, []core.Message, bool) {
	var req AgentInvokeRequest
	if !decodeBody(w, r, &req) {
		return nil, nil, false
	}
	if strings.TrimSpace(req.Input) == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return nil, nil, false
	}
	return &req, formatChatHistory(req.ChatHistory, agent.NotesSpecialistName), true
}

func (s *Server) handleAgentInvoke(w http.ResponseWriter, r *http.Request) {
	req, history, ok := s.decodeAgentRequest(w, r)
	if !ok {
		return
	}

	res, err := s.asker.Ask(r.Context(), history, req.Input, nil)
	if err != nil {
		s.writeTurnError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AgentInvokeResponse{Output: res.Output})
}

func (s *Server) handleAgentStream(w http.ResponseWriter, r *http.Request) {
	req, history, ok := s.decodeAgentRequest(w, r)
	if !ok {
		return
	}

	sse, ok := newEventStream(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	res, err := s.asker.Ask(r.Context(), history, req.Input, sse.forward)
	if err != nil {
		s.logger.Error("server.stream.error", "path", r.URL.Path, "error", err.Error())
		sse.send("error", ErrorResponse{Error: err.Error()})
		return
	}

	sse.send("end", AgentInvokeResponse{Output: res.Output})
}

func (s *Server) handleSupervisorInvoke(w http.ResponseWriter, r *http.Request) {
	var req SupervisorInvokeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.SessionID != "" {
		input, ok := lastUserText(req.Messages)
		if !ok {
			writeError(w, http.StatusBadRequest, "a user message is required")
			return
		}

		turn, err := s.runner.RunSync(r.Context(), req.SessionID, input)
		if err != nil {
			s.writeTurnError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, SupervisorInvokeResponse{
			Output:    turn.Result.Message.Text(),
			Messages:  toWireAll(turn.Result.Messages),
			SessionID: req.SessionID,
		})
		return
	}

	history, err := fromWire(req.Messages)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(history) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}

	res, err := s.graph.Run(r.Context(), "", history, nil)
	if err != nil {
		s.writeTurnError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SupervisorInvokeResponse{
		Output:   res.Message.Text(),
		Messages: toWireAll(res.Messages),
	})
}

func (s *Server) handleSupervisorStream(w http.ResponseWriter, r *http.Request) {
	var req SupervisorInvokeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var history []core.Message
	input, hasInput := lastUserText(req.Messages)
	if req.SessionID == "" {
		var err error
		if history, err = fromWire(req.Messages); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(history) == 0 {
			writeError(w, http.StatusBadRequest, "messages are required")
			return
		}
	} else if !hasInput {
		writeError(w, http.StatusBadRequest, "a user message is required")
		return
	}

	if req.SessionID != "" {
		_, eventsCh, errorsCh, err := s.runner.Run(r.Context(), req.SessionID, input)
		if err != nil {
			s.writeTurnError(w, err)
			return
		}

		sse, ok := newEventStream(w)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		var last core.Message
		for ev := range eventsCh {
			if ev.Message != nil && ev.Message.IsFinalAnswer() {
				last = *ev.Message
			}
			sse.forward(ev)
		}
		if err := <-errorsCh; err != nil {
			sse.send("error", ErrorResponse{Error: err.Error()})
			return
		}

		sse.send("end", SupervisorInvokeResponse{Output: last.Text(), SessionID: req.SessionID})
		return
	}

	sse, ok := newEventStream(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	res, err := s.graph.Run(r.Context(), "", history, sse.forward)
	if err != nil {
		s.logger.Error("server.stream.error", "path", r.URL.Path, "error", err.Error())
		sse.send("error", ErrorResponse{Error: err.Error()})
		return
	}

	sse.send("end", SupervisorInvokeResponse{Output: res.Message.Text(), Messages: toWireAll(res.Messages)})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess, err := s.runner.Sessions().Create()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: sess.ID})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	err := s.runner.Sessions().Delete(r.PathValue("id"))
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeTurnError maps turn failures onto status codes.
func (s *Server) writeTurnError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, runner.ErrSessionBusy):
		status = http.StatusConflict
	case errors.Is(err, graph.ErrContractViolation), errors.Is(err, graph.ErrStepLimit):
		status = http.StatusBadGateway
	}

	s.logger.Error("server.turn.error", "status", status, "error", err.Error())
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
