package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkessler/sqlrun"
	"github.com/mkessler/sqlrun/db"
)

// Server accepts TCP clients and runs their SQL scripts as batches. Each
// request line is a JSON object carrying a script; each response line is a
// JSON object carrying per-statement results.
type Server struct {
	listener   net.Listener
	instance   *sqlrun.Instance
	authConfig *AuthConfig
	logger     *slog.Logger
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewServer creates a server backed by the given runner instance. authConfig
// may be nil to disable authentication.
func NewServer(instance *sqlrun.Instance, authConfig *AuthConfig) *Server {
	return &Server{
		instance:   instance,
		authConfig: authConfig,
		logger:     instance.Logger(),
		done:       make(chan struct{}),
	}
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	s.logger.Info("batch server listening", "addr", listener.Addr().String())

	go s.acceptLoop()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				s.logger.Error("accept failed", "error", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	session := uuid.NewString()
	s.logger.Info("client connected", "session", session, "remote", conn.RemoteAddr().String())

	state := &ConnectionState{}
	reader := bufio.NewReader(conn)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				s.logger.Error("read failed", "session", session, "error", err)
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "quit", "exit":
			s.logger.Info("client disconnected", "session", session)
			return
		}

		response := s.handleLine(line, state)

		data, err := EncodeResponse(response)
		if err != nil {
			s.logger.Error("encode failed", "error", err)
			continue
		}
		if _, err := conn.Write(data); err != nil {
			s.logger.Error("write failed", "session", session, "error", err)
			return
		}
	}
}

// handleLine dispatches one request line: AUTH commands first, then script
// requests for connections the auth policy admits.
func (s *Server) handleLine(line string, state *ConnectionState) Response {
	if strings.HasPrefix(strings.ToUpper(line), "AUTH ") {
		return s.handleAuth(line, state)
	}

	if s.authConfig != nil && s.authConfig.Enabled {
		if !state.IsAuthenticated() {
			return Response{Success: false, Error: "authentication required: AUTH JWT <token>"}
		}
		if !state.tokenExpiry.IsZero() && time.Now().After(state.tokenExpiry) {
			state.authenticated = false
			return Response{Success: false, Error: "token expired: re-authenticate"}
		}
	}

	request, err := DecodeRequest([]byte(line))
	if err != nil {
		return Response{Success: false, Error: fmt.Sprintf("invalid request: %v", err)}
	}
	if strings.TrimSpace(request.SQL) == "" {
		return Response{Success: false, Error: "request has no sql"}
	}

	return s.executeScript(request)
}

func (s *Server) executeScript(request Request) Response {
	batch, err := s.instance.RunScript(context.Background(), request.SQL, request.StopOnError)
	if err != nil {
		return Response{Success: false, Error: err.Error()}
	}

	data, _ := json.Marshal(batchResponse(batch))
	return Response{
		Success: batch.Failed == 0,
		Type:    "batch",
		Result:  data,
	}
}

// batchResponse converts a batch outcome into its wire shape.
func batchResponse(batch *db.BatchResult) BatchResponse {
	response := BatchResponse{
		ID:         batch.ID,
		Attempted:  batch.Attempted,
		Succeeded:  batch.Succeeded,
		Failed:     batch.Failed,
		TimeMs:     float64(batch.Elapsed.Microseconds()) / 1000,
		Statements: make([]StatementRecord, 0, len(batch.Results)),
	}

	for _, result := range batch.Results {
		record := StatementRecord{
			Statement: result.Statement,
			Type:      result.Kind.String(),
			Error:     result.Err,
		}
		if result.Rows != nil {
			record.Result = result.Rows.Rows
			record.RowCount = result.RowCount
		} else if result.OK() {
			// Executes report plain success; the affected count rides in
			// row_count when the driver could report one.
			record.Result = true
			if result.Affected >= 0 {
				record.RowCount = int(result.Affected)
			}
		}
		response.Statements = append(response.Statements, record)
	}

	return response
}
