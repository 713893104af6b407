package main

import (
	"bufio"
	"context"
	"encoding/json"
	"net"

	"github.com/rs/zerolog/log"

	"github.com/ahinestrog/mercadinho/wire"
)

// Server accepts TCP connections and runs one session per connection. A
// session reads one request line, writes one reply line, repeats. All state
// lives in the Market; the server only shuttles messages.
type Server struct {
	market *Market
	ln     net.Listener
}

func NewServer(market *Market, addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{market: market, ln: ln}, nil
}

func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Serve blocks until the context is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.handle(conn)
	}
}

// handle runs one session. The deferred disconnect is the single cleanup
// path: graceful QUIT, client EOF, read errors and malformed streams all end
// here, and the abandoned cart goes back to stock exactly once.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	id, err := s.market.Connect()
	if err != nil {
		log.Error().Err(err).Str("remote", remote).Msg("session registration failed")
		return
	}
	defer func() {
		if err := s.market.Disconnect(id); err != nil {
			log.Error().Err(err).Str("session", string(id)).Msg("disconnect cleanup failed")
		}
	}()

	log.Info().Str("remote", remote).Str("session", string(id)).Msg("client connected")

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req wire.Request
		var resp wire.Response
		if err := json.Unmarshal(line, &req); err != nil {
			log.Debug().Str("session", string(id)).Msg("malformed request json")
			resp = resultResponse(wire.RespError, wire.Result{
				Status:  wire.StatusError,
				Code:    wire.CodeInvalidRequest,
				Message: "malformed json request",
			})
		} else {
			resp = dispatch(s.market, id, req)
		}

		if err := writeResponse(conn, resp); err != nil {
			log.Debug().Err(err).Str("session", string(id)).Msg("write reply failed")
			return
		}
		if req.Type == wire.CmdQuit {
			log.Info().Str("session", string(id)).Msg("client signed off")
			return
		}
	}

	if err := scanner.Err(); err != nil {
		log.Debug().Err(err).Str("remote", remote).Msg("connection dropped")
	}
}

func writeResponse(conn net.Conn, resp wire.Response) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = conn.Write(append(body, '\n'))
	return err
}
