package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"lm500_emulator/internal/logger"
)

const terminator = "\r\n"

// Server answers the instrument's line protocol on any number of
// connections. All connections share one Dispatcher.
type Server struct {
	disp *Dispatcher
	log  *logger.Logger

	mu    sync.Mutex
	conns map[io.Closer]struct{}
	wg    sync.WaitGroup
}

func NewServer(dev DeviceRunner, log *logger.Logger) *Server {
	return &Server{
		disp:  NewDispatcher(dev),
		log:   log,
		conns: make(map[io.Closer]struct{}),
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.log.Infow("stream_listening", "addr", ln.Addr().String())
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes every
// open connection and waits for their reader loops to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = ln.Close()
		s.closeAll()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.closeAll()
			s.wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.ServeConn(ctx, conn, conn.RemoteAddr().String())
		}()
	}
}

// ServeConn runs the request loop on one byte stream until it is closed or
// fails. rwc is closed on return.
func (s *Server) ServeConn(ctx context.Context, rwc io.ReadWriteCloser, peer string) {
	if !s.track(rwc) {
		_ = rwc.Close()
		return
	}
	defer s.untrack(rwc)

	log := s.log.With("peer", peer)
	log.Debugw("stream_connected")

	r := bufio.NewReader(rwc)
	for {
		line, err := r.ReadString('\n')
		if req := strings.TrimRight(line, terminator); req != "" {
			if werr := s.handle(log, rwc, req); werr != nil {
				log.Warnw("stream_write_failed", "error", werr)
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				log.Warnw("stream_read_failed", "error", err)
			}
			log.Debugw("stream_disconnected")
			return
		}
	}
}

func (s *Server) handle(log *logger.Logger, w io.Writer, req string) error {
	reply, ok, err := s.disp.Dispatch(req)
	if err != nil {
		log.Errorw("request_failed", "request", req, "error", err)
		return nil
	}
	log.Debugw("request", "request", req, "reply", reply)
	if !ok {
		return nil
	}
	_, err = io.WriteString(w, reply+terminator)
	return err
}

// track registers c unless the server is already shutting down.
func (s *Server) track(c io.Closer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c io.Closer) {
	s.mu.Lock()
	if s.conns != nil {
		delete(s.conns, c)
	}
	s.mu.Unlock()
	_ = c.Close()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()
	for c := range conns {
		_ = c.Close()
	}
}
