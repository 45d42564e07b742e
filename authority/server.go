// Package authority implements the proof-serving side of the protocol: a
// single-threaded server that multiplexes every client connection over one
// epoll-driven control loop, with no goroutine per connection.
package authority

import (
	"fmt"
	"log"
	"sync"

	"golang.org/x/sys/unix"

	"merkle-validity-service/service"
	"merkle-validity-service/wire"
)

const readChunk = 256

// conn is the per-connection state owned by the control loop: the socket
// and whatever bytes arrived ahead of a complete request unit.
type conn struct {
	fd  int
	buf []byte
}

// Server accepts verification clients and answers each proof request with
// the stream its ProofSource returns. All connections are serviced by the
// one goroutine running Serve; proof writes happen synchronously inside the
// event that triggered them, so a slow reader delays the whole loop. That
// keeps the loop free of shared state but bounds throughput; pipelined
// writes would lift it.
type Server struct {
	source service.ProofSource

	lfd   int
	port  int
	ep    *poller
	conns map[int]*conn

	wakeR, wakeW int
	closeOnce    sync.Once
}

// Listen binds the authority to 127.0.0.1 on the given port. Port 0 picks a
// free port; Port reports the one bound.
func Listen(port int, source service.ProofSource) (*Server, error) {
	lfd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open listening socket: %w", err)
	}
	if err := unix.SetsockoptInt(lfd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(lfd)
		return nil, err
	}

	sa := &unix.SockaddrInet4{Port: port, Addr: [4]byte{127, 0, 0, 1}}
	if err := unix.Bind(lfd, sa); err != nil {
		unix.Close(lfd)
		return nil, fmt.Errorf("bind port %d: %w", port, err)
	}
	if err := unix.Listen(lfd, unix.SOMAXCONN); err != nil {
		unix.Close(lfd)
		return nil, fmt.Errorf("listen: %w", err)
	}

	bound, err := unix.Getsockname(lfd)
	if err != nil {
		unix.Close(lfd)
		return nil, err
	}
	port = bound.(*unix.SockaddrInet4).Port

	ep, err := newPoller()
	if err != nil {
		unix.Close(lfd)
		return nil, err
	}

	var pipe [2]int
	if err := unix.Pipe2(pipe[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		ep.close()
		unix.Close(lfd)
		return nil, err
	}

	s := &Server{
		source: source,
		lfd:    lfd,
		port:   port,
		ep:     ep,
		conns:  make(map[int]*conn),
		wakeR:  pipe[0],
		wakeW:  pipe[1],
	}
	if err := ep.add(lfd); err != nil {
		s.teardown()
		return nil, err
	}
	if err := ep.add(s.wakeR); err != nil {
		s.teardown()
		return nil, err
	}
	return s, nil
}

// Port returns the port the server is bound to.
func (s *Server) Port() int {
	return s.port
}

// Serve runs the control loop until Close is called. It blocks only on
// readiness of the listening socket or an open connection, services every
// ready descriptor once, and goes back to waiting.
func (s *Server) Serve() error {
	log.Printf("authority listening on 127.0.0.1:%d", s.port)
	events := make([]unix.EpollEvent, 64)
	for {
		n, err := s.ep.wait(events)
		if err != nil {
			s.teardown()
			return fmt.Errorf("poll: %w", err)
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			switch fd {
			case s.lfd:
				s.acceptReady()
			case s.wakeR:
				s.teardown()
				return nil
			default:
				if c, ok := s.conns[fd]; ok {
					s.connReady(c)
				}
			}
		}
	}
}

// Close wakes the control loop and makes Serve return after closing every
// connection. Safe to call from any goroutine, once or many times.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		unix.Write(s.wakeW, []byte{0})
	})
}

func (s *Server) acceptReady() {
	for {
		fd, _, err := unix.Accept4(s.lfd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err == unix.EAGAIN {
			return
		}
		if err != nil {
			log.Printf("accept failed: %v", err)
			return
		}
		if err := s.ep.add(fd); err != nil {
			log.Printf("register connection: %v", err)
			unix.Close(fd)
			continue
		}
		s.conns[fd] = &conn{fd: fd}
		log.Printf("connection accepted (fd %d)", fd)
	}
}

// connReady drains what the socket has and answers every complete request
// in it. Any per-connection failure drops that connection only; the loop
// itself never stops on one.
func (s *Server) connReady(c *conn) {
	chunk := make([]byte, readChunk)
	n, err := unix.Read(c.fd, chunk)
	if err == unix.EAGAIN {
		return
	}
	if err != nil {
		log.Printf("read from client (fd %d): %v", c.fd, err)
		s.drop(c)
		return
	}
	if n == 0 {
		// peer closed without the session-end marker
		s.drop(c)
		return
	}
	c.buf = append(c.buf, chunk[:n]...)

	for {
		unit, rest, ok := wire.NextUnit(c.buf)
		if !ok {
			return
		}
		c.buf = rest
		if unit == "" {
			continue
		}
		req, err := wire.ParseRequest(unit)
		if err != nil {
			log.Printf("malformed request (fd %d): %v", c.fd, err)
			s.drop(c)
			return
		}
		log.Printf("request received: %s : %s", req.Label, req.Item)
		if req.EndSession() {
			log.Printf("exit request received: closing the connection (fd %d)", c.fd)
			s.drop(c)
			return
		}
		if !s.sendProof(c, req.Item) {
			return
		}
	}
}

// sendProof writes the full proof stream for item before returning control
// to the loop. Reports whether the connection is still usable.
func (s *Server) sendProof(c *conn, item string) bool {
	nodes, err := s.source.Lookup(item)
	if err != nil {
		// unknown item: the bare terminator tells the client the proof is
		// empty, which it will classify as invalid
		log.Printf("proof lookup for %s: %v", item, err)
		nodes = nil
	}
	if err := wire.WriteProofStream(fdWriter(c.fd), nodes); err != nil {
		log.Printf("send proof to client (fd %d): %v", c.fd, err)
		s.drop(c)
		return false
	}
	log.Printf("all %d nodes sent for item %s", len(nodes), item)
	return true
}

func (s *Server) drop(c *conn) {
	s.ep.remove(c.fd)
	unix.Close(c.fd)
	delete(s.conns, c.fd)
}

func (s *Server) teardown() {
	for _, c := range s.conns {
		s.drop(c)
	}
	unix.Close(s.lfd)
	unix.Close(s.wakeR)
	unix.Close(s.wakeW)
	s.ep.close()
}

// fdWriter adapts a non-blocking socket to io.Writer with blocking
// semantics: EAGAIN waits for writability and retries until the buffer is
// fully out.
type fdWriter int

func (fd fdWriter) Write(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := unix.Write(int(fd), p[total:])
		if n > 0 {
			total += n
		}
		switch err {
		case nil:
		case unix.EINTR:
		case unix.EAGAIN:
			pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
			if _, perr := unix.Poll(pfd, -1); perr != nil && perr != unix.EINTR {
				return total, perr
			}
		default:
			return total, err
		}
	}
	return total, nil
}
