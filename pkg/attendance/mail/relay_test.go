package mail

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
)

// fakeRelay is a minimal SMTP server that accepts or rejects recipients.
// It only implements the commands the sender uses.
type fakeRelay struct {
	ln     net.Listener
	reject func(rcpt string) bool
	// silent relays accept connections but never greet.
	silent bool

	mu       sync.Mutex
	messages []string
	conns    []net.Conn
	wg       sync.WaitGroup
}

func startFakeRelay(t *testing.T, reject func(rcpt string) bool) *fakeRelay {
	t.Helper()
	return startRelay(t, &fakeRelay{reject: reject})
}

func startSilentRelay(t *testing.T) *fakeRelay {
	t.Helper()
	return startRelay(t, &fakeRelay{silent: true})
}

func startRelay(t *testing.T, r *fakeRelay) *fakeRelay {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	r.ln = ln

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			r.mu.Lock()
			r.conns = append(r.conns, conn)
			r.mu.Unlock()

			r.wg.Add(1)
			go func() {
				defer r.wg.Done()
				r.serve(conn)
			}()
		}
	}()

	t.Cleanup(r.stop)
	return r
}

func (r *fakeRelay) serve(conn net.Conn) {
	defer conn.Close()
	br := bufio.NewReader(conn)
	if r.silent {
		// Block until the client or the test closes the connection.
		_, _ = br.ReadString('\n')
		return
	}

	fmt.Fprintf(conn, "220 localhost Test SMTP Service Ready\r\n")
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
			fmt.Fprintf(conn, "250-localhost Hello\r\n250 OK\r\n")
		case strings.HasPrefix(line, "RCPT TO:"):
			rcpt := strings.Trim(strings.TrimPrefix(line, "RCPT TO:"), "<>")
			if r.reject != nil && r.reject(rcpt) {
				fmt.Fprintf(conn, "550 5.1.1 mailbox unavailable\r\n")
				continue
			}
			fmt.Fprintf(conn, "250 OK\r\n")
		case strings.HasPrefix(line, "DATA"):
			fmt.Fprintf(conn, "354 End data with <CR><LF>.<CR><LF>\r\n")
			var data strings.Builder
			for {
				dline, derr := br.ReadString('\n')
				if derr != nil {
					return
				}
				if strings.TrimSpace(dline) == "." {
					break
				}
				data.WriteString(dline)
			}
			r.mu.Lock()
			r.messages = append(r.messages, data.String())
			r.mu.Unlock()
			fmt.Fprintf(conn, "250 OK: queued as 12345\r\n")
		case strings.HasPrefix(line, "QUIT"):
			fmt.Fprintf(conn, "221 Bye\r\n")
			return
		default:
			fmt.Fprintf(conn, "250 OK\r\n")
		}
	}
}

func (r *fakeRelay) addr() (string, int) {
	tcp := r.ln.Addr().(*net.TCPAddr)
	return tcp.IP.String(), tcp.Port
}

func (r *fakeRelay) received() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func (r *fakeRelay) stop() {
	r.ln.Close()
	r.mu.Lock()
	for _, c := range r.conns {
		c.Close()
	}
	r.mu.Unlock()
	r.wg.Wait()
}
