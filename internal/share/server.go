package share

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service name share servers advertise.
const ServiceType = "_annotator._tcp"

// Server runs the share API and optionally advertises it on the LAN.
type Server struct {
	Store     *Store
	Addr      string
	BaseURL   string
	Advertise bool
	Instance  string

	listener net.Listener
}

// Listen binds the address so the actual port is known before serving.
func (s *Server) Listen() (net.Addr, error) {
	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.Addr, err)
	}
	s.listener = l
	return l.Addr(), nil
}

// URL returns the base URL clients should use.
func (s *Server) URL() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	if s.listener == nil {
		return ""
	}
	addr := s.listener.Addr().(*net.TCPAddr)
	host := addr.IP.String()
	if addr.IP.IsUnspecified() {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprint(addr.Port)))
}

// Serve handles requests until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if _, err := s.Listen(); err != nil {
			return err
		}
	}
	srv := &http.Server{
		Handler:           NewHandler(s.Store, s.BaseURL),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.Advertise {
		port := s.listener.Addr().(*net.TCPAddr).Port
		zone, err := Advertise(s.Instance, port)
		if err != nil {
			log.Printf("share: mdns disabled: %v", err)
		} else {
			defer zone.Shutdown()
		}
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Printf("share: serving %s on %s", s.Store.Dir(), s.listener.Addr())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Advertise publishes a share server on port over mDNS.
func Advertise(instance string, port int) (*mdns.Server, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("hostname: %w", err)
		}
		instance = host
	}
	svc, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, []string{"annotator"})
	if err != nil {
		return nil, fmt.Errorf("mdns service: %w", err)
	}
	srv, err := mdns.NewServer(&mdns.Config{Zone: svc})
	if err != nil {
		return nil, fmt.Errorf("mdns server: %w", err)
	}
	return srv, nil
}

// Peer is a discovered share server.
type Peer struct {
	Name string
	URL  string
}

// Browse queries the LAN for share servers for up to timeout.
func Browse(timeout time.Duration) ([]Peer, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	var peers []Peer
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			peers = append(peers, Peer{
				Name: e.Name,
				URL:  fmt.Sprintf("http://%s", net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port))),
			})
		}
	}()
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return nil, fmt.Errorf("mdns browse: %w", err)
	}
	return peers, nil
}
