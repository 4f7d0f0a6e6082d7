// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package services

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

func TestHTTPServerServiceServesAndShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "ok")
		}),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(server, "ignored", time.Second)
	svc.listen = func(string, string) (net.Listener, error) { return ln, nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestHTTPServerServiceListenError(t *testing.T) {
	svc := NewHTTPServerService(&http.Server{ReadHeaderTimeout: time.Second}, "127.0.0.1:1", 0)
	svc.listen = func(string, string) (net.Listener, error) {
		return nil, errors.New("address already in use")
	}
	err := svc.Serve(context.Background())
	if err == nil || !strings.Contains(err.Error(), "address already in use") {
		t.Errorf("Serve() = %v, want listen error", err)
	}
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("shutdownTimeout = %v, want default 10s", svc.shutdownTimeout)
	}
}

type failingServer struct{ err error }

func (f failingServer) Serve(ln net.Listener) error {
	ln.Close()
	return f.err
}

func (failingServer) Shutdown(context.Context) error { return nil }

func TestHTTPServerServiceServeError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"crash", errors.New("accept failed"), true},
		{"closed externally", http.ErrServerClosed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				t.Fatal(err)
			}
			svc := NewHTTPServerService(failingServer{err: tt.err}, "", time.Second)
			svc.listen = func(string, string) (net.Listener, error) { return ln, nil }

			err = svc.Serve(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Serve() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
