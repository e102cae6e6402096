package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/common"
)

type fakeProber struct {
	ok    atomic.Bool
	calls atomic.Int32
}

func (p *fakeProber) TestConnection(context.Context) bool {
	p.calls.Add(1)
	return p.ok.Load()
}

func (p *fakeProber) Status() constants.ConnectionStatus {
	if p.ok.Load() {
		return constants.ConnectionConnected
	}
	return constants.ConnectionFailed
}

func dial(t *testing.T, srv *Server) healthpb.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func check(t *testing.T, c healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("check %q: %v", service, err)
	}
	return resp.GetStatus()
}

func TestHealthMirrorsConnectivity(t *testing.T) {
	p := &fakeProber{}
	h := NewHealth(p, nil)
	c := dial(t, New(h, nil))

	if got := check(t, c, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("overall = %s", got)
	}
	if got := check(t, c, ExtractionService); got != healthpb.HealthCheckResponse_UNKNOWN {
		t.Errorf("before probe = %s", got)
	}

	if st := h.Probe(context.Background()); st != constants.ConnectionFailed {
		t.Errorf("probe status = %s", st)
	}
	if got := check(t, c, ExtractionService); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("after failed probe = %s", got)
	}

	p.ok.Store(true)
	h.Probe(context.Background())
	if got := check(t, c, ExtractionService); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("after good probe = %s", got)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	p := &fakeProber{}
	h := NewHealth(p, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { h.Run(ctx, 5*time.Millisecond); close(done) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	if p.calls.Load() < 2 {
		t.Errorf("probes = %d", p.calls.Load())
	}
}

func TestUnaryLoggingMapsErrors(t *testing.T) {
	icpt := unaryLogging(common.NewLogger(io.Discard, "error"))
	info := &grpc.UnaryServerInfo{FullMethod: "/test/Method"}

	_, err := icpt(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, fmt.Errorf("document x: %w", common.ErrNotFound)
	})
	if status.Code(err) != codes.NotFound {
		t.Errorf("code = %s", status.Code(err))
	}

	_, err = icpt(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.Unavailable, "down")
	})
	if status.Code(err) != codes.Unavailable {
		t.Errorf("code = %s", status.Code(err))
	}
}
