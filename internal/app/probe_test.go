package app

import (
	"context"
	"errors"
	"testing"

	"github.com/fold-labs/fahlink/internal/domain"
)

func TestProbe_ReturnsMachineIdentity(t *testing.T) {
	conn := newFakeConn("ping", `{"info":{"id":"m1","mach_name":"rig","version":"8.3"}}`)
	dialer := &fakeDialer{}
	dialer.expect(conn)

	machine, err := Probe(context.Background(), dialer, testConfig())
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}

	want := domain.Machine{ID: "m1", Name: "rig", Version: "8.3"}
	if machine != want {
		t.Errorf("machine = %+v, want %+v", machine, want)
	}

	// Probe must not leave the connection open.
	select {
	case <-conn.closeCh:
	default:
		t.Error("probe connection should be closed")
	}
}

func TestProbe_DialFailure(t *testing.T) {
	dialer := &fakeDialer{}

	_, err := Probe(context.Background(), dialer, testConfig())
	if !errors.Is(err, domain.ErrConnectFailed) {
		t.Errorf("Probe = %v, want ErrConnectFailed", err)
	}
}

func TestProbe_InvalidPayload(t *testing.T) {
	dialer := &fakeDialer{}
	dialer.expect(newFakeConn("not json"))

	_, err := Probe(context.Background(), dialer, testConfig())
	if !errors.Is(err, domain.ErrConnectFailed) {
		t.Errorf("Probe = %v, want ErrConnectFailed", err)
	}
}
