package mcpquic

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"strings"
	"testing"
)

func TestMagicBytes_Roundtrip(t *testing.T) {
	var buf bytes.Buffer
	if err := SendMagicBytes(&buf); err != nil {
		t.Fatalf("send: %v", err)
	}
	if buf.String() != "MCP1" {
		t.Fatalf("preamble = %q, want MCP1", buf.String())
	}
	if err := ValidateMagicBytes(&buf); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateMagicBytes_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		wire  string
	}{
		{"http request", "HTTP"},
		{"truncated", "MC"},
		{"empty", ""},
		{"wrong case", "mcp1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMagicBytes(strings.NewReader(tt.wire))
			if !errors.Is(err, ErrInvalidMagicBytes) {
				t.Errorf("err = %v, want ErrInvalidMagicBytes", err)
			}
		})
	}
}

func TestValidateMagicBytes_ConsumesExactlyPreamble(t *testing.T) {
	r := strings.NewReader(MagicBytesMCP + `{"jsonrpc":"2.0"}`)
	if err := ValidateMagicBytes(r); err != nil {
		t.Fatalf("validate: %v", err)
	}
	rest := make([]byte, r.Len())
	r.Read(rest)
	if string(rest) != `{"jsonrpc":"2.0"}` {
		t.Errorf("remaining stream = %q, preamble read too much or too little", rest)
	}
}

func TestProductionQUICConfig(t *testing.T) {
	cfg := ProductionQUICConfig()
	if cfg.MaxIdleTimeout != DefaultIdleTimeout {
		t.Errorf("MaxIdleTimeout = %v, want %v", cfg.MaxIdleTimeout, DefaultIdleTimeout)
	}
	if cfg.KeepAlivePeriod != DefaultKeepAlive {
		t.Errorf("KeepAlivePeriod = %v, want %v", cfg.KeepAlivePeriod, DefaultKeepAlive)
	}
	if cfg.Allow0RTT {
		t.Error("0-RTT must stay disabled")
	}
}

func TestSelfSignedTLSConfig(t *testing.T) {
	cfg, err := SelfSignedTLSConfig()
	if err != nil {
		t.Fatalf("SelfSignedTLSConfig: %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Fatalf("certificates = %d, want 1", len(cfg.Certificates))
	}
	if cfg.MinVersion != tls.VersionTLS13 {
		t.Errorf("MinVersion = %x, want TLS 1.3", cfg.MinVersion)
	}
	found := false
	for _, p := range cfg.NextProtos {
		if p == ALPNProtocolMCP {
			found = true
		}
	}
	if !found {
		t.Errorf("NextProtos = %v, missing %q", cfg.NextProtos, ALPNProtocolMCP)
	}
}

func TestClientTLSConfig(t *testing.T) {
	secure := ClientTLSConfig(false)
	if secure.InsecureSkipVerify {
		t.Error("secure config must verify the server certificate")
	}
	if secure.MinVersion != tls.VersionTLS13 {
		t.Errorf("MinVersion = %x, want TLS 1.3", secure.MinVersion)
	}

	insecure := ClientTLSConfig(true)
	if !insecure.InsecureSkipVerify {
		t.Error("insecure config must skip verification")
	}
}

func TestH3TLSConfig_DoesNotMutateBase(t *testing.T) {
	base, err := SelfSignedTLSConfig()
	if err != nil {
		t.Fatal(err)
	}
	h3 := H3TLSConfig(base)

	if len(h3.NextProtos) != 1 || h3.NextProtos[0] != "h3" {
		t.Errorf("h3 NextProtos = %v, want [h3]", h3.NextProtos)
	}
	if base.NextProtos[0] == "h3" {
		t.Error("base NextProtos mutated")
	}
	if h3.MinVersion != base.MinVersion || len(h3.Certificates) != len(base.Certificates) {
		t.Error("h3 config must carry the base version and certificates")
	}
}

func TestConnectionError_Format(t *testing.T) {
	inner := errors.New("idle timeout")
	ce := &ConnectionError{
		RemoteAddr: "192.0.2.1:4433",
		Code:       ConnErrorProtocolViolation,
		Err:        inner,
	}

	msg := ce.Error()
	if !strings.Contains(msg, "192.0.2.1:4433") {
		t.Errorf("message %q missing remote addr", msg)
	}
	if !strings.Contains(msg, "0x03") {
		t.Errorf("message %q missing hex code", msg)
	}
	if !errors.Is(ce, inner) {
		t.Error("errors.Is must see the wrapped cause")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("localhost:4433", nil)
	if c.addr != "localhost:4433" {
		t.Errorf("addr = %q", c.addr)
	}
	if c.tlsCfg == nil || c.tlsCfg.InsecureSkipVerify {
		t.Error("nil TLS config must default to verifying the server")
	}

	custom := ClientTLSConfig(true)
	if c2 := NewClient("srv:9000", custom); c2.tlsCfg != custom {
		t.Error("explicit TLS config not kept")
	}
}

func TestClient_SessionOpsBeforeConnect(t *testing.T) {
	c := NewClient("localhost:4433", nil)
	ctx := context.Background()

	if _, err := c.ListTools(ctx); !errors.Is(err, ErrNotConnected) {
		t.Errorf("ListTools err = %v, want ErrNotConnected", err)
	}
	if _, err := c.CallTool(ctx, "validate_locator", nil); !errors.Is(err, ErrNotConnected) {
		t.Errorf("CallTool err = %v, want ErrNotConnected", err)
	}
	if err := c.Ping(ctx); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Ping err = %v, want ErrNotConnected", err)
	}
}
