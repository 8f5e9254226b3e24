package security

import (
	"crypto/tls"
	"net/http"
	"strings"
	"testing"

	"github.com/kbukum/apikit/security/tlstest"
)

func TestTLSConfig_Disabled(t *testing.T) {
	for name, cfg := range map[string]*TLSConfig{"nil": nil, "zero": {}} {
		t.Run(name, func(t *testing.T) {
			if cfg.IsEnabled() {
				t.Error("expected disabled")
			}
			got, err := cfg.Build()
			if got != nil || err != nil {
				t.Errorf("expected nil, nil; got %v, %v", got, err)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TLSConfig
		wantErr string
	}{
		{"server name only", TLSConfig{ServerName: "api"}, ""},
		{"tls 1.3", TLSConfig{MinVersion: "1.3"}, ""},
		{"tls 1.0", TLSConfig{MinVersion: "1.0"}, "min_version"},
		{"cert without key", TLSConfig{CertFile: "cert.pem"}, "cert_file"},
		{"key pem without cert", TLSConfig{KeyPEM: "x"}, "cert_pem"},
		{"two CA sources", TLSConfig{CAFile: "ca.pem", CAPEM: "x"}, "ca"},
		{"two cert sources", TLSConfig{CertFile: "c", KeyFile: "k", CertPEM: "c", KeyPEM: "k"}, "cert"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
			if _, err := tc.cfg.Build(); err == nil {
				t.Error("Build should fail too")
			}
		})
	}
}

func TestTLSConfig_Build(t *testing.T) {
	certs := tlstest.Generate(t)

	tests := []struct {
		name      string
		cfg       TLSConfig
		wantRoots bool
		wantCerts int
		wantMin   uint16
	}{
		{"skip verify", TLSConfig{SkipVerify: true}, false, 0, tls.VersionTLS12},
		{"ca file", TLSConfig{CAFile: certs.CAFile}, true, 0, tls.VersionTLS12},
		{"ca pem", TLSConfig{CAPEM: string(certs.CAPEM), MinVersion: "1.3"}, true, 0, tls.VersionTLS13},
		{"client cert files", TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile}, false, 1, tls.VersionTLS12},
		{"client cert pem", TLSConfig{CertPEM: string(certs.CertPEM), KeyPEM: string(certs.KeyPEM)}, false, 1, tls.VersionTLS12},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.cfg.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if (got.RootCAs != nil) != tc.wantRoots {
				t.Errorf("RootCAs set = %v, want %v", got.RootCAs != nil, tc.wantRoots)
			}
			if len(got.Certificates) != tc.wantCerts {
				t.Errorf("got %d certificates, want %d", len(got.Certificates), tc.wantCerts)
			}
			if got.MinVersion != tc.wantMin {
				t.Errorf("got min version %x, want %x", got.MinVersion, tc.wantMin)
			}
			if got.InsecureSkipVerify != tc.cfg.SkipVerify {
				t.Error("SkipVerify not applied")
			}
		})
	}
}

func TestTLSConfig_BuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TLSConfig
		wantErr string
	}{
		{"missing ca file", TLSConfig{CAFile: "/does/not/exist.pem"}, "tls ca"},
		{"ca without certificates", TLSConfig{CAFile: tlstest.InvalidPEM(t)}, "tls ca"},
		{"missing cert files", TLSConfig{CertFile: "/nope/cert.pem", KeyFile: "/nope/key.pem"}, "tls client certificate"},
		{"garbage cert pem", TLSConfig{CertPEM: "x", KeyPEM: "y"}, "tls client certificate"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cfg.Build()
			if err == nil || !strings.HasPrefix(err.Error(), tc.wantErr) {
				t.Errorf("expected %q error, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestTLSConfig_TrustsGeneratedServer(t *testing.T) {
	certs := tlstest.Generate(t)
	srv := tlstest.Server(t, certs, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tlsCfg, err := (&TLSConfig{CAPEM: string(certs.CAPEM)}).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: tlsCfg}}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}

	plain := &http.Client{Transport: &http.Transport{}}
	if _, err := plain.Get(srv.URL); err == nil {
		t.Error("an untrusting client should fail the handshake")
	}
}
