package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/kbukum/apikit/validation"
)

// MinVersions lists the accepted values of TLSConfig.MinVersion.
var MinVersions = []string{"1.2", "1.3"}

// TLSConfig is the TLS setup of an API client transport. Certificates can be
// given as files or inline PEM, the latter suiting values injected through
// the environment.
type TLSConfig struct {
	// SkipVerify disables server certificate verification.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`
	// ServerName overrides the name checked against the server certificate.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`
	// MinVersion is "1.2" (default) or "1.3".
	MinVersion string `yaml:"min_version" mapstructure:"min_version"`

	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`
	CAPEM  string `yaml:"ca_pem" mapstructure:"ca_pem"`

	// Client certificate for mutual TLS.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`
	CertPEM  string `yaml:"cert_pem" mapstructure:"cert_pem"`
	KeyPEM   string `yaml:"key_pem" mapstructure:"key_pem"`
}

// IsEnabled reports whether any setting is present.
func (c *TLSConfig) IsEnabled() bool {
	return c != nil && *c != TLSConfig{}
}

// Validate checks that settings are consistent without touching files.
func (c *TLSConfig) Validate() error {
	if !c.IsEnabled() {
		return nil
	}
	v := validation.New().
		Custom(c.CAFile == "" || c.CAPEM == "", "ca", "set ca_file or ca_pem, not both").
		Custom((c.CertFile == "") == (c.KeyFile == ""), "cert_file", "cert_file and key_file go together").
		Custom((c.CertPEM == "") == (c.KeyPEM == ""), "cert_pem", "cert_pem and key_pem go together").
		Custom(c.CertFile == "" || c.CertPEM == "", "cert", "set cert files or cert PEM, not both")
	if c.MinVersion != "" {
		v.OneOf("min_version", c.MinVersion, MinVersions)
	}
	return v.Err()
}

// Build returns the *tls.Config for the settings, or nil when none are set.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify,
		ServerName:         c.ServerName,
		MinVersion:         tls.VersionTLS12,
	}
	if c.MinVersion == "1.3" {
		cfg.MinVersion = tls.VersionTLS13
	}

	ca, err := pemOrFile(c.CAPEM, c.CAFile)
	if err != nil {
		return nil, fmt.Errorf("tls ca: %w", err)
	}
	if ca != nil {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(ca) {
			return nil, fmt.Errorf("tls ca: no certificates found")
		}
		cfg.RootCAs = pool
	}

	cert, err := c.clientCert()
	if err != nil {
		return nil, fmt.Errorf("tls client certificate: %w", err)
	}
	if cert != nil {
		cfg.Certificates = []tls.Certificate{*cert}
	}
	return cfg, nil
}

func (c *TLSConfig) clientCert() (*tls.Certificate, error) {
	switch {
	case c.CertPEM != "":
		cert, err := tls.X509KeyPair([]byte(c.CertPEM), []byte(c.KeyPEM))
		return &cert, err
	case c.CertFile != "":
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		return &cert, err
	}
	return nil, nil
}

func pemOrFile(inline, path string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}
