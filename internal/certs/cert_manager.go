package certs

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

// RenewWindow is how long before expiry a certificate is reported as due for
// renewal.
const RenewWindow = 30 * 24 * time.Hour

// CertManager loads the key pair the shell serves TLS with.
type CertManager struct {
	certFile string
	keyFile  string
}

// NewCertManager creates a new CertManager for the given PEM files.
func NewCertManager(certFile, keyFile string) *CertManager {
	return &CertManager{certFile: certFile, keyFile: keyFile}
}

// LoadCertificate loads the key pair and parses its leaf certificate.
func (cm *CertManager) LoadCertificate() (tls.Certificate, *x509.Certificate, error) {
	pair, err := tls.LoadX509KeyPair(cm.certFile, cm.keyFile)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("load key pair: %w", err)
	}
	if len(pair.Certificate) == 0 {
		return tls.Certificate{}, nil, errors.New("load key pair: no certificate in " + cm.certFile)
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("parse certificate: %w", err)
	}
	pair.Leaf = leaf
	return pair, leaf, nil
}

// TLSConfig returns a server config for the key pair. Expired certificates
// are refused.
func (cm *CertManager) TLSConfig() (*tls.Config, *x509.Certificate, error) {
	pair, leaf, err := cm.LoadCertificate()
	if err != nil {
		return nil, nil, err
	}
	if IsExpired(leaf, time.Now()) {
		return nil, leaf, fmt.Errorf("certificate %s expired at %s", cm.certFile, leaf.NotAfter.Format(time.RFC3339))
	}
	return &tls.Config{
		Certificates: []tls.Certificate{pair},
		MinVersion:   tls.VersionTLS12,
	}, leaf, nil
}

// IsExpired checks if a certificate is expired at now.
func IsExpired(cert *x509.Certificate, now time.Time) bool {
	return cert.NotAfter.Before(now)
}

// NeedsRenewal reports whether cert expires within RenewWindow of now.
func NeedsRenewal(cert *x509.Certificate, now time.Time) bool {
	return cert.NotAfter.Before(now.Add(RenewWindow))
}
