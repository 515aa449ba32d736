// Package prober executes a single HTTP probe and classifies its outcome
// into the fixed error taxonomy checks.error_kind is restricted to. It
// performs no persistence and holds no shared state, so probes can run
// concurrently and tests can inject their own HTTP client.
package prober

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Result is the outcome of one probe attempt, ready to be persisted as a
// store.Check (the caller fills in ID/TargetID/CheckedAt).
type Result struct {
	Up           bool
	LatencyMs    *int
	HTTPStatus   *int
	ErrorKind    string
	ErrorMessage *string
}

const (
	ErrorKindDNS     = "dns"
	ErrorKindConnect = "connect"
	ErrorKindTLS     = "tls"
	ErrorKindTimeout = "timeout"
	ErrorKindHTTP    = "http"
	ErrorKindUnknown = "unknown"
)

// NewClient builds the *http.Client a single probe attempt runs through.
// verifyTLS=false disables server certificate verification for that
// target only.
func NewClient(timeout time.Duration, verifyTLS bool) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: !verifyTLS},
		},
		// Redirects are followed with the default policy (up to 10 hops);
		// the final response's status code is what gets evaluated.
	}
}

// Probe issues a single GET against target and classifies the outcome.
// ctx should already carry the per-target timeout as a deadline; client is
// injected so tests can point it at an httptest.Server.
func Probe(ctx context.Context, target string, client *http.Client) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		msg := truncate(err.Error())
		return Result{Up: false, ErrorKind: ErrorKindUnknown, ErrorMessage: &msg}
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		return classify(err, elapsed)
	}
	defer resp.Body.Close()

	latency := int(elapsed.Milliseconds())
	status := resp.StatusCode

	if status >= 200 && status <= 299 {
		return Result{Up: true, LatencyMs: &latency, HTTPStatus: &status, ErrorKind: ErrorKindUnknown}
	}

	msg := fmt.Sprintf("HTTP %d", status)
	return Result{
		Up:           false,
		LatencyMs:    &latency,
		HTTPStatus:   &status,
		ErrorKind:    ErrorKindHTTP,
		ErrorMessage: &msg,
	}
}

// classify maps a client.Do failure onto the fixed error taxonomy. Order
// matters: tls, then timeout, then dns, then connect, then unknown. The
// first matching category wins, since a timed-out TLS handshake could
// otherwise match more than one category, and a *net.DNSError arrives
// wrapped in a *net.OpError, so dns must be tested before connect.
func classify(err error, elapsed time.Duration) Result {
	msg := truncate(err.Error())
	latency := int(elapsed.Milliseconds())

	if isTLSError(err) {
		return Result{Up: false, LatencyMs: &latency, ErrorKind: ErrorKindTLS, ErrorMessage: &msg}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Result{Up: false, LatencyMs: &latency, ErrorKind: ErrorKindTimeout, ErrorMessage: &msg}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Result{Up: false, LatencyMs: &latency, ErrorKind: ErrorKindTimeout, ErrorMessage: &msg}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Result{Up: false, LatencyMs: &latency, ErrorKind: ErrorKindDNS, ErrorMessage: &msg}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Result{Up: false, LatencyMs: &latency, ErrorKind: ErrorKindConnect, ErrorMessage: &msg}
	}

	return Result{Up: false, LatencyMs: &latency, ErrorKind: ErrorKindUnknown, ErrorMessage: &msg}
}

// maxMessageLen caps error_message at the column's limit.
const maxMessageLen = 500

func truncate(s string) string {
	if len(s) > maxMessageLen {
		return s[:maxMessageLen]
	}
	return s
}

// isTLSError reports whether err originated in the TLS handshake. Go's TLS
// stack doesn't wrap every handshake failure in a single exported type, so
// this checks each of the tls and x509 error types a failed handshake or
// certificate verification can surface as.
func isTLSError(err error) bool {
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return true
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}
	var certVerifyErr *tls.CertificateVerificationError
	if errors.As(err, &certVerifyErr) {
		return true
	}
	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthErr) {
		return true
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}
	var invalidCertErr x509.CertificateInvalidError
	return errors.As(err, &invalidCertErr)
}
