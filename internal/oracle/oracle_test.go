package oracle

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"software.sslmate.com/src/go-pkcs12"
)

// generateTestRSA produces a small RSA key for oracle unit tests.
func generateTestRSA(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 1024) // small for speed
	if err != nil {
		t.Fatalf("generate RSA key: %v", err)
	}
	return key
}

// selfSignedCert returns a minimal self-signed certificate for key.
func selfSignedCert(t *testing.T, key *rsa.PrivateKey) *x509.Certificate {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "oracle-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}
	return cert
}

// writeTestArchive encodes a PKCS#12 archive protected by password and
// writes it to a fresh temp file, returning its path.
func writeTestArchive(t *testing.T, password string) string {
	t.Helper()
	key := generateTestRSA(t)
	cert := selfSignedCert(t, key)
	data, err := pkcs12.Encode(rand.Reader, key, cert, nil, password)
	if err != nil {
		t.Fatalf("pkcs12.Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "archive.p12")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// TestArchive_VerifyCorrectPassword verifies that the right password yields
// Match with no error.
func TestArchive_VerifyCorrectPassword(t *testing.T) {
	path := writeTestArchive(t, "hunter2")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	verdict, err := a.Verify([]byte("hunter2"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verdict != Match {
		t.Errorf("Verify(correct password) = %v, want Match", verdict)
	}
}

// TestArchive_VerifyWrongPassword verifies that an incorrect password
// yields NoMatch with no error — a wrong guess must never look like a hard
// failure.
func TestArchive_VerifyWrongPassword(t *testing.T) {
	path := writeTestArchive(t, "hunter2")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	verdict, err := a.Verify([]byte("wrong-guess"))
	if err != nil {
		t.Fatalf("Verify returned an error for a wrong guess: %v", err)
	}
	if verdict != NoMatch {
		t.Errorf("Verify(wrong password) = %v, want NoMatch", verdict)
	}
}

// TestArchive_VerifyMalformedArchive verifies that a file that isn't a
// PKCS#12 archive at all produces a hard error, distinct from NoMatch.
func TestArchive_VerifyMalformedArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-pfx.bin")
	if err := os.WriteFile(path, []byte("this is not DER"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if _, err := a.Verify([]byte("anything")); err == nil {
		t.Error("Verify on a malformed archive: expected a hard error, got nil")
	}
}

// TestArchive_VerifyIsRepeatable verifies that the same Archive can be used
// for many independent Verify calls, as the search driver requires when
// sharing one Archive across worker goroutines.
func TestArchive_VerifyIsRepeatable(t *testing.T) {
	path := writeTestArchive(t, "correct-horse")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	guesses := []string{"a", "b", "correct-horse", "c"}
	want := []Verdict{NoMatch, NoMatch, Match, NoMatch}
	for i, g := range guesses {
		verdict, err := a.Verify([]byte(g))
		if err != nil {
			t.Fatalf("Verify(%q): %v", g, err)
		}
		if verdict != want[i] {
			t.Errorf("Verify(%q) = %v, want %v", g, verdict, want[i])
		}
	}
}
