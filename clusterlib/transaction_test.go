package clusterlib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCertFile(t *testing.T, dir, name, description string) string {
	t.Helper()
	certFile := filepath.Join(dir, name)
	content := `{"type": "CertificateShelley", "description": "` + description + `", "cborHex": "8200"}`
	if err := os.WriteFile(certFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write certificate file: %v", err)
	}
	return certFile
}

func TestCalcTxDeposit(t *testing.T) {
	dir := t.TempDir()
	keyDeposit := int64(2000000)
	poolDeposit := int64(500000000)

	regCert := writeCertFile(t, dir, "stake_reg.cert", "Stake Address Registration Certificate")
	deregCert := writeCertFile(t, dir, "stake_dereg.cert", "Stake Address Deregistration Certificate")
	poolCert := writeCertFile(t, dir, "pool_reg.cert", "Stake Pool Registration Certificate")
	delegCert := writeCertFile(t, dir, "stake_deleg.cert", "Stake Delegation Certificate")

	cases := []struct {
		name     string
		certs    []string
		expected int64
	}{
		{"no certificates", nil, 0},
		{"registration", []string{regCert}, keyDeposit},
		{"deregistration refund", []string{deregCert}, -keyDeposit},
		{"pool registration", []string{poolCert}, poolDeposit},
		{"delegation needs no deposit", []string{delegCert}, 0},
		{"registration and pool", []string{regCert, poolCert}, keyDeposit + poolDeposit},
		{"registration and deregistration cancel", []string{regCert, deregCert}, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			deposit, err := calcTxDeposit(c.certs, keyDeposit, poolDeposit)
			require.NoError(t, err)
			if deposit != c.expected {
				t.Fatalf("%s expected %v, but %v got", c.name, c.expected, deposit)
			}
		})
	}
}

func TestCalcTxDepositBadFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := calcTxDeposit([]string{"/nonexistent/file.cert"}, 1, 1)
		require.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		certFile := filepath.Join(t.TempDir(), "broken.cert")
		require.NoError(t, os.WriteFile(certFile, []byte("not json"), 0o600))
		_, err := calcTxDeposit([]string{certFile}, 1, 1)
		require.Error(t, err)
	})
}

func TestTxOptionsDefaults(t *testing.T) {
	var opts TxOptions
	if opts.fee() != 0 {
		t.Fatalf("default fee expected 0, but %v got", opts.fee())
	}
	if opts.destinationDir() != "." {
		t.Fatalf("default destination dir expected `.`, but %v got", opts.destinationDir())
	}

	fee := int64(170000)
	opts = TxOptions{Fee: &fee, DestinationDir: "/tmp/txs"}
	if opts.fee() != 170000 {
		t.Fatalf("fee expected 170000, but %v got", opts.fee())
	}
	if opts.destinationDir() != "/tmp/txs" {
		t.Fatalf("destination dir expected /tmp/txs, but %v got", opts.destinationDir())
	}
}
