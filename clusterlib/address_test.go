package clusterlib

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const (
	mainnetAddr = "addr1qytna5k2fq9ler0fuk45j7zfwv7t2zwhp777nvdjqqfr5tz8ztpwnk8zq5ngetcz5k5mckgkajnygtsra9aej2h3ek5seupmvd"
	testnetAddr = "addr_test1vrk294czhxhglflvxla7vxj2cjz7wyrdpxl3fj0vych5wws77xuc7"
)

func TestIsValidAddress(t *testing.T) {
	cases := []struct {
		address  string
		expected bool
	}{
		{mainnetAddr, true},
		{testnetAddr, true},
		{"addr1qytna5k2fq9ler0fuk45", false},
		{"not an address", false},
		{"", false},
	}

	for _, c := range cases {
		if valid := IsValidAddress(c.address); valid != c.expected {
			t.Fatalf("IsValidAddress(%q) expected %v, but %v got", c.address, c.expected, valid)
		}
	}
}

func TestIsValidStakeAddress(t *testing.T) {
	cases := []struct {
		address  string
		expected bool
	}{
		{"stake1u9f9v0z5zzlldgx58n8tklphu8mf7h4jvp2j2gddluemnssjfnkzz", true},
		{"stake1u9f9v0z5zzlldgx58n8tklphu8mf7h4jvp2j2gddluemnssjfnkzx", false},
		{testnetAddr, false},
		{"not an address", false},
	}

	for _, c := range cases {
		if valid := IsValidStakeAddress(c.address); valid != c.expected {
			t.Fatalf("IsValidStakeAddress(%q) expected %v, but %v got", c.address, c.expected, valid)
		}
	}
}

func TestVerifyAddress(t *testing.T) {
	testnetCluster := &ClusterLib{NetworkMagic: 42}
	mainnetCluster := &ClusterLib{NetworkMagic: MainnetMagic}

	cases := []struct {
		name    string
		cluster *ClusterLib
		address string
		wantErr bool
	}{
		{"testnet address on testnet", testnetCluster, testnetAddr, false},
		{"mainnet address on testnet", testnetCluster, mainnetAddr, true},
		{"mainnet address on mainnet", mainnetCluster, mainnetAddr, false},
		{"testnet address on mainnet", mainnetCluster, testnetAddr, true},
		{"malformed address", testnetCluster, "not an address", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cluster.VerifyAddress(c.address)
			if (err != nil) != c.wantErr {
				t.Fatalf("%s expected wantErr=%v, but err=%v got", c.name, c.wantErr, err)
			}
		})
	}
}

func TestPaymentCredentialArgs(t *testing.T) {
	cases := []struct {
		name     string
		cred     PaymentCredential
		expected []string
		wantErr  bool
	}{
		{
			name:     "vkey file",
			cred:     PaymentCredential{VKeyFile: "payment.vkey"},
			expected: []string{"--payment-verification-key-file", "payment.vkey"},
		},
		{
			name:     "script file",
			cred:     PaymentCredential{ScriptFile: "payment.script"},
			expected: []string{"--payment-script-file", "payment.script"},
		},
		{
			name:     "vkey value",
			cred:     PaymentCredential{VKey: "5820abcd"},
			expected: []string{"--payment-verification-key", "5820abcd"},
		},
		{
			name:     "vkey file wins over vkey",
			cred:     PaymentCredential{VKey: "5820abcd", VKeyFile: "payment.vkey"},
			expected: []string{"--payment-verification-key-file", "payment.vkey"},
		},
		{
			name:    "empty credential",
			cred:    PaymentCredential{},
			wantErr: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			args, err := c.cred.args()
			if (err != nil) != c.wantErr {
				t.Fatalf("%s expected wantErr=%v, but err=%v got", c.name, c.wantErr, err)
			}
			if diff := cmp.Diff(c.expected, args); diff != "" {
				t.Fatalf("unexpected args (-want +got):\n%s", diff)
			}
		})
	}
}
