package clusterlib

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStakeCredentialArgs(t *testing.T) {
	cases := []struct {
		name     string
		cred     StakeCredential
		expected []string
		wantErr  bool
	}{
		{
			name:     "vkey value",
			cred:     StakeCredential{VKey: "5820abcd"},
			expected: []string{"--stake-verification-key", "5820abcd"},
		},
		{
			name:     "vkey file",
			cred:     StakeCredential{VKeyFile: "user_stake.vkey"},
			expected: []string{"--stake-verification-key-file", "user_stake.vkey"},
		},
		{
			name:     "script file",
			cred:     StakeCredential{ScriptFile: "stake.script"},
			expected: []string{"--stake-script-file", "stake.script"},
		},
		{
			name:     "stake address",
			cred:     StakeCredential{Address: "stake_test1abc"},
			expected: []string{"--stake-address", "stake_test1abc"},
		},
		{
			name:     "vkey wins over file",
			cred:     StakeCredential{VKey: "5820abcd", VKeyFile: "user_stake.vkey"},
			expected: []string{"--stake-verification-key", "5820abcd"},
		},
		{
			name:    "empty credential",
			cred:    StakeCredential{},
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

func TestPoolKeyArgs(t *testing.T) {
	cases := []struct {
		name     string
		pool     PoolKey
		expected []string
		wantErr  bool
	}{
		{
			name:     "pool vkey",
			pool:     PoolKey{StakePoolVKey: "5820abcd"},
			expected: []string{"--stake-pool-verification-key", "5820abcd"},
		},
		{
			name:     "cold vkey file",
			pool:     PoolKey{ColdVKeyFile: "pool_cold.vkey"},
			expected: []string{"--cold-verification-key-file", "pool_cold.vkey"},
		},
		{
			name:     "pool id",
			pool:     PoolKey{StakePoolID: "pool1xyz"},
			expected: []string{"--stake-pool-id", "pool1xyz"},
		},
		{
			name:    "empty pool key",
			pool:    PoolKey{},
			wantErr: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			args, err := c.pool.args()
			if (err != nil) != c.wantErr {
				t.Fatalf("%s expected wantErr=%v, but err=%v got", c.name, c.wantErr, err)
			}
			if diff := cmp.Diff(c.expected, args); diff != "" {
				t.Fatalf("unexpected args (-want +got):\n%s", diff)
			}
		})
	}
}
