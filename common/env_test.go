package common

import "testing"

func TestPortsFromEnv(t *testing.T) {
	t.Setenv(TCPPortEnv, "70000")
	if TCPPort() != DefaultTCPPort {
		t.Errorf("out of range port accepted: %d", TCPPort())
	}
	t.Setenv(TCPPortEnv, "4000")
	if TCPPort() != 4000 {
		t.Errorf("TCPPort = %d", TCPPort())
	}
	t.Setenv(RPCPortEnv, "")
	if RPCPort() != DefaultRPCPort {
		t.Errorf("RPCPort = %d", RPCPort())
	}
	t.Setenv(ForceTCPEnv, "1")
	if !ForceTCP() {
		t.Error("ForceTCP should be set")
	}
}
