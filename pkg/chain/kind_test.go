package chain

import "testing"

func TestKind_String_ParseKind_RoundTrip(t *testing.T) {
	kinds := []Kind{Near, Eth, Base, Arb, Bnb, Pol, Sol, Btc, Zcash}
	for _, k := range kinds {
		tag := k.String()
		got, ok := ParseKind(tag)
		if !ok {
			t.Fatalf("ParseKind(%q) failed to round-trip %v", tag, k)
		}
		if got != k {
			t.Fatalf("ParseKind(%q) = %v, want %v", tag, got, k)
		}
	}
}

func TestKind_ParseKind_Unknown(t *testing.T) {
	if _, ok := ParseKind("dogecoin"); ok {
		t.Fatal("expected ParseKind to reject a tag outside the closed enumeration")
	}
}

func TestKind_Predicates(t *testing.T) {
	cases := []struct {
		k        Kind
		evm      bool
		utxo     bool
		hub      bool
		solana   bool
	}{
		{Near, false, false, true, false},
		{Eth, true, false, false, false},
		{Base, true, false, false, false},
		{Arb, true, false, false, false},
		{Bnb, true, false, false, false},
		{Pol, true, false, false, false},
		{Sol, false, false, false, true},
		{Btc, false, true, false, false},
		{Zcash, false, true, false, false},
	}
	for _, c := range cases {
		if got := c.k.IsEVMChain(); got != c.evm {
			t.Errorf("%v.IsEVMChain() = %v, want %v", c.k, got, c.evm)
		}
		if got := c.k.IsUTXOChain(); got != c.utxo {
			t.Errorf("%v.IsUTXOChain() = %v, want %v", c.k, got, c.utxo)
		}
		if got := c.k.IsHub(); got != c.hub {
			t.Errorf("%v.IsHub() = %v, want %v", c.k, got, c.hub)
		}
		if got := c.k.IsSolanaLike(); got != c.solana {
			t.Errorf("%v.IsSolanaLike() = %v, want %v", c.k, got, c.solana)
		}
	}
}

func TestKind_EmitterChainIDToKind(t *testing.T) {
	cases := []struct {
		id   uint16
		want Kind
		ok   bool
	}{
		{1, Sol, true},
		{2, Eth, true},
		{23, Arb, true},
		{30, Base, true},
		{999, 0, false},
	}
	for _, c := range cases {
		got, ok := EmitterChainIDToKind(c.id)
		if ok != c.ok {
			t.Errorf("EmitterChainIDToKind(%d) ok = %v, want %v", c.id, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("EmitterChainIDToKind(%d) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestKind_Valid(t *testing.T) {
	if !Near.Valid() {
		t.Error("Near should be a valid Kind")
	}
	if Kind(255).Valid() {
		t.Error("Kind(255) should not be valid")
	}
}
