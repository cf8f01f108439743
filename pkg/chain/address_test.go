package chain

import (
	"errors"
	"testing"
)

func TestAddress_EVM_RoundTrip(t *testing.T) {
	var h [20]byte
	h[0], h[19] = 0xab, 0xcd
	a, err := NewEVMAddress(Eth, h)
	if err != nil {
		t.Fatalf("NewEVMAddress: %v", err)
	}

	s := a.String()
	got, err := ParseAddress(s)
	if err != nil {
		t.Fatalf("ParseAddress(%q): %v", s, err)
	}
	if !got.Equal(a) {
		t.Fatalf("round-trip mismatch: got %s, want %s", got, a)
	}
	if got.String() != s {
		t.Fatalf("String() not stable: got %q, want %q", got.String(), s)
	}
}

func TestAddress_Solana_RoundTrip(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = byte(i)
	}
	a := NewSolanaAddress(key)

	got, err := ParseAddress(a.String())
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("round-trip mismatch: got %s, want %s", got, a)
	}
}

func TestAddress_Hub_RoundTrip(t *testing.T) {
	a, err := NewHubAddress("alice.near")
	if err != nil {
		t.Fatalf("NewHubAddress: %v", err)
	}

	got, err := ParseAddress(a.String())
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("round-trip mismatch: got %s, want %s", got, a)
	}
}

func TestAddress_Hub_RejectsOversizedAccountID(t *testing.T) {
	long := ""
	for i := 0; i < maxHubAccountLen+1; i++ {
		long += "a"
	}
	if _, err := NewHubAddress(long); !errors.Is(err, ErrAccountIDTooLong) {
		t.Fatalf("want ErrAccountIDTooLong, got %v", err)
	}
}

func TestAddress_UTXO_RoundTrip_Bech32(t *testing.T) {
	// BIP173 test vector: a valid bech32 P2WPKH address.
	const addr = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
	a, err := NewUTXOAddress(Btc, addr)
	if err != nil {
		t.Fatalf("NewUTXOAddress: %v", err)
	}

	got, err := ParseAddress(a.String())
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("round-trip mismatch: got %s, want %s", got, a)
	}
}

func TestAddress_UTXO_RoundTrip_Base58Check(t *testing.T) {
	// A legacy base58check P2PKH address (Bitcoin genesis block payout).
	const addr = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	a, err := NewUTXOAddress(Btc, addr)
	if err != nil {
		t.Fatalf("NewUTXOAddress: %v", err)
	}

	got, err := ParseAddress(a.String())
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("round-trip mismatch: got %s, want %s", got, a)
	}
}

func TestAddress_UTXO_RejectsMalformedShape(t *testing.T) {
	if _, err := NewUTXOAddress(Btc, "!!!not-an-address!!!"); err == nil {
		t.Fatal("expected an error for a payload that is neither bech32 nor base58check")
	}
	if _, err := NewUTXOAddress(Btc, ""); !errors.Is(err, ErrEmptyUTXOAddress) {
		t.Fatalf("want ErrEmptyUTXOAddress, got %v", err)
	}
}

func TestParseAddress_UnknownChainTag(t *testing.T) {
	if _, err := ParseAddress("wrongchain:0xabc"); !errors.Is(err, ErrUnknownChainTag) {
		t.Fatalf("want ErrUnknownChainTag, got %v", err)
	}
}

func TestParseAddress_NoChainPrefix(t *testing.T) {
	if _, err := ParseAddress("not-a-valid-address"); !errors.Is(err, ErrMalformedAddress) {
		t.Fatalf("want ErrMalformedAddress, got %v", err)
	}
}

func TestParseAddress_EVM_WrongLength(t *testing.T) {
	if _, err := ParseAddress("eth:0xabcd"); !errors.Is(err, ErrMalformedAddress) {
		t.Fatalf("want ErrMalformedAddress, got %v", err)
	}
}
