/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for CLI argument parsing helpers.
 */

package main

import "testing"

func TestParseUint32(t *testing.T) {
	cases := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"0x2A", 42, false},
		{"4294967295", 4294967295, false},
		{"-1", 0, true},
		{"4294967296", 0, true},
		{"notanumber", 0, true},
	}
	for _, c := range cases {
		got, err := parseUint32(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseUint32(%q): expected error, got %d", c.in, got)
				continue
			}
			if exitCodeFor(err) != exitUsage {
				t.Errorf("parseUint32(%q) error should classify as exitUsage", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseUint32(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseUint32(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseStorageParent(t *testing.T) {
	storageID, parent, err := parseStorageParent([]string{"0x00010001", "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storageID != 0x00010001 || parent != 0 {
		t.Errorf("got storageID=%d parent=%d, want 0x00010001 and 0", storageID, parent)
	}

	if _, _, err := parseStorageParent([]string{"only-one-arg"}); err == nil {
		t.Errorf("expected usage error for wrong argument count")
	} else if exitCodeFor(err) != exitUsage {
		t.Errorf("wrong-arity error should classify as exitUsage")
	}
}
