package types

import "testing"

func TestFrameValidate(t *testing.T) {
	cases := []struct {
		name string
		f    Frame
		want error
	}{
		{"std ok", Frame{ID: 0x123, DLC: 8}, nil},
		{"std max id", Frame{ID: MaxStdID, DLC: 0}, nil},
		{"std id overflow", Frame{ID: MaxStdID + 1}, ErrFrameID},
		{"ext ok", Frame{ID: 0x18DAF110, Extended: true, DLC: 3}, nil},
		{"ext id overflow", Frame{ID: MaxExtID + 1, Extended: true}, ErrFrameID},
		{"dlc overflow", Frame{ID: 0x100, DLC: 9}, ErrFrameDLC},
		{"rtr ok", Frame{ID: 0x200, RTR: true, DLC: 0}, nil},
	}
	for _, c := range cases {
		if got := c.f.Validate(); got != c.want {
			t.Errorf("%s: Validate() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestFramePayloadClampsBadDLC(t *testing.T) {
	f := Frame{ID: 1, DLC: 12}
	if n := len(f.Payload()); n != 8 {
		t.Fatalf("payload length = %d, want 8", n)
	}
	f.DLC = 3
	if n := len(f.Payload()); n != 3 {
		t.Fatalf("payload length = %d, want 3", n)
	}
}
