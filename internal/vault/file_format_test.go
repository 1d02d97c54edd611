package vault

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestContainerFraming(t *testing.T) {
	salt := bytes.Repeat([]byte{0xaa}, SaltSize)
	ct := bytes.Repeat([]byte{0x55}, 40+7)

	c := Container{Version: FormatV1, Salt: salt, Ciphertext: ct}
	b := MarshalContainer(c)
	if len(b) != 1+SaltSize+len(ct) || b[0] != FormatV1 {
		t.Fatalf("framing: len=%d first=0x%02x", len(b), b[0])
	}
	got, err := UnmarshalContainer(b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if !bytes.Equal(got.header(), b[:1+SaltSize]) {
		t.Fatal("header is not version || salt")
	}
}

func TestLegacyDetection(t *testing.T) {
	salt := bytes.Repeat([]byte{0x01}, SaltSize)
	token := []byte("gAAAAABkZXN0cmluZy1vZi1hLWZlcm5ldC10b2tlbg==")
	b := append(append([]byte(nil), salt...), token...)

	c, err := UnmarshalContainer(b)
	if err != nil {
		t.Fatal(err)
	}
	if c.Version != FormatLegacy || !bytes.Equal(c.Salt, salt) || !bytes.Equal(c.Ciphertext, token) {
		t.Fatalf("legacy = %+v", c)
	}
	// Legacy containers have no version byte.
	if !bytes.Equal(MarshalContainer(c), b) {
		t.Fatal("legacy framing not preserved")
	}
}

func TestUnmarshalContainerRejects(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, ErrMalformedContainer},
		{"salt only", make([]byte, SaltSize), ErrMalformedContainer},
		{"v1 without tag", append([]byte{FormatV1}, make([]byte, SaltSize+24+15)...), ErrMalformedContainer},
		{"unknown version", append([]byte{0x02}, make([]byte, minFrameV1)...), ErrUnsupportedVersion},
		{"zero version", append([]byte{0x00}, make([]byte, minFrameV1)...), ErrUnsupportedVersion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := UnmarshalContainer(tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func FuzzUnmarshalContainer(f *testing.F) {
	f.Add([]byte{})
	f.Add(append([]byte{FormatV1}, make([]byte, minFrameV1)...))
	f.Add(append(make([]byte, SaltSize), "gAAAAA"...))
	f.Fuzz(func(t *testing.T, b []byte) {
		c, err := UnmarshalContainer(b)
		if err != nil {
			return
		}
		if len(c.Salt) != SaltSize {
			t.Fatalf("salt length %d", len(c.Salt))
		}
		if !bytes.Equal(MarshalContainer(c), b) {
			t.Fatal("reframing changed the bytes")
		}
	})
}
