package wire

import (
	"errors"
	"math"
	"testing"
)

func TestReplyErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		isErr   bool
	}{
		{"value reply", "RETVAL:3.14\n\x00", false},
		{"empty reply", "", false},
		{"padding only", "\x00\n  ", false},
		{"error message", "ERROR: node not found\n\x00", true},
		{"error without prefix", "invalid slice index\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReply("cmd", tt.payload)
			if got := r.IsEngineError(); got != tt.isErr {
				t.Errorf("IsEngineError() = %v, want %v", got, tt.isErr)
			}
			err := r.Err()
			if tt.isErr && err == nil {
				t.Error("Err() = nil, want *EngineError")
			}
			if !tt.isErr && err != nil {
				t.Errorf("Err() = %v, want nil", err)
			}
		})
	}
}

func TestReplyEngineErrorDetail(t *testing.T) {
	r := NewReply("badnode.width = 1", "ERROR: no such node\n\x00")
	err := r.Err()

	var ee *EngineError
	if !errors.As(err, &ee) {
		t.Fatalf("Err() = %T, want *EngineError", err)
	}
	if ee.Command != "badnode.width = 1" {
		t.Errorf("Command = %q", ee.Command)
	}
	if ee.Message != "ERROR: no such node" {
		t.Errorf("Message = %q", ee.Message)
	}
	if !IsEngineError(err) {
		t.Error("IsEngineError(err) = false")
	}
}

func TestReplyFloat(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    float64
		wantErr bool
	}{
		{"plain float", "RETVAL:1.55\x00", 1.55, false},
		{"noise before marker", "some echo RETVAL:2.25\n\x00", 2.25, false},
		{"multiline takes first", "RETVAL:7\nleftover text", 7, false},
		{"not a number", "RETVAL:banana", 0, true},
		{"engine error passthrough", "ERROR: bad prop", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewReply("cmd", tt.payload).Float()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Float() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Float() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReplyFloatDecodeIsProtocolError(t *testing.T) {
	_, err := NewReply("cmd", "RETVAL:banana").Float()
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("Float() error = %T, want *ProtocolError", err)
	}
	if pe.Command != "cmd" {
		t.Errorf("Command = %q", pe.Command)
	}
}

func TestReplyInt(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
		wantErr bool
	}{
		{"count as float", "RETVAL:4\x00", 4, false},
		{"trailing zeros", "RETVAL:12.0", 12, false},
		{"non-integral", "RETVAL:4.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewReply("cmd", tt.payload).Int()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Int() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Int() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReplyComplex(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    complex128
		wantErr bool
	}{
		{"pair form", "RETVAL:(3.45,-0.002)\x00", complex(3.45, -0.002), false},
		{"spaced pair", "RETVAL:(1.0, 2.0)", complex(1, 2), false},
		{"plain float fallback", "RETVAL:2.89", complex(2.89, 0), false},
		{"malformed pair", "RETVAL:(a,b)", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewReply("cmd", tt.payload).Complex()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Complex() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Complex() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReplyStr(t *testing.T) {
	got, err := NewReply("cmd", "RETVAL:ridge_wg\n\x00").Str()
	if err != nil {
		t.Fatalf("Str() failed: %v", err)
	}
	if got != "ridge_wg" {
		t.Errorf("Str() = %q", got)
	}

	// Void replies decode to an empty string, not an error.
	got, err = NewReply("cmd", "").Str()
	if err != nil {
		t.Fatalf("Str() on empty reply failed: %v", err)
	}
	if got != "" {
		t.Errorf("Str() = %q, want empty", got)
	}
}

func TestReplyFloatVec(t *testing.T) {
	payload := "RETVAL:f[0] 0.1 f[1] 0.25 f[2] -0.5\n\x00"
	got, err := NewReply("f.fieldarray", payload).FloatVec()
	if err != nil {
		t.Fatalf("FloatVec() failed: %v", err)
	}
	want := []float64{0.1, 0.25, -0.5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReplyFloatVecMultiline(t *testing.T) {
	payload := "RETVAL:f[0]\n1e-3\nf[1]\n2e-3\n"
	got, err := NewReply("f.fieldarray", payload).FloatVec()
	if err != nil {
		t.Fatalf("FloatVec() failed: %v", err)
	}
	if len(got) != 2 || math.Abs(got[0]-1e-3) > 1e-15 || math.Abs(got[1]-2e-3) > 1e-15 {
		t.Errorf("FloatVec() = %v", got)
	}
}

func TestReplyFloatVecNoValues(t *testing.T) {
	_, err := NewReply("cmd", "RETVAL:").FloatVec()
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %T, want *ProtocolError", err)
	}
}

func TestReplyFloatMatrix(t *testing.T) {
	payload := "RETVAL:f[0][0] 1 f[0][1] 2 f[1][0] 3 f[1][1] 4\n\x00"
	got, err := NewReply("f.fieldarray", payload).FloatMatrix()
	if err != nil {
		t.Fatalf("FloatMatrix() failed: %v", err)
	}
	want := [][]float64{{1, 2}, {3, 4}}
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("row %d has %d columns, want %d", i, len(got[i]), len(want[i]))
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestReplyFloatMatrixRaggedRows(t *testing.T) {
	payload := "RETVAL:f[0][0] 1 f[1][0] 2 f[1][1] 3"
	got, err := NewReply("cmd", payload).FloatMatrix()
	if err != nil {
		t.Fatalf("FloatMatrix() failed: %v", err)
	}
	if len(got) != 2 || len(got[0]) != 1 || len(got[1]) != 2 {
		t.Errorf("shape = %v", got)
	}
}
