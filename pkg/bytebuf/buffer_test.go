package bytebuf

import (
	"strings"
	"testing"
)

func write(b *Buffer, s string) {
	for i := range len(s) {
		b.Put(s[i])
	}
}

func TestPutNeverGrows(t *testing.T) {
	b := New(2)
	if !b.Put('a') || !b.Put('b') {
		t.Fatalf("Put within capacity = false, want true")
	}
	if b.Put('c') {
		t.Fatalf("Put on full buffer = true, want false")
	}
	if cap(b.data) != 2 {
		t.Fatalf("Cap = %d, want 2", cap(b.data))
	}
	if got := string(b.Bytes()); got != "ab" {
		t.Fatalf("Bytes = %q, want ab", got)
	}
}

func TestGrowthStrategies(t *testing.T) {
	tests := []struct {
		name    string
		initial int
		grow    func(*Buffer) bool
		wantCap int
	}{
		{name: "exp", initial: 64, grow: (*Buffer).ExpGrow, wantCap: 128},
		{name: "ln", initial: 64, grow: (*Buffer).LnGrow, wantCap: 96},
		{name: "exp from zero", initial: 0, grow: (*Buffer).ExpGrow, wantCap: minGrow},
		{name: "ln small", initial: 4, grow: (*Buffer).LnGrow, wantCap: 4 + minGrow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.initial)
			write(b, strings.Repeat("x", tt.initial))
			if !tt.grow(b) {
				t.Fatalf("grow = false, want true")
			}
			if cap(b.data) != tt.wantCap {
				t.Fatalf("Cap = %d, want %d", cap(b.data), tt.wantCap)
			}
			if b.Len() != tt.initial {
				t.Fatalf("Len after grow = %d, want %d", b.Len(), tt.initial)
			}
		})
	}
}

func TestLimit(t *testing.T) {
	b := New(8)
	b.SetLimit(12)
	if !b.ExpGrow() {
		t.Fatalf("ExpGrow below limit = false, want true")
	}
	if cap(b.data) != 12 {
		t.Fatalf("Cap = %d, want clamp to 12", cap(b.data))
	}
	if b.ExpGrow() {
		t.Fatalf("ExpGrow at limit = true, want false")
	}
	if b.Grow(100) {
		t.Fatalf("Grow past limit = true, want false")
	}
	b.SetLimit(-1)
	if b.Limit() != 0 {
		t.Fatalf("Limit = %d, want 0", b.Limit())
	}
}

func TestFlipShiftClear(t *testing.T) {
	b := New(16)
	write(b, "<?xml version")
	b.Flip()
	if b.Put('x') {
		t.Fatalf("Put in read mode = true, want false")
	}
	if b.Tail() != nil {
		t.Fatalf("Tail in read mode != nil")
	}
	b.Shift(5)
	if got := string(b.Bytes()); got != "version" {
		t.Fatalf("Bytes after Shift = %q, want version", got)
	}
	b.Shift(100)
	if b.Len() != 0 {
		t.Fatalf("Len after over-shift = %d, want 0", b.Len())
	}
	b.Clear()
	if b.reading || b.Len() != 0 || cap(b.data) != 16 {
		t.Fatalf("Clear state = reading %v len %d cap %d", b.reading, b.Len(), cap(b.data))
	}
}

func TestTailAdvance(t *testing.T) {
	b := New(4)
	b.Put('a')
	tail := b.Tail()
	if len(tail) != 3 {
		t.Fatalf("len(Tail) = %d, want 3", len(tail))
	}
	copy(tail, "bcd")
	b.Advance(10)
	if got := string(b.Bytes()); got != "abcd" {
		t.Fatalf("Bytes = %q, want abcd", got)
	}
	if b.Last() != 'd' {
		t.Fatalf("Last = %q, want d", b.Last())
	}
	b.Truncate(2)
	if got := string(b.Slice(0, b.Len())); got != "ab" {
		t.Fatalf("Slice = %q, want ab", got)
	}
	if b.Slice(1, 9) != nil {
		t.Fatalf("Slice out of range != nil")
	}
}
