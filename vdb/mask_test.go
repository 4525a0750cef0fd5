package vdb

import "testing"

func TestBitmaskBasics(t *testing.T) {
	m := newBitmask(512)
	if len(m) != 8 {
		t.Fatalf("512-bit mask should use 8 words, got %d", len(m))
	}
	if !m.isEmpty() {
		t.Error("fresh mask should be empty")
	}
	for _, i := range []int{0, 1, 63, 64, 200, 511} {
		m.on(i)
	}
	for _, i := range []int{0, 1, 63, 64, 200, 511} {
		if !m.isOn(i) {
			t.Errorf("bit %d should be on", i)
		}
	}
	if m.isOn(2) || m.isOn(65) {
		t.Error("unset bits report on")
	}
	if got := m.countOn(); got != 6 {
		t.Errorf("countOn = %d, want 6", got)
	}
	if got := m.firstOn(); got != 0 {
		t.Errorf("firstOn = %d, want 0", got)
	}
	m.off(0)
	m.off(1)
	if got := m.firstOn(); got != 63 {
		t.Errorf("firstOn after clearing = %d, want 63", got)
	}
}

func TestBitmaskFillAndFull(t *testing.T) {
	for _, nbits := range []int{64, 512, 100} {
		m := newBitmask(nbits)
		if m.isFull(nbits) {
			t.Errorf("empty %d-bit mask reports full", nbits)
		}
		m.fill(nbits)
		if !m.isFull(nbits) {
			t.Errorf("filled %d-bit mask not full", nbits)
		}
		if got := m.countOn(); got != nbits {
			t.Errorf("filled %d-bit mask countOn = %d", nbits, got)
		}
		m.off(nbits - 1)
		if m.isFull(nbits) {
			t.Errorf("%d-bit mask with one bit off reports full", nbits)
		}
		m.clear()
		if !m.isEmpty() {
			t.Errorf("cleared %d-bit mask not empty", nbits)
		}
	}
}

func TestBitmaskClone(t *testing.T) {
	m := newBitmask(128)
	m.on(5)
	c := m.clone()
	c.on(6)
	if m.isOn(6) {
		t.Error("clone shares storage with original")
	}
	if !c.isOn(5) {
		t.Error("clone lost a bit")
	}
}
