package envutil

import (
	"testing"
	"time"
)

func TestString(t *testing.T) {
	t.Setenv("X_STR", "  value  ")
	if got := String("X_STR", "def"); got != "value" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := String("X_STR_UNSET", "def"); got != "def" {
		t.Fatalf("expected default, got %q", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("X_INT", "42")
	if got := Int("X_INT", 7); got != 42 {
		t.Fatalf("got %d", got)
	}
	t.Setenv("X_INT", "not a number")
	if got := Int("X_INT", 7); got != 7 {
		t.Fatalf("invalid value should fall back, got %d", got)
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("X_FLOAT", "2.5")
	if got := Float("X_FLOAT", 1.0); got != 2.5 {
		t.Fatalf("got %v", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("X_BOOL", "off")
	if Bool("X_BOOL", true) {
		t.Fatalf("off should be false")
	}
	t.Setenv("X_BOOL", "YES")
	if !Bool("X_BOOL", false) {
		t.Fatalf("yes should be true")
	}
	if !Bool("X_BOOL_UNSET", true) {
		t.Fatalf("unset should keep default")
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("X_DUR", "90s")
	if got := Duration("X_DUR", time.Minute); got != 90*time.Second {
		t.Fatalf("got %v", got)
	}
	t.Setenv("X_DUR", "forever")
	if got := Duration("X_DUR", time.Minute); got != time.Minute {
		t.Fatalf("invalid value should fall back, got %v", got)
	}
}
