package embedding

import (
	"context"
	"crypto/sha256"
	"math/big"
	"testing"
)

func TestDeterministic_SameTextSameVector(t *testing.T) {
	p := NewDeterministic(64)

	a := p.Vector("what are your hours?")
	b := p.Vector("what are your hours?")

	if len(a) != 64 {
		t.Fatalf("expected 64 dimensions, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestDeterministic_DifferentTexts(t *testing.T) {
	p := NewDeterministic(16)

	a := p.Vector("insurance")
	b := p.Vector("parking")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("expected different texts to produce different vectors")
	}
}

// TestDeterministic_MatchesBigIntFormula checks the 31-bit shortcut against
// the full-width computation over the 256-bit digest.
func TestDeterministic_MatchesBigIntFormula(t *testing.T) {
	texts := []string{"", "hello", "Where is the clinic located?", "ünïcödé"}
	p := NewDeterministic(32)

	a := big.NewInt(lcgMultiplier)
	c := big.NewInt(lcgIncrement)
	m := big.NewInt(lcgModulus)

	for _, text := range texts {
		sum := sha256.Sum256([]byte(text))
		h := new(big.Int).SetBytes(sum[:])
		got := p.Vector(text)

		for i := range got {
			seed := new(big.Int).Add(h, big.NewInt(int64(i)))
			v := new(big.Int).Mul(seed, a)
			v.Add(v, c)
			v.Mod(v, m)
			want := (float64(v.Int64())/float64(lcgModulus) - 0.5) * 2

			if got[i] != want {
				t.Fatalf("text %q component %d: got %v, want %v", text, i, got[i], want)
			}
		}
	}
}

func TestDeterministic_Range(t *testing.T) {
	p := NewDeterministic(DefaultDimensions)
	for _, v := range p.Vector("range check") {
		if v < -1 || v >= 1 {
			t.Fatalf("component %v outside [-1, 1)", v)
		}
	}
}

func TestDeterministic_Embed(t *testing.T) {
	p := NewDeterministic(8)
	texts := []string{"a", "b", "c"}

	res, err := p.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Degraded {
		t.Error("deterministic results are never degraded")
	}
	if len(res.Vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(res.Vectors))
	}
	for i, text := range texts {
		want := p.Vector(text)
		for j := range want {
			if res.Vectors[i][j] != want[j] {
				t.Fatalf("vector %d not in input order", i)
			}
		}
	}
}

func TestDeterministic_EmptyInput(t *testing.T) {
	res, err := NewDeterministic(8).Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Vectors) != 0 {
		t.Errorf("expected no vectors, got %d", len(res.Vectors))
	}
}

func TestDeterministic_DefaultDimensions(t *testing.T) {
	p := NewDeterministic(0)
	if p.Dimensions() != DefaultDimensions {
		t.Errorf("expected %d, got %d", DefaultDimensions, p.Dimensions())
	}
	if p.Name() != "deterministic" {
		t.Errorf("expected name deterministic, got %q", p.Name())
	}
}
