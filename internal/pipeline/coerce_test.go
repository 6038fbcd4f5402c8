package pipeline

import (
	"bytes"
	"testing"
	"time"

	"github.com/arthabot/ai-service/internal/logger"
)

func testNormalizer() *Normalizer {
	n := NewNormalizer(logger.NewWithWriter(&bytes.Buffer{}))
	n.now = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return n
}

func TestNormalizer_Amount(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name  string
		value interface{}
		want  float64
	}{
		{"bare number", 15000.0, 15000},
		{"numeric string", "15000", 15000},
		{"rb suffix", "15rb", 15000},
		{"ribu suffix", "15 ribu", 15000},
		{"k suffix", "5000k", 5000000},
		{"thousand suffix", "3 thousand", 3000},
		{"jt suffix", "3jt", 3000000},
		{"juta suffix", "1.5 juta", 1500000},
		{"million suffix", "2million", 2000000},
		{"m suffix", "1m", 1e9},
		{"milyar suffix", "2milyar", 2e9},
		{"billion suffix", "1 billion", 1e9},
		{"currency prefix", "Rp 25rb", 25000},
		{"comma separators", "1,500", 1500},
		{"unparseable", "banyak", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Amount("amount", tt.value); got != tt.want {
				t.Errorf("Amount(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizer_WeightGrams(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name  string
		value interface{}
		want  float64
	}{
		{"bare number", 5.0, 5},
		{"grams string", "5", 5},
		{"g suffix", "5g", 5},
		{"gr suffix", "5gr", 5},
		{"gram suffix", "2.5 gram", 2.5},
		{"kg suffix", "1kg", 1000},
		{"half kg", "0.5kg", 500},
		{"unparseable", "berat", 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.WeightGrams("weight_grams", tt.value); got != tt.want {
				t.Errorf("WeightGrams(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Quantity(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name  string
		value interface{}
		want  int
	}{
		{"number", 3.0, 3},
		{"string", "2", 2},
		{"zero falls back", 0.0, 1},
		{"negative falls back", -2.0, 1},
		{"unparseable", "dua", 1},
		{"nil", nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Quantity("quantity", tt.value, 1); got != tt.want {
				t.Errorf("Quantity(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Date(t *testing.T) {
	n := testNormalizer()
	today := "2024-06-15"

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"valid past date", "2024-01-11", "2024-01-11"},
		{"today", today, today},
		{"future date clamped", "2030-01-01", today},
		{"tomorrow clamped", "2024-06-16", today},
		{"wrong format", "11 Januari 2010", today},
		{"empty", "", today},
		{"nil", nil, today},
		{"number", 20240101.0, today},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Date("date", tt.value); got != tt.want {
				t.Errorf("Date(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Member(t *testing.T) {
	n := testNormalizer()
	allowed := []string{"Salary", "Business"}

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"exact match", "Salary", "Salary"},
		{"trims whitespace", "  Business  ", "Business"},
		{"case-sensitive mismatch", "salary", FallbackCategory},
		{"unknown", "Lottery", FallbackCategory},
		{"nil", nil, FallbackCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Member("category", tt.value, allowed, FallbackCategory); got != tt.want {
				t.Errorf("Member(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Brand(t *testing.T) {
	n := testNormalizer()
	brands := DefaultMetalProfile().Brands

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"known brand", "Antam", "Antam"},
		{"emas prefix stripped", "emas Antam", "Antam"},
		{"unknown brand", "Randomgold", FallbackBrand},
		{"nil", nil, FallbackBrand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Brand("brand", tt.value, brands); got != tt.want {
				t.Errorf("Brand(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Text(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"plain text", "kopi susu", "kopi susu"},
		{"trimmed", "  kopi  ", "kopi"},
		{"empty", "", DefaultDescription},
		{"whitespace only", "   ", DefaultDescription},
		{"nil", nil, DefaultDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Text("description", tt.value, DefaultDescription); got != tt.want {
				t.Errorf("Text(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
