package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/arthabot/ai-service/internal/logger"
)

// fakeGenerator is a function-field fake of the model gateway.
type fakeGenerator struct {
	GenerateTextFunc      func(ctx context.Context, prompt string) (string, error)
	GenerateWithImageFunc func(ctx context.Context, prompt, imageBase64 string) (string, error)
	GenerateWithAudioFunc func(ctx context.Context, prompt string, audio []byte) (string, error)
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.GenerateTextFunc(ctx, prompt)
}

func (f *fakeGenerator) GenerateWithImage(ctx context.Context, prompt, imageBase64 string) (string, error) {
	return f.GenerateWithImageFunc(ctx, prompt, imageBase64)
}

func (f *fakeGenerator) GenerateWithAudio(ctx context.Context, prompt string, audio []byte) (string, error) {
	return f.GenerateWithAudioFunc(ctx, prompt, audio)
}

func testService(gen Generator) *Service {
	svc := NewService(gen, logger.NewWithWriter(&bytes.Buffer{}))
	return svc.WithClock(func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	})
}

func TestProcessFinanceText_CoffeeExpense(t *testing.T) {
	// "beli kopi 15rb": the model echoes the amount unexpanded; the
	// coercer must expand it.
	gen := &fakeGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			if !strings.Contains(prompt, "beli kopi 15rb") {
				t.Error("Expected prompt to embed the verbatim user input")
			}
			if !strings.Contains(prompt, "Food & Beverage") {
				t.Error("Expected prompt to enumerate the category vocabulary")
			}
			return "```json\n{\"category\": \"Food & Beverage\", \"transaction_type\": \"Expense\", \"amount\": \"15rb\", \"date\": \"\", \"description\": \"kopi\"}\n```", nil
		},
	}

	rec, err := testService(gen).ProcessFinanceText(context.Background(), "beli kopi 15rb")
	if err != nil {
		t.Fatalf("ProcessFinanceText failed: %v", err)
	}

	if rec.Amount != 15000 {
		t.Errorf("amount = %v, want 15000", rec.Amount)
	}
	if rec.TransactionType != "Expense" {
		t.Errorf("type = %q, want Expense", rec.TransactionType)
	}
	if rec.Date != "2024-06-15" {
		t.Errorf("date = %q, want today", rec.Date)
	}
}

func TestProcessFinanceText_Salary(t *testing.T) {
	gen := &fakeGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			return "```json\n{\"category\": \"Salary\", \"transaction_type\": \"Income\", \"amount\": \"3jt\", \"date\": \"2024-06-01\", \"description\": \"gaji bulan ini\"}\n```", nil
		},
	}

	rec, err := testService(gen).ProcessFinanceText(context.Background(), "gaji bulan ini 3jt")
	if err != nil {
		t.Fatalf("ProcessFinanceText failed: %v", err)
	}

	if rec.Amount != 3000000 {
		t.Errorf("amount = %v, want 3000000", rec.Amount)
	}
	if rec.TransactionType != "Income" {
		t.Errorf("type = %q, want Income", rec.TransactionType)
	}
	if rec.Category != "Salary" {
		t.Errorf("category = %q, want Salary", rec.Category)
	}
}

func TestProcessFinanceText_SemanticRejection(t *testing.T) {
	gen := &fakeGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			return "Error: the text is a greeting, not a transaction", nil
		},
	}

	_, err := testService(gen).ProcessFinanceText(context.Background(), "halo apa kabar")

	var rejection *SemanticRejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("error = %v, want *SemanticRejectionError", err)
	}
	if rejection.Reason != "the text is a greeting, not a transaction" {
		t.Errorf("reason = %q", rejection.Reason)
	}
}

func TestProcessFinanceText_GatewayErrorPropagates(t *testing.T) {
	gatewayErr := errors.New("upstream timeout")
	gen := &fakeGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", gatewayErr
		},
	}

	_, err := testService(gen).ProcessFinanceText(context.Background(), "beli kopi")
	if !errors.Is(err, gatewayErr) {
		t.Errorf("error = %v, want gateway error to propagate", err)
	}
}

func TestProcessFinanceImage_MultipleItems(t *testing.T) {
	gen := &fakeGenerator{
		GenerateWithImageFunc: func(ctx context.Context, prompt, imageBase64 string) (string, error) {
			return `{"transactions": [
				{"category": "Food & Beverage", "transaction_type": "Expense", "amount": 12000, "date": "2024-06-10", "description": "Ayam goreng"},
				{"category": "Child Needs", "transaction_type": "Expense", "amount": 30000, "date": "2024-06-10", "description": "Susu"}
			]}`, nil
		},
	}

	result, err := testService(gen).ProcessFinanceImage(context.Background(), "aW1n", "belanja")
	if err != nil {
		t.Fatalf("ProcessFinanceImage failed: %v", err)
	}

	if len(result.Transactions) != 2 {
		t.Fatalf("len = %d, want 2", len(result.Transactions))
	}
	if result.Transactions[0].Description != "Ayam goreng" {
		t.Errorf("order not preserved: first = %+v", result.Transactions[0])
	}
	// Child Needs only exists in the image profile vocabulary.
	if result.Transactions[1].Category != "Child Needs" {
		t.Errorf("category = %q, want Child Needs", result.Transactions[1].Category)
	}
	if result.Note != "" {
		t.Errorf("note = %q, want empty", result.Note)
	}
}

func TestProcessFinanceImage_BareArray(t *testing.T) {
	envelope := `{"transactions": [{"category": "Food & Beverage", "transaction_type": "Expense", "amount": 5000}]}`
	bare := `[{"category": "Food & Beverage", "transaction_type": "Expense", "amount": 5000}]`

	run := func(reply string) *ReceiptResult {
		gen := &fakeGenerator{
			GenerateWithImageFunc: func(ctx context.Context, prompt, imageBase64 string) (string, error) {
				return reply, nil
			},
		}
		result, err := testService(gen).ProcessFinanceImage(context.Background(), "aW1n", "")
		if err != nil {
			t.Fatalf("ProcessFinanceImage failed: %v", err)
		}
		return result
	}

	got := run(bare)
	want := run(envelope)

	if len(got.Transactions) != len(want.Transactions) {
		t.Fatalf("bare array gave %d records, envelope gave %d", len(got.Transactions), len(want.Transactions))
	}
	if got.Transactions[0] != want.Transactions[0] {
		t.Errorf("bare array record = %+v, envelope record = %+v", got.Transactions[0], want.Transactions[0])
	}
}

func TestProcessFinanceImage_NoTransactions(t *testing.T) {
	gen := &fakeGenerator{
		GenerateWithImageFunc: func(ctx context.Context, prompt, imageBase64 string) (string, error) {
			return `{"transactions": []}`, nil
		},
	}

	result, err := testService(gen).ProcessFinanceImage(context.Background(), "aW1n", "")
	if err != nil {
		t.Fatalf("Expected empty result, not an error; got %v", err)
	}
	if len(result.Transactions) != 0 {
		t.Errorf("len = %d, want 0", len(result.Transactions))
	}
	if result.Note == "" {
		t.Error("Expected an advisory note on the empty result")
	}
}

func TestProcessMetalText(t *testing.T) {
	gen := &fakeGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			if !strings.Contains(prompt, "Antam 5g 5000k 1 Emergency Fund") {
				t.Error("Expected prompt to embed the verbatim user input")
			}
			return "Brand: Antam\nWeight: 5\nAmount: 5000000\nQty: 1\nSavings Goal: Emergency Fund\nDate: 2024-06-01", nil
		},
	}

	rec, err := testService(gen).ProcessMetalText(context.Background(), "Antam 5g 5000k 1 Emergency Fund")
	if err != nil {
		t.Fatalf("ProcessMetalText failed: %v", err)
	}

	want := MetalRecord{
		Brand:       "Antam",
		WeightGrams: 5,
		Amount:      5000000,
		Quantity:    1,
		SavingsGoal: "Emergency Fund",
		Date:        "2024-06-01",
	}
	if *rec != want {
		t.Errorf("record = %+v, want %+v", *rec, want)
	}
}

func TestProcessMetalText_Rejection(t *testing.T) {
	gen := &fakeGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			return "Error: brand and weight are unclear", nil
		},
	}

	_, err := testService(gen).ProcessMetalText(context.Background(), "beli sesuatu")

	var rejection *SemanticRejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("error = %v, want *SemanticRejectionError", err)
	}
}

func TestProcessMetalImage(t *testing.T) {
	gen := &fakeGenerator{
		GenerateWithImageFunc: func(ctx context.Context, prompt, imageBase64 string) (string, error) {
			return "```json\n{\"transactions\": [{\"brand\": \"UBS\", \"weight_grams\": 10, \"amount\": 10000000, \"quantity\": 1, \"savings_goal\": \"House\", \"date\": \"2024-05-01\"}]}\n```", nil
		},
	}

	result, err := testService(gen).ProcessMetalImage(context.Background(), "aW1n", "nabung rumah")
	if err != nil {
		t.Fatalf("ProcessMetalImage failed: %v", err)
	}

	if len(result.Transactions) != 1 {
		t.Fatalf("len = %d, want 1", len(result.Transactions))
	}
	if result.Transactions[0].Brand != "UBS" {
		t.Errorf("brand = %q, want UBS", result.Transactions[0].Brand)
	}
}

func TestProcessVoice(t *testing.T) {
	audio := []byte{0x49, 0x44, 0x33}
	gen := &fakeGenerator{
		GenerateWithAudioFunc: func(ctx context.Context, prompt string, got []byte) (string, error) {
			if !bytes.Equal(got, audio) {
				t.Error("Expected audio bytes to be forwarded unchanged")
			}
			return "  You bought coffee for 15,000 on 2024-06-15.  ", nil
		},
	}

	summary, err := testService(gen).ProcessVoice(context.Background(), audio)
	if err != nil {
		t.Fatalf("ProcessVoice failed: %v", err)
	}
	if summary != "You bought coffee for 15,000 on 2024-06-15." {
		t.Errorf("summary = %q", summary)
	}
}
