package ruleclass

import (
	"context"
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantCategory string
	}{
		{
			name:         "invoice",
			text:         "INVOICE #123\nAmount due: $500.00\nPayment due date: 01/02/2024\nTotal: $500.00\nSubtotal: $450.00",
			wantCategory: "invoice",
		},
		{
			name:         "contract",
			text:         "This agreement is made between the parties. Whereas the terms and conditions hereby apply to this contract.",
			wantCategory: "contract",
		},
		{
			name:         "letter",
			text:         "Dear Sir, I am writing to you. Sincerely, with kind regards, yours truly.",
			wantCategory: "letter",
		},
		{
			name:         "no keywords",
			text:         "zxqv wvut mnop",
			wantCategory: "other",
		},
		{
			name:         "empty text",
			text:         "",
			wantCategory: "other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			got, err := c.Classify(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Classify() err = %v", err)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if tt.wantCategory == "other" && got.Confidence != 0 {
				t.Errorf("Confidence = %v, want 0 for unmatched text", got.Confidence)
			}
			if tt.wantCategory != "other" && got.Confidence <= 0 {
				t.Errorf("Confidence = %v, want > 0", got.Confidence)
			}
			if len(got.AllCategories) != 8 {
				t.Errorf("len(AllCategories) = %d, want 8", len(got.AllCategories))
			}
		})
	}
}

func TestClassifyScoresNormalized(t *testing.T) {
	c := New()
	got, err := c.Classify(context.Background(), "invoice payment total agreement report")
	if err != nil {
		t.Fatalf("Classify() err = %v", err)
	}

	sum := 0.0
	for _, score := range got.Scores {
		sum += score
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("score sum = %v, want 1", sum)
	}
}

func TestExtractMetadata(t *testing.T) {
	c := New()
	ctx := context.Background()

	t.Run("invoice fields", func(t *testing.T) {
		text := "Invoice #INV42\nLine item: $100.50\nTotal: $250.00\nDue 01/15/2024"
		got, err := c.ExtractMetadata(ctx, text, "invoice")
		if err != nil {
			t.Fatalf("ExtractMetadata() err = %v", err)
		}
		if got.Category != "invoice" {
			t.Errorf("Category = %q, want invoice", got.Category)
		}
		if !reflect.DeepEqual(got.ExtractedFields["invoice_number"], []string{"INV42"}) {
			t.Errorf("invoice_number = %#v, want [INV42]", got.ExtractedFields["invoice_number"])
		}
		if !reflect.DeepEqual(got.ExtractedFields["amounts"], []string{"100.50", "250.00"}) {
			t.Errorf("amounts = %#v, want [100.50 250.00]", got.ExtractedFields["amounts"])
		}
		if !reflect.DeepEqual(got.ExtractedFields["total_amount"], []string{"250.00"}) {
			t.Errorf("total_amount = %#v, want [250.00]", got.ExtractedFields["total_amount"])
		}
		if !reflect.DeepEqual(got.ExtractedFields["dates"], []string{"01/15/2024"}) {
			t.Errorf("dates = %#v, want [01/15/2024]", got.ExtractedFields["dates"])
		}
	})

	t.Run("contract fields", func(t *testing.T) {
		text := "Agreement between Acme and Beta Industries effective 03/01/2024."
		got, err := c.ExtractMetadata(ctx, text, "contract")
		if err != nil {
			t.Fatalf("ExtractMetadata() err = %v", err)
		}
		if len(got.ExtractedFields["parties"]) != 2 {
			t.Errorf("parties = %#v, want two entries", got.ExtractedFields["parties"])
		}
		if !reflect.DeepEqual(got.ExtractedFields["effective_date"], []string{"03/01/2024"}) {
			t.Errorf("effective_date = %#v, want [03/01/2024]", got.ExtractedFields["effective_date"])
		}
	})

	t.Run("receipt fields", func(t *testing.T) {
		text := "Receipt #R789\nPaid $42.00"
		got, err := c.ExtractMetadata(ctx, text, "receipt")
		if err != nil {
			t.Fatalf("ExtractMetadata() err = %v", err)
		}
		if !reflect.DeepEqual(got.ExtractedFields["transaction_id"], []string{"R789"}) {
			t.Errorf("transaction_id = %#v, want [R789]", got.ExtractedFields["transaction_id"])
		}
		if !reflect.DeepEqual(got.ExtractedFields["amount"], []string{"42.00"}) {
			t.Errorf("amount = %#v, want [42.00]", got.ExtractedFields["amount"])
		}
	})

	t.Run("category without rules", func(t *testing.T) {
		got, err := c.ExtractMetadata(ctx, "Anything at all", "letter")
		if err != nil {
			t.Fatalf("ExtractMetadata() err = %v", err)
		}
		if len(got.ExtractedFields) != 0 {
			t.Errorf("ExtractedFields = %#v, want empty", got.ExtractedFields)
		}
	})
}

func TestDocumentStructure(t *testing.T) {
	c := New()
	ctx := context.Background()

	t.Run("headers tables and lists", func(t *testing.T) {
		text := "SECTION ONE\nSECTION TWO\nSECTION THREE\n" +
			"col1\tcol2\n" +
			"- first\n- second\n- third\n" +
			"\nbody text"
		got, err := c.DocumentStructure(ctx, text)
		if err != nil {
			t.Fatalf("DocumentStructure() err = %v", err)
		}
		if !got.HasHeaders {
			t.Error("HasHeaders = false, want true")
		}
		if !got.HasTables {
			t.Error("HasTables = false, want true")
		}
		if !got.HasLists {
			t.Error("HasLists = false, want true")
		}
		if got.TotalLines != 9 {
			t.Errorf("TotalLines = %d, want 9", got.TotalLines)
		}
		if got.NonEmptyLines != 8 {
			t.Errorf("NonEmptyLines = %d, want 8", got.NonEmptyLines)
		}
	})

	t.Run("plain prose", func(t *testing.T) {
		got, err := c.DocumentStructure(ctx, "Just a single paragraph of ordinary prose.")
		if err != nil {
			t.Fatalf("DocumentStructure() err = %v", err)
		}
		if got.HasHeaders || got.HasTables || got.HasLists {
			t.Errorf("structure flags = %v/%v/%v, want all false",
				got.HasHeaders, got.HasTables, got.HasLists)
		}
		if got.TotalLines != 1 || got.NonEmptyLines != 1 {
			t.Errorf("lines = %d/%d, want 1/1", got.TotalLines, got.NonEmptyLines)
		}
	})
}
