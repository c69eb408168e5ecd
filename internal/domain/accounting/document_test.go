package accounting

import (
	"testing"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentType_IsValid(t *testing.T) {
	tests := []struct {
		docType  DocumentType
		expected bool
	}{
		{DocumentTypeInvoice, true},
		{DocumentTypeCreditNote, true},
		{DocumentTypeReceipt, true},
		{DocumentType("PURCHASE_ORDER"), false},
		{DocumentType(""), false},
	}

	for _, tc := range tests {
		t.Run(string(tc.docType), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.docType.IsValid())
		})
	}
}

func TestNewDocument(t *testing.T) {
	issueDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates draft with initial token", func(t *testing.T) {
		doc, err := NewDocument("INV-2026-00042", DocumentTypeInvoice, "Acme GmbH", issueDate, valueobject.EUR)
		require.NoError(t, err)

		assert.Equal(t, DocumentStatusDraft, doc.Status)
		assert.NotEqual(t, uuid.Nil, doc.ID)
		assert.False(t, doc.RowVersion.IsZero())
		assert.False(t, doc.Deleted)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := []struct {
			name     string
			number   string
			docType  DocumentType
			partner  string
			date     time.Time
			currency valueobject.Currency
		}{
			{"empty number", "", DocumentTypeInvoice, "Acme", issueDate, valueobject.EUR},
			{"bad type", "INV-1", DocumentType("X"), "Acme", issueDate, valueobject.EUR},
			{"empty partner", "INV-1", DocumentTypeInvoice, "  ", issueDate, valueobject.EUR},
			{"zero date", "INV-1", DocumentTypeInvoice, "Acme", time.Time{}, valueobject.EUR},
			{"bad currency", "INV-1", DocumentTypeInvoice, "Acme", issueDate, valueobject.Currency("XYZ")},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewDocument(tc.number, tc.docType, tc.partner, tc.date, tc.currency)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, "INVALID_INPUT", domainErr.Code)
			})
		}
	})
}

func TestDocument_UpdateDetails(t *testing.T) {
	issueDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("replaces fields and advances token", func(t *testing.T) {
		doc, err := NewDocument("INV-1", DocumentTypeInvoice, "Acme", issueDate, valueobject.EUR)
		require.NoError(t, err)
		before := doc.GetRowVersion()

		err = doc.UpdateDetails("Acme International", issueDate.AddDate(0, 0, 1), "corrected partner")
		require.NoError(t, err)

		assert.Equal(t, "Acme International", doc.PartnerName)
		assert.False(t, before.Equal(doc.GetRowVersion()))
	})

	t.Run("rejects update of cancelled document", func(t *testing.T) {
		doc, err := NewDocument("INV-1", DocumentTypeInvoice, "Acme", issueDate, valueobject.EUR)
		require.NoError(t, err)
		require.NoError(t, doc.Cancel())

		err = doc.UpdateDetails("Other", issueDate, "")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestDocument_Lifecycle(t *testing.T) {
	issueDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("post then cancel", func(t *testing.T) {
		doc, err := NewDocument("INV-1", DocumentTypeInvoice, "Acme", issueDate, valueobject.EUR)
		require.NoError(t, err)

		require.NoError(t, doc.Post())
		assert.Equal(t, DocumentStatusPosted, doc.Status)

		require.NoError(t, doc.Cancel())
		assert.Equal(t, DocumentStatusCancelled, doc.Status)
	})

	t.Run("cannot post twice", func(t *testing.T) {
		doc, err := NewDocument("INV-1", DocumentTypeInvoice, "Acme", issueDate, valueobject.EUR)
		require.NoError(t, err)
		require.NoError(t, doc.Post())

		assert.ErrorIs(t, doc.Post(), shared.ErrInvalidState)
	})

	t.Run("delete is logical and advances the token", func(t *testing.T) {
		doc, err := NewDocument("INV-1", DocumentTypeInvoice, "Acme", issueDate, valueobject.EUR)
		require.NoError(t, err)
		before := doc.GetRowVersion()

		doc.MarkDeleted()
		assert.True(t, doc.IsDeleted())
		assert.False(t, before.Equal(doc.GetRowVersion()))
	})
}

func TestNewDocumentLine(t *testing.T) {
	docID := uuid.New()

	t.Run("computes amount from quantity and price", func(t *testing.T) {
		line, err := NewDocumentLine(docID, 1, "steel beams",
			decimal.RequireFromString("2.5"), decimal.RequireFromString("19.99"), decimal.NewFromInt(19))
		require.NoError(t, err)

		assert.True(t, decimal.RequireFromString("49.975").Equal(line.Amount))
	})

	t.Run("rejects negative values", func(t *testing.T) {
		_, err := NewDocumentLine(docID, 1, "x", decimal.NewFromInt(-1), decimal.NewFromInt(1), decimal.Zero)
		assert.Error(t, err)

		_, err = NewDocumentLine(docID, 1, "x", decimal.NewFromInt(1), decimal.NewFromInt(-1), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("requires document reference and line number", func(t *testing.T) {
		_, err := NewDocumentLine(uuid.Nil, 1, "x", decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero)
		assert.Error(t, err)

		_, err = NewDocumentLine(docID, 0, "x", decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero)
		assert.Error(t, err)
	})
}

func TestDocumentLine_UpdateDetails(t *testing.T) {
	docID := uuid.New()

	line, err := NewDocumentLine(docID, 1, "steel beams",
		decimal.NewFromInt(2), decimal.NewFromInt(10), decimal.NewFromInt(19))
	require.NoError(t, err)
	before := line.GetRowVersion()

	err = line.UpdateDetails("steel beams, galvanized",
		decimal.NewFromInt(3), decimal.NewFromInt(10), decimal.NewFromInt(19))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(30).Equal(line.Amount), "amount recomputed on update")
	assert.False(t, before.Equal(line.GetRowVersion()))
}

func TestDocumentLine_VATAmount(t *testing.T) {
	docID := uuid.New()

	line, err := NewDocumentLine(docID, 1, "steel beams",
		decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.NewFromInt(19))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(19).Equal(line.VATAmount()))
}
