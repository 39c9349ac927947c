package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Document type codes used as number prefixes and sequence keys.
const (
	DocTypePurchaseOrder = "PO"
	DocTypeSalesOrder    = "SO"
	DocTypeReceipt       = "GR"
	DocTypeTransfer      = "TR"
)

// NextDocumentNumberTx advances the owner's gapless counter for docType and
// returns the formatted number, e.g. "SO-00042". It must run inside the
// submission's transaction: the upsert takes a row lock on the sequence, so
// concurrent submissions serialize on it, and a rolled-back submission does
// not consume a number.
func NextDocumentNumberTx(ctx context.Context, tx pgx.Tx, ownerID int, docType string) (string, error) {
	var lastNumber int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (owner_id, doc_type, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (owner_id, doc_type)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number
	`, ownerID, docType).Scan(&lastNumber)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s sequence number: %w", docType, err)
	}
	return fmt.Sprintf("%s-%05d", docType, lastNumber), nil
}
