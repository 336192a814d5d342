package models

import "time"

// TransactionStatusResponse is the full status view of a transaction,
// including its timeline.
type TransactionStatusResponse struct {
	Transaction Transaction     `json:"transaction"`
	Timeline    []TimelineEntry `json:"timeline"`
}

// TransactionReceipt is the formatted receipt for a completed transaction.
type TransactionReceipt struct {
	ReceiptID     string               `json:"receipt_id"`
	TransactionID string               `json:"transaction_id"`
	ReceiptDate   time.Time            `json:"receipt_date"`
	Summary       ReceiptSummary       `json:"transaction_summary"`
	Parties       ReceiptParties       `json:"parties"`
	Compliance    ReceiptCompliance    `json:"compliance"`
	DownloadLinks ReceiptDownloadLinks `json:"download_links"`
}

// ReceiptSummary holds the human-readable amount lines of a receipt.
type ReceiptSummary struct {
	Description    string `json:"description"`
	AmountPaid     string `json:"amount_paid"`
	AmountReceived string `json:"amount_received"`
	ExchangeRate   string `json:"exchange_rate"`
	ProcessingFee  string `json:"processing_fee"`
}

// ReceiptParties identifies payer and provider.
type ReceiptParties struct {
	Payer           string `json:"payer"`
	ServiceProvider string `json:"service_provider"`
}

// ReceiptCompliance holds regulatory references.
type ReceiptCompliance struct {
	ReceiptNumber  string `json:"receipt_number"`
	TaxReference   string `json:"tax_reference,omitempty"`
	RegulatoryNote string `json:"regulatory_note,omitempty"`
}

// ReceiptDownloadLinks holds the rendered receipt locations.
type ReceiptDownloadLinks struct {
	PDF  string `json:"pdf"`
	HTML string `json:"html"`
}
