package fiscal

import (
	"encoding/csv"
	"io"
)

// LedgerHeader is the column row of the livre des recettes export.
var LedgerHeader = []string{
	"Date Encaissement",
	"Référence",
	"Client",
	"Montant HT",
	"TVA",
	"Montant TTC",
	"Mode de Paiement",
}

const (
	defaultPaymentMethod = "Virement"
	unknownClient        = "Inconnu"
)

// WriteLedgerCSV writes the entries in the order given.
func WriteLedgerCSV(w io.Writer, entries []LedgerEntry) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(LedgerHeader); err != nil {
		return err
	}
	for _, e := range entries {
		paid := ""
		if e.PaymentDate != nil {
			paid = e.PaymentDate.Format("02/01/2006")
		}
		client := e.ClientName
		if client == "" {
			client = unknownClient
		}
		method := e.PaymentMethod
		if method == "" {
			method = defaultPaymentMethod
		}
		if err := writer.Write([]string{
			paid,
			e.QuoteNumber,
			client,
			e.Subtotal.StringFixed(2),
			e.TaxAmount.StringFixed(2),
			e.Total.StringFixed(2),
			method,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
