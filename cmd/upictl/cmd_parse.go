package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boopathydreams/capnpay-upi/internal/domain"
	"github.com/boopathydreams/capnpay-upi/internal/usecase"
)

var parseCmd = &cobra.Command{
	Use:   "parse [payload]",
	Short: "Decode a QR payload into a payment descriptor",
	Example: `  upictl parse "upi://pay?pa=shop@ybl&pn=Shop&am=120"
  upictl parse "paytm://pay?pa=shop@paytm&am=1"`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

type descriptorView struct {
	PayeeAddress    string `json:"payeeAddress"`
	PayeeName       string `json:"payeeName,omitempty"`
	Amount          string `json:"amount,omitempty"`
	Note            string `json:"note,omitempty"`
	CurrencyCode    string `json:"currencyCode"`
	MerchantCode    string `json:"merchantCode,omitempty"`
	TransactionRef  string `json:"transactionRef,omitempty"`
	OriginalPayload string `json:"originalPayload"`
	IsMerchant      bool   `json:"isMerchant"`
}

func viewOf(d domain.PaymentDescriptor) descriptorView {
	return descriptorView{
		PayeeAddress:    d.PayeeAddress,
		PayeeName:       d.PayeeName,
		Amount:          d.Amount,
		Note:            d.Note,
		CurrencyCode:    d.CurrencyCode,
		MerchantCode:    d.MerchantCode,
		TransactionRef:  d.TransactionRef,
		OriginalPayload: d.OriginalPayload,
		IsMerchant:      d.IsMerchant,
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	d, err := usecase.Decode(args[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(viewOf(d), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
