package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

// viewOutput is what `get` prints. It never carries the card number.
type viewOutput struct {
	ID               string `json:"id" yaml:"id"`
	MaskedCardNumber string `json:"maskedCardNumber" yaml:"maskedCardNumber"`
	ExpiryMonth      string `json:"expiryMonth" yaml:"expiryMonth"`
	ExpiryYear       string `json:"expiryYear" yaml:"expiryYear"`
	Amount           string `json:"amount" yaml:"amount"`
	Currency         string `json:"currency" yaml:"currency"`
	Status           string `json:"status" yaml:"status"`
}

func getCmd(build appBuilder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show a stored payment with its card number masked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported output format %q (want json or yaml)", format)
			}

			ctx := cmd.Context()
			a, err := build(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			view, err := a.Service.Retrieve(ctx, args[0])
			if err != nil {
				return err
			}
			return printView(cmd.OutOrStdout(), view, format)
		},
	}

	cmd.Flags().StringP("output", "o", "json", "Output format (json, yaml)")
	return cmd
}

func printView(w io.Writer, v payments.View, format string) error {
	out := viewOutput{
		ID:               v.ID,
		MaskedCardNumber: v.MaskedCardNumber,
		ExpiryMonth:      v.ExpiryMonth,
		ExpiryYear:       v.ExpiryYear,
		Amount:           v.Amount.String(),
		Currency:         v.Currency,
		Status:           string(v.Status),
	}
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
