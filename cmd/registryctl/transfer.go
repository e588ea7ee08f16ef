package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var transferFlags struct {
	vehicleID      string
	currentOwnerID string
	newOwnerID     string
	amount         int64
	newPlateNumber string
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer vehicle ownership",
	Long: `Transfer ownership of a vehicle from its current owner to a new one.

The current plate is released back to the seller, a new plate is issued to
the buyer, and the ownership ledger records the change. The whole transfer
is atomic: it either fully succeeds or leaves the registry untouched.`,
	RunE: runTransfer,
}

func init() {
	f := transferCmd.Flags()
	f.StringVar(&transferFlags.vehicleID, "vehicle", "", "Vehicle ID (required)")
	f.StringVar(&transferFlags.currentOwnerID, "from", "", "Current owner ID (required)")
	f.StringVar(&transferFlags.newOwnerID, "to", "", "New owner ID (required)")
	f.Int64Var(&transferFlags.amount, "amount", 0, "Transfer amount in minor currency units (required)")
	f.StringVar(&transferFlags.newPlateNumber, "new-plate", "", "Plate number to issue to the new owner (required)")
	_ = transferCmd.MarkFlagRequired("vehicle")
	_ = transferCmd.MarkFlagRequired("from")
	_ = transferCmd.MarkFlagRequired("to")
	_ = transferCmd.MarkFlagRequired("amount")
	_ = transferCmd.MarkFlagRequired("new-plate")
}

func runTransfer(cmd *cobra.Command, args []string) error {
	client := newClient()

	body := map[string]any{
		"vehicleId":      transferFlags.vehicleID,
		"currentOwnerId": transferFlags.currentOwnerID,
		"newOwnerId":     transferFlags.newOwnerID,
		"transferAmount": transferFlags.amount,
		"newPlateNumber": transferFlags.newPlateNumber,
	}

	var resp transferResponse
	if err := client.postJSON("/api/v1/ownership/transfers", body, &resp); err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(resp)
	}
	fmt.Printf("Vehicle %s transferred from %s to %s; plate %s released, plate %s issued\n",
		resp.Vehicle.ChassisNumber, resp.FromOwnerID, resp.ToOwnerID,
		resp.OldPlateNumber, resp.NewPlateNumber)
	return nil
}
