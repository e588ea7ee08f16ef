package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var platesCmd = &cobra.Command{
	Use:   "plates",
	Short: "Issue and administer license plates",
}

var plateIssueFlags struct {
	plateNumber string
	ownerID     string
	vehicleID   string
}

var platesIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a plate onto a vehicle",
	RunE:  runPlatesIssue,
}

var platesGetCmd = &cobra.Command{
	Use:   "get <plate-id>",
	Short: "Show a plate",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlatesGet,
}

var platesSetStatusCmd = &cobra.Command{
	Use:   "set-status <plate-id> <status>",
	Short: "Change a plate's status (AVAILABLE, IN_USE, TRANSFERRED_OUT, DAMAGED, RETIRED)",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlatesSetStatus,
}

var platesByOwnerCmd = &cobra.Command{
	Use:   "by-owner <owner-id>",
	Short: "List every plate registered to an owner",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlatesByOwner,
}

func init() {
	f := platesIssueCmd.Flags()
	f.StringVar(&plateIssueFlags.plateNumber, "number", "", "Plate number (required)")
	f.StringVar(&plateIssueFlags.ownerID, "owner", "", "Owner ID (required)")
	f.StringVar(&plateIssueFlags.vehicleID, "vehicle", "", "Vehicle ID (required)")
	_ = platesIssueCmd.MarkFlagRequired("number")
	_ = platesIssueCmd.MarkFlagRequired("owner")
	_ = platesIssueCmd.MarkFlagRequired("vehicle")

	platesCmd.AddCommand(platesIssueCmd)
	platesCmd.AddCommand(platesGetCmd)
	platesCmd.AddCommand(platesSetStatusCmd)
	platesCmd.AddCommand(platesByOwnerCmd)
}

func runPlatesIssue(cmd *cobra.Command, args []string) error {
	client := newClient()

	body := map[string]any{
		"plateNumber": plateIssueFlags.plateNumber,
		"ownerId":     plateIssueFlags.ownerID,
		"vehicleId":   plateIssueFlags.vehicleID,
	}

	var resp plateResponse
	if err := client.postJSON("/api/v1/plates", body, &resp); err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(resp)
	}
	fmt.Printf("Plate %s issued on vehicle %s (ID %s)\n", resp.PlateNumber, resp.VehicleID, resp.ID)
	return nil
}

func runPlatesGet(cmd *cobra.Command, args []string) error {
	client := newClient()

	var resp plateResponse
	if err := client.getJSON("/api/v1/plates/"+args[0], &resp); err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(resp)
	}
	printPlateTable([]plateResponse{resp})
	return nil
}

func runPlatesSetStatus(cmd *cobra.Command, args []string) error {
	client := newClient()

	var resp plateResponse
	if err := client.patchJSON("/api/v1/plates/"+args[0]+"/status", map[string]any{"status": args[1]}, &resp); err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(resp)
	}
	fmt.Printf("Plate %s is now %s\n", resp.PlateNumber, resp.Status)
	return nil
}

func runPlatesByOwner(cmd *cobra.Command, args []string) error {
	client := newClient()

	var resp []plateResponse
	if err := client.getJSON("/api/v1/plates/by-owner/"+args[0], &resp); err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(resp)
	}
	printPlateTable(resp)
	return nil
}

func printPlateTable(plates []plateResponse) {
	rows := make([][]string, 0, len(plates))
	for _, p := range plates {
		vehicleID := p.VehicleID
		if vehicleID == "" {
			vehicleID = "-"
		}
		rows = append(rows, []string{p.ID, p.PlateNumber, p.Status, vehicleID, p.OwnerID})
	}
	printTable([]string{"ID", "Number", "Status", "Vehicle", "Owner"}, rows)
}
