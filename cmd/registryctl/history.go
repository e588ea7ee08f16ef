package main

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse ownership history",
}

var historyVehicleCmd = &cobra.Command{
	Use:   "vehicle <vehicle-id>",
	Short: "Ownership history of a vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showHistory("/api/v1/ownership/history/by-vehicle/" + args[0])
	},
}

var historyChassisCmd = &cobra.Command{
	Use:   "chassis <chassis-number>",
	Short: "Ownership history by chassis number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showHistory("/api/v1/ownership/history/by-chassis?chassisNumber=" + url.QueryEscape(args[0]))
	},
}

var historyPlateCmd = &cobra.Command{
	Use:   "plate <plate-number>",
	Short: "Ownership history by plate number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showHistory("/api/v1/ownership/history/by-plate?plateNumber=" + url.QueryEscape(args[0]))
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit <vehicle-id>",
	Short: "Audit trail of a vehicle",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudit,
}

func init() {
	historyCmd.AddCommand(historyVehicleCmd)
	historyCmd.AddCommand(historyChassisCmd)
	historyCmd.AddCommand(historyPlateCmd)
}

func showHistory(path string) error {
	client := newClient()

	var resp []recordViewResponse
	if err := client.getJSON(path, &resp); err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(resp)
	}

	rows := make([][]string, 0, len(resp))
	for _, r := range resp {
		end := "current"
		if r.EndDate != nil {
			end = r.EndDate.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			r.Vehicle.ChassisNumber,
			r.Owner.FirstName + " " + r.Owner.LastName,
			r.StartDate.Format(time.RFC3339),
			end,
			strconv.FormatInt(r.TransferAmount, 10),
		})
	}
	printTable([]string{"Chassis", "Owner", "From", "To", "Amount"}, rows)
	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	client := newClient()

	var resp []auditEventResponse
	if err := client.getJSON("/api/v1/audit/by-vehicle/"+args[0], &resp); err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(resp)
	}

	rows := make([][]string, 0, len(resp))
	for _, e := range resp {
		rows = append(rows, []string{
			e.CreatedAt.Format(time.RFC3339),
			e.EventType,
			fmt.Sprintf("%v", e.Detail),
		})
	}
	printTable([]string{"Time", "Event", "Detail"}, rows)
	return nil
}
