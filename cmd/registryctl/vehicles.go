package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "Register and inspect vehicles",
}

var vehicleRegisterFlags struct {
	chassisNumber       string
	modelName           string
	manufacturerCompany string
	manufacturedYear    int
	price               int64
	ownerID             string
	plateNumber         string
}

var vehiclesRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new vehicle with its first plate and owner",
	RunE:  runVehiclesRegister,
}

var vehiclesGetCmd = &cobra.Command{
	Use:   "get <vehicle-id>",
	Short: "Show a vehicle with its current plate and owner",
	Args:  cobra.ExactArgs(1),
	RunE:  runVehiclesGet,
}

var vehiclesDeleteCmd = &cobra.Command{
	Use:   "delete <vehicle-id>",
	Short: "Remove a vehicle from the registry (history is kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runVehiclesDelete,
}

func init() {
	f := vehiclesRegisterCmd.Flags()
	f.StringVar(&vehicleRegisterFlags.chassisNumber, "chassis", "", "Chassis number (required)")
	f.StringVar(&vehicleRegisterFlags.modelName, "model", "", "Model name (required)")
	f.StringVar(&vehicleRegisterFlags.manufacturerCompany, "manufacturer", "", "Manufacturer company")
	f.IntVar(&vehicleRegisterFlags.manufacturedYear, "year", 0, "Year of manufacture (required)")
	f.Int64Var(&vehicleRegisterFlags.price, "price", 0, "Price in minor currency units (required)")
	f.StringVar(&vehicleRegisterFlags.ownerID, "owner", "", "Owner ID (required)")
	f.StringVar(&vehicleRegisterFlags.plateNumber, "plate", "", "Plate number to issue (required)")
	_ = vehiclesRegisterCmd.MarkFlagRequired("chassis")
	_ = vehiclesRegisterCmd.MarkFlagRequired("model")
	_ = vehiclesRegisterCmd.MarkFlagRequired("year")
	_ = vehiclesRegisterCmd.MarkFlagRequired("price")
	_ = vehiclesRegisterCmd.MarkFlagRequired("owner")
	_ = vehiclesRegisterCmd.MarkFlagRequired("plate")

	vehiclesCmd.AddCommand(vehiclesRegisterCmd)
	vehiclesCmd.AddCommand(vehiclesGetCmd)
	vehiclesCmd.AddCommand(vehiclesDeleteCmd)
}

func runVehiclesRegister(cmd *cobra.Command, args []string) error {
	client := newClient()

	body := map[string]any{
		"chassisNumber":       vehicleRegisterFlags.chassisNumber,
		"modelName":           vehicleRegisterFlags.modelName,
		"manufacturerCompany": vehicleRegisterFlags.manufacturerCompany,
		"manufacturedYear":    vehicleRegisterFlags.manufacturedYear,
		"price":               vehicleRegisterFlags.price,
		"ownerId":             vehicleRegisterFlags.ownerID,
		"plateNumber":         vehicleRegisterFlags.plateNumber,
	}

	var resp registrationResponse
	if err := client.postJSON("/api/v1/vehicles", body, &resp); err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(resp)
	}
	fmt.Printf("Vehicle %s registered with ID %s, plate %s, owner %s\n",
		resp.Vehicle.ChassisNumber, resp.Vehicle.ID, resp.CurrentPlate.PlateNumber, resp.OwnerName)
	return nil
}

func runVehiclesGet(cmd *cobra.Command, args []string) error {
	client := newClient()

	var resp vehicleStateResponse
	if err := client.getJSON("/api/v1/vehicles/"+args[0], &resp); err != nil {
		return err
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(resp)
	}

	plateNumber, plateStatus := "-", "-"
	if resp.CurrentPlate != nil {
		plateNumber = resp.CurrentPlate.PlateNumber
		plateStatus = resp.CurrentPlate.Status
	}
	ownerName := "-"
	if resp.CurrentOwner != nil {
		ownerName = resp.CurrentOwner.FirstName + " " + resp.CurrentOwner.LastName
	}

	printTable(
		[]string{"ID", "Chassis", "Model", "Year", "Plate", "Plate Status", "Owner"},
		[][]string{{
			resp.Vehicle.ID,
			resp.Vehicle.ChassisNumber,
			resp.Vehicle.ModelName,
			strconv.Itoa(resp.Vehicle.ManufacturedYear),
			plateNumber,
			plateStatus,
			ownerName,
		}},
	)
	return nil
}

func runVehiclesDelete(cmd *cobra.Command, args []string) error {
	client := newClient()
	if err := client.delete("/api/v1/vehicles/" + args[0]); err != nil {
		return err
	}
	fmt.Printf("Vehicle %s removed\n", args[0])
	return nil
}
