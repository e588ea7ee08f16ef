package main

import "time"

// Response shapes mirrored from the server API. Only the fields the CLI
// renders are declared.

type ownerResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	NationalID  string `json:"nationalId"`
	Status      string `json:"status"`
}

type vehicleResponse struct {
	ID                  string `json:"id"`
	ChassisNumber       string `json:"chassisNumber"`
	ModelName           string `json:"modelName"`
	ManufacturerCompany string `json:"manufacturerCompany"`
	ManufacturedYear    int    `json:"manufacturedYear"`
	Price               int64  `json:"price"`
}

type vehicleSummary struct {
	ID            string `json:"id"`
	ChassisNumber string `json:"chassisNumber"`
	ModelName     string `json:"modelName"`
}

type plateResponse struct {
	ID          string    `json:"id"`
	PlateNumber string    `json:"plateNumber"`
	OwnerID     string    `json:"ownerId"`
	VehicleID   string    `json:"vehicleId"`
	Status      string    `json:"status"`
	IssuedAt    time.Time `json:"issuedAt"`
}

type ownerName struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type recordResponse struct {
	ID             string     `json:"id"`
	VehicleID      string     `json:"vehicleId"`
	OwnerID        string     `json:"ownerId"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	TransferAmount int64      `json:"transferAmount"`
}

type recordViewResponse struct {
	ID             string         `json:"id"`
	Vehicle        vehicleSummary `json:"vehicle"`
	Owner          ownerName      `json:"owner"`
	StartDate      time.Time      `json:"startDate"`
	EndDate        *time.Time     `json:"endDate"`
	TransferAmount int64          `json:"transferAmount"`
}

type vehicleStateResponse struct {
	Vehicle       *vehicleResponse `json:"vehicle"`
	CurrentPlate  *plateResponse   `json:"currentPlate"`
	CurrentOwner  *ownerName       `json:"currentOwner"`
	CurrentRecord *recordResponse  `json:"currentRecord"`
}

type registrationResponse struct {
	Vehicle      *vehicleResponse `json:"vehicle"`
	CurrentPlate *plateResponse   `json:"currentPlate"`
	OwnerID      string           `json:"ownerId"`
	OwnerName    string           `json:"ownerName"`
}

type transferResponse struct {
	Vehicle        vehicleSummary  `json:"vehicle"`
	FromOwnerID    string          `json:"fromOwnerId"`
	ToOwnerID      string          `json:"toOwnerId"`
	OldPlateNumber string          `json:"oldPlateNumber"`
	NewPlateNumber string          `json:"newPlateNumber"`
	ClosedRecord   *recordResponse `json:"closedRecord"`
	NewRecord      *recordResponse `json:"newRecord"`
}

type auditEventResponse struct {
	ID        string         `json:"id"`
	EventType string         `json:"eventType"`
	Actor     string         `json:"actor"`
	VehicleID string         `json:"vehicleId"`
	Detail    map[string]any `json:"detail"`
	CreatedAt time.Time      `json:"createdAt"`
}
