package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/transport-authority/vehicle-registry/pkg/audit"
	"github.com/transport-authority/vehicle-registry/pkg/owner"
	"github.com/transport-authority/vehicle-registry/pkg/plate"
	"github.com/transport-authority/vehicle-registry/pkg/registration"
	"github.com/transport-authority/vehicle-registry/pkg/registryerrors"
	"github.com/transport-authority/vehicle-registry/pkg/transfer"
)

// --- Owners (CRUD glue around the core) ---

type createOwnerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	NationalID  string `json:"nationalId"`
}

func (s *Server) handleCreateOwner(w http.ResponseWriter, r *http.Request) {
	var req createOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	o := &owner.Owner{
		Identity: owner.Identity{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
			NationalID:  req.NationalID,
		},
	}
	if err := s.owners.Create(o); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleGetOwner(w http.ResponseWriter, r *http.Request) {
	o, err := s.owners.GetByID(chi.URLParam(r, "ownerID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// --- Vehicles ---

func (s *Server) handleRegisterVehicle(w http.ResponseWriter, r *http.Request) {
	var in registration.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	view, err := s.registration.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	state, err := s.queries.VehicleState(chi.URLParam(r, "vehicleID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleDeleteVehicle soft-deletes a vehicle and retires its plates in one
// transaction. History stays intact.
func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleID")
	err := s.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := s.vehicles.WithTx(tx).SoftDelete(vehicleID); err != nil {
			return err
		}
		if err := s.plates.WithTx(tx).RetireAllOnVehicle(vehicleID); err != nil {
			return err
		}
		if s.audits != nil {
			_ = s.audits.WithTx(tx).Append(&audit.Event{
				EventType: audit.EventVehicleDeleted,
				VehicleID: vehicleID,
			})
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Ownership ---

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transfer.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	result, err := s.coordinator.Transfer(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistoryByVehicle(w http.ResponseWriter, r *http.Request) {
	views, err := s.queries.HistoryByVehicle(chi.URLParam(r, "vehicleID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleHistoryByChassis(w http.ResponseWriter, r *http.Request) {
	chassis := r.URL.Query().Get("chassisNumber")
	if chassis == "" {
		writeBadRequest(w, "chassisNumber query parameter is required")
		return
	}
	views, err := s.queries.HistoryByChassis(chassis)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleHistoryByPlate(w http.ResponseWriter, r *http.Request) {
	plateNumber := r.URL.Query().Get("plateNumber")
	if plateNumber == "" {
		writeBadRequest(w, "plateNumber query parameter is required")
		return
	}
	views, err := s.queries.HistoryByPlate(plateNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// --- Plates ---

type issuePlateRequest struct {
	PlateNumber string `json:"plateNumber"`
	OwnerID     string `json:"ownerId"`
	VehicleID   string `json:"vehicleId"`
}

// handleIssuePlate issues a plate onto an existing vehicle. The requested
// owner must be the vehicle's current owner per the ledger; any plate
// currently IN_USE on the vehicle is transferred out first so the vehicle
// never carries two active plates.
func (s *Server) handleIssuePlate(w http.ResponseWriter, r *http.Request) {
	var req issuePlateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	var issued *plate.Plate
	err := s.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		vehicles := s.vehicles.WithTx(tx)
		owners := s.owners.WithTx(tx)
		plates := s.plates.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		v, err := vehicles.GetByID(req.VehicleID)
		if err != nil {
			return err
		}
		o, err := owners.GetByID(req.OwnerID)
		if err != nil {
			return err
		}
		current, err := ledger.CurrentByVehicle(v.ID)
		if err != nil {
			return err
		}
		if current.OwnerID != o.ID {
			return registryerrors.Newf(registryerrors.CodeValidation,
				"owner %s is not the current owner of vehicle %s; plates can only be issued to the vehicle's current owner",
				o.ID, v.ID)
		}
		if _, err := plates.TransferOutActive(v.ID); err != nil {
			return err
		}
		issued, err = plates.Issue(req.PlateNumber, o.ID, v.ID)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issued)
}

func (s *Server) handleGetPlate(w http.ResponseWriter, r *http.Request) {
	p, err := s.plates.GetByID(chi.URLParam(r, "plateID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type setPlateStatusRequest struct {
	Status plate.Status `json:"status"`
}

func (s *Server) handleSetPlateStatus(w http.ResponseWriter, r *http.Request) {
	var req setPlateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	plateID := chi.URLParam(r, "plateID")
	p, err := s.plates.SetStatus(plateID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.audits != nil {
		_ = s.audits.Append(&audit.Event{
			EventType: audit.EventPlateStatusChanged,
			VehicleID: p.VehicleID,
			Detail: audit.JSONMap{
				"plateId":     p.ID,
				"plateNumber": p.Value,
				"status":      string(p.Status),
			},
		})
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePlatesByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	if _, err := s.owners.GetByID(ownerID); err != nil {
		writeError(w, err)
		return
	}
	plates, err := s.plates.ListByOwner(ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plates)
}

// --- Audit ---

func (s *Server) handleAuditByVehicle(w http.ResponseWriter, r *http.Request) {
	events, err := s.audits.ListByVehicle(chi.URLParam(r, "vehicleID"), 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
