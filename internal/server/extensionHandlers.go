package server

import (
	"cheggienexus/internal/database"
	"cheggienexus/internal/model"
	"encoding/json"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"net/http"
	"time"
)

type extensionView struct {
	ExtensionID      string `json:"extension_id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	TotalUsers       int    `json:"total_users"`
	TotalCreditsUsed int    `json:"total_credits_used"`
}

func toExtensionView(e model.CheggExtension) extensionView {
	return extensionView{
		ExtensionID:      e.ID.Hex(),
		Name:             e.Name,
		Description:      e.Description,
		TotalUsers:       e.Metadata.TotalUsers,
		TotalCreditsUsed: e.Metadata.TotalCreditsUsed,
	}
}

type extensionUserView struct {
	UserID      string    `json:"user_id"`
	CheggIDName string    `json:"chegg_id_name"`
	CreditsUsed int       `json:"credits_used"`
	Status      string    `json:"status"`
	AddedAt     time.Time `json:"added_at"`
}

func (s Server) extensionCreate() http.HandlerFunc {
	type request struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("extensionCreate: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "Name is required", http.StatusBadRequest)
			return
		}

		e := model.CheggExtension{
			Name:        req.Name,
			Description: req.Description,
		}
		id, err := s.DB.ExtensionInsert(r.Context(), e)
		if err != nil {
			if mongo.IsDuplicateKeyError(errors.Cause(err)) {
				http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
				return
			}
			s.Logger.Errorf("extensionCreate: Error inserting CheggExtension, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		e, err = s.DB.ExtensionFindOne(r.Context(), id)
		if err != nil {
			s.Logger.Errorf("extensionCreate: Error finding inserted CheggExtension with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, toExtensionView(e), http.StatusCreated)
	}
}

func (s Server) extensionList() http.HandlerFunc {
	type response []extensionView
	return func(w http.ResponseWriter, r *http.Request) {
		es, err := s.DB.ExtensionsFindAll(r.Context())
		if err != nil {
			s.Logger.Errorf("extensionList: Error finding CheggExtensions, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		resp := response{}
		for _, e := range es {
			resp = append(resp, toExtensionView(e))
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) extensionGetOne() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["extID"]
		e, err := s.DB.ExtensionFindOne(r.Context(), id)
		if err != nil {
			if errors.Is(errors.Cause(err), mongo.ErrNoDocuments) {
				http.Error(w, "Extension not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("extensionGetOne: Error finding CheggExtension with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		s.writeJsonResponse(w, toExtensionView(e), http.StatusOK)
	}
}

func (s Server) extensionUpdate() http.HandlerFunc {
	type request struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("extensionUpdate: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Name == "" && req.Description == "" {
			http.Error(w, "Nothing to update", http.StatusBadRequest)
			return
		}

		id := mux.Vars(r)["extID"]
		if err := s.DB.ExtensionUpdate(r.Context(), id, req.Name, req.Description); err != nil {
			s.Logger.Debugf("extensionUpdate: Error updating CheggExtension with ID: %s, err: %v", id, err)
			http.Error(w, "Extension not found", http.StatusNotFound)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) extensionDelete() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["extID"]
		if err := s.DB.ExtensionDelete(r.Context(), id); err != nil {
			if errors.Is(errors.Cause(err), mongo.ErrNoDocuments) {
				http.Error(w, "Extension not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("extensionDelete: Error deleting CheggExtension with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) extensionUserAdd() http.HandlerFunc {
	type request struct {
		UserID      string `json:"user_id"`
		CheggIDName string `json:"chegg_id_name"`
		Status      string `json:"status"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("extensionUserAdd: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("extensionUserAdd: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.CheggIDName == "" {
			http.Error(w, "chegg_id_name is required", http.StatusBadRequest)
			return
		}
		if req.Status == "" {
			req.Status = model.ExtensionUserStatusActive
		}

		// Members enroll themselves; an admin can enroll anyone.
		userID := uc.user.ID
		if req.UserID != "" && req.UserID != uc.user.ID.Hex() {
			if !uc.user.IsAdmin() {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			userID, err = primitive.ObjectIDFromHex(req.UserID)
			if err != nil {
				http.Error(w, "Invalid user_id", http.StatusBadRequest)
				return
			}
		}

		id := mux.Vars(r)["extID"]
		eu := model.ExtensionUser{
			UserID:      userID,
			CheggIDName: req.CheggIDName,
			Status:      req.Status,
		}
		if err = s.DB.ExtensionUserAdd(r.Context(), id, eu); err != nil {
			if errors.Is(errors.Cause(err), database.ErrNoDocumentsModified) {
				http.Error(w, "Extension not found or user already enrolled", http.StatusConflict)
				return
			}
			s.Logger.Errorf("extensionUserAdd: Error adding User to CheggExtension with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusCreated)
	}
}

func (s Server) extensionUsersGet() http.HandlerFunc {
	type response []extensionUserView
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["extID"]
		e, err := s.DB.ExtensionFindOne(r.Context(), id)
		if err != nil {
			if errors.Is(errors.Cause(err), mongo.ErrNoDocuments) {
				http.Error(w, "Extension not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("extensionUsersGet: Error finding CheggExtension with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		resp := response{}
		for _, eu := range e.Users {
			resp = append(resp, extensionUserView{
				UserID:      eu.UserID.Hex(),
				CheggIDName: eu.CheggIDName,
				CreditsUsed: eu.CreditsUsed,
				Status:      eu.Status,
				AddedAt:     eu.AddedAt.Time().UTC(),
			})
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) extensionUserRecordUsage() http.HandlerFunc {
	type request struct {
		Credits int `json:"credits"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("extensionUserRecordUsage: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("extensionUserRecordUsage: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Credits <= 0 {
			http.Error(w, "credits must be positive", http.StatusBadRequest)
			return
		}

		vars := mux.Vars(r)
		userID, err := primitive.ObjectIDFromHex(vars["userID"])
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}
		if userID != uc.user.ID && !uc.user.IsAdmin() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		if err = s.DB.ExtensionUserCreditsAdd(r.Context(), vars["extID"], userID, req.Credits); err != nil {
			if errors.Is(errors.Cause(err), database.ErrNoDocumentsModified) {
				http.Error(w, "Extension or member not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("extensionUserRecordUsage: Error recording used credits on CheggExtension with ID: %s, err: %v", vars["extID"], err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.recordAnalytics(r.Context(), userID, "", "chegg_extension", 0, req.Credits)
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) extensionUserRemove() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("extensionUserRemove: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		vars := mux.Vars(r)
		userID, err := primitive.ObjectIDFromHex(vars["userID"])
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}
		if userID != uc.user.ID && !uc.user.IsAdmin() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		if err = s.DB.ExtensionUserRemove(r.Context(), vars["extID"], userID); err != nil {
			if errors.Is(errors.Cause(err), mongo.ErrNoDocuments) ||
				errors.Is(errors.Cause(err), database.ErrNoDocumentsModified) {
				http.Error(w, "Extension or member not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("extensionUserRemove: Error removing User from CheggExtension with ID: %s, err: %v", vars["extID"], err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}
