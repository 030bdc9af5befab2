package server

import (
	"cheggienexus/internal/model"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"net/http"
	"time"
)

type creditView struct {
	CreditID     string    `json:"credit_id"`
	Amount       int       `json:"amount"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	Description  string    `json:"description"`
	BalanceAfter int       `json:"balance_after"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

func toCreditView(c model.Credit) creditView {
	return creditView{
		CreditID:     c.ID.Hex(),
		Amount:       c.Amount,
		Type:         c.Type,
		Status:       c.Status,
		Description:  c.Description,
		BalanceAfter: c.BalanceAfter,
		Source:       c.Metadata.Source,
		CreatedAt:    c.CreatedAt.Time().UTC(),
	}
}

func (s Server) creditList() http.HandlerFunc {
	type response []creditView
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("creditList: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		cs, err := s.DB.CreditsFindByUser(r.Context(), uc.user.ID)
		if err != nil {
			s.Logger.Errorf("creditList: Error finding Credits, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		resp := response{}
		for _, c := range cs {
			resp = append(resp, toCreditView(c))
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) creditBalance() http.HandlerFunc {
	type response struct {
		Credits int `json:"credits"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("creditBalance: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		// Re-read so the balance reflects writes made after authMw loaded the user.
		u, err := s.DB.UserFindByID(r.Context(), uc.user.ID.Hex())
		if err != nil {
			s.Logger.Errorf("creditBalance: Error finding User, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Credits: u.Credits}, http.StatusOK)
	}
}

func (s Server) creditPurchase() http.HandlerFunc {
	type request struct {
		Amount        int    `json:"amount"`
		Source        string `json:"source"`
		TransactionID string `json:"transaction_id"`
	}
	type response struct {
		Credit  creditView `json:"credit"`
		Credits int        `json:"credits"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("creditPurchase: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("creditPurchase: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Amount <= 0 {
			http.Error(w, "Amount must be positive", http.StatusBadRequest)
			return
		}
		if req.TransactionID == "" {
			req.TransactionID = uuid.NewString()
		}

		// There is no payment gateway behind this; the pending row is
		// completed immediately.
		c, err := s.recordLedger(r.Context(), uc.user.ID, req.Amount, model.CreditTypePurchase,
			"Credit purchase", model.CreditMetadata{Source: req.Source, TransactionID: req.TransactionID})
		if err != nil {
			s.Logger.Errorf("creditPurchase: Error recording purchase for UserID: %s, err: %v", uc.user.ID.Hex(), err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			Credit:  toCreditView(c),
			Credits: c.BalanceAfter,
		}, http.StatusCreated)
	}
}

func (s Server) creditAdd() http.HandlerFunc {
	type request struct {
		UserID      string `json:"user_id"`
		Amount      int    `json:"amount"`
		Description string `json:"description"`
	}
	type response struct {
		Credit  creditView `json:"credit"`
		Credits int        `json:"credits"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("creditAdd: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Amount <= 0 {
			http.Error(w, "Amount must be positive", http.StatusBadRequest)
			return
		}

		u, err := s.DB.UserFindByID(r.Context(), req.UserID)
		if err != nil {
			if errors.Is(errors.Cause(err), mongo.ErrNoDocuments) {
				http.Error(w, "User not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("creditAdd: Error finding User with ID: %s, err: %v", req.UserID, err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		description := req.Description
		if description == "" {
			description = "Admin credit grant"
		}
		c, err := s.recordLedger(r.Context(), u.ID, req.Amount, model.CreditTypeBonus,
			description, model.CreditMetadata{Source: "admin"})
		if err != nil {
			s.Logger.Errorf("creditAdd: Error recording bonus for UserID: %s, err: %v", u.ID.Hex(), err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			Credit:  toCreditView(c),
			Credits: c.BalanceAfter,
		}, http.StatusCreated)
	}
}

func (s Server) creditRefund() http.HandlerFunc {
	type request struct {
		CreditID string `json:"credit_id"`
		Reason   string `json:"reason"`
	}
	type response struct {
		Credit  creditView `json:"credit"`
		Credits int        `json:"credits"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("creditRefund: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("creditRefund: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		orig, err := s.DB.CreditFindOne(r.Context(), req.CreditID, uc.user.ID)
		if err != nil {
			if errors.Is(errors.Cause(err), mongo.ErrNoDocuments) {
				http.Error(w, "Credit not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("creditRefund: Error finding Credit with ID: %s, err: %v", req.CreditID, err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if orig.Type != model.CreditTypeUsage || orig.Status != model.CreditStatusCompleted {
			http.Error(w, "Only completed usage entries can be refunded", http.StatusBadRequest)
			return
		}

		reason := req.Reason
		if reason == "" {
			reason = "Refund"
		}
		c, err := s.recordLedger(r.Context(), uc.user.ID, -orig.Amount, model.CreditTypeRefund,
			reason, model.CreditMetadata{Source: "refund", TransactionID: orig.ID.Hex()})
		if err != nil {
			s.Logger.Errorf("creditRefund: Error recording refund for UserID: %s, err: %v", uc.user.ID.Hex(), err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if err = s.DB.CreditSetStatus(r.Context(), orig.ID, model.CreditStatusRefunded, orig.BalanceAfter); err != nil {
			s.Logger.Errorf("creditRefund: Error marking Credit %s refunded, err: %v", orig.ID.Hex(), err)
		}

		s.writeJsonResponse(w, response{
			Credit:  toCreditView(c),
			Credits: c.BalanceAfter,
		}, http.StatusCreated)
	}
}
