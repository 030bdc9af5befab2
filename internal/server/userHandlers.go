package server

import (
	"cheggienexus/internal/model"
	"crypto/sha256"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"net/http"
	"net/mail"
	"time"
)

func (s Server) userRegister() http.HandlerFunc {
	type request struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type response struct {
		Success    bool   `json:"success"`
		LoginToken string `json:"login_token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userRegister: Error decoding JSON, err: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			s.Logger.Debugf("userRegister: Invalid email, err: %v", err)
			http.Error(w, "Invalid email", http.StatusBadRequest)
			return
		}
		if len(req.Password) < 8 {
			http.Error(w, "Password too short", http.StatusBadRequest)
			return
		}
		password, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.Logger.Errorf("userRegister: Error generating bcrypt from password, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		u := model.User{
			Name:     req.Name,
			Email:    req.Email,
			Password: password,
			Role:     model.RoleUser,
		}
		id, err := s.DB.UserInsert(r.Context(), u)
		if err != nil {
			if mongo.IsDuplicateKeyError(errors.Cause(err)) {
				s.Logger.Debugf("userRegister: Error duplicate key when inserting User, err: %v", err)
				http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
				return
			}
			s.Logger.Errorf("userRegister: Error inserting User, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		lt, exp, tokenID, tokenHash, err := s.createLoginTokenAndHash(id)
		if err != nil {
			s.Logger.Errorf("userRegister: Error creating login token for User, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err = s.DB.UserAddLoginToken(r.Context(), id, model.LoginToken{
			TokenID:    tokenID,
			Token:      tokenHash,
			Expiration: primitive.NewDateTimeFromTime(exp),
		}); err != nil {
			s.Logger.Errorf("userRegister: Error adding login token to User, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			Success:    true,
			LoginToken: lt,
		}, http.StatusCreated)
	}
}

func (s Server) userLogin() http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type response struct {
		LoginToken string `json:"login_token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userLogin: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		u, err := s.DB.UserFindByEmail(r.Context(), req.Email)
		if err != nil {
			s.Logger.Debugf("userLogin: Error finding User, err: %v", err)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if err = bcrypt.CompareHashAndPassword(u.Password, []byte(req.Password)); err != nil {
			s.Logger.Debugf("userLogin: Error comparing hash and password for User with email: %s, err: %v", u.Email, err)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		lt, exp, tokenID, tokenHash, err := s.createLoginTokenAndHash(u.ID.Hex())
		if err != nil {
			s.Logger.Errorf("userLogin: Error creating login token for User, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err = s.DB.UserAddLoginToken(r.Context(), u.ID.Hex(), model.LoginToken{
			TokenID:    tokenID,
			Token:      tokenHash,
			Expiration: primitive.NewDateTimeFromTime(exp),
		}); err != nil {
			s.Logger.Errorf("userLogin: Error adding login token to User, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{LoginToken: lt}, http.StatusOK)
	}
}

func (s Server) userLogout() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("userLogout: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if err = s.DB.UserRemoveLoginToken(r.Context(), uc.user.ID.Hex(), uc.loginTokenID); err != nil {
			s.Logger.Errorf("userLogout: Error removing login token, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) userInfo() http.HandlerFunc {
	type response struct {
		Name          string    `json:"name"`
		Email         string    `json:"email"`
		Role          string    `json:"role"`
		Credits       int       `json:"credits"`
		TotalRequests int       `json:"total_requests"`
		CreditsUsed   int       `json:"credits_used"`
		LastActive    time.Time `json:"last_active"`
		DefaultModel  string    `json:"default_model"`
		Theme         string    `json:"theme"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("userInfo: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		s.writeJsonResponse(w, response{
			Name:          uc.user.Name,
			Email:         uc.user.Email,
			Role:          uc.user.Role,
			Credits:       uc.user.Credits,
			TotalRequests: uc.user.Usage.TotalRequests,
			CreditsUsed:   uc.user.Usage.CreditsUsed,
			LastActive:    uc.user.Usage.LastActive.Time().UTC(),
			DefaultModel:  uc.user.Preferences.DefaultModel,
			Theme:         uc.user.Preferences.Theme,
		}, http.StatusOK)
	}
}

func (s Server) userPreferencesUpdate() http.HandlerFunc {
	type request struct {
		DefaultModel string `json:"default_model"`
		Theme        string `json:"theme"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("userPreferencesUpdate: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userPreferencesUpdate: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		p := uc.user.Preferences
		if req.DefaultModel != "" {
			p.DefaultModel = req.DefaultModel
		}
		if req.Theme != "" {
			p.Theme = req.Theme
		}
		if err = s.DB.UserPreferencesUpdate(r.Context(), uc.user.ID, p); err != nil {
			s.Logger.Errorf("userPreferencesUpdate: Error updating preferences, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) createLoginTokenAndHash(userID string) (string, time.Time, string, []byte, error) {
	exp := time.Now().AddDate(0, 0, 90)
	tokenID := uuid.NewString()
	t, err := jwt.NewBuilder().
		Subject(userID).
		Issuer("cheggie-ai-nexus").
		JwtID(tokenID).
		Expiration(exp).
		Build()
	if err != nil {
		return "", exp, "", nil, errors.Wrapf(err, "error creating login token for UserID: %s", userID)
	}
	lt, err := jwt.Sign(t, jwt.WithKey(jwa.HS256, s.AuthSecretKey))
	if err != nil {
		return "", exp, "", nil, errors.Wrapf(err, "error signing login token for UserID: %s", userID)
	}
	tokenHash := sha256.New()
	tokenHash.Write(lt)
	bcryptTokenHash, err := bcrypt.GenerateFromPassword(tokenHash.Sum(nil), bcrypt.DefaultCost-3)
	if err != nil {
		return "", exp, "", nil, errors.Wrapf(err, "error generating bcrypt from login token hash for UserID: %s", userID)
	}
	return string(lt), exp, tokenID, bcryptTokenHash, nil
}
