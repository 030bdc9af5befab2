package server

import (
	"cheggienexus/internal/client"
	"cheggienexus/internal/model"
	"encoding/json"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"net/http"
	"regexp"
	"time"
)

type questionView struct {
	QuestionID string         `json:"question_id"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Subject    string         `json:"subject"`
	Status     string         `json:"status"`
	Answers    []model.Answer `json:"answers"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toQuestionView(q model.Question) questionView {
	return questionView{
		QuestionID: q.ID.Hex(),
		Title:      q.Title,
		Content:    q.Content,
		Subject:    q.Subject,
		Status:     q.Status,
		Answers:    q.Answers,
		CreatedAt:  q.CreatedAt.Time().UTC(),
	}
}

// questionListFilter builds the Mongo filter from query parameters. The
// search term is quoted before it lands in a $regex, raw user input does not
// reach the query otherwise.
func questionListFilter(userID primitive.ObjectID, status, subject, search string) bson.M {
	filter := bson.M{"user": userID}
	if status != "" {
		filter["status"] = status
	}
	if subject != "" {
		filter["subject"] = subject
	}
	if search != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}
	return filter
}

func (s Server) questionCreate() http.HandlerFunc {
	type request struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Subject string `json:"subject"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("questionCreate: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("questionCreate: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Title == "" || req.Content == "" {
			http.Error(w, "Title and content are required", http.StatusBadRequest)
			return
		}

		q := model.Question{
			UserID:  uc.user.ID,
			Title:   req.Title,
			Content: req.Content,
			Subject: req.Subject,
		}
		id, err := s.DB.QuestionInsert(r.Context(), q)
		if err != nil {
			s.Logger.Errorf("questionCreate: Error inserting Question, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		q, err = s.DB.QuestionFindOne(r.Context(), id, uc.user.ID)
		if err != nil {
			s.Logger.Errorf("questionCreate: Error finding inserted Question with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, toQuestionView(q), http.StatusCreated)
	}
}

func (s Server) questionList() http.HandlerFunc {
	type response []questionView
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("questionList: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		status := r.URL.Query().Get("status")
		if status != "" && !model.ValidQuestionStatus(status) {
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}

		filter := questionListFilter(uc.user.ID, status, r.URL.Query().Get("subject"), r.URL.Query().Get("search"))
		qs, err := s.DB.QuestionsFind(r.Context(), filter)
		if err != nil {
			s.Logger.Errorf("questionList: Error finding Questions, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		resp := response{}
		for _, q := range qs {
			resp = append(resp, toQuestionView(q))
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) questionGetOne() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("questionGetOne: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		id := mux.Vars(r)["questionID"]
		q, err := s.DB.QuestionFindOne(r.Context(), id, uc.user.ID)
		if err != nil {
			if errors.Is(errors.Cause(err), mongo.ErrNoDocuments) {
				http.Error(w, "Question not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("questionGetOne: Error finding Question with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		s.writeJsonResponse(w, toQuestionView(q), http.StatusOK)
	}
}

func (s Server) questionUpdate() http.HandlerFunc {
	type request struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Subject string `json:"subject"`
		Status  string `json:"status"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("questionUpdate: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("questionUpdate: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Status != "" && !model.ValidQuestionStatus(req.Status) {
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}

		id := mux.Vars(r)["questionID"]
		if err = s.DB.QuestionUpdate(r.Context(), id, uc.user.ID, req.Title, req.Content, req.Subject, req.Status); err != nil {
			s.Logger.Debugf("questionUpdate: Error updating Question with ID: %s, err: %v", id, err)
			http.Error(w, "Question not found", http.StatusNotFound)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) questionDelete() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("questionDelete: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		id := mux.Vars(r)["questionID"]
		if err = s.DB.QuestionDelete(r.Context(), id, uc.user.ID); err != nil {
			if errors.Is(errors.Cause(err), mongo.ErrNoDocuments) {
				http.Error(w, "Question not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("questionDelete: Error deleting Question with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) questionFlag() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("questionFlag: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		id := mux.Vars(r)["questionID"]
		if err = s.DB.QuestionSetStatus(r.Context(), id, uc.user.ID, model.QuestionStatusFlagged); err != nil {
			s.Logger.Debugf("questionFlag: Error flagging Question with ID: %s, err: %v", id, err)
			http.Error(w, "Question not found", http.StatusNotFound)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) questionAnswer() http.HandlerFunc {
	type request struct {
		Model            string   `json:"model"`
		Temperature      *float64 `json:"temperature"`
		MaxTokens        int      `json:"max_tokens"`
		UseCheggiePrompt bool     `json:"use_cheggie_prompt"`
	}
	type response struct {
		Answer  model.Answer `json:"answer"`
		Status  string       `json:"status"`
		Credits int          `json:"credits"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("questionAnswer: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		// The balance gate lives only on this path; two concurrent requests
		// can both pass it before either debit lands.
		if uc.user.Credits < 1 {
			s.writeErrorResponse(w, "Insufficient credits", http.StatusBadRequest)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("questionAnswer: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		id := mux.Vars(r)["questionID"]
		q, err := s.DB.QuestionFindOne(r.Context(), id, uc.user.ID)
		if err != nil {
			if errors.Is(errors.Cause(err), mongo.ErrNoDocuments) {
				http.Error(w, "Question not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("questionAnswer: Error finding Question with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		aiModel := req.Model
		if aiModel == "" {
			aiModel = uc.user.Preferences.DefaultModel
		}

		content := q.Content
		if q.Subject != "" {
			content = "Subject: " + q.Subject + "\n\n" + content
		}
		chatResp, err := s.Client.ChatCompletionCached(r.Context(), client.ChatRequest{
			Model:            aiModel,
			Messages:         []client.Message{{Role: "user", Content: content}},
			Temperature:      req.Temperature,
			MaxTokens:        req.MaxTokens,
			UseCheggiePrompt: req.UseCheggiePrompt,
		}, s.CompletionsCache)
		if err != nil {
			s.Logger.Errorf("questionAnswer: Provider call failed for Question with ID: %s, err: %v", id, err)
			s.writeErrorResponse(w, err.Error(), http.StatusInternalServerError)
			return
		}

		a := model.Answer{
			Content: chatResp.Content,
			Model:   chatResp.Model,
			Metadata: model.AnswerMetadata{
				Tokens:      chatResp.TotalTokens,
				CreditsUsed: 1,
			},
			CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
		}
		if err = s.DB.QuestionAppendAnswer(r.Context(), q.ID, a); err != nil {
			s.Logger.Errorf("questionAnswer: Error appending Answer to Question with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		debit, err := s.debitUsage(r.Context(), uc.user.ID, "Question answer ("+chatResp.Model+")")
		if err != nil {
			s.Logger.Errorf("questionAnswer: Error debiting credit for UserID: %s, err: %v", uc.user.ID.Hex(), err)
		}

		s.recordAnalytics(r.Context(), uc.user.ID, chatResp.Model, "question", chatResp.TotalTokens, 1)

		s.writeJsonResponse(w, response{
			Answer:  a,
			Status:  model.QuestionStatusSolved,
			Credits: debit.BalanceAfter,
		}, http.StatusOK)
	}
}
