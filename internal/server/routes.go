package server

import (
	"github.com/gorilla/mux"
	"net/http"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMw)
	r.Use(s.maxBytesMw)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/user/register", s.userRegister()).Methods(http.MethodPost)
	api.HandleFunc("/user/login", s.userLogin()).Methods(http.MethodPost)

	userAPI := api.PathPrefix("/user").Subrouter()
	userAPI.Use(s.authMw)
	userAPI.HandleFunc("/logout", s.userLogout()).Methods(http.MethodPost)
	userAPI.HandleFunc("/info", s.userInfo()).Methods(http.MethodGet)
	userAPI.HandleFunc("/preferences", s.userPreferencesUpdate()).Methods(http.MethodPatch)
	userAPI.PathPrefix("").Handler(http.NotFoundHandler())

	chatAPI := api.PathPrefix("/chat").Subrouter()
	chatAPI.Use(s.authMw)
	chatAPI.HandleFunc("", s.chatCreate()).Methods(http.MethodPost)
	chatAPI.HandleFunc("", s.chatList()).Methods(http.MethodGet)
	chatAPI.HandleFunc("/{chatID}", s.chatGetOne()).Methods(http.MethodGet)
	chatAPI.HandleFunc("/{chatID}", s.chatUpdate()).Methods(http.MethodPatch)
	chatAPI.HandleFunc("/{chatID}", s.chatDelete()).Methods(http.MethodDelete)
	chatAPI.HandleFunc("/{chatID}/messages", s.chatSendMessage()).Methods(http.MethodPost)
	chatAPI.PathPrefix("").Handler(http.NotFoundHandler())

	questionAPI := api.PathPrefix("/questions").Subrouter()
	questionAPI.Use(s.authMw)
	questionAPI.HandleFunc("", s.questionCreate()).Methods(http.MethodPost)
	questionAPI.HandleFunc("", s.questionList()).Methods(http.MethodGet)
	questionAPI.HandleFunc("/{questionID}", s.questionGetOne()).Methods(http.MethodGet)
	questionAPI.HandleFunc("/{questionID}", s.questionUpdate()).Methods(http.MethodPatch)
	questionAPI.HandleFunc("/{questionID}", s.questionDelete()).Methods(http.MethodDelete)
	questionAPI.HandleFunc("/{questionID}/answer", s.questionAnswer()).Methods(http.MethodPost)
	questionAPI.HandleFunc("/{questionID}/flag", s.questionFlag()).Methods(http.MethodPost)
	questionAPI.PathPrefix("").Handler(http.NotFoundHandler())

	creditAPI := api.PathPrefix("/credits").Subrouter()
	creditAPI.Use(s.authMw)
	creditAPI.HandleFunc("", s.creditList()).Methods(http.MethodGet)
	creditAPI.HandleFunc("/balance", s.creditBalance()).Methods(http.MethodGet)
	creditAPI.HandleFunc("/purchase", s.creditPurchase()).Methods(http.MethodPost)
	creditAPI.Handle("/add", s.adminMw(s.creditAdd())).Methods(http.MethodPost)
	creditAPI.HandleFunc("/refund", s.creditRefund()).Methods(http.MethodPost)
	creditAPI.PathPrefix("").Handler(http.NotFoundHandler())

	analyticsAPI := api.PathPrefix("/analytics").Subrouter()
	analyticsAPI.Use(s.authMw)
	analyticsAPI.HandleFunc("/summary", s.analyticsSummary()).Methods(http.MethodGet)
	analyticsAPI.HandleFunc("/daily", s.analyticsDaily()).Methods(http.MethodGet)
	analyticsAPI.HandleFunc("/models", s.analyticsModels()).Methods(http.MethodGet)
	analyticsAPI.PathPrefix("").Handler(http.NotFoundHandler())

	aiAPI := api.PathPrefix("/ai-models").Subrouter()
	aiAPI.Use(s.authMw)
	aiAPI.HandleFunc("", s.aiModelList()).Methods(http.MethodGet)
	aiAPI.HandleFunc("/chat", s.aiChat()).Methods(http.MethodPost)
	aiAPI.PathPrefix("").Handler(http.NotFoundHandler())

	extAPI := api.PathPrefix("/chegg-extensions").Subrouter()
	extAPI.Use(s.authMw)
	extAPI.Handle("", s.adminMw(s.extensionCreate())).Methods(http.MethodPost)
	extAPI.HandleFunc("", s.extensionList()).Methods(http.MethodGet)
	extAPI.HandleFunc("/{extID}", s.extensionGetOne()).Methods(http.MethodGet)
	extAPI.HandleFunc("/{extID}", s.extensionUpdate()).Methods(http.MethodPatch)
	extAPI.Handle("/{extID}", s.adminMw(s.extensionDelete())).Methods(http.MethodDelete)
	extAPI.HandleFunc("/{extID}/users", s.extensionUserAdd()).Methods(http.MethodPost)
	extAPI.HandleFunc("/{extID}/users", s.extensionUsersGet()).Methods(http.MethodGet)
	extAPI.HandleFunc("/{extID}/users/{userID}", s.extensionUserRemove()).Methods(http.MethodDelete)
	extAPI.HandleFunc("/{extID}/users/{userID}/usage", s.extensionUserRecordUsage()).Methods(http.MethodPost)
	extAPI.PathPrefix("").Handler(http.NotFoundHandler())

	return r
}
