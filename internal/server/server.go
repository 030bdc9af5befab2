package server

import (
	"cheggienexus/internal/client"
	"cheggienexus/internal/database"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

type Server struct {
	DB               database.Database
	Client           client.Client
	Logger           logger
	AuthSecretKey    jwk.Key
	CompletionsCache bool
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}
