package handler

import (
	"net/http"
	"sync"

	"spacebook/config"
	"spacebook/di"
	"spacebook/shared/logger"
)

var (
	once    sync.Once
	handler http.Handler
)

// Handler is the serverless entry point. The router is built once per
// instance; background jobs do not run here.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		handler = di.InitializeService().HTTP.Handler()
	})

	r.RequestURI = r.URL.String()

	handler.ServeHTTP(w, r)
}
