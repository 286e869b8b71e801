package di

import (
	"spacebook/internal/jobs"
	"spacebook/transport/http"
)

// App is everything the process runs: the HTTP server and its background jobs.
type App struct {
	HTTP      *http.HTTP
	Scheduler *jobs.Scheduler
}
