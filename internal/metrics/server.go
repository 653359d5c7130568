package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Belphemur/KodiPresence/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultPort = 9090

// NewHTTPServer serves the default registry at /metrics on address:port.
// A zero port uses 9090.
func NewHTTPServer(address string, port int) *http.Server {
	if port == 0 {
		port = defaultPort
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog:      promLogger{},
		ErrorHandling: promhttp.ContinueOnError,
	}))
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", address, port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// promLogger reports gathering errors through zerolog.
type promLogger struct{}

func (promLogger) Println(v ...interface{}) {
	logger := config.GetLogger()
	logger.Error().Msg(fmt.Sprint(v...))
}
