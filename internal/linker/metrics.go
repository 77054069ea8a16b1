package linker

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/datadog/datadog-go/statsd"
)

// NewStatsdClient creates a statsd client tagged for this service.
func NewStatsdClient(host string, port int) (*statsd.Client, error) {
	client, err := statsd.New(net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	client.Namespace = "linker."
	client.Tags = []string{
		"service:linker",
	}
	return client, nil
}

// GetActionTag returns the tag associated with a route
func GetActionTag(req *http.Request) string {
	path := req.URL.Path
	if path == "/ping" {
		return "ping"
	}
	if strings.HasPrefix(path, "/connect/") {
		switch {
		case strings.HasSuffix(path, "/start"):
			return "start"
		case strings.HasSuffix(path, "/callback"):
			return "callback"
		}
	}
	return "unknown"
}

// getProviderSlug pulls the provider slug out of a /connect/{slug}/... path.
func getProviderSlug(req *http.Request) string {
	parts := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	if len(parts) == 3 && parts[0] == "connect" {
		return parts[1]
	}
	return ""
}

// logRequestMetrics logs all metrics surrounding a given request to the metricsWriter
func logRequestMetrics(providerSlug string, req *http.Request, requestDuration time.Duration, status int, StatsdClient *statsd.Client) {

	if providerSlug == "" {
		providerSlug = "unknown"
	}

	tags := []string{
		fmt.Sprintf("method:%s", req.Method),
		fmt.Sprintf("status_code:%d", status),
		fmt.Sprintf("status_category:%dxx", status/100),
		fmt.Sprintf("provider:%s", providerSlug),
		fmt.Sprintf("action:%s", GetActionTag(req)),
	}

	// TODO: eventually make rates configurable
	StatsdClient.Timing("request", requestDuration, tags, 1.0)

}
