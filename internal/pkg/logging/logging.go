package logging

import (
	"os"
	"time"

	logrus "github.com/sirupsen/logrus"
)

var serviceName = "linker"

func init() {
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000Z"})
}

// SetServiceName configures the service name to log with each LogEntry.
func SetServiceName(name string) {
	serviceName = name
}

// LogEntry is a wrapper around a logrus entry
type LogEntry struct {
	logger *logrus.Entry
}

// NewLogEntry creates a new logrus Entry
func NewLogEntry() *LogEntry {
	return &LogEntry{logger: logrus.WithField("service", serviceName)}
}

// Fields returns all the fields that are in the logs
func (l *LogEntry) Fields() map[string]interface{} {
	return l.logger.Data
}

// Info wraps the logrus Info function
func (l *LogEntry) Info(args ...interface{}) {
	l.logger.Info(args...)
}

// Warn wraps the logrus Warn function
func (l *LogEntry) Warn(args ...interface{}) {
	l.logger.Warn(args...)
}

// Error wraps the logrus Error function
func (l *LogEntry) Error(err interface{}, args ...interface{}) {
	l.withField("error", err).logger.Error(args...)
}

// Fatal wraps the logrus Fatal function
func (l *LogEntry) Fatal(args ...interface{}) {
	l.logger.Fatal(args...)
}

// Printf wraps the logrus Printf function
func (l *LogEntry) Printf(format string, args ...interface{}) {
	l.logger.Printf(format, args...)
}

func (l *LogEntry) withField(key string, val interface{}) *LogEntry {
	return &LogEntry{l.logger.WithField(key, val)}
}

// WithAction appends an `action` tag to a LogEntry indicating the URL action triggered.
func (l *LogEntry) WithAction(action string) *LogEntry {
	return l.withField("action", action)
}

// WithBackendStatus appends a `backend_status` tag to a LogEntry.
func (l *LogEntry) WithBackendStatus(status int) *LogEntry {
	return l.withField("backend_status", status)
}

// WithBackendBody appends a `backend_body` tag to a LogEntry. This only ever
// goes to server-side logs, never into a redirect.
func (l *LogEntry) WithBackendBody(body []byte) *LogEntry {
	return l.withField("backend_body", string(body))
}

// WithCookieName appends a `cookie_name` tag to a LogEntry.
func (l *LogEntry) WithCookieName(name string) *LogEntry {
	return l.withField("cookie_name", name)
}

// WithError appends an `error` tag to a LogEntry. Useful for annotating
// non-Error log entries with an `error` object.
func (l *LogEntry) WithError(err error) *LogEntry {
	return l.withField("error", err)
}

// WithHTTPStatus appends an `http_status` tag to a LogEntry.
func (l *LogEntry) WithHTTPStatus(status int) *LogEntry {
	return l.withField("http_status", status)
}

// WithProvider appends a `provider` tag to a LogEntry.
func (l *LogEntry) WithProvider(provider string) *LogEntry {
	return l.withField("provider", provider)
}

// WithReason appends a `reason` tag to a LogEntry.
func (l *LogEntry) WithReason(reason string) *LogEntry {
	return l.withField("reason", reason)
}

// WithRemoteAddress appends a `remote_address` tag to a LogEntry.
func (l *LogEntry) WithRemoteAddress(address string) *LogEntry {
	return l.withField("remote_address", address)
}

// WithRequestDurationMs appends a `request_duration` tag to a LogEntry.
func (l *LogEntry) WithRequestDurationMs(duration float64) *LogEntry {
	return l.withField("request_duration", duration)
}

// WithRequestHost appends a `request_host` tag to a LogEntry.
func (l *LogEntry) WithRequestHost(host string) *LogEntry {
	return l.withField("request_host", host)
}

// WithRequestMethod appends a `request_method` tag to a LogEntry.
func (l *LogEntry) WithRequestMethod(method string) *LogEntry {
	return l.withField("request_method", method)
}

// WithRequestURI appends a `request_uri` tag to a LogEntry.
func (l *LogEntry) WithRequestURI(uri string) *LogEntry {
	return l.withField("request_uri", uri)
}

// WithSignInURL appends a `sign_in_url` tag to a LogEntry.
func (l *LogEntry) WithSignInURL(url string) *LogEntry {
	return l.withField("sign_in_url", url)
}

// WithStatsdHost appends a `statsd_host` tag to a LogEntry.
func (l *LogEntry) WithStatsdHost(host string) *LogEntry {
	return l.withField("statsd_host", host)
}

// WithStatsdPort appends a `statsd_port` tag to a LogEntry.
func (l *LogEntry) WithStatsdPort(port int) *LogEntry {
	return l.withField("statsd_port", port)
}

// WithTTL appends a `ttl` tag to a LogEntry.
func (l *LogEntry) WithTTL(ttl time.Duration) *LogEntry {
	return l.withField("ttl", ttl)
}

// WithUserAgent appends a `user_agent` tag to a LogEntry.
func (l *LogEntry) WithUserAgent(agent string) *LogEntry {
	return l.withField("user_agent", agent)
}
