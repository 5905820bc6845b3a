package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as scheme probing.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are disabled unless explicitly configured.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// HTTP status codes commonly used.
const (
	// HTTPStatusOK represents a successful HTTP response.
	HTTPStatusOK = 200

	// HTTPStatusBadRequest represents a client error.
	HTTPStatusBadRequest = 400
)

// Review Board paths and vocabulary.
const (
	// LoginPath is the HTML login form of the web UI.
	LoginPath = "/account/login/"

	// CSRFCookie is the cookie holding the CSRF token needed by the login form.
	CSRFCookie = "csrftoken"

	// SessionCookie is the cookie Review Board sets after a successful login.
	SessionCookie = "rbsessionid"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "rbt-go"

	// ContentTypeForm is the encoding of POST and PUT bodies.
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Review request query parameters.
const (
	// ParamCountsOnly asks for a single count field.
	ParamCountsOnly = "counts-only"

	// ParamTimeAddedFrom filters on the earliest date the request was added.
	ParamTimeAddedFrom = "time-added-from"

	// ParamTimeAddedTo filters on the latest date the request was added.
	ParamTimeAddedTo = "time-added-to"
)

// Event publishing.
const (
	// DefaultEventSubject is the NATS subject exchanges are published on.
	DefaultEventSubject = "rbt.exchanges"
)

// Validation and limits.
const (
	// MinimumArgumentCount is the minimum number of command line arguments.
	MinimumArgumentCount = 2

	// KeyValueParts is the number of parts in a key=value flag.
	KeyValueParts = 2
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// ValueDisplayLength is the length at which table values are truncated.
	ValueDisplayLength = 60
)
