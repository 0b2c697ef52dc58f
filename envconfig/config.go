package envconfig

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// Host returns the scheme and host for the server. Host can be configured via
// the GRAFT_HOST environment variable. Default is scheme "http" and host
// "127.0.0.1:11711".
func Host() *url.URL {
	defaultPort := "11711"

	s := strings.TrimSpace(Var("GRAFT_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// Origins returns a list of allowed origins. Origins can be configured via
// the GRAFT_ORIGINS environment variable.
func Origins() (origins []string) {
	if s := Var("GRAFT_ORIGINS"); s != "" {
		origins = strings.Split(s, ",")
	}

	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	origins = append(origins,
		"app://*",
		"file://*",
		"tauri://*",
		"vscode-webview://*",
	)

	return origins
}

func Bool(k string) func() bool {
	return func() bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}

			return b
		}

		return false
	}
}

func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}

		return defaultValue
	}
}

var (
	// Debug enables additional debug information.
	Debug = Bool("GRAFT_DEBUG")
	// MaxQueue sets the maximum number of queued requests.
	MaxQueue = Uint("GRAFT_MAX_QUEUE", 512)
	// NumThreads overrides the worker count used for kernel grids. Zero means
	// one worker per logical CPU.
	NumThreads = Uint("GRAFT_NUM_THREADS", 0)
)

// Threads resolves NumThreads against the machine's logical CPU count.
func Threads() int {
	if n := NumThreads(); n > 0 {
		return int(n)
	}

	return runtime.GOMAXPROCS(0)
}

// Var returns an environment variable stripped of leading and trailing quotes or spaces
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"GRAFT_DEBUG":       {"GRAFT_DEBUG", Debug(), "Show additional debug information (e.g. GRAFT_DEBUG=1)"},
		"GRAFT_HOST":        {"GRAFT_HOST", Host(), "IP Address for the graft server (default 127.0.0.1:11711)"},
		"GRAFT_MAX_QUEUE":   {"GRAFT_MAX_QUEUE", MaxQueue(), "Maximum number of queued requests"},
		"GRAFT_NUM_THREADS": {"GRAFT_NUM_THREADS", NumThreads(), "Number of kernel grid workers (default: number of CPUs)"},
		"GRAFT_ORIGINS":     {"GRAFT_ORIGINS", Origins(), "A comma separated list of allowed origins"},
	}
}

func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Describe returns the environment variables sorted by name, for `graft env`.
func Describe() []EnvVar {
	m := AsMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vars := make([]EnvVar, 0, len(keys))
	for _, k := range keys {
		vars = append(vars, m[k])
	}
	return vars
}
