package httputil

import (
	"encoding/json"
	"net/http"
)

const problemTypePrefix = "urn:filehub:problem:"

// statusProblems names the problem type used when a caller does not pick one.
var statusProblems = map[int]string{
	http.StatusBadRequest:            "invalid-request",
	http.StatusUnauthorized:          "unauthenticated",
	http.StatusForbidden:             "forbidden",
	http.StatusNotFound:              "not-found",
	http.StatusConflict:              "conflict",
	http.StatusRequestEntityTooLarge: "too-large",
	http.StatusInternalServerError:   "internal",
	http.StatusServiceUnavailable:    "unavailable",
}

// ProblemType turns a short problem name into its type URI.
func ProblemType(name string) string {
	return problemTypePrefix + name
}

// Problem is an RFC 7807 body. Members are written next to the standard
// fields and never replace them.
type Problem struct {
	Type    string
	Status  int
	Detail  string
	Members map[string]any
}

// NewProblem builds a problem typed after its status code.
func NewProblem(status int, detail string) Problem {
	typ := "about:blank"
	if name, ok := statusProblems[status]; ok {
		typ = ProblemType(name)
	}
	return Problem{Type: typ, Status: status, Detail: detail}
}

// Named returns a copy carrying a more specific problem type.
func (p Problem) Named(name string) Problem {
	p.Type = ProblemType(name)
	return p
}

// With returns a copy carrying one more member.
func (p Problem) With(key string, value any) Problem {
	members := make(map[string]any, len(p.Members)+1)
	for k, v := range p.Members {
		members[k] = v
	}
	members[key] = value
	p.Members = members
	return p
}

func (p Problem) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(p.Members)+4)
	for k, v := range p.Members {
		body[k] = v
	}
	body["type"] = p.Type
	body["title"] = http.StatusText(p.Status)
	body["status"] = p.Status
	if p.Detail != "" {
		body["detail"] = p.Detail
	}
	return json.Marshal(body)
}

// RespondJSON writes data as JSON. The body is encoded before any header is
// sent so an encoding failure still yields a clean 500.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	write(w, status, "application/json", payload)
}

// RespondError writes a problem typed after status.
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondProblem(w, NewProblem(status, detail))
}

// RespondProblem writes p as application/problem+json.
func RespondProblem(w http.ResponseWriter, p Problem) {
	payload, err := json.Marshal(p)
	if err != nil {
		write(w, http.StatusInternalServerError, "text/plain", []byte("internal server error"))
		return
	}
	write(w, p.Status, "application/problem+json", payload)
}

func write(w http.ResponseWriter, status int, contentType string, payload []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	w.Write(payload)
}
