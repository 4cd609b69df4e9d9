package response

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse acknowledges a webhook or reports liveness
type StatusResponse struct {
	Status string `json:"status"`
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Can't change response at this point, just log
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Error writes an error response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// OK acknowledges a request with {"status":"ok"}
func OK(w http.ResponseWriter) {
	JSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// Text writes a plain text response
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// TwiML is a Twilio messaging response document
type TwiML struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

// TwiMLMessage writes a 200 TwiML document replying with the given messages.
// Without messages Twilio sends nothing back to the user.
func TwiMLMessage(w http.ResponseWriter, messages ...string) {
	body, err := xml.Marshal(TwiML{Messages: messages})
	if err != nil {
		body = []byte("<Response></Response>")
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	w.Write(body)
}
