package utils

import "net/http"

// StatusRecorder remembers the status code written through it.
type StatusRecorder struct {
	http.ResponseWriter
	status int
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w}
}

func (this *StatusRecorder) WriteHeader(status int) {
	if this.status == 0 {
		this.status = status
	}
	this.ResponseWriter.WriteHeader(status)
}

func (this *StatusRecorder) Write(b []byte) (int, error) {
	if this.status == 0 {
		this.status = http.StatusOK
	}
	return this.ResponseWriter.Write(b)
}

// Flush lets streamed upstream responses through.
func (this *StatusRecorder) Flush() {
	if f, ok := this.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (this *StatusRecorder) Unwrap() http.ResponseWriter {
	return this.ResponseWriter
}

// Status returns the written status, 200 when the handler wrote nothing.
func (this *StatusRecorder) Status() int {
	if this.status == 0 {
		return http.StatusOK
	}
	return this.status
}
