package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/riaz37/meetgenie-sub001/pkg/log"
)

type envelope map[string]interface{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	js, err := json.Marshal(data)
	if err != nil {
		log.WithError(err).Error("Failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	js = append(js, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

func (s *Server) readJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var typeError *json.UnmarshalTypeError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains malformed json (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return fmt.Errorf("body contains malformed json")
		case errors.As(err, &typeError):
			if typeError.Field != "" {
				return fmt.Errorf("body contains incorrect type for field %s", typeError.Field)
			}
			return fmt.Errorf("body contains incorrect type (at character %d)", typeError.Offset)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("body is empty")
		default:
			return err
		}
	}
	return nil
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, envelope{"error": message})
}

func (s *Server) serverErrorResponse(w http.ResponseWriter, err error) {
	log.WithError(err).Error("Internal server error")
	s.errorResponse(w, http.StatusInternalServerError, "the server encountered an error and could not process the request")
}

func (s *Server) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, http.StatusNotFound, "the requested resource is not found")
}

func (s *Server) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, http.StatusMethodNotAllowed, fmt.Sprintf("the %s method is not allowed on this resource", r.Method))
}

func (s *Server) badRequestResponse(w http.ResponseWriter, message string) {
	s.errorResponse(w, http.StatusBadRequest, message)
}
