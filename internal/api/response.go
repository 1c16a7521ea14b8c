package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	apperr "nailsalon/internal/errors"
)

const maxBodyBytes = int64(1 << 16)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

var validationMessages = map[string]string{
	"required": "es obligatorio",
	"email":    "no es un correo válido",
	"min":      "es demasiado corto",
	"max":      "es demasiado largo",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, body := apperr.Resolve(err)
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, code, body)
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.ErrBadRequest("cuerpo de la solicitud inválido")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msg, ok := validationMessages[e.Tag()]
				if !ok {
					msg = "no es válido"
				}
				msgs = append(msgs, fmt.Sprintf("%s %s", e.Field(), msg))
			}
			return apperr.ErrBadRequest(strings.Join(msgs, "; "))
		}
		return apperr.ErrBadRequest(err.Error())
	}
	return nil
}
