package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/couchcryptid/crop-advisory-service/internal/catalog"
	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/pipeline"
	"github.com/go-playground/validator/v10"
)

// Error codes returned in the "code" field of error responses.
const (
	codeInvalidInput      = "invalid_input"
	codeLocationRequired  = "location_required"
	codeLocationNotFound  = "location_not_found"
	codeModelUnavailable  = "model_unavailable"
	codePredictionFailed  = "prediction_failed"
	codeTreatmentNotFound = "not_found"
	codePayloadTooLarge   = "payload_too_large"
	codeInternal          = "internal"
)

type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type predictForm struct {
	CropType string `form:"crop_type" validate:"required,max=32"`
	Location string `form:"location" validate:"max=256"`
}

type treatmentResponse struct {
	Disease       string            `json:"disease"`
	CropType      domain.Crop       `json:"crop_type"`
	TreatmentInfo catalog.Treatment `json:"treatment_info"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.writeUploadError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup

	form := predictForm{
		CropType: r.FormValue("crop_type"),
		Location: r.FormValue("location"),
	}
	if err := s.validate.Struct(form); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: codeInvalidInput, Detail: validationDetail(err)})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: codeInvalidInput, Detail: "file is required"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		s.writeUploadError(w, err)
		return
	}

	res, err := s.service.Predict(r.Context(), pipeline.Request{
		Image:    image,
		CropType: form.CropType,
		Location: form.Location,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTreatment(w http.ResponseWriter, r *http.Request) {
	class := r.PathValue("predicted_class")
	crop, t, err := s.service.Treatment(class)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, treatmentResponse{Disease: class, CropType: crop, TreatmentInfo: t})
}

func (s *Server) writeUploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Code:   codePayloadTooLarge,
			Detail: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit),
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: codeInvalidInput, Detail: "invalid multipart form: " + err.Error()})
}

// writeError maps pipeline errors to status codes. Location errors are
// checked before the generic invalid-input case since they wrap it.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		status int
		code   string
		detail = err.Error()
	)
	switch {
	case errors.Is(err, domain.ErrLocationRequired):
		status, code = http.StatusBadRequest, codeLocationRequired
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusBadRequest, codeLocationNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, codeInvalidInput
	case errors.Is(err, domain.ErrModelUnavailable):
		status, code = http.StatusInternalServerError, codeModelUnavailable
	case errors.Is(err, domain.ErrPredictionFailed):
		status, code = http.StatusInternalServerError, codePredictionFailed
		detail = "Model prediction failed"
	case errors.Is(err, pipeline.ErrTreatmentNotFound):
		status, code = http.StatusNotFound, codeTreatmentNotFound
		detail = "Treatment not found"
	default:
		status, code = http.StatusInternalServerError, codeInternal
		detail = "internal error"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "error", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Detail: detail})
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
	return err.Error()
}
