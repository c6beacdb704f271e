package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/flamesplit/pkg/cache"
	"github.com/matzehuels/flamesplit/pkg/errors"
	"github.com/matzehuels/flamesplit/pkg/history"
	"github.com/matzehuels/flamesplit/pkg/pipeline"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 1 << 20

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>flamesplit</title>
</head>
<body>

<form method="post" enctype="multipart/form-data">

    <input type="file" name="file"/>

    <select name="level">
{{- range .}}
        <option value="{{.Level}}">{{.Label}}</option>
{{- end}}
    </select>

    <input type="submit" value="Go"/>

</form>

</body>
</html>
`))

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	levels := pipeline.Levels(s.cfg.MaxLevel)
	if err := formTemplate.Execute(w, levels); err != nil {
		s.loggerFrom(r.Context()).Error("render form", "error", err)
	}
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.loggerFrom(ctx)

	if r.ContentLength > s.cfg.MaxUploadBytes {
		s.writeError(w, r, tooLarge(s.cfg.MaxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.writeError(w, r, uploadError(err, s.cfg.MaxUploadBytes))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "no file uploaded"))
		return
	}
	defer file.Close()

	if err := errors.ValidateUploadFilename(header.Filename); err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, uploadError(err, s.cfg.MaxUploadBytes))
		return
	}

	res, err := s.runner.Split(ctx, data, pipeline.Options{
		Level:    pipeline.ParseLevel(r.FormValue("level")),
		MaxLevel: s.cfg.MaxLevel,
		Policy:   s.cfg.Policy,
		Filename: header.Filename,
		Logger:   logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(ctx, res, cache.Hash(data))

	h := w.Header()
	h.Set("Content-Description", "File Transfer")
	h.Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	h.Set("Content-Transfer-Encoding", "binary")
	h.Set("Content-Length", strconv.Itoa(len(res.Output)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Output)
}

// record appends the split to the history. The write outlives a client
// disconnect and never fails the request.
func (s *Server) record(ctx context.Context, res *pipeline.Result, inputHash string) {
	rec := history.NewRecord(res.Filename, res.Level, res.Format, res.Flames, res.Tiles, len(res.Skipped), inputHash)
	if err := s.history.Add(context.WithoutCancel(ctx), rec); err != nil {
		s.loggerFrom(ctx).Warn("history write failed", "error", err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))
	recs, err := s.history.Recent(r.Context(), n)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "read history"))
		return
	}
	if recs == nil {
		recs = []history.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// errorResponse is the JSON body of a failed request.
type errorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(code)

	logger := s.loggerFrom(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("split failed", "error", err)
	} else {
		logger.Warn("request rejected", "code", code, "error", err)
	}

	writeJSON(w, status, errorResponse{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: RequestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func tooLarge(limit int64) error {
	return errors.New(errors.ErrCodeTooLarge, "upload exceeds %d bytes", limit)
}

// uploadError classifies a failure reading the request body.
func uploadError(err error, limit int64) error {
	var mbe *http.MaxBytesError
	if stderrors.As(err, &mbe) {
		return tooLarge(limit)
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid upload")
}
