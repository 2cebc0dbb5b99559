package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/tendant/simple-paintmixer/internal/mixer"
	"github.com/tendant/simple-paintmixer/internal/swatch"
	"github.com/tendant/simple-paintmixer/pkg/schema"
)

type handler struct {
	dev        Device
	logger     *slog.Logger
	swatchSize int
}

// fromValues reads dye amounts from the query string. Missing dyes are zero and
// unknown parameters are ignored.
func (h *handler) fromValues(w http.ResponseWriter, r *http.Request) {
	raw := make(map[mixer.Dye]string)
	for key, values := range r.URL.Query() {
		if d, ok := mixer.ParseDye(key); ok && len(values) > 0 {
			raw[d] = values[0]
		}
	}

	amounts := mixer.NewAmounts(0, 0, 0, 0, 0, 0)
	var problems []string
	for _, d := range mixer.Palette {
		s, ok := raw[d]
		if !ok {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			problems = append(problems, fmt.Sprintf("The value '%s' is not valid for %s.", s, d))
			continue
		}
		amounts[d] = v
	}
	if len(problems) > 0 {
		writeError(w, r, http.StatusBadRequest, problems...)
		return
	}
	h.submit(w, r, amounts)
}

func (h *handler) fromModel(w http.ResponseWriter, r *http.Request) {
	var m schema.ColoringModel
	if err := render.DecodeJSON(r.Body, &m); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("The request body is not a valid coloring model: %v", err))
		return
	}
	h.submit(w, r, mixer.NewAmounts(m.Red, m.Black, m.White, m.Yellow, m.Blue, m.Green))
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request, amounts mixer.Amounts) {
	if problems := amounts.Violations(); len(problems) > 0 {
		writeError(w, r, http.StatusBadRequest, problems...)
		return
	}

	code, err := h.dev.Submit(amounts)
	if err != nil {
		h.logger.Info("job rejected", "err", err)
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, schema.APIResponse{
			Type:        schema.ResponseError,
			Code:        int(mixer.RejectedCode),
			Description: "Job aborted due to invalid data or max capacity reached.",
		})
		return
	}

	render.JSON(w, r, schema.APIResponse{
		Type:        schema.ResponseSuccess,
		Code:        int(code),
		Description: fmt.Sprintf("Successfuly created a new job with ID %d", code),
	})
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := h.dev.QueryState(jobCode(id))

	resp := schema.APIResponse{Type: schema.ResponseSuccess, Code: int(status)}
	switch status {
	case mixer.StatusPending:
		resp.Description = fmt.Sprintf("The job with ID %s is still in the queue.", id)
	case mixer.StatusCompleted:
		resp.Description = fmt.Sprintf("The job with ID %s has been completed", id)
	default:
		resp.Type = schema.ResponseWarning
		resp.Code = int(mixer.StatusNotFound)
		resp.Description = fmt.Sprintf("The job with ID %s does not exist.", id)
		render.Status(r, http.StatusNotFound)
	}
	render.JSON(w, r, resp)
}

func (h *handler) cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.dev.Cancel(jobCode(id)); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, schema.APIResponse{
			Type:        schema.ResponseError,
			Code:        -1,
			Description: fmt.Sprintf("Job with ID %s does not exist or could not be canceled.", id),
		})
		return
	}
	render.JSON(w, r, schema.APIResponse{
		Type:        schema.ResponseSuccess,
		Code:        0,
		Description: fmt.Sprintf("The job with ID %s was successfuly canceled.", id),
	})
}

func (h *handler) inspect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, state, ok := h.dev.Inspect(jobCode(id))
	if !ok {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("The job with ID %s does not exist.", id))
		return
	}
	render.JSON(w, r, schema.JobView{
		Code:      int(job.Code),
		Dyes:      job.Dyes.ByKey(),
		CreatedAt: job.CreatedAt.Format(time.RFC3339Nano),
		State:     state.String(),
	})
}

func (h *handler) swatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, _, ok := h.dev.Inspect(jobCode(id))
	if !ok {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("The job with ID %s does not exist.", id))
		return
	}

	var buf bytes.Buffer
	if err := swatch.WritePNG(&buf, job.Dyes, h.swatchSize); err != nil {
		h.logger.Error("render swatch", "code", job.Code, "err", err)
		writeError(w, r, http.StatusInternalServerError, "Could not render the swatch.")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// jobCode converts a route id to a device code. Ids that overflow int map to
// -1, which the device treats as unknown.
func jobCode(id string) int {
	code, err := strconv.Atoi(id)
	if err != nil {
		return -1
	}
	return code
}

func writeError(w http.ResponseWriter, r *http.Request, status int, messages ...string) {
	render.Status(r, status)
	render.JSON(w, r, schema.APIError{
		ResponseType:  schema.ResponseError,
		ErrorMessages: messages,
		TraceID:       middleware.GetReqID(r.Context()),
	})
}
