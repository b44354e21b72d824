package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/essu-water/maintenance-api/internal/config"
	"github.com/essu-water/maintenance-api/internal/model"
	"github.com/essu-water/maintenance-api/internal/queue"
	"github.com/essu-water/maintenance-api/internal/repository"
	queue_publisher "github.com/essu-water/maintenance-api/internal/service"
	"github.com/essu-water/maintenance-api/internal/storage"
)

var (
	errOnlyImages      = errors.New("only image files are allowed")
	errTooLarge        = errors.New("file exceeds the upload size limit")
	errReadUpload      = errors.New("could not read uploaded file")
	errInvalidAssignee = errors.New("invalid assigned_to")
)

// BlobStore is the slice of the storage client the report handlers use.
// Declared here so tests can substitute an in-memory store.
type BlobStore interface {
	Store(ctx context.Context, data []byte, logicalName, folder, contentType string) (url, key string, err error)
	Remove(ctx context.Context, key string) bool
	Key(locator string) string
	ResolveLegacyURL(locator string) string
}

// ReportHandler bundles dependencies for report endpoints.  Photo-upload
// failure policy differs per operation: submission keeps the ticket even
// when the photo is lost, while an update carrying a completion proof
// aborts instead, because the proof is the point of that update.
type ReportHandler struct {
	Cfg     config.Config
	Reports *repository.ReportRepo
	Blobs   BlobStore
}

func NewReportHandler(cfg config.Config, r *repository.ReportRepo, b BlobStore) *ReportHandler {
	return &ReportHandler{Cfg: cfg, Reports: r, Blobs: b}
}

// publicListLimit caps the anonymous board at the most recent entries.
const publicListLimit = 20

// List handles GET /reports (authenticated, any role).
func (h *ReportHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reports, err := h.Reports.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	for i := range reports {
		h.resolveLinks(&reports[i])
	}
	return c.JSON(http.StatusOK, reports)
}

// ListPublic handles GET /reports/public: recent Resolved and In Progress
// reports, public-safe fields only.
func (h *ReportHandler) ListPublic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reports, err := h.Reports.ListPublic(ctx, publicListLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, reports)
}

// Get handles GET /reports/:id (authenticated).
func (h *ReportHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rep, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	h.resolveLinks(&rep)
	return c.JSON(http.StatusOK, rep)
}

// Create handles POST /reports: the public multipart submission form.
// The photo is relayed best-effort; a lost photo must not lose the
// ticket.  If the insert fails after the photo already landed, the
// orphaned blob is removed again.
func (h *ReportHandler) Create(c echo.Context) error {
	reporter := strings.TrimSpace(c.FormValue("reporter_name"))
	email := strings.TrimSpace(c.FormValue("email"))
	location := strings.TrimSpace(c.FormValue("location"))
	issueType := strings.TrimSpace(c.FormValue("issue_type"))
	description := strings.TrimSpace(c.FormValue("description"))
	if reporter == "" || email == "" || location == "" || issueType == "" || description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all required fields must be provided"})
	}
	priority := strings.TrimSpace(c.FormValue("priority"))
	if priority == "" {
		priority = model.PriorityMedium
	}

	data, name, ctype, err := h.readPhoto(c, "photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var imageURL, imageKey string
	if data != nil {
		u, key, err := h.Blobs.Store(ctx, data, name, storage.FolderReports, ctype)
		if err != nil {
			// Best-effort policy: keep the ticket, drop the photo.
			log.Printf("report: photo upload failed, creating report without image: %v", err)
		} else {
			imageURL, imageKey = u, key
		}
	}

	rep := model.Report{
		ReporterName: reporter,
		Email:        email,
		Location:     location,
		IssueType:    issueType,
		Priority:     priority,
		Description:  description,
		Status:       model.StatusPending,
	}
	if imageURL != "" {
		rep.ImagePath = &imageURL
	}
	if err := h.Reports.Create(ctx, &rep); err != nil {
		if imageKey != "" {
			h.Blobs.Remove(ctx, imageKey)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create report failed"})
	}

	_ = queue_publisher.PublishReportSubmitted(ctx, queue.ReportSubmittedEvent{
		ReportID:     rep.ID,
		ReporterName: rep.ReporterName,
		Email:        rep.Email,
		Location:     rep.Location,
		IssueType:    rep.IssueType,
		Priority:     rep.Priority,
		HasPhoto:     rep.ImagePath != nil,
		SubmittedAt:  rep.CreatedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, rep)
}

// Update handles PUT /reports/:id (authenticated).  The body may be JSON
// or multipart; every field is independently optional and "present but
// empty" is meaningful for admin_note (clear text) and assigned_to
// (clear assignment).  A completion proof upload is fatal on failure:
// no partial update is applied.
func (h *ReportHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	fields, err := updateFields(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var patch repository.ReportPatch
	if v, ok := fields["status"]; ok {
		if s := stringField(v); s != "" {
			patch.Status = &s
		}
	}
	if v, ok := fields["priority"]; ok {
		if s := stringField(v); s != "" {
			patch.Priority = &s
		}
	}
	if v, ok := fields["admin_note"]; ok {
		s := stringField(v)
		patch.AdminNote = &s
	}
	if v, ok := fields["assigned_to"]; ok {
		patch.SetAssignee = true
		assignee, err := parseAssignee(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid assigned_to"})
		}
		patch.AssignedTo = assignee
	}
	if v, ok := fields["confirmed_by_technician"]; ok {
		b := model.CanonicalBool(v)
		patch.Confirmed = &b
	}
	if v, ok := fields["confirmed_at"]; ok {
		if s := stringField(v); s != "" {
			at, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid confirmed_at"})
			}
			patch.ConfirmedAt = &at
		}
	}

	data, name, ctype, err := h.readPhoto(c, "completion_proof")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var proofKey string
	if data != nil {
		u, key, err := h.Blobs.Store(ctx, data, name, storage.FolderProofs, ctype)
		if err != nil {
			// Required policy: the proof is the point of this update.
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store completion proof"})
		}
		patch.ProofPath = &u
		proofKey = key
	}

	if patch.Empty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	rep, err := h.Reports.Update(ctx, id, patch)
	if err != nil {
		if proofKey != "" {
			h.Blobs.Remove(ctx, proofKey)
		}
		switch err {
		case repository.ErrNoFields:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update report failed"})
		}
	}

	if patch.Confirmed != nil && *patch.Confirmed {
		confirmedAt := ""
		if rep.ConfirmedAt != nil {
			confirmedAt = rep.ConfirmedAt.UTC().Format(time.RFC3339)
		}
		_ = queue_publisher.PublishReportConfirmed(ctx, queue.ReportConfirmedEvent{
			ReportID:    rep.ID,
			Email:       rep.Email,
			Location:    rep.Location,
			IssueType:   rep.IssueType,
			ConfirmedBy: callerName(c),
			ConfirmedAt: confirmedAt,
		})
	}

	h.resolveLinks(&rep)
	return c.JSON(http.StatusOK, rep)
}

// Delete handles DELETE /reports/:id (admin only).  The associated image
// blob is removed best-effort first; rows recorded before the storage
// migration carry local paths, so the key is reconstructed from the
// legacy naming convention.
func (h *ReportHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rep, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if rep.ImagePath != nil {
		if key := h.Blobs.Key(*rep.ImagePath); key != "" {
			if !h.Blobs.Remove(ctx, key) {
				log.Printf("report: image blob %s not removed for report %d", key, id)
			}
		}
	}

	if err := h.Reports.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete report failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "report deleted successfully"})
}

// readPhoto pulls an optional image upload out of the request.  Absent
// file is not an error.  Size and MIME type are validated against the
// configured limits before the bytes are read.
func (h *ReportHandler) readPhoto(c echo.Context, field string) (data []byte, name, contentType string, err error) {
	fh, ferr := c.FormFile(field)
	if ferr != nil {
		// Not a multipart request or no file attached.
		return nil, "", "", nil
	}
	if fh.Size > h.Cfg.MaxUploadBytes {
		return nil, "", "", errTooLarge
	}
	// Both the file extension and the declared type must pass: an
	// unknown extension is rejected even under an image Content-Type
	// header, and vice versa.
	extType, known := storage.MatchContentType(fh.Filename)
	if !known || !h.allowedImage(extType) {
		return nil, "", "", errOnlyImages
	}
	contentType = fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = extType
	}
	if !h.allowedImage(contentType) {
		return nil, "", "", errOnlyImages
	}
	f, ferr := fh.Open()
	if ferr != nil {
		return nil, "", "", errReadUpload
	}
	defer f.Close()
	data, ferr = io.ReadAll(io.LimitReader(f, h.Cfg.MaxUploadBytes+1))
	if ferr != nil {
		return nil, "", "", errReadUpload
	}
	if int64(len(data)) > h.Cfg.MaxUploadBytes {
		return nil, "", "", errTooLarge
	}
	return data, fh.Filename, contentType, nil
}

// resolveLinks rewrites stored image locators into public URLs.  Rows
// written before the storage migration hold local /uploads/ paths; fresh
// rows already hold full URLs and pass through untouched.
func (h *ReportHandler) resolveLinks(rep *model.Report) {
	if rep.ImagePath != nil {
		u := h.Blobs.ResolveLegacyURL(*rep.ImagePath)
		rep.ImagePath = &u
	}
	if rep.CompletionProofPath != nil {
		u := h.Blobs.ResolveLegacyURL(*rep.CompletionProofPath)
		rep.CompletionProofPath = &u
	}
}

func (h *ReportHandler) allowedImage(contentType string) bool {
	for _, t := range h.Cfg.AllowedImages {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

// updateFields extracts the partial-update payload with presence
// semantics: a key in the returned map was present in the request, even
// if its value is empty or null.  JSON and form/multipart bodies are
// normalized into the same shape.
func updateFields(c echo.Context) (map[string]any, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		m := map[string]any{}
		if err := json.NewDecoder(c.Request().Body).Decode(&m); err != nil && err != io.EOF {
			return nil, err
		}
		return m, nil
	}

	var form url.Values
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		form = url.Values(mf.Value)
	} else if err := c.Request().ParseForm(); err == nil {
		form = c.Request().PostForm
	}
	m := map[string]any{}
	for _, k := range []string{"status", "priority", "admin_note", "assigned_to", "confirmed_by_technician", "confirmed_at"} {
		if vs, ok := form[k]; ok && len(vs) > 0 {
			m[k] = vs[0]
		}
	}
	return m, nil
}

// stringField renders a field value as a string; null becomes "".
func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// parseAssignee interprets the assigned_to value: empty, zero or null
// clears the assignment; anything else must be a user id.
func parseAssignee(v any) (*uint64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		id, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return nil, nil
		}
		return &id, nil
	case float64:
		if t <= 0 {
			return nil, nil
		}
		id := uint64(t)
		return &id, nil
	}
	return nil, errInvalidAssignee
}

func callerName(c echo.Context) string {
	if v, ok := c.Get("full_name").(string); ok && v != "" {
		return v
	}
	if v, ok := c.Get("email").(string); ok {
		return v
	}
	return ""
}
