package api

import (
	"strings"

	"github.com/Egham-7/numseq/internal/models"
	"github.com/Egham-7/numseq/internal/services/middleware"
	"github.com/Egham-7/numseq/internal/services/operation"
	"github.com/Egham-7/numseq/internal/services/request"
	"github.com/Egham-7/numseq/internal/services/response"
	"github.com/Egham-7/numseq/internal/services/sequence"
	"github.com/Egham-7/numseq/internal/services/source"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/utils"
)

const (
	multipartFileField = "textFile"
	rawBodyName        = "request-body"
	maxTracedOperation = 50
)

// kindRoutes maps the single-operation endpoints to the operation they run
var kindRoutes = []struct {
	path string
	kind sequence.OperationKind
}{
	{"/get-max-value", sequence.OperationMax},
	{"/get-min-value", sequence.OperationMin},
	{"/get-median", sequence.OperationMedian},
	{"/get-mean", sequence.OperationMean},
	{"/get-increasing-sequence", sequence.OperationIncreasing},
	{"/get-decreasing-sequence", sequence.OperationDecreasing},
}

// OperationHandler serves the number sequence endpoints over server files,
// multipart uploads and raw request bodies.
type OperationHandler struct {
	requestSvc   *request.BaseService
	responseSvc  *response.BaseService
	operationSvc *operation.Service
}

// NewOperationHandler initializes the operation handler with injected dependencies.
func NewOperationHandler(
	requestSvc *request.BaseService,
	responseSvc *response.BaseService,
	operationSvc *operation.Service,
) *OperationHandler {
	return &OperationHandler{
		requestSvc:   requestSvc,
		responseSvc:  responseSvc,
		operationSvc: operationSvc,
	}
}

// RegisterRoutes mounts every operation endpoint under router
func (h *OperationHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/perform-operation", h.PerformOperation)
	for _, route := range kindRoutes {
		router.Post(route.path, h.FileOperation(route.kind))
	}

	multipartGroup := router.Group("/multipart-file")
	multipartGroup.Post("/perform-operation", h.MultipartPerformOperation)
	for _, route := range kindRoutes {
		multipartGroup.Post(route.path, h.MultipartOperation(route.kind))
	}

	router.Post("/raw/perform-operation", h.RawPerformOperation)
}

// PerformOperation runs the operation named in the body over the file at file_path.
func (h *OperationHandler) PerformOperation(c *fiber.Ctx) error {
	reqID := h.requestSvc.GetRequestID(c)
	trace := h.startTrace(c, reqID, models.SourceKindFile)

	var req models.OperationRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, reqID, trace, models.NewValidationError("Invalid request body", err))
	}

	kind, err := h.parseKind(trace, req.Operation)
	if err != nil {
		return h.fail(c, reqID, trace, err)
	}

	return h.performFile(c, reqID, trace, kind, req.FilePath)
}

// FileOperation returns a handler running kind over the file at file_path.
func (h *OperationHandler) FileOperation(kind sequence.OperationKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := h.requestSvc.GetRequestID(c)
		trace := h.startTrace(c, reqID, models.SourceKindFile)
		trace.Operation = string(kind)

		var req models.FilePathRequest
		if err := c.BodyParser(&req); err != nil {
			return h.fail(c, reqID, trace, models.NewValidationError("Invalid request body", err))
		}

		return h.performFile(c, reqID, trace, kind, req.FilePath)
	}
}

// MultipartPerformOperation runs the operation form field over the uploaded textFile.
func (h *OperationHandler) MultipartPerformOperation(c *fiber.Ctx) error {
	reqID := h.requestSvc.GetRequestID(c)
	trace := h.startTrace(c, reqID, models.SourceKindMultipart)

	kind, err := h.parseKind(trace, utils.CopyString(c.FormValue("operation")))
	if err != nil {
		return h.fail(c, reqID, trace, err)
	}

	return h.performMultipart(c, reqID, trace, kind)
}

// MultipartOperation returns a handler running kind over the uploaded textFile.
func (h *OperationHandler) MultipartOperation(kind sequence.OperationKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := h.requestSvc.GetRequestID(c)
		trace := h.startTrace(c, reqID, models.SourceKindMultipart)
		trace.Operation = string(kind)

		return h.performMultipart(c, reqID, trace, kind)
	}
}

// RawPerformOperation runs the operation query parameter over the request body.
func (h *OperationHandler) RawPerformOperation(c *fiber.Ctx) error {
	reqID := h.requestSvc.GetRequestID(c)
	trace := h.startTrace(c, reqID, models.SourceKindRaw)
	trace.SourceName = rawBodyName

	kind, err := h.parseKind(trace, utils.CopyString(c.Query("operation")))
	if err != nil {
		return h.fail(c, reqID, trace, err)
	}

	// a shared computation may outlive this handler, and fasthttp reuses the body buffer
	return h.perform(c, reqID, trace, kind, source.BytesOpener(rawBodyName, utils.CopyBytes(c.Body())))
}

func (h *OperationHandler) performFile(c *fiber.Ctx, reqID string, trace *middleware.OperationTrace, kind sequence.OperationKind, path string) error {
	trace.SourceName = path

	opener, err := h.operationSvc.Sources().FileOpener(path)
	if err != nil {
		return h.fail(c, reqID, trace, err)
	}

	return h.perform(c, reqID, trace, kind, opener)
}

func (h *OperationHandler) performMultipart(c *fiber.Ctx, reqID string, trace *middleware.OperationTrace, kind sequence.OperationKind) error {
	header, err := c.FormFile(multipartFileField)
	if err != nil {
		return h.fail(c, reqID, trace, models.NewValidationError(multipartFileField+" is required", err))
	}
	trace.SourceName = header.Filename

	return h.perform(c, reqID, trace, kind, source.MultipartOpener(header))
}

func (h *OperationHandler) perform(c *fiber.Ctx, reqID string, trace *middleware.OperationTrace, kind sequence.OperationKind, opener source.Opener) error {
	fiberlog.Infof("[%s] starting %s over %s source", reqID, kind, opener.Kind())

	outcome, err := h.operationSvc.Perform(c.UserContext(), kind, opener, reqID)
	trace.Checksum = outcome.Checksum
	if err != nil {
		return h.fail(c, reqID, trace, err)
	}
	trace.CacheHit = outcome.Cached

	fiberlog.Infof("[%s] %s completed (cached=%t)", reqID, kind, outcome.Cached)
	return h.responseSvc.Operation(c, string(kind), outcome.Cached, outcome.Result.Value())
}

func (h *OperationHandler) startTrace(c *fiber.Ctx, reqID, sourceKind string) *middleware.OperationTrace {
	trace := middleware.Trace(c)
	trace.RequestID = reqID
	trace.SourceKind = sourceKind
	return trace
}

func (h *OperationHandler) parseKind(trace *middleware.OperationTrace, name string) (sequence.OperationKind, error) {
	kind, err := sequence.ParseOperationKind(strings.TrimSpace(name))
	if err != nil {
		trace.Operation = truncate(strings.ToUpper(name), maxTracedOperation)
		if trace.Operation == "" {
			trace.Operation = "UNSPECIFIED"
		}
		return "", err
	}
	trace.Operation = string(kind)
	return kind, nil
}

func (h *OperationHandler) fail(c *fiber.Ctx, reqID string, trace *middleware.OperationTrace, err error) error {
	appErr := operation.MapError(trace.Operation, err)
	trace.ErrorType = string(appErr.Type)

	if appErr.GetStatusCode() >= fiber.StatusInternalServerError {
		fiberlog.Errorf("[%s] %s failed: %v", reqID, trace.Operation, err)
	} else {
		fiberlog.Warnf("[%s] %s rejected: %v", reqID, trace.Operation, err)
	}

	return h.responseSvc.Error(c, reqID, appErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
