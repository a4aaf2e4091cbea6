package code

import "net/http"

var (
	Success        = NewSuss(0, http.StatusOK, "success")
	SuccessCreated = NewSuss(1, http.StatusCreated, "created")

	ErrorServerInternal     = NewError(10000000, http.StatusInternalServerError, "internal server error")
	ErrorNotFound           = NewError(10000001, http.StatusNotFound, "resource not found")
	ErrorInvalidParams      = NewError(10000002, http.StatusBadRequest, "invalid request parameters")
	ErrorTooManyRequests    = NewError(10000003, http.StatusTooManyRequests, "too many requests")
	ErrorRequestTimeout     = NewError(10000004, http.StatusRequestTimeout, "request timed out")
	ErrorInvalidStorageType = NewError(10000005, http.StatusInternalServerError, "invalid storage type")

	ErrorNoteNotFound        = NewError(10001001, http.StatusNotFound, "note not found")
	ErrorTagNotFound         = NewError(10001002, http.StatusNotFound, "tag not found")
	ErrorUnknownPatchField   = NewError(10001003, http.StatusBadRequest, "unknown field in patch")
	ErrorInvalidExportFormat = NewError(10001004, http.StatusBadRequest, "invalid export format")
)
