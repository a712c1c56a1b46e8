// Package alert carries advisory payloads from the caching layers to the
// presentation layer.
//
// Failures that must not abort an operation (a full memory cache, a persistent
// store that refused a write) are tagged with an error code. FromError maps the
// code to the title/subtitle pair a screen shows, and Channel holds the single
// pending alert of a screen (last write wins).
package alert

import (
	"context"

	"github.com/jmgilman/go/errors"
)

// Error codes owned by the character list. Network and configuration failures
// reuse the shared codes from github.com/jmgilman/go/errors.
const (
	// CodeCacheFull indicates the bounded memory cache rejected an admission.
	CodeCacheFull errors.ErrorCode = "CACHE_FULL"

	// CodeStoreFetch indicates the persistent store lookup failed.
	CodeStoreFetch errors.ErrorCode = "STORE_FETCH_FAILED"

	// CodeStoreSave indicates the persistent store rejected an insert.
	CodeStoreSave errors.ErrorCode = "STORE_SAVE_FAILED"

	// CodeStoreDelete indicates the persistent store rejected a delete.
	CodeStoreDelete errors.ErrorCode = "STORE_DELETE_FAILED"
)

// Alert is the display payload of an advisory error.
type Alert struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// HasSubtitle reports whether the alert carries a subtitle line.
func (a Alert) HasSubtitle() bool {
	return a.Subtitle != ""
}

// DefaultTitle is used when an error carries no known code.
const DefaultTitle = "Error"

var catalog = map[errors.ErrorCode]Alert{
	CodeCacheFull: {
		Title:    "Cache Limit Reached",
		Subtitle: "No more data can be stored. Please clean up some older entries.",
	},
	CodeStoreFetch: {
		Title:    "Fetch Failed",
		Subtitle: "There was an error fetching the images.",
	},
	CodeStoreSave: {
		Title:    "Save Failed",
		Subtitle: "There was an error saving the image.",
	},
	CodeStoreDelete: {
		Title:    "Delete Failed",
		Subtitle: "There was an error deleting the image.",
	},
	errors.CodeNetwork: {
		Title:    "Network Error",
		Subtitle: "The server could not be reached.",
	},
	errors.CodeInvalidConfig: {
		Title:    "Invalid Configuration",
		Subtitle: "Check the configuration file and environment.",
	},
}

// FromError converts err into an Alert. Cancellation yields false: it is never
// shown to the user. Errors without a catalogued code get DefaultTitle and the
// error text as subtitle.
func FromError(err error) (Alert, bool) {
	if err == nil {
		return Alert{}, false
	}
	if errors.Is(err, context.Canceled) {
		return Alert{}, false
	}

	if a, ok := catalog[errors.GetCode(err)]; ok {
		return a, true
	}

	return Alert{Title: DefaultTitle, Subtitle: Describe(err)}, true
}

// Describe returns the human readable part of err, without the code prefix
// that platform errors render in Error().
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var platformErr errors.PlatformError
	if errors.As(err, &platformErr) {
		return platformErr.Message()
	}
	return err.Error()
}
