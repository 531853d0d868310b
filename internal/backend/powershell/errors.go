package powershell

import (
	"strings"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
)

// HRESULTs reported by the CIM and NetAdapter cmdlets.
const (
	HResultNotSupported     = "0x80070032" // ERROR_NOT_SUPPORTED
	HResultWbemInvalidClass = "0x80041010"
	HResultWbemNotFound     = "0x80041002"
	HResultWbemNotSupported = "0x8004100C"
	HResultWbemInvalidOp    = "0x80041024"
)

var notSupportedHResults = map[string]bool{
	HResultNotSupported:     true,
	HResultWbemNotSupported: true,
	HResultWbemInvalidOp:    true,
}

// ErrorRecord is the structured part of a PowerShell ErrorRecord.
type ErrorRecord struct {
	Category   string `json:"category"`
	NativeCode string `json:"native_code"`
	HResult    string `json:"hresult"`
	ErrorID    string `json:"error_id"`
	Message    string `json:"message"`
}

// IsNotSupported reports whether the record signals a missing capability.
func (r ErrorRecord) IsNotSupported() bool {
	if strings.EqualFold(r.NativeCode, "NotSupported") {
		return true
	}
	if notSupportedHResults[normalizeHResult(r.HResult)] {
		return true
	}
	return strings.EqualFold(r.Category, "NotImplemented")
}

// IsNotFound reports whether the record signals a missing object or class.
func (r ErrorRecord) IsNotFound() bool {
	if strings.EqualFold(r.NativeCode, "NotFound") || strings.EqualFold(r.NativeCode, "InvalidClass") {
		return true
	}
	switch normalizeHResult(r.HResult) {
	case HResultWbemNotFound, HResultWbemInvalidClass:
		return true
	}
	return strings.EqualFold(r.Category, "ObjectNotFound")
}

// Classify converts the record into the engine error taxonomy.
func (r ErrorRecord) Classify() *setting.DomainError {
	var err *setting.DomainError
	switch {
	case r.IsNotSupported():
		err = setting.NotSupported(r.summary(), nil)
	case r.IsNotFound():
		err = setting.NotFound(r.summary(), nil)
	default:
		err = setting.ExecutionFailure(r.summary(), nil)
	}
	return err.WithContext(map[string]interface{}{
		"category":    r.Category,
		"native_code": r.NativeCode,
		"hresult":     r.HResult,
		"error_id":    r.ErrorID,
	})
}

func (r ErrorRecord) summary() string {
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = r.ErrorID
	}
	if msg == "" {
		msg = "powershell error"
	}
	return msg
}

// normalizeHResult renders an HRESULT as 0x followed by eight upper-case hex
// digits so comparisons ignore formatting differences.
func normalizeHResult(h string) string {
	h = strings.TrimSpace(h)
	if len(h) > 2 && (h[:2] == "0x" || h[:2] == "0X") {
		h = h[2:]
	}
	if h == "" {
		return ""
	}
	h = strings.ToUpper(h)
	for len(h) < 8 {
		h = "0" + h
	}
	return "0x" + h
}
