package presentation

import (
	"context"
	"errors"
	"fmt"

	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/infra/httpclient"
)

type ErrorKind string

const (
	ErrorKindUnauthenticated      ErrorKind = "unauthenticated"
	ErrorKindBadRequest           ErrorKind = "bad_request"
	ErrorKindUnauthorized         ErrorKind = "unauthorized"
	ErrorKindForbidden            ErrorKind = "forbidden"
	ErrorKindNotFound             ErrorKind = "not_found"
	ErrorKindTimeout              ErrorKind = "timeout"
	ErrorKindServerError          ErrorKind = "server_error"
	ErrorKindUnknownHTTP          ErrorKind = "unknown_http"
	ErrorKindNetwork              ErrorKind = "network_error"
	ErrorKindCoercion             ErrorKind = "coercion_error"
	ErrorKindMissingRequiredField ErrorKind = "missing_required_field"
	ErrorKindUnknownEntityType    ErrorKind = "unknown_entity_type"
	ErrorKindUnknown              ErrorKind = "unknown"
)

// Classification is an error reduced to its kind plus the detail its canned
// message needs.
type Classification struct {
	Kind       ErrorKind
	StatusCode int
	Detail     string
}

// ClassifyHTTPError maps a response status to the fixed taxonomy.
func ClassifyHTTPError(statusCode int) Classification {
	kind := ErrorKindUnknownHTTP
	switch statusCode {
	case 400:
		kind = ErrorKindBadRequest
	case 401:
		kind = ErrorKindUnauthorized
	case 403:
		kind = ErrorKindForbidden
	case 404:
		kind = ErrorKindNotFound
	case 408:
		kind = ErrorKindTimeout
	case 500:
		kind = ErrorKindServerError
	}
	return Classification{Kind: kind, StatusCode: statusCode}
}

// ClassifyError maps any error produced by the fleet packages to the
// taxonomy. entityKey names the entity type the action was about.
func ClassifyError(err error, entityKey domain.EntityKey) Classification {
	var (
		apiErr     *httpclient.APIError
		networkErr *httpclient.NetworkError
		fieldErr   *domain.FieldError
	)
	switch {
	case err == nil:
		return Classification{}
	case errors.As(err, &fieldErr) && errors.Is(err, domain.ErrMissingRequiredField):
		return Classification{Kind: ErrorKindMissingRequiredField, Detail: fieldErr.Label.String()}
	case errors.As(err, &fieldErr) && errors.Is(err, domain.ErrCoercion):
		return Classification{Kind: ErrorKindCoercion, Detail: fieldErr.Label.String()}
	case errors.Is(err, domain.ErrUnknownEntityType):
		return Classification{Kind: ErrorKindUnknownEntityType, Detail: entityKey.String()}
	case errors.Is(err, domain.ErrUnauthenticated):
		return Classification{Kind: ErrorKindUnauthenticated, Detail: entityKey.String()}
	case errors.As(err, &apiErr):
		return ClassifyHTTPError(apiErr.StatusCode)
	case errors.Is(err, httpclient.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return Classification{Kind: ErrorKindTimeout}
	case errors.As(err, &networkErr):
		return Classification{Kind: ErrorKindNetwork, Detail: networkErr.Err.Error()}
	default:
		return Classification{Kind: ErrorKindUnknown, Detail: err.Error()}
	}
}

// Message is the user-facing text of the classification. Raw error text only
// shows up for network failures and unknown errors.
func (c Classification) Message() string {
	switch c.Kind {
	case ErrorKindUnauthenticated:
		return fmt.Sprintf("Authentication required to manage %s, please log in", c.Detail)
	case ErrorKindBadRequest:
		return "Your request could not be completed. \nPlease check the required fields and try again."
	case ErrorKindUnauthorized:
		return "You must be authenticated to complete this action. \nPlease log in and try again."
	case ErrorKindForbidden:
		return "You do not have permission to perform this action."
	case ErrorKindNotFound:
		return "Resource was not found, please check and try again."
	case ErrorKindTimeout:
		return "Request timed out. Please try again"
	case ErrorKindServerError:
		return "An internal server error occurred."
	case ErrorKindUnknownHTTP:
		return fmt.Sprintf("An error occurred: %d", c.StatusCode)
	case ErrorKindNetwork:
		return fmt.Sprintf("An unknown error occurred: %s", c.Detail)
	case ErrorKindMissingRequiredField:
		return fmt.Sprintf("%s is required.", c.Detail)
	case ErrorKindCoercion:
		return fmt.Sprintf("%s must be a valid number.", c.Detail)
	case ErrorKindUnknownEntityType:
		return fmt.Sprintf("Unknown entity type: %s", c.Detail)
	case ErrorKindUnknown:
		return fmt.Sprintf("An unknown error occurred: %s", c.Detail)
	default:
		return ""
	}
}

func UserMessage(err error, entityKey domain.EntityKey) string {
	return ClassifyError(err, entityKey).Message()
}
