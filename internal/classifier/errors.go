// Package classifier provides client interfaces for the win probability service.
package classifier

import "errors"

var (
	// ErrServiceUnavailable indicates the classifier service is unreachable
	ErrServiceUnavailable = errors.New("classifier service unavailable")

	// ErrConnectionFailed indicates the HTTP request never completed
	ErrConnectionFailed = errors.New("classifier connection failed")

	// ErrInvalidRequest indicates the prediction request is malformed
	ErrInvalidRequest = errors.New("invalid prediction request")

	// ErrInvalidPrediction indicates the prediction response is unusable
	ErrInvalidPrediction = errors.New("invalid prediction response")
)
