package service

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/aufwind/aufwind-backend/internal/domain"
)

// isDomainErr reports whether err carries domain meaning (validation,
// not-found, concurrency). Anything else is treated as a storage failure.
func isDomainErr(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConcurrency)
}

// persist runs op and retries it once when the failure is not a domain
// error. A second failure surfaces as ErrPersistence; callers must re-fetch
// to learn the true state.
func persist(op func() error) error {
	err := op()
	if err == nil || isDomainErr(err) {
		return err
	}
	log.Warn().Err(err).Msg("Storage operation failed, retrying once")
	err = op()
	if err == nil || isDomainErr(err) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}

// persistResult is persist for operations that return a value.
func persistResult[T any](op func() (T, error)) (T, error) {
	result, err := op()
	if err == nil || isDomainErr(err) {
		return result, err
	}
	log.Warn().Err(err).Msg("Storage operation failed, retrying once")
	result, err = op()
	if err == nil || isDomainErr(err) {
		return result, err
	}
	var zero T
	return zero, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}
