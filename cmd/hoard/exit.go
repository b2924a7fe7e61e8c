package main

import "hoard/internal/hoard"

// Exit statuses by error category.
const (
	exitInternal   = 1
	exitNotFound   = 2
	exitConflict   = 3
	exitBadRequest = 4
	exitTooLarge   = 5
)

func category(err error) hoard.Category {
	return hoard.Classify(err)
}

func exitCode(err error) int {
	switch category(err) {
	case hoard.CategoryNotFound:
		return exitNotFound
	case hoard.CategoryConflict:
		return exitConflict
	case hoard.CategoryBadRequest:
		return exitBadRequest
	case hoard.CategoryTooLarge:
		return exitTooLarge
	default:
		return exitInternal
	}
}
